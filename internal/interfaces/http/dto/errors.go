package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Request error codes
const (
	// ErrCodeValidation is used when request binding or validation fails
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	// ErrCodeDuplicateVendorCode is used when a vendor code is taken
	ErrCodeDuplicateVendorCode = "ERR_DUPLICATE_VENDOR_CODE"
)

// Lock error codes: the target field is frozen
const (
	ErrCodeFinancialLock            = "ERR_FINANCIAL_LOCK"
	ErrCodeExecutionIDLocked        = "ERR_EXECUTION_ID_LOCKED"
	ErrCodeVendorCodeImmutable      = "ERR_VENDOR_CODE_IMMUTABLE"
	ErrCodeBaseJobIDAlreadyAssigned = "ERR_BASE_JOB_ID_ALREADY_ASSIGNED"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeJobBlocked is used when a job with blockers is marked sent
	ErrCodeJobBlocked = "ERR_JOB_BLOCKED"

	ErrCodeMissingBaseJobID   = "ERR_MISSING_BASE_JOB_ID"
	ErrCodeMissingVendorCode  = "ERR_MISSING_VENDOR_CODE"
	ErrCodeNotVendorFacing    = "ERR_NOT_VENDOR_FACING"
	ErrCodeNegativeMargin     = "ERR_NEGATIVE_MARGIN"
	ErrCodeInvalidQCStatus    = "ERR_INVALID_QC_STATUS"
	ErrCodeInvalidConcern     = "ERR_INVALID_CONCERN"
	ErrCodeInvalidRoutingType = "ERR_INVALID_ROUTING_TYPE"
	ErrCodeInvalidTarget      = "ERR_INVALID_TARGET"
	ErrCodeInvalidCost        = "ERR_INVALID_COST"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Malformed requests -> 400
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeNotFound: http.StatusNotFound,

	// Conflicts and locks -> 409
	ErrCodeConflict:                 http.StatusConflict,
	ErrCodeConcurrencyConflict:      http.StatusConflict,
	ErrCodeDuplicateVendorCode:      http.StatusConflict,
	ErrCodeFinancialLock:            http.StatusConflict,
	ErrCodeExecutionIDLocked:        http.StatusConflict,
	ErrCodeVendorCodeImmutable:      http.StatusConflict,
	ErrCodeBaseJobIDAlreadyAssigned: http.StatusConflict,
	ErrCodeJobBlocked:               http.StatusConflict,

	// Domain validation -> 422 Unprocessable Entity
	ErrCodeInvalidInput:       http.StatusUnprocessableEntity,
	ErrCodeInvalidState:       http.StatusUnprocessableEntity,
	ErrCodeMissingBaseJobID:   http.StatusUnprocessableEntity,
	ErrCodeMissingVendorCode:  http.StatusUnprocessableEntity,
	ErrCodeNotVendorFacing:    http.StatusUnprocessableEntity,
	ErrCodeNegativeMargin:     http.StatusUnprocessableEntity,
	ErrCodeInvalidQCStatus:    http.StatusUnprocessableEntity,
	ErrCodeInvalidConcern:     http.StatusUnprocessableEntity,
	ErrCodeInvalidRoutingType: http.StatusUnprocessableEntity,
	ErrCodeInvalidTarget:      http.StatusUnprocessableEntity,
	ErrCodeInvalidCost:        http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":                    ErrCodeNotFound,
	"INVALID_INPUT":                ErrCodeInvalidInput,
	"INVALID_NAME":                 ErrCodeInvalidInput,
	"INVALID_ROLE":                 ErrCodeInvalidInput,
	"INVALID_JOB_NUMBER":           ErrCodeInvalidInput,
	"INVALID_STATE":                ErrCodeInvalidState,
	"CONCURRENCY_CONFLICT":         ErrCodeConcurrencyConflict,
	"MISSING_BASE_JOB_ID":          ErrCodeMissingBaseJobID,
	"MISSING_VENDOR_CODE":          ErrCodeMissingVendorCode,
	"NOT_VENDOR_FACING":            ErrCodeNotVendorFacing,
	"EXECUTION_ID_LOCKED":          ErrCodeExecutionIDLocked,
	"NEGATIVE_MARGIN":              ErrCodeNegativeMargin,
	"INVALID_QC_STATUS":            ErrCodeInvalidQCStatus,
	"INVALID_CONCERN":              ErrCodeInvalidConcern,
	"INVALID_ROUTING_TYPE":         ErrCodeInvalidRoutingType,
	"INVALID_TARGET":               ErrCodeInvalidTarget,
	"DUPLICATE_VENDOR_CODE":        ErrCodeDuplicateVendorCode,
	"VENDOR_CODE_IMMUTABLE":        ErrCodeVendorCodeImmutable,
	"BASE_JOB_ID_ALREADY_ASSIGNED": ErrCodeBaseJobIDAlreadyAssigned,
	"INVALID_COST":                 ErrCodeInvalidCost,
	"FINANCIAL_LOCK":               ErrCodeFinancialLock,
	"JOB_BLOCKED":                  ErrCodeJobBlocked,
	"INVALID_SPLIT_CONFIGURATION":  ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Codes already in the API format or unknown are returned as-is.
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
