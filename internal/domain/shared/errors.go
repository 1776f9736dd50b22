package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so wrapped sentinels compare equal.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes raised by the brokerage core.
const (
	CodeNotFound                  = "NOT_FOUND"
	CodeInvalidInput              = "INVALID_INPUT"
	CodeInvalidState              = "INVALID_STATE"
	CodeConcurrencyConflict       = "CONCURRENCY_CONFLICT"
	CodeMissingBaseJobID          = "MISSING_BASE_JOB_ID"
	CodeMissingVendorCode         = "MISSING_VENDOR_CODE"
	CodeNotVendorFacing           = "NOT_VENDOR_FACING"
	CodeExecutionIDLocked         = "EXECUTION_ID_LOCKED"
	CodeNegativeMargin            = "NEGATIVE_MARGIN"
	CodeInvalidQCStatus           = "INVALID_QC_STATUS"
	CodeInvalidConcern            = "INVALID_CONCERN"
	CodeInvalidRoutingType        = "INVALID_ROUTING_TYPE"
	CodeInvalidTarget             = "INVALID_TARGET"
	CodeDuplicateVendorCode       = "DUPLICATE_VENDOR_CODE"
	CodeVendorCodeImmutable       = "VENDOR_CODE_IMMUTABLE"
	CodeBaseJobIDAlreadyAssigned  = "BASE_JOB_ID_ALREADY_ASSIGNED"
	CodeInvalidCost               = "INVALID_COST"
	CodeFinancialLock             = "FINANCIAL_LOCK"
	CodeJobBlocked                = "JOB_BLOCKED"
	CodeInvalidSplitConfiguration = "INVALID_SPLIT_CONFIGURATION"
)

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrInvalidInput        = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrInvalidState        = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrFinancialLock       = NewDomainError(CodeFinancialLock, "Job is financially locked after invoicing")
)

// HasCode reports whether err is a DomainError carrying code.
func HasCode(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}
