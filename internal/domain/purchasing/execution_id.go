package purchasing

import (
	"fmt"
	"strings"

	"github.com/printbroker/backend/internal/domain/shared"
)

// ExecutionID is the permanent vendor-scoped identifier of a purchase order.
// The zero value is unassigned; an assigned value never changes.
type ExecutionID struct {
	value string
}

// UnassignedExecutionID returns the unassigned state.
func UnassignedExecutionID() ExecutionID {
	return ExecutionID{}
}

// AssignedExecutionID wraps a stored identifier. An empty string yields the unassigned state.
func AssignedExecutionID(value string) ExecutionID {
	return ExecutionID{value: strings.TrimSpace(value)}
}

// FormatExecutionID builds "{baseJobId}-{vendorCode}.{vendorCount}".
func FormatExecutionID(baseJobID, vendorCode string, vendorCount int) (ExecutionID, error) {
	if strings.TrimSpace(baseJobID) == "" {
		return ExecutionID{}, shared.NewDomainError(shared.CodeMissingBaseJobID, "Job has no base job ID; assign one before finalizing")
	}
	if strings.TrimSpace(vendorCode) == "" {
		return ExecutionID{}, shared.NewDomainError(shared.CodeMissingVendorCode, "Vendor has no vendor code; assign one before finalizing")
	}
	if vendorCount < 1 {
		return ExecutionID{}, shared.NewDomainError(shared.CodeInvalidState, "Job has no active vendors")
	}
	return ExecutionID{value: fmt.Sprintf("%s-%s.%d", baseJobID, vendorCode, vendorCount)}, nil
}

// IsAssigned reports whether the identifier has been set
func (e ExecutionID) IsAssigned() bool {
	return e.value != ""
}

// Value returns the identifier, empty when unassigned
func (e ExecutionID) Value() string {
	return e.value
}

// Ptr returns the identifier for nullable storage.
func (e ExecutionID) Ptr() *string {
	if !e.IsAssigned() {
		return nil
	}
	v := e.value
	return &v
}

func (e ExecutionID) String() string {
	if !e.IsAssigned() {
		return "<unassigned>"
	}
	return e.value
}
