package purchasing

// Status represents the lifecycle state of a purchase order
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusIssued    Status = "ISSUED"
	StatusAccepted  Status = "ACCEPTED"
	StatusPaid      Status = "PAID"
	StatusCancelled Status = "CANCELLED"
	StatusRejected  Status = "REJECTED"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusIssued, StatusAccepted, StatusPaid, StatusCancelled, StatusRejected:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsVoid reports whether the purchase order no longer counts toward costs or vendors.
func (s Status) IsVoid() bool {
	return s == StatusCancelled || s == StatusRejected
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusIssued || target == StatusCancelled || target == StatusRejected
	case StatusIssued:
		return target == StatusAccepted || target == StatusCancelled || target == StatusRejected
	case StatusAccepted:
		return target == StatusPaid || target == StatusCancelled
	case StatusPaid, StatusCancelled, StatusRejected:
		return false // Terminal states
	}
	return false
}
