package job

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/printbroker/backend/internal/domain/shared"
)

// QCStatus is the state of a single quality-control concern
type QCStatus string

const (
	QCPending     QCStatus = "PENDING"
	QCPartial     QCStatus = "PARTIAL"
	QCReceived    QCStatus = "RECEIVED"
	QCApproved    QCStatus = "APPROVED"
	QCNotRequired QCStatus = "NOT_REQUIRED"
)

// IsValid checks if the status is known. Empty means not yet provided.
func (s QCStatus) IsValid() bool {
	switch s {
	case "", QCPending, QCPartial, QCReceived, QCApproved, QCNotRequired:
		return true
	}
	return false
}

// ParseQCStatus validates a QC status from external input
func ParseQCStatus(s string) (QCStatus, error) {
	status := QCStatus(s)
	if s == "" || !status.IsValid() {
		return "", shared.NewDomainError(shared.CodeInvalidQCStatus, fmt.Sprintf("Unknown QC status %q", s))
	}
	return status, nil
}

// Severity classifies a readiness issue
type Severity string

const (
	SeverityBlocker Severity = "BLOCKER"
	SeverityWarning Severity = "WARNING"
	SeverityClear   Severity = "CLEAR"
)

// Classify maps a QC status to a readiness severity
func (s QCStatus) Classify() Severity {
	switch s {
	case QCApproved, QCNotRequired:
		return SeverityClear
	case QCReceived:
		return SeverityWarning
	default:
		return SeverityBlocker
	}
}

// Concern names a readiness check
type Concern string

const (
	ConcernArtwork           Concern = "ARTWORK"
	ConcernDataFiles         Concern = "DATA_FILES"
	ConcernMailing           Concern = "MAILING"
	ConcernSuppliedMaterials Concern = "SUPPLIED_MATERIALS"
	ConcernVersions          Concern = "VERSIONS"
	ConcernComponents        Concern = "COMPONENTS"
)

// ParseConcern validates a job-level concern. COMPONENTS is set per component.
func ParseConcern(s string) (Concern, error) {
	c := Concern(s)
	switch c {
	case ConcernArtwork, ConcernDataFiles, ConcernMailing, ConcernSuppliedMaterials, ConcernVersions:
		return c, nil
	}
	return "", shared.NewDomainError(shared.CodeInvalidConcern, fmt.Sprintf("Unknown QC concern %q", s))
}

// Issue is a blocker or warning produced by readiness evaluation
type Issue struct {
	Concern     Concern    `json:"concern"`
	ComponentID *uuid.UUID `json:"component_id,omitempty"`
	Status      QCStatus   `json:"status,omitempty"`
	Message     string     `json:"message"`
}

// QCFlag holds the status and free-text notes of one concern
type QCFlag struct {
	Status QCStatus
	Notes  string
}

// Component is a physical piece of a job (cover, insert, envelope)
// with its own artwork and material tracking
type Component struct {
	ID             uuid.UUID
	Name           string
	ArtworkStatus  QCStatus
	MaterialStatus QCStatus
}
