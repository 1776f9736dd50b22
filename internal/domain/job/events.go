package job

import (
	"github.com/google/uuid"
	"github.com/printbroker/backend/internal/domain/shared"
)

// AggregateTypeJob names the job aggregate in events
const AggregateTypeJob = "Job"

// Event type constants
const (
	EventTypeJobCreated     = "JobCreated"
	EventTypePathwayChanged = "JobPathwayChanged"
	EventTypeJobSent        = "JobSent"
	EventTypeJobInvoiced    = "JobInvoiced"
)

// JobCreatedEvent is raised when a job is created
type JobCreatedEvent struct {
	shared.BaseDomainEvent
	JobNumber   string      `json:"job_number"`
	RoutingType RoutingType `json:"routing_type"`
}

// NewJobCreatedEvent creates a new JobCreatedEvent
func NewJobCreatedEvent(j *Job) *JobCreatedEvent {
	return &JobCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeJobCreated, AggregateTypeJob, j.ID),
		JobNumber:       j.JobNumber,
		RoutingType:     j.RoutingType,
	}
}

// PathwayChangedEvent is raised when the classifier moves a job to another pathway
type PathwayChangedEvent struct {
	shared.BaseDomainEvent
	JobNumber   string  `json:"job_number"`
	Previous    Pathway `json:"previous"`
	Pathway     Pathway `json:"pathway"`
	VendorCount int     `json:"vendor_count"`
}

// NewPathwayChangedEvent creates a new PathwayChangedEvent
func NewPathwayChangedEvent(j *Job, previous Pathway) *PathwayChangedEvent {
	return &PathwayChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePathwayChanged, AggregateTypeJob, j.ID),
		JobNumber:       j.JobNumber,
		Previous:        previous,
		Pathway:         j.Pathway,
		VendorCount:     j.VendorCount,
	}
}

// JobSentEvent is raised when a job is marked SENT
type JobSentEvent struct {
	shared.BaseDomainEvent
	JobNumber string `json:"job_number"`
}

// NewJobSentEvent creates a new JobSentEvent
func NewJobSentEvent(j *Job) *JobSentEvent {
	return &JobSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeJobSent, AggregateTypeJob, j.ID),
		JobNumber:       j.JobNumber,
	}
}

// JobInvoicedEvent is raised when a job becomes financially locked
type JobInvoicedEvent struct {
	shared.BaseDomainEvent
	JobNumber string    `json:"job_number"`
	JobID     uuid.UUID `json:"job_id"`
}

// NewJobInvoicedEvent creates a new JobInvoicedEvent
func NewJobInvoicedEvent(j *Job) *JobInvoicedEvent {
	return &JobInvoicedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeJobInvoiced, AggregateTypeJob, j.ID),
		JobNumber:       j.JobNumber,
		JobID:           j.ID,
	}
}
