package notification

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/printbroker/backend/internal/domain/purchasing"
	"github.com/printbroker/backend/internal/domain/shared"
)

// TaskVendorExecutionAssigned tells a vendor its purchase order has an execution ID
const TaskVendorExecutionAssigned = "vendor.execution_assigned"

// ExecutionAssignedPayload carries an ExecutionIDAssigned event through the queue.
// EventID is kept so retried and duplicated tasks share one idempotency key.
type ExecutionAssignedPayload struct {
	EventID         string    `json:"eventId"`
	OccurredAt      time.Time `json:"occurredAt"`
	JobID           string    `json:"jobId"`
	PurchaseOrderID string    `json:"purchaseOrderId"`
	PONumber        string    `json:"poNumber"`
	VendorID        string    `json:"vendorId"`
	ExecutionID     string    `json:"executionId"`
}

// PayloadFromEvent flattens an ExecutionIDAssigned event
func PayloadFromEvent(e *purchasing.ExecutionIDAssignedEvent) ExecutionAssignedPayload {
	return ExecutionAssignedPayload{
		EventID:         e.EventID().String(),
		OccurredAt:      e.OccurredAt(),
		JobID:           e.JobID.String(),
		PurchaseOrderID: e.PurchaseOrderID.String(),
		PONumber:        e.PONumber,
		VendorID:        e.VendorID.String(),
		ExecutionID:     e.ExecutionID,
	}
}

// Event rebuilds the domain event, preserving its original ID
func (p ExecutionAssignedPayload) Event() (*purchasing.ExecutionIDAssignedEvent, error) {
	ids := make([]uuid.UUID, 4)
	for i, raw := range []string{p.EventID, p.JobID, p.PurchaseOrderID, p.VendorID} {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q in %s payload: %w", raw, TaskVendorExecutionAssigned, err)
		}
		ids[i] = id
	}

	return &purchasing.ExecutionIDAssignedEvent{
		BaseDomainEvent: shared.BaseDomainEvent{
			ID:        ids[0],
			Type:      purchasing.EventTypeExecutionIDAssigned,
			Timestamp: p.OccurredAt,
			AggID:     ids[2],
			AggType:   purchasing.AggregateTypePurchaseOrder,
		},
		JobID:           ids[1],
		PurchaseOrderID: ids[2],
		PONumber:        p.PONumber,
		VendorID:        ids[3],
		ExecutionID:     p.ExecutionID,
	}, nil
}

// NewExecutionAssignedTask builds the asynq task for payload
func NewExecutionAssignedTask(payload ExecutionAssignedPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskVendorExecutionAssigned, data), nil
}

// ParseExecutionAssignedPayload decodes a task built by NewExecutionAssignedTask
func ParseExecutionAssignedPayload(task *asynq.Task) (ExecutionAssignedPayload, error) {
	var payload ExecutionAssignedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ExecutionAssignedPayload{}, err
	}
	return payload, nil
}
