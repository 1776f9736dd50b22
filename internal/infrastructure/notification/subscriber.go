package notification

import (
	"context"
	"fmt"

	"github.com/printbroker/backend/internal/domain/purchasing"
	"github.com/printbroker/backend/internal/domain/shared"
)

// ExecutionAssignedSubscriber forwards ExecutionIDAssigned events to the queue.
// The outbox processor delivers these events; an enqueue error is returned so
// the outbox entry is retried.
type ExecutionAssignedSubscriber struct {
	enqueuer Enqueuer
}

// NewExecutionAssignedSubscriber creates the subscriber
func NewExecutionAssignedSubscriber(enqueuer Enqueuer) *ExecutionAssignedSubscriber {
	return &ExecutionAssignedSubscriber{enqueuer: enqueuer}
}

// EventTypes implements shared.EventHandler
func (s *ExecutionAssignedSubscriber) EventTypes() []string {
	return []string{purchasing.EventTypeExecutionIDAssigned}
}

// Handle implements shared.EventHandler
func (s *ExecutionAssignedSubscriber) Handle(ctx context.Context, event shared.DomainEvent) error {
	assigned, ok := event.(*purchasing.ExecutionIDAssignedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T for %s", event, purchasing.EventTypeExecutionIDAssigned)
	}
	return s.enqueuer.EnqueueExecutionAssigned(ctx, PayloadFromEvent(assigned))
}

var _ shared.EventHandler = (*ExecutionAssignedSubscriber)(nil)
