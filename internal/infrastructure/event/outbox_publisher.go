package event

import (
	"context"

	"github.com/printbroker/backend/internal/domain/shared"
)

// OutboxPublisher stores events in the outbox instead of dispatching them.
// Bound to a transactional repository, the events commit or roll back with
// the state change that raised them.
type OutboxPublisher struct {
	repo       shared.OutboxRepository
	serializer *EventSerializer
}

// NewOutboxPublisher creates a publisher writing through repo
func NewOutboxPublisher(repo shared.OutboxRepository, serializer *EventSerializer) *OutboxPublisher {
	return &OutboxPublisher{repo: repo, serializer: serializer}
}

// Publish serializes the events and saves them as pending outbox entries
func (p *OutboxPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	entries := make([]*shared.OutboxEntry, 0, len(events))
	for _, event := range events {
		if event == nil {
			continue
		}
		payload, err := p.serializer.Serialize(event)
		if err != nil {
			return err
		}
		entries = append(entries, shared.NewOutboxEntry(event, payload))
	}
	return p.repo.Save(ctx, entries...)
}

var _ shared.EventPublisher = (*OutboxPublisher)(nil)
