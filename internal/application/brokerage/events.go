package brokerage

import (
	"context"

	"github.com/printbroker/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// publishEvents hands committed events to the publisher.
// Publish errors are logged and never reach the caller.
func publishEvents(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, events []shared.DomainEvent) {
	if publisher == nil || len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		logger.Warn("failed to publish domain events",
			zap.Int("count", len(events)),
			zap.Error(err),
		)
	}
}

// eventBuffer collects aggregate events inside a transaction so they can
// be published once it commits
type eventBuffer struct {
	events []shared.DomainEvent
}

func (b *eventBuffer) collect(aggregates ...interface{ PullDomainEvents() []shared.DomainEvent }) {
	for _, a := range aggregates {
		b.events = append(b.events, a.PullDomainEvents()...)
	}
}

func (b *eventBuffer) reset() {
	b.events = nil
}
