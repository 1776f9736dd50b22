package notification

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/printbroker/backend/internal/domain/job"
	"github.com/printbroker/backend/internal/domain/purchasing"
	"github.com/printbroker/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (s *fakeSender) Send(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *fakeSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type fakeEnqueuer struct {
	payloads []ExecutionAssignedPayload
	err      error
}

func (e *fakeEnqueuer) EnqueueExecutionAssigned(_ context.Context, payload ExecutionAssignedPayload) error {
	if e.err != nil {
		return e.err
	}
	e.payloads = append(e.payloads, payload)
	return nil
}

func newTestJob(t *testing.T) *job.Job {
	t.Helper()
	j, err := job.NewJob(job.NewJobParams{
		JobNumber:   "JOB-000042",
		Title:       "Spring catalog",
		RoutingType: job.RoutingDirect,
		SellPrice:   decimal.NewFromInt(1000),
		Quantity:    5000,
	})
	require.NoError(t, err)
	return j
}

func newAssignedEvent(jobID, vendorID uuid.UUID) *purchasing.ExecutionIDAssignedEvent {
	poID := uuid.New()
	return &purchasing.ExecutionIDAssignedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(purchasing.EventTypeExecutionIDAssigned, purchasing.AggregateTypePurchaseOrder, poID),
		JobID:           jobID,
		PurchaseOrderID: poID,
		PONumber:        "PO-000007",
		VendorID:        vendorID,
		ExecutionID:     "J00042-ACME.1",
	}
}
