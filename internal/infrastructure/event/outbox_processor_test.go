package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/printbroker/backend/internal/domain/purchasing"
	"github.com/printbroker/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockOutboxRepository keeps entries in memory; the fn hooks override single calls
type mockOutboxRepository struct {
	mu               sync.Mutex
	entries          map[uuid.UUID]*shared.OutboxEntry
	findPendingFn    func(ctx context.Context, limit int) ([]*shared.OutboxEntry, error)
	markProcessingFn func(ctx context.Context, ids []uuid.UUID) ([]*shared.OutboxEntry, error)
	deleteFn         func(ctx context.Context, before time.Time) (int64, error)
}

func newMockOutboxRepository() *mockOutboxRepository {
	return &mockOutboxRepository{entries: make(map[uuid.UUID]*shared.OutboxEntry)}
}

func (r *mockOutboxRepository) Save(_ context.Context, entries ...*shared.OutboxEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range entries {
		r.entries[e.ID] = e
	}
	return nil
}

func (r *mockOutboxRepository) FindPending(ctx context.Context, limit int) ([]*shared.OutboxEntry, error) {
	if r.findPendingFn != nil {
		return r.findPendingFn(ctx, limit)
	}
	return r.filter(limit, func(e *shared.OutboxEntry) bool {
		return e.Status == shared.OutboxStatusPending
	}), nil
}

func (r *mockOutboxRepository) FindRetryable(_ context.Context, before time.Time, limit int) ([]*shared.OutboxEntry, error) {
	return r.filter(limit, func(e *shared.OutboxEntry) bool {
		return e.Status == shared.OutboxStatusFailed && e.NextRetryAt != nil && !e.NextRetryAt.After(before)
	}), nil
}

func (r *mockOutboxRepository) MarkProcessing(ctx context.Context, ids []uuid.UUID) ([]*shared.OutboxEntry, error) {
	if r.markProcessingFn != nil {
		return r.markProcessingFn(ctx, ids)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var claimed []*shared.OutboxEntry
	for _, id := range ids {
		if e, ok := r.entries[id]; ok && e.MarkProcessing() == nil {
			claimed = append(claimed, e)
		}
	}
	return claimed, nil
}

func (r *mockOutboxRepository) Update(_ context.Context, entry *shared.OutboxEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.ID] = entry
	return nil
}

func (r *mockOutboxRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	if r.deleteFn != nil {
		return r.deleteFn(ctx, before)
	}
	return 0, nil
}

func (r *mockOutboxRepository) filter(limit int, keep func(*shared.OutboxEntry) bool) []*shared.OutboxEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*shared.OutboxEntry
	for _, e := range r.entries {
		if keep(e) {
			result = append(result, e)
			if len(result) >= limit {
				break
			}
		}
	}
	return result
}

func (r *mockOutboxRepository) get(id uuid.UUID) *shared.OutboxEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[id]
}

func newTestProcessor(repo shared.OutboxRepository, bus *InMemoryEventBus) *OutboxProcessor {
	return NewOutboxProcessor(repo, bus, NewBrokerageEventSerializer(), DefaultOutboxProcessorConfig(), zap.NewNop())
}

// publishToOutbox stores event the way a committed transaction would
func publishToOutbox(t *testing.T, repo shared.OutboxRepository, event shared.DomainEvent) *shared.OutboxEntry {
	t.Helper()
	require.NoError(t, NewOutboxPublisher(repo, NewBrokerageEventSerializer()).Publish(context.Background(), event))
	pending, err := repo.FindPending(context.Background(), 100)
	require.NoError(t, err)
	for _, e := range pending {
		if e.EventID == event.EventID() {
			return e
		}
	}
	t.Fatalf("event %s not in outbox", event.EventID())
	return nil
}

func TestOutboxPublisher_StoresPendingEntries(t *testing.T) {
	repo := newMockOutboxRepository()
	event := newAssignedEvent()

	entry := publishToOutbox(t, repo, event)

	assert.Equal(t, purchasing.EventTypeExecutionIDAssigned, entry.EventType)
	assert.Equal(t, event.AggregateID(), entry.AggregateID)
	assert.Equal(t, purchasing.AggregateTypePurchaseOrder, entry.AggregateType)
	assert.Equal(t, shared.DefaultOutboxMaxRetries, entry.MaxRetries)
	assert.Contains(t, string(entry.Payload), `"execution_id":"J00001-ACME.1"`)

	// nil events are skipped
	require.NoError(t, NewOutboxPublisher(repo, NewBrokerageEventSerializer()).Publish(context.Background(), nil))
}

func TestOutboxProcessor_DeliversPendingEntries(t *testing.T) {
	repo := newMockOutboxRepository()
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newRecordingHandler(purchasing.EventTypeExecutionIDAssigned)
	bus.Subscribe(handler)

	entry := publishToOutbox(t, repo, newAssignedEvent())
	p := newTestProcessor(repo, bus)

	assert.Equal(t, 1, p.ProcessBatch(context.Background()))
	assert.Equal(t, 1, handler.count())
	stored := repo.get(entry.ID)
	assert.Equal(t, shared.OutboxStatusSent, stored.Status)
	assert.NotNil(t, stored.ProcessedAt)

	assert.Equal(t, 0, p.ProcessBatch(context.Background()))
	assert.Equal(t, 1, handler.count())
}

func TestOutboxProcessor_FailedHandlerSchedulesRetry(t *testing.T) {
	repo := newMockOutboxRepository()
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newRecordingHandler(purchasing.EventTypeExecutionIDAssigned)
	handler.err = errors.New("redis unavailable")
	bus.Subscribe(handler)

	entry := publishToOutbox(t, repo, newAssignedEvent())
	p := newTestProcessor(repo, bus)

	assert.Equal(t, 0, p.ProcessBatch(context.Background()))
	stored := repo.get(entry.ID)
	assert.Equal(t, shared.OutboxStatusFailed, stored.Status)
	assert.Equal(t, 1, stored.RetryCount)
	assert.Equal(t, "redis unavailable", stored.LastError)
	require.NotNil(t, stored.NextRetryAt)

	handler.mu.Lock()
	handler.err = nil
	handler.mu.Unlock()
	past := time.Now().Add(-time.Second)
	stored.NextRetryAt = &past

	assert.Equal(t, 1, p.ProcessBatch(context.Background()))
	assert.Equal(t, shared.OutboxStatusSent, repo.get(entry.ID).Status)
	assert.Equal(t, 2, handler.count())
}

func TestOutboxProcessor_UnknownEventTypeDiesAfterMaxRetries(t *testing.T) {
	repo := newMockOutboxRepository()
	entry := publishToOutbox(t, repo, newAssignedEvent())
	entry.EventType = "Unregistered"
	entry.MaxRetries = 1

	p := newTestProcessor(repo, NewInMemoryEventBus(zap.NewNop()))

	assert.Equal(t, 0, p.ProcessBatch(context.Background()))
	stored := repo.get(entry.ID)
	assert.True(t, stored.IsDead())
	assert.Contains(t, stored.LastError, "unknown event type")
	assert.Nil(t, stored.NextRetryAt)
}

func TestOutboxProcessor_RepositoryErrorsStopTheBatch(t *testing.T) {
	repo := newMockOutboxRepository()
	publishToOutbox(t, repo, newAssignedEvent())

	repo.markProcessingFn = func(context.Context, []uuid.UUID) ([]*shared.OutboxEntry, error) {
		return nil, errors.New("connection reset")
	}
	p := newTestProcessor(repo, NewInMemoryEventBus(zap.NewNop()))
	assert.Equal(t, 0, p.ProcessBatch(context.Background()))

	repo.findPendingFn = func(context.Context, int) ([]*shared.OutboxEntry, error) {
		return nil, errors.New("connection reset")
	}
	assert.Equal(t, 0, p.ProcessBatch(context.Background()))
}

func TestOutboxProcessor_StartStop(t *testing.T) {
	repo := newMockOutboxRepository()
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newRecordingHandler(purchasing.EventTypeExecutionIDAssigned)
	bus.Subscribe(handler)
	publishToOutbox(t, repo, newAssignedEvent())

	var cleanups sync.WaitGroup
	cleanups.Add(1)
	var once sync.Once
	repo.deleteFn = func(context.Context, time.Time) (int64, error) {
		once.Do(cleanups.Done)
		return 0, nil
	}

	cfg := DefaultOutboxProcessorConfig()
	cfg.PollInterval = 10 * time.Millisecond
	cfg.CleanupInterval = 10 * time.Millisecond
	p := NewOutboxProcessor(repo, bus, NewBrokerageEventSerializer(), cfg, nil)

	require.NoError(t, p.Start(context.Background()))
	assert.Eventually(t, func() bool { return handler.count() == 1 }, time.Second, 5*time.Millisecond)
	cleanups.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, p.Stop(ctx))
}
