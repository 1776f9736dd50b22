package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/printbroker/backend/internal/application/brokerage"
	"github.com/printbroker/backend/internal/domain/job"
	"github.com/printbroker/backend/internal/domain/purchasing"
	"github.com/printbroker/backend/internal/domain/shared"
	"github.com/printbroker/backend/internal/infrastructure/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormTransactionScope_Commit(t *testing.T) {
	db := newTestDB(t)
	scope := NewGormTransactionScope(db)
	ctx := context.Background()

	j := newTestJob(t, "JOB-000001", job.RoutingDirect)
	vendor, err := purchasing.NewVendor("Acme Print", "", false)
	require.NoError(t, err)

	err = scope.Execute(ctx, func(repos brokerage.TransactionalRepositories) error {
		if err := repos.Jobs().Save(ctx, j); err != nil {
			return err
		}
		return repos.Vendors().Save(ctx, vendor)
	})
	require.NoError(t, err)

	_, err = NewGormJobRepository(db).FindByID(ctx, j.ID)
	assert.NoError(t, err)
	_, err = NewGormVendorRepository(db).FindByID(ctx, vendor.ID)
	assert.NoError(t, err)
}

func TestGormTransactionScope_Rollback(t *testing.T) {
	db := newTestDB(t)
	scope := NewGormTransactionScope(db)
	ctx := context.Background()

	j := newTestJob(t, "JOB-000001", job.RoutingDirect)
	boom := errors.New("boom")

	err := scope.Execute(ctx, func(repos brokerage.TransactionalRepositories) error {
		if err := repos.Jobs().Save(ctx, j); err != nil {
			return err
		}
		if _, err := repos.Jobs().NextBaseJobID(ctx); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = NewGormJobRepository(db).FindByID(ctx, j.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	// The sequence advance was rolled back with everything else
	base, err := NewGormJobRepository(db).NextBaseJobID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "J00001", base)
}

func TestGormTransactionScope_OutboxFollowsTransaction(t *testing.T) {
	db := newTestDB(t)
	scope := NewGormTransactionScope(db)
	outbox := event.NewGormOutboxRepository(db)
	ctx := context.Background()

	t.Run("committed events are pending", func(t *testing.T) {
		j := newTestJob(t, "JOB-000001", job.RoutingDirect)
		err := scope.Execute(ctx, func(repos brokerage.TransactionalRepositories) error {
			if err := repos.Jobs().Save(ctx, j); err != nil {
				return err
			}
			return repos.Outbox().Publish(ctx, j.GetDomainEvents()...)
		})
		require.NoError(t, err)

		pending, err := outbox.FindPending(ctx, 10)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, job.EventTypeJobCreated, pending[0].EventType)
		assert.Equal(t, j.ID, pending[0].AggregateID)
		assert.Equal(t, shared.OutboxStatusPending, pending[0].Status)
	})

	t.Run("rolled back events are gone", func(t *testing.T) {
		j := newTestJob(t, "JOB-000002", job.RoutingDirect)
		boom := errors.New("boom")
		err := scope.Execute(ctx, func(repos brokerage.TransactionalRepositories) error {
			if err := repos.Outbox().Publish(ctx, j.GetDomainEvents()...); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		pending, err := outbox.FindPending(ctx, 10)
		require.NoError(t, err)
		assert.Len(t, pending, 1, "only the committed entry remains")
	})
}
