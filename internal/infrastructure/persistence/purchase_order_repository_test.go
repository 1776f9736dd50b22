package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/printbroker/backend/internal/domain/purchasing"
	"github.com/printbroker/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockPurchaseOrderRepository(t *testing.T) (*GormPurchaseOrderRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return NewGormPurchaseOrderRepository(gormDB), mock, mockDB
}

func newTestVendorPO(t *testing.T, jobID, buyerID, vendorID uuid.UUID, number string, buyCost int64) *purchasing.PurchaseOrder {
	t.Helper()
	po, err := purchasing.NewPurchaseOrder(purchasing.NewPurchaseOrderParams{
		JobID:           jobID,
		PONumber:        number,
		OriginCompanyID: buyerID,
		TargetVendorID:  &vendorID,
		Costs:           purchasing.Costs{BuyCost: decimal.NewFromInt(buyCost)},
		JobQuantity:     5000,
	})
	require.NoError(t, err)
	return po
}

func TestGormPurchaseOrderRepository_SaveAndFind(t *testing.T) {
	repo := NewGormPurchaseOrderRepository(newTestDB(t))
	ctx := context.Background()

	jobID, buyerID, vendorID := uuid.New(), uuid.New(), uuid.New()
	po := newTestVendorPO(t, jobID, buyerID, vendorID, "PO-000001", 500)
	require.NoError(t, repo.Save(ctx, po))

	found, err := repo.FindByID(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, "PO-000001", found.PONumber)
	assert.Equal(t, vendorID, found.VendorID())
	assert.True(t, decimal.NewFromInt(500).Equal(found.BuyCost))
	assert.True(t, decimal.NewFromInt(100).Equal(found.BuyCPM))
	assert.False(t, found.ExecutionID.IsAssigned())
	assert.Equal(t, purchasing.StatusPending, found.Status)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormPurchaseOrderRepository_SaveNeverWritesExecutionID(t *testing.T) {
	repo := NewGormPurchaseOrderRepository(newTestDB(t))
	ctx := context.Background()

	po := newTestVendorPO(t, uuid.New(), uuid.New(), uuid.New(), "PO-000001", 500)
	require.NoError(t, repo.Save(ctx, po))

	po.ExecutionID = purchasing.AssignedExecutionID("J00001-ACME.1")
	require.NoError(t, repo.Save(ctx, po))

	found, err := repo.FindByID(ctx, po.ID)
	require.NoError(t, err)
	assert.False(t, found.ExecutionID.IsAssigned())
}

func TestGormPurchaseOrderRepository_FindByJob(t *testing.T) {
	repo := NewGormPurchaseOrderRepository(newTestDB(t))
	ctx := context.Background()

	jobID, buyerID := uuid.New(), uuid.New()
	first := newTestVendorPO(t, jobID, buyerID, uuid.New(), "PO-000001", 500)
	second := newTestVendorPO(t, jobID, buyerID, uuid.New(), "PO-000002", 300)
	require.NoError(t, second.Cancel("duplicate"))
	third := newTestVendorPO(t, jobID, buyerID, uuid.New(), "PO-000003", 200)
	require.NoError(t, third.Delete())
	other := newTestVendorPO(t, uuid.New(), buyerID, uuid.New(), "PO-000004", 100)

	for _, po := range []*purchasing.PurchaseOrder{first, second, third, other} {
		require.NoError(t, repo.Save(ctx, po))
	}

	orders, err := repo.FindByJob(ctx, jobID)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, 1, purchasing.CountActiveVendors(orders))
	assert.Equal(t, purchasing.StatusCancelled, orders[1].Status)
	assert.True(t, orders[2].IsDeleted())
}

func TestGormPurchaseOrderRepository_SaveWithLock(t *testing.T) {
	repo := NewGormPurchaseOrderRepository(newTestDB(t))
	ctx := context.Background()

	po := newTestVendorPO(t, uuid.New(), uuid.New(), uuid.New(), "PO-000001", 500)
	require.NoError(t, repo.Save(ctx, po))

	require.NoError(t, po.UpdateCosts(purchasing.Costs{BuyCost: decimal.NewFromInt(700)}, 7000))
	require.NoError(t, repo.SaveWithLock(ctx, po))
	assert.Equal(t, 2, po.Version)

	found, err := repo.FindByID(ctx, po.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(700).Equal(found.BuyCost))
	assert.Equal(t, 2, found.Version)

	stale := *po
	stale.Version = 1
	err = repo.SaveWithLock(ctx, &stale)
	assert.True(t, shared.HasCode(err, shared.CodeConcurrencyConflict))
}

func TestGormPurchaseOrderRepository_AssignExecutionID(t *testing.T) {
	repo := NewGormPurchaseOrderRepository(newTestDB(t))
	ctx := context.Background()

	po := newTestVendorPO(t, uuid.New(), uuid.New(), uuid.New(), "PO-000001", 500)
	require.NoError(t, repo.Save(ctx, po))

	t.Run("first writer wins", func(t *testing.T) {
		stored, assigned, err := repo.AssignExecutionID(ctx, po.ID, purchasing.AssignedExecutionID("J00001-ACME.1"))
		require.NoError(t, err)
		assert.True(t, assigned)
		assert.Equal(t, "J00001-ACME.1", stored.Value())
	})

	t.Run("second writer reads back the stored value", func(t *testing.T) {
		stored, assigned, err := repo.AssignExecutionID(ctx, po.ID, purchasing.AssignedExecutionID("J00001-ACME.2"))
		require.NoError(t, err)
		assert.False(t, assigned)
		assert.Equal(t, "J00001-ACME.1", stored.Value())

		found, err := repo.FindByID(ctx, po.ID)
		require.NoError(t, err)
		assert.Equal(t, "J00001-ACME.1", found.ExecutionID.Value())
	})

	t.Run("bumps the version so stale copies cannot overwrite it", func(t *testing.T) {
		found, err := repo.FindByID(ctx, po.ID)
		require.NoError(t, err)
		assert.Equal(t, po.Version+1, found.Version)

		// po was loaded before the assignment
		require.NoError(t, po.UpdateCosts(purchasing.Costs{BuyCost: decimal.NewFromInt(900)}, 9000))
		err = repo.SaveWithLock(ctx, po)
		assert.True(t, shared.HasCode(err, shared.CodeConcurrencyConflict))

		found, err = repo.FindByID(ctx, po.ID)
		require.NoError(t, err)
		assert.Equal(t, "J00001-ACME.1", found.ExecutionID.Value())
		assert.True(t, decimal.NewFromInt(500).Equal(found.BuyCost))
	})

	t.Run("unknown purchase order", func(t *testing.T) {
		_, _, err := repo.AssignExecutionID(ctx, uuid.New(), purchasing.AssignedExecutionID("J00001-ACME.1"))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("rejects empty id", func(t *testing.T) {
		_, _, err := repo.AssignExecutionID(ctx, po.ID, purchasing.UnassignedExecutionID())
		assert.True(t, shared.HasCode(err, shared.CodeInvalidInput))
	})
}

func TestGormPurchaseOrderRepository_AssignExecutionID_SQL(t *testing.T) {
	t.Run("compare-and-swap on NULL", func(t *testing.T) {
		repo, mock, mockDB := newMockPurchaseOrderRepository(t)
		defer mockDB.Close()

		poID := uuid.New()
		mock.ExpectExec(`UPDATE "purchase_orders" SET "execution_id"=\$1,"updated_at"=\$2,"version"=version \+ 1 WHERE id = \$3 AND execution_id IS NULL`).
			WithArgs("J00001-ACME.1", sqlmock.AnyArg(), poID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		stored, assigned, err := repo.AssignExecutionID(context.Background(), poID, purchasing.AssignedExecutionID("J00001-ACME.1"))
		require.NoError(t, err)
		assert.True(t, assigned)
		assert.Equal(t, "J00001-ACME.1", stored.Value())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lost race re-reads", func(t *testing.T) {
		repo, mock, mockDB := newMockPurchaseOrderRepository(t)
		defer mockDB.Close()

		poID := uuid.New()
		mock.ExpectExec(`UPDATE "purchase_orders" SET .* WHERE id = \$3 AND execution_id IS NULL`).
			WithArgs("J00001-ACME.2", sqlmock.AnyArg(), poID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT "execution_id" FROM "purchase_orders" WHERE id = \$1`).
			WithArgs(poID).
			WillReturnRows(sqlmock.NewRows([]string{"execution_id"}).AddRow("J00001-ACME.1"))

		stored, assigned, err := repo.AssignExecutionID(context.Background(), poID, purchasing.AssignedExecutionID("J00001-ACME.2"))
		require.NoError(t, err)
		assert.False(t, assigned)
		assert.Equal(t, "J00001-ACME.1", stored.Value())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPurchaseOrderRepository_GeneratePONumber(t *testing.T) {
	repo := NewGormPurchaseOrderRepository(newTestDB(t))

	n, err := repo.GeneratePONumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "PO-000001", n)
}
