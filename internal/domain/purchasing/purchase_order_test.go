package purchasing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/printbroker/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testBuyerID   = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	testPartnerID = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

func newVendorPO(t *testing.T, jobID, vendorID uuid.UUID, buyCost int64) *PurchaseOrder {
	t.Helper()
	po, err := NewPurchaseOrder(NewPurchaseOrderParams{
		JobID:           jobID,
		PONumber:        "PO-000001",
		OriginCompanyID: testBuyerID,
		TargetVendorID:  &vendorID,
		Costs:           Costs{BuyCost: decimal.NewFromInt(buyCost)},
		JobQuantity:     5000,
	})
	require.NoError(t, err)
	return po
}

func TestNewPurchaseOrder(t *testing.T) {
	jobID := uuid.New()
	vendorID := uuid.New()

	t.Run("creates pending vendor order with derived rates", func(t *testing.T) {
		po, err := NewPurchaseOrder(NewPurchaseOrderParams{
			JobID:           jobID,
			PONumber:        "PO-000007",
			OriginCompanyID: testBuyerID,
			TargetVendorID:  &vendorID,
			Costs: Costs{
				BuyCost:   decimal.NewFromInt(500),
				PaperCost: decimal.NewFromInt(120),
			},
			JobQuantity: 10000,
		})
		require.NoError(t, err)
		assert.Equal(t, StatusPending, po.Status)
		assert.False(t, po.ExecutionID.IsAssigned())
		assert.True(t, po.IsVendorFacing())
		assert.True(t, po.BuyCPM.Equal(decimal.NewFromInt(50)))
		assert.True(t, po.PaperCPM.Equal(decimal.NewFromInt(12)))
		require.Len(t, po.GetDomainEvents(), 1)
		assert.Equal(t, EventTypePurchaseOrderCreated, po.GetDomainEvents()[0].EventType())
	})

	t.Run("rejects both targets", func(t *testing.T) {
		_, err := NewPurchaseOrder(NewPurchaseOrderParams{
			JobID:           jobID,
			PONumber:        "PO-000001",
			OriginCompanyID: testBuyerID,
			TargetCompanyID: &testPartnerID,
			TargetVendorID:  &vendorID,
		})
		assert.True(t, shared.HasCode(err, shared.CodeInvalidTarget))
	})

	t.Run("rejects missing target", func(t *testing.T) {
		_, err := NewPurchaseOrder(NewPurchaseOrderParams{
			JobID:           jobID,
			PONumber:        "PO-000001",
			OriginCompanyID: testBuyerID,
		})
		assert.True(t, shared.HasCode(err, shared.CodeInvalidTarget))
	})

	t.Run("rejects negative cost", func(t *testing.T) {
		_, err := NewPurchaseOrder(NewPurchaseOrderParams{
			JobID:           jobID,
			PONumber:        "PO-000001",
			OriginCompanyID: testBuyerID,
			TargetVendorID:  &vendorID,
			Costs:           Costs{PaperMarkup: decimal.NewFromInt(-1)},
		})
		assert.True(t, shared.HasCode(err, shared.CodeInvalidCost))
	})

	t.Run("zero quantity leaves rates at zero", func(t *testing.T) {
		po, err := NewPurchaseOrder(NewPurchaseOrderParams{
			JobID:           jobID,
			PONumber:        "PO-000001",
			OriginCompanyID: testBuyerID,
			TargetVendorID:  &vendorID,
			Costs:           Costs{BuyCost: decimal.NewFromInt(500)},
		})
		require.NoError(t, err)
		assert.True(t, po.BuyCPM.IsZero())
	})
}

func TestPurchaseOrder_CostBearing(t *testing.T) {
	jobID := uuid.New()

	buyerToPartner, err := NewPurchaseOrder(NewPurchaseOrderParams{
		JobID:           jobID,
		PONumber:        "PO-000001",
		OriginCompanyID: testBuyerID,
		TargetCompanyID: &testPartnerID,
	})
	require.NoError(t, err)
	assert.True(t, buyerToPartner.IsCostBearing(testBuyerID))
	assert.False(t, buyerToPartner.IsVendorFacing())

	vendorID := uuid.New()
	partnerToVendor, err := NewPurchaseOrder(NewPurchaseOrderParams{
		JobID:           jobID,
		PONumber:        "PO-000002",
		OriginCompanyID: testPartnerID,
		TargetVendorID:  &vendorID,
	})
	require.NoError(t, err)
	assert.False(t, partnerToVendor.IsCostBearing(testBuyerID))
	assert.True(t, partnerToVendor.IsVendorFacing())

	assert.False(t, buyerToPartner.IsCostBearing(uuid.Nil))
}

func TestPurchaseOrder_StatusTransitions(t *testing.T) {
	po := newVendorPO(t, uuid.New(), uuid.New(), 100)

	require.NoError(t, po.Issue())
	assert.NotNil(t, po.IssuedAt)
	require.NoError(t, po.Accept())
	require.NoError(t, po.MarkPaid())

	err := po.Cancel("too late")
	assert.True(t, shared.HasCode(err, shared.CodeInvalidState))
	assert.True(t, po.IsActive())
}

func TestPurchaseOrder_CancelRejectDelete(t *testing.T) {
	t.Run("cancel voids", func(t *testing.T) {
		po := newVendorPO(t, uuid.New(), uuid.New(), 100)
		po.ClearDomainEvents()
		require.NoError(t, po.Cancel("customer changed mind"))
		assert.Equal(t, StatusCancelled, po.Status)
		assert.False(t, po.IsActive())
		require.Len(t, po.GetDomainEvents(), 1)
		assert.Equal(t, EventTypePurchaseOrderVoided, po.GetDomainEvents()[0].EventType())
	})

	t.Run("reject voids", func(t *testing.T) {
		po := newVendorPO(t, uuid.New(), uuid.New(), 100)
		require.NoError(t, po.Reject("no capacity"))
		assert.Equal(t, StatusRejected, po.Status)
		assert.False(t, po.IsActive())
	})

	t.Run("delete is soft and once", func(t *testing.T) {
		po := newVendorPO(t, uuid.New(), uuid.New(), 100)
		require.NoError(t, po.Delete())
		assert.True(t, po.IsDeleted())
		assert.False(t, po.IsActive())
		assert.Error(t, po.Delete())
		assert.Error(t, po.Issue())
	})
}

func TestPurchaseOrder_UpdateCosts(t *testing.T) {
	po := newVendorPO(t, uuid.New(), uuid.New(), 100)
	require.NoError(t, po.UpdateCosts(Costs{BuyCost: decimal.NewFromInt(250)}, 1000))
	assert.True(t, po.BuyCost.Equal(decimal.NewFromInt(250)))
	assert.True(t, po.BuyCPM.Equal(decimal.NewFromInt(250)))

	require.NoError(t, po.Cancel(""))
	err := po.UpdateCosts(Costs{BuyCost: decimal.NewFromInt(1)}, 1000)
	assert.True(t, shared.HasCode(err, shared.CodeInvalidState))
}

func TestPurchaseOrder_ExecutionID(t *testing.T) {
	t.Run("assigns once", func(t *testing.T) {
		po := newVendorPO(t, uuid.New(), uuid.New(), 100)
		po.ClearDomainEvents()
		id, err := FormatExecutionID("J00042", "ACME", 2)
		require.NoError(t, err)

		require.NoError(t, po.AssignExecutionID(id))
		assert.Equal(t, "J00042-ACME.2", po.ExecutionID.Value())
		require.Len(t, po.GetDomainEvents(), 1)
		evt, ok := po.GetDomainEvents()[0].(*ExecutionIDAssignedEvent)
		require.True(t, ok)
		assert.Equal(t, "J00042-ACME.2", evt.ExecutionID)

		other, _ := FormatExecutionID("J00042", "ACME", 3)
		err = po.AssignExecutionID(other)
		assert.True(t, shared.HasCode(err, shared.CodeExecutionIDLocked))
		assert.Equal(t, "J00042-ACME.2", po.ExecutionID.Value())
	})

	t.Run("rejects non vendor facing", func(t *testing.T) {
		po, err := NewPurchaseOrder(NewPurchaseOrderParams{
			JobID:           uuid.New(),
			PONumber:        "PO-000003",
			OriginCompanyID: testBuyerID,
			TargetCompanyID: &testPartnerID,
		})
		require.NoError(t, err)
		id, _ := FormatExecutionID("J00001", "ACME", 1)
		assert.True(t, shared.HasCode(po.AssignExecutionID(id), shared.CodeNotVendorFacing))
	})

	t.Run("vendor change locked after assignment", func(t *testing.T) {
		po := newVendorPO(t, uuid.New(), uuid.New(), 100)
		require.NoError(t, po.ChangeVendor(uuid.New()))

		id, _ := FormatExecutionID("J00001", "ACME", 1)
		require.NoError(t, po.AssignExecutionID(id))
		err := po.ChangeVendor(uuid.New())
		assert.True(t, shared.HasCode(err, shared.CodeExecutionIDLocked))
	})
}

func TestCountVendors(t *testing.T) {
	jobID := uuid.New()
	vendorA := uuid.New()
	vendorB := uuid.New()

	a1 := newVendorPO(t, jobID, vendorA, 100)
	a2 := newVendorPO(t, jobID, vendorA, 200)
	b := newVendorPO(t, jobID, vendorB, 300)
	require.NoError(t, b.Cancel(""))
	partnerVendor, err := NewPurchaseOrder(NewPurchaseOrderParams{
		JobID:           jobID,
		PONumber:        "PO-000009",
		OriginCompanyID: testPartnerID,
		TargetVendorID:  &vendorB,
	})
	require.NoError(t, err)

	orders := []PurchaseOrder{*a1, *a2, *b, *partnerVendor}
	assert.Equal(t, 1, CountCostBearingVendors(orders, testBuyerID))
	assert.Equal(t, 2, CountActiveVendors(orders))
	assert.Equal(t, 0, CountActiveVendors(nil))
}
