package brokerage_test

import (
	"testing"

	"github.com/printbroker/backend/internal/application/brokerage"
	"github.com/printbroker/backend/internal/domain/job"
	"github.com/printbroker/backend/internal/domain/purchasing"
	"github.com/printbroker/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfitSplitService_ExcludesNonCostBearingOrders(t *testing.T) {
	h := newHarness(t)
	j := h.createJob(t, string(job.RoutingDirect), 1000)
	partner := h.createCompany(t, "Partner Press", purchasing.CompanyRoleIntermediary)
	acme := h.createVendor(t, "acme", "ACME")
	beta := h.createVendor(t, "beta", "BETA")

	h.vendorPO(t, j.ID, acme, 500)
	h.po(t, brokerage.CreatePurchaseOrderRequest{
		JobID:           j.ID,
		OriginCompanyID: &partner,
		TargetVendorID:  &beta,
		CostsInput:      brokerage.CostsInput{BuyCost: dec("300")},
	})

	split, err := h.splits.Get(h.ctx, j.ID)
	require.NoError(t, err)
	assert.True(t, dec("500").Equal(split.TotalCost), "got %s", split.TotalCost)
	assert.True(t, dec("500").Equal(split.GrossMargin))
}

func TestProfitSplitService_PartnerMediatedSplit(t *testing.T) {
	h := newHarness(t)
	j := h.createJob(t, string(job.RoutingPartnerMediated), 1000)
	acme := h.createVendor(t, "acme", "ACME")
	h.po(t, brokerage.CreatePurchaseOrderRequest{
		JobID:          j.ID,
		TargetVendorID: &acme,
		CostsInput:     brokerage.CostsInput{BuyCost: dec("600"), PaperMarkup: dec("50")},
	})

	split, err := h.splits.Get(h.ctx, j.ID)
	require.NoError(t, err)
	assert.True(t, dec("400").Equal(split.GrossMargin))
	assert.True(t, dec("250").Equal(split.IntermediaryShare), "got %s", split.IntermediaryShare)
	assert.True(t, dec("200").Equal(split.BuyerShare), "got %s", split.BuyerShare)
	assert.True(t, dec("40").Equal(split.MarginPercent))
}

func TestProfitSplitService_DirectSplit(t *testing.T) {
	h := newHarness(t)
	j := h.createJob(t, string(job.RoutingDirect), 1000)
	acme := h.createVendor(t, "acme", "ACME")
	h.po(t, brokerage.CreatePurchaseOrderRequest{
		JobID:          j.ID,
		TargetVendorID: &acme,
		CostsInput:     brokerage.CostsInput{BuyCost: dec("600"), PaperMarkup: dec("50")},
	})

	split, err := h.splits.Get(h.ctx, j.ID)
	require.NoError(t, err)
	assert.True(t, dec("140").Equal(split.IntermediaryShare), "got %s", split.IntermediaryShare)
	assert.True(t, dec("260").Equal(split.BuyerShare), "got %s", split.BuyerShare)
}

func TestProfitSplitService_NegativeMarginGuard(t *testing.T) {
	h := newHarness(t)
	j := h.createJob(t, string(job.RoutingDirect), 1000)
	acme := h.createVendor(t, "acme", "ACME")
	req := brokerage.CreatePurchaseOrderRequest{
		JobID:          j.ID,
		TargetVendorID: &acme,
		CostsInput:     brokerage.CostsInput{BuyCost: dec("1200")},
	}

	// Without the flag nothing is written
	_, err := h.orders.Create(h.ctx, req)
	assert.True(t, shared.HasCode(err, shared.CodeNegativeMargin))
	orders, err := h.orders.ListByJob(h.ctx, j.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)
	_, err = h.splits.Get(h.ctx, j.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Empty(t, h.events.HandledOfType(purchasing.EventTypePurchaseOrderCreated))

	req.AllowNegativeMargin = true
	h.po(t, req)

	stored, err := h.splits.Get(h.ctx, j.ID)
	require.NoError(t, err)
	assert.True(t, dec("-200").Equal(stored.GrossMargin), "got %s", stored.GrossMargin)

	_, err = h.splits.Recompute(h.ctx, j.ID, brokerage.RecomputeOptions{})
	assert.True(t, shared.HasCode(err, shared.CodeNegativeMargin))

	result, err := h.splits.Recompute(h.ctx, j.ID, brokerage.RecomputeOptions{AllowNegativeMargin: true})
	require.NoError(t, err)
	assert.False(t, result.Skipped)
	assert.True(t, dec("-200").Equal(result.Split.GrossMargin), "got %s", result.Split.GrossMargin)
}

func TestProfitSplitService_NegativeCostUpdateIsRolledBack(t *testing.T) {
	h := newHarness(t)
	j := h.createJob(t, string(job.RoutingDirect), 1000)
	acme := h.createVendor(t, "acme", "ACME")
	po := h.vendorPO(t, j.ID, acme, 500)

	_, err := h.orders.UpdateCosts(h.ctx, po.ID, brokerage.UpdateCostsRequest{
		CostsInput: brokerage.CostsInput{BuyCost: dec("1200")},
	})
	assert.True(t, shared.HasCode(err, shared.CodeNegativeMargin))

	stored, err := h.orders.Get(h.ctx, po.ID)
	require.NoError(t, err)
	assert.True(t, dec("500").Equal(stored.BuyCost), "got %s", stored.BuyCost)
	assert.Equal(t, po.Version, stored.Version)
	split, err := h.splits.Get(h.ctx, j.ID)
	require.NoError(t, err)
	assert.True(t, dec("500").Equal(split.TotalCost))
	assert.True(t, dec("500").Equal(split.GrossMargin))

	updated, err := h.orders.UpdateCosts(h.ctx, po.ID, brokerage.UpdateCostsRequest{
		CostsInput:          brokerage.CostsInput{BuyCost: dec("1200")},
		AllowNegativeMargin: true,
	})
	require.NoError(t, err)
	assert.True(t, dec("1200").Equal(updated.BuyCost))

	split, err = h.splits.Get(h.ctx, j.ID)
	require.NoError(t, err)
	assert.True(t, dec("1200").Equal(split.TotalCost))
	assert.True(t, dec("-200").Equal(split.GrossMargin), "got %s", split.GrossMargin)

	// Voiding the order lifts the margin back without any flag
	_, err = h.orders.Cancel(h.ctx, po.ID, brokerage.VoidPurchaseOrderRequest{Reason: "rebid"})
	require.NoError(t, err)
	split, err = h.splits.Get(h.ctx, j.ID)
	require.NoError(t, err)
	assert.True(t, dec("1000").Equal(split.GrossMargin), "got %s", split.GrossMargin)
}

func TestProfitSplitService_NegativeSellPriceUpdateIsRolledBack(t *testing.T) {
	h := newHarness(t)
	j := h.createJob(t, string(job.RoutingDirect), 1000)
	acme := h.createVendor(t, "acme", "ACME")
	h.vendorPO(t, j.ID, acme, 500)

	price := dec("400")
	_, err := h.jobs.UpdateFinancials(h.ctx, j.ID, brokerage.UpdateFinancialsRequest{SellPrice: &price})
	assert.True(t, shared.HasCode(err, shared.CodeNegativeMargin))

	assert.True(t, dec("1000").Equal(h.getJob(t, j.ID).SellPrice))
	split, err := h.splits.Get(h.ctx, j.ID)
	require.NoError(t, err)
	assert.True(t, dec("1000").Equal(split.SellPrice))
	assert.True(t, dec("500").Equal(split.GrossMargin))

	updated, err := h.jobs.UpdateFinancials(h.ctx, j.ID, brokerage.UpdateFinancialsRequest{
		SellPrice:           &price,
		AllowNegativeMargin: true,
	})
	require.NoError(t, err)
	assert.True(t, dec("400").Equal(updated.SellPrice))

	split, err = h.splits.Get(h.ctx, j.ID)
	require.NoError(t, err)
	assert.True(t, dec("400").Equal(split.SellPrice))
	assert.True(t, dec("-100").Equal(split.GrossMargin), "got %s", split.GrossMargin)
}

func TestProfitSplitService_OverrideIsNeverRecomputedAutomatically(t *testing.T) {
	h := newHarness(t)
	j := h.createJob(t, string(job.RoutingDirect), 1000)
	acme := h.createVendor(t, "acme", "ACME")
	h.vendorPO(t, j.ID, acme, 600)

	overridden, err := h.splits.Override(h.ctx, j.ID, brokerage.OverrideProfitSplitRequest{
		IntermediaryShare: dec("100"),
		BuyerShare:        dec("300"),
		Reason:            "negotiated with partner",
	})
	require.NoError(t, err)
	assert.True(t, overridden.IsOverridden)

	// Adding cost triggers a recompute that must leave the override alone
	beta := h.createVendor(t, "beta", "BETA")
	h.vendorPO(t, j.ID, beta, 100)

	result, err := h.splits.Recompute(h.ctx, j.ID, brokerage.RecomputeOptions{})
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.True(t, dec("100").Equal(result.Split.IntermediaryShare))
	assert.True(t, dec("300").Equal(result.Split.BuyerShare))

	cleared, err := h.splits.ClearOverride(h.ctx, j.ID)
	require.NoError(t, err)
	assert.False(t, cleared.IsOverridden)
	assert.True(t, dec("700").Equal(cleared.TotalCost))
	assert.True(t, dec("105").Equal(cleared.IntermediaryShare), "got %s", cleared.IntermediaryShare)
	assert.True(t, dec("195").Equal(cleared.BuyerShare), "got %s", cleared.BuyerShare)
}

func TestProfitSplitService_OverrideWithoutSplit(t *testing.T) {
	h := newHarness(t)
	j := h.createJob(t, string(job.RoutingDirect), 1000)

	_, err := h.splits.Override(h.ctx, j.ID, brokerage.OverrideProfitSplitRequest{
		IntermediaryShare: dec("10"),
		BuyerShare:        dec("20"),
	})
	assert.True(t, shared.HasCode(err, shared.CodeInvalidInput))

	split, err := h.splits.Override(h.ctx, j.ID, brokerage.OverrideProfitSplitRequest{
		IntermediaryShare: dec("10"),
		BuyerShare:        dec("20"),
		Reason:            "flat fee",
	})
	require.NoError(t, err)
	assert.True(t, dec("1000").Equal(split.GrossMargin))
	assert.True(t, dec("10").Equal(split.IntermediaryShare))
}

func TestProfitSplitService_SellPriceChangeRecomputes(t *testing.T) {
	h := newHarness(t)
	j := h.createJob(t, string(job.RoutingDirect), 1000)
	acme := h.createVendor(t, "acme", "ACME")
	h.vendorPO(t, j.ID, acme, 600)

	price := dec("1200")
	_, err := h.jobs.UpdateFinancials(h.ctx, j.ID, brokerage.UpdateFinancialsRequest{SellPrice: &price})
	require.NoError(t, err)

	split, err := h.splits.Get(h.ctx, j.ID)
	require.NoError(t, err)
	assert.True(t, dec("600").Equal(split.GrossMargin))
	assert.True(t, dec("210").Equal(split.IntermediaryShare))
	assert.True(t, dec("390").Equal(split.BuyerShare))
}
