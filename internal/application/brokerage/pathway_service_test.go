package brokerage_test

import (
	"testing"

	"github.com/printbroker/backend/internal/application/brokerage"
	"github.com/printbroker/backend/internal/domain/job"
	"github.com/printbroker/backend/internal/domain/purchasing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathwayService_PartnerMediatedStaysP1(t *testing.T) {
	h := newHarness(t)
	j := h.createJob(t, string(job.RoutingPartnerMediated), 1000)

	result, err := h.pathways.Reclassify(h.ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, string(job.PathwayP1), result.Pathway)
	assert.Equal(t, 0, result.VendorCount)

	acme := h.createVendor(t, "acme", "ACME")
	h.vendorPO(t, j.ID, acme, 100)
	stored := h.getJob(t, j.ID)
	assert.Equal(t, string(job.PathwayP1), stored.Pathway)
	assert.Equal(t, 1, stored.VendorCount)

	beta := h.createVendor(t, "beta", "BETA")
	h.vendorPO(t, j.ID, beta, 100)
	stored = h.getJob(t, j.ID)
	assert.Equal(t, string(job.PathwayP1), stored.Pathway)
	assert.Equal(t, 2, stored.VendorCount)
}

func TestPathwayService_P2AndP3FollowActiveVendors(t *testing.T) {
	h := newHarness(t)
	j := h.createJob(t, string(job.RoutingDirect), 1000)
	acme := h.createVendor(t, "acme", "ACME")
	beta := h.createVendor(t, "beta", "BETA")

	h.vendorPO(t, j.ID, acme, 100)
	assert.Equal(t, string(job.PathwayP2), h.getJob(t, j.ID).Pathway)

	second := h.vendorPO(t, j.ID, beta, 100)
	stored := h.getJob(t, j.ID)
	assert.Equal(t, string(job.PathwayP3), stored.Pathway)
	assert.Equal(t, 2, stored.VendorCount)

	_, err := h.orders.Cancel(h.ctx, second.ID, brokerage.VoidPurchaseOrderRequest{Reason: "vendor declined"})
	require.NoError(t, err)
	stored = h.getJob(t, j.ID)
	assert.Equal(t, string(job.PathwayP2), stored.Pathway)
	assert.Equal(t, 1, stored.VendorCount)

	changes := h.events.HandledOfType(job.EventTypePathwayChanged)
	assert.Len(t, changes, 3)
}

func TestPathwayService_SameVendorTwiceCountsOnce(t *testing.T) {
	h := newHarness(t)
	j := h.createJob(t, string(job.RoutingDirect), 1000)
	acme := h.createVendor(t, "acme", "ACME")

	h.vendorPO(t, j.ID, acme, 100)
	h.vendorPO(t, j.ID, acme, 200)

	stored := h.getJob(t, j.ID)
	assert.Equal(t, string(job.PathwayP2), stored.Pathway)
	assert.Equal(t, 1, stored.VendorCount)
}

func TestPathwayService_InternalRoutingIsNotCounted(t *testing.T) {
	h := newHarness(t)
	j := h.createJob(t, string(job.RoutingDirect), 1000)
	partner := h.createCompany(t, "Partner Press", purchasing.CompanyRoleIntermediary)
	acme := h.createVendor(t, "acme", "ACME")
	beta := h.createVendor(t, "beta", "BETA")

	h.vendorPO(t, j.ID, acme, 100)
	// Partner-originated order: not paid by the buyer, so not cost-bearing
	h.po(t, brokerage.CreatePurchaseOrderRequest{
		JobID:           j.ID,
		OriginCompanyID: &partner,
		TargetVendorID:  &beta,
		CostsInput:      brokerage.CostsInput{BuyCost: dec("300")},
	})

	result, err := h.pathways.Reclassify(h.ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, string(job.PathwayP2), result.Pathway)
	assert.Equal(t, 1, result.VendorCount)
	assert.False(t, result.Changed)
}

func TestPathwayService_InconsistencyIsReportedNotRepaired(t *testing.T) {
	h := newHarness(t)
	j := h.createJob(t, string(job.RoutingPartnerMediated), 1000)
	acme := h.createVendor(t, "acme", "ACME")
	h.vendorPO(t, j.ID, acme, 100)
	require.Equal(t, string(job.PathwayP1), h.getJob(t, j.ID).Pathway)

	direct := string(job.RoutingDirect)
	_, err := h.jobs.UpdateFinancials(h.ctx, j.ID, brokerage.UpdateFinancialsRequest{RoutingType: &direct})
	require.NoError(t, err)

	result, err := h.pathways.Reclassify(h.ctx, j.ID)
	require.NoError(t, err)
	require.NotNil(t, result.Inconsistency)
	assert.Equal(t, job.CodePathwayRoutingMismatch, result.Inconsistency.Code)
	assert.Equal(t, string(job.PathwayP1), result.Pathway)
	assert.False(t, result.Changed)
	assert.Equal(t, string(job.PathwayP1), h.getJob(t, j.ID).Pathway)
}

func TestPathwayService_ZeroVendorsKeepsPathway(t *testing.T) {
	h := newHarness(t)
	j := h.createJob(t, string(job.RoutingDirect), 1000)
	acme := h.createVendor(t, "acme", "ACME")
	po := h.vendorPO(t, j.ID, acme, 100)
	require.Equal(t, string(job.PathwayP2), h.getJob(t, j.ID).Pathway)

	require.NoError(t, h.orders.Delete(h.ctx, po.ID))

	stored := h.getJob(t, j.ID)
	assert.Equal(t, string(job.PathwayP2), stored.Pathway)
	assert.Equal(t, 0, stored.VendorCount)
}
