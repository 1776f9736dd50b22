package handler_test

import (
	"net/http"
	"testing"

	"github.com/printbroker/backend/internal/application/brokerage"
	"github.com/printbroker/backend/internal/interfaces/http/dto"
	"github.com/printbroker/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfitSplitHandler_PartnerMediated(t *testing.T) {
	a := newAPI(t)
	j := a.createJob("PARTNER_MEDIATED", "1000")
	acme := a.createVendor("acme", "ACME")
	w := a.do(http.MethodPost, "/api/v1/purchase-orders", map[string]any{
		"job_id":           j.ID,
		"target_vendor_id": acme.ID,
		"buy_cost":         "600",
		"paper_markup":     "50",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(http.MethodGet, "/api/v1/jobs/"+j.ID.String()+"/profit-split", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	split := testutil.DecodeData[brokerage.ProfitSplitResponse](t, w)
	assert.True(t, decimal.NewFromInt(250).Equal(split.IntermediaryShare), "got %s", split.IntermediaryShare)
	assert.True(t, decimal.NewFromInt(200).Equal(split.BuyerShare), "got %s", split.BuyerShare)
}

func TestProfitSplitHandler_NegativeMarginNeedsOptIn(t *testing.T) {
	a := newAPI(t)
	j := a.createJob("DIRECT", "1000")
	acme := a.createVendor("acme", "ACME")
	path := "/api/v1/jobs/" + j.ID.String() + "/profit-split"
	body := map[string]any{
		"job_id":           j.ID,
		"target_vendor_id": acme.ID,
		"buy_cost":         "1200",
	}

	w := a.do(http.MethodPost, "/api/v1/purchase-orders", body)
	testutil.AssertErrorResponse(t, w, http.StatusUnprocessableEntity, dto.ErrCodeNegativeMargin)
	w = a.do(http.MethodGet, path, nil)
	testutil.AssertErrorResponse(t, w, http.StatusNotFound, dto.ErrCodeNotFound)

	body["allow_negative_margin"] = true
	w = a.do(http.MethodPost, "/api/v1/purchase-orders", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(http.MethodPost, path+"/recompute", nil)
	testutil.AssertErrorResponse(t, w, http.StatusUnprocessableEntity, dto.ErrCodeNegativeMargin)

	w = a.do(http.MethodPost, path+"/recompute", map[string]any{"allow_negative_margin": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := testutil.DecodeData[brokerage.RecomputeResult](t, w)
	assert.True(t, decimal.NewFromInt(-200).Equal(result.Split.GrossMargin))
}

func TestProfitSplitHandler_SellPriceBelowCostIsRejected(t *testing.T) {
	a := newAPI(t)
	j := a.createJob("DIRECT", "1000")
	acme := a.createVendor("acme", "ACME")
	a.createPO(j.ID.String(), acme.ID.String(), "600")
	path := "/api/v1/jobs/" + j.ID.String()

	w := a.do(http.MethodPut, path+"/financials", map[string]any{"sell_price": "500"})
	testutil.AssertErrorResponse(t, w, http.StatusUnprocessableEntity, dto.ErrCodeNegativeMargin)

	w = a.do(http.MethodGet, path+"/profit-split", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	split := testutil.DecodeData[brokerage.ProfitSplitResponse](t, w)
	assert.True(t, decimal.NewFromInt(400).Equal(split.GrossMargin), "got %s", split.GrossMargin)
}

func TestProfitSplitHandler_Override(t *testing.T) {
	a := newAPI(t)
	j := a.createJob("DIRECT", "1000")
	acme := a.createVendor("acme", "ACME")
	a.createPO(j.ID.String(), acme.ID.String(), "600")
	path := "/api/v1/jobs/" + j.ID.String() + "/profit-split"

	w := a.do(http.MethodPut, path+"/override", map[string]any{"intermediary_share": "100", "buyer_share": "300"})
	testutil.AssertErrorResponse(t, w, http.StatusBadRequest, dto.ErrCodeValidation)

	w = a.do(http.MethodPut, path+"/override", map[string]any{
		"intermediary_share": "100",
		"buyer_share":        "300",
		"reason":             "negotiated",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, testutil.DecodeData[brokerage.ProfitSplitResponse](t, w).IsOverridden)

	w = a.do(http.MethodPost, path+"/recompute", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, testutil.DecodeData[brokerage.RecomputeResult](t, w).Skipped)

	w = a.do(http.MethodDelete, path+"/override", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.False(t, testutil.DecodeData[brokerage.ProfitSplitResponse](t, w).IsOverridden)
}

func TestProfitSplitHandler_Reclassify(t *testing.T) {
	a := newAPI(t)
	j := a.createJob("DIRECT", "1000")
	acme := a.createVendor("acme", "ACME")
	a.createPO(j.ID.String(), acme.ID.String(), "500")

	w := a.do(http.MethodPost, "/api/v1/jobs/"+j.ID.String()+"/pathway/reclassify", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := testutil.DecodeData[brokerage.ReclassifyResult](t, w)
	assert.Equal(t, 1, result.VendorCount)
	assert.Equal(t, "P2", result.Pathway)
}
