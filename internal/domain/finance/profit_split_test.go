package finance

import (
	"testing"

	"github.com/google/uuid"
	"github.com/printbroker/backend/internal/domain/job"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfitSplit_OverrideLifecycle(t *testing.T) {
	totals := CostTotals{TotalCost: dec("600"), PaperMarkup: dec("50")}
	result := DefaultSplitPolicy().Calculate(SplitInput{
		SellPrice: dec("1000"), TotalCost: totals.TotalCost, PaperMarkup: totals.PaperMarkup,
		RoutingType: job.RoutingPartnerMediated,
	})
	ps := NewProfitSplit(uuid.New(), dec("1000"), job.RoutingPartnerMediated, totals, result)
	assertDec(t, "250", ps.IntermediaryShare)
	assert.False(t, ps.IsOverridden)

	assert.Error(t, ps.Override(dec("300"), dec("100"), " "))

	require.NoError(t, ps.Override(dec("300.004"), dec("100"), "negotiated with partner"))
	assert.True(t, ps.IsOverridden)
	assertDec(t, "300", ps.IntermediaryShare)
	require.NotNil(t, ps.OverriddenAt)

	ps.ClearOverride()
	assert.False(t, ps.IsOverridden)
	assert.Nil(t, ps.OverriddenAt)
	assert.Empty(t, ps.OverrideReason)
}
