package finance

import (
	"testing"

	"github.com/printbroker/backend/internal/domain/job"
	"github.com/printbroker/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(dec(want)), "want %s, got %s", want, got)
}

func TestSplitPolicy_Calculate(t *testing.T) {
	policy := DefaultSplitPolicy()

	t.Run("partner mediated adds paper markup to intermediary", func(t *testing.T) {
		r := policy.Calculate(SplitInput{
			SellPrice:   dec("1000"),
			TotalCost:   dec("600"),
			PaperMarkup: dec("50"),
			RoutingType: job.RoutingPartnerMediated,
		})
		assertDec(t, "400", r.GrossMargin)
		assertDec(t, "250", r.IntermediaryShare)
		assertDec(t, "200", r.BuyerShare)
		assertDec(t, "40", r.MarginPercent)
	})

	t.Run("direct uses 35/65", func(t *testing.T) {
		r := policy.Calculate(SplitInput{
			SellPrice:   dec("1000"),
			TotalCost:   dec("600"),
			PaperMarkup: decimal.Zero,
			RoutingType: job.RoutingDirect,
		})
		assertDec(t, "140", r.IntermediaryShare)
		assertDec(t, "260", r.BuyerShare)
	})

	t.Run("third party vendor ignores paper markup", func(t *testing.T) {
		r := policy.Calculate(SplitInput{
			SellPrice:   dec("1000"),
			TotalCost:   dec("600"),
			PaperMarkup: dec("50"),
			RoutingType: job.RoutingThirdPartyVendor,
		})
		assertDec(t, "140", r.IntermediaryShare)
		assertDec(t, "260", r.BuyerShare)
	})

	t.Run("negative margin is returned as computed", func(t *testing.T) {
		r := policy.Calculate(SplitInput{
			SellPrice:   dec("400"),
			TotalCost:   dec("600"),
			RoutingType: job.RoutingDirect,
		})
		assertDec(t, "-200", r.GrossMargin)
		assertDec(t, "-70", r.IntermediaryShare)
		assertDec(t, "-130", r.BuyerShare)
		assertDec(t, "-50", r.MarginPercent)
	})

	t.Run("rounds half away from zero at output", func(t *testing.T) {
		r := policy.Calculate(SplitInput{
			SellPrice:   dec("100.05"),
			TotalCost:   decimal.Zero,
			RoutingType: job.RoutingPartnerMediated,
		})
		assertDec(t, "50.03", r.BuyerShare)

		r = policy.Calculate(SplitInput{
			SellPrice:   dec("0"),
			TotalCost:   dec("100.05"),
			RoutingType: job.RoutingPartnerMediated,
		})
		assertDec(t, "-50.03", r.BuyerShare)
		assert.True(t, r.MarginPercent.IsZero())
	})
}

func TestSplitPolicy_Validate(t *testing.T) {
	require.NoError(t, DefaultSplitPolicy().Validate())

	bad := DefaultSplitPolicy()
	bad.DirectBuyerShare = dec("0.60")
	assert.True(t, shared.HasCode(bad.Validate(), shared.CodeInvalidSplitConfiguration))

	bad = DefaultSplitPolicy()
	bad.PartnerShare = dec("-0.1")
	assert.Error(t, bad.Validate())
}
