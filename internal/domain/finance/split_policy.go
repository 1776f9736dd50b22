package finance

import (
	"fmt"

	"github.com/printbroker/backend/internal/domain/job"
	"github.com/printbroker/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Default split percentages
var (
	DefaultPartnerShare            = decimal.RequireFromString("0.50")
	DefaultDirectIntermediaryShare = decimal.RequireFromString("0.35")
	DefaultDirectBuyerShare        = decimal.RequireFromString("0.65")
)

var hundred = decimal.NewFromInt(100)

// SplitPolicy holds the margin split percentages.
// PartnerShare applies to both parties on partner-mediated jobs.
type SplitPolicy struct {
	PartnerShare            decimal.Decimal
	DirectIntermediaryShare decimal.Decimal
	DirectBuyerShare        decimal.Decimal
}

// DefaultSplitPolicy returns the standard 50/50 and 35/65 split
func DefaultSplitPolicy() SplitPolicy {
	return SplitPolicy{
		PartnerShare:            DefaultPartnerShare,
		DirectIntermediaryShare: DefaultDirectIntermediaryShare,
		DirectBuyerShare:        DefaultDirectBuyerShare,
	}
}

// Validate rejects negative shares and direct shares that do not sum to one
func (p SplitPolicy) Validate() error {
	for _, s := range []decimal.Decimal{p.PartnerShare, p.DirectIntermediaryShare, p.DirectBuyerShare} {
		if s.IsNegative() || s.GreaterThan(decimal.NewFromInt(1)) {
			return shared.NewDomainError(shared.CodeInvalidSplitConfiguration,
				fmt.Sprintf("Split share %s must be between 0 and 1", s))
		}
	}
	if sum := p.DirectIntermediaryShare.Add(p.DirectBuyerShare); !sum.Equal(decimal.NewFromInt(1)) {
		return shared.NewDomainError(shared.CodeInvalidSplitConfiguration,
			fmt.Sprintf("Direct split shares must sum to 1, got %s", sum))
	}
	return nil
}

// SplitInput is the calculator input
type SplitInput struct {
	SellPrice   decimal.Decimal
	TotalCost   decimal.Decimal
	PaperMarkup decimal.Decimal
	RoutingType job.RoutingType
}

// SplitResult is the calculator output, rounded to cents
type SplitResult struct {
	GrossMargin       decimal.Decimal `json:"gross_margin"`
	IntermediaryShare decimal.Decimal `json:"intermediary_share"`
	BuyerShare        decimal.Decimal `json:"buyer_share"`
	MarginPercent     decimal.Decimal `json:"margin_percent"`
}

// Round2 rounds half away from zero to two decimal places
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Calculate splits the gross margin. Negative margins are returned as
// computed; rejecting them is up to the caller.
func (p SplitPolicy) Calculate(in SplitInput) SplitResult {
	gm := in.SellPrice.Sub(in.TotalCost)

	var intermediary, buyer decimal.Decimal
	if in.RoutingType.IsPartnerMediated() {
		half := Round2(gm.Mul(p.PartnerShare))
		intermediary = half.Add(in.PaperMarkup)
		buyer = half
	} else {
		intermediary = Round2(gm.Mul(p.DirectIntermediaryShare))
		buyer = Round2(gm.Mul(p.DirectBuyerShare))
	}

	marginPercent := decimal.Zero
	if !in.SellPrice.IsZero() {
		marginPercent = Round2(gm.Div(in.SellPrice).Mul(hundred))
	}

	return SplitResult{
		GrossMargin:       Round2(gm),
		IntermediaryShare: Round2(intermediary),
		BuyerShare:        buyer,
		MarginPercent:     marginPercent,
	}
}
