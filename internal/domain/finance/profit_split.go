package finance

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/printbroker/backend/internal/domain/job"
	"github.com/printbroker/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProfitSplit is the cached split of one job. An overridden split is
// never replaced by an automatic recompute.
type ProfitSplit struct {
	shared.BaseEntity
	JobID             uuid.UUID
	SellPrice         decimal.Decimal
	TotalCost         decimal.Decimal
	PaperCost         decimal.Decimal
	PaperMarkup       decimal.Decimal
	GrossMargin       decimal.Decimal
	MarginPercent     decimal.Decimal
	IntermediaryShare decimal.Decimal
	BuyerShare        decimal.Decimal
	RoutingType       job.RoutingType
	CalculatedAt      time.Time
	IsOverridden      bool
	OverrideReason    string
	OverriddenAt      *time.Time
}

// NewProfitSplit builds a split from calculator output
func NewProfitSplit(jobID uuid.UUID, sellPrice decimal.Decimal, routing job.RoutingType, totals CostTotals, result SplitResult) *ProfitSplit {
	ps := &ProfitSplit{BaseEntity: shared.NewBaseEntity(), JobID: jobID}
	ps.Apply(sellPrice, routing, totals, result)
	return ps
}

// Apply replaces the calculated fields
func (ps *ProfitSplit) Apply(sellPrice decimal.Decimal, routing job.RoutingType, totals CostTotals, result SplitResult) {
	ps.SellPrice = sellPrice
	ps.TotalCost = totals.TotalCost
	ps.PaperCost = totals.PaperCost
	ps.PaperMarkup = totals.PaperMarkup
	ps.GrossMargin = result.GrossMargin
	ps.MarginPercent = result.MarginPercent
	ps.IntermediaryShare = result.IntermediaryShare
	ps.BuyerShare = result.BuyerShare
	ps.RoutingType = routing
	ps.CalculatedAt = time.Now()
	ps.Touch()
}

// Override pins the shares manually
func (ps *ProfitSplit) Override(intermediary, buyer decimal.Decimal, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Override reason is required")
	}
	now := time.Now()
	ps.IntermediaryShare = Round2(intermediary)
	ps.BuyerShare = Round2(buyer)
	ps.IsOverridden = true
	ps.OverrideReason = reason
	ps.OverriddenAt = &now
	ps.UpdatedAt = now
	return nil
}

// ClearOverride releases the split for automatic recompute
func (ps *ProfitSplit) ClearOverride() {
	ps.IsOverridden = false
	ps.OverrideReason = ""
	ps.OverriddenAt = nil
	ps.Touch()
}
