package finance

import (
	"github.com/google/uuid"
	"github.com/printbroker/backend/internal/domain/purchasing"
	"github.com/shopspring/decimal"
)

// CostTotals are the cost sums of a job's cost-bearing purchase orders
type CostTotals struct {
	TotalCost        decimal.Decimal `json:"total_cost"`
	PaperCost        decimal.Decimal `json:"paper_cost"`
	PaperMarkup      decimal.Decimal `json:"paper_markup"`
	MfgCost          decimal.Decimal `json:"mfg_cost"`
	CostBearingCount int             `json:"cost_bearing_count"`
	ExcludedCount    int             `json:"excluded_count"`
}

// AggregateCosts sums the purchase orders the buyer company actually pays for.
// Internal routing orders and voided or deleted orders contribute zero.
// TotalCost is the sum of BuyCost. The result does not depend on input order.
func AggregateCosts(orders []purchasing.PurchaseOrder, buyerCompanyID uuid.UUID) CostTotals {
	totals := CostTotals{
		TotalCost:   decimal.Zero,
		PaperCost:   decimal.Zero,
		PaperMarkup: decimal.Zero,
		MfgCost:     decimal.Zero,
	}
	for i := range orders {
		po := &orders[i]
		if !po.IsActive() || !po.IsCostBearing(buyerCompanyID) {
			totals.ExcludedCount++
			continue
		}
		totals.TotalCost = totals.TotalCost.Add(po.BuyCost)
		totals.PaperCost = totals.PaperCost.Add(po.PaperCost)
		totals.PaperMarkup = totals.PaperMarkup.Add(po.PaperMarkup)
		totals.MfgCost = totals.MfgCost.Add(po.MfgCost)
		totals.CostBearingCount++
	}
	return totals
}
