package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/printbroker/backend/internal/domain/finance"
	"github.com/printbroker/backend/internal/domain/job"
	"github.com/shopspring/decimal"
)

// ProfitSplitModel is the persistence model for the per-job profit split.
type ProfitSplitModel struct {
	BaseModel
	JobID             uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	SellPrice         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalCost         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PaperCost         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PaperMarkup       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	GrossMargin       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MarginPercent     decimal.Decimal `gorm:"type:decimal(9,2);not null;default:0"`
	IntermediaryShare decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	BuyerShare        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	RoutingType       job.RoutingType `gorm:"type:varchar(30);not null"`
	CalculatedAt      time.Time       `gorm:"not null"`
	IsOverridden      bool            `gorm:"not null;default:false"`
	OverrideReason    string          `gorm:"type:varchar(500)"`
	OverriddenAt      *time.Time
}

// TableName returns the table name for GORM
func (ProfitSplitModel) TableName() string {
	return "profit_splits"
}

// ToDomain converts the persistence model to a domain ProfitSplit.
func (m *ProfitSplitModel) ToDomain() *finance.ProfitSplit {
	return &finance.ProfitSplit{
		BaseEntity:        m.BaseModel.ToDomain(),
		JobID:             m.JobID,
		SellPrice:         m.SellPrice,
		TotalCost:         m.TotalCost,
		PaperCost:         m.PaperCost,
		PaperMarkup:       m.PaperMarkup,
		GrossMargin:       m.GrossMargin,
		MarginPercent:     m.MarginPercent,
		IntermediaryShare: m.IntermediaryShare,
		BuyerShare:        m.BuyerShare,
		RoutingType:       m.RoutingType,
		CalculatedAt:      m.CalculatedAt,
		IsOverridden:      m.IsOverridden,
		OverrideReason:    m.OverrideReason,
		OverriddenAt:      m.OverriddenAt,
	}
}

// ProfitSplitModelFromDomain creates a new persistence model from a domain ProfitSplit.
func ProfitSplitModelFromDomain(ps *finance.ProfitSplit) *ProfitSplitModel {
	m := &ProfitSplitModel{
		JobID:             ps.JobID,
		SellPrice:         ps.SellPrice,
		TotalCost:         ps.TotalCost,
		PaperCost:         ps.PaperCost,
		PaperMarkup:       ps.PaperMarkup,
		GrossMargin:       ps.GrossMargin,
		MarginPercent:     ps.MarginPercent,
		IntermediaryShare: ps.IntermediaryShare,
		BuyerShare:        ps.BuyerShare,
		RoutingType:       ps.RoutingType,
		CalculatedAt:      ps.CalculatedAt,
		IsOverridden:      ps.IsOverridden,
		OverrideReason:    ps.OverrideReason,
		OverriddenAt:      ps.OverriddenAt,
	}
	m.FromDomainBaseEntity(ps.BaseEntity)
	return m
}

// SequenceModel backs the monotonic counters used for job numbers,
// PO numbers and base job IDs. Values are never reused.
type SequenceModel struct {
	Name  string `gorm:"type:varchar(50);primary_key"`
	Value int64  `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (SequenceModel) TableName() string {
	return "id_sequences"
}
