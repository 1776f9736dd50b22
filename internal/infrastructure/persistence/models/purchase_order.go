package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/printbroker/backend/internal/domain/purchasing"
	"github.com/shopspring/decimal"
)

// PurchaseOrderModel is the persistence model for the PurchaseOrder aggregate root.
type PurchaseOrderModel struct {
	AggregateModel
	JobID           uuid.UUID         `gorm:"type:uuid;not null;index"`
	PONumber        string            `gorm:"column:po_number;type:varchar(30);not null;uniqueIndex"`
	ExecutionID     *string           `gorm:"type:varchar(60);uniqueIndex"`
	OriginCompanyID uuid.UUID         `gorm:"type:uuid;not null;index"`
	TargetCompanyID *uuid.UUID        `gorm:"type:uuid;index"`
	TargetVendorID  *uuid.UUID        `gorm:"type:uuid;index"`
	BuyCost         decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	PaperCost       decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	PaperMarkup     decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	MfgCost         decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	BuyCPM          decimal.Decimal   `gorm:"column:buy_cpm;type:decimal(18,4);not null;default:0"`
	PaperCPM        decimal.Decimal   `gorm:"column:paper_cpm;type:decimal(18,4);not null;default:0"`
	Status          purchasing.Status `gorm:"type:varchar(20);not null;default:'PENDING'"`
	Notes           string            `gorm:"type:text"`
	IssuedAt        *time.Time
	CancelledAt     *time.Time
	StatusReason    string     `gorm:"type:varchar(500)"`
	DeletedAt       *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// ToDomain converts the persistence model to a domain PurchaseOrder.
func (m *PurchaseOrderModel) ToDomain() *purchasing.PurchaseOrder {
	po := &purchasing.PurchaseOrder{
		BaseAggregateRoot: m.ToAggregateRoot(),
		JobID:             m.JobID,
		PONumber:          m.PONumber,
		ExecutionID:       purchasing.UnassignedExecutionID(),
		OriginCompanyID:   m.OriginCompanyID,
		TargetCompanyID:   m.TargetCompanyID,
		TargetVendorID:    m.TargetVendorID,
		BuyCost:           m.BuyCost,
		PaperCost:         m.PaperCost,
		PaperMarkup:       m.PaperMarkup,
		MfgCost:           m.MfgCost,
		BuyCPM:            m.BuyCPM,
		PaperCPM:          m.PaperCPM,
		Status:            m.Status,
		Notes:             m.Notes,
		IssuedAt:          m.IssuedAt,
		CancelledAt:       m.CancelledAt,
		StatusReason:      m.StatusReason,
		DeletedAt:         m.DeletedAt,
	}
	if m.ExecutionID != nil {
		po.ExecutionID = purchasing.AssignedExecutionID(*m.ExecutionID)
	}
	return po
}

// FromDomain populates the persistence model from a domain PurchaseOrder.
func (m *PurchaseOrderModel) FromDomain(po *purchasing.PurchaseOrder) {
	m.FromDomainAggregateRoot(po.BaseAggregateRoot)
	m.JobID = po.JobID
	m.PONumber = po.PONumber
	m.ExecutionID = po.ExecutionID.Ptr()
	m.OriginCompanyID = po.OriginCompanyID
	m.TargetCompanyID = po.TargetCompanyID
	m.TargetVendorID = po.TargetVendorID
	m.BuyCost = po.BuyCost
	m.PaperCost = po.PaperCost
	m.PaperMarkup = po.PaperMarkup
	m.MfgCost = po.MfgCost
	m.BuyCPM = po.BuyCPM
	m.PaperCPM = po.PaperCPM
	m.Status = po.Status
	m.Notes = po.Notes
	m.IssuedAt = po.IssuedAt
	m.CancelledAt = po.CancelledAt
	m.StatusReason = po.StatusReason
	m.DeletedAt = po.DeletedAt
}

// PurchaseOrderModelFromDomain creates a new persistence model from a domain PurchaseOrder.
func PurchaseOrderModelFromDomain(po *purchasing.PurchaseOrder) *PurchaseOrderModel {
	m := &PurchaseOrderModel{}
	m.FromDomain(po)
	return m
}
