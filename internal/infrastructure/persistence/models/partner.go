package models

import (
	"github.com/printbroker/backend/internal/domain/purchasing"
)

// VendorModel is the persistence model for the Vendor aggregate root.
type VendorModel struct {
	AggregateModel
	Name               string  `gorm:"type:varchar(200);not null"`
	VendorCode         *string `gorm:"type:varchar(10);uniqueIndex"`
	Email              string  `gorm:"type:varchar(200)"`
	IsMailingFulfiller bool    `gorm:"not null;default:false"`
	IsActive           bool    `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (VendorModel) TableName() string {
	return "vendors"
}

// ToDomain converts the persistence model to a domain Vendor.
func (m *VendorModel) ToDomain() *purchasing.Vendor {
	return &purchasing.Vendor{
		BaseAggregateRoot:  m.ToAggregateRoot(),
		Name:               m.Name,
		VendorCode:         m.VendorCode,
		Email:              m.Email,
		IsMailingFulfiller: m.IsMailingFulfiller,
		IsActive:           m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Vendor.
func (m *VendorModel) FromDomain(v *purchasing.Vendor) {
	m.FromDomainAggregateRoot(v.BaseAggregateRoot)
	m.Name = v.Name
	m.VendorCode = v.VendorCode
	m.Email = v.Email
	m.IsMailingFulfiller = v.IsMailingFulfiller
	m.IsActive = v.IsActive
}

// VendorModelFromDomain creates a new persistence model from a domain Vendor.
func VendorModelFromDomain(v *purchasing.Vendor) *VendorModel {
	m := &VendorModel{}
	m.FromDomain(v)
	return m
}

// CompanyModel is the persistence model for companies.
type CompanyModel struct {
	BaseModel
	Name string                 `gorm:"type:varchar(200);not null"`
	Role purchasing.CompanyRole `gorm:"type:varchar(20);not null;default:'OTHER'"`
}

// TableName returns the table name for GORM
func (CompanyModel) TableName() string {
	return "companies"
}

// ToDomain converts the persistence model to a domain Company.
func (m *CompanyModel) ToDomain() *purchasing.Company {
	return &purchasing.Company{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		Role:       m.Role,
	}
}

// CompanyModelFromDomain creates a new persistence model from a domain Company.
func CompanyModelFromDomain(c *purchasing.Company) *CompanyModel {
	m := &CompanyModel{Name: c.Name, Role: c.Role}
	m.FromDomainBaseEntity(c.BaseEntity)
	return m
}
