package purchasing

import (
	"strings"

	"github.com/printbroker/backend/internal/domain/shared"
)

// CompanyRole describes a company's place in the brokerage chain
type CompanyRole string

const (
	CompanyRoleBuyer        CompanyRole = "BUYER"
	CompanyRoleIntermediary CompanyRole = "INTERMEDIARY"
	CompanyRoleOther        CompanyRole = "OTHER"
)

// IsValid checks if the role is known
func (r CompanyRole) IsValid() bool {
	switch r {
	case CompanyRoleBuyer, CompanyRoleIntermediary, CompanyRoleOther:
		return true
	}
	return false
}

// Company is a party that can originate or receive purchase orders
type Company struct {
	shared.BaseEntity
	Name string
	Role CompanyRole
}

// NewCompany creates a new company
func NewCompany(name string, role CompanyRole) (*Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Company name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Company name cannot exceed 200 characters")
	}
	if role == "" {
		role = CompanyRoleOther
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Invalid company role: "+string(role))
	}
	return &Company{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Role:       role,
	}, nil
}
