package brokerage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/printbroker/backend/internal/domain/purchasing"
	"github.com/printbroker/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// VendorService manages vendors and companies
type VendorService struct {
	txScope TransactionScope
	logger  *zap.Logger
}

// NewVendorService creates a new VendorService
func NewVendorService(txScope TransactionScope, logger *zap.Logger) *VendorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VendorService{txScope: txScope, logger: logger.Named("vendor")}
}

// CreateVendor creates an active vendor, optionally with its code
func (s *VendorService) CreateVendor(ctx context.Context, req CreateVendorRequest) (*VendorResponse, error) {
	vendor, err := purchasing.NewVendor(req.Name, req.Email, req.IsMailingFulfiller)
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if req.VendorCode != "" {
			if err := assignUniqueCode(ctx, repos.Vendors(), vendor, req.VendorCode); err != nil {
				return err
			}
		}
		return repos.Vendors().Save(ctx, vendor)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("vendor created",
		zap.String("vendor_id", vendor.ID.String()),
		zap.String("vendor_code", vendor.Code()),
	)
	response := ToVendorResponse(vendor)
	return &response, nil
}

// AssignVendorCode sets the vendor code. Codes are unique across vendors
// and cannot change once set; re-assigning the same code is a no-op.
func (s *VendorService) AssignVendorCode(ctx context.Context, vendorID uuid.UUID, req AssignVendorCodeRequest) (*VendorResponse, error) {
	var response VendorResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		vendor, err := repos.Vendors().FindByID(ctx, vendorID)
		if err != nil {
			return err
		}
		if err := assignUniqueCode(ctx, repos.Vendors(), vendor, req.VendorCode); err != nil {
			return err
		}
		if err := repos.Vendors().Save(ctx, vendor); err != nil {
			return err
		}
		response = ToVendorResponse(vendor)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

func assignUniqueCode(ctx context.Context, vendors purchasing.VendorRepository, vendor *purchasing.Vendor, code string) error {
	normalized, err := purchasing.NormalizeVendorCode(code)
	if err != nil {
		return err
	}
	taken, err := vendors.ExistsByCode(ctx, normalized, vendor.ID)
	if err != nil {
		return err
	}
	if taken {
		return shared.NewDomainError(shared.CodeDuplicateVendorCode,
			fmt.Sprintf("Vendor code %s is already in use", normalized))
	}
	return vendor.AssignCode(normalized)
}

// GetVendor returns a vendor
func (s *VendorService) GetVendor(ctx context.Context, id uuid.UUID) (*VendorResponse, error) {
	var response VendorResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		vendor, err := repos.Vendors().FindByID(ctx, id)
		if err != nil {
			return err
		}
		response = ToVendorResponse(vendor)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// CreateCompany creates a company that can originate or receive purchase orders
func (s *VendorService) CreateCompany(ctx context.Context, req CreateCompanyRequest) (*CompanyResponse, error) {
	company, err := purchasing.NewCompany(req.Name, purchasing.CompanyRole(req.Role))
	if err != nil {
		return nil, err
	}
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.Companies().Save(ctx, company)
	})
	if err != nil {
		return nil, err
	}
	response := ToCompanyResponse(company)
	return &response, nil
}

// GetCompany returns a company
func (s *VendorService) GetCompany(ctx context.Context, id uuid.UUID) (*CompanyResponse, error) {
	var response CompanyResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		company, err := repos.Companies().FindByID(ctx, id)
		if err != nil {
			return err
		}
		response = ToCompanyResponse(company)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}
