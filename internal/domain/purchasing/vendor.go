package purchasing

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/printbroker/backend/internal/domain/shared"
)

var vendorCodePattern = regexp.MustCompile(`^[A-Z0-9]{2,10}$`)

// Vendor is an external fulfillment vendor.
// VendorCode is required before any execution identifier can reference the vendor.
type Vendor struct {
	shared.BaseAggregateRoot
	Name               string
	VendorCode         *string
	Email              string
	IsMailingFulfiller bool
	IsActive           bool
}

// NewVendor creates an active vendor without a code
func NewVendor(name, email string, mailingFulfiller bool) (*Vendor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Vendor name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Vendor name cannot exceed 200 characters")
	}
	return &Vendor{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		Name:               name,
		Email:              strings.TrimSpace(email),
		IsMailingFulfiller: mailingFulfiller,
		IsActive:           true,
	}, nil
}

// NormalizeVendorCode upper-cases and validates a vendor code
func NormalizeVendorCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !vendorCodePattern.MatchString(code) {
		return "", shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Vendor code %q must be 2-10 letters or digits", code))
	}
	return code, nil
}

// HasCode reports whether a vendor code has been assigned
func (v *Vendor) HasCode() bool {
	return v.VendorCode != nil && *v.VendorCode != ""
}

// Code returns the vendor code or an empty string
func (v *Vendor) Code() string {
	if v.VendorCode == nil {
		return ""
	}
	return *v.VendorCode
}

// AssignCode sets the vendor code once. Re-assigning the same code is a no-op.
// Uniqueness across vendors is enforced by the repository.
func (v *Vendor) AssignCode(code string) error {
	normalized, err := NormalizeVendorCode(code)
	if err != nil {
		return err
	}
	if v.HasCode() {
		if *v.VendorCode == normalized {
			return nil
		}
		return shared.NewDomainError(shared.CodeVendorCodeImmutable,
			fmt.Sprintf("Vendor code is already set to %s and cannot be changed", *v.VendorCode))
	}
	v.VendorCode = &normalized
	v.Touch()
	return nil
}

// Deactivate marks the vendor inactive
func (v *Vendor) Deactivate() {
	v.IsActive = false
	v.Touch()
}
