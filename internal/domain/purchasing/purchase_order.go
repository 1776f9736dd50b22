package purchasing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/printbroker/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var perThousand = decimal.NewFromInt(1000)

// Costs holds the cost fields of a purchase order
type Costs struct {
	BuyCost     decimal.Decimal
	PaperCost   decimal.Decimal
	PaperMarkup decimal.Decimal
	MfgCost     decimal.Decimal
}

// Validate rejects negative cost components
func (c Costs) Validate() error {
	fields := []struct {
		name  string
		value decimal.Decimal
	}{
		{"buy cost", c.BuyCost},
		{"paper cost", c.PaperCost},
		{"paper markup", c.PaperMarkup},
		{"mfg cost", c.MfgCost},
	}
	for _, f := range fields {
		if f.value.IsNegative() {
			return shared.NewDomainError(shared.CodeInvalidCost, fmt.Sprintf("%s cannot be negative", f.name))
		}
	}
	return nil
}

// NewPurchaseOrderParams carries the inputs of NewPurchaseOrder
type NewPurchaseOrderParams struct {
	JobID           uuid.UUID
	PONumber        string
	OriginCompanyID uuid.UUID
	TargetCompanyID *uuid.UUID
	TargetVendorID  *uuid.UUID
	Costs           Costs
	JobQuantity     int
	Notes           string
}

// PurchaseOrder is an order issued for a job, either to a routing partner
// (TargetCompanyID) or to an external vendor (TargetVendorID), never both.
type PurchaseOrder struct {
	shared.BaseAggregateRoot
	JobID           uuid.UUID
	PONumber        string
	ExecutionID     ExecutionID
	OriginCompanyID uuid.UUID
	TargetCompanyID *uuid.UUID
	TargetVendorID  *uuid.UUID
	BuyCost         decimal.Decimal
	PaperCost       decimal.Decimal
	PaperMarkup     decimal.Decimal
	MfgCost         decimal.Decimal
	BuyCPM          decimal.Decimal // per-thousand audit rate
	PaperCPM        decimal.Decimal // per-thousand audit rate
	Status          Status
	Notes           string
	IssuedAt        *time.Time
	CancelledAt     *time.Time
	StatusReason    string
	DeletedAt       *time.Time
}

// NewPurchaseOrder creates a pending purchase order
func NewPurchaseOrder(p NewPurchaseOrderParams) (*PurchaseOrder, error) {
	if p.JobID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Job ID cannot be empty")
	}
	if p.PONumber == "" {
		return nil, shared.NewDomainError("INVALID_PO_NUMBER", "PO number cannot be empty")
	}
	if p.OriginCompanyID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Origin company ID cannot be empty")
	}
	if err := validateTarget(p.TargetCompanyID, p.TargetVendorID); err != nil {
		return nil, err
	}
	if p.TargetCompanyID != nil && *p.TargetCompanyID == p.OriginCompanyID {
		return nil, shared.NewDomainError(shared.CodeInvalidTarget, "Purchase order cannot target its origin company")
	}
	if err := p.Costs.Validate(); err != nil {
		return nil, err
	}

	po := &PurchaseOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		JobID:             p.JobID,
		PONumber:          p.PONumber,
		ExecutionID:       UnassignedExecutionID(),
		OriginCompanyID:   p.OriginCompanyID,
		TargetCompanyID:   p.TargetCompanyID,
		TargetVendorID:    p.TargetVendorID,
		Status:            StatusPending,
		Notes:             p.Notes,
	}
	po.applyCosts(p.Costs, p.JobQuantity)
	po.AddDomainEvent(NewPurchaseOrderCreatedEvent(po))
	return po, nil
}

func validateTarget(company, vendor *uuid.UUID) error {
	hasCompany := company != nil && *company != uuid.Nil
	hasVendor := vendor != nil && *vendor != uuid.Nil
	if hasCompany == hasVendor {
		return shared.NewDomainError(shared.CodeInvalidTarget, "Exactly one of target company or target vendor must be set")
	}
	return nil
}

func (o *PurchaseOrder) applyCosts(c Costs, jobQuantity int) {
	o.BuyCost = c.BuyCost
	o.PaperCost = c.PaperCost
	o.PaperMarkup = c.PaperMarkup
	o.MfgCost = c.MfgCost
	o.BuyCPM = decimal.Zero
	o.PaperCPM = decimal.Zero
	if jobQuantity > 0 {
		qty := decimal.NewFromInt(int64(jobQuantity))
		o.BuyCPM = c.BuyCost.Div(qty).Mul(perThousand).Round(4)
		o.PaperCPM = c.PaperCost.Div(qty).Mul(perThousand).Round(4)
	}
}

// Costs returns the cost fields
func (o *PurchaseOrder) Costs() Costs {
	return Costs{BuyCost: o.BuyCost, PaperCost: o.PaperCost, PaperMarkup: o.PaperMarkup, MfgCost: o.MfgCost}
}

// UpdateCosts replaces the cost fields and re-derives the audit rates.
// Job-level financial locking is checked by the caller.
func (o *PurchaseOrder) UpdateCosts(c Costs, jobQuantity int) error {
	if o.IsDeleted() || o.Status.IsVoid() {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot update costs of a %s purchase order", o.lifecycleLabel()))
	}
	if err := c.Validate(); err != nil {
		return err
	}
	o.applyCosts(c, jobQuantity)
	o.Touch()
	return nil
}

// IsDeleted reports whether the purchase order was soft deleted
func (o *PurchaseOrder) IsDeleted() bool {
	return o.DeletedAt != nil
}

// IsActive is true unless the purchase order is cancelled, rejected or deleted
func (o *PurchaseOrder) IsActive() bool {
	return !o.Status.IsVoid() && !o.IsDeleted()
}

// IsVendorFacing is true when the purchase order targets an external vendor
func (o *PurchaseOrder) IsVendorFacing() bool {
	return o.TargetVendorID != nil && *o.TargetVendorID != uuid.Nil
}

// HasTarget reports whether a vendor or routing partner is set
func (o *PurchaseOrder) HasTarget() bool {
	return o.IsVendorFacing() || (o.TargetCompanyID != nil && *o.TargetCompanyID != uuid.Nil)
}

// IsCostBearing is true when the buyer company pays for the purchase order.
// Internal routing between non-buyer parties is never cost-bearing.
func (o *PurchaseOrder) IsCostBearing(buyerCompanyID uuid.UUID) bool {
	return buyerCompanyID != uuid.Nil && o.OriginCompanyID == buyerCompanyID && o.HasTarget()
}

// VendorID returns the target vendor or uuid.Nil
func (o *PurchaseOrder) VendorID() uuid.UUID {
	if !o.IsVendorFacing() {
		return uuid.Nil
	}
	return *o.TargetVendorID
}

// ChangeVendor retargets a vendor-facing purchase order.
// Once an execution identifier exists the vendor is locked; issue a new purchase order instead.
func (o *PurchaseOrder) ChangeVendor(vendorID uuid.UUID) error {
	if o.ExecutionID.IsAssigned() {
		return shared.NewDomainError(shared.CodeExecutionIDLocked,
			fmt.Sprintf("Purchase order %s carries execution ID %s; create a new purchase order instead", o.PONumber, o.ExecutionID.Value()))
	}
	if !o.IsVendorFacing() {
		return shared.NewDomainError(shared.CodeNotVendorFacing, "Only vendor-facing purchase orders can change vendor")
	}
	if vendorID == uuid.Nil {
		return shared.NewDomainError(shared.CodeInvalidTarget, "Vendor ID cannot be empty")
	}
	if !o.IsActive() {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot change vendor of a %s purchase order", o.lifecycleLabel()))
	}
	previous := *o.TargetVendorID
	if previous == vendorID {
		return nil
	}
	o.TargetVendorID = &vendorID
	o.Touch()
	o.AddDomainEvent(NewPurchaseOrderVendorChangedEvent(o, previous))
	return nil
}

// CanFinalize checks the purchase-order-side preconditions of execution ID assignment
func (o *PurchaseOrder) CanFinalize() error {
	if !o.IsVendorFacing() {
		return shared.NewDomainError(shared.CodeNotVendorFacing,
			fmt.Sprintf("Purchase order %s is not vendor-facing", o.PONumber))
	}
	if !o.IsActive() {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Cannot finalize a %s purchase order", o.lifecycleLabel()))
	}
	return nil
}

// AssignExecutionID moves the identifier from unassigned to assigned exactly once
func (o *PurchaseOrder) AssignExecutionID(id ExecutionID) error {
	if o.ExecutionID.IsAssigned() {
		return shared.NewDomainError(shared.CodeExecutionIDLocked,
			fmt.Sprintf("Purchase order %s already carries execution ID %s", o.PONumber, o.ExecutionID.Value()))
	}
	if !id.IsAssigned() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Execution ID cannot be empty")
	}
	if err := o.CanFinalize(); err != nil {
		return err
	}
	o.ExecutionID = id
	o.Touch()
	o.AddDomainEvent(NewExecutionIDAssignedEvent(o))
	return nil
}

// Issue sends the purchase order to its target
func (o *PurchaseOrder) Issue() error {
	if err := o.transition(StatusIssued); err != nil {
		return err
	}
	now := time.Now()
	o.IssuedAt = &now
	return nil
}

// Accept records the target's acceptance
func (o *PurchaseOrder) Accept() error {
	return o.transition(StatusAccepted)
}

// MarkPaid records payment
func (o *PurchaseOrder) MarkPaid() error {
	return o.transition(StatusPaid)
}

// Cancel voids the purchase order from the buyer side
func (o *PurchaseOrder) Cancel(reason string) error {
	if err := o.transition(StatusCancelled); err != nil {
		return err
	}
	now := time.Now()
	o.CancelledAt = &now
	o.StatusReason = reason
	o.AddDomainEvent(NewPurchaseOrderVoidedEvent(o))
	return nil
}

// Reject voids the purchase order from the target side
func (o *PurchaseOrder) Reject(reason string) error {
	if err := o.transition(StatusRejected); err != nil {
		return err
	}
	o.StatusReason = reason
	o.AddDomainEvent(NewPurchaseOrderVoidedEvent(o))
	return nil
}

// Delete soft deletes the purchase order
func (o *PurchaseOrder) Delete() error {
	if o.IsDeleted() {
		return shared.NewDomainError(shared.CodeInvalidState, "Purchase order is already deleted")
	}
	now := time.Now()
	o.DeletedAt = &now
	o.UpdatedAt = now
	o.AddDomainEvent(NewPurchaseOrderVoidedEvent(o))
	return nil
}

func (o *PurchaseOrder) transition(target Status) error {
	if o.IsDeleted() {
		return shared.NewDomainError(shared.CodeInvalidState, "Purchase order is deleted")
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Cannot move purchase order from %s to %s", o.Status, target))
	}
	o.Status = target
	o.Touch()
	return nil
}

func (o *PurchaseOrder) lifecycleLabel() string {
	if o.IsDeleted() {
		return "deleted"
	}
	return string(o.Status)
}

// CountActiveVendors counts distinct vendors across active vendor-facing purchase orders.
func CountActiveVendors(orders []PurchaseOrder) int {
	seen := make(map[uuid.UUID]struct{})
	for i := range orders {
		o := &orders[i]
		if o.IsActive() && o.IsVendorFacing() {
			seen[*o.TargetVendorID] = struct{}{}
		}
	}
	return len(seen)
}

// CountCostBearingVendors counts distinct vendors across active, cost-bearing
// vendor-facing purchase orders. Derived from scratch on every call.
func CountCostBearingVendors(orders []PurchaseOrder, buyerCompanyID uuid.UUID) int {
	seen := make(map[uuid.UUID]struct{})
	for i := range orders {
		o := &orders[i]
		if o.IsActive() && o.IsVendorFacing() && o.IsCostBearing(buyerCompanyID) {
			seen[*o.TargetVendorID] = struct{}{}
		}
	}
	return len(seen)
}
