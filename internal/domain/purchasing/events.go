package purchasing

import (
	"github.com/google/uuid"
	"github.com/printbroker/backend/internal/domain/shared"
)

// AggregateTypePurchaseOrder names the purchase order aggregate in events
const AggregateTypePurchaseOrder = "PurchaseOrder"

// Event type constants
const (
	EventTypePurchaseOrderCreated       = "PurchaseOrderCreated"
	EventTypePurchaseOrderVoided        = "PurchaseOrderVoided"
	EventTypePurchaseOrderVendorChanged = "PurchaseOrderVendorChanged"
	EventTypeExecutionIDAssigned        = "ExecutionIDAssigned"
)

// PurchaseOrderCreatedEvent is raised when a purchase order is created
type PurchaseOrderCreatedEvent struct {
	shared.BaseDomainEvent
	JobID          uuid.UUID  `json:"job_id"`
	PONumber       string     `json:"po_number"`
	TargetVendorID *uuid.UUID `json:"target_vendor_id,omitempty"`
}

// NewPurchaseOrderCreatedEvent creates a new PurchaseOrderCreatedEvent
func NewPurchaseOrderCreatedEvent(po *PurchaseOrder) *PurchaseOrderCreatedEvent {
	return &PurchaseOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCreated, AggregateTypePurchaseOrder, po.ID),
		JobID:           po.JobID,
		PONumber:        po.PONumber,
		TargetVendorID:  po.TargetVendorID,
	}
}

// PurchaseOrderVoidedEvent is raised when a purchase order leaves the active set
// (cancelled, rejected or deleted)
type PurchaseOrderVoidedEvent struct {
	shared.BaseDomainEvent
	JobID    uuid.UUID `json:"job_id"`
	PONumber string    `json:"po_number"`
	Status   Status    `json:"status"`
	Deleted  bool      `json:"deleted"`
}

// NewPurchaseOrderVoidedEvent creates a new PurchaseOrderVoidedEvent
func NewPurchaseOrderVoidedEvent(po *PurchaseOrder) *PurchaseOrderVoidedEvent {
	return &PurchaseOrderVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderVoided, AggregateTypePurchaseOrder, po.ID),
		JobID:           po.JobID,
		PONumber:        po.PONumber,
		Status:          po.Status,
		Deleted:         po.IsDeleted(),
	}
}

// PurchaseOrderVendorChangedEvent is raised when a purchase order is retargeted
type PurchaseOrderVendorChangedEvent struct {
	shared.BaseDomainEvent
	JobID            uuid.UUID `json:"job_id"`
	PreviousVendorID uuid.UUID `json:"previous_vendor_id"`
	VendorID         uuid.UUID `json:"vendor_id"`
}

// NewPurchaseOrderVendorChangedEvent creates a new PurchaseOrderVendorChangedEvent
func NewPurchaseOrderVendorChangedEvent(po *PurchaseOrder, previous uuid.UUID) *PurchaseOrderVendorChangedEvent {
	return &PurchaseOrderVendorChangedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypePurchaseOrderVendorChanged, AggregateTypePurchaseOrder, po.ID),
		JobID:            po.JobID,
		PreviousVendorID: previous,
		VendorID:         po.VendorID(),
	}
}

// ExecutionIDAssignedEvent is raised once per purchase order when its execution ID is written
type ExecutionIDAssignedEvent struct {
	shared.BaseDomainEvent
	JobID           uuid.UUID `json:"job_id"`
	PurchaseOrderID uuid.UUID `json:"purchase_order_id"`
	PONumber        string    `json:"po_number"`
	VendorID        uuid.UUID `json:"vendor_id"`
	ExecutionID     string    `json:"execution_id"`
}

// NewExecutionIDAssignedEvent creates a new ExecutionIDAssignedEvent
func NewExecutionIDAssignedEvent(po *PurchaseOrder) *ExecutionIDAssignedEvent {
	return &ExecutionIDAssignedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeExecutionIDAssigned, AggregateTypePurchaseOrder, po.ID),
		JobID:           po.JobID,
		PurchaseOrderID: po.ID,
		PONumber:        po.PONumber,
		VendorID:        po.VendorID(),
		ExecutionID:     po.ExecutionID.Value(),
	}
}
