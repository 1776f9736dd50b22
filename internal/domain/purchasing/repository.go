package purchasing

import (
	"context"

	"github.com/google/uuid"
)

// PurchaseOrderRepository defines the interface for purchase order persistence
type PurchaseOrderRepository interface {
	// FindByID finds a purchase order by ID, including soft deleted ones
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)

	// FindByJob returns every purchase order of a job, including voided and deleted
	// ones, so callers can derive totals from the full set
	FindByJob(ctx context.Context, jobID uuid.UUID) ([]PurchaseOrder, error)

	// Save creates or updates a purchase order. The execution ID column is never
	// written here; only AssignExecutionID sets it.
	Save(ctx context.Context, po *PurchaseOrder) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, po *PurchaseOrder) error

	// AssignExecutionID writes the identifier with a compare-and-swap on
	// "execution_id IS NULL". It returns the stored value, which differs from
	// id when another writer won.
	AssignExecutionID(ctx context.Context, poID uuid.UUID, id ExecutionID) (ExecutionID, bool, error)

	// GeneratePONumber returns the next sequential PO number
	GeneratePONumber(ctx context.Context) (string, error)
}

// VendorRepository defines the interface for vendor persistence
type VendorRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Vendor, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Vendor, error)
	FindByCode(ctx context.Context, code string) (*Vendor, error)
	Save(ctx context.Context, vendor *Vendor) error
	// ExistsByCode reports whether another vendor already uses code
	ExistsByCode(ctx context.Context, code string, excludeID uuid.UUID) (bool, error)
}

// CompanyRepository defines the interface for company persistence
type CompanyRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Company, error)
	Save(ctx context.Context, company *Company) error
}
