package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/printbroker/backend/internal/domain/purchasing"
	"github.com/printbroker/backend/internal/domain/shared"
	"github.com/printbroker/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPurchaseOrderRepository implements purchasing.PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db        *gorm.DB
	sequences *GormSequenceRepository
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db, sequences: NewGormSequenceRepository(db)}
}

// FindByID finds a purchase order by ID
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*purchasing.PurchaseOrder, error) {
	var model models.PurchaseOrderModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByJob returns every purchase order of a job in creation order
func (r *GormPurchaseOrderRepository) FindByJob(ctx context.Context, jobID uuid.UUID) ([]purchasing.PurchaseOrder, error) {
	var poModels []models.PurchaseOrderModel
	if err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("created_at ASC, po_number ASC").
		Find(&poModels).Error; err != nil {
		return nil, err
	}
	orders := make([]purchasing.PurchaseOrder, len(poModels))
	for i := range poModels {
		orders[i] = *poModels[i].ToDomain()
	}
	return orders, nil
}

// Save creates or updates a purchase order, leaving execution_id untouched
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, po *purchasing.PurchaseOrder) error {
	model := models.PurchaseOrderModelFromDomain(po)
	return r.db.WithContext(ctx).Omit("execution_id").Save(model).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormPurchaseOrderRepository) SaveWithLock(ctx context.Context, po *purchasing.PurchaseOrder) error {
	currentVersion := po.Version
	model := models.PurchaseOrderModelFromDomain(po)
	model.Version = currentVersion + 1
	model.UpdatedAt = time.Now()

	result := r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}).
		Where("id = ? AND version = ?", po.ID, currentVersion).
		Select("*").
		Omit("id", "created_at", "execution_id").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}).Where("id = ?", po.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shared.ErrNotFound
		}
		return shared.NewDomainError(shared.CodeConcurrencyConflict, "The purchase order has been modified by another user")
	}

	po.Version = model.Version
	po.UpdatedAt = model.UpdatedAt
	return nil
}

// AssignExecutionID sets execution_id only while it is still NULL.
// When another writer got there first the stored value is returned with assigned=false.
func (r *GormPurchaseOrderRepository) AssignExecutionID(ctx context.Context, poID uuid.UUID, id purchasing.ExecutionID) (purchasing.ExecutionID, bool, error) {
	if !id.IsAssigned() {
		return purchasing.UnassignedExecutionID(), false, shared.NewDomainError(shared.CodeInvalidInput, "Execution ID must not be empty")
	}

	result := r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}).
		Where("id = ? AND execution_id IS NULL", poID).
		UpdateColumns(map[string]any{
			"execution_id": id.Value(),
			"updated_at":   time.Now(),
			"version":      gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return purchasing.UnassignedExecutionID(), false, result.Error
	}
	if result.RowsAffected == 1 {
		return id, true, nil
	}

	var stored []*string
	if err := r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}).
		Where("id = ?", poID).
		Pluck("execution_id", &stored).Error; err != nil {
		return purchasing.UnassignedExecutionID(), false, err
	}
	if len(stored) == 0 {
		return purchasing.UnassignedExecutionID(), false, shared.ErrNotFound
	}
	if stored[0] == nil {
		return purchasing.UnassignedExecutionID(), false, shared.NewDomainError(shared.CodeConcurrencyConflict, "Execution ID assignment did not persist")
	}
	return purchasing.AssignedExecutionID(*stored[0]), false, nil
}

// GeneratePONumber returns the next PO number, formatted PO-000001
func (r *GormPurchaseOrderRepository) GeneratePONumber(ctx context.Context) (string, error) {
	return r.sequences.NextFormatted(ctx, SequencePONumber, "PO-%06d")
}

var _ purchasing.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
