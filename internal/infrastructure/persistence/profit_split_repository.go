package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/printbroker/backend/internal/domain/finance"
	"github.com/printbroker/backend/internal/domain/shared"
	"github.com/printbroker/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProfitSplitRepository implements finance.ProfitSplitRepository using GORM
type GormProfitSplitRepository struct {
	db *gorm.DB
}

// NewGormProfitSplitRepository creates a new GormProfitSplitRepository
func NewGormProfitSplitRepository(db *gorm.DB) *GormProfitSplitRepository {
	return &GormProfitSplitRepository{db: db}
}

// FindByJob returns the split stored for a job
func (r *GormProfitSplitRepository) FindByJob(ctx context.Context, jobID uuid.UUID) (*finance.ProfitSplit, error) {
	var model models.ProfitSplitModel
	if err := r.db.WithContext(ctx).Where("job_id = ?", jobID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Upsert inserts the split or replaces the existing row for the same job.
// The row id of an existing split is kept.
func (r *GormProfitSplitRepository) Upsert(ctx context.Context, split *finance.ProfitSplit) error {
	model := models.ProfitSplitModelFromDomain(split)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "job_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"sell_price",
			"total_cost",
			"paper_cost",
			"paper_markup",
			"gross_margin",
			"margin_percent",
			"intermediary_share",
			"buyer_share",
			"routing_type",
			"calculated_at",
			"is_overridden",
			"override_reason",
			"overridden_at",
			"updated_at",
		}),
	}).Create(model).Error
}

var _ finance.ProfitSplitRepository = (*GormProfitSplitRepository)(nil)
