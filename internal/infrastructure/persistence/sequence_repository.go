package persistence

import (
	"context"
	"fmt"

	"github.com/printbroker/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sequence names
const (
	SequenceJobNumber = "job_number"
	SequencePONumber  = "po_number"
	SequenceBaseJobID = "base_job_id"
)

// GormSequenceRepository hands out monotonically increasing counters from id_sequences.
// The upsert takes a row lock on PostgreSQL, so concurrent callers serialize
// on the counter row and never receive the same value.
type GormSequenceRepository struct {
	db *gorm.DB
}

// NewGormSequenceRepository creates a new GormSequenceRepository
func NewGormSequenceRepository(db *gorm.DB) *GormSequenceRepository {
	return &GormSequenceRepository{db: db}
}

// Next increments the named counter and returns its new value
func (r *GormSequenceRepository) Next(ctx context.Context, name string) (int64, error) {
	var value int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "name"}},
			DoUpdates: clause.Assignments(map[string]any{
				"value": gorm.Expr("id_sequences.value + 1"),
			}),
		}).Create(&models.SequenceModel{Name: name, Value: 1}).Error; err != nil {
			return err
		}
		return tx.Model(&models.SequenceModel{}).
			Where("name = ?", name).
			Select("value").
			Scan(&value).Error
	})
	if err != nil {
		return 0, fmt.Errorf("advance sequence %s: %w", name, err)
	}
	return value, nil
}

// NextFormatted advances the counter and renders it with format (e.g. "JOB-%06d")
func (r *GormSequenceRepository) NextFormatted(ctx context.Context, name, format string) (string, error) {
	n, err := r.Next(ctx, name)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(format, n), nil
}
