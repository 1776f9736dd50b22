package finance

import (
	"context"

	"github.com/google/uuid"
)

// ProfitSplitRepository defines the interface for profit split persistence
type ProfitSplitRepository interface {
	// FindByJob returns the split of a job or shared.ErrNotFound
	FindByJob(ctx context.Context, jobID uuid.UUID) (*ProfitSplit, error)

	// Upsert inserts or replaces the split keyed by job ID
	Upsert(ctx context.Context, split *ProfitSplit) error
}
