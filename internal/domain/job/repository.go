package job

import (
	"context"

	"github.com/google/uuid"
	"github.com/printbroker/backend/internal/domain/shared"
)

// Repository defines the interface for job persistence
type Repository interface {
	// FindByID finds a job by ID, including soft deleted jobs
	FindByID(ctx context.Context, id uuid.UUID) (*Job, error)

	// FindByIDForUpdate loads the job and holds a row lock until the
	// surrounding transaction ends (SELECT ... FOR UPDATE where supported)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Job, error)

	// FindAll lists jobs that are not deleted
	FindAll(ctx context.Context, filter shared.Filter) ([]Job, int64, error)

	// Save creates or updates a job. BaseJobID is only ever written from nil.
	Save(ctx context.Context, j *Job) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, j *Job) error

	// GenerateJobNumber returns the next human-facing job number
	GenerateJobNumber(ctx context.Context) (string, error)

	// NextBaseJobID mints a new base job identifier; values are never reused
	NextBaseJobID(ctx context.Context) (string, error)
}
