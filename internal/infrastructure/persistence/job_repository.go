package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/printbroker/backend/internal/domain/job"
	"github.com/printbroker/backend/internal/domain/shared"
	"github.com/printbroker/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormJobRepository implements job.Repository using GORM
type GormJobRepository struct {
	db        *gorm.DB
	sequences *GormSequenceRepository
}

// NewGormJobRepository creates a new GormJobRepository
func NewGormJobRepository(db *gorm.DB) *GormJobRepository {
	return &GormJobRepository{db: db, sequences: NewGormSequenceRepository(db)}
}

// FindByID finds a job by its ID
func (r *GormJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*job.Job, error) {
	return r.find(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate loads the job with SELECT ... FOR UPDATE on PostgreSQL.
// Must run inside a transaction for the lock to be meaningful.
func (r *GormJobRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*job.Job, error) {
	query := r.db.WithContext(ctx)
	if isPostgres(r.db) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return r.find(query, id)
}

func (r *GormJobRepository) find(query *gorm.DB, id uuid.UUID) (*job.Job, error) {
	var model models.JobModel
	if err := query.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists jobs that are not deleted
func (r *GormJobRepository) FindAll(ctx context.Context, filter shared.Filter) ([]job.Job, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.JobModel{}).Where("deleted_at IS NULL")

	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(job_number) LIKE ? OR LOWER(title) LIKE ? OR LOWER(base_job_id) LIKE ?", like, like, like)
	}
	for key, value := range filter.Filters {
		switch key {
		case "pathway", "routing_type", "readiness_status":
			query = query.Where(key+" = ?", value)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order(orderClause(filter.OrderBy, filter.OrderDir, JobSortFields, "created_at"))
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var jobModels []models.JobModel
	if err := query.Find(&jobModels).Error; err != nil {
		return nil, 0, err
	}
	jobs := make([]job.Job, len(jobModels))
	for i := range jobModels {
		jobs[i] = *jobModels[i].ToDomain()
	}
	return jobs, total, nil
}

// Save creates or updates a job. base_job_id is written through COALESCE so a
// stored value is never replaced.
func (r *GormJobRepository) Save(ctx context.Context, j *job.Job) error {
	model := models.JobModelFromDomain(j)
	db := r.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.JobModel{}).Where("id = ?", j.ID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return db.Create(model).Error
	}
	return db.Model(&models.JobModel{}).Where("id = ?", j.ID).Updates(jobColumns(model)).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormJobRepository) SaveWithLock(ctx context.Context, j *job.Job) error {
	currentVersion := j.Version
	model := models.JobModelFromDomain(j)
	model.Version = currentVersion + 1
	model.UpdatedAt = time.Now()

	columns := jobColumns(model)
	columns["version"] = model.Version

	result := r.db.WithContext(ctx).Model(&models.JobModel{}).
		Where("id = ? AND version = ?", j.ID, currentVersion).
		Updates(columns)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.versionMismatch(ctx, j.ID)
	}

	j.Version = model.Version
	j.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *GormJobRepository) versionMismatch(ctx context.Context, id uuid.UUID) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.JobModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return shared.ErrNotFound
	}
	return shared.NewDomainError(shared.CodeConcurrencyConflict, "The job has been modified by another user")
}

func jobColumns(m *models.JobModel) map[string]any {
	var baseJobID any = gorm.Expr("base_job_id")
	if m.BaseJobID != nil {
		baseJobID = gorm.Expr("COALESCE(base_job_id, ?)", *m.BaseJobID)
	}
	return map[string]any{
		"base_job_id":               baseJobID,
		"title":                     m.Title,
		"routing_type":              m.RoutingType,
		"pathway":                   m.Pathway,
		"vendor_count":              m.VendorCount,
		"sell_price":                m.SellPrice,
		"quantity":                  m.Quantity,
		"size_name":                 m.SizeName,
		"paper_source":              m.PaperSource,
		"artwork_status":            m.ArtworkStatus,
		"artwork_notes":             m.ArtworkNotes,
		"data_files_status":         m.DataFilesStatus,
		"data_files_notes":          m.DataFilesNotes,
		"mailing_status":            m.MailingStatus,
		"mailing_notes":             m.MailingNotes,
		"supplied_materials_status": m.SuppliedMaterialsStatus,
		"supplied_materials_notes":  m.SuppliedMaterialsNotes,
		"versions_status":           m.VersionsStatus,
		"versions_notes":            m.VersionsNotes,
		"version_count":             m.VersionCount,
		"readiness_status":          m.ReadinessStatus,
		"sent_at":                   m.SentAt,
		"mailing_vendor_id":         m.MailingVendorID,
		"match_type":                m.MatchType,
		"mail_date":                 m.MailDate,
		"in_homes_date":             m.InHomesDate,
		"mailing_metadata":          m.MailingMetadata,
		"notes":                     m.Notes,
		"components":                m.Components,
		"invoiced_at":               m.InvoicedAt,
		"deleted_at":                m.DeletedAt,
		"updated_at":                m.UpdatedAt,
	}
}

// GenerateJobNumber returns the next job number, formatted JOB-000001
func (r *GormJobRepository) GenerateJobNumber(ctx context.Context) (string, error) {
	return r.sequences.NextFormatted(ctx, SequenceJobNumber, "JOB-%06d")
}

// NextBaseJobID mints the next base job identifier, formatted J00001
func (r *GormJobRepository) NextBaseJobID(ctx context.Context) (string, error) {
	return r.sequences.NextFormatted(ctx, SequenceBaseJobID, "J%05d")
}

var _ job.Repository = (*GormJobRepository)(nil)
