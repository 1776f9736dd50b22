package brokerage

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/printbroker/backend/internal/domain/job"
	"github.com/printbroker/backend/internal/domain/shared"
	"github.com/printbroker/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// JobService handles job lifecycle operations
type JobService struct {
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	derived        *derivedState
	logger         *zap.Logger
}

// NewJobService creates a new JobService. Split and pathway services are
// optional; when set they are recomputed with every financial change.
func NewJobService(txScope TransactionScope, splits *ProfitSplitService, pathways *PathwayService, logger *zap.Logger) *JobService {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("job")
	return &JobService{
		txScope: txScope,
		derived: &derivedState{splits: splits, pathways: pathways, logger: logger},
		logger:  logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *JobService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a single job
func (s *JobService) Create(ctx context.Context, req CreateJobRequest) (*JobResponse, error) {
	responses, err := s.CreateBatch(ctx, []CreateJobRequest{req})
	if err != nil {
		return nil, err
	}
	return &responses[0], nil
}

// CreateBatch creates several jobs in one transaction; any invalid job
// rejects the whole batch
func (s *JobService) CreateBatch(ctx context.Context, reqs []CreateJobRequest) ([]JobResponse, error) {
	if len(reqs) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "At least one job is required")
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "job", "create", "count", len(reqs))
	defer span.End()

	var (
		responses []JobResponse
		events    eventBuffer
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		events.reset()
		responses = make([]JobResponse, 0, len(reqs))
		for _, req := range reqs {
			routing, err := job.ParseRoutingType(req.RoutingType)
			if err != nil {
				return err
			}
			number, err := repos.Jobs().GenerateJobNumber(ctx)
			if err != nil {
				return err
			}
			j, err := job.NewJob(job.NewJobParams{
				JobNumber:    number,
				Title:        req.Title,
				RoutingType:  routing,
				SellPrice:    req.SellPrice,
				Quantity:     req.Quantity,
				SizeName:     strings.TrimSpace(req.SizeName),
				PaperSource:  strings.TrimSpace(req.PaperSource),
				VersionCount: req.VersionCount,
				Notes:        req.Notes,
				Mailing:      req.Mailing.toDomain(),
				Components:   req.Components,
			})
			if err != nil {
				return err
			}
			if req.AssignBaseJobID {
				base, err := repos.Jobs().NextBaseJobID(ctx)
				if err != nil {
					return err
				}
				if err := j.AssignBaseJobID(base); err != nil {
					return err
				}
			}
			if err := repos.Jobs().Save(ctx, j); err != nil {
				return err
			}
			events.collect(j)
			responses = append(responses, ToJobResponse(j))
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("jobs created", zap.Int("count", len(responses)))
	publishEvents(ctx, s.eventPublisher, s.logger, events.events)
	return responses, nil
}

// Get returns a job that has not been deleted
func (s *JobService) Get(ctx context.Context, id uuid.UUID) (*JobResponse, error) {
	var response JobResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		j, err := repos.Jobs().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if j.IsDeleted() {
			return shared.ErrNotFound
		}
		response = ToJobResponse(j)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// List returns a page of jobs that have not been deleted
func (s *JobService) List(ctx context.Context, filter JobListFilter) (*shared.Paginated[JobResponse], error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		f.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		f.OrderDir = filter.OrderDir
	}
	f.Search = filter.Search
	if filter.RoutingType != "" {
		f.Filters["routing_type"] = filter.RoutingType
	}
	if filter.Pathway != "" {
		f.Filters["pathway"] = filter.Pathway
	}
	if filter.ReadinessStatus != "" {
		f.Filters["readiness_status"] = filter.ReadinessStatus
	}

	var page shared.Paginated[JobResponse]
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		jobs, total, err := repos.Jobs().FindAll(ctx, f)
		if err != nil {
			return err
		}
		page = shared.NewPaginated(ToJobResponses(jobs), total, f.Page, f.PageSize)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// UpdateFinancials changes price, quantity, specs or routing. Invoiced jobs
// are rejected with FINANCIAL_LOCK. The profit split is recomputed in the same
// transaction, and the pathway too when the routing type changed; a split
// below zero rejects the update with NEGATIVE_MARGIN unless the request
// allows it.
func (s *JobService) UpdateFinancials(ctx context.Context, id uuid.UUID, req UpdateFinancialsRequest) (*JobResponse, error) {
	update := job.FinancialsUpdate{
		SellPrice:   req.SellPrice,
		Quantity:    req.Quantity,
		SizeName:    req.SizeName,
		PaperSource: req.PaperSource,
	}
	if req.RoutingType != nil {
		routing, err := job.ParseRoutingType(*req.RoutingType)
		if err != nil {
			return nil, err
		}
		update.RoutingType = &routing
	}

	var routingChanged bool
	derive := &jobDerivation{
		opts:       RecomputeOptions{Trigger: TriggerSellPrice, AllowNegativeMargin: req.AllowNegativeMargin},
		reclassify: func() bool { return routingChanged },
	}
	return s.mutateAndDerive(ctx, "update_financials", id, derive, func(_ TransactionalRepositories, j *job.Job) (bool, error) {
		previous := j.RoutingType
		if err := j.UpdateFinancials(update); err != nil {
			return false, err
		}
		routingChanged = j.RoutingType != previous
		return true, nil
	})
}

// UpdateMailing replaces the mailing signals, notes and optionally the version count
func (s *JobService) UpdateMailing(ctx context.Context, id uuid.UUID, req UpdateMailingRequest) (*JobResponse, error) {
	return s.mutate(ctx, "update_mailing", id, func(j *job.Job) error {
		if err := j.UpdateMailing(req.Mailing.toDomain(), req.Notes); err != nil {
			return err
		}
		if req.VersionCount != nil {
			return j.SetVersionCount(*req.VersionCount)
		}
		return nil
	})
}

// AssignBaseJobID mints the base job identifier from its sequence. A job
// that already has one keeps it and nothing is minted.
func (s *JobService) AssignBaseJobID(ctx context.Context, id uuid.UUID) (*JobResponse, error) {
	return s.mutateWithRepos(ctx, "assign_base_job_id", id, func(repos TransactionalRepositories, j *job.Job) (bool, error) {
		if j.HasBaseJobID() {
			return false, nil
		}
		base, err := repos.Jobs().NextBaseJobID(ctx)
		if err != nil {
			return false, err
		}
		return true, j.AssignBaseJobID(base)
	})
}

// MarkInvoiced locks the financial fields of a job
func (s *JobService) MarkInvoiced(ctx context.Context, id uuid.UUID) (*JobResponse, error) {
	return s.mutate(ctx, "mark_invoiced", id, func(j *job.Job) error {
		return j.MarkInvoiced()
	})
}

// Delete soft deletes a job
func (s *JobService) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.mutate(ctx, "delete", id, func(j *job.Job) error {
		return j.Delete()
	})
	return err
}

func (s *JobService) mutate(ctx context.Context, method string, id uuid.UUID, change func(j *job.Job) error) (*JobResponse, error) {
	return s.mutateWithRepos(ctx, method, id, func(_ TransactionalRepositories, j *job.Job) (bool, error) {
		return true, change(j)
	})
}

func (s *JobService) mutateWithRepos(ctx context.Context, method string, id uuid.UUID, change func(repos TransactionalRepositories, j *job.Job) (bool, error)) (*JobResponse, error) {
	return s.mutateAndDerive(ctx, method, id, nil, change)
}

// jobDerivation asks for the derived job state to be recomputed once the job is saved
type jobDerivation struct {
	opts       RecomputeOptions
	reclassify func() bool
}

// mutateAndDerive locks the job, applies change and saves it when change
// reports a modification. With derive set the split and pathway are
// recomputed before commit. Events are published after commit.
func (s *JobService) mutateAndDerive(ctx context.Context, method string, id uuid.UUID, derive *jobDerivation, change func(repos TransactionalRepositories, j *job.Job) (bool, error)) (*JobResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "job", method, telemetry.SpanAttrJobID, id.String())
	defer span.End()

	var (
		response JobResponse
		events   eventBuffer
		derived  *derivedChanges
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		events.reset()
		j, err := repos.Jobs().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		modified, err := change(repos, j)
		if err != nil {
			return err
		}
		if modified {
			if err := repos.Jobs().Save(ctx, j); err != nil {
				return err
			}
		}
		events.collect(j)

		if derive != nil {
			derived, err = s.derived.refreshInTx(ctx, repos, id, derive.opts, derive.reclassify(), &events)
			if err != nil {
				return err
			}
			// Reclassification may have written pathway and vendor count
			if j, err = repos.Jobs().FindByID(ctx, id); err != nil {
				return err
			}
		}
		response = ToJobResponse(j)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		if derive != nil {
			s.derived.failed(ctx, id, derive.opts.Trigger, err)
		}
		return nil, err
	}
	s.derived.committed(ctx, derived)
	publishEvents(ctx, s.eventPublisher, s.logger, events.events)
	return &response, nil
}
