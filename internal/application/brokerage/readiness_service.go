package brokerage

import (
	"context"

	"github.com/google/uuid"
	"github.com/printbroker/backend/internal/domain/job"
	"github.com/printbroker/backend/internal/domain/shared"
	"github.com/printbroker/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ReadinessService evaluates and records the production readiness of jobs
type ReadinessService struct {
	txScope        TransactionScope
	settings       Settings
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	metrics        *telemetry.BrokerageMetrics
}

// NewReadinessService creates a new ReadinessService
func NewReadinessService(txScope TransactionScope, settings Settings, logger *zap.Logger) *ReadinessService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReadinessService{
		txScope:  txScope,
		settings: settings,
		logger:   logger.Named("readiness"),
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ReadinessService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *ReadinessService) SetBusinessMetrics(m *telemetry.BrokerageMetrics) {
	s.metrics = m
}

// Evaluate walks the QC concerns of a job and stores the resulting status.
// A SENT job reports SENT and is not written.
func (s *ReadinessService) Evaluate(ctx context.Context, jobID uuid.UUID) (*job.ReadinessResult, error) {
	return s.mutate(ctx, "evaluate", jobID, nil)
}

// SetQCFlag updates one job-level concern and re-evaluates readiness
func (s *ReadinessService) SetQCFlag(ctx context.Context, jobID uuid.UUID, req SetQCFlagRequest) (*job.ReadinessResult, error) {
	concern, err := job.ParseConcern(req.Concern)
	if err != nil {
		return nil, err
	}
	status, err := job.ParseQCStatus(req.Status)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, "set_qc_flag", jobID, func(j *job.Job) error {
		return j.SetQCFlag(concern, status, req.Notes)
	})
}

// SetComponentQC updates the artwork and/or material status of a component
// and re-evaluates readiness
func (s *ReadinessService) SetComponentQC(ctx context.Context, jobID, componentID uuid.UUID, req SetComponentQCRequest) (*job.ReadinessResult, error) {
	artwork, err := parseOptionalQCStatus(req.ArtworkStatus)
	if err != nil {
		return nil, err
	}
	material, err := parseOptionalQCStatus(req.MaterialStatus)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, "set_component_qc", jobID, func(j *job.Job) error {
		return j.SetComponentQC(componentID, artwork, material)
	})
}

// AddComponent appends a component with pending artwork and materials
func (s *ReadinessService) AddComponent(ctx context.Context, jobID uuid.UUID, req AddComponentRequest) (*job.ReadinessResult, error) {
	return s.mutate(ctx, "add_component", jobID, func(j *job.Job) error {
		_, err := j.AddComponent(req.Name)
		return err
	})
}

// MarkSent moves a job to the terminal SENT state. Outstanding blockers
// reject the call with JOB_BLOCKED; a job already SENT is returned as is.
func (s *ReadinessService) MarkSent(ctx context.Context, jobID uuid.UUID) (*job.ReadinessResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "readiness", "mark_sent",
		telemetry.SpanAttrJobID, jobID.String())
	defer span.End()

	var (
		result job.ReadinessResult
		events eventBuffer
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		events.reset()
		j, err := repos.Jobs().FindByIDForUpdate(ctx, jobID)
		if err != nil {
			return err
		}
		if j.IsSent() {
			result = job.EvaluateReadiness(j, job.MailingContext{})
			return nil
		}
		mc, err := s.mailingContext(ctx, repos, j)
		if err != nil {
			return err
		}
		evaluated := job.EvaluateReadiness(j, mc)
		if err := j.MarkSent(evaluated); err != nil {
			result = evaluated
			return err
		}
		if err := repos.Jobs().Save(ctx, j); err != nil {
			return err
		}
		events.collect(j)
		result = job.EvaluateReadiness(j, mc)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		if shared.HasCode(err, shared.CodeJobBlocked) {
			s.logger.Info("job not sent, readiness blockers outstanding",
				zap.String("job_id", jobID.String()),
				zap.Int("blockers", len(result.Blockers)),
			)
		}
		return nil, err
	}

	if len(events.events) > 0 {
		s.logger.Info("job marked sent", zap.String("job_id", jobID.String()))
		s.metrics.RecordReadiness(ctx, string(job.ReadinessSent))
	}
	publishEvents(ctx, s.eventPublisher, s.logger, events.events)
	return &result, nil
}

// mutate applies change (if any) to the locked job, re-evaluates readiness
// and saves the job in one transaction
func (s *ReadinessService) mutate(ctx context.Context, method string, jobID uuid.UUID, change func(j *job.Job) error) (*job.ReadinessResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "readiness", method,
		telemetry.SpanAttrJobID, jobID.String())
	defer span.End()

	var result job.ReadinessResult
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		j, err := repos.Jobs().FindByIDForUpdate(ctx, jobID)
		if err != nil {
			return err
		}
		dirty := false
		if change != nil {
			if err := change(j); err != nil {
				return err
			}
			dirty = true
		}

		mc, err := s.mailingContext(ctx, repos, j)
		if err != nil {
			return err
		}
		result = job.EvaluateReadiness(j, mc)
		if !j.IsSent() && j.ReadinessStatus != result.Status {
			j.ApplyReadiness(result)
			dirty = true
		}
		if !dirty {
			return nil
		}
		return repos.Jobs().Save(ctx, j)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrReadiness, string(result.Status))
	s.metrics.RecordReadiness(ctx, string(result.Status))
	return &result, nil
}

// mailingContext gathers the mailing signals that live outside the job:
// active vendor purchase orders to mailing fulfillers and the note keywords
func (s *ReadinessService) mailingContext(ctx context.Context, repos TransactionalRepositories, j *job.Job) (job.MailingContext, error) {
	mc := job.MailingContext{Keywords: s.settings.MailingKeywords}

	orders, err := repos.PurchaseOrders().FindByJob(ctx, j.ID)
	if err != nil {
		return mc, err
	}
	var vendorIDs []uuid.UUID
	seen := make(map[uuid.UUID]struct{})
	for i := range orders {
		po := &orders[i]
		if !po.IsActive() || !po.IsVendorFacing() {
			continue
		}
		if _, ok := seen[po.VendorID()]; ok {
			continue
		}
		seen[po.VendorID()] = struct{}{}
		vendorIDs = append(vendorIDs, po.VendorID())
	}
	if len(vendorIDs) == 0 {
		return mc, nil
	}

	vendors, err := repos.Vendors().FindByIDs(ctx, vendorIDs)
	if err != nil {
		return mc, err
	}
	for i := range vendors {
		if vendors[i].IsMailingFulfiller {
			mc.HasMailingFulfillerPO = true
			break
		}
	}
	return mc, nil
}

func parseOptionalQCStatus(s *string) (*job.QCStatus, error) {
	if s == nil {
		return nil, nil
	}
	status, err := job.ParseQCStatus(*s)
	if err != nil {
		return nil, err
	}
	return &status, nil
}
