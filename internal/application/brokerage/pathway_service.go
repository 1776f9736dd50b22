package brokerage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/printbroker/backend/internal/domain/job"
	"github.com/printbroker/backend/internal/domain/purchasing"
	"github.com/printbroker/backend/internal/domain/shared"
	"github.com/printbroker/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// PathwayService is the only writer of a job's pathway and vendor count
type PathwayService struct {
	txScope        TransactionScope
	settings       Settings
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	metrics        *telemetry.BrokerageMetrics
}

// NewPathwayService creates a new PathwayService
func NewPathwayService(txScope TransactionScope, settings Settings, logger *zap.Logger) *PathwayService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PathwayService{
		txScope:  txScope,
		settings: settings,
		logger:   logger.Named("pathway"),
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PathwayService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *PathwayService) SetBusinessMetrics(m *telemetry.BrokerageMetrics) {
	s.metrics = m
}

// Reclassify recounts the distinct cost-bearing vendors of a job and writes
// pathway and vendor count together under the job row lock. Inconsistent
// stored state is reported in the result and left as it is.
func (s *PathwayService) Reclassify(ctx context.Context, jobID uuid.UUID) (*ReclassifyResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "pathway", "reclassify",
		telemetry.SpanAttrJobID, jobID.String())
	defer span.End()

	var (
		result *ReclassifyResult
		events eventBuffer
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		events.reset()
		var err error
		result, err = s.reclassifyInTx(ctx, repos, jobID, &events)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrPathway, result.Pathway)
	s.report(ctx, result)
	publishEvents(ctx, s.eventPublisher, s.logger, events.events)
	return result, nil
}

// reclassifyInTx classifies the job inside the caller's transaction. Job
// events are collected into events for publishing after commit.
func (s *PathwayService) reclassifyInTx(ctx context.Context, repos TransactionalRepositories, jobID uuid.UUID, events *eventBuffer) (*ReclassifyResult, error) {
	j, err := repos.Jobs().FindByIDForUpdate(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if j.IsDeleted() {
		return nil, shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Job %s is deleted", j.JobNumber))
	}
	orders, err := repos.PurchaseOrders().FindByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	count := purchasing.CountCostBearingVendors(orders, s.settings.BuyerCompanyID)
	previous := j.Pathway
	c := job.ClassifyPathway(j.RoutingType, previous, count)

	if c.Changed || j.VendorCount != c.VendorCount {
		j.ApplyClassification(c)
		if err := repos.Jobs().Save(ctx, j); err != nil {
			return nil, err
		}
	}
	events.collect(j)

	return &ReclassifyResult{
		JobID:         jobID,
		RoutingType:   string(j.RoutingType),
		Previous:      string(previous),
		Pathway:       string(c.Pathway),
		VendorCount:   c.VendorCount,
		Changed:       c.Changed,
		Inconsistency: c.Inconsistency,
	}, nil
}

// report logs and counts a committed classification
func (s *PathwayService) report(ctx context.Context, result *ReclassifyResult) {
	if result.Changed {
		s.logger.Info("job pathway changed",
			zap.String("job_id", result.JobID.String()),
			zap.String("previous", result.Previous),
			zap.String("pathway", result.Pathway),
			zap.Int("vendor_count", result.VendorCount),
		)
		s.metrics.RecordPathwayChange(ctx, result.Previous, result.Pathway, result.RoutingType)
	}
	if result.Inconsistency != nil {
		s.logger.Warn("pathway inconsistent with routing type",
			zap.String("job_id", result.JobID.String()),
			zap.String("pathway", result.Pathway),
			zap.String("routing_type", result.RoutingType),
			zap.String("code", result.Inconsistency.Code),
		)
		s.metrics.RecordPathwayChange(ctx, result.Previous, result.Pathway, result.RoutingType)
	}
}
