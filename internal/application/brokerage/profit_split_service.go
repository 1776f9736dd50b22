package brokerage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/printbroker/backend/internal/domain/finance"
	"github.com/printbroker/backend/internal/domain/shared"
	"github.com/printbroker/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Recompute triggers
const (
	TriggerManual        = "manual"
	TriggerPurchaseOrder = "purchase_order"
	TriggerSellPrice     = "sell_price"
	TriggerClearOverride = "clear_override"
	TriggerJobUpdate     = "job_update"
)

// ProfitSplitService keeps the cached profit split of each job in line
// with its sell price and cost-bearing purchase orders
type ProfitSplitService struct {
	txScope  TransactionScope
	settings Settings
	logger   *zap.Logger
	metrics  *telemetry.BrokerageMetrics
}

// NewProfitSplitService creates a new ProfitSplitService
func NewProfitSplitService(txScope TransactionScope, settings Settings, logger *zap.Logger) *ProfitSplitService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfitSplitService{
		txScope:  txScope,
		settings: settings,
		logger:   logger.Named("profit_split"),
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *ProfitSplitService) SetBusinessMetrics(m *telemetry.BrokerageMetrics) {
	s.metrics = m
}

// Recompute derives the split from persisted state and upserts it.
// An overridden split is returned untouched with Skipped set. A negative
// gross margin is rejected with NEGATIVE_MARGIN unless opts allow it.
func (s *ProfitSplitService) Recompute(ctx context.Context, jobID uuid.UUID, opts RecomputeOptions) (*RecomputeResult, error) {
	if opts.Trigger == "" {
		opts.Trigger = TriggerManual
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "profit_split", "recompute",
		telemetry.SpanAttrJobID, jobID.String())
	defer span.End()

	var result *RecomputeResult
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		split, skipped, err := s.recomputeInTx(ctx, repos, jobID, opts)
		if err != nil {
			return err
		}
		result = &RecomputeResult{Split: ToProfitSplitResponse(split), Skipped: skipped}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.recordOutcome(ctx, jobID, opts.Trigger, nil, err)
		return nil, err
	}
	s.recordOutcome(ctx, jobID, opts.Trigger, result, nil)
	return result, nil
}

// recordOutcome logs and counts the result of a recompute
func (s *ProfitSplitService) recordOutcome(ctx context.Context, jobID uuid.UUID, trigger string, result *RecomputeResult, err error) {
	if err != nil {
		outcome := telemetry.OutcomeFailed
		if shared.HasCode(err, shared.CodeNegativeMargin) {
			outcome = telemetry.OutcomeNegative
		}
		s.metrics.RecordSplitRecompute(ctx, outcome, trigger)
		return
	}

	outcome := telemetry.OutcomeUpdated
	if result.Skipped {
		outcome = telemetry.OutcomeSkipped
		s.logger.Info("profit split is overridden, recompute skipped",
			zap.String("job_id", jobID.String()),
			zap.String("trigger", trigger),
		)
	}
	s.metrics.RecordSplitRecompute(ctx, outcome, trigger)
}

func (s *ProfitSplitService) recomputeInTx(ctx context.Context, repos TransactionalRepositories, jobID uuid.UUID, opts RecomputeOptions) (*finance.ProfitSplit, bool, error) {
	j, err := repos.Jobs().FindByIDForUpdate(ctx, jobID)
	if err != nil {
		return nil, false, err
	}
	if j.IsDeleted() {
		return nil, false, shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Job %s is deleted", j.JobNumber))
	}

	existing, err := repos.ProfitSplits().FindByJob(ctx, jobID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, false, err
	}
	if existing != nil && existing.IsOverridden {
		return existing, true, nil
	}

	orders, err := repos.PurchaseOrders().FindByJob(ctx, jobID)
	if err != nil {
		return nil, false, err
	}
	totals := finance.AggregateCosts(orders, s.settings.BuyerCompanyID)
	calc := s.settings.SplitPolicy.Calculate(finance.SplitInput{
		SellPrice:   j.SellPrice,
		TotalCost:   totals.TotalCost,
		PaperMarkup: totals.PaperMarkup,
		RoutingType: j.RoutingType,
	})
	if calc.GrossMargin.IsNegative() && !opts.AllowNegativeMargin {
		return nil, false, shared.NewDomainError(shared.CodeNegativeMargin,
			fmt.Sprintf("Job %s has negative gross margin %s (sell %s, cost %s)",
				j.JobNumber, calc.GrossMargin.StringFixed(2), j.SellPrice.StringFixed(2), totals.TotalCost.StringFixed(2)))
	}

	split := existing
	if split == nil {
		split = finance.NewProfitSplit(jobID, j.SellPrice, j.RoutingType, totals, calc)
	} else {
		split.Apply(j.SellPrice, j.RoutingType, totals, calc)
	}
	if err := repos.ProfitSplits().Upsert(ctx, split); err != nil {
		return nil, false, err
	}
	return split, false, nil
}

// Override pins the intermediary and buyer shares. A job without a split
// gets one calculated first, whatever its margin.
func (s *ProfitSplitService) Override(ctx context.Context, jobID uuid.UUID, req OverrideProfitSplitRequest) (*ProfitSplitResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "profit_split", "override",
		telemetry.SpanAttrJobID, jobID.String())
	defer span.End()

	var response ProfitSplitResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		split, err := repos.ProfitSplits().FindByJob(ctx, jobID)
		if errors.Is(err, shared.ErrNotFound) {
			split, _, err = s.recomputeInTx(ctx, repos, jobID, RecomputeOptions{AllowNegativeMargin: true})
		}
		if err != nil {
			return err
		}
		if err := split.Override(req.IntermediaryShare, req.BuyerShare, req.Reason); err != nil {
			return err
		}
		if err := repos.ProfitSplits().Upsert(ctx, split); err != nil {
			return err
		}
		response = ToProfitSplitResponse(split)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("profit split overridden",
		zap.String("job_id", jobID.String()),
		zap.String("intermediary_share", response.IntermediaryShare.StringFixed(2)),
		zap.String("buyer_share", response.BuyerShare.StringFixed(2)),
		zap.String("reason", response.OverrideReason),
	)
	return &response, nil
}

// ClearOverride releases the split and recomputes it in the same transaction.
// A negative margin keeps the override in place.
func (s *ProfitSplitService) ClearOverride(ctx context.Context, jobID uuid.UUID) (*ProfitSplitResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "profit_split", "clear_override",
		telemetry.SpanAttrJobID, jobID.String())
	defer span.End()

	var response ProfitSplitResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		split, err := repos.ProfitSplits().FindByJob(ctx, jobID)
		if err != nil {
			return err
		}
		if !split.IsOverridden {
			response = ToProfitSplitResponse(split)
			return nil
		}
		split.ClearOverride()
		if err := repos.ProfitSplits().Upsert(ctx, split); err != nil {
			return err
		}
		recomputed, _, err := s.recomputeInTx(ctx, repos, jobID, RecomputeOptions{Trigger: TriggerClearOverride})
		if err != nil {
			return err
		}
		response = ToProfitSplitResponse(recomputed)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.metrics.RecordSplitRecompute(ctx, telemetry.OutcomeUpdated, TriggerClearOverride)
	return &response, nil
}

// Get returns the stored split of a job
func (s *ProfitSplitService) Get(ctx context.Context, jobID uuid.UUID) (*ProfitSplitResponse, error) {
	var response ProfitSplitResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		split, err := repos.ProfitSplits().FindByJob(ctx, jobID)
		if err != nil {
			return err
		}
		response = ToProfitSplitResponse(split)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}
