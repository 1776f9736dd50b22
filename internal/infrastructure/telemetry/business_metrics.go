package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when a nil meter is passed to NewBrokerageMetrics
var ErrMeterNil = errors.New("NewBrokerageMetrics: meter cannot be nil")

// Outcome values for the outcome attribute
const (
	OutcomeAssigned      = "assigned"
	OutcomeAlreadySet    = "already_assigned"
	OutcomeLostRace      = "lost_race"
	OutcomeRejected      = "rejected"
	OutcomeUpdated       = "updated"
	OutcomeSkipped       = "skipped_override"
	OutcomeNegative      = "negative_margin"
	OutcomeSent          = "sent"
	OutcomeFailed        = "failed"
	OutcomeInconsistency = "inconsistent"
)

// BrokerageMetrics records the business counters of the brokerage core.
// A nil *BrokerageMetrics is valid and records nothing.
type BrokerageMetrics struct {
	logger *zap.Logger

	finalizeTotal      *Counter
	finalizeDuration   *Histogram
	pathwayChanges     *Counter
	splitRecomputes    *Counter
	readinessEvaluated *Counter
	notifications      *Counter
}

// NewBrokerageMetrics creates the brokerage instruments on meter.
func NewBrokerageMetrics(meter metric.Meter, logger *zap.Logger) (*BrokerageMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BrokerageMetrics{logger: logger}
	var err error

	if bm.finalizeTotal, err = NewCounter(meter,
		"brokerage_execution_id_finalize_total",
		"Execution ID finalize attempts by outcome", "{attempt}"); err != nil {
		return nil, err
	}
	if bm.finalizeDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "brokerage_execution_id_finalize_duration_seconds",
		Description: "Duration of the execution ID finalize transaction",
		Unit:        "s",
		Boundaries:  TxDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if bm.pathwayChanges, err = NewCounter(meter,
		"brokerage_pathway_changes_total",
		"Pathway reclassifications that changed or flagged a job", "{job}"); err != nil {
		return nil, err
	}
	if bm.splitRecomputes, err = NewCounter(meter,
		"brokerage_profit_split_recompute_total",
		"Profit split recomputes by outcome", "{recompute}"); err != nil {
		return nil, err
	}
	if bm.readinessEvaluated, err = NewCounter(meter,
		"brokerage_readiness_evaluations_total",
		"Readiness evaluations by resulting status", "{evaluation}"); err != nil {
		return nil, err
	}
	if bm.notifications, err = NewCounter(meter,
		"brokerage_vendor_notifications_total",
		"Vendor notifications by outcome", "{notification}"); err != nil {
		return nil, err
	}

	logger.Debug("Brokerage metrics initialized")
	return bm, nil
}

// RecordFinalize counts a finalize attempt and its duration
func (bm *BrokerageMetrics) RecordFinalize(ctx context.Context, outcome string, d time.Duration) {
	if bm == nil {
		return
	}
	bm.finalizeTotal.Inc(ctx, AttrOutcome.String(outcome))
	bm.finalizeDuration.RecordDuration(ctx, d, AttrOutcome.String(outcome))
}

// RecordPathwayChange counts a pathway move, or an inconsistency when previous equals current
func (bm *BrokerageMetrics) RecordPathwayChange(ctx context.Context, previous, current, routing string) {
	if bm == nil {
		return
	}
	bm.pathwayChanges.Inc(ctx,
		AttrPrevPathway.String(previous),
		AttrPathway.String(current),
		AttrRouting.String(routing),
	)
}

// RecordSplitRecompute counts a recompute and the trigger that caused it
func (bm *BrokerageMetrics) RecordSplitRecompute(ctx context.Context, outcome, trigger string) {
	if bm == nil {
		return
	}
	bm.splitRecomputes.Inc(ctx, AttrOutcome.String(outcome), AttrTrigger.String(trigger))
}

// RecordReadiness counts an evaluation by status
func (bm *BrokerageMetrics) RecordReadiness(ctx context.Context, status string) {
	if bm == nil {
		return
	}
	bm.readinessEvaluated.Inc(ctx, AttrReadiness.String(status))
}

// RecordNotification counts a vendor notification attempt
func (bm *BrokerageMetrics) RecordNotification(ctx context.Context, outcome string) {
	if bm == nil {
		return
	}
	bm.notifications.Inc(ctx, AttrOutcome.String(outcome))
}
