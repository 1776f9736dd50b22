package brokerage

import (
	"context"

	"github.com/google/uuid"
	"github.com/printbroker/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// derivedState keeps the profit split and pathway of a job in line with its
// purchase orders. Both are recomputed inside the mutating transaction, so a
// rejected recompute rolls the mutation back with it.
type derivedState struct {
	splits   *ProfitSplitService
	pathways *PathwayService
	logger   *zap.Logger
}

// derivedChanges is what refreshInTx wrote, reported once the transaction commits
type derivedChanges struct {
	trigger string
	split   *RecomputeResult
	pathway *ReclassifyResult
}

// refreshInTx recomputes the split (an overridden split is left alone) and,
// when reclassify is set, the pathway. Pathway events go into events.
func (d *derivedState) refreshInTx(ctx context.Context, repos TransactionalRepositories, jobID uuid.UUID, opts RecomputeOptions, reclassify bool, events *eventBuffer) (*derivedChanges, error) {
	changes := &derivedChanges{trigger: opts.Trigger}
	if d == nil {
		return changes, nil
	}
	if d.pathways != nil && reclassify {
		result, err := d.pathways.reclassifyInTx(ctx, repos, jobID, events)
		if err != nil {
			return nil, err
		}
		changes.pathway = result
	}
	if d.splits != nil {
		split, skipped, err := d.splits.recomputeInTx(ctx, repos, jobID, opts)
		if err != nil {
			return nil, err
		}
		changes.split = &RecomputeResult{Split: ToProfitSplitResponse(split), Skipped: skipped}
	}
	return changes, nil
}

// committed logs and counts the derived writes of a committed mutation
func (d *derivedState) committed(ctx context.Context, changes *derivedChanges) {
	if d == nil || changes == nil {
		return
	}
	if changes.pathway != nil && d.pathways != nil {
		d.pathways.report(ctx, changes.pathway)
	}
	if changes.split != nil && d.splits != nil {
		d.splits.recordOutcome(ctx, changes.split.Split.JobID, changes.trigger, changes.split, nil)
	}
}

// failed counts a mutation rolled back by its split recompute
func (d *derivedState) failed(ctx context.Context, jobID uuid.UUID, trigger string, err error) {
	if d == nil || d.splits == nil || !shared.HasCode(err, shared.CodeNegativeMargin) {
		return
	}
	d.logger.Warn("mutation rejected, profit split would turn negative",
		zap.String("job_id", jobID.String()),
		zap.String("trigger", trigger),
		zap.Error(err),
	)
	d.splits.recordOutcome(ctx, jobID, trigger, nil, err)
}
