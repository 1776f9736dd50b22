package brokerage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/printbroker/backend/internal/domain/job"
	"github.com/printbroker/backend/internal/domain/purchasing"
	"github.com/printbroker/backend/internal/domain/shared"
	"github.com/printbroker/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ExecutionIdentityService assigns the write-once, vendor-scoped execution
// identifier of vendor-facing purchase orders. ExecutionIDAssigned goes to
// the transactional outbox, so the vendor notification is queued if and only
// if the identifier commits.
type ExecutionIdentityService struct {
	txScope TransactionScope
	logger  *zap.Logger
	metrics *telemetry.BrokerageMetrics
}

// NewExecutionIdentityService creates a new ExecutionIdentityService
func NewExecutionIdentityService(txScope TransactionScope, logger *zap.Logger) *ExecutionIdentityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExecutionIdentityService{
		txScope: txScope,
		logger:  logger.Named("execution_identity"),
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *ExecutionIdentityService) SetBusinessMetrics(m *telemetry.BrokerageMetrics) {
	s.metrics = m
}

// Finalize assigns "{baseJobId}-{vendorCode}.{vendorCount}" to a purchase order.
//
// The job row is locked for the whole read-count-write sequence and the write
// itself only succeeds while execution_id is still NULL. A purchase order that
// already carries an identifier is returned unchanged without any write, so
// retries are safe.
func (s *ExecutionIdentityService) Finalize(ctx context.Context, poID uuid.UUID) (*FinalizeResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "execution_identity", "finalize",
		telemetry.SpanAttrPurchaseOrderID, poID.String())
	defer span.End()
	start := time.Now()

	var (
		result  FinalizeResult
		outcome string
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		orders := repos.PurchaseOrders()

		po, err := orders.FindByID(ctx, poID)
		if err != nil {
			return err
		}
		j, err := repos.Jobs().FindByIDForUpdate(ctx, po.JobID)
		if err != nil {
			return err
		}
		// Re-read under the lock; a concurrent finalize may have committed meanwhile
		if po, err = orders.FindByID(ctx, poID); err != nil {
			return err
		}

		result = FinalizeResult{PurchaseOrderID: po.ID, PONumber: po.PONumber}
		if po.ExecutionID.IsAssigned() {
			result.ExecutionID = po.ExecutionID.Value()
			outcome = telemetry.OutcomeAlreadySet
			return nil
		}

		if err := po.CanFinalize(); err != nil {
			return err
		}
		if j.IsDeleted() {
			return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Job %s is deleted", j.JobNumber))
		}
		if !j.HasBaseJobID() {
			return missingBaseJobIDError(j)
		}
		vendor, err := repos.Vendors().FindByID(ctx, po.VendorID())
		if err != nil {
			return err
		}
		if !vendor.HasCode() {
			return shared.NewDomainError(shared.CodeMissingVendorCode,
				fmt.Sprintf("Vendor %s has no vendor code; assign one before finalizing", vendor.Name))
		}

		siblings, err := orders.FindByJob(ctx, j.ID)
		if err != nil {
			return err
		}
		id, err := purchasing.FormatExecutionID(j.BaseJobIDValue(), vendor.Code(), purchasing.CountActiveVendors(siblings))
		if err != nil {
			return err
		}
		if err := po.AssignExecutionID(id); err != nil {
			return err
		}

		stored, assigned, err := orders.AssignExecutionID(ctx, po.ID, id)
		if err != nil {
			return err
		}
		result.ExecutionID = stored.Value()
		if !assigned {
			po.ClearDomainEvents()
			outcome = telemetry.OutcomeLostRace
			return nil
		}
		result.Assigned = true
		outcome = telemetry.OutcomeAssigned
		return repos.Outbox().Publish(ctx, po.PullDomainEvents()...)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.metrics.RecordFinalize(ctx, telemetry.OutcomeRejected, time.Since(start))
		return nil, err
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrExecutionID, result.ExecutionID)
	s.metrics.RecordFinalize(ctx, outcome, time.Since(start))
	if result.Assigned {
		s.logger.Info("execution ID assigned",
			zap.String("purchase_order_id", poID.String()),
			zap.String("po_number", result.PONumber),
			zap.String("execution_id", result.ExecutionID),
		)
	}
	return &result, nil
}

// FinalizeAll finalizes every active vendor-facing purchase order of a job that
// has no identifier yet. A job without a base job ID fails as a whole with
// MISSING_BASE_JOB_ID. Otherwise each order runs through Finalize in its own
// transaction; a failure is reported in that order's result and does not
// stop the rest.
func (s *ExecutionIdentityService) FinalizeAll(ctx context.Context, jobID uuid.UUID) ([]FinalizeResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "execution_identity", "finalize_all",
		telemetry.SpanAttrJobID, jobID.String())
	defer span.End()

	var pending []purchasing.PurchaseOrder
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		j, err := repos.Jobs().FindByID(ctx, jobID)
		if err != nil {
			return err
		}
		if j.IsDeleted() {
			return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Job %s is deleted", j.JobNumber))
		}
		if !j.HasBaseJobID() {
			return missingBaseJobIDError(j)
		}
		orders, err := repos.PurchaseOrders().FindByJob(ctx, jobID)
		if err != nil {
			return err
		}
		pending = pending[:0]
		for i := range orders {
			po := orders[i]
			if po.IsActive() && po.IsVendorFacing() && !po.ExecutionID.IsAssigned() {
				pending = append(pending, po)
			}
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	results := make([]FinalizeResult, 0, len(pending))
	telemetry.WithProfilingLabels(ctx, telemetry.BrokerageOperationLabels("finalize_all"), func(ctx context.Context) {
		for i := range pending {
			po := &pending[i]
			r, err := s.Finalize(ctx, po.ID)
			if err != nil {
				failed := FinalizeResult{PurchaseOrderID: po.ID, PONumber: po.PONumber, Error: err.Error()}
				var de *shared.DomainError
				if errors.As(err, &de) {
					failed.Code = de.Code
				}
				results = append(results, failed)
				continue
			}
			results = append(results, *r)
		}
	})
	return results, nil
}

func missingBaseJobIDError(j *job.Job) error {
	return shared.NewDomainError(shared.CodeMissingBaseJobID,
		fmt.Sprintf("Job %s has no base job ID; assign one before finalizing", j.JobNumber))
}
