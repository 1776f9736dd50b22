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

// PurchaseOrderService handles purchase order operations. Every mutation
// recomputes the job's profit split and, when the active vendor set may have
// changed, its pathway, in the same transaction.
type PurchaseOrderService struct {
	txScope        TransactionScope
	settings       Settings
	eventPublisher shared.EventPublisher
	derived        *derivedState
	logger         *zap.Logger
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(txScope TransactionScope, settings Settings, splits *ProfitSplitService, pathways *PathwayService, logger *zap.Logger) *PurchaseOrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("purchase_order")
	return &PurchaseOrderService{
		txScope:  txScope,
		settings: settings,
		derived:  &derivedState{splits: splits, pathways: pathways, logger: logger},
		logger:   logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PurchaseOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create issues a pending purchase order for a job, targeting either a
// routing partner company or an external vendor
func (s *PurchaseOrderService) Create(ctx context.Context, req CreatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase_order", "create",
		telemetry.SpanAttrJobID, req.JobID.String())
	defer span.End()

	origin := s.settings.BuyerCompanyID
	if req.OriginCompanyID != nil {
		origin = *req.OriginCompanyID
	}

	var (
		response PurchaseOrderResponse
		events   eventBuffer
		derived  *derivedChanges
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		events.reset()
		j, err := repos.Jobs().FindByIDForUpdate(ctx, req.JobID)
		if err != nil {
			return err
		}
		if j.IsDeleted() {
			return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Job %s is deleted", j.JobNumber))
		}
		if j.IsFinanciallyLocked() && origin == s.settings.BuyerCompanyID {
			return financialLockError(j)
		}
		if err := s.checkTarget(ctx, repos, req.TargetCompanyID, req.TargetVendorID); err != nil {
			return err
		}

		number, err := repos.PurchaseOrders().GeneratePONumber(ctx)
		if err != nil {
			return err
		}
		po, err := purchasing.NewPurchaseOrder(purchasing.NewPurchaseOrderParams{
			JobID:           j.ID,
			PONumber:        number,
			OriginCompanyID: origin,
			TargetCompanyID: req.TargetCompanyID,
			TargetVendorID:  req.TargetVendorID,
			Costs:           req.CostsInput.toDomain(),
			JobQuantity:     j.Quantity,
			Notes:           req.Notes,
		})
		if err != nil {
			return err
		}
		if err := repos.PurchaseOrders().Save(ctx, po); err != nil {
			return err
		}
		events.collect(po)
		response = ToPurchaseOrderResponse(po)

		derived, err = s.derived.refreshInTx(ctx, repos, j.ID, RecomputeOptions{
			Trigger:             TriggerPurchaseOrder,
			AllowNegativeMargin: req.AllowNegativeMargin,
		}, response.TargetVendorID != nil, &events)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.derived.failed(ctx, req.JobID, TriggerPurchaseOrder, err)
		return nil, err
	}

	s.logger.Info("purchase order created",
		zap.String("purchase_order_id", response.ID.String()),
		zap.String("po_number", response.PONumber),
		zap.String("job_id", response.JobID.String()),
	)
	s.derived.committed(ctx, derived)
	publishEvents(ctx, s.eventPublisher, s.logger, events.events)
	return &response, nil
}

func (s *PurchaseOrderService) checkTarget(ctx context.Context, repos TransactionalRepositories, companyID, vendorID *uuid.UUID) error {
	if vendorID != nil && *vendorID != uuid.Nil {
		vendor, err := repos.Vendors().FindByID(ctx, *vendorID)
		if err != nil {
			return err
		}
		if !vendor.IsActive {
			return shared.NewDomainError(shared.CodeInvalidTarget, fmt.Sprintf("Vendor %s is inactive", vendor.Name))
		}
	}
	if companyID != nil && *companyID != uuid.Nil {
		if _, err := repos.Companies().FindByID(ctx, *companyID); err != nil {
			return err
		}
	}
	return nil
}

// Get returns a purchase order
func (s *PurchaseOrderService) Get(ctx context.Context, id uuid.UUID) (*PurchaseOrderResponse, error) {
	var response PurchaseOrderResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		po, err := repos.PurchaseOrders().FindByID(ctx, id)
		if err != nil {
			return err
		}
		response = ToPurchaseOrderResponse(po)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// ListByJob returns every purchase order of a job, voided and deleted ones included
func (s *PurchaseOrderService) ListByJob(ctx context.Context, jobID uuid.UUID) ([]PurchaseOrderResponse, error) {
	var responses []PurchaseOrderResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.Jobs().FindByID(ctx, jobID); err != nil {
			return err
		}
		orders, err := repos.PurchaseOrders().FindByJob(ctx, jobID)
		if err != nil {
			return err
		}
		responses = ToPurchaseOrderResponses(orders)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// UpdateCosts replaces the cost fields. Rejected with FINANCIAL_LOCK once the
// job is invoiced, and with NEGATIVE_MARGIN when the new costs exceed the sell
// price unless the request allows it.
func (s *PurchaseOrderService) UpdateCosts(ctx context.Context, id uuid.UUID, req UpdateCostsRequest) (*PurchaseOrderResponse, error) {
	return s.mutate(ctx, "update_costs", id, mutationEffects{allowNegativeMargin: req.AllowNegativeMargin}, func(j *job.Job, po *purchasing.PurchaseOrder) error {
		if j.IsFinanciallyLocked() {
			return financialLockError(j)
		}
		return po.UpdateCosts(req.CostsInput.toDomain(), j.Quantity)
	})
}

// ChangeVendor retargets a vendor-facing purchase order. Fails with
// EXECUTION_ID_LOCKED once an execution identifier was assigned.
func (s *PurchaseOrderService) ChangeVendor(ctx context.Context, id uuid.UUID, req ChangeVendorRequest) (*PurchaseOrderResponse, error) {
	return s.mutateWithRepos(ctx, "change_vendor", id, costNeutral(true), func(repos TransactionalRepositories, _ *job.Job, po *purchasing.PurchaseOrder) error {
		if err := po.ChangeVendor(req.VendorID); err != nil {
			return err
		}
		return s.checkTarget(ctx, repos, nil, &req.VendorID)
	})
}

// Issue sends a pending purchase order to its target
func (s *PurchaseOrderService) Issue(ctx context.Context, id uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.mutate(ctx, "issue", id, costNeutral(false), func(_ *job.Job, po *purchasing.PurchaseOrder) error {
		return po.Issue()
	})
}

// Accept records the target's acceptance
func (s *PurchaseOrderService) Accept(ctx context.Context, id uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.mutate(ctx, "accept", id, costNeutral(false), func(_ *job.Job, po *purchasing.PurchaseOrder) error {
		return po.Accept()
	})
}

// MarkPaid records payment of an accepted purchase order
func (s *PurchaseOrderService) MarkPaid(ctx context.Context, id uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.mutate(ctx, "mark_paid", id, costNeutral(false), func(_ *job.Job, po *purchasing.PurchaseOrder) error {
		return po.MarkPaid()
	})
}

// Cancel voids a purchase order from the buyer side
func (s *PurchaseOrderService) Cancel(ctx context.Context, id uuid.UUID, req VoidPurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	return s.mutate(ctx, "cancel", id, costNeutral(true), func(_ *job.Job, po *purchasing.PurchaseOrder) error {
		return po.Cancel(req.Reason)
	})
}

// Reject voids a purchase order from the target side
func (s *PurchaseOrderService) Reject(ctx context.Context, id uuid.UUID, req VoidPurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	return s.mutate(ctx, "reject", id, costNeutral(true), func(_ *job.Job, po *purchasing.PurchaseOrder) error {
		return po.Reject(req.Reason)
	})
}

// Delete soft deletes a purchase order. An assigned execution identifier
// stays on the deleted row.
func (s *PurchaseOrderService) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.mutate(ctx, "delete", id, costNeutral(true), func(_ *job.Job, po *purchasing.PurchaseOrder) error {
		return po.Delete()
	})
	return err
}

// mutationEffects describes how a purchase order mutation touches derived job state
type mutationEffects struct {
	// vendorSetChange recounts the active vendors and reclassifies the pathway
	vendorSetChange bool
	// allowNegativeMargin accepts a recomputed split below zero
	allowNegativeMargin bool
}

// costNeutral is for status changes, voids and vendor swaps. None of them
// raises the total cost, so they never turn the margin negative on their own.
func costNeutral(vendorSetChange bool) mutationEffects {
	return mutationEffects{vendorSetChange: vendorSetChange, allowNegativeMargin: true}
}

func (s *PurchaseOrderService) mutate(ctx context.Context, method string, id uuid.UUID, effects mutationEffects, change func(j *job.Job, po *purchasing.PurchaseOrder) error) (*PurchaseOrderResponse, error) {
	return s.mutateWithRepos(ctx, method, id, effects, func(_ TransactionalRepositories, j *job.Job, po *purchasing.PurchaseOrder) error {
		return change(j, po)
	})
}

// mutateWithRepos locks the owning job, applies change to the purchase order
// and saves it with a version check. Split and pathway are recomputed before
// commit; any failure there rolls the change back.
func (s *PurchaseOrderService) mutateWithRepos(ctx context.Context, method string, id uuid.UUID, effects mutationEffects, change func(repos TransactionalRepositories, j *job.Job, po *purchasing.PurchaseOrder) error) (*PurchaseOrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase_order", method,
		telemetry.SpanAttrPurchaseOrderID, id.String())
	defer span.End()

	var (
		response PurchaseOrderResponse
		events   eventBuffer
		derived  *derivedChanges
		jobID    uuid.UUID
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		events.reset()
		po, err := repos.PurchaseOrders().FindByID(ctx, id)
		if err != nil {
			return err
		}
		jobID = po.JobID
		j, err := repos.Jobs().FindByIDForUpdate(ctx, po.JobID)
		if err != nil {
			return err
		}
		if po, err = repos.PurchaseOrders().FindByID(ctx, id); err != nil {
			return err
		}
		if err := change(repos, j, po); err != nil {
			return err
		}
		if err := repos.PurchaseOrders().SaveWithLock(ctx, po); err != nil {
			return err
		}
		events.collect(po)
		response = ToPurchaseOrderResponse(po)

		derived, err = s.derived.refreshInTx(ctx, repos, j.ID, RecomputeOptions{
			Trigger:             TriggerPurchaseOrder,
			AllowNegativeMargin: effects.allowNegativeMargin,
		}, effects.vendorSetChange && response.TargetVendorID != nil, &events)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.derived.failed(ctx, jobID, TriggerPurchaseOrder, err)
		return nil, err
	}

	s.derived.committed(ctx, derived)
	publishEvents(ctx, s.eventPublisher, s.logger, events.events)
	return &response, nil
}

func financialLockError(j *job.Job) error {
	return shared.NewDomainError(shared.CodeFinancialLock,
		fmt.Sprintf("Job %s is invoiced; purchase order costs can no longer change", j.JobNumber))
}
