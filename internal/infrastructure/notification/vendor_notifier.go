package notification

import (
	"context"
	"fmt"

	"github.com/printbroker/backend/internal/domain/job"
	"github.com/printbroker/backend/internal/domain/purchasing"
	"github.com/printbroker/backend/internal/domain/shared"
	"github.com/printbroker/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// VendorNotifier emails the vendor of a purchase order once its execution ID is set
type VendorNotifier struct {
	vendors purchasing.VendorRepository
	jobs    job.Repository
	sender  Sender
	metrics *telemetry.BrokerageMetrics
	logger  *zap.Logger
}

// NewVendorNotifier creates the notifier
func NewVendorNotifier(vendors purchasing.VendorRepository, jobs job.Repository, sender Sender, logger *zap.Logger) *VendorNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VendorNotifier{
		vendors: vendors,
		jobs:    jobs,
		sender:  sender,
		logger:  logger.Named("vendor_notifier"),
	}
}

// SetBusinessMetrics sets the business metrics collector
func (n *VendorNotifier) SetBusinessMetrics(m *telemetry.BrokerageMetrics) {
	n.metrics = m
}

// EventTypes implements shared.EventHandler
func (n *VendorNotifier) EventTypes() []string {
	return []string{purchasing.EventTypeExecutionIDAssigned}
}

// Handle implements shared.EventHandler. A vendor without an email address
// is skipped, not retried.
func (n *VendorNotifier) Handle(ctx context.Context, event shared.DomainEvent) error {
	assigned, ok := event.(*purchasing.ExecutionIDAssignedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T for %s", event, purchasing.EventTypeExecutionIDAssigned)
	}

	vendor, err := n.vendors.FindByID(ctx, assigned.VendorID)
	if err != nil {
		return fmt.Errorf("load vendor %s: %w", assigned.VendorID, err)
	}
	if vendor.Email == "" {
		n.logger.Warn("vendor has no email address, skipping notification",
			zap.String("vendor_id", vendor.ID.String()),
			zap.String("execution_id", assigned.ExecutionID),
		)
		return nil
	}

	data := executionAssignedData{
		VendorName:  vendor.Name,
		PONumber:    assigned.PONumber,
		ExecutionID: assigned.ExecutionID,
	}
	if j, err := n.jobs.FindByID(ctx, assigned.JobID); err == nil {
		data.JobNumber = j.JobNumber
		data.JobTitle = j.Title
	} else {
		n.logger.Warn("job lookup failed, sending without job details",
			zap.String("job_id", assigned.JobID.String()),
			zap.Error(err),
		)
		data.JobNumber = assigned.JobID.String()
	}

	msg, err := renderExecutionAssigned(vendor.Email, data)
	if err != nil {
		return err
	}
	if err := n.sender.Send(ctx, msg); err != nil {
		n.metrics.RecordNotification(ctx, telemetry.OutcomeFailed)
		return err
	}
	n.metrics.RecordNotification(ctx, telemetry.OutcomeSent)

	n.logger.Info("vendor notified",
		zap.String("vendor_id", vendor.ID.String()),
		zap.String("po_number", assigned.PONumber),
		zap.String("execution_id", assigned.ExecutionID),
	)
	return nil
}

var _ shared.EventHandler = (*VendorNotifier)(nil)
