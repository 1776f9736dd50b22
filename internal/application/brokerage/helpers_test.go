package brokerage_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/printbroker/backend/internal/application/brokerage"
	"github.com/printbroker/backend/internal/domain/purchasing"
	"github.com/printbroker/backend/internal/infrastructure/event"
	"github.com/printbroker/backend/internal/infrastructure/persistence"
	"github.com/printbroker/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// harness wires every brokerage service over one in-memory SQLite database
type harness struct {
	ctx      context.Context
	db       *gorm.DB
	settings brokerage.Settings
	events   *testutil.RecordingEventHandler
	outbox   *event.OutboxProcessor

	splits    *brokerage.ProfitSplitService
	pathways  *brokerage.PathwayService
	execution *brokerage.ExecutionIdentityService
	readiness *brokerage.ReadinessService
	jobs      *brokerage.JobService
	orders    *brokerage.PurchaseOrderService
	vendors   *brokerage.VendorService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db := testutil.NewSQLiteDB(t)
	scope := persistence.NewGormTransactionScope(db)
	logger := zap.NewNop()

	settings := brokerage.DefaultSettings()
	settings.BuyerCompanyID = testutil.BuyerCompanyID()

	bus := event.NewInMemoryEventBus(logger)
	recorder := testutil.NewRecordingEventHandler()
	bus.Subscribe(recorder)
	outbox := event.NewOutboxProcessor(event.NewGormOutboxRepository(db), bus,
		event.NewBrokerageEventSerializer(), event.DefaultOutboxProcessorConfig(), logger)

	h := &harness{
		ctx:       context.Background(),
		db:        db,
		settings:  settings,
		events:    recorder,
		outbox:    outbox,
		splits:    brokerage.NewProfitSplitService(scope, settings, logger),
		pathways:  brokerage.NewPathwayService(scope, settings, logger),
		execution: brokerage.NewExecutionIdentityService(scope, logger),
		readiness: brokerage.NewReadinessService(scope, settings, logger),
		vendors:   brokerage.NewVendorService(scope, logger),
	}
	h.jobs = brokerage.NewJobService(scope, h.splits, h.pathways, logger)
	h.orders = brokerage.NewPurchaseOrderService(scope, settings, h.splits, h.pathways, logger)

	h.pathways.SetEventPublisher(bus)
	h.readiness.SetEventPublisher(bus)
	h.jobs.SetEventPublisher(bus)
	h.orders.SetEventPublisher(bus)

	buyer, err := purchasing.NewCompany("Buyer Print Co", purchasing.CompanyRoleBuyer)
	require.NoError(t, err)
	buyer.ID = settings.BuyerCompanyID
	require.NoError(t, persistence.NewGormCompanyRepository(db).Save(h.ctx, buyer))

	return h
}

func (h *harness) createJob(t *testing.T, routing string, sellPrice int64) brokerage.JobResponse {
	t.Helper()
	resp, err := h.jobs.Create(h.ctx, brokerage.CreateJobRequest{
		Title:           "Spring catalog",
		RoutingType:     routing,
		SellPrice:       decimal.NewFromInt(sellPrice),
		Quantity:        10000,
		SizeName:        "8.5x11",
		AssignBaseJobID: true,
	})
	require.NoError(t, err)
	return *resp
}

func (h *harness) createVendor(t *testing.T, name, code string) uuid.UUID {
	t.Helper()
	resp, err := h.vendors.CreateVendor(h.ctx, brokerage.CreateVendorRequest{
		Name:       name,
		Email:      "orders@" + name + ".example",
		VendorCode: code,
	})
	require.NoError(t, err)
	return resp.ID
}

func (h *harness) createCompany(t *testing.T, name string, role purchasing.CompanyRole) uuid.UUID {
	t.Helper()
	resp, err := h.vendors.CreateCompany(h.ctx, brokerage.CreateCompanyRequest{Name: name, Role: string(role)})
	require.NoError(t, err)
	return resp.ID
}

// vendorPO creates a buyer-originated purchase order to vendorID
func (h *harness) vendorPO(t *testing.T, jobID, vendorID uuid.UUID, buyCost int64) brokerage.PurchaseOrderResponse {
	t.Helper()
	return h.po(t, brokerage.CreatePurchaseOrderRequest{
		JobID:          jobID,
		TargetVendorID: &vendorID,
		CostsInput:     brokerage.CostsInput{BuyCost: decimal.NewFromInt(buyCost)},
	})
}

func (h *harness) po(t *testing.T, req brokerage.CreatePurchaseOrderRequest) brokerage.PurchaseOrderResponse {
	t.Helper()
	resp, err := h.orders.Create(h.ctx, req)
	require.NoError(t, err)
	return *resp
}

func (h *harness) getJob(t *testing.T, id uuid.UUID) brokerage.JobResponse {
	t.Helper()
	resp, err := h.jobs.Get(h.ctx, id)
	require.NoError(t, err)
	return *resp
}

// deliverOutbox runs one outbox batch and returns how many events reached the bus
func (h *harness) deliverOutbox(t *testing.T) int {
	t.Helper()
	return h.outbox.ProcessBatch(h.ctx)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
