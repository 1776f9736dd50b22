package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/printbroker/backend/internal/application/brokerage"
	"github.com/printbroker/backend/internal/domain/purchasing"
	"github.com/printbroker/backend/internal/infrastructure/persistence"
	"github.com/printbroker/backend/internal/interfaces/http/handler"
	"github.com/printbroker/backend/internal/interfaces/http/middleware"
	"github.com/printbroker/backend/internal/interfaces/http/router"
	"github.com/printbroker/backend/tests/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

type api struct {
	t      *testing.T
	db     *gorm.DB
	engine *gin.Engine
}

// newAPI serves the full brokerage API over an in-memory SQLite database
func newAPI(t *testing.T) *api {
	t.Helper()

	db := testutil.NewSQLiteDB(t)
	scope := persistence.NewGormTransactionScope(db)
	log := zap.NewNop()

	settings := brokerage.DefaultSettings()
	settings.BuyerCompanyID = testutil.BuyerCompanyID()

	buyer, err := purchasing.NewCompany("Buyer Print Co", purchasing.CompanyRoleBuyer)
	require.NoError(t, err)
	buyer.ID = settings.BuyerCompanyID
	require.NoError(t, persistence.NewGormCompanyRepository(db).Save(context.Background(), buyer))

	splits := brokerage.NewProfitSplitService(scope, settings, log)
	pathways := brokerage.NewPathwayService(scope, settings, log)
	jobs := brokerage.NewJobService(scope, splits, pathways, log)
	orders := brokerage.NewPurchaseOrderService(scope, settings, splits, pathways, log)

	engine := router.NewEngine(router.EngineOptions{Logger: log, MaxBodySize: 1 << 20})
	engine.GET("/health", handler.NewSystemHandler(nil, "test").Health)
	router.NewRouter(engine).Register(router.BrokerageRoutes(router.Handlers{
		Jobs:           handler.NewJobHandler(jobs),
		Readiness:      handler.NewReadinessHandler(brokerage.NewReadinessService(scope, settings, log)),
		ProfitSplits:   handler.NewProfitSplitHandler(splits, pathways),
		PurchaseOrders: handler.NewPurchaseOrderHandler(orders, brokerage.NewExecutionIdentityService(scope, log)),
		Vendors:        handler.NewVendorHandler(brokerage.NewVendorService(scope, log)),
	})...).Setup()

	return &api{t: t, db: db, engine: engine}
}

func (a *api) do(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	return testutil.PerformRequest(a.t, a.engine, method, path, body)
}

func (a *api) createJob(routing string, sellPrice string) brokerage.JobResponse {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/v1/jobs", map[string]any{
		"title":              "Spring catalog",
		"routing_type":       routing,
		"sell_price":         sellPrice,
		"quantity":           10000,
		"assign_base_job_id": true,
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return testutil.DecodeData[brokerage.JobResponse](a.t, w)
}

func (a *api) createVendor(name, code string) brokerage.VendorResponse {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/v1/vendors", map[string]any{
		"name":        name,
		"email":       "orders@" + name + ".example",
		"vendor_code": code,
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return testutil.DecodeData[brokerage.VendorResponse](a.t, w)
}

func (a *api) createPO(jobID, vendorID string, buyCost string) brokerage.PurchaseOrderResponse {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/v1/purchase-orders", map[string]any{
		"job_id":           jobID,
		"target_vendor_id": vendorID,
		"buy_cost":         buyCost,
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return testutil.DecodeData[brokerage.PurchaseOrderResponse](a.t, w)
}
