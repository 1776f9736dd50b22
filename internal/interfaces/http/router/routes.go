package router

import (
	"github.com/printbroker/backend/internal/interfaces/http/handler"
)

// Handlers are the HTTP handlers exposed under /api/v1
type Handlers struct {
	Jobs           *handler.JobHandler
	Readiness      *handler.ReadinessHandler
	ProfitSplits   *handler.ProfitSplitHandler
	PurchaseOrders *handler.PurchaseOrderHandler
	Vendors        *handler.VendorHandler
}

// BrokerageRoutes builds the route groups of the brokerage API
func BrokerageRoutes(h Handlers) []RouteRegistrar {
	jobs := NewDomainGroup("jobs", "/jobs")
	jobs.POST("", h.Jobs.Create).
		POST("/batch", h.Jobs.CreateBatch).
		GET("", h.Jobs.List).
		GET("/:id", h.Jobs.Get).
		PUT("/:id/financials", h.Jobs.UpdateFinancials).
		PUT("/:id/mailing", h.Jobs.UpdateMailing).
		POST("/:id/base-job-id", h.Jobs.AssignBaseJobID).
		POST("/:id/invoice", h.Jobs.MarkInvoiced).
		DELETE("/:id", h.Jobs.Delete)

	jobs.GET("/:id/readiness", h.Readiness.Evaluate).
		PUT("/:id/qc", h.Readiness.SetQCFlag).
		POST("/:id/components", h.Readiness.AddComponent).
		PUT("/:id/components/:componentId/qc", h.Readiness.SetComponentQC).
		POST("/:id/send", h.Readiness.MarkSent)

	jobs.GET("/:id/profit-split", h.ProfitSplits.Get).
		POST("/:id/profit-split/recompute", h.ProfitSplits.Recompute).
		PUT("/:id/profit-split/override", h.ProfitSplits.Override).
		DELETE("/:id/profit-split/override", h.ProfitSplits.ClearOverride).
		POST("/:id/pathway/reclassify", h.ProfitSplits.Reclassify)

	jobs.GET("/:id/purchase-orders", h.PurchaseOrders.ListByJob).
		POST("/:id/purchase-orders/finalize", h.PurchaseOrders.FinalizeAll)

	orders := NewDomainGroup("purchase_orders", "/purchase-orders")
	orders.POST("", h.PurchaseOrders.Create).
		GET("/:id", h.PurchaseOrders.Get).
		PUT("/:id/costs", h.PurchaseOrders.UpdateCosts).
		PUT("/:id/vendor", h.PurchaseOrders.ChangeVendor).
		POST("/:id/issue", h.PurchaseOrders.Issue).
		POST("/:id/accept", h.PurchaseOrders.Accept).
		POST("/:id/pay", h.PurchaseOrders.MarkPaid).
		POST("/:id/cancel", h.PurchaseOrders.Cancel).
		POST("/:id/reject", h.PurchaseOrders.Reject).
		POST("/:id/finalize", h.PurchaseOrders.Finalize).
		DELETE("/:id", h.PurchaseOrders.Delete)

	vendors := NewDomainGroup("vendors", "/vendors")
	vendors.POST("", h.Vendors.CreateVendor).
		GET("/:id", h.Vendors.GetVendor).
		PUT("/:id/code", h.Vendors.AssignVendorCode)

	companies := NewDomainGroup("companies", "/companies")
	companies.POST("", h.Vendors.CreateCompany).
		GET("/:id", h.Vendors.GetCompany)

	return []RouteRegistrar{jobs, orders, vendors, companies}
}
