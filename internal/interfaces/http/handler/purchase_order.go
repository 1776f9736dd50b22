package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/printbroker/backend/internal/application/brokerage"
)

// PurchaseOrderHandler handles purchase orders and their execution identifiers
type PurchaseOrderHandler struct {
	BaseHandler
	orders    *brokerage.PurchaseOrderService
	execution *brokerage.ExecutionIdentityService
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(orders *brokerage.PurchaseOrderService, execution *brokerage.ExecutionIdentityService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{orders: orders, execution: execution}
}

// Create creates a purchase order
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	var req brokerage.CreatePurchaseOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.orders.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get returns a purchase order
func (h *PurchaseOrderHandler) Get(c *gin.Context) {
	handleByID(&h.BaseHandler, c, h.orders.Get)
}

// ListByJob returns the purchase orders of a job
func (h *PurchaseOrderHandler) ListByJob(c *gin.Context) {
	handleByID(&h.BaseHandler, c, h.orders.ListByJob)
}

// UpdateCosts replaces the cost fields
func (h *PurchaseOrderHandler) UpdateCosts(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req brokerage.UpdateCostsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.orders.UpdateCosts(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ChangeVendor retargets the order before its execution id is assigned
func (h *PurchaseOrderHandler) ChangeVendor(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req brokerage.ChangeVendorRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.orders.ChangeVendor(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Issue sends the order to its target
func (h *PurchaseOrderHandler) Issue(c *gin.Context) {
	handleByID(&h.BaseHandler, c, h.orders.Issue)
}

// Accept records the target's acceptance
func (h *PurchaseOrderHandler) Accept(c *gin.Context) {
	handleByID(&h.BaseHandler, c, h.orders.Accept)
}

// MarkPaid records payment
func (h *PurchaseOrderHandler) MarkPaid(c *gin.Context) {
	handleByID(&h.BaseHandler, c, h.orders.MarkPaid)
}

// Cancel voids the order from the buyer side
func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
	h.void(c, h.orders.Cancel)
}

// Reject voids the order from the target side
func (h *PurchaseOrderHandler) Reject(c *gin.Context) {
	h.void(c, h.orders.Reject)
}

func (h *PurchaseOrderHandler) void(c *gin.Context, op func(ctx context.Context, id uuid.UUID, req brokerage.VoidPurchaseOrderRequest) (*brokerage.PurchaseOrderResponse, error)) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req brokerage.VoidPurchaseOrderRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}
	resp, err := op(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete soft deletes the order
func (h *PurchaseOrderHandler) Delete(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.orders.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Finalize assigns the execution identifier of one order
func (h *PurchaseOrderHandler) Finalize(c *gin.Context) {
	handleByID(&h.BaseHandler, c, h.execution.Finalize)
}

// FinalizeAll assigns the execution identifiers of every pending order of a job
func (h *PurchaseOrderHandler) FinalizeAll(c *gin.Context) {
	handleByID(&h.BaseHandler, c, h.execution.FinalizeAll)
}
