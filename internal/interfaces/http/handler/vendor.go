package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/printbroker/backend/internal/application/brokerage"
)

// VendorHandler handles vendors and companies
type VendorHandler struct {
	BaseHandler
	vendors *brokerage.VendorService
}

// NewVendorHandler creates a new VendorHandler
func NewVendorHandler(vendors *brokerage.VendorService) *VendorHandler {
	return &VendorHandler{vendors: vendors}
}

// CreateVendor creates a vendor
func (h *VendorHandler) CreateVendor(c *gin.Context) {
	var req brokerage.CreateVendorRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.vendors.CreateVendor(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetVendor returns a vendor
func (h *VendorHandler) GetVendor(c *gin.Context) {
	handleByID(&h.BaseHandler, c, h.vendors.GetVendor)
}

// AssignVendorCode sets the vendor code once
func (h *VendorHandler) AssignVendorCode(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req brokerage.AssignVendorCodeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.vendors.AssignVendorCode(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// CreateCompany creates a company
func (h *VendorHandler) CreateCompany(c *gin.Context) {
	var req brokerage.CreateCompanyRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.vendors.CreateCompany(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetCompany returns a company
func (h *VendorHandler) GetCompany(c *gin.Context) {
	handleByID(&h.BaseHandler, c, h.vendors.GetCompany)
}
