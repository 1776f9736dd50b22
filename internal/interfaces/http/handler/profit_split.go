package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/printbroker/backend/internal/application/brokerage"
)

// ProfitSplitHandler handles the profit split and pathway of a job
type ProfitSplitHandler struct {
	BaseHandler
	splits   *brokerage.ProfitSplitService
	pathways *brokerage.PathwayService
}

// NewProfitSplitHandler creates a new ProfitSplitHandler
func NewProfitSplitHandler(splits *brokerage.ProfitSplitService, pathways *brokerage.PathwayService) *ProfitSplitHandler {
	return &ProfitSplitHandler{splits: splits, pathways: pathways}
}

// Get returns the stored split
func (h *ProfitSplitHandler) Get(c *gin.Context) {
	handleByID(&h.BaseHandler, c, h.splits.Get)
}

// Recompute recalculates the split. The body is optional.
func (h *ProfitSplitHandler) Recompute(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var opts brokerage.RecomputeOptions
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &opts) {
		return
	}
	opts.Trigger = brokerage.TriggerManual

	result, err := h.splits.Recompute(c.Request.Context(), id, opts)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Override pins the shares manually
func (h *ProfitSplitHandler) Override(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req brokerage.OverrideProfitSplitRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.splits.Override(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ClearOverride removes the override and recomputes
func (h *ProfitSplitHandler) ClearOverride(c *gin.Context) {
	handleByID(&h.BaseHandler, c, h.splits.ClearOverride)
}

// Reclassify recounts the job's vendors and updates its pathway
func (h *ProfitSplitHandler) Reclassify(c *gin.Context) {
	handleByID(&h.BaseHandler, c, h.pathways.Reclassify)
}
