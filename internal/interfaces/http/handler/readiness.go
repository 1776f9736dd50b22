package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/printbroker/backend/internal/application/brokerage"
)

// ReadinessHandler handles QC flags, components and the send-to-production gate
type ReadinessHandler struct {
	BaseHandler
	readiness *brokerage.ReadinessService
}

// NewReadinessHandler creates a new ReadinessHandler
func NewReadinessHandler(readiness *brokerage.ReadinessService) *ReadinessHandler {
	return &ReadinessHandler{readiness: readiness}
}

// Evaluate re-evaluates and returns the job's readiness
func (h *ReadinessHandler) Evaluate(c *gin.Context) {
	handleByID(&h.BaseHandler, c, h.readiness.Evaluate)
}

// MarkSent moves a READY job to SENT
func (h *ReadinessHandler) MarkSent(c *gin.Context) {
	handleByID(&h.BaseHandler, c, h.readiness.MarkSent)
}

// SetQCFlag sets one job-level QC concern
func (h *ReadinessHandler) SetQCFlag(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req brokerage.SetQCFlagRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.readiness.SetQCFlag(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// AddComponent adds a physical component to the job
func (h *ReadinessHandler) AddComponent(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req brokerage.AddComponentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.readiness.AddComponent(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// SetComponentQC sets the artwork and/or material status of a component
func (h *ReadinessHandler) SetComponentQC(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	componentID, ok := h.pathUUID(c, "componentId")
	if !ok {
		return
	}
	var req brokerage.SetComponentQCRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.readiness.SetComponentQC(c.Request.Context(), id, componentID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
