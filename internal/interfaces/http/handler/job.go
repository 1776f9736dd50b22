package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/printbroker/backend/internal/application/brokerage"
)

// JobHandler handles job endpoints
type JobHandler struct {
	BaseHandler
	jobs *brokerage.JobService
}

// NewJobHandler creates a new JobHandler
func NewJobHandler(jobs *brokerage.JobService) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// CreateJobsRequest is the body of a batch create
type CreateJobsRequest struct {
	Jobs []brokerage.CreateJobRequest `json:"jobs" binding:"required,min=1,max=100,dive"`
}

// Create creates a job
func (h *JobHandler) Create(c *gin.Context) {
	var req brokerage.CreateJobRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.jobs.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// CreateBatch creates several jobs atomically
func (h *JobHandler) CreateBatch(c *gin.Context) {
	var req CreateJobsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.jobs.CreateBatch(c.Request.Context(), req.Jobs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get returns a job
func (h *JobHandler) Get(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.jobs.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List returns a page of jobs
func (h *JobHandler) List(c *gin.Context) {
	var filter brokerage.JobListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}
	page, err := h.jobs.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// UpdateFinancials changes price, quantity, specs or routing
func (h *JobHandler) UpdateFinancials(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req brokerage.UpdateFinancialsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.jobs.UpdateFinancials(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateMailing replaces the mailing details and notes
func (h *JobHandler) UpdateMailing(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req brokerage.UpdateMailingRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.jobs.UpdateMailing(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AssignBaseJobID mints the base job identifier
func (h *JobHandler) AssignBaseJobID(c *gin.Context) {
	handleByID(&h.BaseHandler, c, h.jobs.AssignBaseJobID)
}

// MarkInvoiced locks the job's financials
func (h *JobHandler) MarkInvoiced(c *gin.Context) {
	handleByID(&h.BaseHandler, c, h.jobs.MarkInvoiced)
}

// Delete soft deletes a job
func (h *JobHandler) Delete(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.jobs.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
