package brokerage

import (
	"time"

	"github.com/google/uuid"
	"github.com/printbroker/backend/internal/domain/finance"
	"github.com/printbroker/backend/internal/domain/job"
	"github.com/printbroker/backend/internal/domain/purchasing"
	"github.com/shopspring/decimal"
)

// ==================== Job DTOs ====================

// MailingInput carries the mailing signals of a job
type MailingInput struct {
	MailingVendorID *uuid.UUID     `json:"mailing_vendor_id"`
	MatchType       string         `json:"match_type" binding:"max=50"`
	MailDate        *time.Time     `json:"mail_date"`
	InHomesDate     *time.Time     `json:"in_homes_date"`
	Metadata        map[string]any `json:"metadata"`
}

func (m MailingInput) toDomain() job.MailingDetails {
	return job.MailingDetails{
		MailingVendorID: m.MailingVendorID,
		MatchType:       m.MatchType,
		MailDate:        m.MailDate,
		InHomesDate:     m.InHomesDate,
		Metadata:        m.Metadata,
	}
}

// CreateJobRequest represents a request to create a job
type CreateJobRequest struct {
	Title        string          `json:"title" binding:"required,min=1,max=200"`
	RoutingType  string          `json:"routing_type" binding:"required"`
	SellPrice    decimal.Decimal `json:"sell_price"`
	Quantity     int             `json:"quantity" binding:"min=0"`
	SizeName     string          `json:"size_name" binding:"max=100"`
	PaperSource  string          `json:"paper_source" binding:"max=100"`
	VersionCount int             `json:"version_count" binding:"min=0"`
	Notes        string          `json:"notes"`
	Mailing      MailingInput    `json:"mailing"`
	Components   []string        `json:"components"`
	// AssignBaseJobID mints the base job identifier together with the job
	AssignBaseJobID bool `json:"assign_base_job_id"`
}

// UpdateFinancialsRequest changes financial inputs; omitted fields are untouched
type UpdateFinancialsRequest struct {
	SellPrice   *decimal.Decimal `json:"sell_price"`
	Quantity    *int             `json:"quantity" binding:"omitempty,min=0"`
	SizeName    *string          `json:"size_name"`
	PaperSource *string          `json:"paper_source"`
	RoutingType *string          `json:"routing_type"`
	// AllowNegativeMargin accepts a resulting profit split below zero
	AllowNegativeMargin bool `json:"allow_negative_margin"`
}

// UpdateMailingRequest replaces the mailing signals and notes of a job
type UpdateMailingRequest struct {
	Mailing      MailingInput `json:"mailing"`
	Notes        string       `json:"notes"`
	VersionCount *int         `json:"version_count" binding:"omitempty,min=1"`
}

// JobListFilter represents filter options for listing jobs
type JobListFilter struct {
	Search          string `form:"search"`
	RoutingType     string `form:"routing_type"`
	Pathway         string `form:"pathway"`
	ReadinessStatus string `form:"readiness_status"`
	Page            int    `form:"page" binding:"min=0"`
	PageSize        int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy         string `form:"order_by"`
	OrderDir        string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// QCFlagResponse is the status and notes of one concern
type QCFlagResponse struct {
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

// ComponentResponse represents a job component
type ComponentResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	ArtworkStatus  string    `json:"artwork_status"`
	MaterialStatus string    `json:"material_status"`
}

// JobResponse represents a job in API responses
type JobResponse struct {
	ID                uuid.UUID           `json:"id"`
	JobNumber         string              `json:"job_number"`
	BaseJobID         *string             `json:"base_job_id,omitempty"`
	Title             string              `json:"title"`
	RoutingType       string              `json:"routing_type"`
	Pathway           string              `json:"pathway,omitempty"`
	VendorCount       int                 `json:"vendor_count"`
	SellPrice         decimal.Decimal     `json:"sell_price"`
	Quantity          int                 `json:"quantity"`
	SizeName          string              `json:"size_name,omitempty"`
	PaperSource       string              `json:"paper_source,omitempty"`
	Artwork           QCFlagResponse      `json:"artwork"`
	DataFiles         QCFlagResponse      `json:"data_files"`
	Mailing           QCFlagResponse      `json:"mailing"`
	SuppliedMaterials QCFlagResponse      `json:"supplied_materials"`
	Versions          QCFlagResponse      `json:"versions"`
	VersionCount      int                 `json:"version_count"`
	ReadinessStatus   string              `json:"readiness_status"`
	SentAt            *time.Time          `json:"sent_at,omitempty"`
	MailingVendorID   *uuid.UUID          `json:"mailing_vendor_id,omitempty"`
	MatchType         string              `json:"match_type,omitempty"`
	MailDate          *time.Time          `json:"mail_date,omitempty"`
	InHomesDate       *time.Time          `json:"in_homes_date,omitempty"`
	MailingMetadata   map[string]any      `json:"mailing_metadata,omitempty"`
	Notes             string              `json:"notes,omitempty"`
	Components        []ComponentResponse `json:"components"`
	InvoicedAt        *time.Time          `json:"invoiced_at,omitempty"`
	DeletedAt         *time.Time          `json:"deleted_at,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
	Version           int                 `json:"version"`
}

func toQCFlagResponse(f job.QCFlag) QCFlagResponse {
	return QCFlagResponse{Status: string(f.Status), Notes: f.Notes}
}

// ToJobResponse converts a domain Job to JobResponse
func ToJobResponse(j *job.Job) JobResponse {
	components := make([]ComponentResponse, 0, len(j.Components))
	for _, c := range j.Components {
		components = append(components, ComponentResponse{
			ID:             c.ID,
			Name:           c.Name,
			ArtworkStatus:  string(c.ArtworkStatus),
			MaterialStatus: string(c.MaterialStatus),
		})
	}
	return JobResponse{
		ID:                j.ID,
		JobNumber:         j.JobNumber,
		BaseJobID:         j.BaseJobID,
		Title:             j.Title,
		RoutingType:       string(j.RoutingType),
		Pathway:           string(j.Pathway),
		VendorCount:       j.VendorCount,
		SellPrice:         j.SellPrice,
		Quantity:          j.Quantity,
		SizeName:          j.SizeName,
		PaperSource:       j.PaperSource,
		Artwork:           toQCFlagResponse(j.Artwork),
		DataFiles:         toQCFlagResponse(j.DataFiles),
		Mailing:           toQCFlagResponse(j.Mailing),
		SuppliedMaterials: toQCFlagResponse(j.SuppliedMaterials),
		Versions:          toQCFlagResponse(j.Versions),
		VersionCount:      j.VersionCount,
		ReadinessStatus:   string(j.ReadinessStatus),
		SentAt:            j.SentAt,
		MailingVendorID:   j.MailingVendorID,
		MatchType:         j.MatchType,
		MailDate:          j.MailDate,
		InHomesDate:       j.InHomesDate,
		MailingMetadata:   j.Metadata,
		Notes:             j.Notes,
		Components:        components,
		InvoicedAt:        j.InvoicedAt,
		DeletedAt:         j.DeletedAt,
		CreatedAt:         j.CreatedAt,
		UpdatedAt:         j.UpdatedAt,
		Version:           j.Version,
	}
}

// ToJobResponses converts a slice of domain jobs
func ToJobResponses(jobs []job.Job) []JobResponse {
	responses := make([]JobResponse, len(jobs))
	for i := range jobs {
		responses[i] = ToJobResponse(&jobs[i])
	}
	return responses
}

// ==================== QC DTOs ====================

// SetQCFlagRequest updates one job-level concern
type SetQCFlagRequest struct {
	Concern string `json:"concern" binding:"required"`
	Status  string `json:"status" binding:"required"`
	Notes   string `json:"notes"`
}

// SetComponentQCRequest updates a component; omitted statuses are untouched
type SetComponentQCRequest struct {
	ArtworkStatus  *string `json:"artwork_status"`
	MaterialStatus *string `json:"material_status"`
}

// AddComponentRequest adds a component to a job
type AddComponentRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// ==================== Purchase Order DTOs ====================

// CostsInput carries purchase order cost fields
type CostsInput struct {
	BuyCost     decimal.Decimal `json:"buy_cost"`
	PaperCost   decimal.Decimal `json:"paper_cost"`
	PaperMarkup decimal.Decimal `json:"paper_markup"`
	MfgCost     decimal.Decimal `json:"mfg_cost"`
}

func (c CostsInput) toDomain() purchasing.Costs {
	return purchasing.Costs{
		BuyCost:     c.BuyCost,
		PaperCost:   c.PaperCost,
		PaperMarkup: c.PaperMarkup,
		MfgCost:     c.MfgCost,
	}
}

// CreatePurchaseOrderRequest represents a request to create a purchase order.
// OriginCompanyID defaults to the buyer company.
type CreatePurchaseOrderRequest struct {
	JobID           uuid.UUID  `json:"job_id" binding:"required"`
	OriginCompanyID *uuid.UUID `json:"origin_company_id"`
	TargetCompanyID *uuid.UUID `json:"target_company_id"`
	TargetVendorID  *uuid.UUID `json:"target_vendor_id"`
	CostsInput
	Notes string `json:"notes"`
	// AllowNegativeMargin accepts a resulting profit split below zero
	AllowNegativeMargin bool `json:"allow_negative_margin"`
}

// UpdateCostsRequest replaces the cost fields of a purchase order
type UpdateCostsRequest struct {
	CostsInput
	// AllowNegativeMargin accepts a resulting profit split below zero
	AllowNegativeMargin bool `json:"allow_negative_margin"`
}

// ChangeVendorRequest retargets a vendor-facing purchase order
type ChangeVendorRequest struct {
	VendorID uuid.UUID `json:"vendor_id" binding:"required"`
}

// VoidPurchaseOrderRequest carries the reason of a cancel or reject
type VoidPurchaseOrderRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// PurchaseOrderResponse represents a purchase order in API responses
type PurchaseOrderResponse struct {
	ID              uuid.UUID       `json:"id"`
	JobID           uuid.UUID       `json:"job_id"`
	PONumber        string          `json:"po_number"`
	ExecutionID     *string         `json:"execution_id,omitempty"`
	OriginCompanyID uuid.UUID       `json:"origin_company_id"`
	TargetCompanyID *uuid.UUID      `json:"target_company_id,omitempty"`
	TargetVendorID  *uuid.UUID      `json:"target_vendor_id,omitempty"`
	BuyCost         decimal.Decimal `json:"buy_cost"`
	PaperCost       decimal.Decimal `json:"paper_cost"`
	PaperMarkup     decimal.Decimal `json:"paper_markup"`
	MfgCost         decimal.Decimal `json:"mfg_cost"`
	BuyCPM          decimal.Decimal `json:"buy_cpm"`
	PaperCPM        decimal.Decimal `json:"paper_cpm"`
	Status          string          `json:"status"`
	StatusReason    string          `json:"status_reason,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	IssuedAt        *time.Time      `json:"issued_at,omitempty"`
	CancelledAt     *time.Time      `json:"cancelled_at,omitempty"`
	DeletedAt       *time.Time      `json:"deleted_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Version         int             `json:"version"`
}

// ToPurchaseOrderResponse converts a domain PurchaseOrder to PurchaseOrderResponse
func ToPurchaseOrderResponse(po *purchasing.PurchaseOrder) PurchaseOrderResponse {
	return PurchaseOrderResponse{
		ID:              po.ID,
		JobID:           po.JobID,
		PONumber:        po.PONumber,
		ExecutionID:     po.ExecutionID.Ptr(),
		OriginCompanyID: po.OriginCompanyID,
		TargetCompanyID: po.TargetCompanyID,
		TargetVendorID:  po.TargetVendorID,
		BuyCost:         po.BuyCost,
		PaperCost:       po.PaperCost,
		PaperMarkup:     po.PaperMarkup,
		MfgCost:         po.MfgCost,
		BuyCPM:          po.BuyCPM,
		PaperCPM:        po.PaperCPM,
		Status:          string(po.Status),
		StatusReason:    po.StatusReason,
		Notes:           po.Notes,
		IssuedAt:        po.IssuedAt,
		CancelledAt:     po.CancelledAt,
		DeletedAt:       po.DeletedAt,
		CreatedAt:       po.CreatedAt,
		UpdatedAt:       po.UpdatedAt,
		Version:         po.Version,
	}
}

// ToPurchaseOrderResponses converts a slice of domain purchase orders
func ToPurchaseOrderResponses(orders []purchasing.PurchaseOrder) []PurchaseOrderResponse {
	responses := make([]PurchaseOrderResponse, len(orders))
	for i := range orders {
		responses[i] = ToPurchaseOrderResponse(&orders[i])
	}
	return responses
}

// ==================== Execution ID DTOs ====================

// FinalizeResult is the outcome of finalizing one purchase order
type FinalizeResult struct {
	PurchaseOrderID uuid.UUID `json:"purchase_order_id"`
	PONumber        string    `json:"po_number"`
	ExecutionID     string    `json:"execution_id,omitempty"`
	// Assigned is true only for the call that wrote the identifier
	Assigned bool   `json:"assigned"`
	Error    string `json:"error,omitempty"`
	Code     string `json:"code,omitempty"`
}

// ==================== Pathway DTOs ====================

// ReclassifyResult is the outcome of a pathway reclassification
type ReclassifyResult struct {
	JobID         uuid.UUID               `json:"job_id"`
	RoutingType   string                  `json:"routing_type"`
	Previous      string                  `json:"previous_pathway,omitempty"`
	Pathway       string                  `json:"pathway,omitempty"`
	VendorCount   int                     `json:"vendor_count"`
	Changed       bool                    `json:"changed"`
	Inconsistency *job.ConsistencyWarning `json:"inconsistency,omitempty"`
}

// ==================== Profit Split DTOs ====================

// RecomputeOptions tunes a profit split recompute
type RecomputeOptions struct {
	// AllowNegativeMargin persists a split whose gross margin is below zero
	AllowNegativeMargin bool `json:"allow_negative_margin"`
	// Trigger names what caused the recompute, for logs and metrics
	Trigger string `json:"-"`
}

// OverrideProfitSplitRequest pins the shares of a split manually
type OverrideProfitSplitRequest struct {
	IntermediaryShare decimal.Decimal `json:"intermediary_share"`
	BuyerShare        decimal.Decimal `json:"buyer_share"`
	Reason            string          `json:"reason" binding:"required,min=1,max=500"`
}

// ProfitSplitResponse represents a profit split in API responses
type ProfitSplitResponse struct {
	ID                uuid.UUID       `json:"id"`
	JobID             uuid.UUID       `json:"job_id"`
	SellPrice         decimal.Decimal `json:"sell_price"`
	TotalCost         decimal.Decimal `json:"total_cost"`
	PaperCost         decimal.Decimal `json:"paper_cost"`
	PaperMarkup       decimal.Decimal `json:"paper_markup"`
	GrossMargin       decimal.Decimal `json:"gross_margin"`
	MarginPercent     decimal.Decimal `json:"margin_percent"`
	IntermediaryShare decimal.Decimal `json:"intermediary_share"`
	BuyerShare        decimal.Decimal `json:"buyer_share"`
	RoutingType       string          `json:"routing_type"`
	CalculatedAt      time.Time       `json:"calculated_at"`
	IsOverridden      bool            `json:"is_overridden"`
	OverrideReason    string          `json:"override_reason,omitempty"`
	OverriddenAt      *time.Time      `json:"overridden_at,omitempty"`
}

// RecomputeResult is the outcome of a recompute
type RecomputeResult struct {
	Split ProfitSplitResponse `json:"split"`
	// Skipped is true when a manual override kept the stored split
	Skipped bool `json:"skipped"`
}

// ToProfitSplitResponse converts a domain ProfitSplit to ProfitSplitResponse
func ToProfitSplitResponse(ps *finance.ProfitSplit) ProfitSplitResponse {
	return ProfitSplitResponse{
		ID:                ps.ID,
		JobID:             ps.JobID,
		SellPrice:         ps.SellPrice,
		TotalCost:         ps.TotalCost,
		PaperCost:         ps.PaperCost,
		PaperMarkup:       ps.PaperMarkup,
		GrossMargin:       ps.GrossMargin,
		MarginPercent:     ps.MarginPercent,
		IntermediaryShare: ps.IntermediaryShare,
		BuyerShare:        ps.BuyerShare,
		RoutingType:       string(ps.RoutingType),
		CalculatedAt:      ps.CalculatedAt,
		IsOverridden:      ps.IsOverridden,
		OverrideReason:    ps.OverrideReason,
		OverriddenAt:      ps.OverriddenAt,
	}
}

// ==================== Vendor / Company DTOs ====================

// CreateVendorRequest represents a request to create a vendor
type CreateVendorRequest struct {
	Name               string `json:"name" binding:"required,min=1,max=200"`
	Email              string `json:"email" binding:"omitempty,email"`
	IsMailingFulfiller bool   `json:"is_mailing_fulfiller"`
	VendorCode         string `json:"vendor_code" binding:"omitempty,min=2,max=10"`
}

// AssignVendorCodeRequest sets a vendor code
type AssignVendorCodeRequest struct {
	VendorCode string `json:"vendor_code" binding:"required,min=2,max=10"`
}

// VendorResponse represents a vendor in API responses
type VendorResponse struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	VendorCode         *string   `json:"vendor_code,omitempty"`
	Email              string    `json:"email,omitempty"`
	IsMailingFulfiller bool      `json:"is_mailing_fulfiller"`
	IsActive           bool      `json:"is_active"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// ToVendorResponse converts a domain Vendor to VendorResponse
func ToVendorResponse(v *purchasing.Vendor) VendorResponse {
	return VendorResponse{
		ID:                 v.ID,
		Name:               v.Name,
		VendorCode:         v.VendorCode,
		Email:              v.Email,
		IsMailingFulfiller: v.IsMailingFulfiller,
		IsActive:           v.IsActive,
		CreatedAt:          v.CreatedAt,
		UpdatedAt:          v.UpdatedAt,
	}
}

// CreateCompanyRequest represents a request to create a company
type CreateCompanyRequest struct {
	Name string `json:"name" binding:"required,min=1,max=200"`
	Role string `json:"role" binding:"omitempty,oneof=BUYER INTERMEDIARY OTHER"`
}

// CompanyResponse represents a company in API responses
type CompanyResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// ToCompanyResponse converts a domain Company to CompanyResponse
func ToCompanyResponse(c *purchasing.Company) CompanyResponse {
	return CompanyResponse{
		ID:        c.ID,
		Name:      c.Name,
		Role:      string(c.Role),
		CreatedAt: c.CreatedAt,
	}
}
