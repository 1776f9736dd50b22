package job

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/printbroker/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ReadinessStatus is the readiness state of a job
type ReadinessStatus string

const (
	ReadinessIncomplete ReadinessStatus = "INCOMPLETE"
	ReadinessReady      ReadinessStatus = "READY"
	ReadinessSent       ReadinessStatus = "SENT" // terminal
)

// IsValid checks if the readiness status is known
func (s ReadinessStatus) IsValid() bool {
	switch s {
	case ReadinessIncomplete, ReadinessReady, ReadinessSent:
		return true
	}
	return false
}

// NewJobParams carries the inputs of NewJob
type NewJobParams struct {
	JobNumber    string
	Title        string
	RoutingType  RoutingType
	SellPrice    decimal.Decimal
	Quantity     int
	SizeName     string
	PaperSource  string
	VersionCount int
	Notes        string
	Mailing      MailingDetails
	Components   []string
}

// MailingDetails holds the signals used to decide whether a job is a mailing job
type MailingDetails struct {
	MailingVendorID *uuid.UUID
	MatchType       string
	MailDate        *time.Time
	InHomesDate     *time.Time
	Metadata        map[string]any
}

// FinancialsUpdate changes financial inputs; nil fields are left untouched
type FinancialsUpdate struct {
	SellPrice   *decimal.Decimal
	Quantity    *int
	SizeName    *string
	PaperSource *string
	RoutingType *RoutingType
}

// Job is the print job aggregate root.
// Pathway and VendorCount are written only through ApplyClassification.
type Job struct {
	shared.BaseAggregateRoot
	JobNumber   string
	BaseJobID   *string
	Title       string
	RoutingType RoutingType
	Pathway     Pathway
	VendorCount int

	SellPrice   decimal.Decimal
	Quantity    int
	SizeName    string
	PaperSource string

	Artwork           QCFlag
	DataFiles         QCFlag
	Mailing           QCFlag
	SuppliedMaterials QCFlag
	Versions          QCFlag
	VersionCount      int
	ReadinessStatus   ReadinessStatus
	SentAt            *time.Time

	MailingDetails
	Notes      string
	Components []Component

	InvoicedAt *time.Time
	DeletedAt  *time.Time
}

// NewJob creates a job in INCOMPLETE readiness, not yet classified
func NewJob(p NewJobParams) (*Job, error) {
	if p.JobNumber == "" {
		return nil, shared.NewDomainError("INVALID_JOB_NUMBER", "Job number cannot be empty")
	}
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Job title cannot be empty")
	}
	if len(title) > 200 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Job title cannot exceed 200 characters")
	}
	if !p.RoutingType.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidRoutingType, fmt.Sprintf("Unknown routing type %q", p.RoutingType))
	}
	if err := validateFinancials(p.SellPrice, p.Quantity); err != nil {
		return nil, err
	}
	if p.VersionCount < 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Version count cannot be negative")
	}
	versionCount := p.VersionCount
	if versionCount == 0 {
		versionCount = 1
	}

	j := &Job{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		JobNumber:         p.JobNumber,
		Title:             title,
		RoutingType:       p.RoutingType,
		Pathway:           PathwayUnclassified,
		SellPrice:         p.SellPrice,
		Quantity:          p.Quantity,
		SizeName:          p.SizeName,
		PaperSource:       p.PaperSource,
		Artwork:           QCFlag{Status: QCPending},
		DataFiles:         QCFlag{Status: QCPending},
		Mailing:           QCFlag{Status: QCPending},
		SuppliedMaterials: QCFlag{Status: QCNotRequired},
		Versions:          QCFlag{Status: QCPending},
		VersionCount:      versionCount,
		ReadinessStatus:   ReadinessIncomplete,
		MailingDetails:    p.Mailing,
		Notes:             p.Notes,
	}
	for _, name := range p.Components {
		if _, err := j.AddComponent(name); err != nil {
			return nil, err
		}
	}
	j.AddDomainEvent(NewJobCreatedEvent(j))
	return j, nil
}

func validateFinancials(sellPrice decimal.Decimal, quantity int) error {
	if sellPrice.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Sell price cannot be negative")
	}
	if quantity < 0 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Quantity cannot be negative")
	}
	return nil
}

// IsDeleted reports whether the job was soft deleted
func (j *Job) IsDeleted() bool {
	return j.DeletedAt != nil
}

// IsFinanciallyLocked is true once an invoice has been generated
func (j *Job) IsFinanciallyLocked() bool {
	return j.InvoicedAt != nil
}

// HasBaseJobID reports whether the base job identifier has been minted
func (j *Job) HasBaseJobID() bool {
	return j.BaseJobID != nil && *j.BaseJobID != ""
}

// BaseJobIDValue returns the base job identifier or an empty string
func (j *Job) BaseJobIDValue() string {
	if j.BaseJobID == nil {
		return ""
	}
	return *j.BaseJobID
}

func (j *Job) ensureMutable() error {
	if j.IsDeleted() {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Job %s is deleted", j.JobNumber))
	}
	return nil
}

// AssignBaseJobID attaches the base identifier once
func (j *Job) AssignBaseJobID(id string) error {
	if err := j.ensureMutable(); err != nil {
		return err
	}
	if j.HasBaseJobID() {
		return shared.NewDomainError(shared.CodeBaseJobIDAlreadyAssigned,
			fmt.Sprintf("Job %s already has base job ID %s", j.JobNumber, *j.BaseJobID))
	}
	if strings.TrimSpace(id) == "" {
		return shared.NewDomainError(shared.CodeMissingBaseJobID, "Base job ID cannot be empty")
	}
	j.BaseJobID = &id
	j.Touch()
	return nil
}

// UpdateFinancials changes price, quantity, specs or routing.
// All of them are locked once the job is invoiced.
func (j *Job) UpdateFinancials(u FinancialsUpdate) error {
	if err := j.ensureMutable(); err != nil {
		return err
	}
	if j.IsFinanciallyLocked() {
		return shared.NewDomainError(shared.CodeFinancialLock,
			fmt.Sprintf("Job %s was invoiced at %s; issue a credit adjustment or a new job instead",
				j.JobNumber, j.InvoicedAt.Format(time.RFC3339)))
	}

	sellPrice := j.SellPrice
	if u.SellPrice != nil {
		sellPrice = *u.SellPrice
	}
	quantity := j.Quantity
	if u.Quantity != nil {
		quantity = *u.Quantity
	}
	if err := validateFinancials(sellPrice, quantity); err != nil {
		return err
	}
	if u.RoutingType != nil && !u.RoutingType.IsValid() {
		return shared.NewDomainError(shared.CodeInvalidRoutingType, fmt.Sprintf("Unknown routing type %q", *u.RoutingType))
	}

	j.SellPrice = sellPrice
	j.Quantity = quantity
	if u.SizeName != nil {
		j.SizeName = *u.SizeName
	}
	if u.PaperSource != nil {
		j.PaperSource = *u.PaperSource
	}
	if u.RoutingType != nil {
		j.RoutingType = *u.RoutingType
	}
	j.Touch()
	return nil
}

// UpdateMailing replaces the mailing signals and notes
func (j *Job) UpdateMailing(details MailingDetails, notes string) error {
	if err := j.ensureMutable(); err != nil {
		return err
	}
	j.MailingDetails = details
	j.Notes = notes
	j.Touch()
	return nil
}

// SetVersionCount records how many versions the job prints
func (j *Job) SetVersionCount(n int) error {
	if n < 1 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Version count must be at least 1")
	}
	j.VersionCount = n
	j.Touch()
	return nil
}

// MarkInvoiced locks the financial fields
func (j *Job) MarkInvoiced() error {
	if err := j.ensureMutable(); err != nil {
		return err
	}
	if j.IsFinanciallyLocked() {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Job %s is already invoiced", j.JobNumber))
	}
	now := time.Now()
	j.InvoicedAt = &now
	j.UpdatedAt = now
	j.AddDomainEvent(NewJobInvoicedEvent(j))
	return nil
}

// Delete soft deletes the job
func (j *Job) Delete() error {
	if err := j.ensureMutable(); err != nil {
		return err
	}
	now := time.Now()
	j.DeletedAt = &now
	j.UpdatedAt = now
	return nil
}

// ApplyClassification stores a classifier outcome. Inconsistent outcomes
// carry the current pathway, so nothing is repaired here either.
func (j *Job) ApplyClassification(c Classification) {
	previous := j.Pathway
	j.Pathway = c.Pathway
	j.VendorCount = c.VendorCount
	j.Touch()
	if previous != c.Pathway {
		j.AddDomainEvent(NewPathwayChangedEvent(j, previous))
	}
}

// QCFlag returns the flag of a job-level concern
func (j *Job) QCFlag(c Concern) (QCFlag, error) {
	flag, err := j.flagRef(c)
	if err != nil {
		return QCFlag{}, err
	}
	return *flag, nil
}

func (j *Job) flagRef(c Concern) (*QCFlag, error) {
	switch c {
	case ConcernArtwork:
		return &j.Artwork, nil
	case ConcernDataFiles:
		return &j.DataFiles, nil
	case ConcernMailing:
		return &j.Mailing, nil
	case ConcernSuppliedMaterials:
		return &j.SuppliedMaterials, nil
	case ConcernVersions:
		return &j.Versions, nil
	}
	return nil, shared.NewDomainError(shared.CodeInvalidConcern, fmt.Sprintf("Unknown QC concern %q", c))
}

// SetQCFlag updates one concern. Readiness is re-evaluated by the caller;
// a SENT job keeps its status.
func (j *Job) SetQCFlag(c Concern, status QCStatus, notes string) error {
	if err := j.ensureMutable(); err != nil {
		return err
	}
	if status == "" || !status.IsValid() {
		return shared.NewDomainError(shared.CodeInvalidQCStatus, fmt.Sprintf("Unknown QC status %q", status))
	}
	flag, err := j.flagRef(c)
	if err != nil {
		return err
	}
	flag.Status = status
	flag.Notes = notes
	j.Touch()
	return nil
}

// AddComponent appends a component with pending artwork and materials
func (j *Job) AddComponent(name string) (*Component, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Component name cannot be empty")
	}
	j.Components = append(j.Components, Component{
		ID:             uuid.New(),
		Name:           name,
		ArtworkStatus:  QCPending,
		MaterialStatus: QCPending,
	})
	j.Touch()
	return &j.Components[len(j.Components)-1], nil
}

// SetComponentQC updates a component's artwork and/or material status
func (j *Job) SetComponentQC(componentID uuid.UUID, artwork, material *QCStatus) error {
	if err := j.ensureMutable(); err != nil {
		return err
	}
	for _, s := range []*QCStatus{artwork, material} {
		if s != nil && (*s == "" || !s.IsValid()) {
			return shared.NewDomainError(shared.CodeInvalidQCStatus, fmt.Sprintf("Unknown QC status %q", *s))
		}
	}
	for i := range j.Components {
		if j.Components[i].ID != componentID {
			continue
		}
		if artwork != nil {
			j.Components[i].ArtworkStatus = *artwork
		}
		if material != nil {
			j.Components[i].MaterialStatus = *material
		}
		j.Touch()
		return nil
	}
	return shared.NewDomainError(shared.CodeNotFound, fmt.Sprintf("Component %s not found on job %s", componentID, j.JobNumber))
}

// IsSent reports whether the job reached the terminal SENT state
func (j *Job) IsSent() bool {
	return j.ReadinessStatus == ReadinessSent
}

// ApplyReadiness stores an evaluation result. SENT never changes.
func (j *Job) ApplyReadiness(r ReadinessResult) {
	if j.IsSent() || r.Status == ReadinessSent {
		return
	}
	if j.ReadinessStatus != r.Status {
		j.ReadinessStatus = r.Status
		j.Touch()
	}
}

// MarkSent moves the job to SENT. Blockers in r prevent the transition.
// Calling it on a SENT job is a no-op.
func (j *Job) MarkSent(r ReadinessResult) error {
	if j.IsSent() {
		return nil
	}
	if err := j.ensureMutable(); err != nil {
		return err
	}
	if len(r.Blockers) > 0 {
		return shared.NewDomainError(shared.CodeJobBlocked,
			fmt.Sprintf("Job %s has %d readiness blocker(s)", j.JobNumber, len(r.Blockers)))
	}
	now := time.Now()
	j.ReadinessStatus = ReadinessSent
	j.SentAt = &now
	j.UpdatedAt = now
	j.AddDomainEvent(NewJobSentEvent(j))
	return nil
}
