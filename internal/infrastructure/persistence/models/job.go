package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/printbroker/backend/internal/domain/job"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// JobComponentRecord is the JSON shape of a job component
type JobComponentRecord struct {
	ID             uuid.UUID    `json:"id"`
	Name           string       `json:"name"`
	ArtworkStatus  job.QCStatus `json:"artwork_status"`
	MaterialStatus job.QCStatus `json:"material_status"`
}

// JobModel is the persistence model for the Job aggregate root.
type JobModel struct {
	AggregateModel
	JobNumber   string          `gorm:"type:varchar(30);not null;uniqueIndex"`
	BaseJobID   *string         `gorm:"type:varchar(30);uniqueIndex"`
	Title       string          `gorm:"type:varchar(200);not null"`
	RoutingType job.RoutingType `gorm:"type:varchar(30);not null"`
	Pathway     job.Pathway     `gorm:"type:varchar(5);not null;default:''"`
	VendorCount int             `gorm:"not null;default:0"`

	SellPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Quantity    int             `gorm:"not null;default:0"`
	SizeName    string          `gorm:"type:varchar(100)"`
	PaperSource string          `gorm:"type:varchar(100)"`

	ArtworkStatus           job.QCStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	ArtworkNotes            string       `gorm:"type:text"`
	DataFilesStatus         job.QCStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	DataFilesNotes          string       `gorm:"type:text"`
	MailingStatus           job.QCStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	MailingNotes            string       `gorm:"type:text"`
	SuppliedMaterialsStatus job.QCStatus `gorm:"type:varchar(20);not null;default:'NOT_REQUIRED'"`
	SuppliedMaterialsNotes  string       `gorm:"type:text"`
	VersionsStatus          job.QCStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	VersionsNotes           string       `gorm:"type:text"`
	VersionCount            int          `gorm:"not null;default:1"`

	ReadinessStatus job.ReadinessStatus `gorm:"type:varchar(20);not null;default:'INCOMPLETE'"`
	SentAt          *time.Time

	MailingVendorID *uuid.UUID `gorm:"type:uuid;index"`
	MatchType       string     `gorm:"type:varchar(50)"`
	MailDate        *time.Time
	InHomesDate     *time.Time
	MailingMetadata datatypes.JSONMap
	Notes           string `gorm:"type:text"`

	Components datatypes.JSONSlice[JobComponentRecord]

	InvoicedAt *time.Time
	DeletedAt  *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (JobModel) TableName() string {
	return "jobs"
}

// ToDomain converts the persistence model to a domain Job.
func (m *JobModel) ToDomain() *job.Job {
	j := &job.Job{
		BaseAggregateRoot: m.ToAggregateRoot(),
		JobNumber:         m.JobNumber,
		BaseJobID:         m.BaseJobID,
		Title:             m.Title,
		RoutingType:       m.RoutingType,
		Pathway:           m.Pathway,
		VendorCount:       m.VendorCount,
		SellPrice:         m.SellPrice,
		Quantity:          m.Quantity,
		SizeName:          m.SizeName,
		PaperSource:       m.PaperSource,
		Artwork:           job.QCFlag{Status: m.ArtworkStatus, Notes: m.ArtworkNotes},
		DataFiles:         job.QCFlag{Status: m.DataFilesStatus, Notes: m.DataFilesNotes},
		Mailing:           job.QCFlag{Status: m.MailingStatus, Notes: m.MailingNotes},
		SuppliedMaterials: job.QCFlag{Status: m.SuppliedMaterialsStatus, Notes: m.SuppliedMaterialsNotes},
		Versions:          job.QCFlag{Status: m.VersionsStatus, Notes: m.VersionsNotes},
		VersionCount:      m.VersionCount,
		ReadinessStatus:   m.ReadinessStatus,
		SentAt:            m.SentAt,
		MailingDetails: job.MailingDetails{
			MailingVendorID: m.MailingVendorID,
			MatchType:       m.MatchType,
			MailDate:        m.MailDate,
			InHomesDate:     m.InHomesDate,
		},
		Notes:      m.Notes,
		InvoicedAt: m.InvoicedAt,
		DeletedAt:  m.DeletedAt,
	}
	if len(m.MailingMetadata) > 0 {
		j.Metadata = map[string]any(m.MailingMetadata)
	}
	for _, c := range m.Components {
		j.Components = append(j.Components, job.Component{
			ID:             c.ID,
			Name:           c.Name,
			ArtworkStatus:  c.ArtworkStatus,
			MaterialStatus: c.MaterialStatus,
		})
	}
	return j
}

// FromDomain populates the persistence model from a domain Job.
func (m *JobModel) FromDomain(j *job.Job) {
	m.FromDomainAggregateRoot(j.BaseAggregateRoot)
	m.JobNumber = j.JobNumber
	m.BaseJobID = j.BaseJobID
	m.Title = j.Title
	m.RoutingType = j.RoutingType
	m.Pathway = j.Pathway
	m.VendorCount = j.VendorCount
	m.SellPrice = j.SellPrice
	m.Quantity = j.Quantity
	m.SizeName = j.SizeName
	m.PaperSource = j.PaperSource
	m.ArtworkStatus, m.ArtworkNotes = j.Artwork.Status, j.Artwork.Notes
	m.DataFilesStatus, m.DataFilesNotes = j.DataFiles.Status, j.DataFiles.Notes
	m.MailingStatus, m.MailingNotes = j.Mailing.Status, j.Mailing.Notes
	m.SuppliedMaterialsStatus, m.SuppliedMaterialsNotes = j.SuppliedMaterials.Status, j.SuppliedMaterials.Notes
	m.VersionsStatus, m.VersionsNotes = j.Versions.Status, j.Versions.Notes
	m.VersionCount = j.VersionCount
	m.ReadinessStatus = j.ReadinessStatus
	m.SentAt = j.SentAt
	m.MailingVendorID = j.MailingVendorID
	m.MatchType = j.MatchType
	m.MailDate = j.MailDate
	m.InHomesDate = j.InHomesDate
	m.MailingMetadata = nil
	if len(j.Metadata) > 0 {
		m.MailingMetadata = datatypes.JSONMap(j.Metadata)
	}
	m.Notes = j.Notes
	m.Components = make(datatypes.JSONSlice[JobComponentRecord], 0, len(j.Components))
	for _, c := range j.Components {
		m.Components = append(m.Components, JobComponentRecord{
			ID:             c.ID,
			Name:           c.Name,
			ArtworkStatus:  c.ArtworkStatus,
			MaterialStatus: c.MaterialStatus,
		})
	}
	m.InvoicedAt = j.InvoicedAt
	m.DeletedAt = j.DeletedAt
}

// JobModelFromDomain creates a new persistence model from a domain Job.
func JobModelFromDomain(j *job.Job) *JobModel {
	m := &JobModel{}
	m.FromDomain(j)
	return m
}
