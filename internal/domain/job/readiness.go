package job

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MailingContext carries facts about a job that live outside the aggregate
type MailingContext struct {
	// HasMailingFulfillerPO is true when an active purchase order targets a
	// vendor flagged as a mailing fulfiller
	HasMailingFulfillerPO bool
	// Keywords are matched case-insensitively against the job notes
	Keywords []string
}

// Mailing signal names reported by DetectMailing
const (
	SignalMailingVendor = "mailing_vendor"
	SignalMatchType     = "match_type"
	SignalMailDate      = "mail_date"
	SignalInHomesDate   = "in_homes_date"
	SignalMetadata      = "mailing_metadata"
	SignalNoteKeyword   = "note_keyword"
)

// DetectMailing derives whether a job is a mailing job. Any one signal is enough.
func DetectMailing(j *Job, mc MailingContext) []string {
	var signals []string
	if (j.MailingVendorID != nil && *j.MailingVendorID != uuid.Nil) || mc.HasMailingFulfillerPO {
		signals = append(signals, SignalMailingVendor)
	}
	if strings.TrimSpace(j.MatchType) != "" {
		signals = append(signals, SignalMatchType)
	}
	if j.MailDate != nil {
		signals = append(signals, SignalMailDate)
	}
	if j.InHomesDate != nil {
		signals = append(signals, SignalInHomesDate)
	}
	if len(j.Metadata) > 0 {
		signals = append(signals, SignalMetadata)
	}
	if notes := strings.ToLower(j.Notes); notes != "" {
		for _, kw := range mc.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" && strings.Contains(notes, kw) {
				signals = append(signals, SignalNoteKeyword)
				break
			}
		}
	}
	return signals
}

// ReadinessResult is the outcome of EvaluateReadiness
type ReadinessResult struct {
	JobID          uuid.UUID       `json:"job_id"`
	Status         ReadinessStatus `json:"status"`
	Blockers       []Issue         `json:"blockers"`
	Warnings       []Issue         `json:"warnings"`
	IsMailing      bool            `json:"is_mailing"`
	MailingSignals []string        `json:"mailing_signals,omitempty"`
	EvaluatedAt    time.Time       `json:"evaluated_at"`
}

type evaluation struct {
	blockers []Issue
	warnings []Issue
}

func (e *evaluation) check(concern Concern, componentID *uuid.UUID, label string, status QCStatus) {
	issue := Issue{Concern: concern, ComponentID: componentID, Status: status}
	switch status.Classify() {
	case SeverityBlocker:
		if status == "" {
			issue.Message = fmt.Sprintf("%s status not provided", label)
		} else {
			issue.Message = fmt.Sprintf("%s is %s", label, strings.ToLower(string(status)))
		}
		e.blockers = append(e.blockers, issue)
	case SeverityWarning:
		issue.Message = fmt.Sprintf("%s received, awaiting review", label)
		e.warnings = append(e.warnings, issue)
	}
}

// EvaluateReadiness walks the QC concerns of a job. A SENT job short-circuits
// and reports SENT without looking at any flag.
func EvaluateReadiness(j *Job, mc MailingContext) ReadinessResult {
	result := ReadinessResult{
		JobID:       j.ID,
		Blockers:    []Issue{},
		Warnings:    []Issue{},
		EvaluatedAt: time.Now(),
	}
	if j.IsSent() {
		result.Status = ReadinessSent
		return result
	}

	signals := DetectMailing(j, mc)
	result.IsMailing = len(signals) > 0
	result.MailingSignals = signals

	var e evaluation
	e.check(ConcernArtwork, nil, "Artwork", j.Artwork.Status)
	if result.IsMailing {
		e.check(ConcernDataFiles, nil, "Data files", j.DataFiles.Status)
		e.check(ConcernMailing, nil, "Mailing", j.Mailing.Status)
		if j.MailDate == nil {
			e.warnings = append(e.warnings, Issue{
				Concern: ConcernMailing,
				Message: "Mailing job has no mail date",
			})
		}
	}
	e.check(ConcernSuppliedMaterials, nil, "Supplied materials", j.SuppliedMaterials.Status)
	if j.VersionCount > 1 {
		e.check(ConcernVersions, nil, fmt.Sprintf("Versions (%d)", j.VersionCount), j.Versions.Status)
	}
	for i := range j.Components {
		c := j.Components[i]
		id := c.ID
		e.check(ConcernComponents, &id, c.Name+" artwork", c.ArtworkStatus)
		e.check(ConcernComponents, &id, c.Name+" materials", c.MaterialStatus)
	}

	if e.blockers != nil {
		result.Blockers = e.blockers
	}
	if e.warnings != nil {
		result.Warnings = e.warnings
	}
	result.Status = ReadinessReady
	if len(result.Blockers) > 0 {
		result.Status = ReadinessIncomplete
	}
	return result
}
