package job

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/printbroker/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKeywords = []string{"mailing", "eddm", "presort"}

func newTestJob(t *testing.T, params ...func(*NewJobParams)) *Job {
	t.Helper()
	p := NewJobParams{
		JobNumber:   "JOB-000001",
		Title:       "Spring postcard",
		RoutingType: RoutingDirect,
		SellPrice:   decimal.NewFromInt(1000),
		Quantity:    5000,
	}
	for _, fn := range params {
		fn(&p)
	}
	j, err := NewJob(p)
	require.NoError(t, err)
	return j
}

func approveAll(t *testing.T, j *Job) {
	t.Helper()
	for _, c := range []Concern{ConcernArtwork, ConcernDataFiles, ConcernMailing, ConcernSuppliedMaterials, ConcernVersions} {
		require.NoError(t, j.SetQCFlag(c, QCApproved, ""))
	}
}

func TestDetectMailing(t *testing.T) {
	mailDate := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	vendorID := uuid.New()

	tests := []struct {
		name   string
		mutate func(*Job)
		mc     MailingContext
		want   []string
	}{
		{"no signals", func(*Job) {}, MailingContext{Keywords: testKeywords}, nil},
		{"explicit mailing vendor", func(j *Job) { j.MailingVendorID = &vendorID }, MailingContext{}, []string{SignalMailingVendor}},
		{"mailing fulfiller purchase order", func(*Job) {}, MailingContext{HasMailingFulfillerPO: true}, []string{SignalMailingVendor}},
		{"match type", func(j *Job) { j.MatchType = "2-way" }, MailingContext{}, []string{SignalMatchType}},
		{"mail date", func(j *Job) { j.MailDate = &mailDate }, MailingContext{}, []string{SignalMailDate}},
		{"in homes date", func(j *Job) { j.InHomesDate = &mailDate }, MailingContext{}, []string{SignalInHomesDate}},
		{"metadata", func(j *Job) { j.Metadata = map[string]any{"permit": "123"} }, MailingContext{}, []string{SignalMetadata}},
		{"note keyword", func(j *Job) { j.Notes = "Client wants EDDM drop" }, MailingContext{Keywords: testKeywords}, []string{SignalNoteKeyword}},
		{"keyword without notes", func(*Job) {}, MailingContext{Keywords: testKeywords}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := newTestJob(t)
			tt.mutate(j)
			assert.Equal(t, tt.want, DetectMailing(j, tt.mc))
		})
	}
}

func TestEvaluateReadiness_NewJobIsIncomplete(t *testing.T) {
	j := newTestJob(t)
	r := EvaluateReadiness(j, MailingContext{Keywords: testKeywords})

	assert.Equal(t, ReadinessIncomplete, r.Status)
	assert.False(t, r.IsMailing)
	require.Len(t, r.Blockers, 1)
	assert.Equal(t, ConcernArtwork, r.Blockers[0].Concern)
	assert.Empty(t, r.Warnings)
}

func TestEvaluateReadiness_ReceivedIsWarningOnly(t *testing.T) {
	j := newTestJob(t)
	require.NoError(t, j.SetQCFlag(ConcernArtwork, QCReceived, "proof uploaded"))

	r := EvaluateReadiness(j, MailingContext{})
	assert.Equal(t, ReadinessReady, r.Status)
	assert.Empty(t, r.Blockers)
	require.Len(t, r.Warnings, 1)
	assert.Contains(t, r.Warnings[0].Message, "awaiting review")
}

func TestEvaluateReadiness_MailingConcerns(t *testing.T) {
	j := newTestJob(t, func(p *NewJobParams) { p.Notes = "presort standard" })
	require.NoError(t, j.SetQCFlag(ConcernArtwork, QCApproved, ""))

	r := EvaluateReadiness(j, MailingContext{Keywords: testKeywords})
	assert.True(t, r.IsMailing)
	assert.Equal(t, ReadinessIncomplete, r.Status)

	concerns := map[Concern]bool{}
	for _, b := range r.Blockers {
		concerns[b.Concern] = true
	}
	assert.True(t, concerns[ConcernDataFiles])
	assert.True(t, concerns[ConcernMailing])

	require.NoError(t, j.SetQCFlag(ConcernDataFiles, QCApproved, ""))
	require.NoError(t, j.SetQCFlag(ConcernMailing, QCApproved, ""))
	r = EvaluateReadiness(j, MailingContext{Keywords: testKeywords})
	assert.Equal(t, ReadinessReady, r.Status)
	require.Len(t, r.Warnings, 1)
	assert.Equal(t, "Mailing job has no mail date", r.Warnings[0].Message)
}

func TestEvaluateReadiness_VersionsOnlyWhenMultiple(t *testing.T) {
	j := newTestJob(t)
	require.NoError(t, j.SetQCFlag(ConcernArtwork, QCApproved, ""))
	assert.Equal(t, ReadinessReady, EvaluateReadiness(j, MailingContext{}).Status)

	require.NoError(t, j.SetVersionCount(3))
	r := EvaluateReadiness(j, MailingContext{})
	assert.Equal(t, ReadinessIncomplete, r.Status)
	require.Len(t, r.Blockers, 1)
	assert.Equal(t, ConcernVersions, r.Blockers[0].Concern)
}

func TestEvaluateReadiness_Components(t *testing.T) {
	j := newTestJob(t, func(p *NewJobParams) { p.Components = []string{"Cover", "Insert"} })
	approveAll(t, j)

	r := EvaluateReadiness(j, MailingContext{})
	assert.Len(t, r.Blockers, 4)

	approved := QCApproved
	received := QCReceived
	for _, c := range j.Components {
		require.NoError(t, j.SetComponentQC(c.ID, &approved, &received))
	}
	r = EvaluateReadiness(j, MailingContext{})
	assert.Equal(t, ReadinessReady, r.Status)
	assert.Len(t, r.Warnings, 2)
	require.NotNil(t, r.Warnings[0].ComponentID)
}

func TestEvaluateReadiness_SentIsTerminal(t *testing.T) {
	j := newTestJob(t)
	approveAll(t, j)
	r := EvaluateReadiness(j, MailingContext{})
	j.ApplyReadiness(r)
	require.Equal(t, ReadinessReady, j.ReadinessStatus)
	require.NoError(t, j.MarkSent(r))

	require.NoError(t, j.SetQCFlag(ConcernArtwork, QCPending, "re-proof requested"))
	r = EvaluateReadiness(j, MailingContext{})
	assert.Equal(t, ReadinessSent, r.Status)
	assert.Empty(t, r.Blockers)

	j.ApplyReadiness(ReadinessResult{Status: ReadinessIncomplete})
	assert.Equal(t, ReadinessSent, j.ReadinessStatus)
	assert.NoError(t, j.MarkSent(ReadinessResult{Blockers: []Issue{{Concern: ConcernArtwork}}}))
}

func TestJob_MarkSentBlocked(t *testing.T) {
	j := newTestJob(t)
	r := EvaluateReadiness(j, MailingContext{})
	err := j.MarkSent(r)
	assert.True(t, shared.HasCode(err, shared.CodeJobBlocked))
	assert.Equal(t, ReadinessIncomplete, j.ReadinessStatus)
}
