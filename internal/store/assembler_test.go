// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skygate-forensics/skygate/internal/analysis"
)

// failingSummaryStore rejects every summary write and passes everything
// else through to the wrapped store.
type failingSummaryStore struct {
	SummaryStore
	saveErr error
}

func (f *failingSummaryStore) SaveSummary(_ context.Context, _ *Summary, _ []MethodResult) error {
	return f.saveErr
}

// recordingDetailStore tracks whether a detail write was attempted and can
// be told to fail it.
type recordingDetailStore struct {
	DetailStore
	saveCalled bool
	saveErr    error
}

func (r *recordingDetailStore) SaveDetail(ctx context.Context, report *Report) error {
	r.saveCalled = true
	if r.saveErr != nil {
		return r.saveErr
	}
	return r.DetailStore.SaveDetail(ctx, report)
}

func newTestAssembler(t *testing.T) (*Assembler, *DuckDBStore, *BadgerStore) {
	t.Helper()
	summaries := newTestStore(t)
	details := newTestDetailStore(t)
	return NewAssembler(summaries, details), summaries, details
}

func verdictFixture() *analysis.Verdict {
	return &analysis.Verdict{
		IsAIGenerated: true,
		Confidence:    0.7166666666666667,
		ContributingFactors: []string{
			"Vision Transformer assigns probability 0.920 that the image is AI-generated",
			"No metadata present",
			"Sensor pattern noise is absent or inconsistent",
			"Error levels are unnaturally uniform across the image",
		},
		Outcomes: []analysis.MethodOutcome{
			analysis.Succeeded(analysis.MethodVit, 0.92,
				"Vision Transformer assigns probability 0.920 that the image is AI-generated",
				map[string]any{"model": "vit", "probability": 0.92},
				80*time.Millisecond),
			analysis.Failed(analysis.MethodMetadata, "corrupt container", 3*time.Millisecond),
		},
		AlgorithmVersion: "1.0/aaaa1111",
		CreatedAt:        time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
		Elapsed:          250 * time.Millisecond,
	}
}

func inputFixture() analysis.Input {
	return analysis.Input{
		UploadRef: "upload-42",
		Filename:  "IMG_4032.jpg",
		MIME:      "image/jpeg",
	}
}

func TestPersist(t *testing.T) {
	a, summaries, details := newTestAssembler(t)
	ctx := context.Background()
	verdict := verdictFixture()

	summary, err := a.Persist(ctx, verdict, inputFixture())
	require.NoError(t, err)
	require.NotNil(t, summary)

	_, parseErr := uuid.Parse(summary.ResultRef)
	assert.NoError(t, parseErr, "reference keys are UUIDs")
	assert.Positive(t, summary.ID)
	assert.Equal(t, "upload-42", summary.UploadRef)
	assert.Equal(t, verdict.Confidence, summary.Confidence)
	assert.Equal(t, 250.0, summary.ElapsedMS)

	// Relational side.
	stored, err := summaries.GetSummary(ctx, summary.ResultRef)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.IsAIGenerated)
	assert.Contains(t, stored.SummaryText, "AI-generated with 71.7% confidence")

	rows, err := summaries.GetMethodResults(ctx, summary.ResultRef)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	// Document side.
	report, err := details.GetDetail(ctx, summary.ResultRef)
	require.NoError(t, err)
	assert.Equal(t, summary.ResultRef, report.ResultRef)
	assert.Equal(t, "IMG_4032.jpg", report.Filename)
	assert.Equal(t, "image/jpeg", report.MIME)
	assert.Len(t, report.Outcomes, 2)
	assert.Equal(t, verdict.ContributingFactors, report.ContributingFactors)
	assert.False(t, report.Partial)
}

func TestPersist_NilVerdict(t *testing.T) {
	a, _, _ := newTestAssembler(t)

	_, err := a.Persist(context.Background(), nil, inputFixture())
	assert.Error(t, err)
}

func TestPersist_SummaryFailureSkipsDetail(t *testing.T) {
	summaries := newTestStore(t)
	details := &recordingDetailStore{DetailStore: newTestDetailStore(t)}
	a := NewAssembler(&failingSummaryStore{SummaryStore: summaries, saveErr: errors.New("disk full")}, details)

	summary, err := a.Persist(context.Background(), verdictFixture(), inputFixture())
	assert.Nil(t, summary)
	require.Error(t, err)

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, StageSummary, perr.Stage)
	assert.False(t, details.saveCalled, "detail write must not be attempted after a summary failure")
}

func TestPersist_DetailFailureKeepsSummary(t *testing.T) {
	summaries := newTestStore(t)
	details := &recordingDetailStore{DetailStore: newTestDetailStore(t), saveErr: errors.New("value log corrupt")}
	a := NewAssembler(summaries, details)
	ctx := context.Background()

	summary, err := a.Persist(ctx, verdictFixture(), inputFixture())
	require.Error(t, err)
	require.NotNil(t, summary, "committed summary is returned alongside the detail error")

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, StageDetail, perr.Stage)
	assert.Equal(t, summary.ResultRef, perr.Ref)

	// The summary remains the authoritative existence marker.
	stored, err := summaries.GetSummary(ctx, summary.ResultRef)
	require.NoError(t, err)
	assert.NotNil(t, stored)
}

func TestReport_FullDocument(t *testing.T) {
	a, _, _ := newTestAssembler(t)
	ctx := context.Background()

	summary, err := a.Persist(ctx, verdictFixture(), inputFixture())
	require.NoError(t, err)

	report, err := a.Report(ctx, summary.ResultRef)
	require.NoError(t, err)
	assert.False(t, report.Partial)
	assert.Equal(t, "IMG_4032.jpg", report.Filename)

	// The full document carries analysis text and structured detail.
	var vit *analysis.MethodOutcome
	for i := range report.Outcomes {
		if report.Outcomes[i].Method == analysis.MethodVit {
			vit = &report.Outcomes[i]
		}
	}
	require.NotNil(t, vit)
	assert.NotEmpty(t, vit.Analysis)
	assert.NotEmpty(t, vit.Detail)
}

func TestReport_DegradedWithoutDetail(t *testing.T) {
	a, _, details := newTestAssembler(t)
	ctx := context.Background()

	summary, err := a.Persist(ctx, verdictFixture(), inputFixture())
	require.NoError(t, err)

	// Simulate a past detail-write failure.
	require.NoError(t, details.DeleteDetail(ctx, summary.ResultRef))

	report, err := a.Report(ctx, summary.ResultRef)
	require.NoError(t, err)
	assert.True(t, report.Partial)
	assert.Equal(t, summary.ResultRef, report.ResultRef)
	assert.Equal(t, summary.Confidence, report.Confidence)

	// Rebuilt outcomes come from relational rows: status and score
	// survive, analysis text and structured detail do not.
	require.Len(t, report.Outcomes, 2)
	assert.Equal(t, analysis.MethodMetadata, report.Outcomes[0].Method)
	assert.Equal(t, analysis.StatusFailed, report.Outcomes[0].Status)
	assert.Equal(t, analysis.MethodVit, report.Outcomes[1].Method)
	assert.Equal(t, 0.92, report.Outcomes[1].Score)
	assert.Empty(t, report.Outcomes[1].Analysis)
	assert.Empty(t, report.Outcomes[1].Detail)
}

func TestReport_Missing(t *testing.T) {
	a, _, _ := newTestAssembler(t)

	_, err := a.Report(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, ErrResultNotFound)
}

func TestReconcileOrphans(t *testing.T) {
	a, _, details := newTestAssembler(t)
	ctx := context.Background()

	first, err := a.Persist(ctx, verdictFixture(), inputFixture())
	require.NoError(t, err)
	second, err := a.Persist(ctx, verdictFixture(), analysis.Input{UploadRef: "upload-43"})
	require.NoError(t, err)

	orphans, err := a.ReconcileOrphans(ctx)
	require.NoError(t, err)
	assert.Empty(t, orphans)

	require.NoError(t, details.DeleteDetail(ctx, second.ResultRef))

	orphans, err = a.ReconcileOrphans(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{second.ResultRef}, orphans)
	assert.NotContains(t, orphans, first.ResultRef)
}

func TestRenderSummary(t *testing.T) {
	tests := []struct {
		name    string
		verdict analysis.Verdict
		want    string
	}{
		{
			name: "ai generated with factors",
			verdict: analysis.Verdict{
				IsAIGenerated:       true,
				Confidence:          0.7166666666666667,
				ContributingFactors: []string{"factor one", "factor two"},
			},
			want: "This image is likely AI-generated with 71.7% confidence. Key indicators include: factor one; factor two.",
		},
		{
			name: "authentic without factors",
			verdict: analysis.Verdict{
				IsAIGenerated: false,
				Confidence:    0.12,
			},
			want: "This image is likely authentic with 12.0% confidence.",
		},
		{
			name: "factors truncated to three",
			verdict: analysis.Verdict{
				IsAIGenerated:       true,
				Confidence:          0.9,
				ContributingFactors: []string{"a", "b", "c", "d", "e"},
			},
			want: "This image is likely AI-generated with 90.0% confidence. Key indicators include: a; b; c.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, renderSummary(&tt.verdict))
		})
	}
}

func TestPersistenceError(t *testing.T) {
	inner := errors.New("disk full")
	err := &PersistenceError{Stage: StageDetail, Ref: "ref-1", Err: inner}

	assert.Contains(t, err.Error(), "detail")
	assert.Contains(t, err.Error(), "ref-1")
	assert.ErrorIs(t, err, inner)
}
