// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/skygate-forensics/skygate/internal/analysis"
	"github.com/skygate-forensics/skygate/internal/logging"
	"github.com/skygate-forensics/skygate/internal/metrics"
)

// maxSummaryIndicators bounds how many contributing factors the one-line
// summary sentence names; the full ordered list lives in the detail
// document.
const maxSummaryIndicators = 3

// Assembler builds the persistent result record from a verdict and writes
// it through both store contracts.
//
// The two writes are not atomic across stores. The relational summary is
// written first and is the authoritative existence marker: if it fails,
// the detail write is not attempted. A detail failure after a committed
// summary is reported to the caller but does not roll the summary back;
// the result stays readable in degraded form and ReconcileOrphans surfaces
// it for operators.
type Assembler struct {
	summaries SummaryStore
	details   DetailStore
}

// NewAssembler creates a result assembler over the two store contracts.
func NewAssembler(summaries SummaryStore, details DetailStore) *Assembler {
	return &Assembler{summaries: summaries, details: details}
}

// Persist writes the verdict for an input and returns the stored summary,
// including the freshly assigned reference key. A returned summary with a
// non-nil error means the summary committed but the detail write failed.
func (a *Assembler) Persist(ctx context.Context, verdict *analysis.Verdict, in analysis.Input) (*Summary, error) {
	if verdict == nil {
		return nil, errors.New("verdict cannot be nil")
	}

	ref := uuid.New().String()
	summary := &Summary{
		ResultRef:        ref,
		UploadRef:        in.UploadRef,
		IsAIGenerated:    verdict.IsAIGenerated,
		Confidence:       verdict.Confidence,
		ElapsedMS:        float64(verdict.Elapsed) / float64(time.Millisecond),
		AlgorithmVersion: verdict.AlgorithmVersion,
		SummaryText:      renderSummary(verdict),
		CreatedAt:        verdict.CreatedAt,
	}

	err := a.summaries.SaveSummary(ctx, summary, methodRows(ref, verdict.Outcomes))
	metrics.RecordPersistence("duckdb", "save", err)
	if err != nil {
		return nil, &PersistenceError{Stage: StageSummary, Ref: ref, Err: err}
	}

	report := &Report{
		ResultRef:           ref,
		UploadRef:           in.UploadRef,
		Filename:            in.Filename,
		MIME:                in.MIME,
		IsAIGenerated:       verdict.IsAIGenerated,
		Confidence:          verdict.Confidence,
		ContributingFactors: verdict.ContributingFactors,
		Outcomes:            verdict.Outcomes,
		AlgorithmVersion:    verdict.AlgorithmVersion,
		SummaryText:         summary.SummaryText,
		CreatedAt:           verdict.CreatedAt,
		Elapsed:             verdict.Elapsed,
	}

	err = a.details.SaveDetail(ctx, report)
	metrics.RecordPersistence("badger", "save", err)
	if err != nil {
		logging.Warn().
			Err(err).
			Str("result_ref", ref).
			Str("upload_ref", in.UploadRef).
			Msg("Detail document write failed; summary row is retained and the result stays readable in degraded form")
		return summary, &PersistenceError{Stage: StageDetail, Ref: ref, Err: err}
	}

	logging.Debug().
		Str("result_ref", ref).
		Str("upload_ref", in.UploadRef).
		Bool("is_ai_generated", verdict.IsAIGenerated).
		Msg("Detection result persisted")

	return summary, nil
}

// Report assembles the full forensic report for a reference key. When the
// detail document is present it is returned as stored; when the summary
// exists but the detail is missing (orphaned by a past detail-write
// failure) the report is rebuilt from relational rows and marked Partial.
func (a *Assembler) Report(ctx context.Context, resultRef string) (*Report, error) {
	summary, err := a.summaries.GetSummary(ctx, resultRef)
	if err != nil {
		return nil, fmt.Errorf("load summary %s: %w", resultRef, err)
	}
	if summary == nil {
		return nil, ErrResultNotFound
	}

	report, err := a.details.GetDetail(ctx, resultRef)
	if err == nil {
		return report, nil
	}
	if !errors.Is(err, ErrDetailNotFound) {
		return nil, fmt.Errorf("load detail %s: %w", resultRef, err)
	}

	methods, err := a.summaries.GetMethodResults(ctx, resultRef)
	if err != nil {
		return nil, fmt.Errorf("load method rows %s: %w", resultRef, err)
	}
	return partialReport(summary, methods), nil
}

// ReconcileOrphans scans for summaries whose detail document is missing,
// publishes the count, and returns the orphaned reference keys.
func (a *Assembler) ReconcileOrphans(ctx context.Context) ([]string, error) {
	refs, err := a.summaries.ListRefs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list summary refs: %w", err)
	}

	var orphans []string
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ok, err := a.details.HasDetail(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("check detail %s: %w", ref, err)
		}
		if !ok {
			orphans = append(orphans, ref)
		}
	}

	metrics.OrphanedDetails.Set(float64(len(orphans)))
	if len(orphans) > 0 {
		logging.Warn().
			Int("count", len(orphans)).
			Int("total", len(refs)).
			Msg("Detection summaries found without detail documents; reports for them assemble in degraded form")
	}

	return orphans, nil
}

// renderSummary produces the one-paragraph human summary stored alongside
// the structured verdict columns.
func renderSummary(v *analysis.Verdict) string {
	label := "authentic"
	if v.IsAIGenerated {
		label = "AI-generated"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "This image is likely %s with %.1f%% confidence.", label, v.Confidence*100)

	if len(v.ContributingFactors) > 0 {
		n := min(len(v.ContributingFactors), maxSummaryIndicators)
		b.WriteString(" Key indicators include: ")
		b.WriteString(strings.Join(v.ContributingFactors[:n], "; "))
		b.WriteString(".")
	}

	return b.String()
}

func methodRows(ref string, outcomes []analysis.MethodOutcome) []MethodResult {
	rows := make([]MethodResult, 0, len(outcomes))
	for _, o := range outcomes {
		rows = append(rows, MethodResult{
			ResultRef: ref,
			Method:    string(o.Method),
			Status:    string(o.Status),
			Score:     o.Score,
			Reason:    o.Reason,
			ElapsedMS: float64(o.Elapsed) / float64(time.Millisecond),
		})
	}
	return rows
}

// partialReport rebuilds what it can of a report from relational rows
// alone. The per-method analysis text and structured detail live only in
// the document store and are unrecoverable here.
func partialReport(summary *Summary, methods []MethodResult) *Report {
	outcomes := make([]analysis.MethodOutcome, 0, len(methods))
	for _, m := range methods {
		outcomes = append(outcomes, analysis.MethodOutcome{
			Method:  analysis.Method(m.Method),
			Score:   m.Score,
			Status:  analysis.Status(m.Status),
			Reason:  m.Reason,
			Elapsed: time.Duration(m.ElapsedMS * float64(time.Millisecond)),
		})
	}

	return &Report{
		ResultRef:        summary.ResultRef,
		UploadRef:        summary.UploadRef,
		IsAIGenerated:    summary.IsAIGenerated,
		Confidence:       summary.Confidence,
		Outcomes:         outcomes,
		AlgorithmVersion: summary.AlgorithmVersion,
		SummaryText:      summary.SummaryText,
		CreatedAt:        summary.CreatedAt,
		Elapsed:          time.Duration(summary.ElapsedMS * float64(time.Millisecond)),
		Partial:          true,
	}
}
