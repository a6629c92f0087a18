// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/skygate-forensics/skygate/internal/analysis"
)

// Persistence stage identifiers carried by PersistenceError.
const (
	StageSummary = "summary"
	StageDetail  = "detail"
)

// Errors
var (
	// ErrResultNotFound is returned when no detection result exists for a
	// reference key.
	ErrResultNotFound = errors.New("detection result not found")

	// ErrDetailNotFound is returned when a forensic detail document is
	// missing from the document store.
	ErrDetailNotFound = errors.New("detail document not found")

	// ErrStoreClosed is returned when an operation is attempted on a
	// closed store.
	ErrStoreClosed = errors.New("store is closed")
)

// PersistenceError reports which stage of a two-store write failed. The
// summary stage is fatal for the write as a whole; a detail-stage error
// arrives together with the already-committed summary, which remains the
// authoritative record of the result's existence.
type PersistenceError struct {
	Stage string
	Ref   string
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s for result %s: %v", e.Stage, e.Ref, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Summary is one row of the relational detection_results table: the
// structured verdict fields an operator can filter and aggregate over
// without touching the document store.
type Summary struct {
	ID               int64     `json:"id"`
	ResultRef        string    `json:"result_ref"`
	UploadRef        string    `json:"upload_ref"`
	IsAIGenerated    bool      `json:"is_ai_generated"`
	Confidence       float64   `json:"confidence_score"`
	ElapsedMS        float64   `json:"elapsed_ms"`
	AlgorithmVersion string    `json:"algorithm_version"`
	SummaryText      string    `json:"summary"`
	CreatedAt        time.Time `json:"created_at"`
}

// MethodResult is one row of the relational method_results table: the
// per-method score and status flattened for SQL aggregation. Score is
// meaningful only when Status is "ok"; failed and skipped rows carry a
// Reason instead.
type MethodResult struct {
	ID        int64   `json:"id"`
	ResultRef string  `json:"result_ref"`
	Method    string  `json:"method_name"`
	Status    string  `json:"status"`
	Score     float64 `json:"score"`
	Reason    string  `json:"reason,omitempty"`
	ElapsedMS float64 `json:"elapsed_ms"`
}

// MethodRow is one row of the detection_methods registry: a method's
// ensemble weight and enablement, tunable at runtime without a rebuild.
type MethodRow struct {
	Name        string    `json:"name"`
	Weight      float64   `json:"weight"`
	Enabled     bool      `json:"enabled"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Report is the full nested forensic document stored per result: the
// complete verdict including every method outcome with its structured
// detail, exactly as the ensemble produced it.
//
// Partial is set when the document store had no detail for the reference
// key and the report was rebuilt from relational rows alone; such reports
// lack the per-method analysis text and structured detail payloads.
type Report struct {
	ResultRef           string                   `json:"result_ref"`
	UploadRef           string                   `json:"upload_ref"`
	Filename            string                   `json:"filename,omitempty"`
	MIME                string                   `json:"mime_type,omitempty"`
	IsAIGenerated       bool                     `json:"is_ai_generated"`
	Confidence          float64                  `json:"confidence_score"`
	ContributingFactors []string                 `json:"contributing_factors,omitempty"`
	Outcomes            []analysis.MethodOutcome `json:"method_outcomes"`
	AlgorithmVersion    string                   `json:"algorithm_version"`
	SummaryText         string                   `json:"summary"`
	CreatedAt           time.Time                `json:"created_at"`
	Elapsed             time.Duration            `json:"elapsed_ns"`
	Partial             bool                     `json:"partial,omitempty"`
}

// Filter narrows ListSummaries and CountSummaries. Nil pointer fields and
// empty slices are ignored. OrderBy must name a whitelisted column or the
// default (created_at) is used; Limit defaults to 100 when zero.
type Filter struct {
	StartDate         *time.Time
	EndDate           *time.Time
	IsAIGenerated     *bool
	MinConfidence     *float64
	MaxConfidence     *float64
	UploadRefs        []string
	AlgorithmVersions []string
	OrderBy           string
	OrderDirection    string
	Limit             int
	Offset            int
}

// SummaryStore is the relational persistence contract: structured verdict
// rows plus the method registry that seeds the ensemble weight table.
type SummaryStore interface {
	// InitSchema creates tables, indexes, and sequences if they do not
	// exist and seeds the method registry with the built-in methods.
	// Safe to call on every startup.
	InitSchema(ctx context.Context) error

	// SaveSummary inserts a summary row and its flattened method rows in
	// one transaction and fills summary.ID with the assigned id.
	SaveSummary(ctx context.Context, summary *Summary, methods []MethodResult) error

	// GetSummary returns the summary for a reference key, or (nil, nil)
	// when no such result exists.
	GetSummary(ctx context.Context, resultRef string) (*Summary, error)

	// GetLatestSummary returns the most recent summary for an upload
	// reference, or (nil, nil). Results are append-only history; an
	// upload re-analyzed under new weights accumulates rows.
	GetLatestSummary(ctx context.Context, uploadRef string) (*Summary, error)

	// GetMethodResults returns the flattened method rows for a result,
	// ordered by method name.
	GetMethodResults(ctx context.Context, resultRef string) ([]MethodResult, error)

	// ListSummaries returns summaries matching the filter.
	ListSummaries(ctx context.Context, f Filter) ([]Summary, error)

	// CountSummaries returns the number of summaries matching the
	// filter, ignoring pagination.
	CountSummaries(ctx context.Context, f Filter) (int, error)

	// ListRefs returns every stored reference key, oldest first. Used by
	// the orphan reconciliation scan.
	ListRefs(ctx context.Context) ([]string, error)

	// ListMethods returns the method registry ordered by name.
	ListMethods(ctx context.Context) ([]MethodRow, error)

	// SetMethodWeight updates a registered method's ensemble weight.
	SetMethodWeight(ctx context.Context, name string, weight float64) error

	// SetMethodEnabled toggles a registered method.
	SetMethodEnabled(ctx context.Context, name string, enabled bool) error

	// WeightTable builds the ensemble weight table from the enabled
	// registry rows. The table version is derived from the full registry
	// state so algorithm_version pins the exact weights behind a verdict.
	WeightTable(ctx context.Context) (analysis.WeightTable, error)
}

// DetailStore is the document persistence contract: the full nested
// forensic report per reference key.
type DetailStore interface {
	// SaveDetail stores the full report under its reference key,
	// overwriting any previous document for the same key.
	SaveDetail(ctx context.Context, report *Report) error

	// GetDetail returns the report for a reference key, or
	// ErrDetailNotFound.
	GetDetail(ctx context.Context, resultRef string) (*Report, error)

	// HasDetail reports whether a document exists for the reference key
	// without reading its value.
	HasDetail(ctx context.Context, resultRef string) (bool, error)

	// DeleteDetail removes the document for a reference key. Deleting a
	// missing key is not an error.
	DeleteDetail(ctx context.Context, resultRef string) error

	// ListRefs returns every stored reference key in key order.
	ListRefs(ctx context.Context) ([]string, error)

	// RunGC reclaims document-store space from deleted or rewritten
	// values. Called periodically by the supervised GC service.
	RunGC() error

	// Close flushes and closes the underlying store.
	Close() error
}
