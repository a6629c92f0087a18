// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/skygate-forensics/skygate/internal/analysis"
	"github.com/skygate-forensics/skygate/internal/database/query"
	"github.com/skygate-forensics/skygate/internal/logging"
	"github.com/skygate-forensics/skygate/internal/metrics"
)

// DuckDBStore implements SummaryStore on an embedded DuckDB database.
type DuckDBStore struct {
	db *sql.DB
}

// NewDuckDBStore creates a summary store over an open database connection.
// The caller retains ownership of the connection; call InitSchema before
// first use.
func NewDuckDBStore(db *sql.DB) *DuckDBStore {
	return &DuckDBStore{db: db}
}

const summaryColumns = "id, result_ref, upload_ref, is_ai_generated, confidence, elapsed_ms, algorithm_version, summary, created_at"

const methodResultColumns = "id, result_ref, method, status, score, reason, elapsed_ms"

const defaultListLimit = 100

// validSummaryOrderColumns whitelists ORDER BY targets so filter input can
// never inject SQL.
var validSummaryOrderColumns = map[string]bool{
	"id":                true,
	"upload_ref":        true,
	"is_ai_generated":   true,
	"confidence":        true,
	"elapsed_ms":        true,
	"algorithm_version": true,
	"created_at":        true,
}

// methodDescriptions seeds the description column of the method registry.
var methodDescriptions = map[analysis.Method]string{
	analysis.MethodVit:          "Patch-based vision transformer classifier",
	analysis.MethodResNetNoDown: "GAN-artifact CNN classifier (no downsampling)",
	analysis.MethodMetadata:     "Embedded metadata presence and plausibility",
	analysis.MethodPRNU:         "Sensor pattern noise consistency",
	analysis.MethodELA:          "Recompression error level consistency",
	analysis.MethodTexture:      "Local texture variance uniformity",
}

// InitSchema creates the summary tables if they do not exist and seeds the
// method registry. DuckDB integer primary keys do not auto-increment, so
// each table gets an explicit sequence.
func (s *DuckDBStore) InitSchema(ctx context.Context) error {
	queries := []string{
		`CREATE SEQUENCE IF NOT EXISTS detection_results_id_seq`,
		`CREATE TABLE IF NOT EXISTS detection_results (
			id BIGINT PRIMARY KEY DEFAULT nextval('detection_results_id_seq'),
			result_ref TEXT NOT NULL UNIQUE,
			upload_ref TEXT NOT NULL,
			is_ai_generated BOOLEAN NOT NULL,
			confidence DOUBLE NOT NULL,
			elapsed_ms DOUBLE NOT NULL DEFAULT 0,
			algorithm_version TEXT NOT NULL,
			summary TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_upload_ref ON detection_results(upload_ref)`,
		`CREATE INDEX IF NOT EXISTS idx_results_created_at ON detection_results(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_results_verdict ON detection_results(is_ai_generated)`,

		`CREATE SEQUENCE IF NOT EXISTS method_results_id_seq`,
		`CREATE TABLE IF NOT EXISTS method_results (
			id BIGINT PRIMARY KEY DEFAULT nextval('method_results_id_seq'),
			result_ref TEXT NOT NULL,
			method TEXT NOT NULL,
			status TEXT NOT NULL,
			score DOUBLE NOT NULL DEFAULT 0,
			reason TEXT NOT NULL DEFAULT '',
			elapsed_ms DOUBLE NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_method_results_ref ON method_results(result_ref)`,
		`CREATE INDEX IF NOT EXISTS idx_method_results_method ON method_results(method)`,

		`CREATE TABLE IF NOT EXISTS detection_methods (
			name TEXT PRIMARY KEY,
			weight DOUBLE NOT NULL,
			enabled BOOLEAN NOT NULL DEFAULT true,
			description TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, q := range queries {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create summary schema: %w", err)
		}
	}

	if err := s.seedMethods(ctx); err != nil {
		return err
	}

	// Persist the fresh schema immediately; checkpoint failure is not
	// fatal because the WAL still holds the schema.
	if _, err := s.db.ExecContext(ctx, "CHECKPOINT"); err != nil {
		logging.Warn().Err(err).Msg("Failed to checkpoint after summary schema initialization")
	}

	return nil
}

// seedMethods inserts the built-in methods with their calibrated default
// weights. ON CONFLICT DO NOTHING keeps operator tuning across restarts.
func (s *DuckDBStore) seedMethods(ctx context.Context) error {
	defaults := analysis.DefaultWeights()
	now := time.Now().UTC()

	for _, m := range analysis.KnownMethods() {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO detection_methods (name, weight, enabled, description, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (name) DO NOTHING`,
			string(m), defaults[m], true, methodDescriptions[m], now,
		)
		if err != nil {
			return fmt.Errorf("seed method %q: %w", m, err)
		}
	}

	return nil
}

// SaveSummary inserts the summary row and its method rows in one
// transaction and fills summary.ID.
func (s *DuckDBStore) SaveSummary(ctx context.Context, summary *Summary, methods []MethodResult) error {
	if summary == nil {
		return errors.New("summary cannot be nil")
	}
	if summary.ResultRef == "" {
		return errors.New("summary result ref cannot be empty")
	}

	start := time.Now()
	err := s.saveSummaryTx(ctx, summary, methods)
	metrics.RecordDBQuery("insert", "detection_results", time.Since(start), err)
	return err
}

func (s *DuckDBStore) saveSummaryTx(ctx context.Context, summary *Summary, methods []MethodResult) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin summary transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.Error().
					Err(rbErr).
					AnErr("original_error", err).
					Msg("Summary transaction rollback failed")
			}
		}
	}()

	// DuckDB does not support LastInsertId; RETURNING is the way to
	// observe the sequence-assigned id.
	err = tx.QueryRowContext(ctx, `
		INSERT INTO detection_results (result_ref, upload_ref, is_ai_generated, confidence, elapsed_ms, algorithm_version, summary, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		summary.ResultRef, summary.UploadRef, summary.IsAIGenerated, summary.Confidence,
		summary.ElapsedMS, summary.AlgorithmVersion, summary.SummaryText, summary.CreatedAt,
	).Scan(&summary.ID)
	if err != nil {
		return fmt.Errorf("insert detection result: %w", err)
	}

	for i := range methods {
		m := &methods[i]
		m.ResultRef = summary.ResultRef
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO method_results (result_ref, method, status, score, reason, elapsed_ms)
			VALUES (?, ?, ?, ?, ?, ?)`,
			m.ResultRef, m.Method, m.Status, m.Score, m.Reason, m.ElapsedMS,
		); err != nil {
			return fmt.Errorf("insert method result %q: %w", m.Method, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit summary transaction: %w", err)
	}
	return nil
}

// GetSummary returns the summary for a reference key, or (nil, nil) when
// no such result exists.
func (s *DuckDBStore) GetSummary(ctx context.Context, resultRef string) (*Summary, error) {
	start := time.Now()
	row := s.db.QueryRowContext(ctx,
		"SELECT "+summaryColumns+" FROM detection_results WHERE result_ref = ?", resultRef)

	summary, err := scanSummaryRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordDBQuery("select", "detection_results", time.Since(start), nil)
		return nil, nil
	}
	metrics.RecordDBQuery("select", "detection_results", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("get detection result %s: %w", resultRef, err)
	}
	return summary, nil
}

// GetLatestSummary returns the most recent summary for an upload
// reference, or (nil, nil).
func (s *DuckDBStore) GetLatestSummary(ctx context.Context, uploadRef string) (*Summary, error) {
	start := time.Now()
	row := s.db.QueryRowContext(ctx,
		"SELECT "+summaryColumns+" FROM detection_results WHERE upload_ref = ? ORDER BY created_at DESC, id DESC LIMIT 1",
		uploadRef)

	summary, err := scanSummaryRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordDBQuery("select", "detection_results", time.Since(start), nil)
		return nil, nil
	}
	metrics.RecordDBQuery("select", "detection_results", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("get latest detection result for %s: %w", uploadRef, err)
	}
	return summary, nil
}

// GetMethodResults returns the flattened method rows for a result,
// ordered by method name for deterministic output.
func (s *DuckDBStore) GetMethodResults(ctx context.Context, resultRef string) ([]MethodResult, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+methodResultColumns+" FROM method_results WHERE result_ref = ? ORDER BY method ASC",
		resultRef)
	metrics.RecordDBQuery("select", "method_results", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("get method results %s: %w", resultRef, err)
	}
	defer closeRows(rows)

	return scanMethodResults(rows)
}

// ListSummaries returns summaries matching the filter, newest first unless
// the filter orders otherwise.
func (s *DuckDBStore) ListSummaries(ctx context.Context, f Filter) ([]Summary, error) {
	q, args := buildSummaryQuery(f)

	start := time.Now()
	rows, err := s.db.QueryContext(ctx, q, args...)
	metrics.RecordDBQuery("select", "detection_results", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("list detection results: %w", err)
	}
	defer closeRows(rows)

	return scanSummaries(rows)
}

// CountSummaries returns the number of summaries matching the filter,
// ignoring pagination.
func (s *DuckDBStore) CountSummaries(ctx context.Context, f Filter) (int, error) {
	clause, args := summaryFilters(f).Build()

	var count int
	start := time.Now()
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM detection_results WHERE "+clause, args...).Scan(&count)
	metrics.RecordDBQuery("select", "detection_results", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("count detection results: %w", err)
	}
	return count, nil
}

// ListRefs returns every stored reference key, oldest first.
func (s *DuckDBStore) ListRefs(ctx context.Context) ([]string, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx,
		"SELECT result_ref FROM detection_results ORDER BY created_at ASC, id ASC")
	metrics.RecordDBQuery("select", "detection_results", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("list result refs: %w", err)
	}
	defer closeRows(rows)

	var refs []string
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, fmt.Errorf("scan result ref: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate result refs: %w", err)
	}
	return refs, nil
}

// ListMethods returns the method registry ordered by name.
func (s *DuckDBStore) ListMethods(ctx context.Context) ([]MethodRow, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, weight, enabled, description, updated_at FROM detection_methods ORDER BY name ASC")
	metrics.RecordDBQuery("select", "detection_methods", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("list detection methods: %w", err)
	}
	defer closeRows(rows)

	var methods []MethodRow
	for rows.Next() {
		var m MethodRow
		if err := rows.Scan(&m.Name, &m.Weight, &m.Enabled, &m.Description, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan detection method: %w", err)
		}
		methods = append(methods, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate detection methods: %w", err)
	}
	return methods, nil
}

// SetMethodWeight updates a registered method's ensemble weight.
func (s *DuckDBStore) SetMethodWeight(ctx context.Context, name string, weight float64) error {
	if name == "" {
		return errors.New("method name cannot be empty")
	}
	if weight < 0 {
		return fmt.Errorf("method weight must be non-negative, got %g", weight)
	}

	start := time.Now()
	result, err := s.db.ExecContext(ctx,
		"UPDATE detection_methods SET weight = ?, updated_at = ? WHERE name = ?",
		weight, time.Now().UTC(), name)
	metrics.RecordDBQuery("update", "detection_methods", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("update weight for method %q: %w", name, err)
	}
	return checkMethodUpdated(result, name)
}

// SetMethodEnabled toggles a registered method.
func (s *DuckDBStore) SetMethodEnabled(ctx context.Context, name string, enabled bool) error {
	if name == "" {
		return errors.New("method name cannot be empty")
	}

	start := time.Now()
	result, err := s.db.ExecContext(ctx,
		"UPDATE detection_methods SET enabled = ?, updated_at = ? WHERE name = ?",
		enabled, time.Now().UTC(), name)
	metrics.RecordDBQuery("update", "detection_methods", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("update enabled for method %q: %w", name, err)
	}
	return checkMethodUpdated(result, name)
}

func checkMethodUpdated(result sql.Result, name string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check update for method %q: %w", name, err)
	}
	if affected == 0 {
		return fmt.Errorf("method %q is not registered", name)
	}
	return nil
}

// WeightTable builds the ensemble weight table from the enabled registry
// rows. Disabled methods are left unregistered; the engine does not run
// analyzers for them, so their default weight never applies.
func (s *DuckDBStore) WeightTable(ctx context.Context) (analysis.WeightTable, error) {
	rows, err := s.ListMethods(ctx)
	if err != nil {
		return analysis.WeightTable{}, err
	}

	weights := make(map[analysis.Method]float64, len(rows))
	for _, r := range rows {
		if !r.Enabled {
			continue
		}
		weights[analysis.Method(r.Name)] = r.Weight
	}

	return analysis.NewWeightTable(weightTableVersion(rows), weights), nil
}

// weightTableVersion derives a stable identifier from the full registry
// state (weights and enablement), so algorithm_version pins the exact
// combination logic behind a verdict and an operator weight change is
// visible in subsequent results.
func weightTableVersion(rows []MethodRow) string {
	h := sha256.New()
	for _, r := range rows { // ListMethods orders by name
		fmt.Fprintf(h, "%s=%.6f:%t\n", r.Name, r.Weight, r.Enabled)
	}
	return hex.EncodeToString(h.Sum(nil))[:8]
}

// --- query building ---

func summaryFilters(f Filter) *query.WhereBuilder {
	b := query.NewWhereBuilder()
	b.AddDateRange(f.StartDate, f.EndDate)
	b.AddVerdict(f.IsAIGenerated)
	b.AddConfidenceRange(f.MinConfidence, f.MaxConfidence)
	b.AddUploadRefs(f.UploadRefs)
	b.AddAlgorithmVersions(f.AlgorithmVersions)
	return b
}

func buildSummaryQuery(f Filter) (string, []interface{}) {
	clause, args := summaryFilters(f).Build()
	q := "SELECT " + summaryColumns + " FROM detection_results WHERE " + clause
	q += summaryOrdering(f)
	return summaryPagination(q, args, f)
}

func summaryOrdering(f Filter) string {
	column := "created_at"
	if validSummaryOrderColumns[f.OrderBy] {
		column = f.OrderBy
	}

	direction := "DESC"
	if d := strings.ToUpper(f.OrderDirection); d == "ASC" || d == "DESC" {
		direction = d
	}

	return fmt.Sprintf(" ORDER BY %s %s", column, direction)
}

func summaryPagination(q string, args []interface{}, f Filter) (string, []interface{}) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	q += " LIMIT ?"
	args = append(args, limit)

	if f.Offset > 0 {
		q += " OFFSET ?"
		args = append(args, f.Offset)
	}
	return q, args
}

// --- row scanning ---

func scanSummaryRow(scanner interface{ Scan(dest ...interface{}) error }) (*Summary, error) {
	var s Summary
	err := scanner.Scan(
		&s.ID, &s.ResultRef, &s.UploadRef, &s.IsAIGenerated, &s.Confidence,
		&s.ElapsedMS, &s.AlgorithmVersion, &s.SummaryText, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func scanSummaries(rows *sql.Rows) ([]Summary, error) {
	var summaries []Summary
	for rows.Next() {
		s, err := scanSummaryRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan detection result: %w", err)
		}
		summaries = append(summaries, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate detection results: %w", err)
	}
	return summaries, nil
}

func scanMethodResults(rows *sql.Rows) ([]MethodResult, error) {
	var methods []MethodResult
	for rows.Next() {
		var m MethodResult
		err := rows.Scan(&m.ID, &m.ResultRef, &m.Method, &m.Status, &m.Score, &m.Reason, &m.ElapsedMS)
		if err != nil {
			return nil, fmt.Errorf("scan method result: %w", err)
		}
		methods = append(methods, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate method results: %w", err)
	}
	return methods, nil
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		logging.Debug().Err(err).Msg("Failed to close result rows")
	}
}

// Compile-time interface assertion
var _ SummaryStore = (*DuckDBStore)(nil)
