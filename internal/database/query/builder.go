// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

package query

import (
	"fmt"
	"strings"
	"time"
)

// WhereBuilder accumulates WHERE clauses with parameterized arguments for
// filtering detection summaries. All values are bound through placeholders;
// no caller input is ever interpolated into SQL text.
type WhereBuilder struct {
	clauses []string
	args    []interface{}
}

// NewWhereBuilder creates an empty WHERE clause builder.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{
		clauses: make([]string, 0, 4),
		args:    make([]interface{}, 0, 4),
	}
}

// AddClause appends a custom clause with its arguments. The clause must use
// ? placeholders for every value.
func (wb *WhereBuilder) AddClause(clause string, args ...interface{}) *WhereBuilder {
	wb.clauses = append(wb.clauses, clause)
	wb.args = append(wb.args, args...)
	return wb
}

// AddDateRange filters on detection creation time. Either bound may be nil
// to leave that side open.
func (wb *WhereBuilder) AddDateRange(start, end *time.Time) *WhereBuilder {
	if start != nil {
		wb.clauses = append(wb.clauses, "created_at >= ?")
		wb.args = append(wb.args, *start)
	}
	if end != nil {
		wb.clauses = append(wb.clauses, "created_at <= ?")
		wb.args = append(wb.args, *end)
	}
	return wb
}

// AddVerdict filters on the ensemble verdict. nil means no filter.
func (wb *WhereBuilder) AddVerdict(isAIGenerated *bool) *WhereBuilder {
	if isAIGenerated != nil {
		wb.clauses = append(wb.clauses, "is_ai_generated = ?")
		wb.args = append(wb.args, *isAIGenerated)
	}
	return wb
}

// AddConfidenceRange filters on ensemble confidence. Either bound may be nil.
func (wb *WhereBuilder) AddConfidenceRange(min, max *float64) *WhereBuilder {
	if min != nil {
		wb.clauses = append(wb.clauses, "confidence >= ?")
		wb.args = append(wb.args, *min)
	}
	if max != nil {
		wb.clauses = append(wb.clauses, "confidence <= ?")
		wb.args = append(wb.args, *max)
	}
	return wb
}

// AddUploadRefs filters on specific upload references (IN clause).
// An empty slice adds no filter.
func (wb *WhereBuilder) AddUploadRefs(refs []string) *WhereBuilder {
	if len(refs) == 0 {
		return wb
	}
	placeholders := make([]string, len(refs))
	for i := range refs {
		placeholders[i] = "?"
	}
	wb.clauses = append(wb.clauses, fmt.Sprintf("upload_ref IN (%s)", strings.Join(placeholders, ",")))
	for _, ref := range refs {
		wb.args = append(wb.args, ref)
	}
	return wb
}

// AddAlgorithmVersions filters on the algorithm version stamp (IN clause).
// An empty slice adds no filter.
func (wb *WhereBuilder) AddAlgorithmVersions(versions []string) *WhereBuilder {
	if len(versions) == 0 {
		return wb
	}
	placeholders := make([]string, len(versions))
	for i := range versions {
		placeholders[i] = "?"
	}
	wb.clauses = append(wb.clauses, fmt.Sprintf("algorithm_version IN (%s)", strings.Join(placeholders, ",")))
	for _, v := range versions {
		wb.args = append(wb.args, v)
	}
	return wb
}

// Build returns the combined WHERE clause and its arguments.
// Returns "1=1" with nil args when no filters were added, so callers can
// unconditionally write "WHERE " + clause.
func (wb *WhereBuilder) Build() (string, []interface{}) {
	if len(wb.clauses) == 0 {
		return "1=1", nil
	}
	return strings.Join(wb.clauses, " AND "), wb.args
}

// BuildWithPrefix returns the WHERE clause with each column qualified by a
// table alias, for queries that join summaries with method rows.
func (wb *WhereBuilder) BuildWithPrefix(prefix string) (string, []interface{}) {
	if len(wb.clauses) == 0 {
		return "1=1", nil
	}
	prefixed := make([]string, len(wb.clauses))
	for i, clause := range wb.clauses {
		prefixed[i] = prefix + "." + clause
	}
	return strings.Join(prefixed, " AND "), wb.args
}

// Count returns the number of clauses added so far.
func (wb *WhereBuilder) Count() int {
	return len(wb.clauses)
}

// IsEmpty reports whether no filters have been added.
func (wb *WhereBuilder) IsEmpty() bool {
	return len(wb.clauses) == 0
}
