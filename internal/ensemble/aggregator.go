// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

// Package ensemble combines heterogeneous method outcomes into one
// calibrated verdict using weighted-mean aggregation with graceful
// degradation: any subset of methods may be missing and the verdict is
// built from whatever usable evidence remains.
package ensemble

import (
	"fmt"
	"sort"

	"github.com/skygate-forensics/skygate/internal/analysis"
)

// Version identifies the aggregation algorithm revision. It is combined
// with the weight table version into Verdict.AlgorithmVersion so a
// historical verdict's combination logic stays reproducible after
// weights change.
const Version = "1.0"

const (
	// DefaultThreshold is the decision boundary on the weighted mean.
	DefaultThreshold = 0.5

	// DefaultTopFactors is how many contributing factors a verdict
	// carries when not configured otherwise.
	DefaultTopFactors = 5
)

// Config carries the tunable aggregation constants. The zero value
// selects the documented defaults, so an empty Config is always valid.
type Config struct {
	// Threshold is the confidence at or above which the verdict is
	// "AI-generated". Must be in (0,1].
	Threshold float64

	// TopFactors bounds the contributing_factors list length.
	TopFactors int
}

// DefaultConfig returns the documented default aggregation constants.
func DefaultConfig() Config {
	return Config{
		Threshold:  DefaultThreshold,
		TopFactors: DefaultTopFactors,
	}
}

// contribution pairs an outcome with its weighted influence for factor
// ranking.
type contribution struct {
	outcome analysis.MethodOutcome
	weight  float64
	value   float64 // score * weight
}

// Aggregate combines the terminal outcomes of one analysis run into a
// Verdict.
//
// Only StatusOK outcomes contribute to the confidence; failed and
// skipped outcomes are preserved verbatim in Verdict.Outcomes for audit.
// When no outcome is usable, Aggregate returns
// analysis.ErrInsufficientEvidence and no verdict; the caller must not
// substitute a default.
//
// DETERMINISM: identical outcomes and weights yield an identical verdict.
// Outcomes are ordered by method name, and factor ranking breaks
// weighted-contribution ties by method name as well.
func Aggregate(outcomes []analysis.MethodOutcome, weights analysis.WeightTable, cfg Config) (*analysis.Verdict, error) {
	if cfg.Threshold == 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.TopFactors <= 0 {
		cfg.TopFactors = DefaultTopFactors
	}

	usable := make([]contribution, 0, len(outcomes))
	for _, o := range outcomes {
		if !o.Usable() {
			continue
		}
		w := weights.Weight(o.Method)
		usable = append(usable, contribution{
			outcome: o,
			weight:  w,
			value:   o.Score * w,
		})
	}
	if len(usable) == 0 {
		return nil, analysis.ErrInsufficientEvidence
	}

	var weightedSum, totalWeight float64
	for _, c := range usable {
		weightedSum += c.value
		totalWeight += c.weight
	}
	if totalWeight == 0 {
		// Every usable method was registered with weight zero; there is
		// no evidence the operator wants counted.
		return nil, analysis.ErrInsufficientEvidence
	}

	confidence := weightedSum / totalWeight

	sorted := make([]analysis.MethodOutcome, len(outcomes))
	copy(sorted, outcomes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Method < sorted[j].Method })

	return &analysis.Verdict{
		IsAIGenerated:       confidence >= cfg.Threshold,
		Confidence:          confidence,
		ContributingFactors: rankFactors(usable, cfg.TopFactors),
		Outcomes:            sorted,
		AlgorithmVersion:    fmt.Sprintf("%s/%s", Version, weights.Version()),
	}, nil
}

// rankFactors orders usable outcomes by weighted contribution descending
// and renders the top n as human-readable factor strings. Ties are
// broken by method name so repeated runs emit identical ordering.
func rankFactors(usable []contribution, n int) []string {
	ranked := make([]contribution, len(usable))
	copy(ranked, usable)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].value != ranked[j].value {
			return ranked[i].value > ranked[j].value
		}
		return ranked[i].outcome.Method < ranked[j].outcome.Method
	})

	if n > len(ranked) {
		n = len(ranked)
	}
	factors := make([]string, 0, n)
	for _, c := range ranked[:n] {
		factors = append(factors, factorText(c.outcome))
	}
	return factors
}

// factorText renders one outcome as a contributing-factor line. The
// analyzer's own analysis text is preferred; a generic score line is the
// fallback so a factor is never empty.
func factorText(o analysis.MethodOutcome) string {
	if o.Analysis != "" {
		return fmt.Sprintf("%s: %s", o.Method.DisplayName(), o.Analysis)
	}
	return fmt.Sprintf("%s scored %.2f", o.Method.DisplayName(), o.Score)
}
