// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

package analysis

import (
	"context"
	"sort"
	"time"

	"github.com/goccy/go-json"
)

// Method identifies one detection method. Method names are stable
// identifiers: they appear in persisted results, metric labels, and the
// weight registry, and must never be renamed once released.
type Method string

const (
	// MethodVit is the patch-based vision transformer classifier.
	MethodVit Method = "vit"

	// MethodResNetNoDown is the GAN-artifact convolutional classifier
	// (ResNet50 variant without downsampling in the first layer).
	MethodResNetNoDown Method = "resnet_nodown"

	// MethodMetadata is the embedded file metadata forensics analyzer.
	MethodMetadata Method = "metadata"

	// MethodPRNU is the sensor-pattern-noise consistency signal.
	MethodPRNU Method = "prnu"

	// MethodELA is the compression-error-level consistency signal.
	MethodELA Method = "ela"

	// MethodTexture is the texture-smoothness uniformity signal.
	MethodTexture Method = "texture"
)

// KnownMethods returns the built-in methods in their canonical order.
// The order is used for method registry seeding and stable tie-breaks.
func KnownMethods() []Method {
	return []Method{
		MethodVit,
		MethodResNetNoDown,
		MethodMetadata,
		MethodPRNU,
		MethodELA,
		MethodTexture,
	}
}

// DisplayName returns the human-readable name for a method, used in
// result summaries and contributing factor text.
func (m Method) DisplayName() string {
	switch m {
	case MethodVit:
		return "Vision Transformer"
	case MethodResNetNoDown:
		return "ResNet50 NoDown"
	case MethodMetadata:
		return "Metadata Forensics"
	case MethodPRNU:
		return "Sensor Noise (PRNU)"
	case MethodELA:
		return "Error Level Analysis"
	case MethodTexture:
		return "Texture Smoothness"
	default:
		return string(m)
	}
}

// DefaultWeights returns the calibrated ensemble weight for each built-in
// method. These match the shipped method registry seed values; operators
// tune them through the registry, not by editing this table.
func DefaultWeights() map[Method]float64 {
	return map[Method]float64{
		MethodMetadata:     0.15,
		MethodELA:          0.20,
		MethodPRNU:         0.20,
		MethodTexture:      0.15,
		MethodVit:          0.15,
		MethodResNetNoDown: 0.15,
	}
}

// Status is the terminal state of one method invocation.
type Status string

const (
	// StatusOK means the method produced a usable score in [0,1].
	StatusOK Status = "ok"

	// StatusFailed means the method could not produce a score
	// (extraction error, model unavailable, timeout, panic).
	StatusFailed Status = "failed"

	// StatusSkipped means the input lacks the property the method
	// measures (e.g. lossless source for compression analysis).
	StatusSkipped Status = "skipped"
)

// Input describes the artifact under test. It is owned by the caller and
// treated as read-only by every analyzer; concurrent analyzers receive
// the same value and must never mutate Data.
type Input struct {
	// UploadRef is the caller's reference for the stored upload.
	UploadRef string

	// Filename is the original client-supplied file name.
	Filename string

	// MIME is the declared content type (e.g. "image/jpeg").
	MIME string

	// Data is the complete artifact byte stream.
	Data []byte
}

// MethodOutcome is the uniform result unit emitted by every analyzer
// invocation. Score is meaningful only when Status is StatusOK; failed
// and skipped outcomes carry a Reason instead and are excluded from
// score combination but still recorded for audit.
type MethodOutcome struct {
	Method   Method          `json:"method_name"`
	Score    float64         `json:"score"`
	Status   Status          `json:"status"`
	Reason   string          `json:"reason,omitempty"`
	Analysis string          `json:"analysis,omitempty"`
	Detail   json.RawMessage `json:"detail,omitempty"`
	Elapsed  time.Duration   `json:"elapsed_ns"`
}

// Usable reports whether the outcome contributes to score combination.
func (o MethodOutcome) Usable() bool {
	return o.Status == StatusOK
}

// Succeeded builds an ok outcome. The detail value is serialized
// immediately; a non-serializable detail degrades the outcome to failed
// rather than dropping the run.
func Succeeded(m Method, score float64, analysis string, detail any, elapsed time.Duration) MethodOutcome {
	raw, err := json.Marshal(detail)
	if err != nil {
		return Failed(m, "encode detail: "+err.Error(), elapsed)
	}
	return MethodOutcome{
		Method:   m,
		Score:    clampUnit(score),
		Status:   StatusOK,
		Analysis: analysis,
		Detail:   raw,
		Elapsed:  elapsed,
	}
}

// Failed builds a failed outcome carrying the reason the method could
// not score. Failed outcomes never abort sibling analyzers.
func Failed(m Method, reason string, elapsed time.Duration) MethodOutcome {
	return MethodOutcome{
		Method:  m,
		Status:  StatusFailed,
		Reason:  reason,
		Elapsed: elapsed,
	}
}

// Skipped builds a skipped outcome for inputs that lack the property the
// method measures. A skip is not a failure: it is the expected terminal
// state for inapplicable inputs.
func Skipped(m Method, reason string, elapsed time.Duration) MethodOutcome {
	return MethodOutcome{
		Method:  m,
		Status:  StatusSkipped,
		Reason:  reason,
		Elapsed: elapsed,
	}
}

// clampUnit clamps v into [0,1]. Analyzer calibrations can overshoot at
// the extremes; persisted scores must stay in range.
func clampUnit(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// Analyzer is the single contract every detection method family
// implements. Analyze must always return one terminal outcome per method
// listed by Methods, encoding its own failures as StatusFailed outcomes
// instead of returning errors across the component boundary.
//
// Analyze must honor ctx cancellation promptly where practical; the
// orchestrator additionally records a failed outcome for any analyzer
// that outlives the per-run deadline.
type Analyzer interface {
	// Name identifies the analyzer in logs and registration checks.
	Name() string

	// Methods lists the method outcomes this analyzer emits.
	Methods() []Method

	// Analyze produces one terminal MethodOutcome per declared method.
	Analyze(ctx context.Context, in Input) []MethodOutcome
}

// DefaultWeight is applied to any method without a registered weight.
const DefaultWeight = 1.0

// WeightTable is an immutable method-to-weight mapping handed to the
// aggregator. Weights are non-negative and need not sum to 1; the
// aggregator normalizes at combination time.
//
// DETERMINISM: the table is copied at construction and never mutated, so
// concurrent reads during the analyzer fan-out need no locking.
type WeightTable struct {
	version string
	weights map[Method]float64
}

// NewWeightTable builds a table from the given mapping. The version
// string identifies the weight configuration (e.g. "builtin" or a
// registry revision) and is stamped into every verdict produced with it.
// Negative weights are clamped to zero.
func NewWeightTable(version string, weights map[Method]float64) WeightTable {
	cp := make(map[Method]float64, len(weights))
	for m, w := range weights {
		if w < 0 {
			w = 0
		}
		cp[m] = w
	}
	return WeightTable{version: version, weights: cp}
}

// Weight returns the registered weight for m, or DefaultWeight when the
// method has no registration.
func (t WeightTable) Weight(m Method) float64 {
	if w, ok := t.weights[m]; ok {
		return w
	}
	return DefaultWeight
}

// Registered reports whether m has an explicit weight.
func (t WeightTable) Registered(m Method) bool {
	_, ok := t.weights[m]
	return ok
}

// WithVersion returns a table with the same weights under a new version
// identifier. The composition root uses it to stamp the model registry
// version onto the stored weight revision, so algorithm_version pins both
// the combination weights and the deployed model builds.
func (t WeightTable) WithVersion(version string) WeightTable {
	return WeightTable{version: version, weights: t.weights}
}

// Version returns the weight configuration identifier.
func (t WeightTable) Version() string {
	return t.version
}

// Methods returns the registered methods in ascending name order.
func (t WeightTable) Methods() []Method {
	out := make([]Method, 0, len(t.weights))
	for m := range t.weights {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Verdict is the aggregate detection result. It is created once per
// analysis run, is immutable after creation, and is the only value that
// crosses the engine boundary for persistence. Persisted verdicts are
// append-only history; a re-analysis produces a new verdict rather than
// updating an old one.
type Verdict struct {
	IsAIGenerated       bool            `json:"is_ai_generated"`
	Confidence          float64         `json:"confidence_score"`
	ContributingFactors []string        `json:"contributing_factors"`
	Outcomes            []MethodOutcome `json:"method_outcomes"`
	AlgorithmVersion    string          `json:"algorithm_version"`
	CreatedAt           time.Time       `json:"created_at"`
	Elapsed             time.Duration   `json:"elapsed_ns"`
}
