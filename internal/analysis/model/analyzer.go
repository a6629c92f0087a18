// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

package model

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/skygate-forensics/skygate/internal/analysis"
	"github.com/skygate-forensics/skygate/internal/analysis/raster"
)

// ModelAnalyzer runs one registered model as a detection method. Each
// model gets its own analyzer so the orchestrator fans models out
// concurrently, exactly like the independent pixel signals; preprocessing
// happens inside the analyzer, keeping it isolated per model.
type ModelAnalyzer struct {
	id       string
	registry *Registry
	pre      *Preprocessor
}

// NewModelAnalyzer wraps the model registered under id. The id must name
// a registered model by the time Analyze is called; unknown ids produce
// failed outcomes, not panics.
func NewModelAnalyzer(registry *Registry, id string) *ModelAnalyzer {
	return &ModelAnalyzer{
		id:       id,
		registry: registry,
		pre:      NewPreprocessor(),
	}
}

// Analyzers returns one analyzer per registered model, in id order.
func Analyzers(registry *Registry) []analysis.Analyzer {
	ids := registry.Models()
	out := make([]analysis.Analyzer, 0, len(ids))
	for _, id := range ids {
		out = append(out, NewModelAnalyzer(registry, id))
	}
	return out
}

// Name identifies the analyzer in logs.
func (a *ModelAnalyzer) Name() string { return "model-" + a.id }

// Methods lists the single method this analyzer emits.
func (a *ModelAnalyzer) Methods() []analysis.Method {
	return []analysis.Method{analysis.Method(a.id)}
}

// modelDetail is the persisted forensic detail for a model invocation.
type modelDetail struct {
	Model        string  `json:"model"`
	Version      string  `json:"version"`
	Probability  float64 `json:"probability"`
	InputShape   []int   `json:"input_shape"`
	SourceFormat string  `json:"source_format,omitempty"`
}

// Analyze decodes and preprocesses the input, invokes the model, and maps
// the result to a terminal outcome. Inference errors (sidecar down, open
// breaker, timeout) become failed outcomes so sibling analyzers continue.
func (a *ModelAnalyzer) Analyze(ctx context.Context, in analysis.Input) []analysis.MethodOutcome {
	method := analysis.Method(a.id)
	start := time.Now()

	img, format, err := raster.Decode(in.Data)
	if err != nil {
		if errors.Is(err, analysis.ErrUnsupportedFormat) {
			return []analysis.MethodOutcome{analysis.Skipped(method, "unsupported container for model inference", time.Since(start))}
		}
		return []analysis.MethodOutcome{analysis.Failed(method, "decode image: "+err.Error(), time.Since(start))}
	}

	tensor := a.pre.Preprocess(img)

	scorer, ok := a.registry.Lookup(a.id)
	if !ok {
		return []analysis.MethodOutcome{analysis.Failed(method, ErrUnknownModel.Error(), time.Since(start))}
	}

	probability, err := scorer.Score(ctx, tensor)
	elapsed := time.Since(start)
	if err != nil {
		return []analysis.MethodOutcome{analysis.Failed(method, "model inference: "+err.Error(), elapsed)}
	}

	detail := modelDetail{
		Model:        a.id,
		Version:      scorer.Version(),
		Probability:  probability,
		InputShape:   tensor.Shape,
		SourceFormat: format,
	}
	text := fmt.Sprintf("%s assigns probability %.3f that the image is AI-generated", scorer.DisplayName(), probability)

	return []analysis.MethodOutcome{analysis.Succeeded(method, probability, text, detail, elapsed)}
}
