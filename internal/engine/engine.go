// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/skygate-forensics/skygate/internal/analysis"
	"github.com/skygate-forensics/skygate/internal/config"
	"github.com/skygate-forensics/skygate/internal/ensemble"
	"github.com/skygate-forensics/skygate/internal/logging"
)

// Default orchestration budgets, used when configuration leaves a field
// zero.
const (
	DefaultParallelism   = 6
	DefaultMethodTimeout = 30 * time.Second
	DefaultRunTimeout    = 2 * time.Minute
)

// Engine orchestrates one detection run: it fans registered analyzers out
// with bounded parallelism, collects their terminal outcomes, and hands
// them to the ensemble aggregator.
//
// Analyzers are registered during startup; after that the engine is
// read-only and RunDetection is safe for concurrent use.
type Engine struct {
	parallelism   int
	methodTimeout time.Duration
	runTimeout    time.Duration
	ensembleCfg   ensemble.Config

	weights   analysis.WeightTable
	analyzers []analysis.Analyzer

	// claimed maps each method to the analyzer that emits it, so a
	// second registration of the same method fails loudly instead of
	// double-counting evidence.
	claimed map[analysis.Method]string
}

// New creates an engine with the given orchestration configuration and
// weight table. A nil config selects the documented defaults.
func New(cfg *config.EngineConfig, weights analysis.WeightTable) *Engine {
	e := &Engine{
		parallelism:   DefaultParallelism,
		methodTimeout: DefaultMethodTimeout,
		runTimeout:    DefaultRunTimeout,
		ensembleCfg:   ensemble.DefaultConfig(),
		weights:       weights,
		claimed:       make(map[analysis.Method]string),
	}
	if cfg == nil {
		return e
	}

	if cfg.Parallelism > 0 {
		e.parallelism = cfg.Parallelism
	}
	if cfg.MethodTimeout > 0 {
		e.methodTimeout = cfg.MethodTimeout
	}
	if cfg.RunTimeout > 0 {
		e.runTimeout = cfg.RunTimeout
	}
	if cfg.Threshold > 0 {
		e.ensembleCfg.Threshold = cfg.Threshold
	}
	if cfg.TopFactors > 0 {
		e.ensembleCfg.TopFactors = cfg.TopFactors
	}
	return e
}

// Register adds an analyzer to the fan-out. Each detection method may be
// claimed by exactly one analyzer.
func (e *Engine) Register(a analysis.Analyzer) error {
	if a == nil {
		return fmt.Errorf("register analyzer: analyzer is nil")
	}
	methods := a.Methods()
	if len(methods) == 0 {
		return fmt.Errorf("register analyzer %q: no methods declared", a.Name())
	}

	for _, m := range methods {
		if owner, taken := e.claimed[m]; taken {
			return fmt.Errorf("register analyzer %q: method %q already registered by %q", a.Name(), m, owner)
		}
	}
	for _, m := range methods {
		e.claimed[m] = a.Name()
	}
	e.analyzers = append(e.analyzers, a)

	logging.Debug().Str("analyzer", a.Name()).Int("methods", len(methods)).Msg("Analyzer registered")
	return nil
}

// Analyzers returns the registered analyzer names in registration order.
func (e *Engine) Analyzers() []string {
	names := make([]string, len(e.analyzers))
	for i, a := range e.analyzers {
		names[i] = a.Name()
	}
	return names
}

// Methods returns every claimed detection method in ascending name order.
func (e *Engine) Methods() []analysis.Method {
	out := make([]analysis.Method, 0, len(e.claimed))
	for m := range e.claimed {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Weights returns the weight table the engine aggregates with.
func (e *Engine) Weights() analysis.WeightTable {
	return e.weights
}
