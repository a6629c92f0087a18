// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/skygate-forensics/skygate/internal/analysis"
	"github.com/skygate-forensics/skygate/internal/ensemble"
	"github.com/skygate-forensics/skygate/internal/logging"
	"github.com/skygate-forensics/skygate/internal/metrics"
)

// analyzerResult carries one analyzer's normalized outcomes back to the
// collector, tagged with its registration index.
type analyzerResult struct {
	idx  int
	outs []analysis.MethodOutcome
}

// RunDetection executes the full analyzer fan-out against the input and
// aggregates the outcomes into a verdict.
//
// Analyzer failures degrade, they never abort: every analyzer reaches a
// terminal outcome (ok, failed, skipped) and aggregation runs over
// whatever usable evidence remains. The two hard failure modes are
// caller cancellation (partial results are discarded, nothing is
// returned) and analysis.ErrInsufficientEvidence (zero usable scores).
//
// Analyzers still running when the per-run deadline expires are recorded
// as failed with a timeout reason; their goroutines drain into a buffered
// channel and are never joined on.
func (e *Engine) RunDetection(ctx context.Context, in analysis.Input) (*analysis.Verdict, error) {
	start := time.Now()

	if len(e.analyzers) == 0 {
		metrics.DetectionRuns.WithLabelValues("insufficient_evidence").Inc()
		return nil, analysis.ErrInsufficientEvidence
	}

	runCtx, cancel := context.WithTimeout(ctx, e.runTimeout)
	defer cancel()

	// Buffered to analyzer count so stragglers finishing after the
	// deadline never block on send.
	resultCh := make(chan analyzerResult, len(e.analyzers))

	group, groupCtx := errgroup.WithContext(runCtx)
	group.SetLimit(e.parallelism)

	// group.Go blocks once the limit is reached, so launching happens off
	// the collector goroutine.
	go func() {
		for idx, a := range e.analyzers {
			idx, a := idx, a
			group.Go(func() error {
				resultCh <- analyzerResult{idx: idx, outs: e.runAnalyzer(groupCtx, a, in)}
				return nil
			})
		}
	}()

	collected := make([][]analysis.MethodOutcome, len(e.analyzers))
	received := 0

collect:
	for received < len(e.analyzers) {
		select {
		case r := <-resultCh:
			collected[r.idx] = r.outs
			received++
		case <-runCtx.Done():
			break collect
		}
	}

	// Results that landed in the buffer concurrently with the deadline
	// are completed work, not stragglers.
drain:
	for received < len(e.analyzers) {
		select {
		case r := <-resultCh:
			collected[r.idx] = r.outs
			received++
		default:
			break drain
		}
	}

	// Caller abort: discard partial results, persist nothing.
	if err := ctx.Err(); err != nil {
		metrics.DetectionRuns.WithLabelValues("error").Inc()
		logging.Warn().Str("upload_ref", in.UploadRef).Int("completed", received).Msg("Detection cancelled by caller")
		return nil, fmt.Errorf("detection cancelled: %w", err)
	}

	// Engine deadline: synthesize failed outcomes for everything still
	// in flight so the run stays auditable.
	if received < len(e.analyzers) {
		reason := fmt.Sprintf("analysis timed out after %s", e.runTimeout)
		for idx, a := range e.analyzers {
			if collected[idx] != nil {
				continue
			}
			collected[idx] = failedOutcomes(a.Methods(), reason, e.runTimeout)
			for _, o := range collected[idx] {
				metrics.RecordAnalysis(string(o.Method), string(o.Status), o.Elapsed)
			}
			logging.Warn().Str("analyzer", a.Name()).Str("upload_ref", in.UploadRef).Msg("Analyzer exceeded run deadline")
		}
	}

	outcomes := make([]analysis.MethodOutcome, 0, len(e.claimed))
	for _, outs := range collected {
		outcomes = append(outcomes, outs...)
	}

	verdict, err := ensemble.Aggregate(outcomes, e.weights, e.ensembleCfg)
	elapsed := time.Since(start)
	metrics.DetectionDuration.Observe(elapsed.Seconds())

	if err != nil {
		if errors.Is(err, analysis.ErrInsufficientEvidence) {
			metrics.DetectionRuns.WithLabelValues("insufficient_evidence").Inc()
			logging.Error().Str("upload_ref", in.UploadRef).Int("methods", len(outcomes)).Dur("elapsed", elapsed).Msg("Detection produced no usable evidence")
		} else {
			metrics.DetectionRuns.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	verdict.CreatedAt = time.Now().UTC()
	verdict.Elapsed = elapsed

	metrics.DetectionRuns.WithLabelValues("verdict").Inc()
	metrics.RecordVerdict(verdict.IsAIGenerated, verdict.Confidence)

	logging.Info().
		Str("upload_ref", in.UploadRef).
		Bool("is_ai_generated", verdict.IsAIGenerated).
		Float64("confidence", verdict.Confidence).
		Int("methods_total", len(verdict.Outcomes)).
		Int("methods_usable", usableCount(verdict.Outcomes)).
		Str("algorithm_version", verdict.AlgorithmVersion).
		Dur("elapsed", elapsed).
		Msg("Detection completed")

	return verdict, nil
}

// runAnalyzer executes one analyzer under its per-method budget with
// panic isolation, then normalizes its outcomes against the declared
// method list.
func (e *Engine) runAnalyzer(ctx context.Context, a analysis.Analyzer, in analysis.Input) (outs []analysis.MethodOutcome) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			elapsed := time.Since(start)
			logging.Error().Str("analyzer", a.Name()).Str("upload_ref", in.UploadRef).Interface("panic", r).Msg("Analyzer panicked")
			outs = failedOutcomes(a.Methods(), fmt.Sprintf("analyzer panic: %v", r), elapsed)
			for _, o := range outs {
				metrics.RecordAnalysis(string(o.Method), string(o.Status), o.Elapsed)
			}
		}
	}()

	methodCtx, cancel := context.WithTimeout(ctx, e.methodTimeout)
	defer cancel()

	outs = e.normalize(a, a.Analyze(methodCtx, in), start)
	for _, o := range outs {
		metrics.RecordAnalysis(string(o.Method), string(o.Status), o.Elapsed)
	}
	return outs
}

// normalize guarantees exactly one terminal outcome per declared method:
// missing methods get synthesized failures, undeclared extras are dropped
// with a warning.
func (e *Engine) normalize(a analysis.Analyzer, outs []analysis.MethodOutcome, start time.Time) []analysis.MethodOutcome {
	declared := a.Methods()
	declaredSet := make(map[analysis.Method]bool, len(declared))
	for _, m := range declared {
		declaredSet[m] = true
	}

	byMethod := make(map[analysis.Method]analysis.MethodOutcome, len(outs))
	for _, o := range outs {
		if !declaredSet[o.Method] {
			logging.Warn().Str("analyzer", a.Name()).Str("method", string(o.Method)).Msg("Dropping outcome for undeclared method")
			continue
		}
		byMethod[o.Method] = o
	}

	normalized := make([]analysis.MethodOutcome, 0, len(declared))
	for _, m := range declared {
		if o, ok := byMethod[m]; ok {
			normalized = append(normalized, o)
			continue
		}
		normalized = append(normalized, analysis.Failed(m, "analyzer emitted no outcome", time.Since(start)))
	}
	return normalized
}

// failedOutcomes builds one failed outcome per method with a shared
// reason.
func failedOutcomes(methods []analysis.Method, reason string, elapsed time.Duration) []analysis.MethodOutcome {
	outs := make([]analysis.MethodOutcome, 0, len(methods))
	for _, m := range methods {
		outs = append(outs, analysis.Failed(m, reason, elapsed))
	}
	return outs
}

func usableCount(outcomes []analysis.MethodOutcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Usable() {
			n++
		}
	}
	return n
}
