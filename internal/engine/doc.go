// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

// Package engine orchestrates detection runs across the registered
// analyzer families.
//
// # Overview
//
// One run fans every registered analyzer out concurrently (bounded by
// ENGINE_PARALLELISM), waits for each to reach a terminal outcome, and
// combines the usable scores through the ensemble aggregator:
//
//	engine := engine.New(&cfg.Engine, weights)
//	engine.Register(metadata.NewAnalyzer(metaCfg))
//	engine.Register(pixel.NewPRNU(prnuCfg))
//	// ...
//	verdict, err := engine.RunDetection(ctx, input)
//
// # Failure Policy
//
// Individual analyzers never abort a run: panics, inference errors, and
// per-analyzer timeouts all become failed outcomes and the remaining
// analyzers continue. Two cases are hard failures for the caller:
//
//   - Caller cancellation: in-flight work is signaled to stop and partial
//     results are discarded, not persisted.
//   - analysis.ErrInsufficientEvidence: zero methods produced a usable
//     score, so no verdict exists.
//
// An analyzer still running when the per-run deadline (ENGINE_RUN_TIMEOUT)
// expires is recorded as failed with a timeout reason; the run aggregates
// what it has rather than blocking on stragglers.
//
// # Determinism
//
// Scheduling order never affects the verdict: outcomes are keyed by
// method, the aggregator sorts by method name, and factor ties break by
// method name. Identical inputs with identical registrations produce
// identical verdicts regardless of goroutine interleaving.
package engine
