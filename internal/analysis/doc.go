// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

// Package analysis defines the shared vocabulary of the detection
// engine: the analyzer contract, the uniform MethodOutcome result unit,
// the immutable weight table, and the aggregate Verdict.
//
// Every analyzer family (metadata forensics, pixel forensics, model
// scorers) implements the Analyzer interface and encodes its own
// failures as MethodOutcome values with StatusFailed, so no error from
// one method can abort its siblings. The packages under analysis/
// contain the concrete analyzer implementations; aggregation lives in
// internal/ensemble and orchestration in internal/engine.
package analysis
