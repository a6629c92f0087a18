// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

// Package ops provides the operational HTTP listener: liveness and
// readiness probes plus the Prometheus metrics endpoint. It carries no
// product API; the detection engine is driven through the spool intake
// and the one-shot CLI, not over HTTP.
package ops
