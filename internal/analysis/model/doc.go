// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

// Package model provides the classifier model registry, preprocessing,
// and the inference sidecar transport.
//
// # Overview
//
// Deep-model scoring is split into three pieces:
//
//   - Scorer: one model as a pure tensor->probability function. In-process
//     and remote models implement the same interface.
//   - Registry: the fixed, startup-populated set of scorers. Read-only
//     after initialization; its composed version stamp
//     ("resnet_nodown@1.0,vit@1.0") feeds every verdict's
//     algorithm_version.
//   - Client: HTTP transport to the inference sidecar, wrapped in a rate
//     limiter, HTTP 429 exponential backoff, and a sony/gobreaker circuit
//     breaker so a failing sidecar degrades model methods without
//     cascading.
//
// ModelAnalyzer adapts one registered model to the analysis.Analyzer
// contract: decode, Catmull-Rom resize to 224x224, ImageNet-normalize,
// invoke, and map errors to failed outcomes so sibling analyzers are
// never suppressed.
//
// # Wire Protocol
//
// The sidecar speaks JSON over HTTP:
//
//	POST /v1/score  {"model": "vit", "shape": [3,224,224], "data": [...]}
//	  -> {"probability": 0.92, "model": "vit", "version": "1.0"}
//	GET  /v1/health -> 200
//
// Registering a new model touches only registry population in main;
// aggregation logic never changes.
package model
