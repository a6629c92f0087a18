// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

package analysis

import "errors"

// ErrInsufficientEvidence is returned when zero analyzers produced a
// usable score. This is the one analysis failure the caller must treat
// as hard: the engine never fabricates a verdict from no evidence.
var ErrInsufficientEvidence = errors.New("insufficient evidence: no method produced a usable score")

// ErrUnsupportedFormat is returned by raster decoding when the input is
// not a container the pixel-domain analyzers can read. Analyzers map it
// to a skipped outcome, not a failure.
var ErrUnsupportedFormat = errors.New("unsupported image format")
