// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

// Package pixel implements the three pixel-domain forensic signals:
// sensor-pattern-noise consistency (prnu), compression-error-level
// consistency (ela), and texture-smoothness uniformity (texture).
//
// Each signal is an independent analyzer so the orchestrator can run
// them concurrently and one signal's failure never suppresses the
// others. Inputs that lack the property a signal measures (non-image
// containers, lossless sources for ela, images too small to tile)
// produce skipped outcomes with a reason, never fabricated scores.
package pixel

import (
	"errors"
	"time"

	"github.com/skygate-forensics/skygate/internal/analysis"
)

// terminalDecodeOutcome maps a raster decode failure to the correct
// terminal state: unknown containers are skips (the input lacks the
// measured property), recognized-but-corrupt streams are failures.
func terminalDecodeOutcome(m analysis.Method, err error, elapsed time.Duration) analysis.MethodOutcome {
	if errors.Is(err, analysis.ErrUnsupportedFormat) {
		return analysis.Skipped(m, "unsupported container for pixel analysis", elapsed)
	}
	return analysis.Failed(m, err.Error(), elapsed)
}
