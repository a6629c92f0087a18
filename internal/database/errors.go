// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

package database

import "io"

// closeQuietly closes a resource, ignoring any error.
// Used during error cleanup paths where the original error takes precedence.
func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}
