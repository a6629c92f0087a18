// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

// Package query provides SQL WHERE clause building for detection summary
// queries.
//
// WhereBuilder accumulates filters fluently and produces a parameterized
// clause plus its argument slice:
//
//	wb := query.NewWhereBuilder().
//		AddDateRange(&since, nil).
//		AddVerdict(&aiOnly).
//		AddUploadRefs(refs)
//
//	clause, args := wb.Build()
//	rows, err := db.QueryContext(ctx,
//		"SELECT upload_ref, confidence FROM detection_results WHERE "+clause, args...)
//
// Build returns "1=1" when no filters were added, so the WHERE keyword can
// always be present. All values go through ? placeholders; the builder never
// interpolates caller data into SQL text.
package query
