// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

// Package store persists detection results across two embedded stores.
//
// # Overview
//
// Every detection run produces one verdict, recorded twice:
//
//   - A structured summary row in DuckDB (DuckDBStore): verdict, confidence,
//     algorithm version, and flattened per-method rows, everything an
//     operator filters, counts, or aggregates with SQL.
//   - A full nested forensic report in BadgerDB (BadgerStore): the complete
//     verdict with every method outcome, its analysis text, and its
//     structured detail payload, stored as one JSON document.
//
// Both records share a reference key (a UUID minted at persist time) and
// results are append-only history: re-analyzing an upload adds rows, it
// never updates them.
//
// # Write ordering
//
// The Assembler writes the summary first. If the summary write fails the
// detail write is never attempted and Persist returns a PersistenceError
// with stage "summary". If the summary commits and the detail write fails,
// Persist returns the committed summary together with a stage "detail"
// error: the result exists and is readable in degraded form, and
// ReconcileOrphans reports such results until their details are rewritten.
//
// DuckDB also carries the detection_methods registry: per-method ensemble
// weights and enablement, seeded with calibrated defaults on first start
// and tunable at runtime. WeightTable turns the registry into the table
// the ensemble combines with; its version hash is embedded in every
// verdict's algorithm_version.
package store
