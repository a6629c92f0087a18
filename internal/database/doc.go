// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

// Package database manages the embedded DuckDB connection used for the
// relational summary store.
//
// # Overview
//
// DuckDB runs in-process with the engine; there is no external database
// server. This package owns the connection lifecycle:
//
//   - Opening the database file with tuned settings (thread count, memory
//     cap, insertion-order preservation)
//   - Connection pool configuration
//   - WAL checkpointing, both on demand and before close
//
// Schema creation and queries belong to the callers. The store package
// obtains the raw *sql.DB through Conn and manages its own tables.
//
// # Configuration
//
// Settings come from config.DatabaseConfig:
//
//	DUCKDB_PATH                     Database file path (default /data/skygate.duckdb)
//	DUCKDB_MAX_MEMORY               Memory cap (default 2GB)
//	DUCKDB_THREADS                  Worker threads, 0 = NumCPU (default 0)
//	DUCKDB_PRESERVE_INSERTION_ORDER Result ordering vs memory tradeoff (default true)
//
// Extension auto-install and auto-load are disabled in the connection
// string: the engine needs no DuckDB extensions, and probing for them can
// hang in network-restricted deployments.
//
// # Usage
//
//	db, err := database.New(&cfg.Database)
//	if err != nil {
//		return err
//	}
//	defer db.Close()
//
//	summaries := store.NewDuckDBStore(db.Conn())
//
// Close performs a best-effort CHECKPOINT so the WAL is folded into the
// main database file before shutdown.
package database
