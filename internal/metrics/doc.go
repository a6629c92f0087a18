// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

/*
Package metrics provides Prometheus metrics collection and export for observability.

This package implements application instrumentation using the Prometheus client
library, exposing metrics for detection throughput, analyzer behavior, storage
health, and inference-backend availability.

# Overview

The package provides metrics for:
  - Detection method duration and terminal statuses
  - Ensemble verdict distribution and confidence scores
  - DuckDB query performance and connection pool usage
  - Badger detail persistence and value-log GC
  - Inference request latency and circuit breaker state
  - Intake spool depth and processing results
  - Event publishing outcomes

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:3857/metrics

# Available Metrics

Detection Metrics:
  - detection_method_duration_seconds: Per-method analysis latency (histogram)
    Labels: method
  - detection_method_outcomes_total: Terminal method statuses (counter)
    Labels: method, status (ok, failed, skipped)
  - detection_runs_total: Completed runs (counter)
    Labels: result (verdict, insufficient_evidence, error)
  - detection_run_duration_seconds: End-to-end run latency (histogram)

Ensemble Metrics:
  - ensemble_verdicts_total: Verdict classifications (counter)
    Labels: verdict (ai_generated, authentic)
  - ensemble_confidence_score: Confidence distribution (histogram)
    Buckets: 0.1 .. 1.0

Database Metrics:
  - duckdb_query_duration_seconds: Query execution time (histogram)
    Labels: operation, table
  - duckdb_query_errors_total: Failed queries (counter)
    Labels: operation, table, error_type
  - duckdb_connection_pool_size: Connections in use (gauge)

Persistence Metrics:
  - persistence_operations_total: Store writes and reads (counter)
    Labels: store (duckdb, badger), operation, status
  - orphaned_detail_documents: Details without summary rows (gauge)
  - badger_value_log_gc_runs_total: GC cycles (counter)
    Labels: result (reclaimed, noop, error)

Inference Metrics:
  - inference_requests_total: Model scoring requests (counter)
    Labels: model, status
  - inference_request_duration_seconds: Scoring latency (histogram)
    Labels: model

Circuit Breaker Metrics:
  - circuit_breaker_state: Current state (gauge)
    Labels: name
    Values: 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total: Requests through breaker (counter)
    Labels: name, result (success, failure, rejected)
  - circuit_breaker_consecutive_failures: Failure streak (gauge)
    Labels: name
  - circuit_breaker_state_transitions_total: State changes (counter)
    Labels: name, from_state, to_state

Intake Metrics:
  - spool_queue_depth: Artifacts waiting in the spool (gauge)
  - spool_files_processed_total: Processed artifacts (counter)
    Labels: result (completed, failed)

Event Metrics:
  - events_published_total: Published events (counter)
    Labels: topic, status

System Metrics:
  - app_info: Version information (gauge, always 1)
    Labels: version, go_version
  - app_uptime_seconds: Process uptime (gauge)

# Usage

Metrics are recorded through helper functions:

	start := time.Now()
	outcomes := analyzer.Analyze(ctx, input)
	for _, o := range outcomes {
		metrics.RecordAnalysis(string(o.Method), string(o.Status), o.Elapsed)
	}
	metrics.RecordDBQuery("insert", "detection_results", time.Since(start), err)

All collectors are registered with the default Prometheus registry via
promauto at package initialization.
*/
package metrics
