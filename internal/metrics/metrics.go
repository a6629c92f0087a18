// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Detection Method Metrics
	AnalysisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "detection_method_duration_seconds",
			Help:    "Duration of individual detection method runs in seconds",
			Buckets: prometheus.DefBuckets, // 0.005s .. 10s
		},
		[]string{"method"},
	)

	AnalysisOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "detection_method_outcomes_total",
			Help: "Total number of detection method outcomes by terminal status",
		},
		[]string{"method", "status"}, // status: "ok", "failed", "skipped"
	)

	// Detection Run Metrics
	DetectionRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "detection_runs_total",
			Help: "Total number of detection runs by result",
		},
		[]string{"result"}, // "verdict", "insufficient_evidence", "error"
	)

	DetectionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "detection_run_duration_seconds",
			Help:    "End-to-end duration of detection runs in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	// Ensemble Metrics
	EnsembleVerdicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ensemble_verdicts_total",
			Help: "Total number of ensemble verdicts by classification",
		},
		[]string{"verdict"}, // "ai_generated", "authentic"
	)

	EnsembleConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ensemble_confidence_score",
			Help:    "Distribution of ensemble confidence scores",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
		},
	)

	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	DBConnectionPoolSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "duckdb_connection_pool_size",
			Help: "Current number of database connections in use",
		},
	)

	// Persistence Metrics
	PersistenceOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "persistence_operations_total",
			Help: "Total number of persistence operations by store and result",
		},
		[]string{"store", "operation", "status"}, // store: "duckdb", "badger"
	)

	OrphanedDetails = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "orphaned_detail_documents",
			Help: "Detection summaries missing their detail document, per last reconciliation",
		},
	)

	BadgerGCRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "badger_value_log_gc_runs_total",
			Help: "Total number of Badger value-log GC cycles",
		},
		[]string{"result"}, // "reclaimed", "noop", "error"
	)

	// Inference Metrics
	InferenceRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inference_requests_total",
			Help: "Total number of model inference requests",
		},
		[]string{"model", "status"}, // status: "success", "failure"
	)

	InferenceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inference_request_duration_seconds",
			Help:    "Duration of model inference requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Intake Metrics
	SpoolQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "spool_queue_depth",
			Help: "Artifacts waiting in the intake spool directory",
		},
	)

	SpoolFilesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spool_files_processed_total",
			Help: "Total number of spool artifacts processed by result",
		},
		[]string{"result"}, // "completed", "failed"
	)

	// Event Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of events published by topic and result",
		},
		[]string{"topic", "status"}, // status: "success", "failure"
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordAnalysis records one detection method outcome.
func RecordAnalysis(method, status string, duration time.Duration) {
	AnalysisDuration.WithLabelValues(method).Observe(duration.Seconds())
	AnalysisOutcomes.WithLabelValues(method, status).Inc()
}

// RecordVerdict records an aggregated ensemble verdict.
func RecordVerdict(isAIGenerated bool, confidence float64) {
	verdict := "authentic"
	if isAIGenerated {
		verdict = "ai_generated"
	}
	EnsembleVerdicts.WithLabelValues(verdict).Inc()
	EnsembleConfidence.Observe(confidence)
}

// RecordDBQuery records a database query metric.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordPersistence records a persistence operation result.
func RecordPersistence(store, operation string, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	PersistenceOps.WithLabelValues(store, operation, status).Inc()
}

// RecordInference records one model inference request.
func RecordInference(model string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	InferenceRequests.WithLabelValues(model, status).Inc()
	InferenceDuration.WithLabelValues(model).Observe(duration.Seconds())
}

// RecordEventPublish records an event publish attempt.
func RecordEventPublish(topic string, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	EventsPublished.WithLabelValues(topic, status).Inc()
}
