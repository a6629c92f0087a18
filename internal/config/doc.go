// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

/*
Package config provides centralized configuration management for SkyGate.

This package handles loading, validation, and parsing of configuration for all
application components. It layers built-in defaults, an optional YAML file, and
environment variables, with later sources overriding earlier ones.

# Configuration Sources

The package reads configuration from:
  - Built-in defaults (always present)
  - YAML config file (config.yaml, or CONFIG_PATH override)
  - Environment variables (highest priority)

# Configuration Structure

The package organizes configuration into logical groups:

  - DatabaseConfig: DuckDB summary store tuning
  - DocumentsConfig: Badger detail document store and GC
  - EngineConfig: Fan-out, timeouts, ensemble threshold, method weights
  - MetadataConfig: Generator signature list for the EXIF analyzer
  - PixelConfig: Tiling and ELA recompression settings
  - ModelsConfig: Inference sidecar connection and rate limiting
  - IngestConfig: Spool directory intake
  - OpsConfig: Health and metrics listener
  - EventsConfig: NATS JetStream detection events
  - LoggingConfig: Log levels and output format

# Environment Variables

Selected variables by component:

Database (DatabaseConfig):
  - DUCKDB_PATH: Database file path (default: /data/skygate.duckdb)
  - DUCKDB_MAX_MEMORY: Memory limit (default: 2GB)
  - DUCKDB_THREADS: Thread count, 0 = all cores (default: 0)

Documents (DocumentsConfig):
  - BADGER_PATH: Document store directory (default: /data/details)
  - BADGER_GC_INTERVAL: Value-log GC cadence (default: 10m)

Engine (EngineConfig):
  - ENGINE_PARALLELISM: Concurrent analyzer limit (default: 6)
  - ENGINE_METHOD_TIMEOUT: Per-method deadline (default: 30s)
  - ENGINE_RUN_TIMEOUT: Whole-run deadline (default: 2m)
  - ENGINE_THRESHOLD: AI verdict threshold (default: 0.5)
  - ENGINE_TOP_FACTORS: Contributing factors reported (default: 5)

Inference (ModelsConfig):
  - INFERENCE_ENABLED: Register remote scorers (default: true)
  - INFERENCE_URL: Sidecar base URL (default: http://127.0.0.1:8501)
  - INFERENCE_MAX_RETRIES: Retries on HTTP 429 (default: 5)
  - INFERENCE_RATE_LIMIT: Requests per second (default: 10)

Intake (IngestConfig):
  - SPOOL_ENABLED: Enable the intake poller (default: false)
  - SPOOL_DIR: Spool directory (default: /data/spool)
  - SPOOL_POLL_INTERVAL: Scan cadence (default: 5s)

Ops (OpsConfig):
  - OPS_PORT: Listener port (default: 3857)
  - OPS_HOST: Bind address (default: 0.0.0.0)

Events (EventsConfig):
  - NATS_ENABLED: Publish detection events (default: false)
  - NATS_URL: NATS server URL (default: nats://127.0.0.1:4222)
  - NATS_TOPIC: Publish subject (default: detections.completed)

Logging (LoggingConfig):
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json or console (default: json)

# Usage Example

Basic configuration loading:

	import "github.com/skygate-forensics/skygate/internal/config"

	// Load configuration from defaults, file, and environment
	cfg, err := config.Load()
	if err != nil {
	    log.Fatalf("Failed to load config: %v", err)
	}

	// Access configuration values
	fmt.Printf("Summary store: %s\n", cfg.Database.Path)
	fmt.Printf("Ops listener on %s\n", cfg.Ops.Addr())

Testing with custom configuration:

	// Override environment variables for testing
	os.Setenv("DUCKDB_PATH", t.TempDir()+"/test.duckdb")
	os.Setenv("BADGER_IN_MEMORY", "true")
	os.Setenv("INFERENCE_ENABLED", "false")

	cfg, err := config.Load()
	// Use cfg for testing

# Validation

Load() validates the assembled configuration and fails fast with an error
naming the offending environment variable, e.g.:

	ENGINE_THRESHOLD must be between 0 and 1 exclusive
	INFERENCE_URL is required when INFERENCE_ENABLED=true
*/
package config
