// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration loaded from environment variables and config files.
// Provides centralized configuration management for all application components including
// storage (DuckDB, Badger), the detection engine, analyzers, inference, intake, and logging.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting via environment variables
//
// Configuration Categories:
//
//  1. Storage:
//     - Database: DuckDB summary store (path, memory, threads)
//     - Documents: Badger detail document store (path, GC)
//
//  2. Detection:
//     - Engine: Fan-out parallelism, timeouts, ensemble threshold, method weights
//     - Metadata: Generator signature list for the EXIF analyzer
//     - Pixel: Tiling and ELA recompression settings
//     - Models: Inference sidecar connection, retries, rate limiting
//
//  3. Operations:
//     - Ingest: Spool directory intake
//     - Ops: Health and metrics listener
//     - Events: NATS JetStream publishing (optional)
//
//  4. Observability:
//     - Logging: Log levels and output formats
//
// Example - Load configuration from environment:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	// cfg.Database.Path, cfg.Engine.Parallelism, etc. are now populated
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access from multiple goroutines.
type Config struct {
	Database  DatabaseConfig  `koanf:"database"`
	Documents DocumentsConfig `koanf:"documents"`
	Engine    EngineConfig    `koanf:"engine"`
	Metadata  MetadataConfig  `koanf:"metadata"`
	Pixel     PixelConfig     `koanf:"pixel"`
	Models    ModelsConfig    `koanf:"models"`
	Ingest    IngestConfig    `koanf:"ingest"`
	Ops       OpsConfig       `koanf:"ops"`
	Events    EventsConfig    `koanf:"events"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// DatabaseConfig holds DuckDB settings for the relational summary store.
//
// Environment Variables:
//   - DUCKDB_PATH: Database file path (default: /data/skygate.duckdb)
//   - DUCKDB_MAX_MEMORY: Memory limit, e.g. "2GB" (default: 2GB)
//   - DUCKDB_THREADS: Worker threads, 0 = all cores (default: 0)
type DatabaseConfig struct {
	Path                   string `koanf:"path"`
	MaxMemory              string `koanf:"max_memory"`
	Threads                int    `koanf:"threads"` // 0 = use runtime.NumCPU()
	PreserveInsertionOrder bool   `koanf:"preserve_insertion_order"`
}

// DocumentsConfig holds Badger settings for the method detail document store.
//
// The document store keeps the full per-method evidence blobs keyed by upload
// reference. It is garbage collected periodically to reclaim value-log space.
//
// Environment Variables:
//   - BADGER_PATH: Document store directory (default: /data/details)
//   - BADGER_IN_MEMORY: Keep documents in memory only, for tests (default: false)
//   - BADGER_GC_INTERVAL: Value-log GC cadence (default: 10m)
//   - BADGER_GC_DISCARD_RATIO: Rewrite threshold 0..1 (default: 0.5)
type DocumentsConfig struct {
	Path           string        `koanf:"path"`
	InMemory       bool          `koanf:"in_memory"`
	GCInterval     time.Duration `koanf:"gc_interval"`
	GCDiscardRatio float64       `koanf:"gc_discard_ratio"`
}

// EngineConfig holds detection engine and ensemble settings.
//
// Weights seed the persisted weight table on first start. Methods absent from
// the map score with weight 1.0. The threshold separates ai_generated from
// authentic verdicts; confidence values land in [0,1].
//
// Environment Variables:
//   - ENGINE_PARALLELISM: Concurrent analyzer limit (default: 6)
//   - ENGINE_METHOD_TIMEOUT: Per-method deadline (default: 30s)
//   - ENGINE_RUN_TIMEOUT: Whole-run deadline (default: 2m)
//   - ENGINE_THRESHOLD: AI verdict threshold (default: 0.5)
//   - ENGINE_TOP_FACTORS: Contributing factors reported (default: 5)
type EngineConfig struct {
	Parallelism   int                `koanf:"parallelism"`
	MethodTimeout time.Duration      `koanf:"method_timeout"`
	RunTimeout    time.Duration      `koanf:"run_timeout"`
	Threshold     float64            `koanf:"threshold"`
	TopFactors    int                `koanf:"top_factors"`
	Weights       map[string]float64 `koanf:"weights"`
}

// MetadataConfig holds EXIF analyzer settings.
//
// Signatures replaces the built-in generator signature list when non-empty.
// Matching is case-insensitive substring matching against the Software, Make,
// and Model tags.
//
// Environment Variables:
//   - METADATA_SIGNATURES: Comma-separated generator signatures
type MetadataConfig struct {
	Signatures []string `koanf:"signatures"`
}

// PixelConfig holds shared pixel-statistics analyzer settings.
//
// Environment Variables:
//   - PIXEL_TILE_SIZE: Square tile edge in pixels (default: 32)
//   - PIXEL_MIN_DIMENSION: Smallest analyzable edge (default: 64)
//   - ELA_QUALITY: JPEG recompression quality (default: 90)
//   - ELA_AMPLIFICATION: Error level amplification factor (default: 10)
type PixelConfig struct {
	TileSize         int `koanf:"tile_size"`
	MinDimension     int `koanf:"min_dimension"`
	ELAQuality       int `koanf:"ela_quality"`
	ELAAmplification int `koanf:"ela_amplification"`
}

// ModelsConfig holds inference sidecar connection settings.
//
// The sidecar serves neural scorers (ViT, ResNet50 NoDown) over HTTP. Requests
// pass through a circuit breaker, a client-side rate limiter, and exponential
// backoff on HTTP 429.
//
// Environment Variables:
//   - INFERENCE_ENABLED: Register remote scorers (default: true)
//   - INFERENCE_URL: Sidecar base URL (default: http://127.0.0.1:8501)
//   - INFERENCE_TIMEOUT: HTTP client timeout (default: 30s)
//   - INFERENCE_MAX_RETRIES: Retries on HTTP 429 (default: 5)
//   - INFERENCE_RETRY_BASE_DELAY: First backoff delay (default: 1s)
//   - INFERENCE_RATE_LIMIT: Requests per second (default: 10)
//   - INFERENCE_RATE_BURST: Burst allowance (default: 20)
type ModelsConfig struct {
	Enabled        bool          `koanf:"enabled"`
	URL            string        `koanf:"url"`
	Timeout        time.Duration `koanf:"timeout"`
	MaxRetries     int           `koanf:"max_retries"`
	RetryBaseDelay time.Duration `koanf:"retry_base_delay"`
	RateLimit      float64       `koanf:"rate_limit"`
	RateBurst      int           `koanf:"rate_burst"`
}

// IngestConfig holds spool directory intake settings.
//
// When enabled, a poller scans the spool directory for dropped image files,
// runs detection on each, and moves them to processed/ or failed/.
//
// Environment Variables:
//   - SPOOL_ENABLED: Enable the intake poller (default: false)
//   - SPOOL_DIR: Spool directory (default: /data/spool)
//   - SPOOL_POLL_INTERVAL: Scan cadence (default: 5s)
//   - SPOOL_MAX_FILE_SIZE: Largest accepted artifact in bytes (default: 64MB)
type IngestConfig struct {
	Enabled      bool          `koanf:"enabled"`
	SpoolDir     string        `koanf:"spool_dir"`
	PollInterval time.Duration `koanf:"poll_interval"`
	MaxFileSize  int64         `koanf:"max_file_size"`
}

// OpsConfig holds the operational HTTP listener settings (health, readiness,
// Prometheus metrics). This listener carries no product API.
//
// Environment Variables:
//   - OPS_PORT: Listener port (default: 3857)
//   - OPS_HOST: Bind address (default: 0.0.0.0)
//   - OPS_TIMEOUT: Read/write timeout (default: 30s)
type OpsConfig struct {
	Port    int           `koanf:"port"`
	Host    string        `koanf:"host"`
	Timeout time.Duration `koanf:"timeout"`
}

// Addr returns the host:port string for the ops listener.
func (c OpsConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// EventsConfig holds NATS JetStream publishing settings for completed
// detection events. Publishing is optional; when disabled results are only
// persisted.
//
// Environment Variables:
//   - NATS_ENABLED: Publish detection events (default: false)
//   - NATS_URL: NATS server URL (default: nats://127.0.0.1:4222)
//   - NATS_TOPIC: Publish subject (default: detections.completed)
type EventsConfig struct {
	Enabled bool   `koanf:"enabled"`
	URL     string `koanf:"url"`
	Topic   string `koanf:"topic"`
}

// LoggingConfig holds logging settings.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json or console (default: json)
//   - LOG_CALLER: Include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration from environment variables and optional config file.
// Configuration is loaded in the following order (later sources override earlier ones):
//  1. Built-in defaults
//  2. Config file (config.yaml if exists, or path specified in CONFIG_PATH env var)
//  3. Environment variables
//
// See LoadWithKoanf() for the underlying implementation.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
