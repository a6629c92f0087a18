// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	// Database defaults
	if cfg.Database.Path != "/data/skygate.duckdb" {
		t.Errorf("Database.Path = %q, want /data/skygate.duckdb", cfg.Database.Path)
	}
	if cfg.Database.MaxMemory != "2GB" {
		t.Errorf("Database.MaxMemory = %q, want 2GB", cfg.Database.MaxMemory)
	}
	if cfg.Database.Threads != 0 {
		t.Errorf("Database.Threads = %d, want 0 (all cores)", cfg.Database.Threads)
	}
	if !cfg.Database.PreserveInsertionOrder {
		t.Errorf("Database.PreserveInsertionOrder should be true by default")
	}

	// Document store defaults
	if cfg.Documents.Path != "/data/details" {
		t.Errorf("Documents.Path = %q, want /data/details", cfg.Documents.Path)
	}
	if cfg.Documents.InMemory {
		t.Errorf("Documents.InMemory should be false by default")
	}
	if cfg.Documents.GCInterval != 10*time.Minute {
		t.Errorf("Documents.GCInterval = %v, want 10m", cfg.Documents.GCInterval)
	}
	if cfg.Documents.GCDiscardRatio != 0.5 {
		t.Errorf("Documents.GCDiscardRatio = %v, want 0.5", cfg.Documents.GCDiscardRatio)
	}

	// Engine defaults
	if cfg.Engine.Parallelism != 6 {
		t.Errorf("Engine.Parallelism = %d, want 6", cfg.Engine.Parallelism)
	}
	if cfg.Engine.MethodTimeout != 30*time.Second {
		t.Errorf("Engine.MethodTimeout = %v, want 30s", cfg.Engine.MethodTimeout)
	}
	if cfg.Engine.RunTimeout != 2*time.Minute {
		t.Errorf("Engine.RunTimeout = %v, want 2m", cfg.Engine.RunTimeout)
	}
	if cfg.Engine.Threshold != 0.5 {
		t.Errorf("Engine.Threshold = %v, want 0.5", cfg.Engine.Threshold)
	}
	if cfg.Engine.TopFactors != 5 {
		t.Errorf("Engine.TopFactors = %d, want 5", cfg.Engine.TopFactors)
	}

	// Seed weight table sums to 1.0 across the six built-in methods
	if len(cfg.Engine.Weights) != 6 {
		t.Errorf("Engine.Weights has %d entries, want 6", len(cfg.Engine.Weights))
	}
	var sum float64
	for _, w := range cfg.Engine.Weights {
		sum += w
	}
	if sum < 0.999 || sum > 1.001 {
		t.Errorf("Engine.Weights sum = %v, want 1.0", sum)
	}
	if cfg.Engine.Weights["ela"] != 0.20 {
		t.Errorf("Engine.Weights[ela] = %v, want 0.20", cfg.Engine.Weights["ela"])
	}

	// Pixel defaults
	if cfg.Pixel.TileSize != 32 {
		t.Errorf("Pixel.TileSize = %d, want 32", cfg.Pixel.TileSize)
	}
	if cfg.Pixel.MinDimension != 64 {
		t.Errorf("Pixel.MinDimension = %d, want 64", cfg.Pixel.MinDimension)
	}
	if cfg.Pixel.ELAQuality != 90 {
		t.Errorf("Pixel.ELAQuality = %d, want 90", cfg.Pixel.ELAQuality)
	}
	if cfg.Pixel.ELAAmplification != 10 {
		t.Errorf("Pixel.ELAAmplification = %d, want 10", cfg.Pixel.ELAAmplification)
	}

	// Inference defaults (enabled)
	if !cfg.Models.Enabled {
		t.Errorf("Models.Enabled should be true by default")
	}
	if cfg.Models.URL != "http://127.0.0.1:8501" {
		t.Errorf("Models.URL = %q, want http://127.0.0.1:8501", cfg.Models.URL)
	}
	if cfg.Models.MaxRetries != 5 {
		t.Errorf("Models.MaxRetries = %d, want 5", cfg.Models.MaxRetries)
	}
	if cfg.Models.RetryBaseDelay != time.Second {
		t.Errorf("Models.RetryBaseDelay = %v, want 1s", cfg.Models.RetryBaseDelay)
	}

	// Intake defaults (disabled)
	if cfg.Ingest.Enabled {
		t.Errorf("Ingest.Enabled should be false by default")
	}
	if cfg.Ingest.SpoolDir != "/data/spool" {
		t.Errorf("Ingest.SpoolDir = %q, want /data/spool", cfg.Ingest.SpoolDir)
	}
	if cfg.Ingest.MaxFileSize != 64<<20 {
		t.Errorf("Ingest.MaxFileSize = %d, want 64MB", cfg.Ingest.MaxFileSize)
	}

	// Ops defaults
	if cfg.Ops.Port != 3857 {
		t.Errorf("Ops.Port = %d, want 3857", cfg.Ops.Port)
	}
	if cfg.Ops.Host != "0.0.0.0" {
		t.Errorf("Ops.Host = %q, want 0.0.0.0", cfg.Ops.Host)
	}

	// Event defaults (disabled)
	if cfg.Events.Enabled {
		t.Errorf("Events.Enabled should be false by default")
	}
	if cfg.Events.URL != "nats://127.0.0.1:4222" {
		t.Errorf("Events.URL = %q, want nats://127.0.0.1:4222", cfg.Events.URL)
	}
	if cfg.Events.Topic != "detections.completed" {
		t.Errorf("Events.Topic = %q, want detections.completed", cfg.Events.Topic)
	}

	// Logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want json", cfg.Logging.Format)
	}
}

// TestEnvTransformFunc verifies environment variable name transformations
func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// Database
		{"DUCKDB_PATH", "database.path"},
		{"DUCKDB_MAX_MEMORY", "database.max_memory"},
		{"DUCKDB_THREADS", "database.threads"},

		// Documents
		{"BADGER_PATH", "documents.path"},
		{"BADGER_IN_MEMORY", "documents.in_memory"},
		{"BADGER_GC_INTERVAL", "documents.gc_interval"},

		// Engine
		{"ENGINE_PARALLELISM", "engine.parallelism"},
		{"ENGINE_METHOD_TIMEOUT", "engine.method_timeout"},
		{"ENGINE_THRESHOLD", "engine.threshold"},
		{"ENGINE_TOP_FACTORS", "engine.top_factors"},

		// Analyzers
		{"METADATA_SIGNATURES", "metadata.signatures"},
		{"PIXEL_TILE_SIZE", "pixel.tile_size"},
		{"ELA_QUALITY", "pixel.ela_quality"},

		// Inference
		{"INFERENCE_ENABLED", "models.enabled"},
		{"INFERENCE_URL", "models.url"},
		{"INFERENCE_MAX_RETRIES", "models.max_retries"},
		{"INFERENCE_RATE_LIMIT", "models.rate_limit"},

		// Intake
		{"SPOOL_ENABLED", "ingest.enabled"},
		{"SPOOL_DIR", "ingest.spool_dir"},

		// Ops
		{"OPS_PORT", "ops.port"},
		{"OPS_HOST", "ops.host"},

		// Events
		{"NATS_ENABLED", "events.enabled"},
		{"NATS_URL", "events.url"},
		{"NATS_TOPIC", "events.topic"},

		// Logging
		{"LOG_LEVEL", "logging.level"},
		{"LOG_FORMAT", "logging.format"},

		// Unknown (should return empty)
		{"RANDOM_VAR", ""},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := envTransformFunc(tt.input)
			if result != tt.expected {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

// TestFindConfigFile verifies config file discovery
func TestFindConfigFile(t *testing.T) {
	// Create a temporary directory for test files
	tmpDir, err := os.MkdirTemp("", "config_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	// Save original working directory
	origDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	defer func() {
		if err := os.Chdir(origDir); err != nil {
			t.Errorf("Failed to restore working directory: %v", err)
		}
	}()

	// Change to temp directory
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Failed to change to temp directory: %v", err)
	}

	t.Run("no config file exists", func(t *testing.T) {
		os.Unsetenv(ConfigPathEnvVar)
		result := findConfigFile()
		if result != "" {
			t.Errorf("findConfigFile() = %q, want empty string", result)
		}
	})

	t.Run("config.yaml exists", func(t *testing.T) {
		configPath := filepath.Join(tmpDir, "config.yaml")
		if err := os.WriteFile(configPath, []byte("test: true"), 0644); err != nil {
			t.Fatalf("Failed to create config file: %v", err)
		}
		defer os.Remove(configPath)

		os.Unsetenv(ConfigPathEnvVar)
		result := findConfigFile()
		if result != "config.yaml" {
			t.Errorf("findConfigFile() = %q, want config.yaml", result)
		}
	})

	t.Run("CONFIG_PATH env var takes precedence", func(t *testing.T) {
		customPath := filepath.Join(tmpDir, "custom_config.yaml")
		if err := os.WriteFile(customPath, []byte("test: true"), 0644); err != nil {
			t.Fatalf("Failed to create custom config file: %v", err)
		}
		defer os.Remove(customPath)

		os.Setenv(ConfigPathEnvVar, customPath)
		defer os.Unsetenv(ConfigPathEnvVar)

		result := findConfigFile()
		if result != customPath {
			t.Errorf("findConfigFile() = %q, want %q", result, customPath)
		}
	})

	t.Run("CONFIG_PATH env var with non-existent file", func(t *testing.T) {
		os.Setenv(ConfigPathEnvVar, "/non/existent/config.yaml")
		defer os.Unsetenv(ConfigPathEnvVar)

		result := findConfigFile()
		// Should fall back to default paths (which don't exist in temp dir)
		if result != "" {
			t.Errorf("findConfigFile() = %q, want empty string", result)
		}
	})
}

// TestLoadWithKoanfEnvVars tests loading configuration from environment variables
func TestLoadWithKoanfEnvVars(t *testing.T) {
	// Clear all environment variables
	os.Clearenv()

	// Set some custom values to override defaults
	os.Setenv("OPS_PORT", "9000")
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("ENGINE_THRESHOLD", "0.62")
	os.Setenv("INFERENCE_ENABLED", "false")
	os.Setenv("METADATA_SIGNATURES", "acme-gen, renderbot")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	// Verify custom overrides
	if cfg.Ops.Port != 9000 {
		t.Errorf("Ops.Port = %d, want 9000", cfg.Ops.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Engine.Threshold != 0.62 {
		t.Errorf("Engine.Threshold = %v, want 0.62", cfg.Engine.Threshold)
	}
	if cfg.Models.Enabled {
		t.Errorf("Models.Enabled should be overridden to false")
	}

	// Comma-separated signatures become a slice
	if len(cfg.Metadata.Signatures) != 2 {
		t.Fatalf("Metadata.Signatures = %v, want 2 entries", cfg.Metadata.Signatures)
	}
	if cfg.Metadata.Signatures[0] != "acme-gen" || cfg.Metadata.Signatures[1] != "renderbot" {
		t.Errorf("Metadata.Signatures = %v, want [acme-gen renderbot]", cfg.Metadata.Signatures)
	}

	// Verify defaults are still applied for unset values
	if cfg.Ops.Host != "0.0.0.0" {
		t.Errorf("Ops.Host = %q, want 0.0.0.0 (default)", cfg.Ops.Host)
	}
	if cfg.Database.MaxMemory != "2GB" {
		t.Errorf("Database.MaxMemory = %q, want 2GB (default)", cfg.Database.MaxMemory)
	}
	if cfg.Engine.Parallelism != 6 {
		t.Errorf("Engine.Parallelism = %d, want 6 (default)", cfg.Engine.Parallelism)
	}
}

// TestLoadWithKoanfConfigFile tests loading configuration from a YAML file
func TestLoadWithKoanfConfigFile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	configContent := `
database:
  path: "/var/lib/skygate/summaries.duckdb"
  max_memory: "4GB"

engine:
  threshold: 0.55
  weights:
    vit: 0.25

ops:
  port: 8888
  host: "127.0.0.1"

logging:
  level: "warn"
`
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}

	// Clear environment and set CONFIG_PATH
	os.Clearenv()
	os.Setenv(ConfigPathEnvVar, configPath)
	defer os.Unsetenv(ConfigPathEnvVar)

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	// Verify values from config file
	if cfg.Database.Path != "/var/lib/skygate/summaries.duckdb" {
		t.Errorf("Database.Path = %q, want /var/lib/skygate/summaries.duckdb", cfg.Database.Path)
	}
	if cfg.Database.MaxMemory != "4GB" {
		t.Errorf("Database.MaxMemory = %q, want 4GB", cfg.Database.MaxMemory)
	}
	if cfg.Engine.Threshold != 0.55 {
		t.Errorf("Engine.Threshold = %v, want 0.55", cfg.Engine.Threshold)
	}
	if cfg.Ops.Port != 8888 {
		t.Errorf("Ops.Port = %d, want 8888", cfg.Ops.Port)
	}
	if cfg.Ops.Host != "127.0.0.1" {
		t.Errorf("Ops.Host = %q, want 127.0.0.1", cfg.Ops.Host)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}

	// Weight map entries merge per key; overridden key changes, others keep defaults
	if cfg.Engine.Weights["vit"] != 0.25 {
		t.Errorf("Engine.Weights[vit] = %v, want 0.25", cfg.Engine.Weights["vit"])
	}
	if cfg.Engine.Weights["prnu"] != 0.20 {
		t.Errorf("Engine.Weights[prnu] = %v, want 0.20 (default)", cfg.Engine.Weights["prnu"])
	}
}

// TestLoadWithKoanfPrecedence verifies env vars override config file values
func TestLoadWithKoanfPrecedence(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	configContent := `
ops:
  port: 8888

logging:
  level: "warn"
`
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}

	os.Clearenv()
	os.Setenv(ConfigPathEnvVar, configPath)
	os.Setenv("OPS_PORT", "9999")
	defer func() {
		os.Unsetenv(ConfigPathEnvVar)
		os.Unsetenv("OPS_PORT")
	}()

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	// Env var wins over file
	if cfg.Ops.Port != 9999 {
		t.Errorf("Ops.Port = %d, want 9999 (env override)", cfg.Ops.Port)
	}
	// File wins over default
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn (file)", cfg.Logging.Level)
	}
}
