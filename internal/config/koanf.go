// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/skygate/config.yaml",
	"/etc/skygate/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:                   "/data/skygate.duckdb",
			MaxMemory:              "2GB",
			Threads:                0,    // 0 = use runtime.NumCPU()
			PreserveInsertionOrder: true, // DuckDB default
		},
		Documents: DocumentsConfig{
			Path:           "/data/details",
			InMemory:       false,
			GCInterval:     10 * time.Minute,
			GCDiscardRatio: 0.5,
		},
		Engine: EngineConfig{
			Parallelism:   6,
			MethodTimeout: 30 * time.Second,
			RunTimeout:    2 * time.Minute,
			Threshold:     0.5,
			TopFactors:    5,
			// Production calibration; methods absent from the map weigh 1.0.
			Weights: map[string]float64{
				"metadata":      0.15,
				"ela":           0.20,
				"prnu":          0.20,
				"texture":       0.15,
				"vit":           0.15,
				"resnet_nodown": 0.15,
			},
		},
		Metadata: MetadataConfig{
			Signatures: nil, // Empty = built-in generator signature list
		},
		Pixel: PixelConfig{
			TileSize:         32,
			MinDimension:     64,
			ELAQuality:       90,
			ELAAmplification: 10,
		},
		Models: ModelsConfig{
			Enabled:        true,
			URL:            "http://127.0.0.1:8501",
			Timeout:        30 * time.Second,
			MaxRetries:     5,
			RetryBaseDelay: time.Second,
			RateLimit:      10,
			RateBurst:      20,
		},
		Ingest: IngestConfig{
			Enabled:      false, // Opt-in - one-shot CLI mode needs no poller
			SpoolDir:     "/data/spool",
			PollInterval: 5 * time.Second,
			MaxFileSize:  64 << 20, // 64MB
		},
		Ops: OpsConfig{
			Port:    3857,
			Host:    "0.0.0.0",
			Timeout: 30 * time.Second,
		},
		Events: EventsConfig{
			Enabled: false, // Opt-in - requires a reachable NATS server
			URL:     "nats://127.0.0.1:4222",
			Topic:   "detections.completed",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// This function is the preferred way to load configuration and provides:
//   - Type-safe configuration unmarshaling
//   - Clear precedence: ENV > File > Defaults
//   - Support for nested configuration via koanf struct tags
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// Transform environment variable names to koanf paths:
	// DUCKDB_PATH -> database.path
	// ENGINE_THRESHOLD -> engine.threshold
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	// Unmarshal into Config struct
	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	// Check environment variable first
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	// Search default paths
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"metadata.signatures",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// This is necessary because env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// If it's already a slice (from YAML file), skip
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		// If it's a string, split by comma
		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - DUCKDB_PATH -> database.path
//   - BADGER_PATH -> documents.path
//   - ENGINE_PARALLELISM -> engine.parallelism
//   - INFERENCE_URL -> models.url
//   - LOG_LEVEL -> logging.level
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	// Map environment variable names to config sections
	envMappings := map[string]string{
		// Database mappings
		"duckdb_path":                     "database.path",
		"duckdb_max_memory":               "database.max_memory",
		"duckdb_threads":                  "database.threads",
		"duckdb_preserve_insertion_order": "database.preserve_insertion_order",

		// Document store mappings
		"badger_path":             "documents.path",
		"badger_in_memory":        "documents.in_memory",
		"badger_gc_interval":      "documents.gc_interval",
		"badger_gc_discard_ratio": "documents.gc_discard_ratio",

		// Engine mappings
		"engine_parallelism":    "engine.parallelism",
		"engine_method_timeout": "engine.method_timeout",
		"engine_run_timeout":    "engine.run_timeout",
		"engine_threshold":      "engine.threshold",
		"engine_top_factors":    "engine.top_factors",

		// Metadata analyzer mappings
		"metadata_signatures": "metadata.signatures",

		// Pixel analyzer mappings
		"pixel_tile_size":     "pixel.tile_size",
		"pixel_min_dimension": "pixel.min_dimension",
		"ela_quality":         "pixel.ela_quality",
		"ela_amplification":   "pixel.ela_amplification",

		// Inference mappings
		"inference_enabled":          "models.enabled",
		"inference_url":              "models.url",
		"inference_timeout":          "models.timeout",
		"inference_max_retries":      "models.max_retries",
		"inference_retry_base_delay": "models.retry_base_delay",
		"inference_rate_limit":       "models.rate_limit",
		"inference_rate_burst":       "models.rate_burst",

		// Intake mappings
		"spool_enabled":       "ingest.enabled",
		"spool_dir":           "ingest.spool_dir",
		"spool_poll_interval": "ingest.poll_interval",
		"spool_max_file_size": "ingest.max_file_size",

		// Ops listener mappings
		"ops_port":    "ops.port",
		"ops_host":    "ops.host",
		"ops_timeout": "ops.timeout",

		// Event mappings
		"nats_enabled": "events.enabled",
		"nats_url":     "events.url",
		"nats_topic":   "events.topic",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	// This prevents random environment variables from polluting config
	return ""
}

// GetKoanfInstance returns a new Koanf instance for advanced usage.
// This is useful for:
//   - Hot-reload scenarios (with proper mutex protection)
//   - Custom configuration sources
//   - Testing with mock configurations
func GetKoanfInstance() *koanf.Koanf {
	return koanf.New(".")
}

// WatchConfigFile sets up a file watcher for hot-reload capability.
// Note: The caller is responsible for mutex protection when accessing
// configuration during reloads.
func WatchConfigFile(path string, callback func()) error {
	provider := file.Provider(path)

	// Start watching the file for changes
	return provider.Watch(func(event interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}
