// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

package config

import (
	"fmt"
	"math"
	"time"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateDocuments(); err != nil {
		return err
	}

	if err := c.validateEngine(); err != nil {
		return err
	}

	if err := c.validatePixel(); err != nil {
		return err
	}

	if err := c.validateModels(); err != nil {
		return err
	}

	if err := c.validateIngest(); err != nil {
		return err
	}

	if err := c.validateOps(); err != nil {
		return err
	}

	if err := c.validateEvents(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateDatabase validates DuckDB configuration
func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be 0 (all cores) or positive")
	}
	return nil
}

// validateDocuments validates Badger document store configuration
func (c *Config) validateDocuments() error {
	if !c.Documents.InMemory && c.Documents.Path == "" {
		return fmt.Errorf("BADGER_PATH is required unless BADGER_IN_MEMORY=true")
	}
	if c.Documents.GCInterval < time.Minute {
		return fmt.Errorf("BADGER_GC_INTERVAL must be at least 1m")
	}
	if c.Documents.GCDiscardRatio <= 0 || c.Documents.GCDiscardRatio >= 1 {
		return fmt.Errorf("BADGER_GC_DISCARD_RATIO must be between 0 and 1 exclusive")
	}
	return nil
}

// Engine limit constants
const (
	maxEngineParallelism = 64
	maxEngineTopFactors  = 32
	minEngineTimeout     = time.Second
)

// validateEngine validates detection engine configuration
func (c *Config) validateEngine() error {
	if c.Engine.Parallelism < 1 || c.Engine.Parallelism > maxEngineParallelism {
		return fmt.Errorf("ENGINE_PARALLELISM must be between 1 and %d", maxEngineParallelism)
	}
	if c.Engine.MethodTimeout < minEngineTimeout {
		return fmt.Errorf("ENGINE_METHOD_TIMEOUT must be at least 1s")
	}
	if c.Engine.RunTimeout < c.Engine.MethodTimeout {
		return fmt.Errorf("ENGINE_RUN_TIMEOUT must not be shorter than ENGINE_METHOD_TIMEOUT")
	}
	if c.Engine.Threshold <= 0 || c.Engine.Threshold >= 1 {
		return fmt.Errorf("ENGINE_THRESHOLD must be between 0 and 1 exclusive")
	}
	if c.Engine.TopFactors < 1 || c.Engine.TopFactors > maxEngineTopFactors {
		return fmt.Errorf("ENGINE_TOP_FACTORS must be between 1 and %d", maxEngineTopFactors)
	}
	return c.validateEngineWeights()
}

// validateEngineWeights validates the seed method weight table
func (c *Config) validateEngineWeights() error {
	for method, weight := range c.Engine.Weights {
		if math.IsNaN(weight) || math.IsInf(weight, 0) {
			return fmt.Errorf("engine weight for %q must be a finite number", method)
		}
		if weight < 0 {
			return fmt.Errorf("engine weight for %q must not be negative", method)
		}
	}
	return nil
}

// validatePixel validates pixel analyzer configuration
func (c *Config) validatePixel() error {
	if c.Pixel.TileSize < 8 || c.Pixel.TileSize > 256 {
		return fmt.Errorf("PIXEL_TILE_SIZE must be between 8 and 256")
	}
	if c.Pixel.MinDimension < c.Pixel.TileSize {
		return fmt.Errorf("PIXEL_MIN_DIMENSION must not be smaller than PIXEL_TILE_SIZE")
	}
	if c.Pixel.ELAQuality < 1 || c.Pixel.ELAQuality > 100 {
		return fmt.Errorf("ELA_QUALITY must be between 1 and 100")
	}
	if c.Pixel.ELAAmplification < 1 {
		return fmt.Errorf("ELA_AMPLIFICATION must be at least 1")
	}
	return nil
}

// Inference limit constants
const (
	maxInferenceRetries = 10
)

// validateModels validates inference sidecar configuration (only if enabled)
func (c *Config) validateModels() error {
	if !c.Models.Enabled {
		return nil // Inference is optional - heuristic analyzers still run
	}

	if c.Models.URL == "" {
		return fmt.Errorf("INFERENCE_URL is required when INFERENCE_ENABLED=true")
	}
	if err := validateHTTPURL(c.Models.URL, "INFERENCE_URL"); err != nil {
		return fmt.Errorf("INFERENCE_URL is invalid: %w", err)
	}
	if c.Models.Timeout < time.Second {
		return fmt.Errorf("INFERENCE_TIMEOUT must be at least 1s")
	}
	if c.Models.MaxRetries < 0 || c.Models.MaxRetries > maxInferenceRetries {
		return fmt.Errorf("INFERENCE_MAX_RETRIES must be between 0 and %d", maxInferenceRetries)
	}
	if c.Models.RetryBaseDelay <= 0 {
		return fmt.Errorf("INFERENCE_RETRY_BASE_DELAY must be positive")
	}
	if c.Models.RateLimit <= 0 {
		return fmt.Errorf("INFERENCE_RATE_LIMIT must be positive")
	}
	if c.Models.RateBurst < 1 {
		return fmt.Errorf("INFERENCE_RATE_BURST must be at least 1")
	}
	return nil
}

// validateIngest validates spool intake configuration (only if enabled)
func (c *Config) validateIngest() error {
	if !c.Ingest.Enabled {
		return nil
	}

	if c.Ingest.SpoolDir == "" {
		return fmt.Errorf("SPOOL_DIR is required when SPOOL_ENABLED=true")
	}
	if c.Ingest.PollInterval < 100*time.Millisecond {
		return fmt.Errorf("SPOOL_POLL_INTERVAL must be at least 100ms")
	}
	if c.Ingest.MaxFileSize < 1024 {
		return fmt.Errorf("SPOOL_MAX_FILE_SIZE must be at least 1KB")
	}
	return nil
}

// validateOps validates the ops listener configuration
func (c *Config) validateOps() error {
	if c.Ops.Port < 1 || c.Ops.Port > 65535 {
		return fmt.Errorf("OPS_PORT must be between 1 and 65535")
	}
	return nil
}

// validateEvents validates NATS event publishing configuration (only if enabled)
func (c *Config) validateEvents() error {
	if !c.Events.Enabled {
		return nil
	}

	if err := validateNATSURL(c.Events.URL); err != nil {
		return fmt.Errorf("NATS_URL is invalid: %w", err)
	}
	if c.Events.Topic == "" {
		return fmt.Errorf("NATS_TOPIC is required when NATS_ENABLED=true")
	}
	return nil
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if err := c.validateLogLevel(); err != nil {
		return err
	}
	return c.validateLogFormat()
}

// validateLogLevel validates the log level configuration
func (c *Config) validateLogLevel() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	return nil
}

// validateLogFormat validates the log format configuration
func (c *Config) validateLogFormat() error {
	if c.Logging.Format == "" {
		return nil
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
