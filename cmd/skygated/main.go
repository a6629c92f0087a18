// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// https://github.com/skygate-forensics/skygate

// Package main is the entry point for the SkyGate detection daemon.
//
// SkyGate analyzes images for signs of AI generation by fanning a suite of
// forensic methods out over each artifact and combining their evidence into a
// single weighted verdict. Two neural classifiers (a patch-based vision
// transformer and a ResNet50 NoDown GAN detector, served by an inference
// sidecar) run next to four in-process forensic signals: EXIF metadata
// anomalies, PRNU sensor-noise consistency, JPEG error-level analysis, and
// texture smoothness.
//
// # Application Architecture
//
// The daemon initializes components in the following order:
//
//  1. Configuration: Load settings from environment variables and config files (Koanf v2)
//  2. Summary store: DuckDB for relational verdict rows and the method registry
//  3. Detail store: BadgerDB for full nested forensic report documents
//  4. Model registry: Remote scorers for the inference sidecar (if enabled)
//  5. Detection engine: Analyzer fan-out with the persisted weight table
//  6. Event publisher: NATS JetStream completion events (requires -tags nats)
//  7. Supervisor tree: Store maintenance, spool intake, and the ops listener
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables (DUCKDB_PATH, ENGINE_THRESHOLD, SPOOL_DIR, ...)
//   - Config file (config.yaml)
//   - Built-in defaults
//
// # One-Shot Scan Mode
//
// With the scan subcommand the daemon analyzes the named files, prints one
// JSON result per line to stdout, and exits instead of starting the
// supervisor tree:
//
//	skygated scan photo.jpg render.png
//
// Results are persisted exactly as in daemon mode; the exit code is non-zero
// when any file fails.
//
// # Build Tags
//
// Optional build tags enable additional functionality:
//
//	go build -tags "nats" ./cmd/skygated   # Enable NATS JetStream publishing
//
// # Signal Handling
//
// The daemon handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops the spool poller and ops listener
//   - Waits for in-flight detection runs to complete (10s timeout per service)
//   - Checkpoints DuckDB and closes both stores
//
// # Example Usage
//
// Daemon mode with spool intake:
//
//	export SPOOL_ENABLED=true
//	export SPOOL_DIR=/data/spool
//	export INFERENCE_URL=http://sidecar:8501
//	./skygated
//
// Offline analysis without the sidecar:
//
//	export INFERENCE_ENABLED=false
//	./skygated scan suspicious.png
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	json "github.com/goccy/go-json"

	"github.com/skygate-forensics/skygate/internal/analysis"
	"github.com/skygate-forensics/skygate/internal/analysis/metadata"
	"github.com/skygate-forensics/skygate/internal/analysis/model"
	"github.com/skygate-forensics/skygate/internal/analysis/pixel"
	"github.com/skygate-forensics/skygate/internal/config"
	"github.com/skygate-forensics/skygate/internal/database"
	"github.com/skygate-forensics/skygate/internal/engine"
	"github.com/skygate-forensics/skygate/internal/events"
	"github.com/skygate-forensics/skygate/internal/ingest"
	"github.com/skygate-forensics/skygate/internal/logging"
	"github.com/skygate-forensics/skygate/internal/metrics"
	"github.com/skygate-forensics/skygate/internal/ops"
	"github.com/skygate-forensics/skygate/internal/store"
	"github.com/skygate-forensics/skygate/internal/supervisor"
	"github.com/skygate-forensics/skygate/internal/supervisor/services"
)

// appVersion identifies this build in health responses and the app_info
// metric.
const appVersion = "1.0.0"

// modelVersion stamps the builtin remote scorers. It tracks the model
// builds deployed to the inference sidecar, not this binary.
const modelVersion = "1.0"

// Data-layer maintenance cadences without a config knob.
const (
	checkpointInterval = 5 * time.Minute
	reconcileInterval  = time.Hour
)

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	// Applied by the first deferred function so the store closers, which
	// are deferred later, have already run by the time the process exits.
	exitCode := 0
	defer func() {
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	}()

	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize zerolog with configuration
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Str("version", appVersion).Msg("Starting SkyGate detection engine")

	logging.Info().
		Str("duckdb_path", cfg.Database.Path).
		Str("badger_path", cfg.Documents.Path).
		Bool("inference_enabled", cfg.Models.Enabled).
		Bool("spool_enabled", cfg.Ingest.Enabled).
		Msg("Configuration loaded")

	// Initialize the relational summary database
	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Summary database initialized")

	// Initialize the detail document store
	details, err := store.NewBadgerStore(&cfg.Documents)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open detail document store")
	}
	defer func() {
		if err := details.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing detail store")
		}
	}()
	logging.Info().Msg("Detail document store opened")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	summaries := store.NewDuckDBStore(db.Conn())
	if err := summaries.InitSchema(ctx); err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize detection schema")
	}

	// Apply configured weight overrides to the method registry before the
	// weight table is read. Unknown method names are a config mistake, not
	// a reason to refuse startup.
	for name, weight := range cfg.Engine.Weights {
		if err := summaries.SetMethodWeight(ctx, name, weight); err != nil {
			logging.Warn().Err(err).Str("method", name).Msg("Skipping configured weight override")
		}
	}

	weights, err := summaries.WeightTable(ctx)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load ensemble weight table")
	}

	// Register the neural classifiers served by the inference sidecar.
	// When inference is disabled the model methods simply never register,
	// and the ensemble works from the forensic signals alone.
	registry := model.NewRegistry()
	if cfg.Models.Enabled {
		client := model.NewClient(&cfg.Models)
		for _, scorer := range model.BuiltinScorers(client, modelVersion) {
			if err := registry.Register(scorer); err != nil {
				logging.Fatal().Err(err).Msg("Failed to register model scorer")
			}
		}
		logging.Info().
			Str("url", cfg.Models.URL).
			Strs("models", registry.Models()).
			Msg("Inference sidecar models registered")
	} else {
		logging.Info().Msg("Inference disabled (INFERENCE_ENABLED=false); running forensic signals only")
	}

	// algorithm_version must pin the deployed model builds as well as the
	// combination weights, so the registry version is stamped onto the
	// stored weight revision.
	if rv := registry.Version(); rv != "" {
		weights = weights.WithVersion(weights.Version() + "+" + rv)
	}

	eng := engine.New(&cfg.Engine, weights)

	analyzers := []analysis.Analyzer{
		metadata.New(metadata.Config{Signatures: cfg.Metadata.Signatures}),
		pixel.NewPRNU(prnuConfig(cfg.Pixel)),
		pixel.NewELA(elaConfig(cfg.Pixel)),
		pixel.NewTexture(textureConfig(cfg.Pixel)),
	}
	analyzers = append(analyzers, model.Analyzers(registry)...)
	for _, a := range analyzers {
		if err := eng.Register(a); err != nil {
			logging.Fatal().Err(err).Msg("Failed to register analyzer")
		}
	}
	logging.Info().
		Strs("analyzers", eng.Analyzers()).
		Str("weights", weights.Version()).
		Msg("Detection engine assembled")

	assembler := store.NewAssembler(summaries, details)

	// Completion event publisher (no-op unless built with -tags nats and
	// enabled in config)
	publisher, err := events.NewPublisher(&cfg.Events)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect event publisher")
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event publisher")
		}
	}()

	pipeline, err := ingest.NewPipeline(eng, assembler, publisher)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to assemble detection pipeline")
	}

	// One-shot scan mode: analyze the named files and exit without
	// starting the supervisor tree.
	if len(os.Args) > 1 {
		if os.Args[1] != "scan" {
			logging.Fatal().Str("arg", os.Args[1]).Msg("Unknown subcommand (usage: skygated [scan <file>...])")
		}
		if len(os.Args) < 3 {
			logging.Fatal().Msg("scan requires at least one file argument")
		}
		exitCode = runScan(ctx, pipeline, cfg.Ingest.MaxFileSize, os.Args[2:])
		return
	}

	metrics.AppInfo.WithLabelValues(appVersion, runtime.Version()).Set(1)

	// Create structured logger for supervisor using our slog adapter
	// This bridges zerolog to slog for sutureslog compatibility
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// === ADD SERVICES TO SUPERVISOR TREE ===

	// Data layer: store maintenance
	tree.AddDataService(services.NewCheckpointService(db, checkpointInterval))
	tree.AddDataService(services.NewDetailGCService(details, cfg.Documents.GCInterval))
	tree.AddDataService(services.NewReconcileService(assembler, reconcileInterval))

	// Intake layer: spool poller and ops listener
	if cfg.Ingest.Enabled {
		poller, err := ingest.NewPoller(&cfg.Ingest, pipeline)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to create spool poller")
		}
		tree.AddIntakeService(poller)
		logging.Info().Str("dir", cfg.Ingest.SpoolDir).Msg("Spool intake added to supervisor tree")
	} else {
		logging.Info().Msg("Spool intake disabled (SPOOL_ENABLED=false)")
	}

	opsHandler := ops.NewHandler(appVersion,
		ops.Check{Name: "duckdb", Pinger: db},
		ops.Check{Name: "badger", Pinger: details},
	)
	opsServer := &http.Server{
		Addr:         cfg.Ops.Addr(),
		Handler:      opsHandler.Routes(),
		ReadTimeout:  cfg.Ops.Timeout,
		WriteTimeout: cfg.Ops.Timeout,
		IdleTimeout:  60 * time.Second,
	}
	tree.AddIntakeService(services.NewHTTPServerService(opsServer, 10*time.Second))
	logging.Info().Str("addr", opsServer.Addr).Msg("Ops listener added to supervisor tree")

	// === START SUPERVISOR TREE ===

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Detection engine stopped gracefully")
}

// scanResult is one line of scan-mode stdout output.
type scanResult struct {
	File             string  `json:"file"`
	ResultRef        string  `json:"result_ref"`
	IsAIGenerated    bool    `json:"is_ai_generated"`
	Confidence       float64 `json:"confidence_score"`
	Summary          string  `json:"summary"`
	AlgorithmVersion string  `json:"algorithm_version"`
}

// runScan analyzes each named file through the full pipeline, persisting
// results exactly as daemon intake does, and prints one JSON result per
// line. The returned exit code is the number of failed files capped at 1.
func runScan(ctx context.Context, detector ingest.Detector, maxSize int64, paths []string) int {
	enc := json.NewEncoder(os.Stdout)
	failed := 0

	for _, path := range paths {
		in, err := ingest.ReadArtifact(path, maxSize)
		if err != nil {
			logging.Error().Err(err).Str("file", path).Msg("Artifact rejected")
			failed++
			continue
		}

		summary, err := detector.Detect(ctx, in)
		if summary == nil {
			logging.Error().Err(err).Str("file", path).Msg("Detection failed")
			failed++
			continue
		}
		if err != nil {
			logging.Warn().Err(err).Str("result_ref", summary.ResultRef).Msg("Result recorded with degraded persistence")
		}

		if err := enc.Encode(scanResult{
			File:             path,
			ResultRef:        summary.ResultRef,
			IsAIGenerated:    summary.IsAIGenerated,
			Confidence:       summary.Confidence,
			Summary:          summary.SummaryText,
			AlgorithmVersion: summary.AlgorithmVersion,
		}); err != nil {
			logging.Error().Err(err).Msg("Failed to write scan result")
			failed++
		}
	}

	if failed > 0 {
		logging.Error().Int("failed", failed).Int("total", len(paths)).Msg("Scan finished with failures")
		return 1
	}
	return 0
}

// prnuConfig overlays the shared pixel settings onto the shipped PRNU
// calibration.
func prnuConfig(cfg config.PixelConfig) pixel.PRNUConfig {
	c := pixel.DefaultPRNUConfig()
	if cfg.TileSize > 0 {
		c.TileSize = cfg.TileSize
	}
	if cfg.MinDimension > 0 {
		c.MinDimension = cfg.MinDimension
	}
	return c
}

// elaConfig overlays the shared pixel settings onto the shipped ELA
// calibration.
func elaConfig(cfg config.PixelConfig) pixel.ELAConfig {
	c := pixel.DefaultELAConfig()
	if cfg.TileSize > 0 {
		c.TileSize = cfg.TileSize
	}
	if cfg.MinDimension > 0 {
		c.MinDimension = cfg.MinDimension
	}
	if cfg.ELAQuality > 0 {
		c.Quality = cfg.ELAQuality
	}
	if cfg.ELAAmplification > 0 {
		c.Amplification = float64(cfg.ELAAmplification)
	}
	return c
}

// textureConfig overlays the shared pixel settings onto the shipped texture
// calibration.
func textureConfig(cfg config.PixelConfig) pixel.TextureConfig {
	c := pixel.DefaultTextureConfig()
	if cfg.TileSize > 0 {
		c.TileSize = cfg.TileSize
	}
	if cfg.MinDimension > 0 {
		c.MinDimension = cfg.MinDimension
	}
	return c
}
