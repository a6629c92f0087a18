// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

/*
Package supervisor provides process supervision for SkyGate using suture v4.

This package implements a hierarchical supervisor tree that manages the lifecycle
of all long-running services in the application. It provides Erlang/OTP-style
supervision with automatic restart, failure isolation, and graceful shutdown.

# Overview

The supervisor tree organizes services into two layers for failure isolation:

	RootSupervisor ("skygate")
	├── DataSupervisor ("data-layer")
	│   ├── CheckpointService (periodic DuckDB WAL checkpoint)
	│   ├── DetailGCService (Badger value-log garbage collection)
	│   └── ReconcileService (orphaned-detail scan)
	└── IntakeSupervisor ("intake-layer")
	    ├── Poller (spool directory intake, from internal/ingest)
	    └── HTTPServerService (ops listener: health, readiness, metrics)

This hierarchy ensures that:
  - A crash in the intake path doesn't stop store maintenance
  - A stuck GC cycle doesn't block artifact processing
  - Each layer restarts independently under its own failure budget

# Key Features

Automatic Restart:
  - Crashed services are automatically restarted
  - Exponential backoff prevents restart storms
  - Configurable failure thresholds and decay rates

Failure Isolation:
  - Services are organized into logical groups
  - Child supervisor failures don't propagate upward
  - Each layer has independent failure counting

Graceful Shutdown:
  - Context cancellation triggers orderly shutdown
  - Configurable shutdown timeout per service
  - UnstoppedServiceReport for debugging hangs

Structured Logging:
  - Integration with slog for structured events
  - Logs service starts, stops, failures, and restarts
  - Event hooks via sutureslog adapter (bridged to zerolog by
    internal/logging)

# Usage Example

Basic setup in main:

	import (
	    "github.com/skygate-forensics/skygate/internal/logging"
	    "github.com/skygate-forensics/skygate/internal/supervisor"
	    "github.com/skygate-forensics/skygate/internal/supervisor/services"
	)

	func main() {
	    tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	    if err != nil {
	        logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	    }

	    tree.AddDataService(services.NewCheckpointService(db, interval))
	    tree.AddDataService(services.NewDetailGCService(details, gcInterval))
	    tree.AddIntakeService(poller)
	    tree.AddIntakeService(services.NewHTTPServerService(opsServer, 10*time.Second))

	    if err := tree.Serve(ctx); err != nil {
	        logging.Error().Err(err).Msg("Supervisor stopped")
	    }
	}

Background operation:

	errChan := tree.ServeBackground(ctx)

	// Do other setup...

	if err := <-errChan; err != nil {
	    logging.Error().Err(err).Msg("Supervisor error")
	}

# Configuration

The TreeConfig controls restart behavior:

	config := supervisor.TreeConfig{
	    FailureThreshold: 5.0,          // Failures before backoff
	    FailureDecay:     30.0,         // Seconds for failures to decay
	    FailureBackoff:   15 * time.Second, // Backoff duration
	    ShutdownTimeout:  10 * time.Second, // Per-service shutdown timeout
	}

Default values match suture's production-ready defaults:
  - FailureThreshold: 5 failures
  - FailureDecay: 30 seconds
  - FailureBackoff: 15 seconds
  - ShutdownTimeout: 10 seconds

# Service Interface

All services must implement suture.Service:

	type Service interface {
	    Serve(ctx context.Context) error
	}

Return behavior:
  - Return nil: Service stopped cleanly, will not be restarted
  - Return error: Service crashed, will be restarted
  - Context canceled: Shutdown requested, return promptly

# What Is NOT Supervised

The detection engine itself is intentionally not supervised:
  - RunDetection is a synchronous call, not a long-running service
  - Failure handling lives inside the run (per-analyzer isolation)
  - Its callers (the spool poller, the one-shot CLI) are the
    supervised surface

DuckDB and Badger are embedded libraries, not services; their periodic
maintenance (checkpoints, GC) is what the data layer supervises.

# Debugging Shutdown Issues

If services don't stop within the timeout:

	report, err := tree.UnstoppedServiceReport()
	for _, svc := range report {
	    logging.Warn().Str("service", svc.Name).Msg("Service didn't stop")
	}

Common causes:
  - Goroutines not respecting context cancellation
  - Blocked network I/O without deadlines
  - Mutex deadlocks during shutdown

# Thread Safety

The SupervisorTree is safe for concurrent use:
  - Services can be added from any goroutine
  - Remove operations are synchronized
  - Multiple services can crash simultaneously

# See Also

  - internal/supervisor/services: Service wrappers
  - github.com/thejerf/suture/v4: Underlying library
*/
package supervisor
