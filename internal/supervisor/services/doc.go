// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

/*
Package services provides suture.Service wrappers for SkyGate components.

This package adapts application components to the suture v4 supervision
model, translating their lifecycle patterns (one-shot maintenance calls,
ListenAndServe) into suture's context-aware Serve pattern. Components that
already run their own context-aware loop, like the spool poller in
internal/ingest, implement suture.Service directly and need no wrapper here.

# Overview

Each wrapper implements the suture.Service interface:

	type Service interface {
	    Serve(ctx context.Context) error
	}

The wrappers handle:
  - Lifecycle translation (periodic and blocking patterns to Serve)
  - Graceful shutdown via context cancellation
  - Error propagation for supervisor restart decisions
  - Service identification via fmt.Stringer

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - Converts ListenAndServe pattern to Serve
  - Used for the ops listener (health, readiness, metrics)

Checkpoint (CheckpointService):
  - Runs a periodic DuckDB WAL checkpoint
  - Bounds WAL growth between restarts
  - Checkpoint failures restart the service, not the process

Detail GC (DetailGCService):
  - Runs periodic BadgerDB value-log garbage collection
  - Reclaims space from rewritten detail documents

Reconcile (ReconcileService):
  - Periodically scans for summaries without detail documents
  - Keeps the orphaned-details gauge current

# Usage Example

Creating and registering services:

	import (
	    "net/http"
	    "time"

	    "github.com/skygate-forensics/skygate/internal/supervisor"
	    "github.com/skygate-forensics/skygate/internal/supervisor/services"
	)

	func setupSupervisor(opsServer *http.Server, db *database.DB, details *store.BadgerStore) {
	    tree, _ := supervisor.NewSupervisorTree(logger, config)

	    tree.AddDataService(services.NewCheckpointService(db, 5*time.Minute))
	    tree.AddDataService(services.NewDetailGCService(details, 10*time.Minute))

	    // Ops listener with 10s shutdown timeout
	    tree.AddIntakeService(services.NewHTTPServerService(opsServer, 10*time.Second))

	    // Start supervision
	    tree.Serve(ctx)
	}

# Lifecycle Patterns

The package handles two lifecycle patterns:

Periodic Pattern:

	type Maintainer interface {
	    Maintain(ctx context.Context) error
	}

	// Wrapped as:
	func (s *Service) Serve(ctx context.Context) error {
	    ticker := time.NewTicker(s.interval)
	    defer ticker.Stop()
	    for {
	        select {
	        case <-ticker.C:
	            if err := s.component.Maintain(ctx); err != nil {
	                return err
	            }
	        case <-ctx.Done():
	            return ctx.Err()
	        }
	    }
	}

ListenAndServe Pattern:

	type Listener interface {
	    ListenAndServe() error
	    Shutdown(ctx context.Context) error
	}

	// Wrapped as:
	func (s *Service) Serve(ctx context.Context) error {
	    go s.server.ListenAndServe()
	    <-ctx.Done()
	    return s.server.Shutdown(shutdownCtx)
	}

# Error Handling

Return values determine supervisor behavior:

	nil         -> Service stopped cleanly, will not restart
	error       -> Service crashed, supervisor will restart
	ctx.Err()   -> Shutdown requested, normal termination

A failed maintenance pass returns its error so suture restarts the
service under its backoff policy; the next pass retries the work.

# Service Identification

All services implement fmt.Stringer for logging:

	func (s *CheckpointService) String() string {
	    return "duckdb-checkpoint"
	}

Suture uses this for log messages:

	INFO duckdb-checkpoint: starting
	INFO duckdb-checkpoint: stopped
	ERROR duckdb-checkpoint: restarting after failure

# Testing

Services can be tested with mock components:

	type MockServer struct {
	    started  bool
	    shutdown bool
	}

	func (m *MockServer) ListenAndServe() error {
	    m.started = true
	    <-time.After(time.Hour) // Block until shutdown
	    return nil
	}

	func (m *MockServer) Shutdown(ctx context.Context) error {
	    m.shutdown = true
	    return nil
	}

# Thread Safety

All service wrappers are safe for concurrent use:
  - Wrappers hold no mutable state of their own
  - Context cancellation is handled atomically
  - Multiple Serve calls are not supported (undefined behavior)

# See Also

  - internal/supervisor: SupervisorTree that manages these services
  - github.com/thejerf/suture/v4: Underlying supervision library
  - internal/ingest: Spool poller, a suture.Service in its own right
*/
package services
