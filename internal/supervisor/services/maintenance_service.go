// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/skygate-forensics/skygate/internal/metrics"
)

// Default cadences applied when the configured interval is zero or negative.
const (
	defaultCheckpointInterval = 5 * time.Minute
	defaultGCInterval         = 10 * time.Minute
	defaultReconcileInterval  = time.Hour
)

// Checkpointer interface matches the summary database's Checkpoint method.
//
// This interface allows the CheckpointService to work with the database
// without importing the database package, avoiding circular dependencies.
//
// Satisfied by *database.DB from internal/database.
type Checkpointer interface {
	Checkpoint(ctx context.Context) error
}

// CheckpointService periodically forces a DuckDB WAL checkpoint so the WAL
// stays bounded between restarts. Close performs a final checkpoint anyway;
// this service keeps crash recovery cheap for long-lived daemons.
//
// Example usage:
//
//	svc := services.NewCheckpointService(db, 5*time.Minute)
//	tree.AddDataService(svc)
type CheckpointService struct {
	db       Checkpointer
	interval time.Duration
	name     string
}

// NewCheckpointService creates a new checkpoint service wrapper.
func NewCheckpointService(db Checkpointer, interval time.Duration) *CheckpointService {
	if interval <= 0 {
		interval = defaultCheckpointInterval
	}
	return &CheckpointService{
		db:       db,
		interval: interval,
		name:     "duckdb-checkpoint",
	}
}

// Serve implements suture.Service. It checkpoints once per tick until the
// context is canceled. A failed checkpoint returns its error so suture
// restarts the service under its backoff policy.
func (s *CheckpointService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.db.Checkpoint(ctx); err != nil {
				metrics.PersistenceOps.WithLabelValues("duckdb", "checkpoint", "error").Inc()
				return fmt.Errorf("periodic checkpoint: %w", err)
			}
			metrics.PersistenceOps.WithLabelValues("duckdb", "checkpoint", "success").Inc()
		}
	}
}

// String implements fmt.Stringer for logging.
// Suture uses this to identify the service in log messages.
func (s *CheckpointService) String() string {
	return s.name
}

// GCRunner interface matches the detail store's RunGC method.
//
// Satisfied by *store.BadgerStore from internal/store.
type GCRunner interface {
	RunGC() error
}

// DetailGCService periodically runs BadgerDB value-log garbage collection on
// the detail document store. Badger never reclaims value-log space on its
// own; without this service rewritten detail documents accumulate on disk.
//
// Example usage:
//
//	svc := services.NewDetailGCService(details, cfg.Documents.GCInterval)
//	tree.AddDataService(svc)
type DetailGCService struct {
	store    GCRunner
	interval time.Duration
	name     string
}

// NewDetailGCService creates a new detail GC service wrapper.
func NewDetailGCService(store GCRunner, interval time.Duration) *DetailGCService {
	if interval <= 0 {
		interval = defaultGCInterval
	}
	return &DetailGCService{
		store:    store,
		interval: interval,
		name:     "detail-gc",
	}
}

// Serve implements suture.Service. RunGC already loops until Badger reports
// nothing left to rewrite, so one call per tick is a complete cycle.
func (s *DetailGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.store.RunGC(); err != nil {
				return fmt.Errorf("detail store GC: %w", err)
			}
		}
	}
}

// String implements fmt.Stringer for logging.
// Suture uses this to identify the service in log messages.
func (s *DetailGCService) String() string {
	return s.name
}

// OrphanReconciler interface matches the assembler's ReconcileOrphans method.
//
// Satisfied by *store.Assembler from internal/store.
type OrphanReconciler interface {
	ReconcileOrphans(ctx context.Context) ([]string, error)
}

// ReconcileService periodically scans for detection summaries whose detail
// document is missing. The scan itself publishes the orphan gauge and logs
// the degraded references; this wrapper only supplies the cadence.
//
// Example usage:
//
//	svc := services.NewReconcileService(assembler, time.Hour)
//	tree.AddDataService(svc)
type ReconcileService struct {
	assembler OrphanReconciler
	interval  time.Duration
	name      string
}

// NewReconcileService creates a new orphan reconciliation service wrapper.
func NewReconcileService(assembler OrphanReconciler, interval time.Duration) *ReconcileService {
	if interval <= 0 {
		interval = defaultReconcileInterval
	}
	return &ReconcileService{
		assembler: assembler,
		interval:  interval,
		name:      "orphan-reconcile",
	}
}

// Serve implements suture.Service. One scan runs shortly after startup so
// the orphan gauge is populated without waiting a full interval, then one
// per tick.
func (s *ReconcileService) Serve(ctx context.Context) error {
	if _, err := s.assembler.ReconcileOrphans(ctx); err != nil {
		return fmt.Errorf("orphan reconciliation: %w", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.assembler.ReconcileOrphans(ctx); err != nil {
				return fmt.Errorf("orphan reconciliation: %w", err)
			}
		}
	}
}

// String implements fmt.Stringer for logging.
// Suture uses this to identify the service in log messages.
func (s *ReconcileService) String() string {
	return s.name
}
