// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/skygate-forensics/skygate/internal/config"
	"github.com/skygate-forensics/skygate/internal/logging"
	"github.com/skygate-forensics/skygate/internal/metrics"
)

// Detail document key prefix for namespacing in BadgerDB.
const detailKeyPrefix = "result:"

// BadgerStore implements DetailStore on an embedded BadgerDB database.
// Detail documents are append-only forensic history: written once per
// detection run, never updated in place.
type BadgerStore struct {
	db       *badger.DB
	gcRatio  float64
	inMemory bool

	mu     sync.RWMutex
	closed bool
}

// NewBadgerStore opens (or creates) the detail store at the configured
// path. With InMemory set the store lives entirely in memory, which is the
// mode the test suites use.
func NewBadgerStore(cfg *config.DocumentsConfig) (*BadgerStore, error) {
	if cfg == nil {
		return nil, errors.New("documents config cannot be nil")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Path)
	}

	// Suppress BadgerDB internal logs
	opts.Logger = nil
	// Detail documents are small JSON blobs; shrink the value log from the
	// default 1GB so GC cycles stay cheap.
	opts.ValueLogFileSize = 64 << 20
	// Sync writes so a committed detail survives an immediate crash.
	opts.SyncWrites = !cfg.InMemory

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger detail store: %w", err)
	}

	ratio := cfg.GCDiscardRatio
	if ratio <= 0 || ratio >= 1 {
		ratio = 0.5
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Float64("gc_discard_ratio", ratio).
		Msg("BadgerDB detail store opened")

	return &BadgerStore{db: db, gcRatio: ratio, inMemory: cfg.InMemory}, nil
}

func detailKey(resultRef string) []byte {
	return []byte(detailKeyPrefix + resultRef)
}

// SaveDetail stores the full forensic report under its reference key.
func (s *BadgerStore) SaveDetail(ctx context.Context, report *Report) error {
	if report == nil {
		return errors.New("report cannot be nil")
	}
	if report.ResultRef == "" {
		return errors.New("report result ref cannot be empty")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal detail document: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(detailKey(report.ResultRef), data)
	})
	if err != nil {
		return fmt.Errorf("write detail document %s: %w", report.ResultRef, err)
	}
	return nil
}

// GetDetail returns the report for a reference key, or ErrDetailNotFound.
func (s *BadgerStore) GetDetail(ctx context.Context, resultRef string) (*Report, error) {
	if resultRef == "" {
		return nil, ErrDetailNotFound
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var report Report
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(detailKey(resultRef))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrDetailNotFound
		}
		if err != nil {
			return fmt.Errorf("get detail document: %w", err)
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &report)
		})
	})
	if err != nil {
		return nil, err
	}

	return &report, nil
}

// HasDetail reports whether a document exists for the reference key
// without reading its value.
func (s *BadgerStore) HasDetail(ctx context.Context, resultRef string) (bool, error) {
	if resultRef == "" {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(detailKey(resultRef))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check detail document %s: %w", resultRef, err)
	}
	return true, nil
}

// DeleteDetail removes the document for a reference key. Deleting a
// missing key is not an error.
func (s *BadgerStore) DeleteDetail(ctx context.Context, resultRef string) error {
	if resultRef == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(detailKey(resultRef))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("delete detail document %s: %w", resultRef, err)
	}
	return nil
}

// ListRefs returns every stored reference key in key order.
func (s *BadgerStore) ListRefs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var refs []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false // keys only
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(detailKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			refs = append(refs, strings.TrimPrefix(key, detailKeyPrefix))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list detail refs: %w", err)
	}
	return refs, nil
}

// Ping reports whether the store is open and readable. Used by the ops
// readiness probe.
func (s *BadgerStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed || s.db == nil {
		return ErrStoreClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(*badger.Txn) error { return nil })
}

// RunGC reclaims value-log space from deleted or rewritten documents,
// looping until BadgerDB reports nothing left to rewrite.
func (s *BadgerStore) RunGC() error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return ErrStoreClosed
	}
	s.mu.RUnlock()

	// In-memory databases have no value log to collect.
	if s.inMemory {
		metrics.BadgerGCRuns.WithLabelValues("noop").Inc()
		return nil
	}

	reclaimed := false
	for {
		err := s.db.RunValueLogGC(s.gcRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			break
		}
		if err != nil {
			metrics.BadgerGCRuns.WithLabelValues("error").Inc()
			return fmt.Errorf("run detail store GC: %w", err)
		}
		reclaimed = true
	}

	if reclaimed {
		metrics.BadgerGCRuns.WithLabelValues("reclaimed").Inc()
	} else {
		metrics.BadgerGCRuns.WithLabelValues("noop").Inc()
	}
	return nil
}

// Close flushes and closes the underlying BadgerDB database. Close is
// idempotent.
func (s *BadgerStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.db == nil {
		return nil
	}
	s.closed = true

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close detail store: %w", err)
	}
	return nil
}

// Compile-time interface assertion
var _ DetailStore = (*BadgerStore)(nil)
