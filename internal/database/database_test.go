// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/skygate-forensics/skygate/internal/config"
)

func testConfig(t *testing.T) *config.DatabaseConfig {
	t.Helper()
	return &config.DatabaseConfig{
		Path:                   filepath.Join(t.TempDir(), "test.duckdb"),
		MaxMemory:              "512MB",
		Threads:                2,
		PreserveInsertionOrder: true,
	}
}

func TestNew(t *testing.T) {
	db, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer db.Close()

	if db.Conn() == nil {
		t.Error("Conn() = nil, want non-nil")
	}

	ctx := context.Background()
	if err := db.Ping(ctx); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestNew_CreatesDirectory(t *testing.T) {
	cfg := testConfig(t)
	cfg.Path = filepath.Join(t.TempDir(), "nested", "dirs", "test.duckdb")

	db, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer db.Close()

	if db.Path() != cfg.Path {
		t.Errorf("Path() = %q, want %q", db.Path(), cfg.Path)
	}
}

func TestNew_DefaultThreads(t *testing.T) {
	cfg := testConfig(t)
	cfg.Threads = 0 // should fall back to NumCPU

	db, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer db.Close()
}

func TestNewInMemory(t *testing.T) {
	db, err := NewInMemory()
	if err != nil {
		t.Fatalf("NewInMemory() error = %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	conn := db.Conn()

	if _, err := conn.ExecContext(ctx, "CREATE TABLE probe (id INTEGER, name VARCHAR)"); err != nil {
		t.Fatalf("CREATE TABLE error = %v", err)
	}
	if _, err := conn.ExecContext(ctx, "INSERT INTO probe VALUES (1, 'a'), (2, 'b')"); err != nil {
		t.Fatalf("INSERT error = %v", err)
	}

	var count int
	if err := conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM probe").Scan(&count); err != nil {
		t.Fatalf("SELECT error = %v", err)
	}
	if count != 2 {
		t.Errorf("COUNT(*) = %d, want 2", count)
	}
}

func TestCheckpoint(t *testing.T) {
	db, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer db.Close()

	if err := db.Checkpoint(context.Background()); err != nil {
		t.Errorf("Checkpoint() error = %v", err)
	}

	// nil context should get a default timeout rather than panic
	if err := db.Checkpoint(nil); err != nil { //nolint:staticcheck // exercising nil handling
		t.Errorf("Checkpoint(nil) error = %v", err)
	}
}

func TestClose_NilConnection(t *testing.T) {
	db := &DB{}
	if err := db.Close(); err != nil {
		t.Errorf("Close() on nil connection error = %v", err)
	}
}

func TestClose_Reopen(t *testing.T) {
	cfg := testConfig(t)

	db, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := db.Conn().Exec("CREATE TABLE persisted (v INTEGER)"); err != nil {
		t.Fatalf("CREATE TABLE error = %v", err)
	}
	if _, err := db.Conn().Exec("INSERT INTO persisted VALUES (42)"); err != nil {
		t.Fatalf("INSERT error = %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// Checkpoint-on-close should leave the file readable on reopen.
	db2, err := New(cfg)
	if err != nil {
		t.Fatalf("reopen New() error = %v", err)
	}
	defer db2.Close()

	var v int
	if err := db2.Conn().QueryRow("SELECT v FROM persisted").Scan(&v); err != nil {
		t.Fatalf("SELECT after reopen error = %v", err)
	}
	if v != 42 {
		t.Errorf("persisted value = %d, want 42", v)
	}
}
