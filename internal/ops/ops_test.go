// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

package ops

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

// stubPinger fails with err when set, succeeds otherwise.
type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestHealthzAlwaysAlive(t *testing.T) {
	h := NewHandler("1.0.0", Check{Name: "duckdb", Pinger: stubPinger{err: errors.New("down")}})
	srv := httptest.NewServer(h.Routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var body healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Status != "alive" {
		t.Errorf("status = %q, want alive", body.Status)
	}
	if body.Version != "1.0.0" {
		t.Errorf("version = %q, want 1.0.0", body.Version)
	}
	if body.Uptime < 0 {
		t.Errorf("uptime = %v, want >= 0", body.Uptime)
	}
}

func TestReadyzAllChecksPass(t *testing.T) {
	h := NewHandler("1.0.0",
		Check{Name: "duckdb", Pinger: stubPinger{}},
		Check{Name: "badger", Pinger: stubPinger{}},
	)
	srv := httptest.NewServer(h.Routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/readyz")
	if err != nil {
		t.Fatalf("GET /readyz: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body readyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Status != "ready" {
		t.Errorf("status = %q, want ready", body.Status)
	}
	if !body.Checks["duckdb"] || !body.Checks["badger"] {
		t.Errorf("checks = %v, want both true", body.Checks)
	}
}

func TestReadyzFailingCheckReturns503(t *testing.T) {
	h := NewHandler("1.0.0",
		Check{Name: "duckdb", Pinger: stubPinger{}},
		Check{Name: "badger", Pinger: stubPinger{err: errors.New("store is closed")}},
	)
	srv := httptest.NewServer(h.Routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/readyz")
	if err != nil {
		t.Fatalf("GET /readyz: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", resp.StatusCode)
	}

	var body readyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Status != "not_ready" {
		t.Errorf("status = %q, want not_ready", body.Status)
	}
	if !body.Checks["duckdb"] {
		t.Error("passing check reported false")
	}
	if body.Checks["badger"] {
		t.Error("failing check reported true")
	}
}

func TestReadyzNoChecksIsReady(t *testing.T) {
	srv := httptest.NewServer(NewHandler("1.0.0").Routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/readyz")
	if err != nil {
		t.Fatalf("GET /readyz: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestMetricsEndpointServesPrometheusFormat(t *testing.T) {
	srv := httptest.NewServer(NewHandler("1.0.0").Routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	buf := make([]byte, 4096)
	n, _ := resp.Body.Read(buf)
	if n == 0 {
		t.Fatal("metrics body is empty")
	}
	if !strings.Contains(resp.Header.Get("Content-Type"), "text/plain") {
		t.Errorf("Content-Type = %q, want text/plain exposition format", resp.Header.Get("Content-Type"))
	}
}

func TestUnknownRouteReturns404(t *testing.T) {
	srv := httptest.NewServer(NewHandler("1.0.0").Routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/results")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 (the ops listener carries no product API)", resp.StatusCode)
	}
}
