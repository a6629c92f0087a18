// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

package ops

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/skygate-forensics/skygate/internal/logging"
	"github.com/skygate-forensics/skygate/internal/metrics"
)

// readyCheckTimeout bounds each readiness probe so a wedged store cannot
// hang the listener.
const readyCheckTimeout = 5 * time.Second

// Pinger reports whether a backing store is reachable. Satisfied by
// *database.DB and *store.BadgerStore.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Check names one readiness dependency.
type Check struct {
	Name   string
	Pinger Pinger
}

// Handler serves the operational endpoints.
type Handler struct {
	version   string
	startTime time.Time
	checks    []Check
}

// NewHandler creates the ops handler. Each check becomes part of the
// readiness verdict; a handler with no checks is always ready.
func NewHandler(version string, checks ...Check) *Handler {
	return &Handler{
		version:   version,
		startTime: time.Now(),
		checks:    checks,
	}
}

// Routes builds the ops router: GET /healthz, GET /readyz, GET /metrics.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", h.Healthz)
	r.Get("/readyz", h.Readyz)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// healthResponse is the liveness probe body.
type healthResponse struct {
	Status  string  `json:"status"`
	Version string  `json:"version"`
	Uptime  float64 `json:"uptime_seconds"`
}

// readyResponse is the readiness probe body.
type readyResponse struct {
	Status string          `json:"status"`
	Checks map[string]bool `json:"checks"`
	Uptime float64         `json:"uptime_seconds"`
}

// Healthz reports process liveness: a 200 means the process is alive,
// regardless of store state.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	uptime := time.Since(h.startTime).Seconds()
	metrics.AppUptime.Set(uptime)

	respondJSON(w, http.StatusOK, healthResponse{
		Status:  "alive",
		Version: h.version,
		Uptime:  uptime,
	})
}

// Readyz reports readiness to process detections: 200 only when every
// registered store check passes, 503 otherwise.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	results := make(map[string]bool, len(h.checks))
	ready := true

	for _, c := range h.checks {
		ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
		err := c.Pinger.Ping(ctx)
		cancel()

		ok := err == nil
		results[c.Name] = ok
		if !ok {
			ready = false
			logging.Warn().Err(err).Str("check", c.Name).Msg("Readiness check failed")
		}
	}

	status := "ready"
	code := http.StatusOK
	if !ready {
		status = "not_ready"
		code = http.StatusServiceUnavailable
	}

	respondJSON(w, code, readyResponse{
		Status: status,
		Checks: results,
		Uptime: time.Since(h.startTime).Seconds(),
	})
}

// respondJSON writes a JSON body with the given status code.
func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")

	data, err := json.Marshal(body)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal ops response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write ops response")
	}
}
