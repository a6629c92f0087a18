// SkyGate - AI-Generated Media Detection Engine
// Copyright 2026 SkyGate Forensics
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skygate-forensics/skygate

package model

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/skygate-forensics/skygate/internal/config"
	"github.com/skygate-forensics/skygate/internal/logging"
	"github.com/skygate-forensics/skygate/internal/metrics"
)

// maxErrorBodySize bounds how much of an error response body is read for
// inclusion in error messages.
const maxErrorBodySize = 64 * 1024

// scoreRequest is the JSON body sent to the inference sidecar.
type scoreRequest struct {
	Model string    `json:"model"`
	Shape []int     `json:"shape"`
	Data  []float32 `json:"data"`
}

// scoreResponse is the JSON body returned by the inference sidecar.
type scoreResponse struct {
	Probability float64 `json:"probability"`
	Model       string  `json:"model"`
	Version     string  `json:"version"`
	Error       string  `json:"error,omitempty"`
}

// Client is the HTTP transport to the model inference sidecar. It wraps
// every invocation with a rate limiter and a circuit breaker so a slow or
// failing sidecar degrades the model methods without cascading into the
// rest of the analyzer fan-out.
//
// DETERMINISM NOTE: The circuit breaker uses real time (via sony/gobreaker)
// for its interval and timeout calculations. This is intentional for
// production resilience:
// - The timing determines when to recover from failures, not data integrity
// - Tests should mock the sidecar with httptest, not the breaker
// - For unit tests, exercise doScore through a healthy breaker
type Client struct {
	baseURL    string
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker[float64]
	limiter    *rate.Limiter
	maxRetries int
	baseDelay  time.Duration
	name       string
}

// NewClient creates an inference client from configuration.
// Circuit breaker configuration:
// - Max 3 concurrent requests in half-open state
// - 1 minute measurement window
// - 2 minute timeout before attempting recovery
// - Opens after 60% failure rate with minimum 10 requests
func NewClient(cfg *config.ModelsConfig) *Client {
	cbName := "inference-api"

	// Initialize circuit breaker state metrics
	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbName).Set(0)

	cb := gobreaker.NewCircuitBreaker[float64](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		// Opens when failure rate >= 60% with minimum 10 requests
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6

			if shouldTrip {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
			}

			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()

			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	limit := rate.Limit(cfg.RateLimit)
	if cfg.RateLimit <= 0 {
		limit = rate.Inf
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cb:         cb,
		limiter:    rate.NewLimiter(limit, cfg.RateBurst),
		maxRetries: cfg.MaxRetries,
		baseDelay:  cfg.RetryBaseDelay,
		name:       cbName,
	}
}

// Score invokes the sidecar model against the tensor and returns the
// probability the input is AI-generated. The call is rate-limited,
// breaker-protected, and retried on HTTP 429.
func (c *Client) Score(ctx context.Context, modelID string, t Tensor) (float64, error) {
	start := time.Now()

	if err := c.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("inference rate limit wait: %w", err)
	}

	probability, err := c.cb.Execute(func() (float64, error) {
		return c.doScore(ctx, modelID, t)
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(c.name, "rejected").Inc()
			logging.Warn().Err(err).Str("model", modelID).Msg("[CIRCUIT BREAKER] Inference request rejected")
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(c.name, "failure").Inc()

			counts := c.cb.Counts()
			metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(c.name).Set(float64(counts.ConsecutiveFailures))
		}
		metrics.RecordInference(modelID, time.Since(start), err)
		return 0, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(c.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(c.name).Set(0)
	metrics.RecordInference(modelID, time.Since(start), nil)

	return probability, nil
}

// doScore performs one scoring round trip without breaker accounting.
func (c *Client) doScore(ctx context.Context, modelID string, t Tensor) (float64, error) {
	if err := t.Validate(); err != nil {
		return 0, fmt.Errorf("score request: %w", err)
	}

	body, err := json.Marshal(scoreRequest{Model: modelID, Shape: t.Shape, Data: t.Data})
	if err != nil {
		return 0, fmt.Errorf("encode score request: %w", err)
	}

	resp, err := c.doRequestWithRateLimit(ctx, http.MethodPost, c.baseURL+"/v1/score", body)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("inference API returned status %d: %s", resp.StatusCode, readBodyForError(resp.Body))
	}

	var sr scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return 0, fmt.Errorf("decode inference response: %w", err)
	}
	if sr.Error != "" {
		return 0, fmt.Errorf("inference API error for model %s: %s", modelID, sr.Error)
	}
	if math.IsNaN(sr.Probability) || sr.Probability < 0 || sr.Probability > 1 {
		return 0, fmt.Errorf("inference API returned out-of-range probability %v for model %s", sr.Probability, modelID)
	}

	return sr.Probability, nil
}

// doRequestWithRateLimit executes an HTTP request with automatic retry on
// rate limiting (HTTP 429):
//   - Exponential backoff starting at the configured base delay
//   - Respects Retry-After header (RFC 6585) if present
//   - Only retries on HTTP 429 (Too Many Requests)
//
// A fresh request is built per attempt because the body reader is consumed.
// The caller must close the returned response body.
func (c *Client) doRequestWithRateLimit(ctx context.Context, method, url string, body []byte) (*http.Response, error) {
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("execute request: %w", err)
		}

		// Success - return response
		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		// Rate limited - close response and retry
		resp.Body.Close()

		// Last attempt failed - return error
		if attempt == c.maxRetries {
			return nil, fmt.Errorf("rate limit exceeded after %d retries", c.maxRetries)
		}

		// Calculate retry delay (exponential backoff)
		retryDelay := c.baseDelay * (1 << attempt)

		// Check for Retry-After header (RFC 6585)
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := time.ParseDuration(retryAfter + "s"); err == nil {
				retryDelay = seconds
			}
		}

		logging.Warn().Dur("retry_delay", retryDelay).Int("attempt", attempt+1).Int("max_retries", c.maxRetries).Msg("Inference API rate limited (HTTP 429), retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay):
			// Continue to next retry
		}
	}

	return nil, fmt.Errorf("unreachable code: retry loop should return or error")
}

// Health verifies connectivity to the inference sidecar.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/health", nil)
	if err != nil {
		return fmt.Errorf("create health request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("inference API health check: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("inference API health check returned status %d", resp.StatusCode)
	}
	return nil
}

// readBodyForError reads a bounded amount of a response body for error
// message context.
func readBodyForError(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil || len(b) == 0 {
		return "<unreadable body>"
	}
	return string(b)
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
