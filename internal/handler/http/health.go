// Package http provides the shared HTTP plumbing of the fetch service:
// health endpoints, metrics, and the request middleware chain.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// HealthResponse represents the JSON response for health check endpoints.
type HealthResponse struct {
	Status    string                 `json:"status"`    // "healthy" or "degraded"
	Timestamp string                 `json:"timestamp"` // ISO 8601 format
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus represents the status of a single health check.
type CheckStatus struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// CacheStats is implemented by the fetch cache.
type CacheStats interface {
	Len() int
}

// KeyCounter is implemented by the rate limiter.
type KeyCounter interface {
	ActiveKeys(ctx context.Context) (int, error)
}

// BreakerReporter is implemented by the fallback transport.
type BreakerReporter interface {
	BreakerState() string
}

// HealthHandler reports the state of the in-process components. None of them
// can make the service unable to serve, so the endpoint answers 200 and uses
// "degraded" for an open fallback circuit.
type HealthHandler struct {
	Version  string
	Cache    CacheStats
	Limiter  KeyCounter
	Fallback BreakerReporter
	Now      func() time.Time
}

// ServeHTTP implements http.Handler.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]CheckStatus)
	status := "healthy"

	if h.Cache != nil {
		checks["cache"] = CheckStatus{
			Status:  "healthy",
			Details: map[string]any{"entries": h.Cache.Len()},
		}
	}

	if h.Limiter != nil {
		check := CheckStatus{Status: "healthy"}
		if n, err := h.Limiter.ActiveKeys(ctx); err != nil {
			check.Message = err.Error()
		} else {
			check.Details = map[string]any{"active_keys": n}
		}
		checks["rate_limiter"] = check
	}

	if h.Fallback != nil {
		state := h.Fallback.BreakerState()
		check := CheckStatus{Status: "healthy", Details: map[string]any{"circuit_breaker": state}}
		if state == "open" {
			check.Status = "degraded"
			check.Message = "fallback proxy circuit is open"
			status = "degraded"
		}
		checks["fallback_proxy"] = check
	}

	now := time.Now
	if h.Now != nil {
		now = h.Now
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(HealthResponse{
		Status:    status,
		Timestamp: now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	}); err != nil {
		slog.Warn("health: failed to encode response", slog.Any("error", err))
	}
}

// LiveHandler handles liveness probe requests.
type LiveHandler struct{}

// ServeHTTP always returns 200 OK while the process can respond.
func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("alive")); err != nil {
		slog.Warn("alive: failed to write response", slog.Any("error", err))
	}
}
