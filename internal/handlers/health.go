package handlers

import (
	"context"
	"net/http"
	"time"
)

var startTime = time.Now()

// ReadinessCheck reports whether a downstream dependency is ready to serve.
type ReadinessCheck func(ctx context.Context) error

// HealthHandlers serves the liveness and readiness endpoints.
type HealthHandlers struct {
	checks map[string]ReadinessCheck
}

// NewHealthHandlers constructs health handlers with optional named readiness checks.
func NewHealthHandlers(checks map[string]ReadinessCheck) *HealthHandlers {
	return &HealthHandlers{checks: checks}
}

// Healthz responds with a simple status payload for liveness monitoring.
func (h *HealthHandlers) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"uptime":    time.Since(startTime).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Readyz runs the registered readiness checks and reports per-dependency state.
func (h *HealthHandlers) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if check == nil {
			continue
		}
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	payload := map[string]any{
		"status": "ok",
		"checks": results,
	}
	if status != http.StatusOK {
		payload["status"] = "degraded"
	}
	writeJSONResponse(w, status, payload)
}
