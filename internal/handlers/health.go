package handlers

import (
	"net/http"
	"time"
)

// ReadinessCheck reports whether a named dependency is ready to serve.
type ReadinessCheck struct {
	Name  string
	Ready func() bool
}

// HealthHandlers serves liveness and readiness probes.
type HealthHandlers struct {
	startTime time.Time
	checks    []ReadinessCheck
}

// NewHealthHandlers constructs the probe handlers with optional readiness checks.
func NewHealthHandlers(checks ...ReadinessCheck) *HealthHandlers {
	return &HealthHandlers{
		startTime: time.Now(),
		checks:    checks,
	}
}

// Healthz reports process liveness.
func (h *HealthHandlers) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"uptime":    time.Since(h.startTime).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Readyz reports whether every registered dependency check passes. The cart
// and favorites stores register their hydration state here so traffic only
// arrives once persisted state has been loaded.
func (h *HealthHandlers) Readyz(w http.ResponseWriter, _ *http.Request) {
	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for _, check := range h.checks {
		if check.Ready == nil || check.Name == "" {
			continue
		}
		if check.Ready() {
			results[check.Name] = "ready"
			continue
		}
		results[check.Name] = "not_ready"
		status = http.StatusServiceUnavailable
	}

	payload := map[string]any{
		"status": "ready",
		"checks": results,
	}
	if status != http.StatusOK {
		payload["status"] = "not_ready"
	}
	writeJSONResponse(w, status, payload)
}
