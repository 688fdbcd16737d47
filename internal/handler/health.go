package handler

import (
	"context"
	"net/http"
	"time"
)

// readyzTimeout caps how long a readiness probe may spend pinging
// dependencies before the probe itself is counted as failed.
const readyzTimeout = 5 * time.Second

// HealthChecker reports whether a backing service is reachable.
// Satisfied by the Postgres repository and the Redis identity cache.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// dependency is a named backing service checked by the readiness probe.
type dependency struct {
	name    string
	checker HealthChecker
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	deps []dependency
}

// NewHealthHandler wires the probe endpoints to the post store and the
// identity cache. Either may be nil; a nil dependency is reported as
// not configured instead of failing the probe.
func NewHealthHandler(store, cache HealthChecker) *HealthHandler {
	return &HealthHandler{
		deps: []dependency{
			{name: "postgres", checker: store},
			{name: "redis", checker: cache},
		},
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Healthz is the liveness probe: 200 whenever the process is serving,
// no dependency checks.
//
// GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Readyz is the readiness probe. It pings every configured dependency
// and returns 503 if any of them is unreachable.
//
// GET /readyz
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyzTimeout)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.deps))
	for _, dep := range h.deps {
		if dep.checker == nil {
			checks[dep.name] = "not configured"
			continue
		}
		if err := dep.checker.Ping(ctx); err != nil {
			checks[dep.name] = "error: " + err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[dep.name] = "ok"
	}

	body := HealthResponse{Status: "ok", Checks: checks}
	if status != http.StatusOK {
		body.Status = "unhealthy"
	}
	writeJSON(w, status, body)
}
