package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	readinessTimeout = 5 * time.Second

	statusOK            = "ok"
	statusNotConfigured = "not configured"
)

// HealthChecker is a dependency the readiness probe can ping.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	deps []dependency
}

type dependency struct {
	name    string
	checker HealthChecker
}

// NewHealthHandler creates a HealthHandler. A nil db or cache is reported
// as not configured and does not fail readiness.
func NewHealthHandler(db, cache HealthChecker) *HealthHandler {
	return &HealthHandler{deps: []dependency{
		{name: "postgres", checker: db},
		{name: "redis", checker: cache},
	}}
}

// HealthResponse is the probe body.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Healthz reports that the process is up. It never touches dependencies.
// GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: statusOK})
}

// Readyz pings every dependency concurrently and answers 503 when any
// configured one fails.
// GET /readyz
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	var (
		mu     sync.Mutex
		checks = make(map[string]string, len(h.deps))
		g      errgroup.Group
	)
	for _, dep := range h.deps {
		g.Go(func() error {
			status := probe(ctx, dep.checker)
			mu.Lock()
			checks[dep.name] = status
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	resp := HealthResponse{Status: statusOK, Checks: checks}
	code := http.StatusOK
	for _, status := range checks {
		if status != statusOK && status != statusNotConfigured {
			resp.Status, code = "unhealthy", http.StatusServiceUnavailable
			break
		}
	}
	writeJSON(w, code, resp)
}

func probe(ctx context.Context, dep HealthChecker) string {
	if dep == nil {
		return statusNotConfigured
	}
	if err := dep.Ping(ctx); err != nil {
		return "error: " + err.Error()
	}
	return statusOK
}
