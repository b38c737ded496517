package handler

import (
	"net/http"
)

// MetricsExposer renders metrics in the Prometheus exposition format.
type MetricsExposer interface {
	Handler() http.Handler
}

// MetricsHandler exposes the process metrics.
type MetricsHandler struct {
	exposer MetricsExposer
}

// NewMetricsHandler creates a new MetricsHandler. exposer may be nil when
// metrics are disabled.
func NewMetricsHandler(exposer MetricsExposer) *MetricsHandler {
	return &MetricsHandler{exposer: exposer}
}

// Metrics handles GET /metrics.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.exposer == nil {
		writeError(w, http.StatusServiceUnavailable, "METRICS_DISABLED", "metrics are not enabled")
		return
	}
	h.exposer.Handler().ServeHTTP(w, r)
}
