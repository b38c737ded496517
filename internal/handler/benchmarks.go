package handler

import (
	"log/slog"
	"net/http"

	"github.com/organizai/organizai/internal/service"
)

// BenchmarkHandler compares a symbol against a benchmark index.
type BenchmarkHandler struct {
	svc    *service.BenchmarkService
	logger *slog.Logger
}

// NewBenchmarkHandler creates a new BenchmarkHandler.
func NewBenchmarkHandler(svc *service.BenchmarkService, logger *slog.Logger) *BenchmarkHandler {
	return &BenchmarkHandler{svc: svc, logger: logger}
}

// Compare handles GET /api/v1/benchmarks?symbol=&benchmark=&range=.
func (h *BenchmarkHandler) Compare(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	cmp, err := h.svc.Compare(r.Context(), query.Get("symbol"), query.Get("benchmark"), query.Get("range"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}
