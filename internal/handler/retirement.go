package handler

import (
	"log/slog"
	"net/http"

	"github.com/organizai/organizai/internal/handler/dto"
	"github.com/organizai/organizai/internal/service"
)

// RetirementHandler handles the retirement plan.
type RetirementHandler struct {
	svc    *service.RetirementService
	logger *slog.Logger
}

// NewRetirementHandler creates a new RetirementHandler.
func NewRetirementHandler(svc *service.RetirementService, logger *slog.Logger) *RetirementHandler {
	return &RetirementHandler{svc: svc, logger: logger}
}

// Get handles GET /api/v1/retirement.
func (h *RetirementHandler) Get(w http.ResponseWriter, r *http.Request) {
	plan, err := h.svc.Get(r.Context(), userID(r))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// Upsert handles PUT /api/v1/retirement.
func (h *RetirementHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req dto.RetirementRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	plan, err := h.svc.Upsert(r.Context(), userID(r), req.Input())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// Projection handles GET /api/v1/retirement/projection.
func (h *RetirementHandler) Projection(w http.ResponseWriter, r *http.Request) {
	proj, err := h.svc.Projection(r.Context(), userID(r))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, proj)
}
