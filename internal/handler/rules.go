package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/organizai/organizai/internal/handler/dto"
	"github.com/organizai/organizai/internal/service"
)

// RuleHandler handles HTTP requests for categorization rules.
type RuleHandler struct {
	svc    *service.RuleService
	logger *slog.Logger
}

// NewRuleHandler creates a new RuleHandler.
func NewRuleHandler(svc *service.RuleService, logger *slog.Logger) *RuleHandler {
	return &RuleHandler{svc: svc, logger: logger}
}

// List handles GET /api/v1/rules.
func (h *RuleHandler) List(w http.ResponseWriter, r *http.Request) {
	rules, err := h.svc.List(r.Context(), userID(r))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeData(w, rules)
}

// Create handles POST /api/v1/rules.
func (h *RuleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.RuleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	rule, err := h.svc.Create(r.Context(), userID(r), req.Input())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, rule)
}

// Update handles PATCH /api/v1/rules/{id}.
func (h *RuleHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.RuleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	rule, err := h.svc.Update(r.Context(), userID(r), chi.URLParam(r, "id"), req.Input())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

// Delete handles DELETE /api/v1/rules/{id}.
func (h *RuleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Test handles POST /api/v1/rules/test.
func (h *RuleHandler) Test(w http.ResponseWriter, r *http.Request) {
	var req dto.RuleTestRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	rule, err := h.svc.Test(r.Context(), userID(r), req.Description)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.RuleTestResponse{Matched: rule != nil, Rule: rule})
}
