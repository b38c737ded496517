package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/organizai/organizai/internal/handler/dto"
	"github.com/organizai/organizai/internal/service"
)

// BudgetHandler handles HTTP requests for budgets.
type BudgetHandler struct {
	svc    *service.BudgetService
	logger *slog.Logger
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(svc *service.BudgetService, logger *slog.Logger) *BudgetHandler {
	return &BudgetHandler{svc: svc, logger: logger}
}

// List handles GET /api/v1/budgets.
func (h *BudgetHandler) List(w http.ResponseWriter, r *http.Request) {
	budgets, err := h.svc.List(r.Context(), userID(r))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeData(w, budgets)
}

// Status handles GET /api/v1/budgets/status.
func (h *BudgetHandler) Status(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.svc.Status(r.Context(), userID(r))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeData(w, statuses)
}

// Get handles GET /api/v1/budgets/{id}.
func (h *BudgetHandler) Get(w http.ResponseWriter, r *http.Request) {
	budget, err := h.svc.Get(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, budget)
}

// Create handles POST /api/v1/budgets.
func (h *BudgetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.BudgetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	budget, err := h.svc.Create(r.Context(), userID(r), req.Input())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, budget)
}

// Update handles PATCH /api/v1/budgets/{id}.
func (h *BudgetHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.BudgetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	budget, err := h.svc.Update(r.Context(), userID(r), chi.URLParam(r, "id"), req.Input())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, budget)
}

// Delete handles DELETE /api/v1/budgets/{id}.
func (h *BudgetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
