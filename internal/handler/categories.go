package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/organizai/organizai/internal/handler/dto"
	"github.com/organizai/organizai/internal/model"
	"github.com/organizai/organizai/internal/service"
)

// CategoryHandler handles HTTP requests for categories.
type CategoryHandler struct {
	svc    *service.CategoryService
	logger *slog.Logger
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(svc *service.CategoryService, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{svc: svc, logger: logger}
}

// List handles GET /api/v1/categories?type=income|expense.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	flow := model.FlowType(r.URL.Query().Get("type"))
	categories, err := h.svc.List(r.Context(), userID(r), flow)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeData(w, categories)
}

// Create handles POST /api/v1/categories.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	category, err := h.svc.Create(r.Context(), userID(r), req.Input())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

// Update handles PATCH /api/v1/categories/{id}.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.CategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	category, err := h.svc.Update(r.Context(), userID(r), chi.URLParam(r, "id"), req.Input())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

// Delete handles DELETE /api/v1/categories/{id}.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
