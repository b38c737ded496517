package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/organizai/organizai/internal/handler/dto"
	"github.com/organizai/organizai/internal/service"
)

// DividendHandler handles HTTP requests for dividends.
type DividendHandler struct {
	svc    *service.DividendService
	logger *slog.Logger
}

// NewDividendHandler creates a new DividendHandler.
func NewDividendHandler(svc *service.DividendService, logger *slog.Logger) *DividendHandler {
	return &DividendHandler{svc: svc, logger: logger}
}

// List handles GET /api/v1/dividends?year=.
func (h *DividendHandler) List(w http.ResponseWriter, r *http.Request) {
	year, ok := queryInt(r, "year")
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_YEAR", "year must be a number")
		return
	}
	dividends, err := h.svc.List(r.Context(), userID(r), year)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeData(w, dividends)
}

// Summary handles GET /api/v1/dividends/summary?year=.
func (h *DividendHandler) Summary(w http.ResponseWriter, r *http.Request) {
	year, ok := queryInt(r, "year")
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_YEAR", "year must be a number")
		return
	}
	summary, err := h.svc.Summary(r.Context(), userID(r), year)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Create handles POST /api/v1/dividends.
func (h *DividendHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.DividendRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	dividend, err := h.svc.Create(r.Context(), userID(r), req.Input())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, dividend)
}

// Update handles PATCH /api/v1/dividends/{id}.
func (h *DividendHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.DividendRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	dividend, err := h.svc.Update(r.Context(), userID(r), chi.URLParam(r, "id"), req.Input())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dividend)
}

// Delete handles DELETE /api/v1/dividends/{id}.
func (h *DividendHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
