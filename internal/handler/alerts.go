package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/organizai/organizai/internal/handler/dto"
	"github.com/organizai/organizai/internal/service"
)

// AlertHandler handles HTTP requests for alerts.
type AlertHandler struct {
	svc    *service.AlertService
	logger *slog.Logger
}

// NewAlertHandler creates a new AlertHandler.
func NewAlertHandler(svc *service.AlertService, logger *slog.Logger) *AlertHandler {
	return &AlertHandler{svc: svc, logger: logger}
}

// List handles GET /api/v1/alerts?unread=true&limit=.
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit")
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a number")
		return
	}
	unread := r.URL.Query().Get("unread") == "true"
	alerts, err := h.svc.List(r.Context(), userID(r), unread, limit)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeData(w, alerts)
}

// UnreadCount handles GET /api/v1/alerts/unread-count.
func (h *AlertHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.UnreadCount(r.Context(), userID(r))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.CountResponse{Count: n})
}

// MarkRead handles POST /api/v1/alerts/{id}/read.
func (h *AlertHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.MarkRead(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkAllRead handles POST /api/v1/alerts/read-all.
func (h *AlertHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.MarkAllRead(r.Context(), userID(r))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.CountResponse{Count: n})
}

// Delete handles DELETE /api/v1/alerts/{id}.
func (h *AlertHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
