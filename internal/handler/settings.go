package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/organizai/organizai/internal/handler/dto"
	"github.com/organizai/organizai/internal/service"
)

// SettingsHandler manages the user's own provider keys.
type SettingsHandler struct {
	svc    *service.SettingsService
	logger *slog.Logger
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(svc *service.SettingsService, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{svc: svc, logger: logger}
}

// List handles GET /api/v1/settings/api-keys.
func (h *SettingsHandler) List(w http.ResponseWriter, r *http.Request) {
	views, err := h.svc.List(r.Context(), userID(r))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeData(w, views)
}

// Upsert handles PUT /api/v1/settings/api-keys/{provider}.
func (h *SettingsHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req dto.SettingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	view, err := h.svc.Upsert(r.Context(), userID(r), chi.URLParam(r, "provider"), req.APIKey, req.Model)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	h.logger.Info("api_key_saved", "provider", view.Provider)
	writeJSON(w, http.StatusOK, view)
}

// Delete handles DELETE /api/v1/settings/api-keys/{provider}.
func (h *SettingsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), userID(r), chi.URLParam(r, "provider")); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
