package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/organizai/organizai/internal/auth"
	"github.com/organizai/organizai/internal/handler/dto"
	"github.com/organizai/organizai/internal/service"
)

// AdminHandler provides admin-only moderation endpoints.
type AdminHandler struct {
	svc    *service.AdminService
	logger *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(svc *service.AdminService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, logger: logger}
}

// ListUsers handles GET /api/v1/admin/users?q=&limit=&offset=
// The search matches email or name.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit")
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a number")
		return
	}
	offset, ok := queryInt(r, "offset")
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_OFFSET", "offset must be a number")
		return
	}
	users, err := h.svc.ListUsers(r.Context(), r.URL.Query().Get("q"), limit, offset)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeData(w, users)
}

// ListBans handles GET /api/v1/admin/bans.
func (h *AdminHandler) ListBans(w http.ResponseWriter, r *http.Request) {
	bans, err := h.svc.ListBans(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeData(w, bans)
}

// Ban handles POST /api/v1/admin/bans.
func (h *AdminHandler) Ban(w http.ResponseWriter, r *http.Request) {
	var req dto.BanRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	admin := auth.MustAuthFromContext(r.Context())
	ban, err := h.svc.Ban(r.Context(), admin.UserID, req.Input())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, ban)
}

// Unban handles DELETE /api/v1/admin/bans/{userID}.
func (h *AdminHandler) Unban(w http.ResponseWriter, r *http.Request) {
	admin := auth.MustAuthFromContext(r.Context())
	if err := h.svc.Unban(r.Context(), admin.UserID, chi.URLParam(r, "userID")); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
