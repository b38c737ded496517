package handler

import (
	"log/slog"
	"net/http"

	"github.com/organizai/organizai/internal/service"
)

// GamificationHandler serves XP, achievements and the leaderboard.
type GamificationHandler struct {
	svc    *service.GamificationService
	logger *slog.Logger
}

// NewGamificationHandler creates a new GamificationHandler.
func NewGamificationHandler(svc *service.GamificationService, logger *slog.Logger) *GamificationHandler {
	return &GamificationHandler{svc: svc, logger: logger}
}

// Profile handles GET /api/v1/gamification/profile.
func (h *GamificationHandler) Profile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.svc.Profile(r.Context(), userID(r))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// Achievements handles GET /api/v1/gamification/achievements.
func (h *GamificationHandler) Achievements(w http.ResponseWriter, r *http.Request) {
	achievements, err := h.svc.Achievements(r.Context(), userID(r))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeData(w, achievements)
}

// Leaderboard handles GET /api/v1/gamification/leaderboard?limit=.
func (h *GamificationHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit")
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a number")
		return
	}
	entries, err := h.svc.Leaderboard(r.Context(), limit)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeData(w, entries)
}
