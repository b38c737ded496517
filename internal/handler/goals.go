package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/organizai/organizai/internal/handler/dto"
	"github.com/organizai/organizai/internal/model"
	"github.com/organizai/organizai/internal/service"
)

// GoalHandler handles HTTP requests for savings goals.
type GoalHandler struct {
	svc    *service.GoalService
	logger *slog.Logger
}

// NewGoalHandler creates a new GoalHandler.
func NewGoalHandler(svc *service.GoalService, logger *slog.Logger) *GoalHandler {
	return &GoalHandler{svc: svc, logger: logger}
}

// GoalResponse adds derived progress fields to a goal.
type GoalResponse struct {
	*model.Goal
	Progress      float64          `json:"progress"`
	Remaining     decimal.Decimal  `json:"remaining"`
	MonthlyNeeded *decimal.Decimal `json:"monthly_needed,omitempty"`
}

func toGoalResponse(g *model.Goal, now time.Time) GoalResponse {
	resp := GoalResponse{Goal: g, Progress: g.Progress(), Remaining: g.Remaining()}
	if g.Status == model.GoalActive {
		resp.MonthlyNeeded = g.MonthlyNeeded(now)
	}
	return resp
}

// List handles GET /api/v1/goals?status=.
func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	goals, err := h.svc.List(r.Context(), userID(r), model.GoalStatus(r.URL.Query().Get("status")))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	now := time.Now().UTC()
	out := make([]GoalResponse, len(goals))
	for i, g := range goals {
		out[i] = toGoalResponse(g, now)
	}
	writeData(w, out)
}

// Get handles GET /api/v1/goals/{id}.
func (h *GoalHandler) Get(w http.ResponseWriter, r *http.Request) {
	goal, err := h.svc.Get(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalResponse(goal, time.Now().UTC()))
}

// Create handles POST /api/v1/goals.
func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.GoalRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	goal, err := h.svc.Create(r.Context(), userID(r), req.Input())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGoalResponse(goal, time.Now().UTC()))
}

// Update handles PATCH /api/v1/goals/{id}.
func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.GoalRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	goal, err := h.svc.Update(r.Context(), userID(r), chi.URLParam(r, "id"), req.Input())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalResponse(goal, time.Now().UTC()))
}

// Delete handles DELETE /api/v1/goals/{id}.
func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddContribution handles POST /api/v1/goals/{id}/contributions.
func (h *GoalHandler) AddContribution(w http.ResponseWriter, r *http.Request) {
	var req dto.MovementRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	goal, err := h.svc.AddContribution(r.Context(), userID(r), chi.URLParam(r, "id"), req.Contribution())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGoalResponse(goal, time.Now().UTC()))
}

// ListContributions handles GET /api/v1/goals/{id}/contributions.
func (h *GoalHandler) ListContributions(w http.ResponseWriter, r *http.Request) {
	contributions, err := h.svc.ListContributions(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeData(w, contributions)
}
