package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/organizai/organizai/internal/handler/dto"
	"github.com/organizai/organizai/internal/model"
	"github.com/organizai/organizai/internal/planning"
	"github.com/organizai/organizai/internal/service"
)

// DebtHandler handles HTTP requests for debts.
type DebtHandler struct {
	svc    *service.DebtService
	logger *slog.Logger
}

// NewDebtHandler creates a new DebtHandler.
func NewDebtHandler(svc *service.DebtService, logger *slog.Logger) *DebtHandler {
	return &DebtHandler{svc: svc, logger: logger}
}

// DebtResponse adds the paid percentage to a debt.
type DebtResponse struct {
	*model.Debt
	PaidPercent float64 `json:"paid_percent"`
}

// List handles GET /api/v1/debts?status=.
func (h *DebtHandler) List(w http.ResponseWriter, r *http.Request) {
	debts, err := h.svc.List(r.Context(), userID(r), model.DebtStatus(r.URL.Query().Get("status")))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	out := make([]DebtResponse, len(debts))
	for i, d := range debts {
		out[i] = DebtResponse{Debt: d, PaidPercent: d.PaidPercent()}
	}
	writeData(w, out)
}

// Get handles GET /api/v1/debts/{id}.
func (h *DebtHandler) Get(w http.ResponseWriter, r *http.Request) {
	debt, err := h.svc.Get(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, DebtResponse{Debt: debt, PaidPercent: debt.PaidPercent()})
}

// Create handles POST /api/v1/debts.
func (h *DebtHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.DebtRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	debt, err := h.svc.Create(r.Context(), userID(r), req.Input())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, DebtResponse{Debt: debt, PaidPercent: debt.PaidPercent()})
}

// Update handles PATCH /api/v1/debts/{id}.
func (h *DebtHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.DebtRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	debt, err := h.svc.Update(r.Context(), userID(r), chi.URLParam(r, "id"), req.Input())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, DebtResponse{Debt: debt, PaidPercent: debt.PaidPercent()})
}

// Delete handles DELETE /api/v1/debts/{id}.
func (h *DebtHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddPayment handles POST /api/v1/debts/{id}/payments.
func (h *DebtHandler) AddPayment(w http.ResponseWriter, r *http.Request) {
	var req dto.MovementRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	debt, err := h.svc.AddPayment(r.Context(), userID(r), chi.URLParam(r, "id"), req.Payment())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, DebtResponse{Debt: debt, PaidPercent: debt.PaidPercent()})
}

// ListPayments handles GET /api/v1/debts/{id}/payments.
func (h *DebtHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.svc.ListPayments(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeData(w, payments)
}

// PayoffPlan handles GET /api/v1/debts/payoff-plan?strategy=&extra=.
func (h *DebtHandler) PayoffPlan(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	extra := decimal.Zero
	if raw := query.Get("extra"); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_AMOUNT", "extra must be a number")
			return
		}
		extra = parsed
	}

	plan, err := h.svc.PayoffPlan(r.Context(), userID(r), planning.Strategy(query.Get("strategy")), extra)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}
