package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/organizai/organizai/internal/handler/dto"
	"github.com/organizai/organizai/internal/model"
	"github.com/organizai/organizai/internal/service"
)

// InvestmentHandler handles HTTP requests for investments.
type InvestmentHandler struct {
	svc    *service.InvestmentService
	logger *slog.Logger
}

// NewInvestmentHandler creates a new InvestmentHandler.
func NewInvestmentHandler(svc *service.InvestmentService, logger *slog.Logger) *InvestmentHandler {
	return &InvestmentHandler{svc: svc, logger: logger}
}

// InvestmentResponse adds valuation fields to an investment.
type InvestmentResponse struct {
	*model.Investment
	CostBasis   decimal.Decimal `json:"cost_basis"`
	MarketValue decimal.Decimal `json:"market_value"`
	Gain        decimal.Decimal `json:"gain"`
	GainPercent float64         `json:"gain_pct"`
}

func toInvestmentResponse(inv *model.Investment) InvestmentResponse {
	return InvestmentResponse{
		Investment:  inv,
		CostBasis:   inv.CostBasis(),
		MarketValue: inv.MarketValue(),
		Gain:        inv.Gain(),
		GainPercent: inv.GainPercent(),
	}
}

// List handles GET /api/v1/investments.
func (h *InvestmentHandler) List(w http.ResponseWriter, r *http.Request) {
	investments, err := h.svc.List(r.Context(), userID(r))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	out := make([]InvestmentResponse, len(investments))
	for i, inv := range investments {
		out[i] = toInvestmentResponse(inv)
	}
	writeData(w, out)
}

// Summary handles GET /api/v1/investments/summary.
func (h *InvestmentHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Summary(r.Context(), userID(r))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Get handles GET /api/v1/investments/{id}.
func (h *InvestmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	inv, err := h.svc.Get(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvestmentResponse(inv))
}

// Create handles POST /api/v1/investments.
func (h *InvestmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.InvestmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	inv, err := h.svc.Create(r.Context(), userID(r), req.Input())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toInvestmentResponse(inv))
}

// Update handles PATCH /api/v1/investments/{id}.
func (h *InvestmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.InvestmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	inv, err := h.svc.Update(r.Context(), userID(r), chi.URLParam(r, "id"), req.Input())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvestmentResponse(inv))
}

// Delete handles DELETE /api/v1/investments/{id}.
func (h *InvestmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddReturn handles POST /api/v1/investments/{id}/returns.
func (h *InvestmentHandler) AddReturn(w http.ResponseWriter, r *http.Request) {
	var req dto.ReturnRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ret, err := h.svc.AddReturn(r.Context(), userID(r), chi.URLParam(r, "id"), req.Input())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, ret)
}

// ListReturns handles GET /api/v1/investments/{id}/returns.
func (h *InvestmentHandler) ListReturns(w http.ResponseWriter, r *http.Request) {
	returns, err := h.svc.ListReturns(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeData(w, returns)
}
