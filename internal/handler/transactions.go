package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/organizai/organizai/internal/handler/dto"
	"github.com/organizai/organizai/internal/model"
	"github.com/organizai/organizai/internal/service"
)

// TransactionHandler handles HTTP requests for transactions.
type TransactionHandler struct {
	svc    *service.TransactionService
	logger *slog.Logger
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(svc *service.TransactionService, logger *slog.Logger) *TransactionHandler {
	return &TransactionHandler{svc: svc, logger: logger}
}

// Create handles POST /api/v1/transactions.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.TransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	tx, err := h.svc.Create(r.Context(), userID(r), req.Input())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("transaction_created",
		"transaction_id", tx.ID,
		"type", tx.Type,
		"has_category", tx.CategoryID != nil,
	)
	writeJSON(w, http.StatusCreated, tx)
}

// Get handles GET /api/v1/transactions/{id}.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	tx, err := h.svc.Get(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

// List handles GET /api/v1/transactions.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	input := service.ListTransactionsInput{
		UserID:     userID(r),
		Type:       model.FlowType(query.Get("type")),
		AccountID:  query.Get("account_id"),
		CategoryID: query.Get("category_id"),
		Search:     query.Get("search"),
		Cursor:     query.Get("cursor"),
	}

	limit, ok := queryInt(r, "limit")
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a number")
		return
	}
	input.Limit = limit

	for name, dst := range map[string]**time.Time{"from": &input.From, "to": &input.To} {
		raw := query.Get(name)
		if raw == "" {
			continue
		}
		t, err := dto.ParseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_DATE", name+": "+err.Error())
			return
		}
		*dst = &t
	}

	result, err := h.svc.List(r.Context(), input)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToTransactionListResponse(result))
}

// Update handles PATCH /api/v1/transactions/{id}.
func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.TransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	tx, err := h.svc.Update(r.Context(), userID(r), chi.URLParam(r, "id"), req.Input())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

// Delete handles DELETE /api/v1/transactions/{id}.
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), userID(r), id); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	h.logger.Info("transaction_deleted", "transaction_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// Recurring handles GET /api/v1/transactions/recurring.
func (h *TransactionHandler) Recurring(w http.ResponseWriter, r *http.Request) {
	series, err := h.svc.Recurring(r.Context(), userID(r))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeData(w, series)
}
