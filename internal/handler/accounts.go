package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/organizai/organizai/internal/handler/dto"
	"github.com/organizai/organizai/internal/service"
)

// AccountHandler handles HTTP requests for accounts.
type AccountHandler struct {
	svc    *service.AccountService
	logger *slog.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(svc *service.AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{svc: svc, logger: logger}
}

// List handles GET /api/v1/accounts.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.svc.List(r.Context(), userID(r))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeData(w, accounts)
}

// Get handles GET /api/v1/accounts/{id}.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	account, err := h.svc.Get(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

// Create handles POST /api/v1/accounts.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.AccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	account, err := h.svc.Create(r.Context(), userID(r), req.Input())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

// Update handles PATCH /api/v1/accounts/{id}.
func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.AccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	account, err := h.svc.Update(r.Context(), userID(r), chi.URLParam(r, "id"), req.Input())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

// Delete handles DELETE /api/v1/accounts/{id}.
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
