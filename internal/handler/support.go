package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/organizai/organizai/internal/handler/dto"
	"github.com/organizai/organizai/internal/model"
	"github.com/organizai/organizai/internal/service"
)

// SupportHandler handles support tickets for users and admins.
type SupportHandler struct {
	svc    *service.SupportService
	logger *slog.Logger
}

// NewSupportHandler creates a new SupportHandler.
func NewSupportHandler(svc *service.SupportService, logger *slog.Logger) *SupportHandler {
	return &SupportHandler{svc: svc, logger: logger}
}

// Create handles POST /api/v1/support.
func (h *SupportHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.TicketRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ticket, err := h.svc.Create(r.Context(), userID(r), req.Input())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	h.logger.Info("support_ticket_created", "ticket_id", ticket.ID, "priority", ticket.Priority)
	writeJSON(w, http.StatusCreated, ticket)
}

// ListMine handles GET /api/v1/support.
func (h *SupportHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.svc.ListMine(r.Context(), userID(r))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeData(w, tickets)
}

// Get handles GET /api/v1/support/{id}.
func (h *SupportHandler) Get(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.svc.Get(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

// ListAll handles GET /api/v1/admin/support?status=.
func (h *SupportHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.svc.ListAll(r.Context(), model.TicketStatus(r.URL.Query().Get("status")))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeData(w, tickets)
}

// Respond handles POST /api/v1/admin/support/{id}/respond.
func (h *SupportHandler) Respond(w http.ResponseWriter, r *http.Request) {
	var req dto.TicketResponseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ticket, err := h.svc.Respond(r.Context(), chi.URLParam(r, "id"), req.Response, req.Status)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}
