package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/organizai/organizai/internal/handler/dto"
	"github.com/organizai/organizai/internal/service"
)

// maxWebhookBody matches the size Stripe documents for event payloads.
const maxWebhookBody = 65536

// BillingHandler handles Stripe checkout and webhooks.
type BillingHandler struct {
	svc    *service.BillingService
	logger *slog.Logger
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(svc *service.BillingService, logger *slog.Logger) *BillingHandler {
	return &BillingHandler{svc: svc, logger: logger}
}

// Checkout handles POST /api/v1/billing/checkout.
func (h *BillingHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	url, err := h.svc.CreateCheckout(r.Context(), userID(r))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.CheckoutResponse{URL: url})
}

// Webhook handles POST /api/v1/billing/webhook. The signature covers the
// raw body, so it is read unparsed.
func (h *BillingHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "could not read request body")
		return
	}

	if err := h.svc.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}
