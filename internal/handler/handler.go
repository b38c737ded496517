// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"

	"github.com/organizai/organizai/internal/auth"
	"github.com/organizai/organizai/internal/handler/dto"
	"github.com/organizai/organizai/internal/service"
)

// Version is reported by the info endpoint.
const Version = "1.0.0"

// Handler serves the endpoints that are not tied to a domain.
type Handler struct{}

// New creates a new Handler instance.
func New() *Handler {
	return &Handler{}
}

// Info describes the API.
// GET /
func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"name":    "organizai",
		"version": Version,
		"docs":    "/api/v1",
	})
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeData wraps a list in the {"data": [...]} envelope. A nil slice is
// sent as [].
func writeData(w http.ResponseWriter, data any) {
	if v := reflect.ValueOf(data); v.Kind() == reflect.Slice && v.IsNil() {
		data = []struct{}{}
	}
	writeJSON(w, http.StatusOK, dto.DataResponse{Data: data})
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{Error: message, Code: code})
}

// decodeJSON reads the request body into v. A false return means an error
// response has been written.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "request body too large")
		case errors.Is(err, io.EOF):
			writeError(w, http.StatusBadRequest, "INVALID_JSON", "request body is required")
		default:
			writeError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		}
		return false
	}
	return true
}

// userID returns the authenticated user. Routes using it sit behind the
// auth middleware.
func userID(r *http.Request) string {
	return auth.MustAuthFromContext(r.Context()).UserID
}

func queryInt(r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// handleServiceError maps service errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var (
		validation *service.ValidationError
		banned     *service.BanError
		provider   *service.ProviderError
	)
	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", validation.Error())
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
	case errors.Is(err, service.ErrCategoryMismatch):
		writeError(w, http.StatusBadRequest, "CATEGORY_MISMATCH", err.Error())
	case errors.Is(err, service.ErrInvalidCursor):
		writeError(w, http.StatusBadRequest, "INVALID_CURSOR", err.Error())
	case errors.Is(err, service.ErrEmailTaken):
		writeError(w, http.StatusConflict, "EMAIL_TAKEN", err.Error())
	case errors.Is(err, service.ErrAccountInUse):
		writeError(w, http.StatusConflict, "ACCOUNT_IN_USE", err.Error())
	case errors.Is(err, service.ErrCategoryInUse):
		writeError(w, http.StatusConflict, "CATEGORY_IN_USE", err.Error())
	case errors.Is(err, service.ErrDuplicateBudget):
		writeError(w, http.StatusConflict, "DUPLICATE_BUDGET", err.Error())
	case errors.Is(err, service.ErrGoalNotActive):
		writeError(w, http.StatusConflict, "GOAL_NOT_ACTIVE", err.Error())
	case errors.Is(err, service.ErrDebtNotActive):
		writeError(w, http.StatusConflict, "DEBT_NOT_ACTIVE", err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", err.Error())
	case errors.As(err, &banned):
		writeError(w, http.StatusForbidden, "BANNED", "account is banned: "+banned.Reason)
	case errors.Is(err, service.ErrCannotBanSelf):
		writeError(w, http.StatusForbidden, "CANNOT_BAN_SELF", err.Error())
	case errors.Is(err, service.ErrCannotBanAdmin):
		writeError(w, http.StatusForbidden, "CANNOT_BAN_ADMIN", err.Error())
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "FORBIDDEN", "forbidden")
	case errors.Is(err, service.ErrInvalidSignature):
		writeError(w, http.StatusBadRequest, "INVALID_SIGNATURE", err.Error())
	case errors.Is(err, service.ErrNotConfigured):
		writeError(w, http.StatusServiceUnavailable, "NOT_CONFIGURED", err.Error())
	case errors.As(err, &provider):
		writeError(w, http.StatusBadGateway, "PROVIDER_ERROR", provider.Message)
	default:
		logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
