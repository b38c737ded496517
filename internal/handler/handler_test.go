package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/organizai/organizai/internal/auth"
	"github.com/organizai/organizai/internal/handler/dto"
	"github.com/organizai/organizai/internal/model"
	"github.com/organizai/organizai/internal/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func withUser(r *http.Request, userID string) *http.Request {
	ctx := auth.ContextWithAuth(r.Context(), &model.AuthContext{UserID: userID, Role: model.RoleUser})
	return r.WithContext(ctx)
}

func TestHandler_Info(t *testing.T) {
	h := New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	h.Info(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	contentType := rec.Header().Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", contentType)
	}

	var response map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response["name"] != "organizai" {
		t.Errorf("unexpected name: %s", response["name"])
	}

	if response["version"] != Version {
		t.Errorf("unexpected version: %s", response["version"])
	}
}

func TestHandler_NotFound(t *testing.T) {
	h := New()

	req := httptest.NewRequest(http.MethodGet, "/nonexistent", nil)
	rec := httptest.NewRecorder()

	h.NotFound(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != "NOT_FOUND" {
		t.Errorf("unexpected code: %s", resp.Code)
	}
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	h := New()

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()

	h.MethodNotAllowed(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Error != "method not allowed" {
		t.Errorf("unexpected error message: %s", resp.Error)
	}
}

func TestHandleServiceError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", &service.ValidationError{Field: "amount", Message: "must be greater than zero"}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"wrapped_not_found", fmt.Errorf("load: %w", service.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"category_mismatch", service.ErrCategoryMismatch, http.StatusBadRequest, "CATEGORY_MISMATCH"},
		{"email_taken", service.ErrEmailTaken, http.StatusConflict, "EMAIL_TAKEN"},
		{"account_in_use", service.ErrAccountInUse, http.StatusConflict, "ACCOUNT_IN_USE"},
		{"category_in_use", service.ErrCategoryInUse, http.StatusConflict, "CATEGORY_IN_USE"},
		{"duplicate_budget", service.ErrDuplicateBudget, http.StatusConflict, "DUPLICATE_BUDGET"},
		{"goal_not_active", service.ErrGoalNotActive, http.StatusConflict, "GOAL_NOT_ACTIVE"},
		{"debt_not_active", service.ErrDebtNotActive, http.StatusConflict, "DEBT_NOT_ACTIVE"},
		{"credentials", service.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"banned", &service.BanError{Reason: "spam"}, http.StatusForbidden, "BANNED"},
		{"ban_self", service.ErrCannotBanSelf, http.StatusForbidden, "CANNOT_BAN_SELF"},
		{"ban_admin", service.ErrCannotBanAdmin, http.StatusForbidden, "CANNOT_BAN_ADMIN"},
		{"signature", service.ErrInvalidSignature, http.StatusBadRequest, "INVALID_SIGNATURE"},
		{"not_configured", service.ErrNotConfigured, http.StatusServiceUnavailable, "NOT_CONFIGURED"},
		{"provider", &service.ProviderError{Provider: "groq", Message: "try later", Err: errors.New("502")}, http.StatusBadGateway, "PROVIDER_ERROR"},
		{"internal", errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			handleServiceError(rec, discardLogger(), tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			resp := decodeError(t, rec)
			if resp.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", resp.Code, tt.wantCode)
			}
			if tt.wantCode == "INTERNAL_ERROR" && strings.Contains(resp.Error, "connection") {
				t.Errorf("internal details leaked: %s", resp.Error)
			}
		})
	}
}

func TestHandleServiceError_ProviderMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	handleServiceError(rec, discardLogger(), &service.ProviderError{
		Provider: "stripe",
		Message:  "Your card was declined.",
		Err:      errors.New("card_declined"),
	})
	if resp := decodeError(t, rec); resp.Error != "Your card was declined." {
		t.Errorf("error = %q, want the user-facing message", resp.Error)
	}
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		limit      int64
		wantStatus int
	}{
		{"empty", "", 0, http.StatusBadRequest},
		{"malformed", "{", 0, http.StatusBadRequest},
		{"bad_date", `{"date":"18/03/2026"}`, 0, http.StatusBadRequest},
		{"too_large", `{"description":"` + strings.Repeat("x", 100) + `"}`, 16, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			if tt.limit > 0 {
				req.Body = http.MaxBytesReader(rec, req.Body, tt.limit)
			}
			var v dto.TransactionRequest
			if decodeJSON(rec, req, &v) {
				t.Fatal("decodeJSON() = true, want false")
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount":"12.5","date":"2026-03-18"}`))
	var v dto.TransactionRequest
	if !decodeJSON(httptest.NewRecorder(), req, &v) {
		t.Fatal("valid body rejected")
	}
	if v.Amount == nil || v.Amount.String() != "12.5" || v.Date.Ptr().Day() != 18 {
		t.Errorf("decoded = %+v", v)
	}
}

func TestWriteData_NilSlice(t *testing.T) {
	rec := httptest.NewRecorder()
	var alerts []*model.Alert
	writeData(rec, alerts)

	if body := strings.TrimSpace(rec.Body.String()); body != `{"data":[]}` {
		t.Errorf("body = %s", body)
	}
}

func TestUserID(t *testing.T) {
	req := withUser(httptest.NewRequest(http.MethodGet, "/", nil), "user-1")
	if got := userID(req); got != "user-1" {
		t.Errorf("userID() = %q", got)
	}
}
