package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/organizai/organizai/internal/auth"
	"github.com/organizai/organizai/internal/model"
)

const testSecret = "test-secret-that-is-long-enough-0123456789"

type stubBans struct {
	bans map[string]*model.Ban
	err  error
}

func (s stubBans) ActiveBan(ctx context.Context, userID string) (*model.Ban, error) {
	return s.bans[userID], s.err
}

func newAuthChain(t *testing.T, bans BanChecker) (http.Handler, *auth.JWTManager) {
	t.Helper()
	jwt := auth.NewJWTManager(testSecret, time.Hour)
	cfg := AuthConfig{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Tokens: jwt,
		Bans:   bans,
	}
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authCtx := auth.MustAuthFromContext(r.Context())
		_, _ = w.Write([]byte(authCtx.UserID + ":" + authCtx.Role))
	})
	return Auth(cfg)(final), jwt
}

func issue(t *testing.T, jwt *auth.JWTManager, id, role string) string {
	t.Helper()
	token, _, err := jwt.Generate(&model.User{ID: id, Email: id + "@example.com", Role: role})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	return token
}

func TestAuth(t *testing.T) {
	bans := stubBans{bans: map[string]*model.Ban{
		"user-banned": {ID: "ban-1", UserID: "user-banned", Reason: "chargeback fraud"},
	}}
	handler, jwt := newAuthChain(t, bans)
	other := auth.NewJWTManager("a-different-secret-also-long-enough-000", time.Hour)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"missing header", "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"wrong scheme", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"foreign signature", "Bearer " + issue(t, other, "user-1", model.RoleUser), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"banned user", "Bearer " + issue(t, jwt, "user-banned", model.RoleUser), http.StatusForbidden, "chargeback fraud"},
		{"valid token", "Bearer " + issue(t, jwt, "user-1", model.RoleUser), http.StatusOK, "user-1:user"},
		{"lowercase scheme", "bearer " + issue(t, jwt, "user-2", model.RoleAdmin), http.StatusOK, "user-2:admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %s, want it to contain %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestAuth_BanLookupFailure(t *testing.T) {
	handler, jwt := newAuthChain(t, stubBans{err: errors.New("connection refused")})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, jwt, "user-1", model.RoleUser))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name       string
		authCtx    *model.AuthContext
		wantStatus int
	}{
		{"no auth", nil, http.StatusUnauthorized},
		{"regular user", &model.AuthContext{UserID: "user-1", Role: model.RoleUser}, http.StatusForbidden},
		{"admin", &model.AuthContext{UserID: "admin-1", Role: model.RoleAdmin}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/users", nil)
			if tt.authCtx != nil {
				req = req.WithContext(auth.ContextWithAuth(req.Context(), tt.authCtx))
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
