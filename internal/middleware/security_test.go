package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSecurity(t *testing.T) {
	tests := []struct {
		name   string
		isDev  bool
		header string
		want   string
	}{
		{"nosniff", false, "X-Content-Type-Options", "nosniff"},
		{"frame deny", false, "X-Frame-Options", "DENY"},
		{"referrer", false, "Referrer-Policy", "strict-origin-when-cross-origin"},
		{"csp", false, "Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
		{"coop", false, "Cross-Origin-Opener-Policy", "same-origin"},
		{"corp", false, "Cross-Origin-Resource-Policy", "same-origin"},
		{"no store", false, "Cache-Control", "no-store"},
		{"hsts in production", false, "Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload"},
		{"no hsts in development", true, "Strict-Transport-Security", ""},
		{"nosniff in development", true, "X-Content-Type-Options", "nosniff"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := Security(SecurityConfig{IsDevelopment: tt.isDev})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil))

			if got := rec.Header().Get(tt.header); got != tt.want {
				t.Errorf("%s = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

func TestMaxBodySize(t *testing.T) {
	tests := []struct {
		name          string
		maxBytes      int64
		body          string
		declareLength bool
		wantStatus    int
	}{
		{"small body", 1024, `{"name":"Wallet"}`, true, http.StatusOK},
		{"declared too large", 10, `{"description":"a much longer body"}`, true, http.StatusRequestEntityTooLarge},
		{"streamed too large", 10, `{"description":"a much longer body"}`, false, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := MaxBodySize(tt.maxBytes)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if _, err := io.ReadAll(r.Body); err != nil {
					w.WriteHeader(http.StatusRequestEntityTooLarge)
					return
				}
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", strings.NewReader(tt.body))
			if !tt.declareLength {
				req.ContentLength = -1
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
