package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		allowed    []string
		origin     string
		preflight  bool
		wantStatus int
		wantOrigin string
	}{
		{"nothing configured", nil, "https://app.organizai.dev", false, http.StatusOK, ""},
		{"exact match", []string{"https://app.organizai.dev"}, "https://app.organizai.dev", false, http.StatusOK, "https://app.organizai.dev"},
		{"case insensitive", []string{"HTTPS://APP.ORGANIZAI.DEV"}, "https://app.organizai.dev", false, http.StatusOK, "https://app.organizai.dev"},
		{"other origin passes without headers", []string{"https://app.organizai.dev"}, "https://evil.example", false, http.StatusOK, ""},
		{"other origin preflight forbidden", []string{"https://app.organizai.dev"}, "https://evil.example", true, http.StatusForbidden, ""},
		{"preflight no content", []string{"https://app.organizai.dev"}, "https://app.organizai.dev", true, http.StatusNoContent, "https://app.organizai.dev"},
		{"wildcard subdomain", []string{"*.organizai.dev"}, "https://staging.organizai.dev", false, http.StatusOK, "https://staging.organizai.dev"},
		{"wildcard subdomain with port", []string{"*.organizai.dev"}, "http://local.organizai.dev:5173", false, http.StatusOK, "http://local.organizai.dev:5173"},
		{"wildcard excludes bare domain", []string{"*.organizai.dev"}, "https://organizai.dev", false, http.StatusOK, ""},
		{"wildcard excludes look-alike", []string{"*.organizai.dev"}, "https://evilorganizai.dev", false, http.StatusOK, ""},
		{"same origin request", []string{"https://app.organizai.dev"}, "", false, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultCORSConfig()
			cfg.AllowedOrigins = tt.allowed

			handler := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			method := http.MethodGet
			if tt.preflight {
				method = http.MethodOptions
			}
			req := httptest.NewRequest(method, "/api/v1/accounts", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
		})
	}
}

func TestCORS_PreflightHeaders(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"https://app.organizai.dev"}

	handler := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("preflight reached the handler")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/transactions", nil)
	req.Header.Set("Origin", "https://app.organizai.dev")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	want := map[string]string{
		"Access-Control-Allow-Methods": "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		"Access-Control-Allow-Headers": "Accept, Accept-Language, Authorization, Content-Type, X-Request-ID",
		"Access-Control-Max-Age":       "86400",
		"Vary":                         "Origin",
	}
	for header, value := range want {
		if got := rec.Header().Get(header); got != value {
			t.Errorf("%s = %q, want %q", header, got, value)
		}
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "" {
		t.Errorf("credentials mode should stay off, got %q", got)
	}
}

func TestCORS_ExposesRateLimitHeaders(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"https://app.organizai.dev"}

	handler := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
	req.Header.Set("Origin", "https://app.organizai.dev")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	exposed := rec.Header().Get("Access-Control-Expose-Headers")
	if exposed != "X-Request-ID, X-RateLimit-Limit, X-RateLimit-Remaining, X-RateLimit-Reset, Retry-After" {
		t.Errorf("Access-Control-Expose-Headers = %q", exposed)
	}
}
