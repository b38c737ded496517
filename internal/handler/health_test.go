package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type pinger struct {
	err error
}

func (p *pinger) Ping(ctx context.Context) error {
	return p.err
}

func TestHealthHandler_Healthz(t *testing.T) {
	h := NewHealthHandler(&pinger{err: errors.New("down")}, nil)

	rec := httptest.NewRecorder()
	h.Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("liveness must not depend on dependencies, got %d", rec.Code)
	}
}

func TestHealthHandler_Readyz(t *testing.T) {
	tests := []struct {
		name       string
		db         HealthChecker
		cache      HealthChecker
		wantStatus int
		wantChecks map[string]string
	}{
		{
			name:       "all healthy",
			db:         &pinger{},
			cache:      &pinger{},
			wantStatus: http.StatusOK,
			wantChecks: map[string]string{"postgres": "ok", "redis": "ok"},
		},
		{
			name:       "postgres down",
			db:         &pinger{err: errors.New("connection refused")},
			cache:      &pinger{},
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]string{"postgres": "error: connection refused", "redis": "ok"},
		},
		{
			name:       "redis down",
			db:         &pinger{},
			cache:      &pinger{err: errors.New("i/o timeout")},
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]string{"postgres": "ok", "redis": "error: i/o timeout"},
		},
		{
			name:       "nothing wired",
			wantStatus: http.StatusOK,
			wantChecks: map[string]string{"postgres": "not configured", "redis": "not configured"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.db, tt.cache)

			rec := httptest.NewRecorder()
			h.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
				t.Errorf("Content-Type = %q", ct)
			}

			var resp HealthResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			for dep, want := range tt.wantChecks {
				if got := resp.Checks[dep]; got != want {
					t.Errorf("checks[%s] = %q, want %q", dep, got, want)
				}
			}
			wantBody := "ok"
			if tt.wantStatus != http.StatusOK {
				wantBody = "unhealthy"
			}
			if resp.Status != wantBody {
				t.Errorf("status field = %q, want %q", resp.Status, wantBody)
			}
		})
	}
}
