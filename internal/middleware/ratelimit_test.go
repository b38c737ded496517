package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/organizai/organizai/internal/auth"
	"github.com/organizai/organizai/internal/cache"
	"github.com/organizai/organizai/internal/metrics"
	"github.com/organizai/organizai/internal/model"
)

// countingLimiter keeps one counter per scope and subject, ignoring windows.
type countingLimiter struct {
	counts map[string]int
	err    error
}

func (l *countingLimiter) CheckRateLimit(ctx context.Context, scope, subject string, limit int, window time.Duration) (*cache.RateLimitResult, error) {
	if l.err != nil {
		return &cache.RateLimitResult{Allowed: true, Limit: limit}, l.err
	}
	key := scope + "|" + subject
	l.counts[key]++
	count := l.counts[key]

	remaining := int64(limit - count)
	if remaining < 0 {
		remaining = 0
	}
	result := &cache.RateLimitResult{
		Allowed:   count <= limit,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   time.Unix(1_700_000_060, 0),
	}
	if !result.Allowed {
		result.RetryAfter = 1500 * time.Millisecond
	}
	return result, nil
}

func newRateLimitConfig(limiter Limiter, recorder metrics.Recorder) RateLimitConfig {
	return RateLimitConfig{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Limiter:  limiter,
		Metrics:  recorder,
		Enabled:  true,
		Requests: 2,
		Window:   time.Minute,
	}
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRateLimitIP(t *testing.T) {
	limiter := &countingLimiter{counts: map[string]int{}}
	recorder := metrics.NewInMemory()
	handler := RateLimitIP(newRateLimitConfig(limiter, recorder))(okHandler)

	send := func(remoteAddr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
		req.RemoteAddr = remoteAddr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 2; i++ {
		if rec := send("203.0.113.7:5000"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, rec.Code)
		}
	}

	// Same IP from another port shares the window.
	rec := send("203.0.113.7:6000")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "2" {
		t.Errorf("Retry-After = %q, want 2", got)
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Errorf("X-RateLimit-Remaining = %q, want 0", got)
	}
	if got := rec.Header().Get("X-RateLimit-Limit"); got != "2" {
		t.Errorf("X-RateLimit-Limit = %q, want 2", got)
	}
	if got := recorder.Snapshot().RateLimitRejected["ip"]; got != 1 {
		t.Errorf("rejections recorded = %d, want 1", got)
	}

	if rec := send("198.51.100.1:5000"); rec.Code != http.StatusOK {
		t.Errorf("other IP status = %d, want 200", rec.Code)
	}
}

func TestRateLimitUser(t *testing.T) {
	limiter := &countingLimiter{counts: map[string]int{}}
	cfg := newRateLimitConfig(limiter, nil)
	cfg.Scope = "ai"
	handler := RateLimitUser(cfg)(okHandler)

	send := func(userID string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/ai/chat", nil)
		req = req.WithContext(auth.ContextWithAuth(req.Context(), &model.AuthContext{UserID: userID}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	send("user-1")
	send("user-1")
	if code := send("user-1"); code != http.StatusTooManyRequests {
		t.Errorf("third request status = %d, want 429", code)
	}
	if code := send("user-2"); code != http.StatusOK {
		t.Errorf("other user status = %d, want 200", code)
	}
	if limiter.counts["ai|user-1"] != 3 {
		t.Errorf("counts = %v", limiter.counts)
	}
}

func TestRateLimit_FailsOpen(t *testing.T) {
	limiter := &countingLimiter{err: errors.New("redis down")}
	handler := RateLimitIP(newRateLimitConfig(limiter, nil))(okHandler)

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	limiter := &countingLimiter{counts: map[string]int{}}
	cfg := newRateLimitConfig(limiter, nil)
	cfg.Enabled = false
	handler := RateLimitIP(cfg)(okHandler)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if len(limiter.counts) != 0 {
		t.Errorf("limiter consulted while disabled")
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "10.0.0.2:80", "203.0.113.7"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.4"}, "10.0.0.2:80", "198.51.100.4"},
		{"remote addr", nil, "192.0.2.9:1234", "192.0.2.9"},
		{"remote without port", nil, "192.0.2.9", "192.0.2.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
