package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestPrometheusRecorder_Handler(t *testing.T) {
	t.Parallel()

	p := NewPrometheus()
	p.ObserveHTTPRequest("GET", "/api/v1/accounts", 200, 15*time.Millisecond)
	p.IncTransactionCreated()
	p.IncProviderCall("groq", "error")
	p.IncXPEventPublished("success")
	p.SetXPQueueDepth(3)

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	out := string(body)

	for _, want := range []string{
		`organizai_http_requests_total{method="GET",route="/api/v1/accounts",status="200"} 1`,
		`organizai_transactions_created_total 1`,
		`organizai_provider_calls_total{outcome="error",provider="groq"} 1`,
		`organizai_xp_events_published_total{status="success"} 1`,
		`organizai_xp_queue_depth 3`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestInMemoryRecorder_Snapshot(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	m.IncRateLimitRejected("ip")
	m.IncRateLimitRejected("ip")
	m.IncProviderCall("tavily", "success")
	m.IncXPEventProcessed("dead_lettered")
	m.IncTransactionCreated()

	snap := m.Snapshot()
	if snap.RateLimitRejected["ip"] != 2 {
		t.Errorf("RateLimitRejected[ip] = %d, want 2", snap.RateLimitRejected["ip"])
	}
	if snap.ProviderCalls["tavily:success"] != 1 {
		t.Errorf("ProviderCalls = %v", snap.ProviderCalls)
	}
	if snap.XPEventsProcessed["dead_lettered"] != 1 {
		t.Errorf("XPEventsProcessed = %v", snap.XPEventsProcessed)
	}
	if snap.TransactionsCreated != 1 {
		t.Errorf("TransactionsCreated = %d, want 1", snap.TransactionsCreated)
	}

	// Snapshot maps are copies.
	snap.RateLimitRejected["ip"] = 100
	if m.Snapshot().RateLimitRejected["ip"] != 2 {
		t.Error("Snapshot() should not alias internal state")
	}
}
