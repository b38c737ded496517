package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	HTTPRequests        uint64
	RateLimitRejected   map[string]uint64
	TransactionsCreated uint64
	ProviderCalls       map[string]uint64 // keyed by "provider:outcome"
	XPEventsPublished   map[string]uint64
	XPEventsProcessed   map[string]uint64
	XPQueueDepth        int64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	httpRequests        uint64
	transactionsCreated uint64
	xpQueueDepth        int64

	mu       sync.Mutex
	labelled map[string]map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{labelled: make(map[string]map[string]uint64)}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		HTTPRequests:        atomic.LoadUint64(&m.httpRequests),
		TransactionsCreated: atomic.LoadUint64(&m.transactionsCreated),
		XPQueueDepth:        atomic.LoadInt64(&m.xpQueueDepth),
		RateLimitRejected:   m.copyLocked("ratelimit"),
		ProviderCalls:       m.copyLocked("provider"),
		XPEventsPublished:   m.copyLocked("xp_published"),
		XPEventsProcessed:   m.copyLocked("xp_processed"),
	}
}

func (m *InMemoryRecorder) inc(family, label string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.labelled[family] == nil {
		m.labelled[family] = make(map[string]uint64)
	}
	m.labelled[family][label]++
}

func (m *InMemoryRecorder) copyLocked(family string) map[string]uint64 {
	out := make(map[string]uint64, len(m.labelled[family]))
	for k, v := range m.labelled[family] {
		out[k] = v
	}
	return out
}

// ObserveHTTPRequest counts a served request.
func (m *InMemoryRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	atomic.AddUint64(&m.httpRequests, 1)
}

// IncRateLimitRejected counts a rejected request.
func (m *InMemoryRecorder) IncRateLimitRejected(scope string) {
	m.inc("ratelimit", scope)
}

// IncTransactionCreated increments the transaction counter.
func (m *InMemoryRecorder) IncTransactionCreated() {
	atomic.AddUint64(&m.transactionsCreated, 1)
}

// IncProviderCall counts an outbound provider call.
func (m *InMemoryRecorder) IncProviderCall(provider, outcome string) {
	m.inc("provider", provider+":"+outcome)
}

// IncXPEventPublished counts a published event.
func (m *InMemoryRecorder) IncXPEventPublished(status string) {
	m.inc("xp_published", status)
}

// IncXPEventProcessed counts a processed event.
func (m *InMemoryRecorder) IncXPEventProcessed(status string) {
	m.inc("xp_processed", status)
}

// SetXPQueueDepth records the stream backlog.
func (m *InMemoryRecorder) SetXPQueueDepth(depth int64) {
	atomic.StoreInt64(&m.xpQueueDepth, depth)
}
