package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// ObserveHTTPRequest is a no-op.
func (n *NoopRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {}

// IncRateLimitRejected is a no-op.
func (n *NoopRecorder) IncRateLimitRejected(scope string) {}

// IncTransactionCreated is a no-op.
func (n *NoopRecorder) IncTransactionCreated() {}

// IncProviderCall is a no-op.
func (n *NoopRecorder) IncProviderCall(provider, outcome string) {}

// IncXPEventPublished is a no-op.
func (n *NoopRecorder) IncXPEventPublished(status string) {}

// IncXPEventProcessed is a no-op.
func (n *NoopRecorder) IncXPEventProcessed(status string) {}

// SetXPQueueDepth is a no-op.
func (n *NoopRecorder) SetXPQueueDepth(depth int64) {}
