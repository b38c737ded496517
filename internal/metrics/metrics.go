// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus or keep them in memory.
type Recorder interface {
	// HTTP metrics
	ObserveHTTPRequest(method, route string, status int, duration time.Duration)
	IncRateLimitRejected(scope string) // scope: "ip" or "user"

	// Domain metrics
	IncTransactionCreated()
	IncProviderCall(provider, outcome string) // outcome: "success" or "error"

	// Gamification pipeline metrics
	IncXPEventPublished(status string) // status: "success" or "dropped"
	IncXPEventProcessed(status string) // status: "success", "failed", "dead_lettered"
	SetXPQueueDepth(depth int64)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
