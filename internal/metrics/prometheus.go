package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "organizai"

// PrometheusRecorder exports metrics through a Prometheus registry.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
	rateLimitRejected   *prometheus.CounterVec
	transactionsCreated prometheus.Counter
	providerCalls       *prometheus.CounterVec
	xpPublished         *prometheus.CounterVec
	xpProcessed         *prometheus.CounterVec
	xpQueueDepth        prometheus.Gauge
}

// NewPrometheus creates a recorder with its own registry, including Go
// runtime and process collectors.
func NewPrometheus() *PrometheusRecorder {
	reg := prometheus.NewRegistry()

	p := &PrometheusRecorder{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		rateLimitRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_rejected_total",
			Help:      "Requests rejected by the rate limiter.",
		}, []string{"scope"}),
		transactionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_created_total",
			Help:      "Transactions created.",
		}),
		providerCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_calls_total",
			Help:      "Calls to external providers by outcome.",
		}, []string{"provider", "outcome"}),
		xpPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "xp_events_published_total",
			Help:      "Gamification events published to the stream.",
		}, []string{"status"}),
		xpProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "xp_events_processed_total",
			Help:      "Gamification events consumed by the worker.",
		}, []string{"status"}),
		xpQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "xp_queue_depth",
			Help:      "Pending plus undelivered events in the gamification stream.",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		p.httpRequests,
		p.httpDuration,
		p.rateLimitRejected,
		p.transactionsCreated,
		p.providerCalls,
		p.xpPublished,
		p.xpProcessed,
		p.xpQueueDepth,
	)
	return p
}

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// ObserveHTTPRequest records a served request.
func (p *PrometheusRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// IncRateLimitRejected records a rejected request.
func (p *PrometheusRecorder) IncRateLimitRejected(scope string) {
	p.rateLimitRejected.WithLabelValues(scope).Inc()
}

// IncTransactionCreated records a new transaction.
func (p *PrometheusRecorder) IncTransactionCreated() {
	p.transactionsCreated.Inc()
}

// IncProviderCall records an outbound provider call.
func (p *PrometheusRecorder) IncProviderCall(provider, outcome string) {
	p.providerCalls.WithLabelValues(provider, outcome).Inc()
}

// IncXPEventPublished records a publish attempt.
func (p *PrometheusRecorder) IncXPEventPublished(status string) {
	p.xpPublished.WithLabelValues(status).Inc()
}

// IncXPEventProcessed records a consumed event.
func (p *PrometheusRecorder) IncXPEventProcessed(status string) {
	p.xpProcessed.WithLabelValues(status).Inc()
}

// SetXPQueueDepth records the stream backlog.
func (p *PrometheusRecorder) SetXPQueueDepth(depth int64) {
	p.xpQueueDepth.Set(float64(depth))
}
