// Package metrics defines the Prometheus metrics exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Search API metrics
	SearchRequestsTotal   *prometheus.CounterVec
	SearchDurationSeconds *prometheus.HistogramVec
	SearchResults         *prometheus.HistogramVec

	// Webhook metrics
	WebhookDurationSeconds *prometheus.HistogramVec
	WebhookEventsTotal     *prometheus.CounterVec

	// LINE API metrics
	LineAPIErrorsTotal *prometheus.CounterVec

	// Rate limiter metrics
	RateLimiterDropped    *prometheus.CounterVec
	RateLimiterActiveKeys *prometheus.GaugeVec

	// Singleflight metrics
	SingleflightDedupTotal *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		SearchRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gourmet_search_requests_total",
				Help: "Total number of HotPepper API requests by endpoint and status",
			},
			[]string{"endpoint", "status"}, // endpoint: gourmet, genre; status: success, error, timeout
		),

		SearchDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gourmet_search_request_duration_seconds",
				Help:    "HotPepper API request duration in seconds by endpoint",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5}, // Capped by the 5s search timeout
			},
			[]string{"endpoint"},
		),

		SearchResults: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gourmet_search_results",
				Help:    "Number of records returned per successful HotPepper request",
				Buckets: []float64{0, 1, 3, 5, 10, 13},
			},
			[]string{"endpoint"},
		),

		WebhookDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gourmet_webhook_duration_seconds",
				Help:    "Webhook event processing duration in seconds by event type",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
			},
			[]string{"event_type"}, // event_type: text, location, postback, follow
		),

		WebhookEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gourmet_webhook_events_total",
				Help: "Total number of webhook events by event type and status",
			},
			[]string{"event_type", "status"}, // status: success, error, ignored
		),

		LineAPIErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gourmet_line_api_errors_total",
				Help: "Total LINE Messaging API errors by operation and reason",
			},
			[]string{"operation", "reason"}, // operation: reply, loading; reason: invalid_token, rate_limit, other
		),

		RateLimiterDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gourmet_rate_limiter_dropped_total",
				Help: "Total number of requests refused or delayed by a rate limiter",
			},
			[]string{"limiter"}, // limiter: reply, loading, chat
		),

		RateLimiterActiveKeys: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gourmet_rate_limiter_active_keys",
				Help: "Number of keys currently tracked by a keyed rate limiter",
			},
			[]string{"limiter"},
		),

		SingleflightDedupTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gourmet_singleflight_dedup_total",
				Help: "Total number of deduplicated requests (requests that shared an in-flight call)",
			},
			[]string{"key"},
		),
	}
}

// RecordSearchRequest records one HotPepper API call.
func (m *Metrics) RecordSearchRequest(endpoint, status string, duration float64) {
	m.SearchRequestsTotal.WithLabelValues(endpoint, status).Inc()
	m.SearchDurationSeconds.WithLabelValues(endpoint).Observe(duration)
}

// RecordSearchResults records how many shops or genres a call returned.
func (m *Metrics) RecordSearchResults(endpoint string, count int) {
	m.SearchResults.WithLabelValues(endpoint).Observe(float64(count))
}

// RecordWebhook records one processed webhook event.
func (m *Metrics) RecordWebhook(eventType, status string, duration float64) {
	m.WebhookEventsTotal.WithLabelValues(eventType, status).Inc()
	m.WebhookDurationSeconds.WithLabelValues(eventType).Observe(duration)
}

// RecordLineAPIError records a failed LINE Messaging API call.
func (m *Metrics) RecordLineAPIError(operation, reason string) {
	m.LineAPIErrorsTotal.WithLabelValues(operation, reason).Inc()
}

// RecordRateLimiterDrop records a request that found the limiter empty.
func (m *Metrics) RecordRateLimiterDrop(limiter string) {
	m.RateLimiterDropped.WithLabelValues(limiter).Inc()
}

// SetRateLimiterActiveKeys records how many keys a keyed limiter tracks.
func (m *Metrics) SetRateLimiterActiveKeys(limiter string, count int) {
	m.RateLimiterActiveKeys.WithLabelValues(limiter).Set(float64(count))
}

// RecordSingleflightDedup records a caller that shared another caller's result.
func (m *Metrics) RecordSingleflightDedup(key string) {
	m.SingleflightDedupTotal.WithLabelValues(key).Inc()
}
