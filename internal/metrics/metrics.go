package metrics

import "github.com/prometheus/client_golang/prometheus"

// NewRateLimitExceededTotal returns a Prometheus counter for the number of rejected HTTP requests due to rate limiting
func NewRateLimitExceededTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rate_limit_exceeded_total",
		Help: "Total number of rejected HTTP requests due to rate limiting",
	})
}

// NewMailRetriesTotal returns a Prometheus counter for the number of retry attempts performed by the mailer
func NewMailRetriesTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mail_retries_total",
		Help: "Total number of retry attempts performed by the mailer",
	})
}

// NewTransitionsTotal counts accepted delivery lifecycle transitions by event.
func NewTransitionsTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "delivery_transitions_total",
		Help: "Accepted delivery lifecycle transitions",
	}, []string{"event"})
}

// NewNotificationsTotal counts notification tasks by task name and outcome
// (enqueued, dropped, failed, sent, skipped).
func NewNotificationsTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_total",
		Help: "Notification tasks by task and outcome",
	}, []string{"task", "result"})
}

// NewAdminCacheLookupsTotal counts administrator-flag cache lookups by result (hit, miss).
func NewAdminCacheLookupsTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "access_admin_cache_lookups_total",
		Help: "Administrator flag cache lookups",
	}, []string{"result"})
}

// NewHTTPRequestsTotal counts served requests by method, route pattern and status.
func NewHTTPRequestsTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
}

// NewHTTPRequestDuration observes request latency by method, route pattern and status.
func NewHTTPRequestDuration() *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
}
