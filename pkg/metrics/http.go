package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics records per-route HTTP request counts and latencies.
type RequestMetrics struct {
	duration *prometheus.HistogramVec
	total    *prometheus.CounterVec
}

// NewRequestMetrics registers the HTTP request metrics on the provided
// registerer.
func NewRequestMetrics(reg prometheus.Registerer) *RequestMetrics {
	if reg == nil {
		return &RequestMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	total := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests by status.",
	}, []string{"method", "route", "status"})
	reg.MustRegister(duration, total)
	return &RequestMetrics{duration: duration, total: total}
}

// Observe records one completed request.
func (m *RequestMetrics) Observe(method, route string, status int, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.duration.WithLabelValues(method, route).Observe(duration.Seconds())
	m.total.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}
