package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPMetrics observes the request pipeline: completed requests, POST
// admission, and connection churn. Passing nil (or the value returned when
// metrics are disabled) to consumers gives no-op behavior.
type HTTPMetrics interface {
	// RecordRequest records one completed request.
	RecordRequest(method string, status int, duration time.Duration)

	// RecordAdmissionRejected counts a POST turned away at the admission
	// gate.
	RecordAdmissionRejected()

	// SetPostsInFlight updates the gauge of currently admitted POSTs.
	SetPostsInFlight(count int)

	// RecordConnectionAccepted counts a connection handed to the
	// dispatcher.
	RecordConnectionAccepted()

	// RecordConnectionDropped counts a connection closed before dispatch
	// (rate limiting, full queue).
	RecordConnectionDropped()
}

type httpMetrics struct {
	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	admissionRejected  prometheus.Counter
	postsInFlight      prometheus.Gauge
	connectionsTotal   prometheus.Counter
	connectionsDropped prometheus.Counter
}

// NewHTTPMetrics creates a Prometheus-backed HTTPMetrics, or a no-op
// implementation when metrics are disabled.
func NewHTTPMetrics() HTTPMetrics {
	if !IsEnabled() {
		return &noopHTTPMetrics{}
	}

	reg := GetRegistry()

	return &httpMetrics{
		requestsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "threadserve",
			Name:      "requests_total",
			Help:      "Completed requests by method and status code.",
		}, []string{"method", "status"}),
		requestDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "threadserve",
			Name:      "request_duration_seconds",
			Help:      "Request processing time by method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		admissionRejected: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "threadserve",
			Name:      "admission_rejected_total",
			Help:      "POST requests rejected because the admission limit was reached.",
		}),
		postsInFlight: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "threadserve",
			Name:      "posts_in_flight",
			Help:      "Currently admitted POST operations.",
		}),
		connectionsTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "threadserve",
			Name:      "connections_accepted_total",
			Help:      "Connections handed to the dispatcher.",
		}),
		connectionsDropped: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "threadserve",
			Name:      "connections_dropped_total",
			Help:      "Connections closed before dispatch.",
		}),
	}
}

func (m *httpMetrics) RecordRequest(method string, status int, duration time.Duration) {
	m.requestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

func (m *httpMetrics) RecordAdmissionRejected() {
	m.admissionRejected.Inc()
}

func (m *httpMetrics) SetPostsInFlight(count int) {
	m.postsInFlight.Set(float64(count))
}

func (m *httpMetrics) RecordConnectionAccepted() {
	m.connectionsTotal.Inc()
}

func (m *httpMetrics) RecordConnectionDropped() {
	m.connectionsDropped.Inc()
}

// noopHTTPMetrics is used when metrics are disabled.
type noopHTTPMetrics struct{}

func (*noopHTTPMetrics) RecordRequest(string, int, time.Duration) {}
func (*noopHTTPMetrics) RecordAdmissionRejected()                {}
func (*noopHTTPMetrics) SetPostsInFlight(int)                    {}
func (*noopHTTPMetrics) RecordConnectionAccepted()               {}
func (*noopHTTPMetrics) RecordConnectionDropped()                {}
