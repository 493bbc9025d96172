// Package metrics exposes Prometheus counters for checker writes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result labels of write outcomes.
const (
	ResultCommitted = "committed"
	ResultNoop      = "noop"
	ResultRejected  = "rejected"
	ResultConflict  = "conflict"
	ResultError     = "error"
)

// Metrics holds the counters of the checker service and HTTP layer.
type Metrics struct {
	updates         *prometheus.CounterVec
	creates         *prometheus.CounterVec
	archiveFailures prometheus.Counter
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New registers all metrics on reg. A nil reg gets a private registry,
// which keeps tests from colliding on the default one.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		updates: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "checkers_updates_total",
				Help: "checker update requests by outcome",
			},
			[]string{"result"},
		),
		creates: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "checkers_creates_total",
				Help: "checker create requests by outcome",
			},
			[]string{"result"},
		),
		archiveFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "checkers_archive_failures_total",
				Help: "revisions that could not be copied to the archive",
			},
		),
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "checkers_http_requests_total",
				Help: "HTTP requests by route and status code",
			},
			[]string{"method", "route", "code"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "checkers_http_request_duration_seconds",
				Help:    "HTTP request latency by route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

func (m *Metrics) Update(result string) {
	m.updates.WithLabelValues(result).Inc()
}

func (m *Metrics) Create(result string) {
	m.creates.WithLabelValues(result).Inc()
}

func (m *Metrics) ArchiveFailure() {
	m.archiveFailures.Inc()
}

// Request records one served HTTP request.
func (m *Metrics) Request(method, route, code string, seconds float64) {
	m.requests.WithLabelValues(method, route, code).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(seconds)
}
