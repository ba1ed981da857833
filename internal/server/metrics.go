package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jpalmerr/campanel/internal/dispatch"
	"github.com/jpalmerr/campanel/internal/fetch"
)

// Metrics collects Prometheus metrics for the dispatcher.
//
// Each Metrics owns its registry so several servers (and tests) can coexist
// in one process.
type Metrics struct {
	registry      *prometheus.Registry
	requests      *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	fetchFailures *prometheus.CounterVec
}

// NewMetrics creates a new metrics collector with its own registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "campanel_requests_total",
				Help: "Total number of dispatcher requests by mode",
			},
			[]string{"mode"},
		),
		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "campanel_upstream_fetch_duration_seconds",
				Help:    "Upstream fetch duration in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"query"},
		),
		fetchFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "campanel_upstream_failures_total",
				Help: "Total number of failed upstream fetches by diagnostic code",
			},
			[]string{"code"},
		),
	}
	m.registry.MustRegister(m.requests, m.fetchDuration, m.fetchFailures)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// observeFetch records one upstream fetch.
func (m *Metrics) observeFetch(mode dispatch.Mode, latency time.Duration, err error) {
	m.fetchDuration.WithLabelValues(mode.String()).Observe(latency.Seconds())
	if err != nil {
		m.fetchFailures.WithLabelValues(strconv.Itoa(fetch.Code(err))).Inc()
	}
}
