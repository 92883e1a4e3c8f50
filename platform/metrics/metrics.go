// Package metrics provides Prometheus instrumentation for HTTP traffic and the
// lead engine. All recording methods are safe to call on a nil *Metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all collectors registered by the application.
type Metrics struct {
	gatherer prometheus.Gatherer

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	activeRequests      prometheus.Gauge

	leadMutations   *prometheus.CounterVec
	importRows      *prometheus.CounterVec
	scoringSweeps   prometheus.Counter
	sweepDuration   prometheus.Histogram
	leadsInStore    prometheus.Gauge
	eventsForwarded *prometheus.CounterVec
}

// New registers the collectors on reg. Passing a fresh registry keeps tests isolated.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		gatherer: reg,
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		activeRequests: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_active_requests",
				Help: "Number of in-flight HTTP requests",
			},
		),
		leadMutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leads_mutations_total",
				Help: "Lead mutations committed by the gateway",
			},
			[]string{"operation"},
		),
		importRows: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leads_import_rows_total",
				Help: "Imported rows by outcome",
			},
			[]string{"outcome"},
		),
		scoringSweeps: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "scoring_sweeps_total",
				Help: "Full re-score sweeps executed",
			},
		),
		sweepDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "scoring_sweep_duration_seconds",
				Help:    "Duration of full re-score sweeps",
				Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
		),
		leadsInStore: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "leads_in_store",
				Help: "Number of leads in the live snapshot",
			},
		),
		eventsForwarded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "events_forwarded_total",
				Help: "Domain events forwarded to the broker",
			},
			[]string{"event", "result"},
		),
	}
}

// Handler exposes the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// HTTPStarted marks a request as in flight and returns a func that records it.
func (m *Metrics) HTTPStarted() func(method, path, status string) {
	if m == nil {
		return func(string, string, string) {}
	}
	start := time.Now()
	m.activeRequests.Inc()
	return func(method, path, status string) {
		m.activeRequests.Dec()
		m.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		m.httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// RecordMutation counts a committed lead mutation.
func (m *Metrics) RecordMutation(operation string) {
	if m == nil {
		return
	}
	m.leadMutations.WithLabelValues(operation).Inc()
}

// RecordImport counts import rows by outcome.
func (m *Metrics) RecordImport(imported, skipped, invalid int) {
	if m == nil {
		return
	}
	m.importRows.WithLabelValues("imported").Add(float64(imported))
	m.importRows.WithLabelValues("skipped").Add(float64(skipped))
	m.importRows.WithLabelValues("invalid").Add(float64(invalid))
}

// RecordSweep counts one re-score sweep and its duration.
func (m *Metrics) RecordSweep(d time.Duration) {
	if m == nil {
		return
	}
	m.scoringSweeps.Inc()
	m.sweepDuration.Observe(d.Seconds())
}

// SetLeadCount updates the live lead gauge.
func (m *Metrics) SetLeadCount(n int) {
	if m == nil {
		return
	}
	m.leadsInStore.Set(float64(n))
}

// RecordEventForward counts a broker publish attempt.
func (m *Metrics) RecordEventForward(event string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.eventsForwarded.WithLabelValues(event, result).Inc()
}
