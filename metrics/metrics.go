// Package metrics exposes Prometheus instrumentation for lotcheck.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lotcheck/types"
)

const namespace = "lotcheck"

// Metrics holds all lotcheck collectors. Each instance owns its registry,
// so tests can create as many as they need.
type Metrics struct {
	registry *prometheus.Registry

	UpstreamResponses *prometheus.CounterVec
	UpstreamFailures  *prometheus.CounterVec
	UpstreamRetries   prometheus.Counter
	UpstreamLatency   prometheus.Histogram

	LinksClassified *prometheus.CounterVec
	BatchDuration   prometheus.Histogram
	BatchesInFlight prometheus.Gauge

	CacheLookups *prometheus.CounterVec
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		UpstreamResponses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_responses_total",
			Help:      "Upstream item lookup responses by HTTP status code",
		}, []string{"code"}),
		UpstreamFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_failures_total",
			Help:      "Item lookups that ended without a snapshot, by reason",
		}, []string{"reason"}),
		UpstreamRetries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_retries_total",
			Help:      "Item lookups re-issued after a 429 response",
		}),
		UpstreamLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_lookup_duration_seconds",
			Help:      "Wall time of one item lookup including retries",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		LinksClassified: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "links_classified_total",
			Help:      "Links classified by display symbol",
		}, []string{"symbol"}),
		BatchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Wall time of one link batch",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		BatchesInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "batches_in_flight",
			Help:      "Link batches currently being processed",
		}),
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Snapshot cache lookups by result",
		}, []string{"result"}),
	}
}

// Handler serves the registry for GET /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveResponse records one upstream HTTP status.
func (m *Metrics) ObserveResponse(code int) {
	m.UpstreamResponses.WithLabelValues(strconv.Itoa(code)).Inc()
}

// ObserveFailure records a lookup that produced no snapshot.
func (m *Metrics) ObserveFailure(reason string) {
	m.UpstreamFailures.WithLabelValues(reason).Inc()
}

// ObserveResult records one classified link.
func (m *Metrics) ObserveResult(res types.ClassifiedResult) {
	m.LinksClassified.WithLabelValues(string(res.Symbol)).Inc()
}

// BatchStarted marks a batch in flight and returns a func that records its end.
func (m *Metrics) BatchStarted() func() {
	start := time.Now()
	m.BatchesInFlight.Inc()
	return func() {
		m.BatchesInFlight.Dec()
		m.BatchDuration.Observe(time.Since(start).Seconds())
	}
}
