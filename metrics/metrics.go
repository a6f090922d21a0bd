// Package metrics exposes Prometheus metrics for searches, target queries,
// processed decisions and the HTTP surface.
package metrics

import (
	"net/http"
	"time"

	"github.com/poiesic/namescan/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "namescan"

// Status label values.
const (
	statusSuccess = "success"
	statusError   = "error"
)

// Metrics holds every namescan collector, registered on one registry.
type Metrics struct {
	registry *prometheus.Registry

	searchesTotal  prometheus.Counter
	searchDuration prometheus.Histogram
	searchRows     prometheus.Histogram

	targetQueriesTotal  *prometheus.CounterVec
	targetQueryDuration *prometheus.HistogramVec
	targetMatchesTotal  *prometheus.CounterVec

	decisionsTotal *prometheus.CounterVec

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them on registry.
// A nil registry gets a fresh one.
func New(registry *prometheus.Registry) (*Metrics, error) {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{registry: registry}
	m.initMetrics()

	for _, c := range m.collectors() {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) initMetrics() {
	m.searchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "searches_total",
		Help:      "Total number of dispatched name searches",
	})

	m.searchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "search_duration_seconds",
		Help:      "Wall time of a full fan-out search",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	})

	m.searchRows = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "search_rows",
		Help:      "Rows matched by a single search",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	})

	m.targetQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "target_queries_total",
			Help:      "Total number of per-target queries",
		},
		[]string{"source", "status"}, // status: success, error
	)

	m.targetQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "target_query_duration_seconds",
			Help:      "Duration of one target query including connect",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"source"},
	)

	m.targetMatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "target_matches_total",
			Help:      "Total number of rows matched per source",
		},
		[]string{"source"},
	)

	m.decisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decisions_total",
			Help:      "Total number of processed mask/delete decisions",
		},
		[]string{"action", "status"},
	)

	m.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	m.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path", "status"},
	)
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.searchesTotal,
		m.searchDuration,
		m.searchRows,
		m.targetQueriesTotal,
		m.targetQueryDuration,
		m.targetMatchesTotal,
		m.decisionsTotal,
		m.httpRequestsTotal,
		m.httpRequestDuration,
	}
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordDecision counts one processed decision.
func (m *Metrics) RecordDecision(action core.Action, err error) {
	m.decisionsTotal.WithLabelValues(string(action), status(err)).Inc()
}

func (m *Metrics) recordTarget(target core.SearchTarget, matches int, elapsed time.Duration, err error) {
	m.targetQueriesTotal.WithLabelValues(target.SourceID, status(err)).Inc()
	m.targetQueryDuration.WithLabelValues(target.SourceID).Observe(elapsed.Seconds())
	if err == nil {
		m.targetMatchesTotal.WithLabelValues(target.SourceID).Add(float64(matches))
	}
}

func status(err error) string {
	if err != nil {
		return statusError
	}
	return statusSuccess
}
