// Package metrics provides Prometheus metrics export for the enhancement pipeline.
package metrics

import (
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
)

const (
	namespace = "clipsense"
	subsystem = "ai"
)

// PrometheusExporter exports enhancement metrics in Prometheus format.
type PrometheusExporter struct {
	registry *prometheus.Registry

	// Enhance metrics
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec

	// Cache metrics
	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec

	// Provider metrics
	attempts *prometheus.CounterVec
	retries  *prometheus.CounterVec
}

// Config configures the Prometheus exporter.
type Config struct {
	// Registry to use (if nil, creates a new one)
	Registry *prometheus.Registry

	// Buckets for latency histograms (in seconds)
	LatencyBuckets []float64
}

// DefaultConfig returns default Prometheus configuration.
func DefaultConfig() Config {
	return Config{
		LatencyBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
	}
}

// NewPrometheusExporter creates a new Prometheus metrics exporter.
func NewPrometheusExporter(cfg Config) *PrometheusExporter {
	if len(cfg.LatencyBuckets) == 0 {
		cfg.LatencyBuckets = DefaultConfig().LatencyBuckets
	}

	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	e := &PrometheusExporter{registry: registry}

	e.requests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "enhance_requests_total",
			Help:      "Total number of enhancement requests",
		},
		[]string{"mode", "platform", "status"},
	)

	e.latency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "enhance_latency_seconds",
			Help:      "Enhancement request latency in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
		[]string{"mode"},
	)

	e.cacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cache_hits_total",
			Help:      "Total number of enhancement cache hits",
		},
		[]string{"mode"},
	)

	e.cacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cache_misses_total",
			Help:      "Total number of enhancement cache misses",
		},
		[]string{"mode"},
	)

	e.attempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "provider_attempts_total",
			Help:      "Total number of completion provider calls",
		},
		[]string{"provider", "outcome"},
	)

	e.retries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "retries_total",
			Help:      "Total number of retried provider calls by error kind",
		},
		[]string{"error_kind"},
	)

	registry.MustRegister(
		e.requests,
		e.latency,
		e.cacheHits,
		e.cacheMisses,
		e.attempts,
		e.retries,
	)

	return e
}

// RecordEnhance records a finished enhancement request.
func (e *PrometheusExporter) RecordEnhance(mode, platform, status string, latency time.Duration) {
	e.requests.WithLabelValues(mode, platform, status).Inc()
	e.latency.WithLabelValues(mode).Observe(latency.Seconds())
}

// RecordCacheLookup records a cache hit or miss.
func (e *PrometheusExporter) RecordCacheLookup(mode string, hit bool) {
	if hit {
		e.cacheHits.WithLabelValues(mode).Inc()
		return
	}
	e.cacheMisses.WithLabelValues(mode).Inc()
}

// RecordAttempt records one provider call and its outcome ("success" or an error kind).
func (e *PrometheusExporter) RecordAttempt(provider, outcome string) {
	e.attempts.WithLabelValues(provider, outcome).Inc()
}

// RecordRetry records a retry scheduled after a failure of the given kind.
func (e *PrometheusExporter) RecordRetry(kind string) {
	e.retries.WithLabelValues(kind).Inc()
}

// Handler returns an HTTP handler for the metrics endpoint.
func (e *PrometheusExporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// ServeHTTP implements http.Handler for the metrics endpoint.
func (e *PrometheusExporter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	e.Handler().ServeHTTP(w, r)
}

// Registry returns the Prometheus registry.
func (e *PrometheusExporter) Registry() *prometheus.Registry {
	return e.registry
}

// WriteText writes every gathered metric family to w in the Prometheus text format.
func (e *PrometheusExporter) WriteText(w io.Writer) error {
	families, err := e.registry.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
