// Package metrics exposes generation counters and latencies to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the qrstudio collectors on their own registry.
type Metrics struct {
	registry    *prometheus.Registry
	generations *prometheus.CounterVec
	backends    *prometheus.CounterVec
	latency     prometheus.Histogram
	uploads     *prometheus.CounterVec
}

// New registers the collectors, plus Go and process collectors, on a fresh
// registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qrstudio_generations_total",
			Help: "Generations by payload type and outcome.",
		}, []string{"type", "outcome"}),
		backends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qrstudio_render_backend_total",
			Help: "Successful renders by encoder backend.",
		}, []string{"backend"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "qrstudio_generation_seconds",
			Help:    "Time spent in a generation, rejected calls excluded.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qrstudio_uploads_total",
			Help: "Image uploads by kind and outcome.",
		}, []string{"kind", "outcome"}),
	}
	reg.MustRegister(
		m.generations,
		m.backends,
		m.latency,
		m.uploads,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveGeneration records a finished or rejected generation.
func (m *Metrics) ObserveGeneration(kind, outcome, backend string, elapsed time.Duration) {
	m.generations.WithLabelValues(kind, outcome).Inc()
	if backend != "" {
		m.backends.WithLabelValues(backend).Inc()
	}
	if outcome != "in_progress" {
		m.latency.Observe(elapsed.Seconds())
	}
}

// ObserveUpload records an upload attempt.
func (m *Metrics) ObserveUpload(kind string, ok bool) {
	outcome := "accepted"
	if !ok {
		outcome = "rejected"
	}
	m.uploads.WithLabelValues(kind, outcome).Inc()
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
