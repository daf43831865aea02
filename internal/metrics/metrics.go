// Package metrics records generation events as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tmpl2pdf"

// Recorder receives generator events and exposes them on its own registry.
// Safe for concurrent use.
type Recorder struct {
	registry     *prometheus.Registry
	generations  *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	engineStarts *prometheus.CounterVec
	startSeconds prometheus.Histogram
	surfaces     prometheus.Gauge
	cacheLookups *prometheus.CounterVec
}

// New creates a Recorder with Go runtime and process collectors attached.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generations_total",
				Help:      "Generate calls by template and outcome.",
			},
			[]string{"template", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "generation_duration_seconds",
				Help:      "Time spent in Generate, including validation and printing.",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2, 5, 10, 30},
			},
			[]string{"template"},
		),
		engineStarts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "engine_starts_total",
				Help:      "Browser launches by result.",
			},
			[]string{"result"},
		),
		startSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "engine_start_duration_seconds",
				Help:      "Time spent launching the browser.",
				Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
			},
		),
		surfaces: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "surfaces_open",
				Help:      "Render surfaces currently open.",
			},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "PDF cache lookups by result.",
			},
			[]string{"result"},
		),
	}

	r.registry.MustRegister(
		r.generations,
		r.duration,
		r.engineStarts,
		r.startSeconds,
		r.surfaces,
		r.cacheLookups,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// GenerateDone records one Generate call.
func (r *Recorder) GenerateDone(template, outcome string, elapsed time.Duration) {
	r.generations.WithLabelValues(template, outcome).Inc()
	r.duration.WithLabelValues(template).Observe(elapsed.Seconds())
}

// EngineStarted records one browser launch.
func (r *Recorder) EngineStarted(elapsed time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.engineStarts.WithLabelValues(result).Inc()
	r.startSeconds.Observe(elapsed.Seconds())
}

// SurfaceOpened increments the open surface gauge.
func (r *Recorder) SurfaceOpened() { r.surfaces.Inc() }

// SurfaceClosed decrements the open surface gauge.
func (r *Recorder) SurfaceClosed() { r.surfaces.Dec() }

// CacheLookup records a cache hit or miss.
func (r *Recorder) CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
