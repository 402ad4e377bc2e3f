package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/NotMyFault/cloudify-plugin/pkg/domain"
)

// Recorder collects conversion metrics on a private registry.
type Recorder struct {
	registry    *prometheus.Registry
	conversions *prometheus.CounterVec
	entries     *prometheus.CounterVec
	duration    prometheus.Histogram
}

// New creates a Recorder with its collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		conversions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cfy_conversions_total",
				Help: "Total number of conversions by result",
			},
			[]string{"result"},
		),
		entries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cfy_mapping_entries_total",
				Help: "Total number of mapping entries by outcome",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "cfy_conversion_duration_seconds",
				Help:    "Duration of conversions",
				Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
		),
	}
	r.registry.MustRegister(r.conversions, r.entries, r.duration)
	return r
}

// Hooks returns transform hooks feeding the recorder.
func (r *Recorder) Hooks() domain.TransformHooks {
	return domain.TransformHooks{
		OnEntry: func(_ context.Context, e *domain.EntryEvent) {
			r.entries.WithLabelValues(string(e.Outcome)).Inc()
		},
		OnConversion: func(_ context.Context, e *domain.ConversionEvent) {
			r.conversions.WithLabelValues(domain.Kind(e.Err)).Inc()
			r.duration.Observe(e.Duration.Seconds())
		},
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// WriteTextfile dumps the registry for the node_exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
