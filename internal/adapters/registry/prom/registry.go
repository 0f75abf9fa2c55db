// Package prom implements the series registry on top of prometheus vector
// families. Label resolution is create-if-absent, fetch-if-present, and safe
// for concurrent use, which is exactly what the publish path relies on.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vshulcz/Countra/internal/ports"
)

const defaultNamespace = "countra"

// Label order is fixed and significant for series identity.
var labelNames = []string{"source", "name", "display_name"}

// Registry owns one counter family and one gauge family. Families belong to
// the instance, never to package-level state, so independent instances (and
// tests) do not interfere.
type Registry struct {
	increments *prometheus.CounterVec
	means      *prometheus.GaugeVec
}

var _ ports.SeriesRegistry = (*Registry)(nil)

// New registers both families with reg and returns the registry.
// A nil reg falls back to prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Registry {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Registry{
		increments: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: defaultNamespace,
				Subsystem: "eventcounter",
				Name:      "increments_total",
				Help:      "Accumulated increment deltas republished from instrumentation counter events",
			},
			labelNames,
		),
		means: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: defaultNamespace,
				Subsystem: "eventcounter",
				Name:      "mean",
				Help:      "Most recent mean value republished from instrumentation counter events",
			},
			labelNames,
		),
	}
}

// Counter resolves the counter series for the given label tuple.
func (r *Registry) Counter(source, name, displayName string) ports.Counter {
	return r.increments.WithLabelValues(source, name, displayName)
}

// Gauge resolves the gauge series for the given label tuple.
func (r *Registry) Gauge(source, name, displayName string) ports.Gauge {
	return r.means.WithLabelValues(source, name, displayName)
}
