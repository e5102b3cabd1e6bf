// Package metrics exposes Prometheus instrumentation for leg parsing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the parser's Prometheus collectors.
type Metrics struct {
	Classifications *prometheus.CounterVec
	FieldMisses     *prometheus.CounterVec
	ParseTime       prometheus.Histogram
	LegsStored      prometheus.Counter
	ErrorsCount     *prometheus.CounterVec
}

// New registers the collectors on reg. A nil reg uses the default registerer.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		Classifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifications_total",
			Help:      "The total number of texts classified, by format",
		}, []string{"format"}),
		FieldMisses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "field_misses_total",
			Help:      "Fields that fell back to their default, by format and field",
		}, []string{"format", "field"}),
		ParseTime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "parse_duration_seconds",
			Help:      "Time taken to classify and parse a text",
			Buckets:   []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05},
		}),
		LegsStored: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "legs_stored_total",
			Help:      "The total number of legs persisted",
		}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}

// ObserveParse records one interpretation. Safe to call on a nil *Metrics.
func (m *Metrics) ObserveParse(format string, missing []string, took time.Duration) {
	if m == nil {
		return
	}
	m.Classifications.WithLabelValues(format).Inc()
	for _, field := range missing {
		m.FieldMisses.WithLabelValues(format, field).Inc()
	}
	m.ParseTime.Observe(took.Seconds())
}

// ObserveError counts a failed operation. Safe to call on a nil *Metrics.
func (m *Metrics) ObserveError(operation string) {
	if m == nil {
		return
	}
	m.ErrorsCount.WithLabelValues(operation).Inc()
}

// ObserveStored counts a persisted leg. Safe to call on a nil *Metrics.
func (m *Metrics) ObserveStored() {
	if m == nil {
		return
	}
	m.LegsStored.Inc()
}
