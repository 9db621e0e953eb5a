// Package metrics exposes conversion counters for Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jbec2912-cell/csv-filter-tool/internal/core"
)

const namespace = "csvfilter"

// Row outcomes.
const (
	OutcomeWritten   = "written"
	OutcomeDropped   = "dropped"
	OutcomeDuplicate = "duplicate"
	OutcomeSkipped   = "skipped_preamble"
)

// Recorder records conversion outcomes on its own registry so tests and
// multiple servers in one process do not collide on the default one.
type Recorder struct {
	registry *prometheus.Registry

	Conversions   *prometheus.CounterVec
	Rows          *prometheus.CounterVec
	ParseWarnings prometheus.Counter
	Duration      *prometheus.HistogramVec
}

// NewRecorder creates a Recorder with Go runtime and process collectors
// registered alongside the conversion metrics.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),

		Conversions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "conversions_total",
				Help:      "Total number of conversions by source and status",
			},
			[]string{"source", "status"},
		),

		Rows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rows_total",
				Help:      "Total number of input rows by outcome",
			},
			[]string{"outcome"},
		),

		ParseWarnings: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "parse_warnings_total",
				Help:      "Total number of recovered structural parse problems",
			},
		),

		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "conversion_duration_seconds",
				Help:      "Conversion duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"source"},
		),
	}

	r.registry.MustRegister(
		r.Conversions,
		r.Rows,
		r.ParseWarnings,
		r.Duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveConversion implements core.Observer.
func (r *Recorder) ObserveConversion(source core.Source, summary core.Summary, duration time.Duration, err error) {
	src := string(source)
	r.Conversions.WithLabelValues(src, status(err)).Inc()
	r.Duration.WithLabelValues(src).Observe(duration.Seconds())
	if err != nil {
		return
	}

	r.Rows.WithLabelValues(OutcomeWritten).Add(float64(summary.RowsWritten))
	r.Rows.WithLabelValues(OutcomeDropped).Add(float64(summary.RowsDropped))
	r.Rows.WithLabelValues(OutcomeDuplicate).Add(float64(summary.RowsDuplicate))
	r.Rows.WithLabelValues(OutcomeSkipped).Add(float64(summary.RowsSkipped))
	r.ParseWarnings.Add(float64(len(summary.Warnings)))
}

// status buckets errors into a small label set.
func status(err error) string {
	switch {
	case err == nil:
		return "ok"
	case core.IsFatalInput(err):
		return "invalid_input"
	}
	return "error"
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
