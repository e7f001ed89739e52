// Package metrics counts reconciliation outcomes with Prometheus.
//
// Each Recorder owns its registry so a CLI run (or a test) sees only its own
// counts. Batch jobs have no scrape endpoint; WriteTextfile dumps the
// registry for the node exporter's textfile collector instead.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"offerbridge/internal/reconcile"
)

const namespace = "offerbridge"

// Outcome label values.
const (
	OutcomeInserted = "inserted"
	OutcomeUpdated  = "updated"
	OutcomeSkipped  = "skipped"
	OutcomeFailed   = "failed"
)

// Recorder implements reconcile.Observer for one feed.
type Recorder struct {
	source   string
	registry *prometheus.Registry

	// rows counts processed rows.
	// Labels: source, outcome (inserted, updated, skipped, failed)
	rows *prometheus.CounterVec

	// skips counts skipped rows by reason.
	// Labels: source, reason
	skips *prometheus.CounterVec

	lastRun prometheus.Gauge
}

// NewRecorder returns a Recorder labelled with source, for example
// "primary" or "secondary".
func NewRecorder(source string) *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		source:   source,
		registry: reg,
		rows: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "rows_total",
			Help:      "Rows processed by the reconciliation engine",
		}, []string{"source", "outcome"}),
		skips: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "skips_total",
			Help:      "Rows skipped without a write, by reason",
		}, []string{"source", "reason"}),
		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "reconcile",
			Name:        "last_run_timestamp_seconds",
			Help:        "Unix time the last run finished",
			ConstLabels: prometheus.Labels{"source": source},
		}),
	}
}

// Observe records one row outcome.
func (r *Recorder) Observe(o reconcile.Outcome, err error) {
	switch {
	case err != nil:
		r.rows.WithLabelValues(r.source, OutcomeFailed).Inc()
	case o.Skipped():
		r.rows.WithLabelValues(r.source, OutcomeSkipped).Inc()
		r.skips.WithLabelValues(r.source, o.Reason).Inc()
	case o.Inserted:
		r.rows.WithLabelValues(r.source, OutcomeInserted).Inc()
	default:
		r.rows.WithLabelValues(r.source, OutcomeUpdated).Inc()
	}
}

// Finish stamps the end of a run.
func (r *Recorder) Finish() {
	r.lastRun.SetToCurrentTime()
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes every metric to path in the text exposition format.
// The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
