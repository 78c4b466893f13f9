// Package metrics exposes Prometheus counters for the ingestion pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records pipeline-level observations.
type Metrics struct {
	filesProcessed          *prometheus.CounterVec
	fileDuration            prometheus.Histogram
	recordsPersisted        prometheus.Counter
	classificationFallbacks prometheus.Counter
}

// New registers the pipeline metrics on reg. A nil reg uses the default
// registerer; tests pass their own registry to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		filesProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statement_files_processed_total",
				Help: "Total number of statement files processed, by outcome",
			},
			[]string{"status"},
		),
		fileDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "statement_file_duration_seconds",
				Help:    "Per-file pipeline duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
			},
		),
		recordsPersisted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "statement_records_persisted_total",
				Help: "Total number of new transaction rows inserted, after dedup",
			},
		),
		classificationFallbacks: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "statement_classification_fallbacks_total",
				Help: "Total number of descriptions that degraded to the default label",
			},
		),
	}
}

// FileProcessed increments the per-status file counter.
func (m *Metrics) FileProcessed(status string) {
	m.filesProcessed.WithLabelValues(status).Inc()
}

// ObserveFileDuration records how long one file's pipeline took.
func (m *Metrics) ObserveFileDuration(d time.Duration) {
	m.fileDuration.Observe(d.Seconds())
}

// RecordsPersisted adds to the persisted-record counter.
func (m *Metrics) RecordsPersisted(n int) {
	m.recordsPersisted.Add(float64(n))
}

// ClassificationFallback counts one degraded classification.
func (m *Metrics) ClassificationFallback() {
	m.classificationFallbacks.Inc()
}
