// Package metrics provides Prometheus metrics for export runs: record
// and batch counters, error counters by type, and run/batch duration
// histograms. Metrics register automatically on first import; exposing
// them is the embedding process's concern.
//
// # Basic Usage
//
//	collector := metrics.NewCollector("bib")
//	collector.RecordWritten(1)
//	...
//	collector.ObserveRunDuration(time.Since(start))
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecordsWritten counts records successfully serialized or inserted,
	// labeled by record kind and output type.
	RecordsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marcflow",
			Name:      "records_written_total",
			Help:      "Total records written to the export destination",
		},
		[]string{"kind", "output_type"},
	)

	// RecordsExcluded counts records dropped by the export policy,
	// labeled by record kind.
	RecordsExcluded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marcflow",
			Name:      "records_excluded_total",
			Help:      "Total records excluded by the export policy",
		},
		[]string{"kind"},
	)

	// BatchesProcessed counts completed retrieval batches by record kind.
	BatchesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marcflow",
			Name:      "batches_processed_total",
			Help:      "Total identifier batches processed",
		},
		[]string{"kind"},
	)

	// Errors counts fatal run errors by error type.
	Errors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marcflow",
			Name:      "errors_total",
			Help:      "Total fatal export errors by type",
		},
		[]string{"type"},
	)

	// BatchSize observes the identifier count of each batch.
	BatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "marcflow",
			Name:      "batch_size",
			Help:      "Identifiers per retrieval batch",
			Buckets:   []float64{1, 10, 50, 100, 250, 500, 1000},
		},
	)

	// RunDuration observes wall-clock run time in seconds by record kind.
	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "marcflow",
			Name:      "run_duration_seconds",
			Help:      "Export run duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		},
		[]string{"kind"},
	)
)

// Collector is a per-run handle pre-bound to one record kind and output
// type, so the hot per-record path skips label lookups.
type Collector struct {
	written   prometheus.Counter
	excluded  prometheus.Counter
	batches   prometheus.Counter
	duration  prometheus.Observer
	startTime time.Time
}

// NewCollector creates a collector for a run of the given kind and
// output type.
func NewCollector(kind, outputType string) *Collector {
	return &Collector{
		written:   RecordsWritten.WithLabelValues(kind, outputType),
		excluded:  RecordsExcluded.WithLabelValues(kind),
		batches:   BatchesProcessed.WithLabelValues(kind),
		duration:  RunDuration.WithLabelValues(kind),
		startTime: time.Now(),
	}
}

// RecordWritten counts one written record.
func (c *Collector) RecordWritten() { c.written.Inc() }

// RecordExcluded counts one policy-excluded record.
func (c *Collector) RecordExcluded() { c.excluded.Inc() }

// BatchDone counts one completed batch and observes its size.
func (c *Collector) BatchDone(size int) {
	c.batches.Inc()
	BatchSize.Observe(float64(size))
}

// RecordError counts one fatal error of the given type.
func (c *Collector) RecordError(errType string) {
	Errors.WithLabelValues(errType).Inc()
}

// RunDone observes the elapsed run duration.
func (c *Collector) RunDone() {
	c.duration.Observe(time.Since(c.startTime).Seconds())
}
