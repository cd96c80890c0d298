// Package observability wires tracing and metrics for the identity
// resolution core. This file exposes Prometheus instrumentation for
// duplicate detection and fingerprint backfill with careful attention to
// label cardinality:
//
//   - result (detections): exact | fuzzy | clean | error
//   - result (backfill rows): updated | skipped | error
//
// All collectors are safe for concurrent use.
package observability

import "github.com/prometheus/client_golang/prometheus"

// Detection result label values.
const (
	DetectionExact = "exact"
	DetectionFuzzy = "fuzzy"
	DetectionClean = "clean"
	DetectionError = "error"
)

// Backfill row result label values.
const (
	BackfillUpdated = "updated"
	BackfillSkipped = "skipped"
	BackfillError   = "error"
)

var (
	// detections counts detection calls by outcome.
	detections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duplicate_detections_total",
			Help: "Total number of duplicate detection calls by outcome.",
		},
		[]string{"result"},
	)

	// detectionDuration records end-to-end detection latency in seconds.
	// Buckets skew low: the exact path is a single indexed lookup, while
	// the fuzzy scan grows with tenant size.
	detectionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "duplicate_detection_duration_seconds",
			Help:    "Duration of duplicate detection calls in seconds.",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	// flaggedApplications counts applications flagged for duplicate review.
	flaggedApplications = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "applications_flagged_total",
			Help: "Total number of applications flagged for duplicate review.",
		},
	)

	// backfillRows counts fingerprint backfill rows by per-row outcome.
	backfillRows = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fingerprint_backfill_rows_total",
			Help: "Total fingerprint backfill rows processed by outcome.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(detections, detectionDuration, flaggedApplications, backfillRows)
}

// ObserveDetection records one detection call with its outcome and latency
// in seconds.
func ObserveDetection(result string, seconds float64) {
	detections.WithLabelValues(result).Inc()
	detectionDuration.Observe(seconds)
}

// ApplicationFlagged records one application flagged for review.
func ApplicationFlagged() { flaggedApplications.Inc() }

// BackfillRow records one processed backfill row with its outcome.
func BackfillRow(result string) { backfillRows.WithLabelValues(result).Inc() }
