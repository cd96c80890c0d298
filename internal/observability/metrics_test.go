package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveDetection_CountsByResult(t *testing.T) {
	before := testutil.ToFloat64(detections.WithLabelValues(DetectionFuzzy))
	ObserveDetection(DetectionFuzzy, 0.012)
	ObserveDetection(DetectionFuzzy, 0.034)
	after := testutil.ToFloat64(detections.WithLabelValues(DetectionFuzzy))
	if after-before != 2 {
		t.Fatalf("fuzzy detections delta = %v; want 2", after-before)
	}

	// Other outcomes stay untouched.
	cleanBefore := testutil.ToFloat64(detections.WithLabelValues(DetectionClean))
	ObserveDetection(DetectionExact, 0.001)
	if got := testutil.ToFloat64(detections.WithLabelValues(DetectionClean)); got != cleanBefore {
		t.Fatalf("clean counter moved: %v -> %v", cleanBefore, got)
	}
}

func TestApplicationFlagged_Increments(t *testing.T) {
	before := testutil.ToFloat64(flaggedApplications)
	ApplicationFlagged()
	if got := testutil.ToFloat64(flaggedApplications); got-before != 1 {
		t.Fatalf("flagged delta = %v; want 1", got-before)
	}
}

func TestBackfillRow_CountsByResult(t *testing.T) {
	updBefore := testutil.ToFloat64(backfillRows.WithLabelValues(BackfillUpdated))
	skpBefore := testutil.ToFloat64(backfillRows.WithLabelValues(BackfillSkipped))

	BackfillRow(BackfillUpdated)
	BackfillRow(BackfillUpdated)
	BackfillRow(BackfillSkipped)

	if got := testutil.ToFloat64(backfillRows.WithLabelValues(BackfillUpdated)); got-updBefore != 2 {
		t.Fatalf("updated delta = %v; want 2", got-updBefore)
	}
	if got := testutil.ToFloat64(backfillRows.WithLabelValues(BackfillSkipped)); got-skpBefore != 1 {
		t.Fatalf("skipped delta = %v; want 1", got-skpBefore)
	}
}
