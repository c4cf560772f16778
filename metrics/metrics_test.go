package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveOutcomeIncrementsCounter(t *testing.T) {
	r := NewRecorder()
	r.ObserveOutcome("ok")
	r.ObserveOutcome("ok")
	r.ObserveOutcome("no_match")

	if got := testutil.ToFloat64(r.outcomes.WithLabelValues("ok")); got != 2 {
		t.Fatalf("ok count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.outcomes.WithLabelValues("no_match")); got != 1 {
		t.Fatalf("no_match count = %v, want 1", got)
	}
}

func TestStartUpstreamRecordsObservation(t *testing.T) {
	r := NewRecorder()
	stop := r.StartUpstream("app")
	stop()

	count := testutil.CollectAndCount(r.upstream)
	if count == 0 {
		t.Fatal("expected at least one histogram sample registered")
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	var r *Recorder
	r.ObserveOutcome("ok")
	stop := r.StartUpstream("app")
	stop()
}
