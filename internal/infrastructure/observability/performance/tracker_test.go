package performance

import (
	"context"
	"testing"
	"time"
)

func totalMarkers(t *testing.T, tracker *Tracker) int {
	t.Helper()
	total, ok := tracker.GetOverallStats()["totalMarkers"].(int)
	if !ok {
		t.Fatal("stats missing totalMarkers")
	}
	return total
}

func TestCleanupEvictsMarkersPastRetention(t *testing.T) {
	tracker := NewTracker(&TrackerConfig{MaxMarkers: 100, MarkerRetention: time.Minute})

	stale := tracker.StartOperation("resolve_slot_request")
	stale.Complete()
	stale.EndTime = time.Now().Add(-time.Hour)

	fresh := tracker.StartOperation("reorder_request")
	fresh.Complete()

	inFlight := tracker.StartOperation("record_stats_event")

	tracker.Cleanup()

	if got := totalMarkers(t, tracker); got != 2 {
		t.Fatalf("expected stale marker evicted and 2 retained, got %d", got)
	}

	inFlight.Complete()
}

func TestCleanupCapsMarkerCount(t *testing.T) {
	tracker := NewTracker(&TrackerConfig{MaxMarkers: 4, MarkerRetention: time.Hour})

	for i := 0; i < 20; i++ {
		tracker.StartOperation("resolve_slot_request").Complete()
	}

	tracker.Cleanup()

	if got := totalMarkers(t, tracker); got > 4 {
		t.Fatalf("expected marker count capped at 4, got %d", got)
	}
}

func TestRunEvictsInBackground(t *testing.T) {
	tracker := NewTracker(&TrackerConfig{MaxMarkers: 100, MarkerRetention: time.Millisecond})

	marker := tracker.StartOperation("resolve_slot_request")
	marker.Complete()
	marker.EndTime = time.Now().Add(-time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go tracker.Run(ctx, 5*time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if totalMarkers(t, tracker) == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("marker survived background eviction: %d remaining", totalMarkers(t, tracker))
}
