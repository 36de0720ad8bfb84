package metrics

import (
	"testing"
	"time"
)

func TestStore_TrackFactory(t *testing.T) {
	s, _, _ := newTestStore(t)

	s.TrackFactoryRequest("/api/order", "POST", 200, 100*time.Millisecond)
	s.TrackFactoryRequest("/api/order", "POST", 502, 300*time.Millisecond)
	s.TrackFactoryError("/api/order", "POST", 502)
	s.TrackFactoryError("/api/order", "POST", 0)

	sum := s.Snapshot().Factory
	if sum.TotalRequests != 2 {
		t.Errorf("total requests = %d, want 2", sum.TotalRequests)
	}
	if sum.TotalErrors != 2 {
		t.Errorf("total errors = %d, want 2", sum.TotalErrors)
	}
	if sum.AverageDuration != 200 {
		t.Errorf("average duration = %v, want 200", sum.AverageDuration)
	}
	ep := sum.Endpoints["POST:/api/order"]
	if ep.Count != 2 || ep.Success != 1 || ep.Failure != 1 || ep.TotalDuration != 400 {
		t.Errorf("endpoint stats = %+v", ep)
	}
	if sum.ErrorsByStatus["POST:/api/order:502"] != 1 || sum.ErrorsByStatus["POST:/api/order:500"] != 1 {
		t.Errorf("errors by status = %v", sum.ErrorsByStatus)
	}
}

func TestFactoryLog_Ring(t *testing.T) {
	f := newFactoryLog(3)
	for i := 1; i <= 5; i++ {
		f.append(FactoryCall{Status: i})
	}
	calls := f.calls()
	if len(calls) != 3 {
		t.Fatalf("len = %d, want 3", len(calls))
	}
	for i, want := range []int{3, 4, 5} {
		if calls[i].Status != want {
			t.Errorf("calls[%d].Status = %d, want %d", i, calls[i].Status, want)
		}
	}
}
