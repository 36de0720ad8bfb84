package metrics

import (
	"testing"
	"time"
)

func TestStore_RollScalesByElapsed(t *testing.T) {
	s, clock, _ := newTestStore(t)

	s.Increment(Requests, 30)
	clock.Advance(15 * time.Second)
	if !s.Roll() {
		t.Fatal("Roll() = false, want true")
	}

	sn := s.Snapshot()
	if got := sn.Gauge(RequestsPerMinute); got != 120 {
		t.Errorf("requests_per_minute = %v, want 120", got)
	}
	if got := sn.Window(Requests); got != 0 {
		t.Errorf("requests window = %v, want 0", got)
	}
	if got := sn.Counter(Requests); got != 30 {
		t.Errorf("requests total = %v, want 30", got)
	}
}

func TestStore_RollDebounce(t *testing.T) {
	s, clock, _ := newTestStore(t)

	s.Increment(GetRequests, 10)
	clock.Advance(10 * time.Second)
	s.Roll()

	s.Increment(GetRequests, 4)
	clock.Advance(4999 * time.Millisecond)
	if s.Roll() {
		t.Fatal("second Roll() inside the debounce window should be a no-op")
	}

	sn := s.Snapshot()
	if got := sn.Gauge(GetRequestsPerMinute); got != 60 {
		t.Errorf("get_requests_per_minute = %v, want 60", got)
	}
	if got := sn.Window(GetRequests); got != 4 {
		t.Errorf("get window = %v, want 4 (untouched)", got)
	}
}

func TestStore_RollRounding(t *testing.T) {
	tests := []struct {
		name    string
		counter Name
		amount  float64
		elapsed time.Duration
		gauge   Name
		want    float64
	}{
		{"whole rate rounds", AuthAttempts, 1, 7 * time.Second, AuthAttemptsPerMinute, 9},
		{"failures", PizzaFailures, 2, 20 * time.Second, PizzaFailuresPerMinute, 6},
		{"revenue keeps 8 decimals", PizzaRevenue, 0.0001, 7 * time.Second, PizzaRevenuePerMinute, 0.00085714},
		{"sales", PizzaSales, 5, 60 * time.Second, PizzaSalesPerMinute, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, clock, _ := newTestStore(t)
			s.Increment(tt.counter, tt.amount)
			clock.Advance(tt.elapsed)
			s.Roll()
			if got := s.Snapshot().Gauge(tt.gauge); got != tt.want {
				t.Errorf("%s = %v, want %v", tt.gauge, got, tt.want)
			}
		})
	}
}

func TestStore_RollPizzaLatencyAverage(t *testing.T) {
	s, clock, _ := newTestStore(t)

	s.RecordPizzaSale([]SaleItem{{Price: 0.01}}, true, 100*time.Millisecond, StageLatencies{})
	clock.Advance(time.Millisecond)
	s.RecordPizzaSale([]SaleItem{{Price: 0.01}}, true, 300*time.Millisecond, StageLatencies{})
	clock.Advance(10 * time.Second)
	s.Roll()

	if got := s.Snapshot().Gauge(PizzaLatencyPerMinute); got != 200 {
		t.Errorf("pizza_latency_per_minute = %v, want 200", got)
	}

	clock.Advance(10 * time.Second)
	s.Roll()
	if got := s.Snapshot().Gauge(PizzaLatencyPerMinute); got != 0 {
		t.Errorf("empty window pizza_latency_per_minute = %v, want 0", got)
	}
}

// TestStore_RollWindowsNeverCarry checks that every window reads 0 right
// after a rollover.
func TestStore_RollWindowsNeverCarry(t *testing.T) {
	s, clock, _ := newTestStore(t)
	for _, r := range rateRules {
		s.Increment(r.window, 3)
	}
	clock.Advance(6 * time.Second)
	s.Roll()

	sn := s.Snapshot()
	for _, r := range rateRules {
		if got := sn.Window(r.window); got != 0 {
			t.Errorf("window %s = %v after roll, want 0", r.window, got)
		}
	}
	if !sn.LastRollover.Equal(clock.Now()) {
		t.Errorf("last rollover = %v, want %v", sn.LastRollover, clock.Now())
	}
}
