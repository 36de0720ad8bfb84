package metrics

import (
	"testing"
	"time"
)

func TestStore_ExportSamples(t *testing.T) {
	s, clock, _ := newTestStore(t)

	s.BeginRequest("GET", "/", "")
	s.EndRequest(500, 40*time.Millisecond)
	s.TrackDBQuery(20*time.Millisecond, false, QueryDelete)
	s.RecordUserSignup("a@x.com")
	s.SampleSystem()
	clock.Advance(6 * time.Second)
	s.Roll()

	samples := s.ExportSamples()

	want := map[string]struct {
		kind  Kind
		value float64
		unit  string
	}{
		"cpu":                      {KindGauge, 12.5, "%"},
		"requests":                 {KindSum, 1, "1"},
		"get_requests":             {KindSum, 1, "1"},
		"requests_per_minute":      {KindGauge, 10, "rpm"},
		"latency":                  {KindSum, 40, "ms"},
		"error_rate":               {KindGauge, 100, "%"},
		"db_errors":                {KindSum, 1, "1"},
		"db_query_delete":          {KindSum, 1, "1"},
		"db_query_select":          {KindSum, 0, "1"},
		"avg_db_query_time":        {KindGauge, 20, "ms"},
		"db_error_rate":            {KindGauge, 100, "%"},
		"user_signup":              {KindSum, 1, "1"},
		"pizza_latency_min":        {KindGauge, 0, "ms"},
		"pizza_revenue_per_minute": {KindGauge, 0, "BTC/min"},
	}
	for name, w := range want {
		got, ok := findSample(samples, name)
		if !ok {
			t.Errorf("missing sample %s", name)
			continue
		}
		if got.Kind != w.kind || got.Value != w.value || got.Unit != w.unit {
			t.Errorf("%s = %+v, want kind=%s value=%v unit=%s", name, got, w.kind, w.value, w.unit)
		}
	}
	if _, ok := findSample(samples, "db_pool_size"); ok {
		t.Error("pool gauges exported before any pool stats were reported")
	}

	again := s.ExportSamples()
	if _, ok := findSample(again, "user_signup"); ok {
		t.Error("user_signup should be sent once per delta")
	}
	if got := s.Snapshot().Counter(UserSignups); got != 1 {
		t.Errorf("total signups = %v, want 1 after delta reset", got)
	}
}

func TestStore_ExportPoolStats(t *testing.T) {
	s, _, _ := newTestStore(t)
	s.SetPoolStats(10, 3, 1)

	samples := s.ExportSamples()
	for name, want := range map[string]float64{"db_pool_size": 10, "db_pool_used": 3, "db_pool_queue": 1} {
		got, ok := findSample(samples, name)
		if !ok || got.Value != want {
			t.Errorf("%s = %+v, want %v", name, got, want)
		}
	}
}

func TestStore_SampleSystemFailureKeepsValues(t *testing.T) {
	s, _, _ := newTestStore(t)
	s.SampleSystem()
	s.system = fakeSampler{err: errSampler}
	s.SampleSystem()

	if got := s.Snapshot().Gauge(CPU); got != 12.5 {
		t.Errorf("cpu = %v, want previous value 12.5", got)
	}
}
