package metrics

import (
	"strconv"
	"time"
)

// FactoryCall is one outbound fulfillment API call.
type FactoryCall struct {
	Endpoint string        `json:"endpoint"`
	Method   string        `json:"method"`
	Status   int           `json:"status"`
	Duration time.Duration `json:"duration"`
	At       time.Time     `json:"timestamp"`
}

// FactoryEndpointStats is the running tally for one method and endpoint.
type FactoryEndpointStats struct {
	Count         int64   `json:"count"`
	Success       int64   `json:"success"`
	Failure       int64   `json:"failure"`
	TotalDuration float64 `json:"totalDurationMs"`
}

// FactorySummary is derived on demand from the tallies and the call log.
type FactorySummary struct {
	TotalRequests   int64                           `json:"totalRequests"`
	TotalErrors     int64                           `json:"totalErrors"`
	AverageDuration float64                         `json:"averageDuration"`
	Endpoints       map[string]FactoryEndpointStats `json:"endpoints,omitempty"`
	ErrorsByStatus  map[string]int64                `json:"errorsByStatus,omitempty"`
}

// factoryLog keeps per-endpoint tallies and a bounded ring of recent calls.
// It is guarded by Store.mu.
type factoryLog struct {
	endpoints map[string]*FactoryEndpointStats
	errors    map[string]int64

	ring []FactoryCall
	next int
	full bool
}

func newFactoryLog(size int) *factoryLog {
	return &factoryLog{
		endpoints: make(map[string]*FactoryEndpointStats),
		errors:    make(map[string]int64),
		ring:      make([]FactoryCall, size),
	}
}

func endpointKey(method, endpoint string) string {
	return method + ":" + endpoint
}

func (f *factoryLog) stats(method, endpoint string) *FactoryEndpointStats {
	k := endpointKey(method, endpoint)
	st, ok := f.endpoints[k]
	if !ok {
		st = &FactoryEndpointStats{}
		f.endpoints[k] = st
	}
	return st
}

func (f *factoryLog) append(c FactoryCall) {
	f.ring[f.next] = c
	f.next++
	if f.next == len(f.ring) {
		f.next = 0
		f.full = true
	}
}

// calls returns the logged calls oldest first.
func (f *factoryLog) calls() []FactoryCall {
	if !f.full {
		return append([]FactoryCall(nil), f.ring[:f.next]...)
	}
	out := make([]FactoryCall, 0, len(f.ring))
	out = append(out, f.ring[f.next:]...)
	return append(out, f.ring[:f.next]...)
}

func (f *factoryLog) summary() FactorySummary {
	out := FactorySummary{
		Endpoints:      make(map[string]FactoryEndpointStats, len(f.endpoints)),
		ErrorsByStatus: make(map[string]int64, len(f.errors)),
	}
	for k, v := range f.endpoints {
		out.Endpoints[k] = *v
		out.TotalRequests += v.Count
	}
	for k, v := range f.errors {
		out.ErrorsByStatus[k] = v
		out.TotalErrors += v
	}

	// The average covers only the calls still in the ring.
	calls := f.calls()
	var total float64
	for _, c := range calls {
		total += ms(c.Duration)
	}
	if len(calls) > 0 {
		out.AverageDuration = total / float64(len(calls))
	}
	return out
}

// TrackFactoryRequest records a completed call to the fulfillment API.
func (s *Store) TrackFactoryRequest(endpoint, method string, status int, duration time.Duration) {
	defer s.recoverPanic("track factory request")
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.factory.stats(method, endpoint)
	st.Count++
	st.TotalDuration += ms(duration)
	if status >= 200 && status < 300 {
		st.Success++
	} else {
		st.Failure++
	}
	s.factory.append(FactoryCall{
		Endpoint: endpoint,
		Method:   method,
		Status:   status,
		Duration: duration,
		At:       s.now(),
	})
}

// TrackFactoryError records a failed call. A zero status is recorded as 500.
func (s *Store) TrackFactoryError(endpoint, method string, status int) {
	defer s.recoverPanic("track factory error")
	if status == 0 {
		status = 500
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.factory.errors[endpointKey(method, endpoint)+":"+strconv.Itoa(status)]++
}

// FactoryCalls returns the recent call log, oldest first.
func (s *Store) FactoryCalls() []FactoryCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.factory.calls()
}
