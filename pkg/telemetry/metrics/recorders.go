package metrics

import (
	"fmt"
	"strings"
	"time"
)

// SaleItem is one line of a pizza order as seen by the sales recorder.
type SaleItem struct {
	Description string
	Price       float64
}

// StageLatencies breaks an order's processing time into stages. Zero
// stages are not recorded.
type StageLatencies struct {
	Preparation time.Duration
	Baking      time.Duration
	Packaging   time.Duration
	Payment     time.Duration
}

// SignupSentinel is the dedupe key used for signups without an email.
const SignupSentinel = "unknown"

// RecordAuthAttempt counts one login attempt. Every call counts; callers
// must invoke it exactly once per attempt.
func (s *Store) RecordAuthAttempt(success bool) {
	defer s.recoverPanic("record auth attempt")
	s.mu.Lock()
	defer s.mu.Unlock()

	s.incLocked(AuthAttempts, 1)
	if success {
		s.incLocked(AuthSuccess, 1)
	} else {
		s.incLocked(AuthFailure, 1)
	}
}

// RecordUserSignup counts a new user keyed by email. A repeat for the same
// email inside the signup dedupe TTL is dropped and reported as false.
func (s *Store) RecordUserSignup(email string) bool {
	defer s.recoverPanic("record user signup")

	key := strings.ToLower(strings.TrimSpace(email))
	if key == "" {
		key = SignupSentinel
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.signups.accept(key, s.now()) {
		s.logger.Debug("duplicate signup suppressed", "key", key)
		return false
	}
	s.incLocked(UserSignups, 1)
	s.incLocked(UserSignupsDelta, 1)
	return true
}

// RecordPizzaSale records an order outcome. Successful orders add the item
// count and summed price to sales and revenue and feed the success latency
// stats. Failed orders only bump the failure counters and the failed
// latency accumulator. Orders sharing a (millisecond, item count) key
// inside the order dedupe TTL are dropped and reported as false.
func (s *Store) RecordPizzaSale(items []SaleItem, success bool, duration time.Duration, stages StageLatencies) bool {
	defer s.recoverPanic("record pizza sale")

	samples, ok := s.recordPizzaSaleLocked(items, success, duration, stages)
	s.emit(samples)
	return ok
}

func (s *Store) recordPizzaSaleLocked(items []SaleItem, success bool, duration time.Duration, stages StageLatencies) ([]Sample, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	key := fmt.Sprintf("%d-%d", now.UnixMilli(), len(items))
	if !s.orders.accept(key, now) {
		s.logger.Debug("duplicate order suppressed", "key", key)
		return nil, false
	}

	var samples []Sample
	d := ms(duration)

	if !success {
		s.incLocked(PizzaFailures, 1)
		if d > 0 {
			s.sumLocked(PizzaFailedLatency).add(d)
			samples = append(samples, gauge("pizza_failed_order_latency", d, "ms"))
		}
		return samples, true
	}

	count := float64(len(items))
	var revenue float64
	for _, it := range items {
		revenue += it.Price
	}
	s.incLocked(PizzaSales, count)
	s.incLocked(PizzaRevenue, revenue)
	s.setGaugeLocked(TotalPizzasLastOrder, count)
	samples = append(samples, gauge(string(TotalPizzasLastOrder), count, "pizzas"))

	if d > 0 {
		acc := s.sumLocked(PizzaLatency)
		acc.add(d)
		s.st.windowPizzaLatency.add(d)
		samples = append(samples,
			gauge("pizza_order_latency", d, "ms"),
			gauge("pizza_order_latency_avg", acc.Avg(), "ms"),
		)
	}

	for _, st := range []struct {
		name Name
		d    time.Duration
	}{
		{PreparationLatency, stages.Preparation},
		{BakingLatency, stages.Baking},
		{PackagingLatency, stages.Packaging},
		{PaymentLatency, stages.Payment},
	} {
		if st.d <= 0 {
			continue
		}
		s.sumLocked(st.name).add(ms(st.d))
		samples = append(samples, gauge(string(st.name), ms(st.d), "ms"))
	}
	return samples, true
}

// TrackDBQuery records one statement execution. Unrecognised query types
// are counted as QueryUnknown.
func (s *Store) TrackDBQuery(duration time.Duration, success bool, qt QueryType) {
	defer s.recoverPanic("track db query")
	s.mu.Lock()
	defer s.mu.Unlock()

	s.incLocked(DBQueries, 1)
	s.st.dbQueryTypes[normalizeQueryType(qt)]++
	s.sumLocked(DBLatency).add(ms(duration))
	if duration > s.slowQueryThreshold {
		s.incLocked(DBSlowQueries, 1)
	}
	if !success {
		s.incLocked(DBErrors, 1)
		s.incLocked(DBQueryErrors, 1)
	}
}

// SlowQueryThreshold reports the duration above which TrackDBQuery counts a
// query as slow.
func (s *Store) SlowQueryThreshold() time.Duration {
	return s.slowQueryThreshold
}

// TrackDBConnectionError counts a failure to establish a database connection.
// It is kept apart from query errors.
func (s *Store) TrackDBConnectionError() {
	s.Increment(DBConnectionErrors, 1)
}
