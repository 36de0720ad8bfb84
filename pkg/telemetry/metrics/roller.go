package metrics

import "math"

// Roll converts the windowed counters into per-minute gauges and zeroes the
// windows. Each rate is window*60000/elapsedMs, so a late tick still yields
// an approximately correct rate. A call less than RolloverMinInterval after
// the previous rollover is a no-op and returns false.
//
// The read, scale and reset happen under the store lock; no increment can
// land between reading a window and zeroing it.
func (s *Store) Roll() bool {
	defer s.recoverPanic("roll")
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	elapsed := now.Sub(s.st.lastRollover)
	if elapsed < s.rolloverMinInterval {
		return false
	}
	ratio := 60000 / ms(elapsed)

	for _, r := range rateRules {
		rate := s.st.windows[r.window] * ratio
		if r.fractional {
			rate = round8(rate)
		} else {
			rate = math.Round(rate)
		}
		s.st.gauges[r.gauge] = rate
		s.st.windows[r.window] = 0
	}
	s.st.gauges[PizzaLatencyPerMinute] = s.st.windowPizzaLatency.Avg()
	s.st.windowPizzaLatency = Accumulator{}
	s.st.lastRollover = now

	if rpm := s.st.gauges[RequestsPerMinute]; rpm > 0 {
		s.logger.Debug("rolled rate window",
			"elapsed_ms", ms(elapsed),
			"requests_per_minute", rpm,
			"pizza_sales_per_minute", s.st.gauges[PizzaSalesPerMinute],
		)
	}
	return true
}
