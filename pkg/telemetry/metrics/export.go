package metrics

// Kind is the collector series type of a Sample.
type Kind string

const (
	// KindGauge is an instantaneous value.
	KindGauge Kind = "gauge"

	// KindSum is a cumulative, monotonic total.
	KindSum Kind = "sum"
)

// Sample is one metric data point ready for publishing.
type Sample struct {
	Name  string
	Value float64
	Kind  Kind
	Unit  string
}

func gauge(name string, v float64, unit string) Sample {
	return Sample{Name: name, Value: v, Kind: KindGauge, Unit: unit}
}

func sum(name string, v float64, unit string) Sample {
	return Sample{Name: name, Value: v, Kind: KindSum, Unit: unit}
}

var rateUnits = map[Name]string{
	RequestsPerMinute:       "rpm",
	GetRequestsPerMinute:    "rpm",
	PostRequestsPerMinute:   "rpm",
	PutRequestsPerMinute:    "rpm",
	DeleteRequestsPerMinute: "rpm",
	AuthAttemptsPerMinute:   "rpm",
	AuthSuccessPerMinute:    "rpm",
	AuthFailurePerMinute:    "rpm",
	PizzaSalesPerMinute:     "pizzas/min",
	PizzaFailuresPerMinute:  "failures/min",
	PizzaRevenuePerMinute:   "BTC/min",
}

// ExportSamples reads the flush payload from the store. It also consumes
// the signup delta: a user_signup sample is included only when signups
// arrived since the previous call, and the delta is zeroed.
//
// The values are copied under the lock; publishing them is left to the
// caller so no network call ever runs while the store is locked.
func (s *Store) ExportSamples() []Sample {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.st.counters
	g := s.st.gauges
	out := make([]Sample, 0, 48)

	out = append(out,
		gauge(string(CPU), g[CPU], "%"),
		gauge(string(Memory), g[Memory], "%"),
	)
	for _, n := range []Name{Requests, GetRequests, PostRequests, PutRequests, DeleteRequests} {
		out = append(out, sum(string(n), c[n], "1"))
	}
	for _, r := range rateRules {
		out = append(out, gauge(string(r.gauge), g[r.gauge], rateUnits[r.gauge]))
	}

	pl := s.sumOrZero(PizzaLatency)
	out = append(out,
		gauge("pizza_order_latency_avg", pl.Avg(), "ms"),
		gauge(string(PizzaLatencyPerMinute), g[PizzaLatencyPerMinute], "ms"),
		gauge("pizza_latency_max", pl.Max, "ms"),
		gauge("pizza_latency_min", pl.Min, "ms"),
		gauge(string(TotalPizzasLastOrder), g[TotalPizzasLastOrder], "pizzas"),
		gauge(string(ActiveUsers), g[ActiveUsers], "users"),
		sum(string(Latency), s.sumOrZero(Latency).Sum, "ms"),
		gauge("error_rate", percent(c[Errors], c[Requests]), "%"),
		sum(string(DBQueries), c[DBQueries], "1"),
		sum(string(DBErrors), c[DBErrors], "1"),
		sum(string(DBLatency), s.sumOrZero(DBLatency).Sum, "ms"),
	)

	if delta := c[UserSignupsDelta]; delta > 0 {
		out = append(out, sum("user_signup", delta, "1"))
		c[UserSignupsDelta] = 0
	}

	out = append(out,
		sum(string(DBConnectionErrors), c[DBConnectionErrors], "1"),
		sum(string(DBQueryErrors), c[DBQueryErrors], "1"),
		sum(string(DBSlowQueries), c[DBSlowQueries], "1"),
	)
	for _, t := range QueryTypes {
		out = append(out, sum("db_query_"+string(t), float64(s.st.dbQueryTypes[t]), "1"))
	}
	out = append(out,
		gauge("avg_db_query_time", ratio(s.sumOrZero(DBLatency).Sum, c[DBQueries]), "ms"),
		gauge("db_error_rate", percent(c[DBErrors], c[DBQueries]), "%"),
	)

	if s.st.poolReported {
		out = append(out,
			gauge(string(DBPoolSize), g[DBPoolSize], "1"),
			gauge(string(DBPoolUsed), g[DBPoolUsed], "1"),
			gauge(string(DBPoolQueue), g[DBPoolQueue], "1"),
		)
	}
	return out
}

func (s *Store) sumOrZero(n Name) Accumulator {
	if acc, ok := s.st.sums[n]; ok {
		return *acc
	}
	return Accumulator{}
}

// ratio returns num/den, or 0 for an empty denominator.
func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func percent(num, den float64) float64 {
	return ratio(num, den) * 100
}
