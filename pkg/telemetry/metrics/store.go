package metrics

import (
	"log/slog"
	"math"
	"sync"
	"time"
)

// Default tuning for the Store.
const (
	DefaultSessionTTL          = 15 * time.Minute
	DefaultRolloverMinInterval = 5 * time.Second
	DefaultSlowQueryThreshold  = 300 * time.Millisecond
	DefaultFactoryLogSize      = 1000
	DefaultSummaryTopN         = 5
	DefaultMaxEndpoints        = 500
)

// OtherEndpoints is the endpoint tally key that absorbs requests once
// MaxEndpoints distinct "METHOD path" keys are tracked.
const OtherEndpoints = "other"

// DedupePolicy controls duplicate suppression for a business event recorder.
type DedupePolicy struct {
	// TTL is how long an accepted key suppresses repeats.
	TTL time.Duration

	// Capacity is the table size above which stale keys are evicted.
	Capacity int

	// EvictAfter is the age past which a key is considered stale.
	EvictAfter time.Duration
}

var (
	// DefaultSignupPolicy suppresses the same email for 2s.
	DefaultSignupPolicy = DedupePolicy{TTL: 2 * time.Second, Capacity: 100, EvictAfter: 5 * time.Second}

	// DefaultOrderPolicy suppresses the same (timestamp, item count) key for 5s.
	DefaultOrderPolicy = DedupePolicy{TTL: 5 * time.Second, Capacity: 100, EvictAfter: 5 * time.Second}
)

// Options configures a Store. The zero value is usable.
type Options struct {
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// Logger receives recorder diagnostics. Defaults to slog.Default().
	Logger *slog.Logger

	// Sink receives samples that are pushed out-of-band (server errors,
	// per-order latencies). Optional.
	Sink Sink

	// System samples host CPU and memory usage. Defaults to a procfs sampler.
	System SystemSampler

	SessionTTL          time.Duration
	RolloverMinInterval time.Duration
	SlowQueryThreshold  time.Duration
	FactoryLogSize      int
	SummaryTopN         int

	// MaxEndpoints bounds the number of distinct endpoint keys. Request
	// paths are client-controlled, so unmatched paths would otherwise grow
	// the tally without limit.
	MaxEndpoints int

	SignupPolicy        DedupePolicy
	OrderPolicy         DedupePolicy
}

// Sink accepts single metric samples for immediate delivery. Push must not block.
type Sink interface {
	Push(Sample)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Sample)

// Push calls f(s).
func (f SinkFunc) Push(s Sample) { f(s) }

// Accumulator is a running sum with sample count and extremes.
type Accumulator struct {
	Sum   float64 `json:"sum"`
	Count int64   `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Avg returns Sum/Count, or 0 when no samples were added.
func (a Accumulator) Avg() float64 {
	if a.Count == 0 {
		return 0
	}
	return a.Sum / float64(a.Count)
}

func (a *Accumulator) add(v float64) {
	if a.Count == 0 || v < a.Min {
		a.Min = v
	}
	if a.Count == 0 || v > a.Max {
		a.Max = v
	}
	a.Sum += v
	a.Count++
}

// state is the mutable MetricsState. Every field is guarded by Store.mu.
type state struct {
	counters     map[Name]float64
	windows      map[Name]float64
	gauges       map[Name]float64
	sums         map[Name]*Accumulator
	statusCodes  map[int]int64
	endpoints    map[string]int64
	dbQueryTypes map[QueryType]int64

	// windowPizzaLatency feeds PizzaLatencyPerMinute and is reset at rollover.
	windowPizzaLatency Accumulator

	lastRollover time.Time

	// poolReported is set once SetPoolStats has been called.
	poolReported bool
}

// Store is the process-wide counter store. It is safe for concurrent use:
// every mutation, compound update, and the roller's read-scale-reset run
// under a single mutex. Samples destined for the Sink are collected while
// the lock is held and delivered after it is released.
type Store struct {
	mu sync.Mutex
	st state

	sessions *sessionSet
	signups  *dedupe
	orders   *dedupe
	factory  *factoryLog
	sink     Sink

	now     func() time.Time
	logger  *slog.Logger
	system  SystemSampler
	started time.Time

	sessionTTL          time.Duration
	rolloverMinInterval time.Duration
	slowQueryThreshold  time.Duration
	summaryTopN         int
	maxEndpoints        int
}

// NewStore creates a Store with every counter zeroed.
func NewStore(opts Options) *Store {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.System == nil {
		opts.System = NewProcSampler()
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = DefaultSessionTTL
	}
	if opts.RolloverMinInterval <= 0 {
		opts.RolloverMinInterval = DefaultRolloverMinInterval
	}
	if opts.SlowQueryThreshold <= 0 {
		opts.SlowQueryThreshold = DefaultSlowQueryThreshold
	}
	if opts.FactoryLogSize <= 0 {
		opts.FactoryLogSize = DefaultFactoryLogSize
	}
	if opts.SummaryTopN <= 0 {
		opts.SummaryTopN = DefaultSummaryTopN
	}
	if opts.MaxEndpoints <= 0 {
		opts.MaxEndpoints = DefaultMaxEndpoints
	}
	if opts.SignupPolicy == (DedupePolicy{}) {
		opts.SignupPolicy = DefaultSignupPolicy
	}
	if opts.OrderPolicy == (DedupePolicy{}) {
		opts.OrderPolicy = DefaultOrderPolicy
	}

	now := opts.Now()
	s := &Store{
		st: state{
			counters:     make(map[Name]float64),
			windows:      make(map[Name]float64),
			gauges:       make(map[Name]float64),
			sums:         make(map[Name]*Accumulator),
			statusCodes:  make(map[int]int64),
			endpoints:    make(map[string]int64),
			dbQueryTypes: make(map[QueryType]int64),
			lastRollover: now,
		},
		sessions:            newSessionSet(),
		signups:             newDedupe(opts.SignupPolicy),
		orders:              newDedupe(opts.OrderPolicy),
		factory:             newFactoryLog(opts.FactoryLogSize),
		sink:                opts.Sink,
		now:                 opts.Now,
		logger:              opts.Logger.With("component", "metrics"),
		system:              opts.System,
		started:             now,
		sessionTTL:          opts.SessionTTL,
		rolloverMinInterval: opts.RolloverMinInterval,
		slowQueryThreshold:  opts.SlowQueryThreshold,
		summaryTopN:         opts.SummaryTopN,
		maxEndpoints:        opts.MaxEndpoints,
	}
	for _, t := range QueryTypes {
		s.st.dbQueryTypes[t] = 0
	}
	return s
}

// SetSink replaces the out-of-band sample sink. A nil sink disables pushes.
func (s *Store) SetSink(sink Sink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sink = sink
}

// Increment adds amount to a monotonic counter and to its windowed twin,
// if it has one. Unknown names are counted under Unknown.
func (s *Store) Increment(name Name, amount float64) {
	defer s.recoverPanic("increment")
	s.mu.Lock()
	defer s.mu.Unlock()
	s.incLocked(name, amount)
}

// AddToSum adds one sample to the named accumulator. The sum and the count
// move together under the same lock.
func (s *Store) AddToSum(name Name, value float64) {
	defer s.recoverPanic("add to sum")
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sumLocked(name).add(value)
}

// SetGauge overwrites a gauge.
func (s *Store) SetGauge(name Name, value float64) {
	defer s.recoverPanic("set gauge")
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setGaugeLocked(name, value)
}

func (s *Store) incLocked(name Name, amount float64) {
	if _, ok := knownCounters[name]; !ok {
		name = Unknown
	}
	s.st.counters[name] += amount
	if _, ok := knownWindows[name]; ok {
		s.st.windows[name] += amount
	}
}

func (s *Store) sumLocked(name Name) *Accumulator {
	if _, ok := knownSums[name]; !ok {
		name = Unknown
	}
	acc, ok := s.st.sums[name]
	if !ok {
		acc = &Accumulator{}
		s.st.sums[name] = acc
	}
	return acc
}

func (s *Store) setGaugeLocked(name Name, value float64) {
	if _, ok := knownGauges[name]; !ok {
		name = Unknown
	}
	s.st.gauges[name] = value
}

// Snapshot is a point-in-time copy of the Store.
type Snapshot struct {
	Taken          time.Time
	Uptime         time.Duration
	Counters       map[Name]float64
	Windows        map[Name]float64
	Gauges         map[Name]float64
	Sums           map[Name]Accumulator
	StatusCodes    map[int]int64
	Endpoints      map[string]int64
	DBQueryTypes   map[QueryType]int64
	ActiveSessions int
	Factory        FactorySummary
	LastRollover   time.Time
}

// Counter returns a counter value, 0 if never touched.
func (sn Snapshot) Counter(n Name) float64 { return sn.Counters[n] }

// Gauge returns a gauge value, 0 if never set.
func (sn Snapshot) Gauge(n Name) float64 { return sn.Gauges[n] }

// Window returns the current windowed count for n.
func (sn Snapshot) Window(n Name) float64 { return sn.Windows[n] }

// Sum returns an accumulator, zero if never touched.
func (sn Snapshot) Sum(n Name) Accumulator { return sn.Sums[n] }

// Snapshot returns an internally consistent copy of the Store.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	now := s.now()
	sn := Snapshot{
		Taken:          now,
		Uptime:         now.Sub(s.started),
		Counters:       make(map[Name]float64, len(s.st.counters)),
		Windows:        make(map[Name]float64, len(s.st.windows)),
		Gauges:         make(map[Name]float64, len(s.st.gauges)),
		Sums:           make(map[Name]Accumulator, len(s.st.sums)),
		StatusCodes:    make(map[int]int64, len(s.st.statusCodes)),
		Endpoints:      make(map[string]int64, len(s.st.endpoints)),
		DBQueryTypes:   make(map[QueryType]int64, len(s.st.dbQueryTypes)),
		ActiveSessions: s.sessions.len(),
		Factory:        s.factory.summary(),
		LastRollover:   s.st.lastRollover,
	}
	for k, v := range s.st.counters {
		sn.Counters[k] = v
	}
	for k, v := range s.st.windows {
		sn.Windows[k] = v
	}
	for k, v := range s.st.gauges {
		sn.Gauges[k] = v
	}
	for k, v := range s.st.sums {
		sn.Sums[k] = *v
	}
	for k, v := range s.st.statusCodes {
		sn.StatusCodes[k] = v
	}
	for k, v := range s.st.endpoints {
		sn.Endpoints[k] = v
	}
	for k, v := range s.st.dbQueryTypes {
		sn.DBQueryTypes[k] = v
	}
	return sn
}

// emit delivers samples to the sink outside the lock.
func (s *Store) emit(samples []Sample) {
	if len(samples) == 0 {
		return
	}
	s.mu.Lock()
	sink := s.sink
	s.mu.Unlock()
	if sink == nil {
		return
	}
	for _, sample := range samples {
		sink.Push(sample)
	}
}

// recoverPanic keeps instrumentation failures out of the calling request.
// It must be deferred before the lock is taken so the unlock runs first.
func (s *Store) recoverPanic(op string) {
	if r := recover(); r != nil {
		s.logger.Error("metrics instrumentation failed", "op", op, "panic", r)
	}
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func round8(v float64) float64 {
	return math.Round(v*1e8) / 1e8
}
