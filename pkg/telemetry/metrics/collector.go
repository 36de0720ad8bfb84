package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// DefaultNamespace prefixes every exported Prometheus series.
const DefaultNamespace = "pizzeria"

// Exporter exposes a Store to Prometheus. Every scrape takes one Snapshot
// and renders it as const metrics, so a scrape sees the same consistent
// view as the summary endpoint.
type Exporter struct {
	store *Store

	counters map[Name]*prometheus.Desc
	gauges   map[Name]*prometheus.Desc
	sums     map[Name]accumulatorDescs

	statusCodes   *prometheus.Desc
	endpoints     *prometheus.Desc
	queryTypes    *prometheus.Desc
	sessions      *prometheus.Desc
	factoryCalls  *prometheus.Desc
	factoryErrors *prometheus.Desc
	uptime        *prometheus.Desc
}

type accumulatorDescs struct {
	summary  *prometheus.Desc
	min, max *prometheus.Desc
}

// NewExporter creates an Exporter for store. An empty namespace uses
// DefaultNamespace.
func NewExporter(store *Store, namespace string) *Exporter {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	e := &Exporter{
		store:    store,
		counters: make(map[Name]*prometheus.Desc, len(knownCounters)),
		gauges:   make(map[Name]*prometheus.Desc, len(knownGauges)),
		sums:     make(map[Name]accumulatorDescs, len(knownSums)),
	}
	for n := range knownCounters {
		e.counters[n] = prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", string(n)+"_total"),
			"Total "+string(n)+" recorded since start.", nil, nil)
	}
	for n := range knownGauges {
		e.gauges[n] = prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", string(n)),
			"Current value of "+string(n)+".", nil, nil)
	}
	for n := range knownSums {
		e.sums[n] = accumulatorDescs{
			summary: prometheus.NewDesc(
				prometheus.BuildFQName(namespace, "", string(n)+"_seconds"),
				"Accumulated "+string(n)+".", nil, nil),
			min: prometheus.NewDesc(
				prometheus.BuildFQName(namespace, "", string(n)+"_min_seconds"),
				"Smallest "+string(n)+" sample.", nil, nil),
			max: prometheus.NewDesc(
				prometheus.BuildFQName(namespace, "", string(n)+"_max_seconds"),
				"Largest "+string(n)+" sample.", nil, nil),
		}
	}
	e.statusCodes = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "http", "responses_total"),
		"Responses by status code.", []string{"code"}, nil)
	e.endpoints = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "http", "endpoint_hits_total"),
		"Requests by method and path.", []string{"endpoint"}, nil)
	e.queryTypes = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "db", "queries_by_type_total"),
		"Database queries by statement type.", []string{"type"}, nil)
	e.sessions = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "tracked_sessions"),
		"Sessions currently held by the activity tracker.", nil, nil)
	e.factoryCalls = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "factory", "requests_total"),
		"Fulfillment API calls by endpoint and outcome.", []string{"endpoint", "outcome"}, nil)
	e.factoryErrors = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "factory", "errors_total"),
		"Fulfillment API errors by endpoint and status.", []string{"endpoint"}, nil)
	e.uptime = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "uptime_seconds"),
		"Seconds since the metrics store was created.", nil, nil)
	return e
}

// Describe implements prometheus.Collector.
func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range e.counters {
		ch <- d
	}
	for _, d := range e.gauges {
		ch <- d
	}
	for _, d := range e.sums {
		ch <- d.summary
		ch <- d.min
		ch <- d.max
	}
	ch <- e.statusCodes
	ch <- e.endpoints
	ch <- e.queryTypes
	ch <- e.sessions
	ch <- e.factoryCalls
	ch <- e.factoryErrors
	ch <- e.uptime
}

// Collect implements prometheus.Collector.
func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	sn := e.store.Snapshot()

	for n, d := range e.counters {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, sn.Counter(n))
	}
	for n, d := range e.gauges {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, sn.Gauge(n))
	}
	// Accumulators hold milliseconds; Prometheus gets seconds.
	for n, d := range e.sums {
		acc := sn.Sum(n)
		ch <- prometheus.MustNewConstSummary(d.summary, uint64(acc.Count), acc.Sum/1000, nil)
		ch <- prometheus.MustNewConstMetric(d.min, prometheus.GaugeValue, acc.Min/1000)
		ch <- prometheus.MustNewConstMetric(d.max, prometheus.GaugeValue, acc.Max/1000)
	}
	for code, v := range sn.StatusCodes {
		ch <- prometheus.MustNewConstMetric(e.statusCodes, prometheus.CounterValue, float64(v), strconv.Itoa(code))
	}
	for ep, v := range sn.Endpoints {
		ch <- prometheus.MustNewConstMetric(e.endpoints, prometheus.CounterValue, float64(v), ep)
	}
	for t, v := range sn.DBQueryTypes {
		ch <- prometheus.MustNewConstMetric(e.queryTypes, prometheus.CounterValue, float64(v), string(t))
	}
	for ep, st := range sn.Factory.Endpoints {
		ch <- prometheus.MustNewConstMetric(e.factoryCalls, prometheus.CounterValue, float64(st.Success), ep, "success")
		ch <- prometheus.MustNewConstMetric(e.factoryCalls, prometheus.CounterValue, float64(st.Failure), ep, "failure")
	}
	for k, v := range sn.Factory.ErrorsByStatus {
		ch <- prometheus.MustNewConstMetric(e.factoryErrors, prometheus.CounterValue, float64(v), k)
	}
	ch <- prometheus.MustNewConstMetric(e.sessions, prometheus.GaugeValue, float64(sn.ActiveSessions))
	ch <- prometheus.MustNewConstMetric(e.uptime, prometheus.GaugeValue, sn.Uptime.Seconds())
}

// NewRegistry returns a registry holding an Exporter for store along with
// the Go runtime and process collectors.
func NewRegistry(store *Store, namespace string) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(NewExporter(store, namespace))
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}
