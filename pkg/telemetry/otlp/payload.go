// Package otlp pushes individual metric samples to an OTLP/HTTP JSON
// collector endpoint.
package otlp

import (
	"math"
	"time"

	"pizza-hq/pizzeria/pkg/telemetry/metrics"
)

// AggregationTemporalityCumulative marks a sum as a running total.
const AggregationTemporalityCumulative = "AGGREGATION_TEMPORALITY_CUMULATIVE"

// Payload is the request body for a single metric push.
type Payload struct {
	ResourceMetrics []ResourceMetrics `json:"resourceMetrics"`
}

// ResourceMetrics groups the metrics of one resource.
type ResourceMetrics struct {
	Resource     Resource       `json:"resource"`
	ScopeMetrics []ScopeMetrics `json:"scopeMetrics"`
}

// Resource identifies the emitting service.
type Resource struct {
	Attributes []Attribute `json:"attributes"`
}

// Attribute is a key with a string value.
type Attribute struct {
	Key   string         `json:"key"`
	Value AttributeValue `json:"value"`
}

// AttributeValue carries the string form of an attribute.
type AttributeValue struct {
	StringValue string `json:"stringValue"`
}

// ScopeMetrics lists the metrics of one instrumentation scope.
type ScopeMetrics struct {
	Metrics []Metric `json:"metrics"`
}

// Metric carries exactly one of Gauge or Sum.
type Metric struct {
	Name  string `json:"name"`
	Unit  string `json:"unit"`
	Gauge *Gauge `json:"gauge,omitempty"`
	Sum   *Sum   `json:"sum,omitempty"`
}

// Gauge holds point-in-time values.
type Gauge struct {
	DataPoints []DataPoint `json:"dataPoints"`
}

// Sum holds running totals.
type Sum struct {
	DataPoints             []DataPoint `json:"dataPoints"`
	AggregationTemporality string      `json:"aggregationTemporality"`
	IsMonotonic            bool        `json:"isMonotonic"`
}

// DataPoint holds either AsInt or AsDouble.
type DataPoint struct {
	AsInt        *int64   `json:"asInt,omitempty"`
	AsDouble     *float64 `json:"asDouble,omitempty"`
	TimeUnixNano int64    `json:"timeUnixNano"`
}

// NewDataPoint encodes whole numbers as asInt and everything else as
// asDouble.
func NewDataPoint(v float64, at time.Time) DataPoint {
	dp := DataPoint{TimeUnixNano: at.UnixNano()}
	if v == math.Trunc(v) && math.Abs(v) < math.MaxInt64 {
		i := int64(v)
		dp.AsInt = &i
	} else {
		d := v
		dp.AsDouble = &d
	}
	return dp
}

// BuildPayload wraps one sample in the collector envelope. Sum samples are
// marked cumulative and monotonic.
func BuildPayload(source string, s metrics.Sample, at time.Time) Payload {
	m := Metric{Name: s.Name, Unit: s.Unit}
	points := []DataPoint{NewDataPoint(s.Value, at)}
	if s.Kind == metrics.KindSum {
		m.Sum = &Sum{
			DataPoints:             points,
			AggregationTemporality: AggregationTemporalityCumulative,
			IsMonotonic:            true,
		}
	} else {
		m.Gauge = &Gauge{DataPoints: points}
	}

	return Payload{ResourceMetrics: []ResourceMetrics{{
		Resource: Resource{Attributes: []Attribute{{
			Key:   "service.name",
			Value: AttributeValue{StringValue: source},
		}}},
		ScopeMetrics: []ScopeMetrics{{Metrics: []Metric{m}}},
	}}}
}
