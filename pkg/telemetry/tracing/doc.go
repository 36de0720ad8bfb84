// Package tracing provides OpenTelemetry tracing for the pizzeria API.
//
// Spans are exported over OTLP gRPC when tracing is enabled and discarded by
// a noop tracer otherwise. Trace context crosses process boundaries in W3C
// traceparent headers: inbound requests are extracted by the tracing
// middleware and outbound factory calls are injected by the factory client.
//
// # Spans
//
//	HTTP <METHOD> <path>   one server span per request
//	order.preparation      menu validation
//	order.payment          order persistence
//	order.baking           factory call (parent of the factory client span)
//	factory <METHOD>       outbound call to the fulfillment API
//
// # Configuration
//
//	tracing:
//	  enabled: true
//	  endpoint: localhost:4317
//	  insecure: true
//	  sampler: ratio
//	  sample_ratio: 0.1
//
// All samplers are parent based: a request arriving with a sampled
// traceparent is traced regardless of the local ratio.
package tracing
