package tracing

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/propagation"
)

// propagator carries W3C traceparent/tracestate and baggage. It is used for
// inbound and outbound requests regardless of the global propagator.
var propagator = propagation.NewCompositeTextMapPropagator(
	propagation.TraceContext{},
	propagation.Baggage{},
)

// Propagator returns the W3C trace context propagator.
func Propagator() propagation.TextMapPropagator {
	return propagator
}

// Extract returns ctx carrying the remote span context found in headers,
// or ctx unchanged when there is none.
func Extract(ctx context.Context, headers http.Header) context.Context {
	return propagator.Extract(ctx, propagation.HeaderCarrier(headers))
}

// Inject writes the span context in ctx into outbound headers.
func Inject(ctx context.Context, headers http.Header) {
	propagator.Inject(ctx, propagation.HeaderCarrier(headers))
}
