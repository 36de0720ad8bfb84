package middleware

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"pizza-hq/pizzeria/pkg/telemetry/logging"
	"pizza-hq/pizzeria/pkg/telemetry/tracing"
)

// TraceIDHeader echoes the trace ID of a recorded request.
const TraceIDHeader = "X-Trace-ID"

// TracingMiddleware opens a server span per request, continuing any
// traceparent the caller sent. 5xx responses mark the span failed. It must
// run inside RequestIDMiddleware so the span carries the request ID.
func TracingMiddleware(tracer *tracing.Tracer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !tracer.Enabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := tracing.Extract(r.Context(), r.Header)
			ctx, span := tracer.Start(ctx, "HTTP "+r.Method+" "+r.URL.Path, trace.WithSpanKind(trace.SpanKindServer))
			defer span.End()

			if id := logging.GetRequestID(ctx); id != "" {
				span.SetAttributes(attribute.String(tracing.AttrRequestID, id))
			}
			if sc := span.SpanContext(); sc.IsValid() {
				w.Header().Set(TraceIDHeader, sc.TraceID().String())
			}

			wrapped := newResponseWriter(w)
			next.ServeHTTP(wrapped, r.WithContext(ctx))

			tracing.SetHTTPAttributes(span, r.Method, r.URL.Path, wrapped.statusCode)
			if wrapped.statusCode >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(wrapped.statusCode))
			}
		})
	}
}
