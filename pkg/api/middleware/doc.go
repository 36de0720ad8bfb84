// Package middleware provides the HTTP middleware chain for the pizzeria API.
//
// The chain, outermost first:
//
//	MetricsMiddleware   counts every request, including rejected ones
//	RequestIDMiddleware assigns X-Request-ID
//	TracingMiddleware   server span, continues inbound traceparent
//	LoggingMiddleware   one log line per request
//	RecoveryMiddleware  panic -> 500 {"message": ...}
//	CORSMiddleware      CORS headers and preflight
//	AuthMiddleware      bearer token -> claims on the context
//	TimeoutMiddleware   per-request deadline
package middleware
