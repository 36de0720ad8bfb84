// Package telemetry groups the pizzeria's observability packages.
//
//   - logging: slog construction, request context attributes and redaction
//   - metrics: the in-process counter store, summary and Prometheus exporter
//   - reporter: the periodic rollover and flush loop
//   - otlp: the OTLP/HTTP JSON collector publisher
//   - health: readiness checks for the database and integrations
//   - tracing: OpenTelemetry spans for requests, order stages and factory calls
package telemetry
