// Pizzeria is the JWT Pizza service backend.
//
// It serves the pizza ordering API and keeps in-process metrics about
// every request, login, signup, order, database query and factory call:
//   - A JSON summary at /api/health/metrics
//   - A Prometheus scrape endpoint at /metrics
//   - Periodic OTLP/HTTP pushes to a metrics collector
//
// Usage:
//
//	# Start the server with the default configuration file
//	pizzeria serve
//
//	# Start with a custom configuration file
//	pizzeria serve --config /etc/pizzeria/config.yaml
//
//	# Check a configuration file without starting anything
//	pizzeria validate --config config.yaml
//
//	# Show version information
//	pizzeria version
package main

func main() {
	Execute()
}
