// Package metrics is the in-process metrics engine of the pizzeria service.
//
// # Overview
//
// A single Store holds every counter, gauge, windowed counter and latency
// accumulator for the process. It is created once at startup with
// NewStore and handed to each collaborator: the HTTP middleware, the
// domain recorders, the data-access wrapper, the factory client and the
// reporter that flushes it.
//
// # Recording
//
//	store := metrics.NewStore(metrics.Options{})
//
//	store.BeginRequest("POST", "/api/order", r.Header.Get("Authorization"))
//	store.EndRequest(http.StatusOK, time.Since(start))
//
//	store.RecordAuthAttempt(true)
//	store.RecordUserSignup("a@x.com")
//	store.RecordPizzaSale(items, true, 150*time.Millisecond, metrics.StageLatencies{})
//	store.TrackDBQuery(12*time.Millisecond, true, metrics.QuerySelect)
//
// Recorders never return errors and never panic into the caller. A
// failure inside a recorder is logged and dropped.
//
// # Rates
//
// Counters that feed a per-minute gauge also increment a windowed twin.
// Roll scales each window by 60000/elapsedMs into its gauge and zeroes the
// window. Calls closer together than five seconds are ignored.
//
// # Reading
//
// Snapshot returns a consistent copy of the store. BuildSummary renders it
// for the health metrics endpoint, ExportSamples produces the per-tick
// flush payload and Exporter serves it to Prometheus.
package metrics
