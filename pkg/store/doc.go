// Package store persists users, the menu, franchises and orders in SQLite
// (modernc.org/sqlite, no cgo).
//
// Every statement is timed and classified by its leading keyword and
// reported through a Tracker, normally the metrics Store:
//
//	db, err := store.Open(ctx, store.Options{
//	    Path:    "data/pizzeria.db",
//	    WALMode: true,
//	    Tracker: metricsStore,
//	})
//
// Lookups that find nothing return ErrNotFound; unique constraint
// violations return ErrDuplicate. Both are matched with errors.Is.
package store
