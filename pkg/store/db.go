package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"pizza-hq/pizzeria/pkg/telemetry/metrics"
)

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when a unique constraint would be violated.
	ErrDuplicate = errors.New("already exists")
)

// Tracker receives per-statement instrumentation.
type Tracker interface {
	TrackDBQuery(duration time.Duration, success bool, qt metrics.QueryType)
	TrackDBConnectionError()
}

type nopTracker struct{}

func (nopTracker) TrackDBQuery(time.Duration, bool, metrics.QueryType) {}
func (nopTracker) TrackDBConnectionError()                             {}

// Options configures the SQLite database.
type Options struct {
	// Path is the database file. Parent directories are created.
	Path string

	MaxOpenConns int
	MaxIdleConns int

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration

	// WALMode enables the write-ahead log.
	WALMode bool

	// SlowQueryThreshold is the duration above which statements are logged
	// at WARN. Default: 300ms
	SlowQueryThreshold time.Duration

	Tracker Tracker
	Logger  *slog.Logger
}

// DB is the pizzeria's relational store. Every statement goes through one
// instrumented path that classifies, times and reports it.
type DB struct {
	db      *sql.DB
	tracker Tracker
	logger  *slog.Logger
	slow    time.Duration
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open opens (creating if needed) the database, applies the schema and
// seeds the default menu. Failures to connect or initialise are reported to
// the tracker as connection errors.
func Open(ctx context.Context, opts Options) (*DB, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if opts.BusyTimeout <= 0 {
		opts.BusyTimeout = 5 * time.Second
	}
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 1
	}
	if opts.SlowQueryThreshold <= 0 {
		opts.SlowQueryThreshold = metrics.DefaultSlowQueryThreshold
	}
	if opts.Tracker == nil {
		opts.Tracker = nopTracker{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	d := &DB{
		tracker: opts.Tracker,
		logger:  opts.Logger.With("component", "store"),
		slow:    opts.SlowQueryThreshold,
	}

	if dir := filepath.Dir(opts.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			d.tracker.TrackDBConnectionError()
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn(opts))
	if err != nil {
		d.tracker.TrackDBConnectionError()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(0)
	d.db = db

	if err := db.PingContext(ctx); err != nil {
		d.tracker.TrackDBConnectionError()
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	start := time.Now()
	if err := d.initSchema(ctx); err != nil {
		d.tracker.TrackDBConnectionError()
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	d.logger.Info("database ready", "path", opts.Path, "wal", opts.WALMode, "duration_ms", time.Since(start).Milliseconds())
	return d, nil
}

func dsn(opts Options) string {
	var b strings.Builder
	b.WriteString("file:")
	b.WriteString(opts.Path)
	fmt.Fprintf(&b, "?_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)", opts.BusyTimeout.Milliseconds())
	if opts.WALMode {
		b.WriteString("&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)")
	}
	return b.String()
}

// Close releases the connection pool.
func (d *DB) Close() error {
	return d.db.Close()
}

// PoolStats reports the configured pool size, connections in use and the
// number of callers that have waited for a connection.
func (d *DB) PoolStats() (size, used, queue int) {
	s := d.db.Stats()
	return s.MaxOpenConnections, s.InUse, int(s.WaitCount)
}

// Ping checks that the database is reachable. A failure counts as a
// connection error.
func (d *DB) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		d.tracker.TrackDBConnectionError()
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

// ClassifyQuery returns the statement type from the first SQL keyword.
func ClassifyQuery(query string) metrics.QueryType {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return metrics.QueryUnknown
	}
	switch strings.ToLower(fields[0]) {
	case "select":
		return metrics.QuerySelect
	case "insert":
		return metrics.QueryInsert
	case "update":
		return metrics.QueryUpdate
	case "delete":
		return metrics.QueryDelete
	default:
		return metrics.QueryUnknown
	}
}

func (d *DB) observe(query string, start time.Time, err error) {
	elapsed := time.Since(start)
	d.tracker.TrackDBQuery(elapsed, err == nil, ClassifyQuery(query))
	if elapsed > d.slow {
		d.logger.Warn("slow query", "duration_ms", elapsed.Milliseconds(), "query", truncate(query, 100))
	}
}

func (d *DB) exec(ctx context.Context, q querier, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := q.ExecContext(ctx, query, args...)
	d.observe(query, start, err)
	return res, translate(err)
}

// query runs a multi-row statement and hands each row to scan.
func (d *DB) query(ctx context.Context, q querier, scan func(*sql.Rows) error, query string, args ...any) error {
	start := time.Now()
	err := func() error {
		rows, err := q.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			if err := scan(rows); err != nil {
				return err
			}
		}
		return rows.Err()
	}()
	d.observe(query, start, err)
	return translate(err)
}

// queryRow scans a single row. A missing row is a successful query that
// returns ErrNotFound.
func (d *DB) queryRow(ctx context.Context, q querier, dest []any, query string, args ...any) error {
	start := time.Now()
	err := q.QueryRowContext(ctx, query, args...).Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		d.observe(query, start, nil)
		return ErrNotFound
	}
	d.observe(query, start, err)
	return translate(err)
}

// tx runs fn in a transaction, rolling back on error.
func (d *DB) tx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		d.tracker.TrackDBConnectionError()
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch code := se.Code(); {
		case code == sqlite3.SQLITE_CONSTRAINT_UNIQUE, code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%w: %v", ErrDuplicate, err)
		case code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(se.Error(), "UNIQUE"):
			// primary result code only
			return fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
	}
	return err
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
