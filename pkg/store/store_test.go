package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"pizza-hq/pizzeria/pkg/auth"
	"pizza-hq/pizzeria/pkg/telemetry/metrics"
)

type recordingTracker struct {
	mu         sync.Mutex
	queries    map[metrics.QueryType]int
	failures   int
	connErrors int
}

func (r *recordingTracker) TrackDBQuery(_ time.Duration, success bool, qt metrics.QueryType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.queries == nil {
		r.queries = map[metrics.QueryType]int{}
	}
	r.queries[qt]++
	if !success {
		r.failures++
	}
}

func (r *recordingTracker) TrackDBConnectionError() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connErrors++
}

func (r *recordingTracker) count(qt metrics.QueryType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queries[qt]
}

func newTestDB(t *testing.T) (*DB, *recordingTracker) {
	t.Helper()
	tracker := &recordingTracker{}
	db, err := Open(context.Background(), Options{
		Path:         filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 4,
		MaxIdleConns: 2,
		WALMode:      true,
		Tracker:      tracker,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, tracker
}

func TestClassifyQuery(t *testing.T) {
	tests := []struct {
		query string
		want  metrics.QueryType
	}{
		{"SELECT * FROM menu", metrics.QuerySelect},
		{"  select 1", metrics.QuerySelect},
		{"\n\tINSERT INTO x VALUES (1)", metrics.QueryInsert},
		{"Update users SET name = ?", metrics.QueryUpdate},
		{"DELETE FROM stores", metrics.QueryDelete},
		{"CREATE TABLE t (id INTEGER)", metrics.QueryUnknown},
		{"", metrics.QueryUnknown},
	}
	for _, tt := range tests {
		if got := ClassifyQuery(tt.query); got != tt.want {
			t.Errorf("ClassifyQuery(%q) = %s, want %s", tt.query, got, tt.want)
		}
	}
}

func TestOpen_SeedsMenu(t *testing.T) {
	db, tracker := newTestDB(t)

	menu, err := db.Menu(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(menu) != len(defaultMenu) {
		t.Fatalf("menu has %d items, want %d", len(menu), len(defaultMenu))
	}
	if menu[0].Title != "Veggie" || menu[0].Price != 0.0038 {
		t.Errorf("first item = %+v", menu[0])
	}
	if tracker.count(metrics.QueryInsert) < len(defaultMenu) {
		t.Errorf("seed inserts not tracked: %v", tracker.queries)
	}
	if tracker.count(metrics.QueryUnknown) == 0 {
		t.Error("schema statement not tracked as unknown")
	}
}

func TestOpen_Failure(t *testing.T) {
	tracker := &recordingTracker{}
	dir := t.TempDir()
	// A directory cannot be opened as a database file.
	_, err := Open(context.Background(), Options{Path: dir, Tracker: tracker})
	if err == nil {
		t.Fatal("Open() on a directory should fail")
	}
	if tracker.connErrors != 1 {
		t.Errorf("connection errors = %d, want 1", tracker.connErrors)
	}

	if _, err := Open(context.Background(), Options{}); err == nil {
		t.Error("empty path should fail")
	}
}

func TestUsers(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()

	u, err := db.AddUser(ctx, "Pat", " Pat@Example.com ", "hash")
	if err != nil {
		t.Fatalf("AddUser() error = %v", err)
	}
	if u.ID == 0 || u.Email != "pat@example.com" {
		t.Errorf("user = %+v", u)
	}

	if _, err := db.AddUser(ctx, "Other", "pat@example.com", "hash"); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate email error = %v, want ErrDuplicate", err)
	}

	got, err := db.GetUserByEmail(ctx, "PAT@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != u.ID || got.PasswordHash != "hash" {
		t.Errorf("GetUserByEmail() = %+v", got)
	}
	if id := got.Identity(); !id.HasRole(auth.RoleDiner) {
		t.Errorf("default role missing: %+v", id)
	}

	if _, err := db.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing user error = %v, want ErrNotFound", err)
	}
	if _, err := db.GetUser(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing id error = %v, want ErrNotFound", err)
	}
}

func TestEnsureAdmin(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()

	first, err := db.EnsureAdmin(ctx, "Admin", "admin@pizzeria.test", "hash")
	if err != nil {
		t.Fatal(err)
	}
	second, err := db.EnsureAdmin(ctx, "Admin", "admin@pizzeria.test", "other")
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != second.ID {
		t.Errorf("EnsureAdmin created a second account: %d vs %d", first.ID, second.ID)
	}
	if !second.Identity().HasRole(auth.RoleAdmin) {
		t.Error("admin role missing")
	}
}

func TestFranchisesAndStores(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()

	owner, err := db.AddUser(ctx, "Owner", "owner@example.com", "hash")
	if err != nil {
		t.Fatal(err)
	}

	f, err := db.CreateFranchise(ctx, "Slice Co", []string{"owner@example.com"})
	if err != nil {
		t.Fatalf("CreateFranchise() error = %v", err)
	}
	if _, err := db.CreateFranchise(ctx, "Slice Co", nil); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate franchise error = %v", err)
	}
	if _, err := db.CreateFranchise(ctx, "Ghost", []string{"ghost@example.com"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown admin error = %v", err)
	}

	isAdmin, err := db.IsFranchiseAdmin(ctx, owner.ID, f.ID)
	if err != nil || !isAdmin {
		t.Errorf("IsFranchiseAdmin() = %v, %v", isAdmin, err)
	}

	loc, err := db.CreateStore(ctx, f.ID, "Downtown")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.CreateStore(ctx, 999, "Nowhere"); !errors.Is(err, ErrNotFound) {
		t.Errorf("store in missing franchise error = %v", err)
	}

	list, err := db.Franchises(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || len(list[0].Stores) != 1 || list[0].Stores[0].Name != "Downtown" {
		t.Fatalf("Franchises() = %+v", list)
	}
	if len(list[0].Admins) != 1 || list[0].Admins[0] != owner.ID {
		t.Errorf("admins = %v", list[0].Admins)
	}

	if err := db.DeleteStore(ctx, f.ID, loc.ID); err != nil {
		t.Fatal(err)
	}
	if err := db.DeleteStore(ctx, f.ID, loc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteStore() = %v", err)
	}
	if err := db.DeleteFranchise(ctx, f.ID); err != nil {
		t.Fatal(err)
	}
	if err := db.DeleteFranchise(ctx, f.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteFranchise() = %v", err)
	}
	if isAdmin, _ := db.IsFranchiseAdmin(ctx, owner.ID, f.ID); isAdmin {
		t.Error("franchisee grant survived franchise deletion")
	}
}

func TestOrders(t *testing.T) {
	db, tracker := newTestDB(t)
	ctx := context.Background()

	diner, _ := db.AddUser(ctx, "Diner", "diner@example.com", "hash")
	f, _ := db.CreateFranchise(ctx, "Pie Place", nil)
	loc, _ := db.CreateStore(ctx, f.ID, "North")

	items := []OrderItem{
		{MenuID: 1, Description: "Veggie", Price: 0.0038},
		{MenuID: 2, Description: "Pepperoni", Price: 0.0042},
	}
	order, err := db.CreateOrder(ctx, diner.ID, f.ID, loc.ID, items)
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}
	if order.ID == "" || order.Total() != 0.0038+0.0042 {
		t.Errorf("order = %+v", order)
	}

	if _, err := db.CreateOrder(ctx, diner.ID, f.ID, 999, items); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown store error = %v", err)
	}
	if _, err := db.CreateOrder(ctx, diner.ID, f.ID, loc.ID, []OrderItem{{MenuID: 999}}); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown menu item error = %v", err)
	}
	if _, err := db.CreateOrder(ctx, diner.ID, f.ID, loc.ID, nil); err == nil {
		t.Error("empty order should fail")
	}

	orders, err := db.Orders(ctx, diner.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 1 || len(orders[0].Items) != 2 || orders[0].ID != order.ID {
		t.Fatalf("Orders() = %+v", orders)
	}
	if tracker.failures != 0 {
		t.Errorf("failed queries = %d, want 0", tracker.failures)
	}

	others, err := db.Orders(ctx, 12345)
	if err != nil || len(others) != 0 {
		t.Errorf("Orders(unknown) = %v, %v", others, err)
	}
}

func TestPoolStats(t *testing.T) {
	db, _ := newTestDB(t)
	size, used, queue := db.PoolStats()
	if size != 4 || used != 0 || queue < 0 {
		t.Errorf("PoolStats() = %d, %d, %d", size, used, queue)
	}
}

func TestInstrumentedFailure(t *testing.T) {
	db, tracker := newTestDB(t)
	err := db.query(context.Background(), db.db, nil, "SELECT * FROM no_such_table")
	if err == nil {
		t.Fatal("query on missing table should fail")
	}
	if tracker.failures != 1 || tracker.count(metrics.QuerySelect) == 0 {
		t.Errorf("failure not tracked: failures=%d", tracker.failures)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("SELECT\n\t  1", 100); got != "SELECT 1" {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("abcdef", 3); got != "abc..." {
		t.Errorf("truncate() = %q", got)
	}
}

func TestPing(t *testing.T) {
	db, tracker := newTestDB(t)
	if err := db.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	db.Close()
	if err := db.Ping(context.Background()); err == nil {
		t.Fatal("Ping() on a closed database returned nil")
	}
	if tracker.connErrors != 1 {
		t.Errorf("connection errors = %d, want 1", tracker.connErrors)
	}
}
