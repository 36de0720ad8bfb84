package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"pizza-hq/pizzeria/pkg/auth"
	"pizza-hq/pizzeria/pkg/config"
	"pizza-hq/pizzeria/pkg/factory"
	"pizza-hq/pizzeria/pkg/store"
	"pizza-hq/pizzeria/pkg/telemetry/health"
	"pizza-hq/pizzeria/pkg/telemetry/metrics"
	"pizza-hq/pizzeria/pkg/telemetry/tracing"
)

func init() {
	auth.PasswordCost = 4
}

type fixedSampler struct{}

func (fixedSampler) SampleSystem() (float64, float64, error) { return 12.5, 40, nil }

// steppingClock advances one millisecond per reading so that consecutive
// orders never share a dedupe key.
type steppingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

type testEnv struct {
	handler       http.Handler
	db            *store.DB
	metrics       *metrics.Store
	issuer        *auth.Issuer
	spans         *tracetest.SpanRecorder
	factoryStatus atomic.Int32
	factoryCalls  atomic.Int32
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env := &testEnv{}
	env.factoryStatus.Store(http.StatusOK)

	clock := &steppingClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	env.metrics = metrics.NewStore(metrics.Options{Now: clock.Now, Logger: logger, System: fixedSampler{}})

	db, err := store.Open(ctx, store.Options{
		Path:    filepath.Join(t.TempDir(), "pizza.db"),
		Tracker: env.metrics,
		Logger:  logger,
	})
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	env.db = db

	fs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.factoryCalls.Add(1)
		status := int(env.factoryStatus.Load())
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"message":"oven on fire"}`))
			return
		}
		_, _ = w.Write([]byte(`{"jwt":"factory-jwt","reportUrl":"https://factory.example/report/1"}`))
	}))
	t.Cleanup(fs.Close)

	env.issuer = auth.NewIssuer(config.AuthConfig{JWTSecret: "test-secret-0123456789"})
	env.spans = tracetest.NewSpanRecorder()
	tracer := tracing.NewWithProcessor("pizzeria", "test", env.spans)
	fc := factory.New(config.FactoryConfig{URL: fs.URL, APIKey: "factory-key", Timeout: 5 * time.Second}, env.metrics,
		factory.WithLogger(logger), factory.WithTracer(tracer))

	checker := health.New(time.Second)
	checker.RegisterCheck("database", db.Ping)

	srv := NewServer(config.Defaults().Server, Deps{
		Health:   checker,
		Tracer:   tracer,
		DB:       db,
		Issuer:   env.issuer,
		Factory:  fc,
		Metrics:  env.metrics,
		Registry: metrics.NewRegistry(env.metrics, ""),
		Version:  "20260301.120000",
		Logger:   logger,
	})
	env.handler = srv.Handler()
	return env
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

type message struct {
	Message string `json:"message"`
}

// register creates a diner through the API and returns its token.
func (e *testEnv) register(t *testing.T, name, email string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/auth", "", map[string]string{"name": name, "email": email, "password": "diner"})
	if rec.Code != http.StatusOK {
		t.Fatalf("register status = %d, body %s", rec.Code, rec.Body.String())
	}
	return decode[authResponse](t, rec).Token
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	hash, err := auth.HashPassword("admin")
	if err != nil {
		t.Fatal(err)
	}
	u, err := e.db.EnsureAdmin(context.Background(), "常用名字", "a@jwt.com", hash)
	if err != nil {
		t.Fatalf("EnsureAdmin() error = %v", err)
	}
	token, err := e.issuer.Issue(u.Identity())
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func (e *testEnv) newStore(t *testing.T) (int64, int64) {
	t.Helper()
	ctx := context.Background()
	f, err := e.db.CreateFranchise(ctx, "pizzaPocket", nil)
	if err != nil {
		t.Fatalf("CreateFranchise() error = %v", err)
	}
	loc, err := e.db.CreateStore(ctx, f.ID, "SLC")
	if err != nil {
		t.Fatalf("CreateStore() error = %v", err)
	}
	return f.ID, loc.ID
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	token := env.register(t, "pizza diner", "d@jwt.com")
	if token == "" {
		t.Fatal("register returned no token")
	}

	rec := env.do(t, http.MethodPost, "/api/auth", "", map[string]string{"name": "again", "email": "D@jwt.com", "password": "x"})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate register status = %d, want 409", rec.Code)
	}
	rec = env.do(t, http.MethodPost, "/api/auth", "", map[string]string{"email": "e@jwt.com"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("incomplete register status = %d, want 400", rec.Code)
	}

	rec = env.do(t, http.MethodPut, "/api/auth", "", map[string]string{"email": "d@jwt.com", "password": "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad login status = %d, want 401", rec.Code)
	}
	if got := decode[message](t, rec).Message; got != "invalid credentials" {
		t.Errorf("bad login message = %q", got)
	}
	rec = env.do(t, http.MethodPut, "/api/auth", "", map[string]string{"email": "nobody@jwt.com", "password": "diner"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unknown user login status = %d, want 401", rec.Code)
	}
	rec = env.do(t, http.MethodPut, "/api/auth", "", map[string]string{"email": "d@jwt.com", "password": "diner"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}
	resp := decode[authResponse](t, rec)
	if resp.User == nil || resp.User.Email != "d@jwt.com" || resp.Token == "" {
		t.Errorf("login response = %+v", resp)
	}
	if strings.Contains(rec.Body.String(), "$2a$") {
		t.Error("login response leaked the password hash")
	}

	sn := env.metrics.Snapshot()
	if got := sn.Counter(metrics.UserSignups); got != 1 {
		t.Errorf("user_signups = %v, want 1", got)
	}
	if got := sn.Counter(metrics.AuthAttempts); got != 3 {
		t.Errorf("auth_attempts = %v, want 3", got)
	}
	if got := sn.Counter(metrics.AuthSuccess); got != 1 {
		t.Errorf("auth_success = %v, want 1", got)
	}
	if got := sn.Counter(metrics.AuthFailure); got != 2 {
		t.Errorf("auth_failure = %v, want 2", got)
	}
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "pizza diner", "d@jwt.com")

	if rec := env.do(t, http.MethodDelete, "/api/auth", "", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous logout status = %d, want 401", rec.Code)
	}
	rec := env.do(t, http.MethodDelete, "/api/auth", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := decode[message](t, rec).Message; got != "logout successful" {
		t.Errorf("logout message = %q", got)
	}
	if rec := env.do(t, http.MethodGet, "/api/order", token, nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("revoked token status = %d, want 401", rec.Code)
	}
}

func TestMenu(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/order/menu", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("menu status = %d", rec.Code)
	}
	if items := decode[[]store.MenuItem](t, rec); len(items) != 5 {
		t.Errorf("menu has %d items, want 5", len(items))
	}

	item := store.MenuItem{Title: "Student", Description: "No topping, no sauce, just carbs", Image: "pizza9.png", Price: 0.0001}
	diner := env.register(t, "pizza diner", "d@jwt.com")
	if rec := env.do(t, http.MethodPut, "/api/order/menu", diner, item); rec.Code != http.StatusForbidden {
		t.Errorf("diner add menu status = %d, want 403", rec.Code)
	}
	rec = env.do(t, http.MethodPut, "/api/order/menu", env.adminToken(t), item)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin add menu status = %d, body %s", rec.Code, rec.Body.String())
	}
	if items := decode[[]store.MenuItem](t, rec); len(items) != 6 {
		t.Errorf("menu has %d items after add, want 6", len(items))
	}
}

func TestCreateOrder_Traced(t *testing.T) {
	env := newTestEnv(t)
	franchiseID, storeID := env.newStore(t)
	token := env.register(t, "pizza diner", "d@jwt.com")

	body := map[string]any{
		"franchiseId": franchiseID,
		"storeId":     storeID,
		"items":       []map[string]any{{"menuId": 1, "description": "Veggie", "price": 0.05}},
	}
	rec := env.do(t, http.MethodPost, "/api/order", token, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("order status = %d, body %s", rec.Code, rec.Body.String())
	}
	traceID := rec.Header().Get("X-Trace-ID")
	if traceID == "" {
		t.Fatal("X-Trace-ID not set")
	}

	var names []string
	for _, s := range env.spans.Ended() {
		if s.SpanContext().TraceID().String() == traceID {
			names = append(names, s.Name())
		}
	}
	want := []string{"order.preparation", "order.payment", "factory POST", "order.baking", "order.packaging", "HTTP POST /api/order"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("spans = %v, want %v", names, want)
	}
}

func TestCreateOrder(t *testing.T) {
	env := newTestEnv(t)
	franchiseID, storeID := env.newStore(t)
	token := env.register(t, "pizza diner", "d@jwt.com")

	body := map[string]any{
		"franchiseId": franchiseID,
		"storeId":     storeID,
		"items": []map[string]any{
			{"menuId": 1, "description": "Veggie", "price": 0.05},
			{"menuId": 2, "description": "Pepperoni", "price": 0.0042},
		},
	}
	rec := env.do(t, http.MethodPost, "/api/order", token, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("order status = %d, body %s", rec.Code, rec.Body.String())
	}
	resp := decode[createOrderResponse](t, rec)
	if resp.JWT != "factory-jwt" || resp.Order == nil || len(resp.Order.Items) != 2 {
		t.Errorf("order response = %+v", resp)
	}

	sn := env.metrics.Snapshot()
	if got := sn.Counter(metrics.PizzaSales); got != 2 {
		t.Errorf("pizza_sales = %v, want 2", got)
	}
	if got := sn.Counter(metrics.PizzaRevenue); got < 0.0541 || got > 0.0543 {
		t.Errorf("pizza_revenue = %v, want 0.0542", got)
	}
	if got := sn.Gauge(metrics.TotalPizzasLastOrder); got != 2 {
		t.Errorf("total_pizzas_last_order = %v, want 2", got)
	}
	if got := sn.Sum(metrics.PizzaLatency).Count; got != 1 {
		t.Errorf("pizza latency samples = %d, want 1", got)
	}
	if sn.Factory.TotalRequests != 1 || sn.Factory.TotalErrors != 0 {
		t.Errorf("factory summary = %+v", sn.Factory)
	}

	rec = env.do(t, http.MethodGet, "/api/order", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list orders status = %d", rec.Code)
	}
	list := decode[struct {
		Orders []store.Order `json:"orders"`
	}](t, rec)
	if len(list.Orders) != 1 || list.Orders[0].ID != resp.Order.ID {
		t.Errorf("orders = %+v", list.Orders)
	}
}

func TestCreateOrder_Failures(t *testing.T) {
	tests := []struct {
		name          string
		factoryStatus int
		items         []map[string]any
		wantStatus    int
		wantMessage   string
		wantFactory   int32
	}{
		{
			name:          "factory rejects",
			factoryStatus: http.StatusInternalServerError,
			items:         []map[string]any{{"menuId": 1, "description": "Veggie", "price": 0.0038}},
			wantStatus:    http.StatusInternalServerError,
			wantMessage:   "Failed to fulfill order at factory",
			wantFactory:   1,
		},
		{
			name:          "unknown menu item",
			factoryStatus: http.StatusOK,
			items:         []map[string]any{{"menuId": 999, "description": "Mystery", "price": 1}},
			wantStatus:    http.StatusBadRequest,
			wantMessage:   "unknown menu item",
		},
		{
			name:          "no items",
			factoryStatus: http.StatusOK,
			items:         []map[string]any{},
			wantStatus:    http.StatusBadRequest,
			wantMessage:   "order must contain at least one item",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.factoryStatus.Store(int32(tt.factoryStatus))
			franchiseID, storeID := env.newStore(t)
			token := env.register(t, "pizza diner", "d@jwt.com")

			rec := env.do(t, http.MethodPost, "/api/order", token, map[string]any{
				"franchiseId": franchiseID, "storeId": storeID, "items": tt.items,
			})
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if got := decode[message](t, rec).Message; got != tt.wantMessage {
				t.Errorf("message = %q, want %q", got, tt.wantMessage)
			}
			if got := env.factoryCalls.Load(); got != tt.wantFactory {
				t.Errorf("factory calls = %d, want %d", got, tt.wantFactory)
			}

			sn := env.metrics.Snapshot()
			if got := sn.Counter(metrics.PizzaFailures); got != 1 {
				t.Errorf("pizza_sales_failures = %v, want 1", got)
			}
			if got := sn.Counter(metrics.PizzaSales); got != 0 {
				t.Errorf("pizza_sales = %v, want 0", got)
			}
		})
	}
}

func TestCreateOrder_Unauthenticated(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/order", "", map[string]any{"items": []any{}})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if got := env.metrics.Snapshot().Counter(metrics.PizzaFailures); got != 0 {
		t.Errorf("pizza_sales_failures = %v, want 0", got)
	}
}

func TestFranchises(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken(t)
	diner := env.register(t, "franchise owner", "f@jwt.com")
	other := env.register(t, "someone else", "o@jwt.com")

	body := map[string]any{"name": "pizzaPocket", "admins": []map[string]string{{"email": "f@jwt.com"}}}
	if rec := env.do(t, http.MethodPost, "/api/franchise", diner, body); rec.Code != http.StatusForbidden {
		t.Errorf("diner create franchise status = %d, want 403", rec.Code)
	}
	rec := env.do(t, http.MethodPost, "/api/franchise", admin, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("create franchise status = %d, body %s", rec.Code, rec.Body.String())
	}
	f := decode[store.Franchise](t, rec)
	if rec := env.do(t, http.MethodPost, "/api/franchise", admin, body); rec.Code != http.StatusConflict {
		t.Errorf("duplicate franchise status = %d, want 409", rec.Code)
	}

	storePath := "/api/franchise/" + itoa(f.ID) + "/store"
	if rec := env.do(t, http.MethodPost, storePath, other, map[string]string{"name": "SLC"}); rec.Code != http.StatusForbidden {
		t.Errorf("outsider create store status = %d, want 403", rec.Code)
	}
	// The franchisee role was granted after the token was issued; the
	// grant is read from the database.
	rec = env.do(t, http.MethodPost, storePath, diner, map[string]string{"name": "SLC"})
	if rec.Code != http.StatusOK {
		t.Fatalf("franchisee create store status = %d, body %s", rec.Code, rec.Body.String())
	}
	loc := decode[store.Location](t, rec)

	rec = env.do(t, http.MethodGet, "/api/franchise", "", nil)
	list := decode[[]store.Franchise](t, rec)
	if len(list) != 1 || len(list[0].Stores) != 1 || len(list[0].Admins) != 1 {
		t.Errorf("franchises = %+v", list)
	}

	rec = env.do(t, http.MethodDelete, storePath+"/"+itoa(loc.ID), diner, nil)
	if got := decode[message](t, rec).Message; rec.Code != http.StatusOK || got != "store deleted" {
		t.Errorf("delete store = %d %q", rec.Code, got)
	}
	if rec := env.do(t, http.MethodDelete, "/api/franchise/"+itoa(f.ID), diner, nil); rec.Code != http.StatusForbidden {
		t.Errorf("franchisee delete franchise status = %d, want 403", rec.Code)
	}
	rec = env.do(t, http.MethodDelete, "/api/franchise/"+itoa(f.ID), admin, nil)
	if got := decode[message](t, rec).Message; rec.Code != http.StatusOK || got != "franchise deleted" {
		t.Errorf("delete franchise = %d %q", rec.Code, got)
	}
	if rec := env.do(t, http.MethodDelete, "/api/franchise/"+itoa(f.ID), admin, nil); rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestHealthAndInfo(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/health/status", "", nil)
	status := decode[map[string]string](t, rec)
	if rec.Code != http.StatusOK || status["status"] != "ok" || status["version"] != "20260301.120000" {
		t.Errorf("health status = %d %v", rec.Code, status)
	}
	if _, err := time.Parse(time.RFC3339Nano, status["timestamp"]); err != nil {
		t.Errorf("timestamp %q: %v", status["timestamp"], err)
	}

	rec = env.do(t, http.MethodGet, "/api/health/ready", "", nil)
	ready := decode[health.Report](t, rec)
	if rec.Code != http.StatusOK || ready.Checks["database"].Status != health.StatusOK {
		t.Errorf("readiness = %d %+v", rec.Code, ready)
	}

	rec = env.do(t, http.MethodGet, "/", "", nil)
	if got := decode[message](t, rec).Message; got != "welcome to JWT Pizza" {
		t.Errorf("welcome message = %q", got)
	}

	rec = env.do(t, http.MethodGet, "/api/docs", "", nil)
	docs := decode[struct {
		Endpoints []endpoint `json:"endpoints"`
	}](t, rec)
	if len(docs.Endpoints) != len(endpoints) {
		t.Errorf("docs list %d endpoints, want %d", len(docs.Endpoints), len(endpoints))
	}
}

func TestHealthMetrics(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodGet, "/api/order/menu", "", nil)
	env.do(t, http.MethodGet, "/api/nope", "", nil)

	rec := env.do(t, http.MethodGet, "/api/health/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	summary := decode[metrics.Summary](t, rec)
	if summary.HTTP.TotalRequests != 3 {
		t.Errorf("totalRequests = %v, want 3", summary.HTTP.TotalRequests)
	}
	if summary.HTTP.Errors != 1 {
		t.Errorf("errors = %v, want 1", summary.HTTP.Errors)
	}
	if summary.Database.TotalQueries == 0 {
		t.Error("no database queries recorded")
	}
	if summary.HTTP.StatusCodes[http.StatusNotFound] != 1 {
		t.Errorf("statusCodes = %v", summary.HTTP.StatusCodes)
	}
}

func TestUnknownRoutes(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/nope", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if got := decode[message](t, rec).Message; got != "unknown endpoint" {
		t.Errorf("message = %q", got)
	}

	rec = env.do(t, http.MethodPatch, "/api/auth", "", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("PATCH status = %d, want 405", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/api/auth", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty body status = %d, want 400", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		method, path string
		want         int
		wantMessage  string
	}{
		{http.MethodPatch, "/api/auth", http.StatusMethodNotAllowed, "method not allowed"},
		{http.MethodPatch, "/api/order/menu", http.StatusMethodNotAllowed, "method not allowed"},
		{http.MethodDelete, "/api/order", http.StatusMethodNotAllowed, "method not allowed"},
		{http.MethodPut, "/api/health/status", http.StatusMethodNotAllowed, "method not allowed"},
		{http.MethodPatch, "/", http.StatusMethodNotAllowed, "method not allowed"},
		{http.MethodGet, "/api/order/nope", http.StatusNotFound, "unknown endpoint"},
		{http.MethodGet, "/nope", http.StatusNotFound, "unknown endpoint"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := env.do(t, tt.method, tt.path, "", nil)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if got := decode[message](t, rec).Message; got != tt.wantMessage {
				t.Errorf("message = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestPrometheusScrape(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodGet, "/api/order/menu", "", nil)

	rec := env.do(t, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"pizzeria_requests_total", "pizzeria_get_requests_total", "go_goroutines"} {
		if !strings.Contains(body, want) {
			t.Errorf("scrape is missing %s", want)
		}
	}
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }
