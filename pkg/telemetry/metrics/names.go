package metrics

// Name identifies a counter, windowed counter, gauge, or accumulator in the Store.
type Name string

// Monotonic counters. Most have a windowed twin of the same name that is
// zeroed at every rollover.
const (
	Requests       Name = "requests"
	GetRequests    Name = "get_requests"
	PostRequests   Name = "post_requests"
	PutRequests    Name = "put_requests"
	DeleteRequests Name = "delete_requests"
	Errors         Name = "errors"
	ServerErrors   Name = "server_errors"

	AuthAttempts Name = "auth_attempts"
	AuthSuccess  Name = "auth_success"
	AuthFailure  Name = "auth_failure"

	PizzaSales    Name = "pizza_sales"
	PizzaFailures Name = "pizza_sales_failures"
	PizzaRevenue  Name = "pizza_revenue"

	UserSignups      Name = "user_signups"
	UserSignupsDelta Name = "user_signups_delta"

	DBQueries          Name = "db_queries"
	DBErrors           Name = "db_errors"
	DBQueryErrors      Name = "db_query_errors"
	DBSlowQueries      Name = "db_slow_queries"
	DBConnectionErrors Name = "db_connection_errors"

	// Unknown collects mutations addressed to a name the Store does not track.
	Unknown Name = "unknown"
)

// Derived gauges.
const (
	RequestsPerMinute       Name = "requests_per_minute"
	GetRequestsPerMinute    Name = "get_requests_per_minute"
	PostRequestsPerMinute   Name = "post_requests_per_minute"
	PutRequestsPerMinute    Name = "put_requests_per_minute"
	DeleteRequestsPerMinute Name = "delete_requests_per_minute"

	AuthAttemptsPerMinute Name = "auth_attempts_per_minute"
	AuthSuccessPerMinute  Name = "auth_success_per_minute"
	AuthFailurePerMinute  Name = "auth_failure_per_minute"

	PizzaSalesPerMinute    Name = "pizza_sales_per_minute"
	PizzaFailuresPerMinute Name = "pizza_failures_per_minute"
	PizzaRevenuePerMinute  Name = "pizza_revenue_per_minute"
	PizzaLatencyPerMinute  Name = "pizza_latency_per_minute"
	TotalPizzasLastOrder   Name = "total_pizzas_last_order"

	ActiveUsers Name = "active_users"
	CPU         Name = "cpu"
	Memory      Name = "memory"

	DBPoolSize  Name = "db_pool_size"
	DBPoolUsed  Name = "db_pool_used"
	DBPoolQueue Name = "db_pool_queue"
)

// Accumulators (sum, count, min, max).
const (
	Latency            Name = "latency"
	DBLatency          Name = "db_latency"
	PizzaLatency       Name = "pizza_latency"
	PizzaFailedLatency Name = "pizza_failed_latency"

	PreparationLatency Name = "pizza_preparation_latency"
	BakingLatency      Name = "pizza_baking_latency"
	PackagingLatency   Name = "pizza_packaging_latency"
	PaymentLatency     Name = "pizza_payment_processing_latency"
)

var knownCounters = nameSet(
	Requests, GetRequests, PostRequests, PutRequests, DeleteRequests, Errors, ServerErrors,
	AuthAttempts, AuthSuccess, AuthFailure,
	PizzaSales, PizzaFailures, PizzaRevenue,
	UserSignups, UserSignupsDelta,
	DBQueries, DBErrors, DBQueryErrors, DBSlowQueries, DBConnectionErrors,
	Unknown,
)

var knownGauges = nameSet(
	RequestsPerMinute, GetRequestsPerMinute, PostRequestsPerMinute, PutRequestsPerMinute, DeleteRequestsPerMinute,
	AuthAttemptsPerMinute, AuthSuccessPerMinute, AuthFailurePerMinute,
	PizzaSalesPerMinute, PizzaFailuresPerMinute, PizzaRevenuePerMinute, PizzaLatencyPerMinute, TotalPizzasLastOrder,
	ActiveUsers, CPU, Memory,
	DBPoolSize, DBPoolUsed, DBPoolQueue,
	Unknown,
)

var knownSums = nameSet(
	Latency, DBLatency, PizzaLatency, PizzaFailedLatency,
	PreparationLatency, BakingLatency, PackagingLatency, PaymentLatency,
	Unknown,
)

// rateRule maps a windowed counter onto the per-minute gauge derived from it.
type rateRule struct {
	window Name
	gauge  Name

	// fractional rates keep eight decimal places instead of rounding to
	// a whole number.
	fractional bool
}

var rateRules = []rateRule{
	{window: Requests, gauge: RequestsPerMinute},
	{window: GetRequests, gauge: GetRequestsPerMinute},
	{window: PostRequests, gauge: PostRequestsPerMinute},
	{window: PutRequests, gauge: PutRequestsPerMinute},
	{window: DeleteRequests, gauge: DeleteRequestsPerMinute},
	{window: AuthAttempts, gauge: AuthAttemptsPerMinute},
	{window: AuthSuccess, gauge: AuthSuccessPerMinute},
	{window: AuthFailure, gauge: AuthFailurePerMinute},
	{window: PizzaSales, gauge: PizzaSalesPerMinute},
	{window: PizzaFailures, gauge: PizzaFailuresPerMinute},
	{window: PizzaRevenue, gauge: PizzaRevenuePerMinute, fractional: true},
}

var knownWindows = func() map[Name]struct{} {
	m := make(map[Name]struct{}, len(rateRules))
	for _, r := range rateRules {
		m[r.window] = struct{}{}
	}
	return m
}()

func nameSet(names ...Name) map[Name]struct{} {
	m := make(map[Name]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}

// methodCounter returns the per-method counter for an HTTP method, or
// Unknown when the method is not broken out.
func methodCounter(method string) Name {
	switch method {
	case "GET", "get":
		return GetRequests
	case "POST", "post":
		return PostRequests
	case "PUT", "put":
		return PutRequests
	case "DELETE", "delete":
		return DeleteRequests
	default:
		return Unknown
	}
}

// QueryType is the coarse classification of a database statement.
type QueryType string

const (
	QuerySelect  QueryType = "select"
	QueryInsert  QueryType = "insert"
	QueryUpdate  QueryType = "update"
	QueryDelete  QueryType = "delete"
	QueryUnknown QueryType = "unknown"
)

// QueryTypes lists every query classification in export order.
var QueryTypes = []QueryType{QuerySelect, QueryInsert, QueryUpdate, QueryDelete, QueryUnknown}

func normalizeQueryType(t QueryType) QueryType {
	switch t {
	case QuerySelect, QueryInsert, QueryUpdate, QueryDelete:
		return t
	default:
		return QueryUnknown
	}
}
