package metrics

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Summary is the JSON document served by the health metrics endpoint.
type Summary struct {
	System         SystemSummary  `json:"system"`
	HTTP           HTTPSummary    `json:"http"`
	Authentication AuthSummary    `json:"authentication"`
	Pizza          PizzaSummary   `json:"pizza"`
	Database       DBSummary      `json:"database"`
	Users          UsersSummary   `json:"users"`
	Factory        FactorySummary `json:"factory"`
}

// SystemSummary reports host usage as percentages and process uptime.
type SystemSummary struct {
	CPU    string `json:"cpu"`
	Memory string `json:"memory"`
	Uptime string `json:"uptime"`
}

// EndpointHits is one entry of the top endpoints list, highest first.
type EndpointHits struct {
	Endpoint string `json:"endpoint"`
	Hits     int64  `json:"hits"`
}

// MethodBreakdown splits a figure by HTTP method.
type MethodBreakdown struct {
	Get    float64 `json:"get"`
	Post   float64 `json:"post"`
	Put    float64 `json:"put"`
	Delete float64 `json:"delete"`
}

// HTTPSummary covers request volume, errors, latency and the busiest
// endpoints.
type HTTPSummary struct {
	TotalRequests             float64         `json:"totalRequests"`
	RequestsPerMinute         float64         `json:"requestsPerMinute"`
	Errors                    float64         `json:"errors"`
	ErrorRate                 string          `json:"errorRate"`
	AvgLatency                string          `json:"avgLatency"`
	StatusCodes               map[int]int64   `json:"statusCodes"`
	TopEndpoints              []EndpointHits  `json:"topEndpoints"`
	RequestsByMethod          MethodBreakdown `json:"requestsByMethod"`
	RequestsPerMinuteByMethod MethodBreakdown `json:"requestsPerMinuteByMethod"`
}

// AuthSummary reports login attempts and their success rate.
type AuthSummary struct {
	TotalAttempts      float64 `json:"totalAttempts"`
	SuccessfulAttempts float64 `json:"successfulAttempts"`
	FailedAttempts     float64 `json:"failedAttempts"`
	AttemptsPerMinute  float64 `json:"attemptsPerMinute"`
	SuccessPerMinute   float64 `json:"successPerMinute"`
	FailurePerMinute   float64 `json:"failurePerMinute"`
	SuccessRate        string  `json:"successRate"`
}

// StageSummary holds per-stage average latencies.
type StageSummary struct {
	Preparation string `json:"preparation"`
	Baking      string `json:"baking"`
	Packaging   string `json:"packaging"`
	Payment     string `json:"payment"`
}

// PizzaSummary reports sales, failures, revenue and order latency.
type PizzaSummary struct {
	TotalSales        float64      `json:"totalSales"`
	TotalFailures     float64      `json:"totalFailures"`
	TotalRevenue      string       `json:"totalRevenue"`
	SalesPerMinute    float64      `json:"salesPerMinute"`
	FailuresPerMinute float64      `json:"failuresPerMinute"`
	RevenuePerMinute  string       `json:"revenuePerMinute"`
	SuccessRate       string       `json:"successRate"`
	AvgLatency        string       `json:"avgLatency"`
	MaxLatency        string       `json:"maxLatency"`
	MinLatency        string       `json:"minLatency"`
	LatencyPerMinute  string       `json:"latencyPerMinute"`
	ProcessingStages  StageSummary `json:"processingStages"`
}

// DBSummary reports query volume, failures and the query type mix.
type DBSummary struct {
	TotalQueries     float64             `json:"totalQueries"`
	Errors           float64             `json:"errors"`
	ErrorRate        string              `json:"errorRate"`
	AvgLatency       string              `json:"avgLatency"`
	ConnectionErrors float64             `json:"connectionErrors"`
	QueryErrors      float64             `json:"queryErrors"`
	SlowQueries      float64             `json:"slowQueries"`
	QueryTypes       map[QueryType]int64 `json:"queryTypes"`
}

// UsersSummary reports signups and currently active sessions.
type UsersSummary struct {
	Signups     float64 `json:"signups"`
	ActiveUsers float64 `json:"activeUsers"`
}

// BuildSummary renders the store for human consumption. Every rate and
// average reads as 0 when its denominator is 0.
func (s *Store) BuildSummary() Summary {
	sn := s.Snapshot()
	return sn.Summary(s.summaryTopN)
}

// Summary renders the snapshot, listing at most topN endpoints.
func (sn Snapshot) Summary(topN int) Summary {
	c := sn.Counter
	g := sn.Gauge
	pl := sn.Sum(PizzaLatency)

	return Summary{
		System: SystemSummary{
			CPU:    pct(g(CPU)),
			Memory: pct(g(Memory)),
			Uptime: FormatUptime(sn.Uptime),
		},
		HTTP: HTTPSummary{
			TotalRequests:     c(Requests),
			RequestsPerMinute: g(RequestsPerMinute),
			Errors:            c(Errors),
			ErrorRate:         pct(percent(c(Errors), c(Requests))),
			AvgLatency:        millis(ratio(sn.Sum(Latency).Sum, c(Requests))),
			StatusCodes:       sn.StatusCodes,
			TopEndpoints:      topEndpoints(sn.Endpoints, topN),
			RequestsByMethod: MethodBreakdown{
				Get: c(GetRequests), Post: c(PostRequests), Put: c(PutRequests), Delete: c(DeleteRequests),
			},
			RequestsPerMinuteByMethod: MethodBreakdown{
				Get:    g(GetRequestsPerMinute),
				Post:   g(PostRequestsPerMinute),
				Put:    g(PutRequestsPerMinute),
				Delete: g(DeleteRequestsPerMinute),
			},
		},
		Authentication: AuthSummary{
			TotalAttempts:      c(AuthAttempts),
			SuccessfulAttempts: c(AuthSuccess),
			FailedAttempts:     c(AuthFailure),
			AttemptsPerMinute:  g(AuthAttemptsPerMinute),
			SuccessPerMinute:   g(AuthSuccessPerMinute),
			FailurePerMinute:   g(AuthFailurePerMinute),
			SuccessRate:        pct(percent(c(AuthSuccess), c(AuthAttempts))),
		},
		Pizza: PizzaSummary{
			TotalSales:        c(PizzaSales),
			TotalFailures:     c(PizzaFailures),
			TotalRevenue:      fmt.Sprintf("%.8f BTC", c(PizzaRevenue)),
			SalesPerMinute:    g(PizzaSalesPerMinute),
			FailuresPerMinute: g(PizzaFailuresPerMinute),
			RevenuePerMinute:  fmt.Sprintf("%.8f BTC/min", g(PizzaRevenuePerMinute)),
			SuccessRate:       pct(percent(c(PizzaSales), c(PizzaSales)+c(PizzaFailures))),
			AvgLatency:        millis(pl.Avg()),
			MaxLatency:        millis(pl.Max),
			MinLatency:        millis(pl.Min),
			LatencyPerMinute:  millis(g(PizzaLatencyPerMinute)),
			ProcessingStages: StageSummary{
				Preparation: millis(sn.Sum(PreparationLatency).Avg()),
				Baking:      millis(sn.Sum(BakingLatency).Avg()),
				Packaging:   millis(sn.Sum(PackagingLatency).Avg()),
				Payment:     millis(sn.Sum(PaymentLatency).Avg()),
			},
		},
		Database: DBSummary{
			TotalQueries:     c(DBQueries),
			Errors:           c(DBErrors),
			ErrorRate:        pct(percent(c(DBErrors), c(DBQueries))),
			AvgLatency:       millis(ratio(sn.Sum(DBLatency).Sum, c(DBQueries))),
			ConnectionErrors: c(DBConnectionErrors),
			QueryErrors:      c(DBQueryErrors),
			SlowQueries:      c(DBSlowQueries),
			QueryTypes:       sn.DBQueryTypes,
		},
		Users: UsersSummary{
			Signups:     c(UserSignups),
			ActiveUsers: g(ActiveUsers),
		},
		Factory: sn.Factory,
	}
}

func pct(v float64) string    { return fmt.Sprintf("%.2f%%", v) }
func millis(v float64) string { return fmt.Sprintf("%.2fms", v) }

// topEndpoints returns the n most hit endpoints. Ties sort by name.
func topEndpoints(hits map[string]int64, n int) []EndpointHits {
	out := make([]EndpointHits, 0, len(hits))
	for k, v := range hits {
		out = append(out, EndpointHits{Endpoint: k, Hits: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Hits != out[j].Hits {
			return out[i].Hits > out[j].Hits
		}
		return out[i].Endpoint < out[j].Endpoint
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// FormatUptime renders d as "1d 2h 3m 4s", omitting zero units. A duration
// under one second renders as "0s".
func FormatUptime(d time.Duration) string {
	secs := int64(d / time.Second)
	days := secs / 86400
	secs %= 86400
	hours := secs / 3600
	secs %= 3600
	minutes := secs / 60
	secs %= 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if secs > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%ds", secs))
	}
	return strings.Join(parts, " ")
}
