package middleware

import (
	"net/http"
	"time"
)

// RequestRecorder is the request-facing side of the metrics Store.
type RequestRecorder interface {
	BeginRequest(method, path, authorization string)
	EndRequest(status int, elapsed time.Duration)
}

// MetricsMiddleware counts each request at entry and records its status and
// latency once the handler returns. It must wrap every other middleware so
// that rejected and recovered requests are counted too.
func MetricsMiddleware(rec RequestRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec.BeginRequest(r.Method, r.URL.Path, r.Header.Get("Authorization"))

			rw := newResponseWriter(w)
			defer func() {
				status := rw.statusCode
				p := recover()
				if p != nil {
					status = http.StatusInternalServerError
				}
				rec.EndRequest(status, time.Since(start))
				if p != nil {
					panic(p)
				}
			}()

			next.ServeHTTP(rw, r)
		})
	}
}
