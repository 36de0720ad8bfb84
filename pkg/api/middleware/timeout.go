package middleware

import (
	"net/http"
	"time"
)

// TimeoutMessage is the body written when a handler exceeds its deadline.
const TimeoutMessage = `{"message":"request timeout"}`

// TimeoutMiddleware cancels the request context after timeout and answers
// 503 with TimeoutMessage if the handler has not responded by then. A
// non-positive timeout disables it.
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if timeout <= 0 {
			return next
		}
		return http.TimeoutHandler(next, timeout, TimeoutMessage)
	}
}
