package middleware

import (
	"net/http"
	"time"
)

// DefaultRequestTimeout bounds how long a single request may run
const DefaultRequestTimeout = 30 * time.Second

// Timeout aborts handlers that run longer than the limit. TimeoutHandler
// already cancels the request context for the inner handler, so engine
// operations submitted from a timed-out request unblock on their own.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, "Request Timeout")
	}
}
