package middleware

import (
	"net/http"
)

// SecurityHeaders sets the response headers appropriate for a JSON API that
// is never rendered directly in a browser.
func SecurityHeaders(enableHSTS bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			// API responses carry no scripts or styles.
			w.Header().Set("Content-Security-Policy", "default-src 'none'")

			// HSTS only when explicitly enabled and actually serving TLS;
			// the usual deployment is plain HTTP on loopback.
			if enableHSTS && r.TLS != nil {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}
