package rest

import (
	"net/http"

	"golang.org/x/time/rate"
)

// RateLimit caps the credential endpoints at rps requests per second shared
// by every caller. A non-positive rps disables the limit.
func RateLimit(rps int) func(http.Handler) http.Handler {
	if rps <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	limiter := rate.NewLimiter(rate.Limit(rps), rps)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				writeJSON(w, http.StatusTooManyRequests, map[string]string{
					"message": "Too many requests",
					"code":    "rate_limited",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
