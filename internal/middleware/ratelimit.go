// File: internal/middleware/ratelimit.go
package middleware

import (
	"fmt"
	"math"
	"net/http"

	"github.com/iyunix/go-taskmate/internal/ratelimit"
)

// RateLimitMiddleware throttles per authenticated user, falling back to the
// client IP for anonymous requests.
func RateLimitMiddleware(limiter *ratelimit.KeyedLimiter, logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "ip:" + ratelimit.GetClientIP(r)
			if userID, ok := UserIDFromContext(r.Context()); ok {
				key = "user:" + userID
			}

			info := limiter.Allow(key)
			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))

			if !info.Allowed {
				logger.Warn("Rate limited", "key", key, "path", r.URL.Path)
				w.Header().Set("Retry-After", fmt.Sprintf("%.0f", math.Ceil(info.RetryAfter.Seconds())))
				writeJSONError(w, http.StatusTooManyRequests, "Too many requests. Please slow down.", "RATE_LIMITED")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
