// File: internal/middleware/ratelimit.go
package middleware

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"

	"github.com/iyunix/go-kbshell/internal/logging"
	"github.com/iyunix/go-kbshell/internal/ratelimit"
	"github.com/iyunix/go-kbshell/internal/session"
)

// RateLimit rejects requests over the per-client budget with a JSON 429.
// Signed-in callers are keyed by session subject, everyone else by address.
func RateLimit(limiter *ratelimit.Limiter, name string, logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := clientKey(limiter, r)
			info := limiter.Allow(client)

			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
			if info.Allowed {
				next.ServeHTTP(w, r)
				return
			}

			logger.Warn("rate limited", "limiter", name, "client", client)

			retryAfter := int(math.Ceil(info.RetryAfter.Seconds()))
			if retryAfter > 0 {
				w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"error":      "Too many requests. Please try again later.",
				"retryAfter": retryAfter,
			})
		})
	}
}

func clientKey(limiter *ratelimit.Limiter, r *http.Request) string {
	if claims, ok := session.FromContext(r.Context()); ok {
		return "user:" + claims.Subject
	}
	return "ip:" + limiter.ClientIP(r)
}
