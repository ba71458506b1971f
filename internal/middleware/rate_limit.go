package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/tuanvm/geminichat/internal/config"
)

type SessionLimiter interface {
	CheckAndIncrement(ctx context.Context, sessionID string) (int, error)
}

// RateLimit returns middleware that enforces a per-session per-minute
// limit on generation requests. Only POSTs are counted; a failed limit
// check lets the request through rather than blocking traffic on a
// store error.
func RateLimit(limiter SessionLimiter, limit int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			session := r.Header.Get(config.SessionHeader)
			if session == "" {
				session = config.AnonymousSession
			}

			count, err := limiter.CheckAndIncrement(r.Context(), session)
			if err != nil {
				slog.Error("rate limit check failed", "error", err, "session_id", session)
				next.ServeHTTP(w, r)
				return
			}

			if count > limit {
				slog.Debug("rate limited", "session_id", session, "count", count, "limit", limit)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "too many requests, slow down",
					"code":  "RATE_LIMITED",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
