package ratelimit

import (
	"log/slog"
	"net/http"

	"vouch/internal/platform/middleware"
)

// Middleware limits requests per client IP. Limiter errors are logged and the
// request is allowed through: availability of the credential core wins over
// strict limiting.
func Middleware(limiter Limiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ip := middleware.ClientIP(r)

			allowed, err := limiter.Allow(ctx, ip)
			if err != nil {
				logger.Error("rate limit check failed", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"rate_limited","error_description":"too many requests"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
