package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/warp/tax-engine/logging"
)

// CorrelationID propagates X-Correlation-ID. A missing header gets a fresh
// UUID. The id is echoed on the response and attached to the request
// context and logger.
func CorrelationID(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(logging.CorrelationIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(logging.CorrelationIDHeader, id)

			ctx := logging.WithCorrelationID(r.Context(), id)
			ctx = logging.WithContext(ctx, base)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RateLimit rejects requests above rps with 429. rps <= 0 disables limiting.
func RateLimit(rps float64) func(http.Handler) http.Handler {
	if rps <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	limiter := rate.NewLimiter(rate.Limit(rps), int(rps)+1)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				writeError(w, r, http.StatusTooManyRequests, "Too many requests", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
