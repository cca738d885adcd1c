package middleware

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	"golang.org/x/time/rate"
)

// limitedBody mirrors the error envelope used by the resource handlers.
type limitedBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// RateLimitMiddleware sheds requests once the shared token bucket is empty.
// Rejected requests get 429 with a Retry-After hint and are counted in
// http_requests_rate_limited_total. A nil limiter disables limiting.
func RateLimitMiddleware(l *rate.Limiter) func(http.Handler) http.Handler {
	if l == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l.Allow() {
				next.ServeHTTP(w, r)
				return
			}
			rateLimitedTotal.WithLabelValues(r.Method).Inc()

			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter(l.Limit())))
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(limitedBody{
				Error:   "too_many_requests",
				Message: "Rate limit exceeded",
			})
		})
	}
}

// retryAfter is the whole number of seconds until one token refills.
func retryAfter(lim rate.Limit) int {
	if lim <= 0 || lim == rate.Inf {
		return 1
	}
	return int(math.Max(1, math.Ceil(1/float64(lim))))
}

// NewLimiter returns nil when rps <= 0, which RateLimitMiddleware treats as
// unlimited.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}
