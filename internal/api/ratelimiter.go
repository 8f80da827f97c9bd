package api

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// benchmarkCost is the number of tokens a benchmark sweep consumes.
const benchmarkCost = 10

type rateLimiter interface {
	AllowN(n int) bool
}

type limiterAdapter struct {
	limiter *rate.Limiter
}

func newTokenBucketLimiter(ratePerSecond float64, burst int) rateLimiter {
	if ratePerSecond <= 0 {
		ratePerSecond = 1
	}
	if burst <= 0 {
		burst = 1
	}

	return &limiterAdapter{
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst),
	}
}

func (l *limiterAdapter) AllowN(n int) bool {
	if l == nil || l.limiter == nil {
		return true
	}
	// A request costing more than the whole bucket would never pass.
	if burst := l.limiter.Burst(); n > burst {
		n = burst
	}
	return l.limiter.AllowN(time.Now(), n)
}

// requestCost weighs benchmark sweeps heavier than single pack requests.
func requestCost(r *http.Request) int {
	if r.Method == http.MethodPost && r.URL.Path == "/api/benchmark" {
		return benchmarkCost
	}
	return 1
}

func rateLimitMiddleware(limiter rateLimiter, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if limiter.AllowN(requestCost(r)) {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusTooManyRequests, "Too many requests", "rate limit exceeded, please retry shortly")
	})
}
