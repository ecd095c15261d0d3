// internal/middleware/ratelimit.go
//
// Per-IP rate limiting for abuse-prone endpoints (lead intake).
//
// Each client IP gets a token bucket sized for `max` requests per
// `window` (x/time/rate).  Buckets idle longer than one window are
// dropped by a background sweep, so the map stays bounded even when
// scanned by bots.
package middleware

import (
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/serverplace/serverplace/internal/metrics"
	"github.com/serverplace/serverplace/internal/requestinfo"
)

// RateLimiter hands out one token bucket per client IP.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   rate.Limit
	burst   int
	window  time.Duration
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows max requests per window per IP.
func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		limit:   rate.Every(window / time.Duration(max)),
		burst:   max,
		window:  window,
	}
	go rl.sweepLoop()
	return rl
}

// Allow reports whether a request from key may proceed.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(rl.limit, rl.burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = time.Now()
	rl.mu.Unlock()

	return b.lim.Allow()
}

// Handler wraps next, answering 429 once an IP exhausts its bucket.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := "unknown"
		if ip := requestinfo.ClientIP(r); ip != nil {
			key = ip.String()
		}

		if !rl.Allow(key) {
			metrics.RateLimitedTotal.Inc()
			zap.S().Warnw("rate limit exceeded", "ip", key, "path", r.URL.Path)
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"Слишком много запросов. Попробуйте позже."}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) sweepLoop() {
	t := time.NewTicker(5 * time.Minute)
	defer t.Stop()
	for range t.C {
		cutoff := time.Now().Add(-rl.window)
		rl.mu.Lock()
		for k, b := range rl.buckets {
			if b.lastSeen.Before(cutoff) {
				delete(rl.buckets, k)
			}
		}
		rl.mu.Unlock()
	}
}
