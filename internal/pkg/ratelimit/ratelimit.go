// Package ratelimit provides a per-key token bucket used by the transport to
// bound location-ping write amplification per courier identity.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// PerKeyLimiter maintains an independent token bucket per key.
// Buckets are created lazily and never expire; the key space here is the
// active courier population, which is small enough to hold in memory.
type PerKeyLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
}

// NewPerKeyLimiter creates a limiter admitting perMinute requests per rolling
// minute with the given burst per key.
func NewPerKeyLimiter(perMinute, burst int) *PerKeyLimiter {
	return &PerKeyLimiter{
		buckets: make(map[string]*rate.Limiter),
		limit:   rate.Limit(float64(perMinute) / 60.0),
		burst:   burst,
	}
}

// Allow reports whether a request for key is admitted now. When denied it
// returns the duration after which the next request would be admitted.
func (l *PerKeyLimiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	bucket, ok := l.buckets[key]
	if !ok {
		bucket = rate.NewLimiter(l.limit, l.burst)
		l.buckets[key] = bucket
	}
	l.mu.Unlock()

	reservation := bucket.Reserve()
	if !reservation.OK() {
		return false, time.Minute
	}
	delay := reservation.Delay()
	if delay > 0 {
		reservation.Cancel()
		return false, delay
	}
	return true, 0
}
