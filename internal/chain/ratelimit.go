package chain

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter throttles outgoing requests per API host using a token bucket.
// Explorer APIs meter by key rather than by chain, so all chains served by
// the same host share one bucket.
type RateLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*rate.Limiter
	perSec   rate.Limit
	burst    int
	disabled bool
}

// NewRateLimiter creates a limiter allowing ratePerSecond requests per host
// with the given burst. A non-positive rate disables limiting.
func NewRateLimiter(ratePerSecond float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		buckets:  make(map[string]*rate.Limiter),
		perSec:   rate.Limit(ratePerSecond),
		burst:    burst,
		disabled: ratePerSecond <= 0,
	}
}

// DefaultRateLimiter matches the free Etherscan tier: 5 requests/second.
func DefaultRateLimiter() *RateLimiter {
	return NewRateLimiter(5, 5)
}

// Allow reports whether a request to host may proceed immediately.
func (r *RateLimiter) Allow(host string) bool {
	if r.disabled {
		return true
	}
	return r.bucket(host).Allow()
}

// Wait blocks until a request to host is allowed or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context, host string) error {
	if r.disabled {
		return ctx.Err()
	}
	return r.bucket(host).Wait(ctx)
}

func (r *RateLimiter) bucket(host string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.buckets[host]
	if !ok {
		b = rate.NewLimiter(r.perSec, r.burst)
		r.buckets[host] = b
	}
	return b
}
