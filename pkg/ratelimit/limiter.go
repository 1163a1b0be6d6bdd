package ratelimit

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter defines the interface for rate limiting
type Limiter interface {
	// Allow reports whether a request may proceed right now
	Allow() bool
	// Wait blocks until the rate limit allows another request or ctx is done
	Wait(ctx context.Context) error
	// Reset restores the limiter to a full bucket
	Reset()
}

// TokenBucket implements a token bucket rate limiter on top of x/time/rate
type TokenBucket struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	limiter *rate.Limiter
}

// NewTokenBucket creates a limiter allowing requestsPerSecond on average
// with bursts of up to burst requests. A non-positive rate disables limiting.
func NewTokenBucket(requestsPerSecond float64, burst int) *TokenBucket {
	limit := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &TokenBucket{
		limit:   limit,
		burst:   burst,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Allow checks if a request can proceed without waiting
func (tb *TokenBucket) Allow() bool {
	return tb.current().Allow()
}

// Wait blocks until a token is available
func (tb *TokenBucket) Wait(ctx context.Context) error {
	if err := tb.current().Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	return nil
}

// Reset refills the bucket to capacity
func (tb *TokenBucket) Reset() {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.limiter = rate.NewLimiter(tb.limit, tb.burst)
}

// Burst returns the bucket capacity
func (tb *TokenBucket) Burst() int {
	return tb.burst
}

func (tb *TokenBucket) current() *rate.Limiter {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	return tb.limiter
}
