package retry

import (
	"context"
	"math"
	"time"
)

// DefaultMaxBackoff caps any computed delay
const DefaultMaxBackoff = 120 * time.Second

// BackoffStrategy defines the interface for different backoff strategies
type BackoffStrategy interface {
	// NextDelay returns the delay to wait after the given failed attempt (1-based)
	NextDelay(attempt int) time.Duration
}

// FactorBackoff reproduces urllib3's Retry backoff: no delay after the
// first failure, then Factor * 2^(attempt-1) seconds, capped at MaxDelay.
type FactorBackoff struct {
	Factor   float64
	MaxDelay time.Duration
}

// DefaultFactorBackoff returns the 0.3 factor backoff used for MangaDex
func DefaultFactorBackoff() *FactorBackoff {
	return &FactorBackoff{
		Factor:   0.3,
		MaxDelay: DefaultMaxBackoff,
	}
}

// NextDelay returns 0, 2f, 4f, 8f, ... seconds for attempts 1, 2, 3, 4, ...
func (fb *FactorBackoff) NextDelay(attempt int) time.Duration {
	if attempt <= 1 || fb.Factor <= 0 {
		return 0
	}

	seconds := fb.Factor * math.Pow(2, float64(attempt-1))
	delay := time.Duration(seconds * float64(time.Second))

	maxDelay := fb.MaxDelay
	if maxDelay <= 0 {
		maxDelay = DefaultMaxBackoff
	}
	if delay > maxDelay {
		delay = maxDelay
	}

	return delay
}

// Wait waits for the specified duration or until context is cancelled
func Wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
