// Package ratelimit throttles outgoing MangaDex API requests.
//
// TokenBucket wraps golang.org/x/time/rate and exposes a small Limiter
// interface so the API client can be tested with a fake.
//
// Usage:
//
//	// 5 requests per second with bursts of 5
//	limiter := ratelimit.NewTokenBucket(5, 5)
//
//	if err := limiter.Wait(ctx); err != nil {
//	    return err
//	}
//	// Proceed with request
package ratelimit
