// Package ratelimit caps the absolute rate of requests to the provider.
//
// It is deliberately separate from the pacing policy: pacing makes the
// request pattern look human, the token bucket makes sure a
// misconfigured policy can never exceed a hard requests-per-period
// ceiling.
//
// Usage:
//
//	limiter := ratelimit.NewTokenBucket(60, time.Minute)
//
//	if err := limiter.Wait(ctx); err != nil {
//	    return err // cancelled while waiting
//	}
//	// proceed with request
package ratelimit
