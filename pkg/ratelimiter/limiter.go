package ratelimiter

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter caps outbound Solana RPC calls with a token bucket.
type RateLimiter struct {
	limiter *rate.Limiter
	burst   int
	rps     int
}

// New returns a limiter allowing rps requests per second with bursts of up
// to burst requests. A non-positive burst defaults to rps.
func New(rps, burst int) *RateLimiter {
	if rps <= 0 {
		rps = 1
	}
	if burst <= 0 {
		burst = rps
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		burst:   burst,
		rps:     rps,
	}
}

// Wait blocks until a token is available or ctx is done and reports how
// long the caller was held back.
func (rl *RateLimiter) Wait(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := rl.limiter.Wait(ctx); err != nil {
		return time.Since(start), err
	}
	return time.Since(start), nil
}

// Limit returns the configured requests per second and burst.
func (rl *RateLimiter) Limit() (rps, burst int) {
	return rl.rps, rl.burst
}
