// Package retrylimit retries calls against the Discord REST API with
// exponential backoff behind a rate limiter that adapts to the responses it
// sees.
//
// Example usage:
//
//	lim := retrylimit.NewAdaptiveLimiter(5, 1, 20, 1, 0.5)
//	err := retrylimit.Do(ctx, lim, retrylimit.DefaultConfig(), func() error {
//	    _, err := s.WebhookExecute(id, token, false, params)
//	    return err
//	})
package retrylimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// cooldown is how long after a throttled request the limiter refuses to
// speed up again.
const cooldown = 10 * time.Second

// AdaptiveLimiter is a token bucket whose rate rises on success and falls
// when the remote side throttles or errors. Safe for concurrent use.
type AdaptiveLimiter struct {
	mu        sync.RWMutex
	limiter   *rate.Limiter
	minLimit  rate.Limit
	maxLimit  rate.Limit
	stepUp    rate.Limit
	stepDown  float64
	lastError time.Time
}

// NewAdaptiveLimiter creates a limiter starting at initial requests per
// second, bounded by lo and hi. stepUp is added on success and stepDown
// multiplies the rate on failure (0.5 halves it).
func NewAdaptiveLimiter(initial, lo, hi, stepUp rate.Limit, stepDown float64) *AdaptiveLimiter {
	lo = max(lo, 1)
	hi = max(hi, lo)
	initial = max(lo, min(initial, hi))
	return &AdaptiveLimiter{
		limiter:  rate.NewLimiter(initial, burstFor(initial)),
		minLimit: lo,
		maxLimit: hi,
		stepUp:   stepUp,
		stepDown: stepDown,
	}
}

// Wait blocks until a request may be made or ctx is done.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// Success raises the rate unless the last failure was recent.
func (a *AdaptiveLimiter) Success() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if time.Since(a.lastError) > cooldown {
		a.set(a.limiter.Limit() + a.stepUp)
	}
}

// Throttled lowers the rate.
func (a *AdaptiveLimiter) Throttled() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastError = time.Now()
	a.set(rate.Limit(float64(a.limiter.Limit()) * a.stepDown))
}

// Limit returns the current requests per second.
func (a *AdaptiveLimiter) Limit() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return float64(a.limiter.Limit())
}

func (a *AdaptiveLimiter) set(l rate.Limit) {
	l = max(a.minLimit, min(l, a.maxLimit))
	if l != a.limiter.Limit() {
		a.limiter.SetLimit(l)
		a.limiter.SetBurst(burstFor(l))
	}
}

func burstFor(l rate.Limit) int {
	return max(1, int(l))
}
