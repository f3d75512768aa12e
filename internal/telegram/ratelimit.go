package telegram

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter paces outgoing calls to Telegram and honours FLOOD_WAIT.
type RateLimiter struct {
	limiter *rate.Limiter

	// no calls before this instant
	floodWaitUntil time.Time
	mu             sync.Mutex
}

// NewRateLimiter creates a rate limiter with rps requests per second.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// DefaultRateLimiter allows short bursts of moderation actions. Deleting a
// spam message and posting the notice come in pairs.
func DefaultRateLimiter() *RateLimiter {
	return NewRateLimiter(5.0, 3)
}

// Wait blocks until the next request is allowed.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if d := r.Remaining(); d > 0 {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return r.limiter.Wait(ctx)
}

// SetFloodWait pauses all calls for d. A shorter pause never cuts an
// active one short.
func (r *RateLimiter) SetFloodWait(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	until := time.Now().Add(d)
	if until.After(r.floodWaitUntil) {
		r.floodWaitUntil = until
	}
}

// Remaining returns how long the current flood wait still lasts.
func (r *RateLimiter) Remaining() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return time.Until(r.floodWaitUntil)
}
