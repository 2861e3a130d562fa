package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter defines the interface for request budgeting
type Limiter interface {
	// Allow takes a token if one is available
	Allow() bool
	// Wait blocks until a token is available or ctx is done
	Wait(ctx context.Context) error
	// Reset refills the budget
	Reset()
}

// TokenBucket hands out a fixed number of tokens per refill period
type TokenBucket struct {
	capacity     int
	tokens       int
	refillPeriod time.Duration
	lastRefill   time.Time
	now          func() time.Time
	mu           sync.Mutex
}

// NewTokenBucket creates a new token bucket rate limiter
func NewTokenBucket(capacity int, refillPeriod time.Duration) *TokenBucket {
	return &TokenBucket{
		capacity:     capacity,
		tokens:       capacity,
		refillPeriod: refillPeriod,
		lastRefill:   time.Now(),
		now:          time.Now,
	}
}

// New returns a TokenBucket for perHour > 0 and an Unlimited limiter otherwise
func New(perHour int) Limiter {
	if perHour <= 0 {
		return Unlimited{}
	}
	return NewTokenBucket(perHour, time.Hour)
}

// Allow checks if a request can proceed
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// Wait blocks until a token is available
func (tb *TokenBucket) Wait(ctx context.Context) error {
	for !tb.Allow() {
		wait := tb.UntilRefill()
		if wait <= 0 {
			wait = 100 * time.Millisecond
		}
		if err := Pause(ctx, wait); err != nil {
			return err
		}
	}
	return nil
}

// UntilRefill returns how long until the bucket is full again
func (tb *TokenBucket) UntilRefill() time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	return tb.refillPeriod - tb.now().Sub(tb.lastRefill)
}

// Reset resets the token bucket to full capacity
func (tb *TokenBucket) Reset() {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.tokens = tb.capacity
	tb.lastRefill = tb.now()
}

// refill restores full capacity once the period has elapsed
func (tb *TokenBucket) refill() {
	now := tb.now()
	if now.Sub(tb.lastRefill) >= tb.refillPeriod {
		tb.tokens = tb.capacity
		tb.lastRefill = now
	}
}

// Unlimited never blocks
type Unlimited struct{}

func (Unlimited) Allow() bool                    { return true }
func (Unlimited) Wait(ctx context.Context) error { return ctx.Err() }
func (Unlimited) Reset()                         {}

// Pause sleeps for d, returning early with ctx.Err() if ctx is cancelled.
// A non-positive d returns immediately.
func Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
