package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests move time forward without sleeping
type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBucket(capacity int, period time.Duration) (*TokenBucket, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	tb := NewTokenBucket(capacity, period)
	tb.now = clock.Now
	tb.lastRefill = clock.Now()
	return tb, clock
}

func TestTokenBucket(t *testing.T) {
	tb, clock := newTestBucket(5, time.Hour)

	for i := 0; i < 5; i++ {
		assert.True(t, tb.Allow(), "token %d should be available", i+1)
	}
	assert.False(t, tb.Allow(), "bucket should be empty")
	assert.Equal(t, 0, tb.tokens)

	clock.Advance(30 * time.Minute)
	assert.False(t, tb.Allow(), "no refill before the period ends")
	assert.Equal(t, 30*time.Minute, tb.UntilRefill())

	clock.Advance(30 * time.Minute)
	assert.True(t, tb.Allow(), "bucket refills after the period")
	assert.Equal(t, 4, tb.tokens)

	tb.tokens = 0
	tb.Reset()
	assert.Equal(t, tb.capacity, tb.tokens)
}

func TestTokenBucketWaitCancelled(t *testing.T) {
	tb, _ := newTestBucket(1, time.Hour)
	require.True(t, tb.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := tb.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestTokenBucketWaitRefills(t *testing.T) {
	tb := NewTokenBucket(1, 50*time.Millisecond)
	require.True(t, tb.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	assert.NoError(t, tb.Wait(ctx))
}

func TestNew(t *testing.T) {
	assert.IsType(t, Unlimited{}, New(0))
	assert.IsType(t, &TokenBucket{}, New(50))

	u := New(-1)
	for i := 0; i < 1000; i++ {
		require.True(t, u.Allow())
	}
	assert.NoError(t, u.Wait(context.Background()))
}

func TestPause(t *testing.T) {
	t.Run("sleeps for the delay", func(t *testing.T) {
		start := time.Now()
		require.NoError(t, Pause(context.Background(), 30*time.Millisecond))
		assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	})

	t.Run("zero delay returns immediately", func(t *testing.T) {
		assert.NoError(t, Pause(context.Background(), 0))
	})

	t.Run("cancellation interrupts", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		start := time.Now()
		assert.ErrorIs(t, Pause(ctx, time.Hour), context.Canceled)
		assert.Less(t, time.Since(start), time.Second)
	})
}
