package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)}
}

func TestSlidingWindowCapsAtMax(t *testing.T) {
	clock := newClock()
	l := NewSlidingWindow(Config{}, clock.Now)
	ctx := context.Background()

	for i := 0; i < DefaultMax; i++ {
		ok, _ := l.Allow(ctx, "a@example.com")
		require.True(t, ok, "call %d should pass", i+1)
		clock.Advance(time.Second)
	}

	ok, retryAfter := l.Allow(ctx, "a@example.com")
	assert.False(t, ok)
	// First hit at t=0, now t=5s: the oldest leaves at t=60s.
	assert.Equal(t, 55*time.Second, retryAfter)
}

func TestSlidingWindowDoesNotRecordRejections(t *testing.T) {
	clock := newClock()
	l := NewSlidingWindow(Config{Window: time.Minute, Max: 2}, clock.Now)
	ctx := context.Background()

	l.Allow(ctx, "id")
	l.Allow(ctx, "id")
	for i := 0; i < 10; i++ {
		ok, _ := l.Allow(ctx, "id")
		require.False(t, ok)
	}
	assert.Equal(t, 2, l.Len("id"))

	clock.Advance(time.Minute)
	ok, _ := l.Allow(ctx, "id")
	assert.True(t, ok, "rejected calls must not extend the window")
}

func TestSlidingWindowRollsForward(t *testing.T) {
	clock := newClock()
	l := NewSlidingWindow(Config{Window: time.Minute, Max: 5}, clock.Now)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		ok, _ := l.Allow(ctx, "id")
		require.True(t, ok)
		clock.Advance(10 * time.Second)
	}
	// t=50s. Oldest hit (t=0) is still inside the window.
	ok, _ := l.Allow(ctx, "id")
	require.False(t, ok)

	clock.Advance(10 * time.Second)
	// t=60s. Exactly one entry has aged out.
	ok, _ = l.Allow(ctx, "id")
	require.True(t, ok)
	ok, _ = l.Allow(ctx, "id")
	assert.False(t, ok)
}

func TestSlidingWindowIsolatesIdentities(t *testing.T) {
	l := NewSlidingWindow(Config{Max: 1}, newClock().Now)
	ctx := context.Background()

	ok, _ := l.Allow(ctx, "a")
	assert.True(t, ok)
	ok, _ = l.Allow(ctx, "b")
	assert.True(t, ok)
	ok, _ = l.Allow(ctx, "a")
	assert.False(t, ok)
}

func TestSlidingWindowConcurrentCallsRespectCap(t *testing.T) {
	l := NewSlidingWindow(Config{}, newClock().Now)
	ctx := context.Background()

	var allowed atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if ok, _ := l.Allow(ctx, "same"); ok {
				allowed.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(DefaultMax), allowed.Load())
	assert.Equal(t, DefaultMax, l.Len("same"))
}
