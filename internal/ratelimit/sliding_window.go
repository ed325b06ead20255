package ratelimit

import (
	"context"
	"sync"
	"time"
)

// SlidingWindow is an in-process Limiter. State lives for the life of the
// process and is keyed by identity.
type SlidingWindow struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	cfg     Config
	now     func() time.Time
}

// NewSlidingWindow builds an in-memory limiter. A nil now uses time.Now.
func NewSlidingWindow(cfg Config, now func() time.Time) *SlidingWindow {
	if now == nil {
		now = time.Now
	}
	return &SlidingWindow{
		windows: make(map[string][]time.Time),
		cfg:     cfg.withDefaults(),
		now:     now,
	}
}

// Allow prunes, checks and records under one lock so two concurrent calls
// for the same identity cannot both pass the cap.
func (l *SlidingWindow) Allow(_ context.Context, identity string) (bool, time.Duration) {
	if l == nil {
		return true, 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	hits := prune(l.windows[identity], now, l.cfg.Window)
	if len(hits) >= l.cfg.Max {
		l.windows[identity] = hits
		return false, hits[0].Add(l.cfg.Window).Sub(now)
	}
	l.windows[identity] = append(hits, now)
	return true, 0
}

// Len reports the number of timestamps currently held for identity.
func (l *SlidingWindow) Len(identity string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows[identity])
}

// prune drops timestamps that have aged out. hits is ordered oldest first.
func prune(hits []time.Time, now time.Time, window time.Duration) []time.Time {
	i := 0
	for i < len(hits) && now.Sub(hits[i]) >= window {
		i++
	}
	if i == 0 {
		return hits
	}
	kept := make([]time.Time, len(hits)-i, cap(hits))
	copy(kept, hits[i:])
	return kept
}

var _ Limiter = (*SlidingWindow)(nil)
