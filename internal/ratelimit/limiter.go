// Package ratelimit throttles analysis requests per caller identity using a
// trailing time window.
package ratelimit

import (
	"context"
	"time"
)

const (
	// DefaultWindow is the trailing window requests are counted in.
	DefaultWindow = 60 * time.Second
	// DefaultMax is the number of accepted requests allowed per window.
	DefaultMax = 5
)

// Limiter decides whether an identity may make another request now. On
// rejection it reports how long until a slot frees up. Rejected calls are
// never recorded.
type Limiter interface {
	Allow(ctx context.Context, identity string) (bool, time.Duration)
}

// Config sizes a limiter.
type Config struct {
	Window time.Duration
	Max    int
}

func (c Config) withDefaults() Config {
	if c.Window <= 0 {
		c.Window = DefaultWindow
	}
	if c.Max <= 0 {
		c.Max = DefaultMax
	}
	return c
}
