package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"ai-resume-saas/internal/shared/telemetry"
)

// slidingWindowScript mirrors SlidingWindow.Allow over a sorted set scored by
// unix millis. Returns {allowed, retryAfterMs}.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local max = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
if count >= max then
  local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
  local retry = window
  if oldest[2] then
    retry = tonumber(oldest[2]) + window - now
  end
  return {0, retry}
end
redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return {1, 0}
`)

// Redis is a Limiter shared across processes. Redis errors fail open.
type Redis struct {
	client redis.Scripter
	cfg    Config
	prefix string
	now    func() time.Time
}

// NewRedis builds a Redis-backed limiter.
func NewRedis(client redis.Scripter, cfg Config) *Redis {
	return &Redis{
		client: client,
		cfg:    cfg.withDefaults(),
		prefix: "ratelimit:analyze:",
		now:    time.Now,
	}
}

// Connect parses redisURL and pings the server.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}
	return client, nil
}

// Allow runs the window check atomically on the server.
func (l *Redis) Allow(ctx context.Context, identity string) (bool, time.Duration) {
	now := l.now().UnixMilli()
	res, err := slidingWindowScript.Run(ctx, l.client,
		[]string{l.prefix + identity},
		now, l.cfg.Window.Milliseconds(), l.cfg.Max, fmt.Sprintf("%d-%s", now, uuid.NewString()),
	).Int64Slice()
	if err != nil || len(res) != 2 {
		telemetry.Warn("ratelimit.redis_unavailable", map[string]any{
			"identity": identity,
			"err":      err,
		})
		return true, 0
	}
	if res[0] == 1 {
		return true, 0
	}
	return false, time.Duration(res[1]) * time.Millisecond
}

var _ Limiter = (*Redis)(nil)
