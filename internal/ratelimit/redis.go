package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// Increments the window counter and starts its expiry on first use.
// Returns {count, pttl}.
var fixedWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local window = tonumber(ARGV[1])
	local count = redis.call('INCR', key)
	if count == 1 then
		redis.call('PEXPIRE', key, window)
	end
	local ttl = redis.call('PTTL', key)
	if ttl < 0 then
		redis.call('PEXPIRE', key, window)
		ttl = window
	end
	return {count, ttl}
`)

// RedisLimiter is a fixed-window limiter shared by every instance that
// points at the same Redis
type RedisLimiter struct {
	rdb    *redis.Client
	prefix string
	win    time.Duration
	max    int
	logger *logrus.Entry
}

// NewRedisLimiter creates a limiter storing counters under prefix
func NewRedisLimiter(rdb *redis.Client, prefix string, max int, window time.Duration, logger *logrus.Entry) *RedisLimiter {
	return &RedisLimiter{
		rdb:    rdb,
		prefix: prefix,
		win:    window,
		max:    max,
		logger: logger.WithField("component", "ratelimit"),
	}
}

// Allow implements Limiter. A Redis failure lets the request through and is
// returned so the caller can log it.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	redisKey := fmt.Sprintf("%s:%s", l.prefix, key)

	res, err := fixedWindowScript.Run(ctx, l.rdb, []string{redisKey}, l.win.Milliseconds()).Slice()
	if err != nil {
		return true, 0, fmt.Errorf("failed to execute rate limit script: %w", err)
	}
	if len(res) != 2 {
		return true, 0, fmt.Errorf("unexpected rate limit script result: %v", res)
	}
	count, ok1 := res[0].(int64)
	ttl, ok2 := res[1].(int64)
	if !ok1 || !ok2 {
		return true, 0, fmt.Errorf("unexpected result type from Redis")
	}

	if int(count) <= l.max {
		return true, 0, nil
	}
	l.logger.WithFields(logrus.Fields{
		"key":   redisKey,
		"count": count,
	}).Debug("Rate limit exceeded")
	return false, time.Duration(ttl) * time.Millisecond, nil
}
