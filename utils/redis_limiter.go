package utils

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// fixedWindow increments the counter and starts its expiry on the first hit
// of a window.
var fixedWindow = redis.NewScript(`
local current = redis.call('INCR', KEYS[1])
if current == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
elseif redis.call('PTTL', KEYS[1]) < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return current
`)

// RedisLimiter is a fixed window counter shared by every instance using the
// same Redis.
type RedisLimiter struct {
	client *redis.Client
	prefix string
}

func NewRedisLimiter(client *redis.Client) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: "ratelimit"}
}

// Allow counts one hit for clientKey on routeKey and reports whether it fits
// within limit for the current window.
func (l *RedisLimiter) Allow(ctx context.Context, clientKey, routeKey string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 {
		return false, nil
	}
	key := l.prefix + ":" + routeKey + ":" + clientKey
	ms := window.Milliseconds()
	if ms <= 0 {
		ms = 1
	}
	n, err := fixedWindow.Run(ctx, l.client, []string{key}, ms).Int64()
	if err != nil {
		return false, err
	}
	return n <= int64(limit), nil
}
