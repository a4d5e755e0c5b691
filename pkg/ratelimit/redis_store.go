package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrScript increments and arms the expiry on the first hit of a window, then reports PTTL.
const incrScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {current, redis.call("PTTL", KEYS[1])}
`

type evaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

type RedisStore struct {
	client evaler
	prefix string
}

func NewRedisStore(client redis.Scripter, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	res, err := s.client.Eval(ctx, incrScript, []string{s.prefix + key}, window.Milliseconds()).Result()
	if err != nil {
		return 0, 0, err
	}
	vals, ok := res.([]interface{})
	if !ok || len(vals) != 2 {
		return 0, 0, fmt.Errorf("ratelimit: unexpected script result %T", res)
	}
	count, ok1 := vals[0].(int64)
	pttl, ok2 := vals[1].(int64)
	if !ok1 || !ok2 {
		return 0, 0, fmt.Errorf("ratelimit: unexpected script values %v", vals)
	}
	return count, time.Duration(pttl) * time.Millisecond, nil
}
