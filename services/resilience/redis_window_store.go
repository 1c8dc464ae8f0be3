package resilience

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/customeros/outreachstack/internal/utils"
)

const redisWindowKeyPrefix = "outreach:ratelimit:"

// addIfBelowScript checks the count against the limit and increments in
// one round trip. Returns {count, applied, ttl_ms}.
var addIfBelowScript = redis.NewScript(`
local count = tonumber(redis.call('GET', KEYS[1]) or '0')
if count >= tonumber(ARGV[1]) then
	return {count, 0, redis.call('PTTL', KEYS[1])}
end
count = redis.call('INCR', KEYS[1])
if count == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return {count, 1, redis.call('PTTL', KEYS[1])}
`)

var addScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return {count, redis.call('PTTL', KEYS[1])}
`)

// redisWindowStore keeps the fixed windows in Redis so that several
// instances share the same limits. Window expiry rides on key TTL.
type redisWindowStore struct {
	client redis.UniversalClient
}

func NewRedisWindowStore(client redis.UniversalClient) WindowStore {
	return &redisWindowStore{client: client}
}

func (s *redisWindowStore) stateFromTTL(count int, window time.Duration, ttlMs int64) WindowState {
	now := utils.Now()
	if ttlMs <= 0 {
		return WindowState{Count: count, WindowStart: now, WindowEnd: now.Add(window)}
	}
	end := now.Add(time.Duration(ttlMs) * time.Millisecond)
	return WindowState{Count: count, WindowStart: end.Add(-window), WindowEnd: end}
}

func (s *redisWindowStore) Current(ctx context.Context, key string, window time.Duration) (WindowState, error) {
	pipe := s.client.Pipeline()
	getCmd := pipe.Get(ctx, redisWindowKeyPrefix+key)
	ttlCmd := pipe.PTTL(ctx, redisWindowKeyPrefix+key)
	_, err := pipe.Exec(ctx)
	if err != nil && err != redis.Nil {
		return WindowState{}, err
	}

	count, _ := getCmd.Int()
	return s.stateFromTTL(count, window, ttlCmd.Val().Milliseconds()), nil
}

func (s *redisWindowStore) Add(ctx context.Context, key string, window time.Duration) (WindowState, error) {
	result, err := addScript.Run(ctx, s.client,
		[]string{redisWindowKeyPrefix + key},
		window.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return WindowState{}, err
	}

	return s.stateFromTTL(int(result[0]), window, result[1]), nil
}

func (s *redisWindowStore) AddIfBelow(ctx context.Context, key string, limit int, window time.Duration) (WindowState, bool, error) {
	result, err := addIfBelowScript.Run(ctx, s.client,
		[]string{redisWindowKeyPrefix + key},
		limit,
		window.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return WindowState{}, false, err
	}

	return s.stateFromTTL(int(result[0]), window, result[2]), result[1] == 1, nil
}
