package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// takeScript performs the conditional increment server-side so the
// read-check-increment sequence is atomic per key. The key's TTL is the
// window; redis expiry makes "expired record" and "absent record"
// literally the same case. Returns {count, admitted, pttl_ms}.
var takeScript = redis.NewScript(`
local count = redis.call("GET", KEYS[1])
if not count then
  redis.call("SET", KEYS[1], 1, "PX", ARGV[2])
  return {1, 1, tonumber(ARGV[2])}
end
count = tonumber(count)
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  ttl = tonumber(ARGV[2])
end
if count < tonumber(ARGV[1]) then
  count = redis.call("INCR", KEYS[1])
  return {count, 1, ttl}
end
return {count, 0, ttl}
`)

// RedisStore is a Store shared by every instance of the fleet.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a RedisStore from a redis URL and verifies the
// connection.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

// Client returns the underlying redis client.
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

// Close closes the redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Take implements Store.
func (s *RedisStore) Take(ctx context.Context, key string, limit int64, window time.Duration) (Record, bool, error) {
	res, err := takeScript.Run(ctx, s.client, []string{key}, limit, window.Milliseconds()).Slice()
	if err != nil {
		return Record{}, false, fmt.Errorf("rate limit take: %w", err)
	}
	if len(res) != 3 {
		return Record{}, false, fmt.Errorf("rate limit take: unexpected reply %v", res)
	}

	count, _ := res[0].(int64)
	admitted, _ := res[1].(int64)
	ttlMillis, _ := res[2].(int64)

	rec := Record{
		Count:   count,
		ResetAt: time.Now().Add(time.Duration(ttlMillis) * time.Millisecond),
	}
	return rec, admitted == 1, nil
}
