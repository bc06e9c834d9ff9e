package kv

import (
	"context"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// INCR and PEXPIRE must land together so a counter created by a racing
// increment still self-cleans when its window closes.
const incrWithTTLScript = `
local value = redis.call("INCR", KEYS[1])
if value == 1 and tonumber(ARGV[1]) > 0 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return value
`

type RedisStore struct {
	client *redis.Client
	incr   *redis.Script
}

func NewRedisStore(client *redis.Client) *RedisStore {
	if client == nil {
		return nil
	}
	return &RedisStore{
		client: client,
		incr:   redis.NewScript(incrWithTTLScript),
	}
}

func (s *RedisStore) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if s == nil || s.client == nil {
		return 0, ErrUnavailable
	}
	res, err := s.incr.Run(ctx, s.client, []string{key}, int64(ttl/time.Millisecond)).Int64()
	if err != nil {
		return 0, wrapUnavailable(err)
	}
	return res, nil
}

func (s *RedisStore) Incr(ctx context.Context, key string) (int64, error) {
	if s == nil || s.client == nil {
		return 0, ErrUnavailable
	}
	res, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, wrapUnavailable(err)
	}
	return res, nil
}

func (s *RedisStore) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	if s == nil || s.client == nil {
		return false, ErrUnavailable
	}
	ok, err := s.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, wrapUnavailable(err)
	}
	return ok, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	if s == nil || s.client == nil {
		return "", ErrUnavailable
	}
	value, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", wrapUnavailable(err)
	}
	return value, nil
}

func wrapUnavailable(err error) error {
	return errors.Join(ErrUnavailable, err)
}

var _ Store = (*RedisStore)(nil)
