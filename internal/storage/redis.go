package storage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

func NewRedisClient(addr string) *redis.Client {
	r := redis.NewClient(&redis.Options{Addr: addr})
	_ = r.WithTimeout(2 * time.Second)
	return r
}

// Redis keeps every collection as one plain string value, no TTL. Default
// backend for deployments.
type Redis struct{ RDB *redis.Client }

func (s *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.RDB.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *Redis) Set(ctx context.Context, key, value string) error {
	return s.RDB.Set(ctx, key, value, 0).Err()
}

func (s *Redis) Delete(ctx context.Context, key string) error {
	return s.RDB.Del(ctx, key).Err()
}
