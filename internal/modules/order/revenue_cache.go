// README: Redis-backed revenue snapshot cache.
package order

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisRevenueCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisRevenueCache(rdb redis.Cmdable, ttl time.Duration) *RedisRevenueCache {
	return &RedisRevenueCache{rdb: rdb, ttl: ttl}
}

func (c *RedisRevenueCache) Get(ctx context.Context, key string) (Revenue, bool, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Revenue{}, false, nil
	}
	if err != nil {
		return Revenue{}, false, err
	}
	var r Revenue
	if err := json.Unmarshal(b, &r); err != nil {
		return Revenue{}, false, err
	}
	return r, true, nil
}

func (c *RedisRevenueCache) Set(ctx context.Context, key string, r Revenue) error {
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, b, c.ttl).Err()
}
