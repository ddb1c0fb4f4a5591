package checkers

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisChecker struct {
	rdb *redis.Client
}

func NewRedisChecker(rdb *redis.Client) *RedisChecker {
	return &RedisChecker{rdb: rdb}
}

func (c *RedisChecker) Name() string { return "redis" }

// Optional: without the cache analysis only gets slower.
func (c *RedisChecker) Optional() bool { return true }

func (c *RedisChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	return c.rdb.Ping(ctx).Err()
}
