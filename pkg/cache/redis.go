package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/artem13815/jobdash/pkg/job"
)

// NewRedisClient parses redisURL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

const analysisPrefix = "jobdash:analysis:"

// AnalysisCache keeps finished analyses per job URL for ttl.
// Redis errors are logged and treated as a miss.
type AnalysisCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *slog.Logger
}

func NewAnalysisCache(rdb *redis.Client, ttl time.Duration, log *slog.Logger) *AnalysisCache {
	if log == nil {
		log = slog.Default()
	}
	return &AnalysisCache{rdb: rdb, ttl: ttl, log: log}
}

func (c *AnalysisCache) Get(ctx context.Context, url string) (job.Analysis, bool) {
	raw, err := c.rdb.Get(ctx, analysisPrefix+url).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("analysis cache read failed", "url", url, "err", err)
		}
		return job.Analysis{}, false
	}
	var a job.Analysis
	if err := json.Unmarshal(raw, &a); err != nil {
		c.log.Warn("analysis cache entry is corrupt", "url", url, "err", err)
		return job.Analysis{}, false
	}
	return a, true
}

func (c *AnalysisCache) Set(ctx context.Context, url string, a job.Analysis) {
	raw, err := json.Marshal(a)
	if err != nil {
		c.log.Warn("analysis cache encode failed", "url", url, "err", err)
		return
	}
	if err := c.rdb.Set(ctx, analysisPrefix+url, raw, c.ttl).Err(); err != nil {
		c.log.Warn("analysis cache write failed", "url", url, "err", err)
	}
}

// Invalidate drops one cached analysis, e.g. after the posting changed.
func (c *AnalysisCache) Invalidate(ctx context.Context, url string) error {
	if err := c.rdb.Del(ctx, analysisPrefix+url).Err(); err != nil {
		return fmt.Errorf("invalidate analysis cache: %w", err)
	}
	return nil
}
