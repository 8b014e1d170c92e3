package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "value-engine:analysis:"

// RedisCache stores analysis payloads in Redis hashes stamped with their write time
// Freshness is decided on read against the caller's maxAge; retention only bounds memory.
type RedisCache struct {
	client    *redis.Client
	retention time.Duration
	now       func() time.Time
}

// NewRedisCache creates a Redis-backed AnalysisCache
func NewRedisCache(client *redis.Client, retention time.Duration) *RedisCache {
	return NewRedisCacheWithClock(client, retention, time.Now)
}

// NewRedisCacheWithClock creates a Redis-backed AnalysisCache with an injectable clock
func NewRedisCacheWithClock(client *redis.Client, retention time.Duration, now func() time.Time) *RedisCache {
	return &RedisCache{
		client:    client,
		retention: retention,
		now:       now,
	}
}

// Get implements AnalysisCache
func (c *RedisCache) Get(ctx context.Context, key string, maxAge time.Duration) ([]byte, bool, error) {
	fields, err := c.client.HGetAll(ctx, keyPrefix+key).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache key %s: %w", key, err)
	}
	if len(fields) == 0 {
		return nil, false, nil
	}

	storedAt, err := strconv.ParseInt(fields["stored_at"], 10, 64)
	if err != nil {
		return nil, false, nil
	}
	if c.now().Sub(time.Unix(0, storedAt)) > maxAge {
		return nil, false, nil
	}

	return []byte(fields["value"]), true, nil
}

// Put implements AnalysisCache
func (c *RedisCache) Put(ctx context.Context, key string, value []byte) error {
	redisKey := keyPrefix + key

	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, redisKey, map[string]interface{}{
		"stored_at": strconv.FormatInt(c.now().UnixNano(), 10),
		"value":     string(value),
	})
	if c.retention > 0 {
		pipe.Expire(ctx, redisKey, c.retention)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write cache key %s: %w", key, err)
	}
	return nil
}
