package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XavierBriggs/fortuna/services/value-engine/internal/cache"
)

const analysisKey = "value-engine:analysis:E0:fixture-1"

func newRedisCache(t *testing.T, now *time.Time) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return cache.NewRedisCacheWithClock(client, 24*time.Hour, func() time.Time { return *now }), mr
}

func TestRedisCache_Freshness(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c, mr := newRedisCache(t, &now)

	_, ok, err := c.Get(ctx, "E0:fixture-1", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok, "empty cache must miss")

	require.NoError(t, c.Put(ctx, "E0:fixture-1", []byte(`{"a":1}`)))
	assert.Equal(t, 24*time.Hour, mr.TTL(analysisKey), "retention bounds the key lifetime")

	now = now.Add(30 * time.Minute)
	value, ok, err := c.Get(ctx, "E0:fixture-1", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"a":1}`, string(value))

	// The same entry is stale under a tighter window
	_, ok, err = c.Get(ctx, "E0:fixture-1", 10*time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	now = now.Add(2 * time.Hour)
	_, ok, err = c.Get(ctx, "E0:fixture-1", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok, "entry older than maxAge must miss")
}

func TestRedisCache_MalformedTimestamp(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c, mr := newRedisCache(t, &now)

	mr.HSet(analysisKey, "stored_at", "yesterday", "value", `{"a":1}`)
	_, ok, err := c.Get(ctx, "E0:fixture-1", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok, "corrupt stored_at must miss")

	mr.Del(analysisKey)
	mr.HSet(analysisKey, "value", `{"a":1}`)
	_, ok, err = c.Get(ctx, "E0:fixture-1", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok, "missing stored_at must miss")
}

func TestRedisCache_ServerDown(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	c, mr := newRedisCache(t, &now)

	mr.Close()

	_, ok, err := c.Get(ctx, "E0:fixture-1", time.Hour)
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, c.Put(ctx, "E0:fixture-1", []byte("v")))
}
