package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"consultation/infras/otel/mocks"
	"consultation/shared/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type categoryEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func newCache(t *testing.T) (cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})

	t.Cleanup(func() { _ = client.Close() })

	return cache.NewRedisCache(client, mocks.NewOtel()), server
}

func TestRedisCache_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	c, server := newCache(t)

	require.NoError(t, c.Save(ctx, "category:org-1:c1", categoryEntry{ID: "c1", Name: "Dermatology"}, 60))
	assert.True(t, server.Exists("category:org-1:c1"))

	var got categoryEntry
	require.NoError(t, c.Get(ctx, "category:org-1:c1", &got))
	assert.Equal(t, categoryEntry{ID: "c1", Name: "Dermatology"}, got)

	require.NoError(t, c.Save(ctx, "raw", "plain", 60))

	var raw string
	require.NoError(t, c.Get(ctx, "raw", &raw))
	assert.Equal(t, "plain", raw)
}

func TestRedisCache_GetMiss(t *testing.T) {
	c, _ := newCache(t)

	var got categoryEntry
	err := c.Get(context.Background(), "missing", &got)

	require.Error(t, err)
	assert.True(t, errors.Is(err, cache.Nil))
}

func TestRedisCache_DeleteAndClear(t *testing.T) {
	ctx := context.Background()
	c, server := newCache(t)

	require.NoError(t, c.Save(ctx, "consultation:org-1:a", "1", 60))
	require.NoError(t, c.Save(ctx, "consultation:org-1:b", "2", 60))
	require.NoError(t, c.Save(ctx, "category:org-1:a", "3", 60))

	require.NoError(t, c.Delete(ctx, "category:org-1:a"))
	assert.False(t, server.Exists("category:org-1:a"))

	require.NoError(t, c.Clear(ctx, "consultation:org-1*"))
	assert.False(t, server.Exists("consultation:org-1:a"))
	assert.False(t, server.Exists("consultation:org-1:b"))
}

func TestRedisCache_Increment(t *testing.T) {
	ctx := context.Background()
	c, server := newCache(t)

	first, err := c.Increment(ctx, "limiter:ip", 60)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first)

	server.FastForward(30 * time.Second)

	second, err := c.Increment(ctx, "limiter:ip", 60)
	require.NoError(t, err)
	assert.Equal(t, int64(2), second)
	assert.Equal(t, 30*time.Second, server.TTL("limiter:ip"))

	server.FastForward(31 * time.Second)
	assert.False(t, server.Exists("limiter:ip"))
}
