//go:build integration

package cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cartkeep/pkg/cache"
	"github.com/dmitrymomot/cartkeep/pkg/redis"
)

const testRedisURL = "redis://localhost:6379/0"

func newTestRedisClient(t *testing.T) goredis.UniversalClient {
	t.Helper()

	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = testRedisURL
	}

	ctx := context.Background()
	client, err := redis.Open(ctx, url)
	require.NoError(t, err, "failed to connect to Redis")

	t.Cleanup(func() {
		_ = client.Close()
	})

	return client
}

type record struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func TestRedis_RoundTrip(t *testing.T) {
	client := newTestRedisClient(t)
	c := cache.NewRedis[record](client, nil, cache.WithPrefix("test-roundtrip"))
	ctx := context.Background()
	t.Cleanup(func() { _ = c.Clear(ctx) })

	_, err := c.Get(ctx, "missing")
	require.ErrorIs(t, err, cache.ErrNotFound)

	require.NoError(t, c.Set(ctx, "k1", record{Key: "k1", Value: "v"}, time.Minute))

	got, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	require.Equal(t, "v", got.Value)

	require.NoError(t, c.Delete(ctx, "k1"))
	has, err := c.Has(ctx, "k1")
	require.NoError(t, err)
	require.False(t, has)
}

func TestRedis_ClearOnlyNamespace(t *testing.T) {
	client := newTestRedisClient(t)
	ctx := context.Background()

	carts := cache.NewRedis[string](client, nil, cache.WithPrefix("test-clear-carts"), cache.WithScanCount(2))
	other := cache.NewRedis[string](client, nil, cache.WithPrefix("test-clear-other"))
	t.Cleanup(func() { _ = other.Clear(ctx) })

	for _, k := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, carts.Set(ctx, k, k, time.Minute))
	}
	require.NoError(t, other.Set(ctx, "a", "keep", time.Minute))

	require.NoError(t, carts.Clear(ctx))

	has, err := carts.Has(ctx, "c")
	require.NoError(t, err)
	require.False(t, has)

	val, err := other.Get(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, "keep", val)
}
