package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewRedisStoreRequiresAddress(t *testing.T) {
	_, err := NewRedisStore(context.Background(), RedisConfig{Address: "  "})
	require.EqualError(t, err, "redis: address is required")
}

func TestNewRedisStoreFromNilClient(t *testing.T) {
	require.Nil(t, NewRedisStoreFromClient(nil))

	var store *RedisStore
	require.NoError(t, store.Close())
}

func TestPrefixedKeys(t *testing.T) {
	require.Equal(t, "memberhub:ratelimit:x", prefixed("ratelimit:x"))
}

// TestRedisStoreRoundTrip runs against a live server when MEMBERHUB_TEST_REDIS_ADDR is set.
func TestRedisStoreRoundTrip(t *testing.T) {
	addr := os.Getenv("MEMBERHUB_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("MEMBERHUB_TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	store, err := NewRedisStore(ctx, RedisConfig{Address: addr})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	key := "test:" + time.Now().Format(time.RFC3339Nano)
	t.Cleanup(func() { _ = store.Delete(ctx, key, key+":counter") })

	require.NoError(t, store.Set(ctx, key, []byte("value"), time.Minute))
	value, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("value"), value)

	count, ttl, err := store.IncrementWithTTL(ctx, key+":counter", time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
	require.Greater(t, ttl, time.Duration(0))

	count, _, err = store.IncrementWithTTL(ctx, key+":counter", time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)
}
