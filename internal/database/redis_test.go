package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getTestRedis(t *testing.T) *Redis {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		t.Skipf("Redis not available: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return NewRedis(client)
}

func TestRedisLock(t *testing.T) {
	r := getTestRedis(t)
	ctx := context.Background()
	key := "invoice:" + uuid.NewString()

	ok, err := r.TryLock(ctx, key, "owner-a", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.TryLock(ctx, key, "owner-b", 5*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	// A foreign token cannot release the lock.
	require.NoError(t, r.Unlock(ctx, key, "owner-b"))
	ok, err = r.TryLock(ctx, key, "owner-b", 5*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.Unlock(ctx, key, "owner-a"))
	ok, err = r.TryLock(ctx, key, "owner-b", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, r.Unlock(ctx, key, "owner-b"))
}

func TestRedisLockExpires(t *testing.T) {
	r := getTestRedis(t)
	ctx := context.Background()
	key := "invoice:" + uuid.NewString()

	ok, err := r.TryLock(ctx, key, "crashed", 100*time.Millisecond)
	require.NoError(t, err)
	require.True(t, ok)

	time.Sleep(200 * time.Millisecond)

	ok, err = r.TryLock(ctx, key, "next", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, r.Unlock(ctx, key, "next"))
}
