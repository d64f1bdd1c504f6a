package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestKV(t *testing.T) (*miniredis.Miniredis, *RedisKV) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return mr, NewRedisKV(client)
}

func TestKV_MissReturnsErrMiss(t *testing.T) {
	_, kv := setupTestKV(t)

	_, err := kv.Get(context.Background(), "absent")

	assert.ErrorIs(t, err, ErrMiss)
}

func TestKV_SetThenGet(t *testing.T) {
	_, kv := setupTestKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "digest", `{"total":5}`, 30*time.Second))

	val, err := kv.Get(ctx, "digest")
	require.NoError(t, err)
	assert.Equal(t, `{"total":5}`, val)
}

func TestKV_EntryExpires(t *testing.T) {
	mr, kv := setupTestKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "digest", "v", 30*time.Second))

	mr.FastForward(31 * time.Second)

	_, err := kv.Get(ctx, "digest")
	assert.ErrorIs(t, err, ErrMiss)
}
