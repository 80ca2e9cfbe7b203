package ratelimit

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s, err := NewRedisStore(mr.Addr(), "", 0, "ratelimit:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestRedisStore_Incr(t *testing.T) {
	s, mr := newTestRedisStore(t)
	ctx := context.Background()

	count, ttl, err := s.Incr(ctx, "login:1.2.3.4", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, time.Minute, ttl)

	count, _, err = s.Incr(ctx, "login:1.2.3.4", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	assert.True(t, mr.Exists("ratelimit:login:1.2.3.4"))
	assert.Equal(t, time.Minute, mr.TTL("ratelimit:login:1.2.3.4"))

	mr.FastForward(61 * time.Second)
	count, _, err = s.Incr(ctx, "login:1.2.3.4", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "window resets after expiry")
}

func TestRedisStore_RepairsMissingTTL(t *testing.T) {
	s, mr := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("ratelimit:k", "3"))

	count, ttl, err := s.Incr(ctx, "k", 30*time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
	assert.Equal(t, 30*time.Second, ttl)
	assert.Equal(t, 30*time.Second, mr.TTL("ratelimit:k"))
}

func TestNewRedisStore_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisStore(addr, "", 0, "")
	assert.Error(t, err)
}

func TestRedisStore_ErrorAfterClose(t *testing.T) {
	s, mr := newTestRedisStore(t)
	mr.Close()

	_, _, err := s.Incr(context.Background(), "k", time.Minute)
	assert.Error(t, err)
}
