package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyberio/backend/internal/config"
	"github.com/cyberio/backend/internal/domain"
	"github.com/cyberio/backend/internal/infrastructure/logger"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestNewRedisClient(t *testing.T) {
	mr, _ := newTestRedis(t)

	client, err := NewRedisClient(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	client.Close()

	mr.Close()
	_, err = NewRedisClient(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	assert.Error(t, err)
}

func TestSessionStore(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	store := NewSessionStore(client, logger.NewNop())

	expires := time.Now().Add(time.Hour)
	require.NoError(t, store.Save(ctx, &domain.Session{ID: "s1", UserID: "u1", Email: "a@b.c", ExpiresAt: &expires}))
	assert.True(t, mr.Exists("session:s1"))
	assert.InDelta(t, time.Hour.Seconds(), mr.TTL("session:s1").Seconds(), 5)

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)

	mr.FastForward(2 * time.Hour)
	_, err = store.Get(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.Save(ctx, &domain.Session{ID: "s2", UserID: "u1"}))
	assert.Equal(t, time.Duration(0), mr.TTL("session:s2"), "sessions without expiry never expire")
	require.NoError(t, store.Delete(ctx, "s2"))
	_, err = store.Get(ctx, "s2")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	past := time.Now().Add(-time.Second)
	assert.ErrorIs(t, store.Save(ctx, &domain.Session{ID: "s3", ExpiresAt: &past}), domain.ErrValidation)
}

func TestTokenBucket(t *testing.T) {
	ctx := context.Background()
	_, client := newTestRedis(t)
	bucket := NewTokenBucket(client, 2, 1, time.Minute)

	now := time.Now()
	bucket.now = func() time.Time { return now }

	allowed, err := bucket.Allow(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, tokens, err := bucket.Take(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, float64(0), tokens)

	allowed, err = bucket.Allow(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = bucket.Allow(ctx, "user-2")
	require.NoError(t, err)
	assert.True(t, allowed, "buckets are per key")

	// The script takes time from the caller, so refill is driven by the
	// bucket clock rather than miniredis.
	now = now.Add(1500 * time.Millisecond)
	allowed, err = bucket.Allow(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, allowed)
}
