package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_PerKeyBuckets(t *testing.T) {
	ctx := context.Background()
	l := NewRateLimiter(2, 1, time.Minute)
	now := time.Now()
	l.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "ip:1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, _ := l.Allow(ctx, "ip:1.2.3.4")
	assert.False(t, ok)

	ok, _ = l.Allow(ctx, "user:u1")
	assert.True(t, ok, "other keys keep their own bucket")

	now = now.Add(1100 * time.Millisecond)
	ok, _ = l.Allow(ctx, "ip:1.2.3.4")
	assert.True(t, ok, "one token refilled")
}

func TestRateLimiter_EvictsIdleKeys(t *testing.T) {
	ctx := context.Background()
	l := NewRateLimiter(1, 1, time.Second)
	now := time.Now()
	l.now = func() time.Time { return now }

	for i := 0; i < maxLimiterKeys; i++ {
		_, _ = l.Allow(ctx, string(rune(i)))
	}
	require.Len(t, l.keys, maxLimiterKeys)

	now = now.Add(time.Minute)
	_, _ = l.Allow(ctx, "fresh")
	assert.Len(t, l.keys, 1)
}
