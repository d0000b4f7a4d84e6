package memory

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/cyberio/backend/internal/core/ports"
)

const maxLimiterKeys = 10000

type limiterState struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per key in process memory. Buckets idle
// for longer than idleTTL are dropped once the key count grows large.
type RateLimiter struct {
	mu      sync.Mutex
	keys    map[string]*limiterState
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time
}

var _ ports.RateLimiter = (*RateLimiter)(nil)

func NewRateLimiter(capacity int, refillPerSecond float64, idleTTL time.Duration) *RateLimiter {
	if capacity < 1 {
		capacity = 1
	}
	return &RateLimiter{
		keys:    make(map[string]*limiterState),
		limit:   rate.Limit(refillPerSecond),
		burst:   capacity,
		idleTTL: idleTTL,
		now:     time.Now,
	}
}

func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	st := l.keys[key]
	if st == nil {
		if len(l.keys) >= maxLimiterKeys {
			l.evictIdle(now)
		}
		st = &limiterState{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.keys[key] = st
	}
	st.lastSeen = now
	return st.limiter.AllowN(now, 1), nil
}

func (l *RateLimiter) evictIdle(now time.Time) {
	for k, st := range l.keys {
		if now.Sub(st.lastSeen) > l.idleTTL {
			delete(l.keys, k)
		}
	}
}
