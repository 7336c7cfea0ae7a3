// Package ratelimit provides the per-user token bucket injected into the
// generation handlers.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter decides whether a keyed request may proceed.
type Limiter interface {
	Allow(key string) bool
}

const defaultIdleTTL = 10 * time.Minute

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// TokenBucket keeps one rate.Limiter per key and forgets keys idle for
// longer than the idle TTL.
type TokenBucket struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	entries   map[string]*entry
	now       func() time.Time
}

// NewTokenBucket refills perMinute tokens per minute up to burst. A
// non-positive perMinute disables limiting.
func NewTokenBucket(perMinute, burst int) *TokenBucket {
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(perMinute))
	}
	if burst < 1 {
		burst = 1
	}
	return &TokenBucket{
		limit:   limit,
		burst:   burst,
		idleTTL: defaultIdleTTL,
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Allow takes one token from key's bucket.
func (b *TokenBucket) Allow(key string) bool {
	now := b.now()
	b.mu.Lock()
	defer b.mu.Unlock()

	if now.Sub(b.lastSweep) > b.idleTTL {
		for k, e := range b.entries {
			if now.Sub(e.lastSeen) > b.idleTTL {
				delete(b.entries, k)
			}
		}
		b.lastSweep = now
	}

	e, ok := b.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(b.limit, b.burst)}
		b.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// Len reports how many keys are tracked.
func (b *TokenBucket) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

var _ Limiter = (*TokenBucket)(nil)
