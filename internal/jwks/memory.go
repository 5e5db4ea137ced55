package jwks

import (
	"context"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"golang.org/x/sync/singleflight"
)

// MemoryCache keeps the last fetched key set for at most ttl.
// Concurrent misses share a single upstream fetch; each caller waits on it
// only as long as its own context allows.
type MemoryCache struct {
	src   Source
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	mu        sync.RWMutex
	set       jwk.Set
	fetchedAt time.Time
}

// NewMemoryCache wraps src. A non-positive ttl disables caching.
func NewMemoryCache(src Source, ttl time.Duration) *MemoryCache {
	return &MemoryCache{src: src, ttl: ttl, now: time.Now}
}

// KeySet returns the cached set or fetches a fresh one.
func (c *MemoryCache) KeySet(ctx context.Context) (jwk.Set, error) {
	if set, ok := c.cached(); ok {
		return set, nil
	}

	// The shared fetch must outlive any single caller; the source bounds it
	// with its own timeout.
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan("jwks", func() (any, error) {
		if set, ok := c.cached(); ok {
			return set, nil
		}
		set, err := c.src.KeySet(fetchCtx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.set = set
		c.fetchedAt = c.now()
		c.mu.Unlock()
		return set, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(jwk.Set), nil
	}
}

// Invalidate drops the cached set so the next call re-fetches.
func (c *MemoryCache) Invalidate(context.Context) error {
	c.mu.Lock()
	c.set = nil
	c.fetchedAt = time.Time{}
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) cached() (jwk.Set, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.set == nil || c.now().Sub(c.fetchedAt) >= c.ttl {
		return nil, false
	}
	return c.set, true
}
