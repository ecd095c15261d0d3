// internal/cache/ttl.go
//
// Small time-windowed cache fronting read-heavy, low-cardinality
// queries (region list, top-provider list, FAQ).  Entries are
// invalidated purely by expiry, never by write-triggered invalidation;
// catalog writes are rare admin actions, so short staleness is fine.
//
// The cache is injectable: handlers receive a *TTL and tests can pass a
// fresh instance (or none at all).  Concurrent loads of the same key
// are collapsed through singleflight.
package cache

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/serverplace/serverplace/internal/metrics"
)

// SweepInterval is how often the background sweeper drops expired
// entries.  Expired entries are also skipped on read, so the sweeper
// only bounds memory, not correctness.
const SweepInterval = 5 * time.Minute

// TTL is a string-keyed value cache with per-entry expiry.
type TTL struct {
	mu      sync.RWMutex
	entries map[string]entry
	sfg     singleflight.Group
	stop    chan struct{}
	now     func() time.Time // injectable clock for tests
}

type entry struct {
	val any
	exp time.Time
}

// New constructs a TTL cache and starts its background sweeper.
func New() *TTL {
	c := &TTL{
		entries: make(map[string]entry),
		stop:    make(chan struct{}),
		now:     time.Now,
	}
	go c.sweepLoop()
	return c
}

// Get returns the cached value for key, or ok == false when the key is
// absent or expired.
func (c *TTL) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.now().After(e.exp) {
		metrics.CacheMissTotal.Inc()
		return nil, false
	}
	metrics.CacheHitTotal.Inc()
	return e.val, true
}

// Set stores val under key for ttl.
func (c *TTL) Set(key string, val any, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = entry{val: val, exp: c.now().Add(ttl)}
	metrics.CacheEntries.Set(float64(len(c.entries)))
	c.mu.Unlock()
}

// GetOrLoad returns the cached value for key, computing and storing it
// via load on a miss.  Concurrent callers for the same key share one
// load; a failed load caches nothing.
func (c *TTL) GetOrLoad(key string, ttl time.Duration, load func() (any, error)) (any, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err, _ := c.sfg.Do(key, func() (any, error) {
		// Double-check after the singleflight barrier.
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		v, err := load()
		if err != nil {
			return nil, err
		}
		c.Set(key, v, ttl)
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Close stops the background sweeper.
func (c *TTL) Close() { close(c.stop) }

func (c *TTL) sweepLoop() {
	t := time.NewTicker(SweepInterval)
	defer t.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-t.C:
			now := c.now()
			c.mu.Lock()
			for k, e := range c.entries {
				if now.After(e.exp) {
					delete(c.entries, k)
				}
			}
			metrics.CacheEntries.Set(float64(len(c.entries)))
			c.mu.Unlock()
		}
	}
}
