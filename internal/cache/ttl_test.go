// internal/cache/ttl_test.go
//
// Unit-tests for the TTL cache.
//
// Run: go test ./internal/cache -v

package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// newTestCache returns a cache with a controllable clock and no sweeper.
func newTestCache(now *time.Time) *TTL {
	c := &TTL{
		entries: make(map[string]entry),
		stop:    make(chan struct{}),
		now:     func() time.Time { return *now },
	}
	return c
}

func TestGetSetExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := newTestCache(&now)

	c.Set("regions", []string{"msk", "spb"}, time.Minute)

	if v, ok := c.Get("regions"); !ok {
		t.Fatal("expected hit before expiry")
	} else if got := v.([]string); len(got) != 2 {
		t.Fatalf("unexpected value: %#v", got)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("regions"); ok {
		t.Fatal("expected miss after expiry")
	}
}

func TestGetOrLoadSingleflight(t *testing.T) {
	now := time.Now()
	c := newTestCache(&now)

	var loads int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.GetOrLoad("top", time.Minute, func() (any, error) {
				atomic.AddInt32(&loads, 1)
				time.Sleep(10 * time.Millisecond) // widen the race window
				return 42, nil
			})
			if err != nil {
				t.Errorf("GetOrLoad: %v", err)
				return
			}
			if v.(int) != 42 {
				t.Errorf("unexpected value %v", v)
			}
		}()
	}
	wg.Wait()

	if n := atomic.LoadInt32(&loads); n != 1 {
		t.Fatalf("expected one shared load, got %d", n)
	}
}

func TestGetOrLoadErrorNotCached(t *testing.T) {
	now := time.Now()
	c := newTestCache(&now)

	boom := errors.New("store down")
	if _, err := c.GetOrLoad("k", time.Minute, func() (any, error) {
		return nil, boom
	}); !errors.Is(err, boom) {
		t.Fatalf("expected load error, got %v", err)
	}

	// The failure must not leave an entry behind.
	if _, ok := c.Get("k"); ok {
		t.Fatal("error result was cached")
	}
}
