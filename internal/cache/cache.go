package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Sources reported by GetOrCompute.
const (
	SourceCache    = "cache"
	SourceComputed = "computed"
)

// Value stores a computed sum and when it was produced.
type Value struct {
	Sum        int
	Delimiters []string
	ComputedAt time.Time
}

type item struct {
	val       Value
	expiresAt time.Time
}

// Cache provides a TTL cache of sum results with singleflight coalescing per key.
type Cache struct {
	mu       sync.RWMutex
	items    map[string]item
	ttl      time.Duration
	group    singleflight.Group
	stopOnce sync.Once
	stopCh   chan struct{}
}

func New(ttl time.Duration) *Cache {
	return &Cache{items: make(map[string]item), ttl: ttl, stopCh: make(chan struct{})}
}

// StartReaper purges expired entries every interval until Stop is called.
func (c *Cache) StartReaper(interval time.Duration) {
	if interval <= 0 {
		interval = c.ttl
	}
	if interval <= 0 {
		interval = time.Minute
	}
	go c.reap(interval)
}

func (c *Cache) reap(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-c.stopCh:
			return
		case <-t.C:
			c.Purge()
		}
	}
}

// Stop stops the reaper goroutine. It is safe to call more than once.
func (c *Cache) Stop() { c.stopOnce.Do(func() { close(c.stopCh) }) }

// GetOrCompute returns a cached value if valid; otherwise concurrent misses for
// the same key share a single compute call and the result is stored.
// Errors are returned to every waiter and never cached.
func (c *Cache) GetOrCompute(ctx context.Context, key string, compute func(context.Context) (Value, error)) (Value, string, error) {
	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()
	if ok && time.Now().Before(it.expiresAt) {
		return it.val, SourceCache, nil
	}

	ch := c.group.DoChan(key, func() (interface{}, error) {
		v, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.items[key] = item{val: v, expiresAt: time.Now().Add(c.ttl)}
		c.mu.Unlock()
		return v, nil
	})
	select {
	case <-ctx.Done():
		return Value{}, "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Value{}, "", res.Err
		}
		return res.Val.(Value), SourceComputed, nil
	}
}

// Purge drops expired entries and returns how many were removed.
func (c *Cache) Purge() int {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k, it := range c.items {
		if !now.Before(it.expiresAt) {
			delete(c.items, k)
			n++
		}
	}
	return n
}

// Len returns the number of items in the cache (for tests).
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
