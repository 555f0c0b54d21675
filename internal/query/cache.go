// ABOUTME: Thread-safe TTL cache of backend reads, scoped per signed-in subject
// ABOUTME: Coalesces identical concurrent loads and drops entries by key prefix on invalidation

package query

import (
	"container/list"
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type cacheEntry struct {
	scope   string
	key     Key
	value   any
	stored  time.Time
	element *list.Element
}

// Cache holds recent backend reads. Entries are keyed by (scope, Key) where
// scope is the signed-in subject, since the backend may answer differently
// per caller. Eviction is oldest-first once maxSize is reached.
type Cache struct {
	mu         sync.RWMutex
	entries    map[string]*cacheEntry
	order      *list.List // oldest at front
	ttl        time.Duration
	maxSize    int
	generation uint64
	group      singleflight.Group
	done       chan struct{}
	closed     bool
}

// NewCache creates a cache and starts its cleanup goroutine.
func NewCache(ttl time.Duration, maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = 1
	}
	c := &Cache{
		entries: make(map[string]*cacheEntry),
		order:   list.New(),
		ttl:     ttl,
		maxSize: maxSize,
		done:    make(chan struct{}),
	}
	go c.cleanup()
	return c
}

func entryID(scope string, k Key) string {
	return scope + "\x1e" + k.encode()
}

// Get returns a live cached value.
func (c *Cache) Get(scope string, k Key) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[entryID(scope, k)]
	if !ok || c.expired(e, time.Now()) {
		return nil, false
	}
	return e.value, true
}

// Set stores a value, evicting the oldest entry when full.
func (c *Cache) Set(scope string, k Key, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(scope, k, v)
}

func (c *Cache) setLocked(scope string, k Key, v any) {
	id := entryID(scope, k)
	now := time.Now()

	if e, ok := c.entries[id]; ok {
		e.value = v
		e.stored = now
		c.order.MoveToBack(e.element)
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	e := &cacheEntry{scope: scope, key: append(Key(nil), k...), value: v, stored: now}
	e.element = c.order.PushBack(id)
	c.entries[id] = e
}

func (c *Cache) evictOldest() {
	front := c.order.Front()
	if front == nil {
		return
	}
	id, _ := front.Value.(string)
	c.order.Remove(front)
	delete(c.entries, id)
}

func (c *Cache) expired(e *cacheEntry, now time.Time) bool {
	return c.ttl > 0 && now.Sub(e.stored) >= c.ttl
}

// Invalidate drops every entry whose key starts with prefix, in all scopes,
// and returns how many were removed. Loads already in flight when this is
// called will not store their results.
func (c *Cache) Invalidate(prefix Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	removed := 0
	for id, e := range c.entries {
		if e.key.HasPrefix(prefix) {
			c.order.Remove(e.element)
			delete(c.entries, id)
			removed++
		}
	}
	return removed
}

// DropScope removes every entry belonging to one subject, used at sign-out.
// Loads already in flight when this is called will not store their results.
func (c *Cache) DropScope(scope string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	removed := 0
	for id, e := range c.entries {
		if e.scope == scope {
			c.order.Remove(e.element)
			delete(c.entries, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, live or not yet cleaned up.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) currentGeneration() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// storeIfCurrent stores v unless an invalidation happened since gen was read.
func (c *Cache) storeIfCurrent(gen uint64, scope string, k Key, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != gen || c.closed {
		return
	}
	c.setLocked(scope, k, v)
}

// Fetch returns the cached value for (scope, k) or runs load once for all
// concurrent callers asking for the same key. Errors are never cached.
// The shared load is detached from the first caller's cancellation; each
// caller stops waiting when its own ctx is done.
func Fetch[T any](ctx context.Context, c *Cache, scope string, k Key, load func(context.Context) (T, error)) (T, error) {
	if v, ok := c.Get(scope, k); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}

	gen := c.currentGeneration()
	flight := strconv.FormatUint(gen, 10) + "\x1e" + entryID(scope, k)

	ch := c.group.DoChan(flight, func() (any, error) {
		v, err := load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.storeIfCurrent(gen, scope, k, v)
		return v, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		typed, _ := res.Val.(T)
		return typed, nil
	}
}

func (c *Cache) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.runCleanup()
		case <-c.done:
			return
		}
	}
}

func (c *Cache) runCleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for id, e := range c.entries {
		if c.expired(e, now) {
			c.order.Remove(e.element)
			delete(c.entries, id)
		}
	}
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
}
