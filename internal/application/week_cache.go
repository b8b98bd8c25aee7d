package application

import (
	"sync"
	"time"

	"github.com/example/room-reservations/internal/grid"
)

// weekCache memoizes recently built week grids so repeated calendar views
// do not re-run the layout engine while the store is unchanged. Every
// store mutation invalidates the whole cache; entries also age out.
type weekCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]weekCacheEntry
}

type weekCacheEntry struct {
	week      grid.Week
	expiresAt time.Time
}

func newWeekCache(ttl time.Duration, maxEntries int, now func() time.Time) *weekCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 64
	}
	if now == nil {
		now = time.Now
	}
	return &weekCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]weekCacheEntry),
	}
}

func (c *weekCache) Get(key string) (grid.Week, bool) {
	if c == nil {
		return grid.Week{}, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return grid.Week{}, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return grid.Week{}, false
	}
	return entry.week, true
}

func (c *weekCache) Store(key string, week grid.Week) {
	if c == nil {
		return
	}
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.dropExpiredLocked()
	if len(c.entries) >= c.maxEntries {
		c.evictOldestLocked()
	}
	c.entries[key] = weekCacheEntry{week: week, expiresAt: expiry}
}

func (c *weekCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]weekCacheEntry)
	c.mu.Unlock()
}

func (c *weekCache) dropExpiredLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *weekCache) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	for key, entry := range c.entries {
		if oldestKey == "" || entry.expiresAt.Before(oldest) {
			oldestKey = key
			oldest = entry.expiresAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}
