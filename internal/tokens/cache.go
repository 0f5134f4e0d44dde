// Package tokens manages the OAuth token lifecycle: persistence through the
// token repository, refresh against provider token endpoints, and a small
// process-local validity cache that bounds redundant expiry checks.
package tokens

import (
	"sync"
	"time"
)

// ValidityCache remembers recent token validity verdicts. It is not a source
// of truth: the persisted token row stays authoritative, entries expire after
// a fixed TTL, and the oldest entries are evicted once the capacity bound is
// exceeded. The mutex is only ever held across map operations.
type ValidityCache struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	entries  map[string]validityEntry

	now func() time.Time
}

type validityEntry struct {
	checkedAt time.Time
	valid     bool
}

func NewValidityCache(ttl time.Duration, capacity int) *ValidityCache {
	if capacity <= 0 {
		capacity = 256
	}
	return &ValidityCache{
		ttl:      ttl,
		capacity: capacity,
		entries:  make(map[string]validityEntry),
		now:      time.Now,
	}
}

// Lookup returns the cached verdict for a key. Entries older than the TTL
// are treated as absent and removed.
func (c *ValidityCache) Lookup(key string) (valid, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return false, false
	}
	if c.now().Sub(entry.checkedAt) > c.ttl {
		delete(c.entries, key)
		return false, false
	}
	return entry.valid, true
}

// Store records a verdict, evicting the oldest entries when the capacity
// bound is exceeded.
func (c *ValidityCache) Store(key string, valid bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = validityEntry{checkedAt: c.now(), valid: valid}

	for len(c.entries) > c.capacity {
		var (
			oldestKey string
			oldestAt  time.Time
		)
		for k, e := range c.entries {
			if oldestKey == "" || e.checkedAt.Before(oldestAt) {
				oldestKey = k
				oldestAt = e.checkedAt
			}
		}
		delete(c.entries, oldestKey)
	}
}

// Invalidate drops a key outright, e.g. after a disconnect.
func (c *ValidityCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len reports the current entry count.
func (c *ValidityCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
