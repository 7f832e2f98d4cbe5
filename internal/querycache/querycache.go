// Package querycache memoizes per-request on-demand ("query") check
// results so that a burst of identical HTTP requests does not amplify
// into a burst of probes. No LRU or capacity bound: the key space is the
// set of distinct query strings a load balancer actually sends, not an
// attacker-controlled input, so a plain (Outcome, timestamp) map is
// enough.
package querycache

import (
	"sync"
	"time"

	"github.com/rscheck/rscheck/internal/model"
)

type entry struct {
	outcome   model.Outcome
	timestamp time.Time
}

// Cache is a thread-safe map of query key to cached outcome.
type Cache struct {
	mu   sync.Mutex
	data map[string]entry
}

// New creates an empty Cache.
func New() *Cache {
	return &Cache{data: make(map[string]entry)}
}

// Lookup returns a cached outcome for key if one exists and its age is at
// most ttl. The bool is false on a miss (absent or stale entry); stale
// entries are not evicted here, that is Sweep's job.
func (c *Cache) Lookup(key string, ttl time.Duration) (model.Outcome, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.data[key]
	if !ok {
		return model.Outcome{}, false
	}
	if time.Since(e.timestamp) > ttl {
		return model.Outcome{}, false
	}
	return e.outcome, true
}

// Store upserts outcome for key. The outcome's own Timestamp is
// authoritative for expiry, not the call time.
func (c *Cache) Store(key string, outcome model.Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = entry{outcome: outcome, timestamp: outcome.Timestamp}
}

// Sweep removes every entry older than ttl and returns how many it removed.
// It holds the cache lock for the whole pass, so concurrent Lookup/Store
// calls wait until the sweep has finished.
func (c *Cache) Sweep(ttl time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	now := time.Now()
	for key, e := range c.data {
		if now.Sub(e.timestamp) > ttl {
			delete(c.data, key)
			removed++
		}
	}
	return removed
}

// Len reports the current entry count, for tests and diagnostics.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}
