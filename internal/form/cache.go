package form

import (
	"sync"
	"time"
)

// DefaultCacheTTL is how long a form session is remembered.
const DefaultCacheTTL = 6 * time.Hour

// Cache remembers, per form build ID, whether the form has been previewed.
// Entries expire after the TTL.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]time.Time // build ID -> expiry
	now     func() time.Time
}

// NewCache creates a cache. A non-positive ttl uses DefaultCacheTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{ttl: ttl, entries: map[string]time.Time{}, now: time.Now}
}

// MarkPreviewed records that the form session buildID rendered a preview.
func (c *Cache) MarkPreviewed(buildID string) {
	if buildID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweepLocked()
	c.entries[buildID] = c.now().Add(c.ttl)
}

// Previewed reports whether buildID has a live preview record.
func (c *Cache) Previewed(buildID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	exp, ok := c.entries[buildID]
	if !ok {
		return false
	}
	if !c.now().Before(exp) {
		delete(c.entries, buildID)
		return false
	}
	return true
}

// Forget drops buildID, e.g. once the form has been saved.
func (c *Cache) Forget(buildID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, buildID)
}

func (c *Cache) sweepLocked() {
	now := c.now()
	for id, exp := range c.entries {
		if !now.Before(exp) {
			delete(c.entries, id)
		}
	}
}
