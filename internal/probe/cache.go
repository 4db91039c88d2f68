package probe

import (
	"strings"
	"sync"
	"time"

	"anna.local/annad/internal/model"
)

type cacheKey string

func makeCacheKey(probeID string, commandVec []string) cacheKey {
	return cacheKey(probeID + "|" + strings.Join(commandVec, "\x1f"))
}

type cacheEntry struct {
	evidence  model.Evidence
	expiresAt time.Time // zero = never expires (Static class)
}

// Cache is a process-wide, key-partitioned probe result cache. Static
// entries never expire; Slow/Volatile entries expire per their TTL
// class. No long-held lock is taken across a probe run: Get/Put each
// acquire the mutex only for their own map access.
type Cache struct {
	mu      sync.RWMutex
	entries map[cacheKey]cacheEntry
}

// NewCache builds an empty probe cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey]cacheEntry)}
}

// Get returns a cached Evidence for (probeID, commandVec) if present
// and unexpired.
func (c *Cache) Get(probeID string, commandVec []string, now time.Time) (model.Evidence, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[makeCacheKey(probeID, commandVec)]
	if !ok {
		return model.Evidence{}, false
	}
	if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
		return model.Evidence{}, false
	}
	return entry.evidence, true
}

// Put stores ev under (probeID, commandVec), with an expiry computed
// from cacheClass/ttlOverride. A failed evidence row (success=false)
// is never cached, matching the probe executor's "no cache write on
// timeout" rule.
func (c *Cache) Put(probeID string, commandVec []string, cacheClass model.CacheClass, ttlOverride int, ev model.Evidence, now time.Time) {
	if !ev.Success {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	ttl := cacheClass.TTLSeconds(ttlOverride)
	if ttl > 0 {
		expiresAt = now.Add(time.Duration(ttl) * time.Second)
	}
	c.entries[makeCacheKey(probeID, commandVec)] = cacheEntry{evidence: ev, expiresAt: expiresAt}
}

// Invalidate drops every cache entry for probeID, regardless of its
// command vector, used when an action the orchestrator executes is
// known to change what a probe would observe.
func (c *Cache) Invalidate(probeID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prefix := probeID + "|"
	for k := range c.entries {
		if strings.HasPrefix(string(k), prefix) {
			delete(c.entries, k)
		}
	}
}
