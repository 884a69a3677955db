package recur

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"weekcal/event"
)

// cacheEntry holds one memoized expansion result.
type cacheEntry struct {
	generated  []event.Event
	expiresAt  time.Time
	accessedAt time.Time
}

// Cache memoizes generated-occurrence sets keyed by the expansion
// inputs. The clock component of the key is truncated to the minute so
// back-to-back recomputes within the same minute share an entry.
type Cache struct {
	mu              sync.RWMutex
	entries         map[string]*cacheEntry
	ttl             time.Duration
	maxEntries      int
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
}

// CacheConfig holds cache tuning knobs.
type CacheConfig struct {
	TTL             time.Duration
	MaxEntries      int
	CleanupInterval time.Duration
}

// DefaultCacheConfig suits an interactive session where the base-event
// set changes a few times a minute at most.
var DefaultCacheConfig = CacheConfig{
	TTL:             15 * time.Minute,
	MaxEntries:      256,
	CleanupInterval: 5 * time.Minute,
}

// NewCache creates a cache and starts its cleanup loop.
func NewCache(cfg CacheConfig) *Cache {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultCacheConfig.TTL
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultCacheConfig.MaxEntries
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultCacheConfig.CleanupInterval
	}
	c := &Cache{
		entries:         make(map[string]*cacheEntry),
		ttl:             cfg.TTL,
		maxEntries:      cfg.MaxEntries,
		cleanupInterval: cfg.CleanupInterval,
		stopCleanup:     make(chan struct{}),
	}
	go c.cleanupLoop()
	return c
}

// key fingerprints the expansion inputs. Only the fields that influence
// the generated set participate; pass-through fields like description do
// not invalidate the cache.
func (c *Cache) key(events []event.Event, horizonMonths int, now time.Time) string {
	h := sha256.New()
	h.Write([]byte(strconv.Itoa(horizonMonths)))
	h.Write([]byte(now.Truncate(time.Minute).Format(time.RFC3339)))
	for _, e := range events {
		if e.IsGenerated || e.RecurrenceType == event.RecurNone {
			continue
		}
		h.Write([]byte(e.ID))
		h.Write([]byte(e.Date))
		h.Write([]byte(e.Time))
		h.Write([]byte(e.RecurrenceType))
		h.Write([]byte(e.RecurrenceEnd))
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Get returns a memoized generated set, if one is still valid.
func (c *Cache) Get(events []event.Event, horizonMonths int, now time.Time) ([]event.Event, bool) {
	key := c.key(events, horizonMonths, now)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	wall := time.Now()
	if wall.After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}

	c.mu.Lock()
	entry.accessedAt = wall
	c.mu.Unlock()

	out := make([]event.Event, len(entry.generated))
	copy(out, entry.generated)
	return out, true
}

// Set stores a generated set for the given inputs.
func (c *Cache) Set(events []event.Event, horizonMonths int, now time.Time, generated []event.Event) {
	key := c.key(events, horizonMonths, now)
	wall := time.Now()

	stored := make([]event.Event, len(generated))
	copy(stored, generated)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &cacheEntry{
		generated:  stored,
		expiresAt:  wall.Add(c.ttl),
		accessedAt: wall,
	}
	if len(c.entries) > c.maxEntries {
		c.evict()
	}
}

// evict removes expired entries, then the least recently accessed ones
// until the cache fits. Callers hold the write lock.
func (c *Cache) evict() {
	now := time.Now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
	if len(c.entries) <= c.maxEntries {
		return
	}

	type access struct {
		key string
		at  time.Time
	}
	byAccess := make([]access, 0, len(c.entries))
	for key, entry := range c.entries {
		byAccess = append(byAccess, access{key: key, at: entry.accessedAt})
	}
	sort.Slice(byAccess, func(i, j int) bool { return byAccess[i].at.Before(byAccess[j].at) })

	excess := len(c.entries) - c.maxEntries
	for i := 0; i < excess; i++ {
		delete(c.entries, byAccess[i].key)
	}
}

func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			c.evict()
			c.mu.Unlock()
		case <-c.stopCleanup:
			return
		}
	}
}

// Close stops the cleanup loop and drops all entries.
func (c *Cache) Close() {
	close(c.stopCleanup)
	c.mu.Lock()
	c.entries = make(map[string]*cacheEntry)
	c.mu.Unlock()
}

// Len reports the number of live entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
