// Package cache implements the generic cache layer spec.md §4.9 describes:
// get/set/has/delete/clear plus preloadProbable/evictUnlikely, with a
// priority function blending recency, frequency, and inverse size.
// Grounded on the teacher's internal/graph/searcher.go otter.Cache usage
// (MustBuilder + CollectStats + Build for the short-term store),
// generalized from a single weight-capped file cache to the pluggable
// short-term/persistent split spec.md §4.9 requires.
package cache

import (
	"sort"
	"time"

	"github.com/maypok86/otter"
)

// entry is the value actually stored in the short-term otter cache; it
// carries the bookkeeping the priority function and TTL enforcement need,
// since otter's own API does not expose per-item TTL or access counts.
type entry struct {
	value       []byte
	size        int
	createdAt   time.Time
	lastAccess  time.Time
	accessCount int
}

// PriorityFunc scores an entry for eviction ranking; higher survives
// longer. The default blends recency, frequency, and inverse size.
type PriorityFunc func(key string, createdAt, lastAccess time.Time, accessCount, size int, now time.Time) float64

// DefaultPriority blends recency (exponential decay over one hour),
// frequency (access count), and inverse size, matching spec.md §4.9's
// "blends recency, frequency, and inverse size".
func DefaultPriority(_ string, _ time.Time, lastAccess time.Time, accessCount, size int, now time.Time) float64 {
	age := now.Sub(lastAccess)
	recency := 1.0 / (1.0 + age.Hours())
	frequency := float64(accessCount)
	inverseSize := 1.0 / float64(1+size)
	return recency*0.5 + frequency*0.3 + inverseSize*0.2
}

// Policy governs eviction for the short-term store.
type Policy struct {
	MaxAge           time.Duration // 0 disables TTL expiry
	MaxItems         int           // 0 disables item-count cap
	PriorityFunction PriorityFunc
}

// DefaultPolicy mirrors spec.md §4.9's defaults: one hour TTL, 10,000
// items tracked in the short-term store.
func DefaultPolicy() Policy {
	return Policy{
		MaxAge:           time.Hour,
		MaxItems:         10000,
		PriorityFunction: DefaultPriority,
	}
}

// PersistentStore is the pluggable long-term backend PreloadProbable reads
// from. The reference Cache has no persistent backend wired by default;
// SQLiteStore (sqlite.go) is the pluggable adapter.
type PersistentStore interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// Cache is the short-term store plus an optional persistent backend.
type Cache struct {
	policy     Policy
	store      otter.Cache[string, entry]
	persistent PersistentStore
}

// New creates a Cache with the given policy and otter-backed short-term
// store. persistent may be nil (short-term only, matching the spec's
// "in-memory backend is the reference" default).
func New(policy Policy, persistent PersistentStore) (*Cache, error) {
	if policy.PriorityFunction == nil {
		policy.PriorityFunction = DefaultPriority
	}

	capacity := policy.MaxItems
	if capacity <= 0 {
		capacity = 10000
	}

	store, err := otter.MustBuilder[string, entry](capacity).
		CollectStats().
		Build()
	if err != nil {
		return nil, err
	}

	return &Cache{policy: policy, store: store, persistent: persistent}, nil
}

// Get returns a value and whether it was present and unexpired. An expired
// entry is evicted eagerly and reported as a miss.
func (c *Cache) Get(key string) ([]byte, bool) {
	e, ok := c.store.Get(key)
	if !ok {
		return nil, false
	}
	if c.expired(e) {
		c.store.Delete(key)
		return nil, false
	}

	e.lastAccess = time.Now()
	e.accessCount++
	c.store.Set(key, e)
	return e.value, true
}

// Has reports presence without updating access bookkeeping.
func (c *Cache) Has(key string) bool {
	e, ok := c.store.Get(key)
	if !ok {
		return false
	}
	return !c.expired(e)
}

// Set stores value under key, then enforces TTL expiry and the item-count
// cap (spec.md §4.9: "after set, the layer enforces TTL expiry and
// item-count cap").
func (c *Cache) Set(key string, value []byte) {
	now := time.Now()
	c.store.Set(key, entry{
		value:       value,
		size:        len(value),
		createdAt:   now,
		lastAccess:  now,
		accessCount: 1,
	})
	c.enforcePolicy()
}

// Delete removes key from the short-term store only.
func (c *Cache) Delete(key string) {
	c.store.Delete(key)
}

// Clear empties the short-term store.
func (c *Cache) Clear() {
	c.store.Clear()
}

// Close releases the underlying otter cache.
func (c *Cache) Close() {
	c.store.Close()
}

func (c *Cache) expired(e entry) bool {
	if c.policy.MaxAge <= 0 {
		return false
	}
	return time.Since(e.createdAt) > c.policy.MaxAge
}

func (c *Cache) enforcePolicy() {
	now := time.Now()

	var expiredKeys []string
	count := 0
	c.store.Range(func(key string, e entry) bool {
		count++
		if c.expired(e) {
			expiredKeys = append(expiredKeys, key)
		}
		return true
	})
	for _, k := range expiredKeys {
		c.store.Delete(k)
		count--
	}

	if c.policy.MaxItems > 0 && count > c.policy.MaxItems {
		c.evictLowestPriority(count-c.policy.MaxItems, now)
	}
}

type scoredKey struct {
	key      string
	priority float64
}

func (c *Cache) snapshot(now time.Time) []scoredKey {
	var scored []scoredKey
	c.store.Range(func(key string, e entry) bool {
		priority := c.policy.PriorityFunction(key, e.createdAt, e.lastAccess, e.accessCount, e.size, now)
		scored = append(scored, scoredKey{key: key, priority: priority})
		return true
	})
	sort.Slice(scored, func(i, j int) bool { return scored[i].priority < scored[j].priority })
	return scored
}

func (c *Cache) evictLowestPriority(n int, now time.Time) {
	scored := c.snapshot(now)
	for i := 0; i < n && i < len(scored); i++ {
		c.store.Delete(scored[i].key)
	}
}

// PreloadProbable promotes keys from the persistent backend into the
// short-term store. Keys not found in the persistent backend, or when no
// persistent backend is configured, are silently skipped.
func (c *Cache) PreloadProbable(keys []string) error {
	if c.persistent == nil {
		return nil
	}
	for _, key := range keys {
		value, ok, err := c.persistent.Get(key)
		if err != nil {
			return err
		}
		if ok {
			c.Set(key, value)
		}
	}
	return nil
}

// EvictUnlikely drops the bottom half of the short-term store by priority,
// never touching the persistent backend (spec.md §4.9).
func (c *Cache) EvictUnlikely() {
	now := time.Now()
	scored := c.snapshot(now)
	half := len(scored) / 2
	for i := 0; i < half; i++ {
		c.store.Delete(scored[i].key)
	}
}
