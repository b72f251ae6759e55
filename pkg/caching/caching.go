// Package caching holds classification outcomes per hostname so every
// page on a publication costs one probe per TTL window.
package caching

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"mediumgate/models"
)

const (
	// DefaultTTL bounds how long an outcome, positive or negative,
	// is trusted before the host is probed again.
	DefaultTTL = 10 * time.Minute

	// DefaultCapacity bounds the in-process store; hostnames are
	// small but an open redirect surface must not grow unbounded.
	DefaultCapacity = 512
)

// Store is the cache the classifier consults and writes. Lookups are
// keyed by lowercase hostname, never full URL. Implementations must be
// safe for concurrent use; racing writers for the same hostname are
// acceptable, last write wins.
type Store interface {
	// Get returns the entry for hostname and true on a fresh hit.
	// Expired or missing entries report false.
	Get(hostname string) (models.CacheEntry, bool)
	// Set records the outcome for hostname, overwriting any
	// previous entry.
	Set(hostname string, entry models.CacheEntry) error
}

// MemoryStore is the in-process Store: an LRU over hostname entries
// with TTL freshness checked on read. Expired entries read as misses
// and age out through LRU pressure or overwrite.
type MemoryStore struct {
	ttl   time.Duration
	cache *lru.Cache[string, models.CacheEntry]
	now   func() time.Time
}

// MemoryOption adjusts a MemoryStore at construction.
type MemoryOption func(*MemoryStore)

// WithClock substitutes the freshness clock. Tests use it to age
// entries without sleeping.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

// NewMemoryStore builds a store with the given TTL and entry capacity,
// substituting defaults for non-positive values.
func NewMemoryStore(ttl time.Duration, capacity int, opts ...MemoryOption) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	cache, _ := lru.New[string, models.CacheEntry](capacity)
	s := &MemoryStore{
		ttl:   ttl,
		cache: cache,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the cached outcome for hostname if it is still fresh.
func (s *MemoryStore) Get(hostname string) (models.CacheEntry, bool) {
	entry, ok := s.cache.Get(hostname)
	if !ok {
		return models.CacheEntry{}, false // cache miss
	}
	if s.now().Sub(entry.Timestamp) >= s.ttl {
		return models.CacheEntry{}, false // cache miss (expired)
	}
	return entry, true // cache hit
}

// Set records the outcome for hostname.
func (s *MemoryStore) Set(hostname string, entry models.CacheEntry) error {
	s.cache.Add(hostname, entry)
	return nil
}

// Len reports the number of entries currently held, fresh or not.
func (s *MemoryStore) Len() int {
	return s.cache.Len()
}
