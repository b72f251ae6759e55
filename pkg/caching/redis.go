package caching

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/storage/redis/v3"

	"mediumgate/models"
)

const redisKeyPrefix = "mediumgate:host:"

// RedisStore shares outcomes between instances behind one Redis.
// Entries carry their own timestamp so freshness matches MemoryStore
// exactly; the Redis expiration is eviction, not the source of truth.
type RedisStore struct {
	storage *redis.Storage
	ttl     time.Duration
	logger  *slog.Logger
}

// NewRedisStore connects to the Redis at url (redis:// or rediss://).
// Read failures degrade to cache misses so a flaky Redis slows the
// engine down instead of breaking it.
func NewRedisStore(url string, ttl time.Duration, logger *slog.Logger) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisStore{
		storage: redis.New(redis.Config{URL: url}),
		ttl:     ttl,
		logger:  logger,
	}
}

// Get returns the shared outcome for hostname if it is still fresh.
func (s *RedisStore) Get(hostname string) (models.CacheEntry, bool) {
	raw, err := s.storage.Get(redisKeyPrefix + hostname)
	if err != nil {
		s.logger.Warn("redis cache read failed", "host", hostname, "error", err)
		return models.CacheEntry{}, false
	}
	if len(raw) == 0 {
		return models.CacheEntry{}, false // cache miss
	}
	var entry models.CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		s.logger.Warn("redis cache entry corrupt", "host", hostname, "error", err)
		return models.CacheEntry{}, false
	}
	if time.Since(entry.Timestamp) >= s.ttl {
		return models.CacheEntry{}, false // cache miss (expired)
	}
	return entry, true
}

// Set records the outcome for hostname with the TTL as Redis expiry.
func (s *RedisStore) Set(hostname string, entry models.CacheEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	if err := s.storage.Set(redisKeyPrefix+hostname, raw, s.ttl); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Close releases the Redis connection pool.
func (s *RedisStore) Close() error {
	return s.storage.Close()
}
