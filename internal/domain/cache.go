package domain

import (
	"context"
	"time"
)

// Cache defines the interface for caching operations.
// Supports a local LRU (Community) or Redis (Pro).
//
// FraudLens uses the cache to memoize the serialized transaction collection
// between reads; ingestion invalidates it on every append.
type Cache interface {
	// Get retrieves a value from cache.
	// Returns nil, nil if key not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in cache with expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from cache.
	Delete(ctx context.Context, key string) error

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// CollectionCacheKey is the cache key under which the serialized transaction
// collection is memoized.
const CollectionCacheKey = "collection"

// CacheConfig holds configuration for cache initialization.
type CacheConfig struct {
	// Type is the cache type: "memory" or "redis"
	Type string

	// Local LRU cache settings (Community tier)
	LocalMaxSize int
	LocalTTL     time.Duration

	// Redis settings (Pro tier)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}
