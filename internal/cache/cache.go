// Package cache provides caching implementations for FraudLens.
package cache

import (
	"fmt"

	"github.com/fraudlens/fraudlens/internal/domain"
)

// New creates a new cache based on configuration.
// For Community tier: returns an LRU cache.
// For Pro tier: returns a Redis cache.
func New(cfg domain.CacheConfig) (domain.Cache, error) {
	switch cfg.Type {
	case "memory":
		return NewLRUCache(cfg.LocalMaxSize), nil

	case "redis":
		return NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.Type)
	}
}
