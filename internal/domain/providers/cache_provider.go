package providers

import (
	"context"
	"errors"
)

// ErrCacheMiss is returned by Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// CacheProvider defines the interface for caching operations
type CacheProvider interface {
	// Get retrieves a value from cache. Returns ErrCacheMiss when absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in cache with expiration
	Set(ctx context.Context, key string, value []byte, expirationSeconds int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// DeletePattern removes every key matching a glob pattern
	DeletePattern(ctx context.Context, pattern string) error

	// Exists checks if a key exists in cache
	Exists(ctx context.Context, key string) (bool, error)
}

// HTTPCacheKeyPrefix prefixes cached HTTP responses. The request path
// follows the prefix so entries can be dropped per route.
const HTTPCacheKeyPrefix = "http:cache:"

// HTTPCachePattern matches every cached response under a path prefix.
func HTTPCachePattern(pathPrefix string) string {
	return HTTPCacheKeyPrefix + pathPrefix + "*"
}
