package cms

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/medtravel/hospitaldirectory/internal/domain/providers"
	"github.com/medtravel/hospitaldirectory/internal/infrastructure/observability"
)

const (
	cacheKeyPrefix  = "cms:"
	defaultCacheTTL = 300
	cacheSetTimeout = 2 * time.Second
)

// CachedAdapter wraps a CMS provider with a read-through cache.
type CachedAdapter struct {
	provider providers.CMSProvider
	cache    providers.CacheProvider
	ttl      int
	metrics  *observability.Metrics
}

var _ providers.CMSProvider = (*CachedAdapter)(nil)

// NewCachedAdapter creates a cached CMS provider. metrics may be nil.
func NewCachedAdapter(provider providers.CMSProvider, cache providers.CacheProvider, ttlSeconds int, metrics *observability.Metrics) *CachedAdapter {
	if ttlSeconds <= 0 {
		ttlSeconds = defaultCacheTTL
	}
	return &CachedAdapter{provider: provider, cache: cache, ttl: ttlSeconds, metrics: metrics}
}

// CacheKey returns the cache key of a query.
func CacheKey(q *providers.CMSQuery) string {
	return cacheKeyPrefix + q.Key()
}

// CollectionPattern matches every cached query of a collection.
func CollectionPattern(collection string) string {
	return cacheKeyPrefix + collection + ":*"
}

// Query serves from cache when possible and fills it on a miss.
func (a *CachedAdapter) Query(ctx context.Context, q *providers.CMSQuery) (*providers.CMSResult, error) {
	key := CacheKey(q)

	if cached, err := a.cache.Get(ctx, key); err == nil {
		var result providers.CMSResult
		if err := json.Unmarshal(cached, &result); err == nil {
			observability.RecordCacheHit(ctx, a.metrics, "cms")
			return &result, nil
		}
		log.Warn().Err(err).Str("key", key).Msg("Failed to unmarshal cached CMS result")
	}
	observability.RecordCacheMiss(ctx, a.metrics, "cms")

	result, err := a.provider.Query(ctx, q)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(result)
	if err != nil {
		log.Warn().Err(err).Str("collection", q.Collection).Msg("Failed to marshal CMS result for cache")
		return result, nil
	}

	// Update cache asynchronously to avoid blocking the response
	go func() {
		setCtx, cancel := context.WithTimeout(context.Background(), cacheSetTimeout)
		defer cancel()
		if err := a.cache.Set(setCtx, key, data, a.ttl); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Failed to cache CMS result")
		}
	}()

	return result, nil
}

// InvalidateCollection drops every cached query of a collection.
func (a *CachedAdapter) InvalidateCollection(ctx context.Context, collection string) error {
	return a.cache.DeletePattern(ctx, CollectionPattern(collection))
}
