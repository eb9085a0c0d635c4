package lookup

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ppiankov/newsintel/internal/cache"
	"github.com/ppiankov/newsintel/internal/model"
	"go.uber.org/zap"
)

// CachedLookup memoizes successful lookups by bucket and query
type CachedLookup struct {
	next  Lookup
	store cache.Cache
	ttl   time.Duration
}

// WithCache wraps next; a nil store returns next unchanged
func WithCache(next Lookup, store cache.Cache, ttl time.Duration) Lookup {
	if store == nil {
		return next
	}
	return &CachedLookup{next: next, store: store, ttl: ttl}
}

// Lookup serves from the cache or calls next and stores non-empty results
func (c *CachedLookup) Lookup(ctx context.Context, query string, bucket model.Bucket) ([]Result, error) {
	key := cache.CacheKey(string(bucket), query)
	if data, ok := c.store.Get(key); ok {
		var results []Result
		if err := json.Unmarshal(data, &results); err == nil && len(results) > 0 {
			return results, nil
		}
		_ = c.store.Delete(key)
	}

	results, err := c.next.Lookup(ctx, query, bucket)
	if err != nil || len(results) == 0 {
		return results, err
	}

	data, err := json.Marshal(results)
	if err == nil {
		err = c.store.Set(key, data, c.ttl)
	}
	if err != nil {
		zap.L().Warn("lookup cache write failed", zap.String("bucket", string(bucket)), zap.Error(err))
	}
	return results, nil
}
