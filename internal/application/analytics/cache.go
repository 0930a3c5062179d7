package analytics

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Nadifnugraha/dicowi/internal/domain/analytics"
	"go.uber.org/zap"
)

// ResultCache stores encoded query results by key. Implementations live in
// the infrastructure cache package.
type ResultCache interface {
	// Get returns the cached value and whether it was present
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key for ttl. A zero ttl keeps it until evicted.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

const cacheKeyPrefix = "dashboard:"

// cacheKey combines a query name with the canonical filter
func cacheKey(query string, spec analytics.FilterSpec) string {
	return cacheKeyPrefix + query + "|" + spec.Key()
}

// cached returns the stored result of query for spec, computing and storing
// it on a miss. Cache failures are logged and never fail the query.
func cached[T any](ctx context.Context, s *DashboardService, query string, spec analytics.FilterSpec, compute func() (T, error)) (T, error) {
	if s.cache == nil {
		return compute()
	}

	key := cacheKey(query, spec)
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("result cache read failed", zap.String("key", key), zap.Error(err))
	}
	if ok {
		var out T
		if err := json.Unmarshal(raw, &out); err == nil {
			s.logger.Debug("result cache hit", zap.String("key", key))
			return out, nil
		}
		s.logger.Warn("discarding undecodable cache entry", zap.String("key", key))
	}

	out, err := compute()
	if err != nil {
		return out, err
	}

	raw, err = json.Marshal(out)
	if err != nil {
		s.logger.Warn("result not cacheable", zap.String("key", key), zap.Error(err))
		return out, nil
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil {
		s.logger.Warn("result cache write failed", zap.String("key", key), zap.Error(err))
	}
	return out, nil
}
