package cache

import (
	"fmt"
	"io"
	"time"

	"github.com/Nadifnugraha/dicowi/internal/application/analytics"
	"github.com/Nadifnugraha/dicowi/internal/infrastructure/config"
	"go.uber.org/zap"
)

const memoryCleanupInterval = 5 * time.Minute

// Closer is a result cache that holds resources
type Closer interface {
	analytics.ResultCache
	io.Closer
}

// ResultCacheFactory creates result caches based on configuration
type ResultCacheFactory struct {
	cfg                   config.CacheConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// ResultCacheFactoryOption is a functional option for configuring the factory
type ResultCacheFactoryOption func(*ResultCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) ResultCacheFactoryOption {
	return func(f *ResultCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory cache
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) ResultCacheFactoryOption {
	return func(f *ResultCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewResultCacheFactory creates a new factory
func NewResultCacheFactory(cfg config.CacheConfig, opts ...ResultCacheFactoryOption) *ResultCacheFactory {
	f := &ResultCacheFactory{
		cfg:                   cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateCache returns the configured cache, or nil when caching is
// disabled. A redis backend that cannot be reached falls back to memory
// unless fallback is turned off.
func (f *ResultCacheFactory) CreateCache() (Closer, error) {
	if !f.cfg.Enabled {
		return nil, nil
	}

	if f.cfg.Backend != config.CacheRedis {
		f.logger.Info("using in-memory result cache", zap.Duration("ttl", f.cfg.TTL))
		return NewMemoryResultCache(memoryCleanupInterval), nil
	}

	c, err := NewRedisResultCache(f.cfg.Redis)
	if err == nil {
		f.logger.Info("using Redis result cache",
			zap.String("addr", f.cfg.Redis.Addr()),
			zap.Duration("ttl", f.cfg.TTL),
		)
		return c, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis result cache unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory result cache. "+
		"Cached results are not shared between instances.",
		zap.Error(err),
	)
	return NewMemoryResultCache(memoryCleanupInterval), nil
}
