// Package bootstrap wires the dashboard service from configuration. It is
// shared by the server and the command line tool.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	analyticsapp "github.com/Nadifnugraha/dicowi/internal/application/analytics"
	"github.com/Nadifnugraha/dicowi/internal/domain/commerce"
	"github.com/Nadifnugraha/dicowi/internal/infrastructure/bundle"
	"github.com/Nadifnugraha/dicowi/internal/infrastructure/cache"
	"github.com/Nadifnugraha/dicowi/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Dashboard is a loaded store and the service over it
type Dashboard struct {
	Store   *commerce.Store
	Service *analyticsapp.DashboardService
	closers []func() error
}

// Close releases the result cache
func (d *Dashboard) Close() error {
	var errs []error
	for _, c := range d.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// NewDashboard loads the bundle from the configured source and builds the
// dashboard service, with a result cache when caching is enabled
func NewDashboard(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Dashboard, error) {
	src, err := bundle.Open(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open bundle: %w", err)
	}

	start := time.Now()
	store, err := commerce.LoadStore(ctx, src)
	if cerr := src.Close(); cerr != nil {
		log.Warn("closing bundle source failed", zap.Error(cerr))
	}
	if err != nil {
		return nil, fmt.Errorf("load bundle: %w", err)
	}
	log.Info("bundle ready",
		zap.Any("rows", store.RowCounts()),
		zap.Duration("elapsed", time.Since(start)),
	)

	d := &Dashboard{Store: store}
	opts := []analyticsapp.Option{
		analyticsapp.WithLogger(log),
		analyticsapp.WithDefaults(analyticsapp.Defaults{
			TopN:                     cfg.Dashboard.TopN,
			GeoTopN:                  cfg.Dashboard.GeoTopN,
			ExcludeUndefinedPayments: cfg.Dashboard.ExcludeUndefinedPayments,
		}),
	}

	resultCache, err := cache.NewResultCacheFactory(cfg.Cache, cache.WithLogger(log)).CreateCache()
	if err != nil {
		return nil, err
	}
	if resultCache != nil {
		opts = append(opts, analyticsapp.WithCache(resultCache, cfg.Cache.TTL))
		d.closers = append(d.closers, resultCache.Close)
	}

	d.Service = analyticsapp.NewDashboardService(store, opts...)
	return d, nil
}
