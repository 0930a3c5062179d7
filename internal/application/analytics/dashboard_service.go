package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/Nadifnugraha/dicowi/internal/domain/analytics"
	"github.com/Nadifnugraha/dicowi/internal/domain/commerce"
	"go.uber.org/zap"
)

// Defaults are the panel sizes used when a request leaves them out
type Defaults struct {
	TopN                     int
	GeoTopN                  int
	ExcludeUndefinedPayments bool
}

// DefaultDefaults mirrors the dashboard's built-in panel sizes
func DefaultDefaults() Defaults {
	return Defaults{
		TopN:                     10,
		GeoTopN:                  10,
		ExcludeUndefinedPayments: true,
	}
}

// DashboardService answers dashboard queries against one loaded Store.
// The joined view is built once at construction and shared read-only by
// every query, so the service is safe for concurrent use.
type DashboardService struct {
	store    *commerce.Store
	view     analytics.View
	report   analytics.ResolveReport
	defaults Defaults
	cache    ResultCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// Option configures a DashboardService
type Option func(*DashboardService)

// WithLogger sets the service logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *DashboardService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDefaults overrides the default panel sizes. Non-positive sizes are
// ignored.
func WithDefaults(d Defaults) Option {
	return func(s *DashboardService) {
		if d.TopN > 0 {
			s.defaults.TopN = d.TopN
		}
		if d.GeoTopN > 0 {
			s.defaults.GeoTopN = d.GeoTopN
		}
		s.defaults.ExcludeUndefinedPayments = d.ExcludeUndefinedPayments
	}
}

// WithCache memoises query results in cache for ttl
func WithCache(cache ResultCache, ttl time.Duration) Option {
	return func(s *DashboardService) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

// NewDashboardService resolves the joins of store and returns a service
// ready to answer queries
func NewDashboardService(store *commerce.Store, opts ...Option) *DashboardService {
	s := &DashboardService{
		store:    store,
		defaults: DefaultDefaults(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.view, s.report = analytics.Resolve(store)

	s.logger.Info("dashboard view resolved",
		zap.Int("rows", s.report.Rows),
		zap.Int("missing_products", s.report.MissingProducts),
		zap.Int("missing_orders", s.report.MissingOrders),
		zap.Int("missing_customers", s.report.MissingCustomers),
		zap.Int("null_categories", s.report.NullCategories),
	)
	if s.report.InvalidTimestamps > 0 {
		s.logger.Warn("line items without a usable shipping date are left out of time based panels",
			zap.Int("rows", s.report.InvalidTimestamps),
		)
	}

	return s
}

// Defaults returns the panel sizes in effect
func (s *DashboardService) Defaults() Defaults {
	return s.defaults
}

// ResolveReport returns the join statistics gathered at construction
func (s *DashboardService) ResolveReport() analytics.ResolveReport {
	return s.report
}

// filtered validates spec and narrows the shared view
func (s *DashboardService) filtered(spec analytics.FilterSpec) (analytics.View, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	view := analytics.Filter(s.view, spec)
	if len(view) == 0 {
		s.logger.Debug("filters selected no rows", zap.String("filter", spec.Key()))
	}
	return view, nil
}

// Overview is the headline panel of the dashboard
type Overview struct {
	Summary      analytics.Summary       `json:"summary"`
	Prices       analytics.PriceStats    `json:"prices"`
	EarliestDate string                  `json:"earliest_date,omitempty"`
	LatestDate   string                  `json:"latest_date,omitempty"`
	Tables       map[string]int          `json:"tables"`
	Joins        analytics.ResolveReport `json:"joins"`
}

// Overview totals the filtered view. Date bounds and table sizes describe
// the whole bundle.
func (s *DashboardService) Overview(ctx context.Context, spec analytics.FilterSpec) (*Overview, error) {
	return cached(ctx, s, "overview", spec, func() (*Overview, error) {
		view, err := s.filtered(spec)
		if err != nil {
			return nil, err
		}

		out := &Overview{
			Summary: analytics.Summarize(view, s.store.UniqueProducts()),
			Prices:  analytics.DescribePrices(view),
			Tables:  s.store.RowCounts(),
			Joins:   s.report,
		}
		if earliest, latest, ok := s.store.ShippingDateBounds(); ok {
			out.EarliestDate = earliest.Format(analytics.DayLayout)
			out.LatestDate = latest.Format(analytics.DayLayout)
		}
		return out, nil
	})
}

// RankingQuery selects a product ranking
type RankingQuery struct {
	Metric    analytics.Metric
	Direction analytics.Direction
	N         int
}

// ProductRanking ranks the products of the filtered view. A zero N uses
// the default size.
func (s *DashboardService) ProductRanking(ctx context.Context, spec analytics.FilterSpec, q RankingQuery) ([]analytics.ProductSales, error) {
	if q.N == 0 {
		q.N = s.defaults.TopN
	}
	key := fmt.Sprintf("ranking:%s:%s:%d", q.Metric, q.Direction, q.N)

	return cached(ctx, s, key, spec, func() ([]analytics.ProductSales, error) {
		view, err := s.filtered(spec)
		if err != nil {
			return nil, err
		}
		return analytics.RankedProductSales(view, q.Metric, q.Direction, q.N)
	})
}

// PaymentDistribution shares the payment records of the orders in the
// filtered view by payment type. A nil exclude uses the default.
func (s *DashboardService) PaymentDistribution(ctx context.Context, spec analytics.FilterSpec, exclude *bool) ([]analytics.PaymentShare, error) {
	excludeUndefined := s.defaults.ExcludeUndefinedPayments
	if exclude != nil {
		excludeUndefined = *exclude
	}
	key := fmt.Sprintf("payments:%t", excludeUndefined)

	return cached(ctx, s, key, spec, func() ([]analytics.PaymentShare, error) {
		view, err := s.filtered(spec)
		if err != nil {
			return nil, err
		}
		payments := analytics.PaymentsForView(view, s.store.OrderPayments())
		return analytics.PaymentMethodDistribution(payments, excludeUndefined), nil
	})
}

// GeoDistribution counts the filtered view per customer zip prefix. A zero
// n uses the default size and an empty unit counts line items.
func (s *DashboardService) GeoDistribution(ctx context.Context, spec analytics.FilterSpec, n int, unit analytics.GeoUnit) ([]analytics.ZipCount, error) {
	if n == 0 {
		n = s.defaults.GeoTopN
	}
	if unit == "" {
		unit = analytics.GeoUnitLineItems
	}
	key := fmt.Sprintf("geo:%s:%d", unit, n)

	return cached(ctx, s, key, spec, func() ([]analytics.ZipCount, error) {
		view, err := s.filtered(spec)
		if err != nil {
			return nil, err
		}
		return analytics.GeoDistribution(view, n, unit)
	})
}

// RevenueTrend sums revenue of the filtered view per time bucket
func (s *DashboardService) RevenueTrend(ctx context.Context, spec analytics.FilterSpec, g analytics.Granularity) ([]analytics.RevenuePoint, error) {
	if g == "" {
		g = analytics.GranularityMonth
	}
	key := fmt.Sprintf("revenue:%s", g)

	return cached(ctx, s, key, spec, func() ([]analytics.RevenuePoint, error) {
		view, err := s.filtered(spec)
		if err != nil {
			return nil, err
		}
		return analytics.RevenueOverTime(view, g)
	})
}

// TopOrders lists the orders of the filtered view with the most line items
func (s *DashboardService) TopOrders(ctx context.Context, spec analytics.FilterSpec, n int) ([]analytics.OrderItemCount, error) {
	if n == 0 {
		n = s.defaults.TopN
	}
	key := fmt.Sprintf("orders:%d", n)

	return cached(ctx, s, key, spec, func() ([]analytics.OrderItemCount, error) {
		view, err := s.filtered(spec)
		if err != nil {
			return nil, err
		}
		return analytics.TopOrdersByItemCount(view, n), nil
	})
}

// CustomersByZip looks a zip prefix up in the customer table. Sidebar
// filters do not apply.
func (s *DashboardService) CustomersByZip(ctx context.Context, zip string) []commerce.Customer {
	customers := analytics.CustomersByZip(s.store.Customers(), zip)
	s.logger.Debug("customer zip search", zap.String("zip", zip), zap.Int("matches", len(customers)))
	return customers
}

// FilterOptions lists the values the sidebar can offer for the filtered
// view
func (s *DashboardService) FilterOptions(ctx context.Context, spec analytics.FilterSpec) (analytics.Options, error) {
	view, err := s.filtered(spec)
	if err != nil {
		return analytics.Options{}, err
	}
	return analytics.FilterOptions(view), nil
}

// ProductSalesExport returns the full per product table of the filtered
// view in first-seen order
func (s *DashboardService) ProductSalesExport(ctx context.Context, spec analytics.FilterSpec) ([]analytics.ProductSales, error) {
	view, err := s.filtered(spec)
	if err != nil {
		return nil, err
	}
	return analytics.ProductSalesTable(view), nil
}
