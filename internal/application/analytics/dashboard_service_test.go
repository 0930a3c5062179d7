package analytics

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Nadifnugraha/dicowi/internal/domain/analytics"
	"github.com/Nadifnugraha/dicowi/internal/domain/commerce"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func stamp(s string) sql.NullTime {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		panic(err)
	}
	return sql.NullTime{Time: t, Valid: true}
}

func newTestStore() *commerce.Store {
	d := decimal.RequireFromString
	return commerce.NewStore(commerce.Tables{
		OrderItems: []commerce.OrderItem{
			{OrderID: "o1", ProductID: "p1", Price: d("10.00"), ShippingLimitDate: stamp("2018-01-10 10:00:00")},
			{OrderID: "o1", ProductID: "p2", Price: d("20.00"), ShippingLimitDate: stamp("2018-01-10 10:00:00")},
			{OrderID: "o2", ProductID: "p1", Price: d("15.50"), ShippingLimitDate: stamp("2018-04-02 08:30:00")},
			{OrderID: "o3", ProductID: "p3", Price: d("99.90"), ShippingLimitDate: stamp("2018-07-21 23:59:59")},
			{OrderID: "o3", ProductID: "p1", Price: d("12.00"), ShippingLimitDate: stamp("2018-10-05 00:00:00")},
			{OrderID: "o4", ProductID: "pX", Price: d("5.00")},
		},
		OrderPayments: []commerce.OrderPayment{
			{OrderID: "o1", PaymentType: "credit_card", Amount: d("30.00")},
			{OrderID: "o2", PaymentType: "boleto", Amount: d("15.50")},
			{OrderID: "o3", PaymentType: "credit_card", Amount: d("100.00")},
			{OrderID: "o3", PaymentType: "not_defined", Amount: d("11.90")},
		},
		Products: []commerce.Product{
			{ProductID: "p1", Category: "perfumaria"},
			{ProductID: "p2", Category: "pet_shop"},
			{ProductID: "p3", Category: ""},
		},
		Orders: []commerce.Order{
			{OrderID: "o1", CustomerID: "c1"},
			{OrderID: "o2", CustomerID: "c2"},
			{OrderID: "o3", CustomerID: "c3"},
		},
		Customers: []commerce.Customer{
			{CustomerID: "c1", ZipCodePrefix: "01310"},
			{CustomerID: "c2", ZipCodePrefix: "22041"},
			{CustomerID: "c3", ZipCodePrefix: "01310"},
		},
	})
}

// memoryCache is a ResultCache that records its traffic
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	gets    int
	sets    int
	getErr  error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.entries[key] = value
	return nil
}

func TestNewDashboardService_LogsResolveReport(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	svc := NewDashboardService(newTestStore(), WithLogger(zap.New(core)))

	report := svc.ResolveReport()
	assert.Equal(t, 6, report.Rows)
	assert.Equal(t, 1, report.MissingProducts)
	assert.Equal(t, 1, report.InvalidTimestamps)

	assert.Equal(t, 1, logs.FilterMessage("dashboard view resolved").Len())
	warnings := logs.FilterLevelExact(zap.WarnLevel).All()
	require.Len(t, warnings, 1)
	assert.Equal(t, int64(1), warnings[0].ContextMap()["rows"])
}

func TestDashboardService_Overview(t *testing.T) {
	svc := NewDashboardService(newTestStore())

	got, err := svc.Overview(context.Background(), analytics.FilterSpec{})
	require.NoError(t, err)

	assert.Equal(t, 6, got.Summary.LineItems)
	assert.Equal(t, 4, got.Summary.Orders)
	assert.Equal(t, 3, got.Summary.UniqueProducts)
	assert.Equal(t, "162.4", got.Summary.Revenue.String())
	assert.Equal(t, "2018-01-10", got.EarliestDate)
	assert.Equal(t, "2018-10-05", got.LatestDate)
	assert.Equal(t, 6, got.Tables[commerce.TableOrderItems])

	filtered, err := svc.Overview(context.Background(), analytics.FilterSpec{Category: "perfumaria"})
	require.NoError(t, err)
	assert.Equal(t, 3, filtered.Summary.LineItems)
	assert.Equal(t, 3, filtered.Summary.UniqueProducts, "catalogue size ignores filters")
	assert.Equal(t, "2018-01-10", filtered.EarliestDate)
}

func TestDashboardService_ProductRanking(t *testing.T) {
	svc := NewDashboardService(newTestStore(), WithDefaults(Defaults{TopN: 2, GeoTopN: 2}))
	ctx := context.Background()

	got, err := svc.ProductRanking(ctx, analytics.FilterSpec{}, RankingQuery{
		Metric:    analytics.MetricCount,
		Direction: analytics.DirectionTop,
	})
	require.NoError(t, err)
	require.Len(t, got, 2, "zero N falls back to the default")
	assert.Equal(t, "p1", got[0].ProductID)

	_, err = svc.ProductRanking(ctx, analytics.FilterSpec{}, RankingQuery{Metric: "weight", Direction: analytics.DirectionTop})
	assert.Equal(t, analytics.ErrInvalidMetric, err)
}

func TestDashboardService_PaymentDistribution(t *testing.T) {
	svc := NewDashboardService(newTestStore())
	ctx := context.Background()

	got, err := svc.PaymentDistribution(ctx, analytics.FilterSpec{}, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "credit_card", got[0].Method)
	assert.Equal(t, "66.7", got[0].Percentage.String())

	keep := false
	all, err := svc.PaymentDistribution(ctx, analytics.FilterSpec{}, &keep)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	winter, err := svc.PaymentDistribution(ctx, analytics.FilterSpec{Season: "Winter"}, nil)
	require.NoError(t, err)
	require.Len(t, winter, 1)
	assert.Equal(t, int64(1), winter[0].Count, "one payment record for a two item order")
	assert.Equal(t, "100", winter[0].Percentage.String())
}

func TestDashboardService_GeoRevenueOrders(t *testing.T) {
	svc := NewDashboardService(newTestStore())
	ctx := context.Background()

	geo, err := svc.GeoDistribution(ctx, analytics.FilterSpec{}, 1, "")
	require.NoError(t, err)
	assert.Equal(t, []analytics.ZipCount{{ZipPrefix: "01310", Count: 4}}, geo)

	revenue, err := svc.RevenueTrend(ctx, analytics.FilterSpec{}, "")
	require.NoError(t, err)
	assert.Len(t, revenue, 4)
	assert.Equal(t, "2018-01", revenue[0].Bucket)

	_, err = svc.RevenueTrend(ctx, analytics.FilterSpec{}, "fortnight")
	assert.Equal(t, analytics.ErrInvalidGranularity, err)

	orders, err := svc.TopOrders(ctx, analytics.FilterSpec{}, 1)
	require.NoError(t, err)
	assert.Equal(t, []analytics.OrderItemCount{{OrderID: "o1", Items: 2}}, orders)
}

func TestDashboardService_InvalidFilter(t *testing.T) {
	svc := NewDashboardService(newTestStore())

	_, err := svc.Overview(context.Background(), analytics.FilterSpec{Month: "January"})
	assert.Equal(t, analytics.ErrInvalidMonth, err)

	_, err = svc.FilterOptions(context.Background(), analytics.FilterSpec{Season: "Dry"})
	assert.Equal(t, analytics.ErrInvalidSeason, err)
}

func TestDashboardService_EmptySelection(t *testing.T) {
	svc := NewDashboardService(newTestStore())
	ctx := context.Background()
	spec := analytics.FilterSpec{Month: "2016-09"}

	ranking, err := svc.ProductRanking(ctx, spec, RankingQuery{Metric: analytics.MetricRevenue, Direction: analytics.DirectionTop})
	require.NoError(t, err)
	assert.Empty(t, ranking)

	payments, err := svc.PaymentDistribution(ctx, spec, nil)
	require.NoError(t, err)
	assert.Empty(t, payments)
}

func TestDashboardService_CustomersAndExport(t *testing.T) {
	svc := NewDashboardService(newTestStore())
	ctx := context.Background()

	customers := svc.CustomersByZip(ctx, "01310")
	assert.Len(t, customers, 2)

	export, err := svc.ProductSalesExport(ctx, analytics.FilterSpec{})
	require.NoError(t, err)
	require.Len(t, export, 4)
	assert.Equal(t, "p1", export[0].ProductID)

	opts, err := svc.FilterOptions(ctx, analytics.FilterSpec{})
	require.NoError(t, err)
	assert.Equal(t, []string{"2018-01", "2018-04", "2018-07", "2018-10"}, opts.Months)
}

func TestDashboardService_CachesResults(t *testing.T) {
	cache := newMemoryCache()
	svc := NewDashboardService(newTestStore(), WithCache(cache, time.Minute))
	ctx := context.Background()
	spec := analytics.FilterSpec{Category: "perfumaria"}
	q := RankingQuery{Metric: analytics.MetricRevenue, Direction: analytics.DirectionTop, N: 3}

	first, err := svc.ProductRanking(ctx, spec, q)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	second, err := svc.ProductRanking(ctx, spec, q)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets, "second call is served from the cache")
	assert.Equal(t, 2, cache.gets)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].ProductID, second[i].ProductID)
		assert.True(t, first[i].Revenue.Equal(second[i].Revenue))
	}

	_, err = svc.ProductRanking(ctx, analytics.FilterSpec{Category: "pet_shop"}, q)
	require.NoError(t, err)
	assert.Equal(t, 2, cache.sets, "different filters use different keys")
}

func TestDashboardService_CacheServesStoredValue(t *testing.T) {
	cache := newMemoryCache()
	cache.entries[cacheKey("orders:5", analytics.FilterSpec{})] = []byte(`[{"order_id":"cached","items":42}]`)
	svc := NewDashboardService(newTestStore(), WithCache(cache, 0))

	got, err := svc.TopOrders(context.Background(), analytics.FilterSpec{}, 5)
	require.NoError(t, err)

	assert.Equal(t, []analytics.OrderItemCount{{OrderID: "cached", Items: 42}}, got)
}

func TestDashboardService_CacheFailureFallsBackToCompute(t *testing.T) {
	cache := newMemoryCache()
	cache.getErr = errors.New("connection refused")
	core, logs := observer.New(zap.WarnLevel)
	svc := NewDashboardService(newTestStore(), WithCache(cache, time.Minute), WithLogger(zap.New(core)))

	got, err := svc.TopOrders(context.Background(), analytics.FilterSpec{}, 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, 1, logs.FilterMessage("result cache read failed").Len())
}
