package analytics

import (
	"context"
	"slices"

	"github.com/Nadifnugraha/dicowi/internal/domain/analytics"
	"github.com/Nadifnugraha/dicowi/internal/domain/shared"
)

// Panel names
const (
	PanelOverview       = "overview"
	PanelTopSelling     = "top_selling"
	PanelLeastSelling   = "least_selling"
	PanelTopRevenue     = "top_revenue"
	PanelPaymentMethods = "payment_methods"
	PanelCustomerGeo    = "customer_geo"
	PanelRevenueTrend   = "revenue_trend"
	PanelTopOrders      = "top_orders"
)

// ErrUnknownPanel is returned for a panel name that is not registered
var ErrUnknownPanel = shared.ErrNotFound.WithMessage("unknown dashboard panel")

// PanelPreset is a named dashboard panel: an aggregation plus its fixed
// parameters
type PanelPreset struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	run   func(ctx context.Context, s *DashboardService, spec analytics.FilterSpec) (any, error)
}

// PanelResult is the data of one evaluated panel
type PanelResult struct {
	Name   string               `json:"name"`
	Title  string               `json:"title"`
	Filter analytics.FilterSpec `json:"filter"`
	Data   any                  `json:"data"`
	Empty  bool                 `json:"empty"`
}

func rankingPanel(metric analytics.Metric, direction analytics.Direction) func(context.Context, *DashboardService, analytics.FilterSpec) (any, error) {
	return func(ctx context.Context, s *DashboardService, spec analytics.FilterSpec) (any, error) {
		return s.ProductRanking(ctx, spec, RankingQuery{Metric: metric, Direction: direction})
	}
}

var panels = []PanelPreset{
	{
		Name:  PanelOverview,
		Title: "Overview",
		run: func(ctx context.Context, s *DashboardService, spec analytics.FilterSpec) (any, error) {
			return s.Overview(ctx, spec)
		},
	},
	{Name: PanelTopSelling, Title: "Top selling products", run: rankingPanel(analytics.MetricCount, analytics.DirectionTop)},
	{Name: PanelLeastSelling, Title: "Least selling products", run: rankingPanel(analytics.MetricCount, analytics.DirectionBottom)},
	{Name: PanelTopRevenue, Title: "Top products by revenue", run: rankingPanel(analytics.MetricRevenue, analytics.DirectionTop)},
	{
		Name:  PanelPaymentMethods,
		Title: "Payment method distribution",
		run: func(ctx context.Context, s *DashboardService, spec analytics.FilterSpec) (any, error) {
			return s.PaymentDistribution(ctx, spec, nil)
		},
	},
	{
		Name:  PanelCustomerGeo,
		Title: "Customer geographic distribution",
		run: func(ctx context.Context, s *DashboardService, spec analytics.FilterSpec) (any, error) {
			return s.GeoDistribution(ctx, spec, 0, analytics.GeoUnitLineItems)
		},
	},
	{
		Name:  PanelRevenueTrend,
		Title: "Revenue over time",
		run: func(ctx context.Context, s *DashboardService, spec analytics.FilterSpec) (any, error) {
			return s.RevenueTrend(ctx, spec, analytics.GranularityMonth)
		},
	},
	{
		Name:  PanelTopOrders,
		Title: "Orders with the most items",
		run: func(ctx context.Context, s *DashboardService, spec analytics.FilterSpec) (any, error) {
			return s.TopOrders(ctx, spec, 0)
		},
	},
}

// Panels lists the registered panels in dashboard order
func Panels() []PanelPreset {
	return slices.Clone(panels)
}

// Panel evaluates the named panel against the filtered view
func (s *DashboardService) Panel(ctx context.Context, name string, spec analytics.FilterSpec) (*PanelResult, error) {
	idx := slices.IndexFunc(panels, func(p PanelPreset) bool { return p.Name == name })
	if idx < 0 {
		return nil, ErrUnknownPanel
	}
	preset := panels[idx]

	data, err := preset.run(ctx, s, spec)
	if err != nil {
		return nil, err
	}

	return &PanelResult{
		Name:   preset.Name,
		Title:  preset.Title,
		Filter: spec,
		Data:   data,
		Empty:  isEmpty(data),
	}, nil
}

func isEmpty(data any) bool {
	switch v := data.(type) {
	case *Overview:
		return v.Summary.LineItems == 0
	case []analytics.ProductSales:
		return len(v) == 0
	case []analytics.PaymentShare:
		return len(v) == 0
	case []analytics.ZipCount:
		return len(v) == 0
	case []analytics.RevenuePoint:
		return len(v) == 0
	case []analytics.OrderItemCount:
		return len(v) == 0
	}
	return data == nil
}
