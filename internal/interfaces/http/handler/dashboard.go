package handler

import (
	"encoding/csv"
	"net/http"
	"strconv"

	analyticsapp "github.com/Nadifnugraha/dicowi/internal/application/analytics"
	"github.com/Nadifnugraha/dicowi/internal/domain/analytics"
	"github.com/Nadifnugraha/dicowi/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// DashboardHandler serves the analytics dashboard panels
type DashboardHandler struct {
	BaseHandler
	service *analyticsapp.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(service *analyticsapp.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// RegisterRoutes registers the dashboard routes under rg
func (h *DashboardHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/dashboard")
	g.GET("/overview", h.GetOverview)
	g.GET("/products/ranking", h.GetProductRanking)
	g.GET("/products/export", h.ExportProductSales)
	g.GET("/payments", h.GetPaymentDistribution)
	g.GET("/geo", h.GetGeoDistribution)
	g.GET("/revenue", h.GetRevenueTrend)
	g.GET("/orders/top", h.GetTopOrders)
	g.GET("/filters", h.GetFilterOptions)
	g.GET("/customers", h.SearchCustomers)
	g.GET("/panels", h.ListPanels)
	g.GET("/panels/:name", h.GetPanel)
}

// filterSpec binds and converts the sidebar selections
func (h *DashboardHandler) filterSpec(c *gin.Context, req *dto.FilterRequest) (analytics.FilterSpec, bool) {
	spec, err := req.ToSpec()
	if err != nil {
		h.HandleError(c, err)
		return analytics.FilterSpec{}, false
	}
	return spec, true
}

// GetOverview godoc
// @Summary      Dashboard overview
// @Description  Headline totals and price statistics of the filtered line items
// @Tags         dashboard
// @Produce      json
// @Router       /dashboard/overview [get]
func (h *DashboardHandler) GetOverview(c *gin.Context) {
	var req dto.FilterRequest
	if !h.BindQuery(c, &req) {
		return
	}
	spec, ok := h.filterSpec(c, &req)
	if !ok {
		return
	}

	overview, err := h.service.Overview(c.Request.Context(), spec)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessOrEmpty(c, overview, overview.Summary.LineItems == 0)
}

// GetProductRanking godoc
// @Summary      Product ranking
// @Description  Top or bottom products by units sold or revenue
// @Tags         dashboard
// @Produce      json
// @Param        metric     query string false "count or revenue"
// @Param        direction  query string false "top or bottom"
// @Param        n          query int    false "number of products"
// @Router       /dashboard/products/ranking [get]
func (h *DashboardHandler) GetProductRanking(c *gin.Context) {
	var req dto.RankingRequest
	if !h.BindQuery(c, &req) {
		return
	}
	spec, ok := h.filterSpec(c, &req.FilterRequest)
	if !ok {
		return
	}

	q := analyticsapp.RankingQuery{
		Metric:    analytics.MetricCount,
		Direction: analytics.DirectionTop,
		N:         req.N,
	}
	if req.Metric != "" {
		q.Metric = analytics.Metric(req.Metric)
	}
	if req.Direction != "" {
		q.Direction = analytics.Direction(req.Direction)
	}

	ranking, err := h.service.ProductRanking(c.Request.Context(), spec, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessOrEmpty(c, ranking, len(ranking) == 0)
}

// ExportProductSales godoc
// @Summary      Export product sales
// @Description  Per product units and revenue of the filtered line items as CSV
// @Tags         dashboard
// @Produce      text/csv
// @Router       /dashboard/products/export [get]
func (h *DashboardHandler) ExportProductSales(c *gin.Context) {
	var req dto.FilterRequest
	if !h.BindQuery(c, &req) {
		return
	}
	spec, ok := h.filterSpec(c, &req)
	if !ok {
		return
	}

	rows, err := h.service.ProductSalesExport(c.Request.Context(), spec)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="product_sales.csv"`)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"product_id", "product_category_name", "total_sold", "total_revenue"})
	for _, r := range rows {
		_ = w.Write([]string{r.ProductID, r.Category, strconv.FormatInt(r.Count, 10), r.Revenue.StringFixed(2)})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = c.Error(err)
	}
}

// GetPaymentDistribution godoc
// @Summary      Payment method distribution
// @Description  Share of payment records per payment type for the filtered orders
// @Tags         dashboard
// @Produce      json
// @Param        exclude_undefined query bool false "drop the not_defined payment type"
// @Router       /dashboard/payments [get]
func (h *DashboardHandler) GetPaymentDistribution(c *gin.Context) {
	var req dto.PaymentRequest
	if !h.BindQuery(c, &req) {
		return
	}
	spec, ok := h.filterSpec(c, &req.FilterRequest)
	if !ok {
		return
	}

	shares, err := h.service.PaymentDistribution(c.Request.Context(), spec, req.ExcludeUndefined)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessOrEmpty(c, shares, len(shares) == 0)
}

// GetGeoDistribution godoc
// @Summary      Customer zip prefix distribution
// @Description  Line items or customers per customer zip code prefix
// @Tags         dashboard
// @Produce      json
// @Param        n     query int    false "number of prefixes"
// @Param        unit  query string false "line_items or customers"
// @Router       /dashboard/geo [get]
func (h *DashboardHandler) GetGeoDistribution(c *gin.Context) {
	var req dto.GeoRequest
	if !h.BindQuery(c, &req) {
		return
	}
	spec, ok := h.filterSpec(c, &req.FilterRequest)
	if !ok {
		return
	}

	counts, err := h.service.GeoDistribution(c.Request.Context(), spec, req.N, analytics.GeoUnit(req.Unit))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessOrEmpty(c, counts, len(counts) == 0)
}

// GetRevenueTrend godoc
// @Summary      Revenue over time
// @Description  Revenue of the filtered line items per day, month or season
// @Tags         dashboard
// @Produce      json
// @Param        granularity query string false "day, month or season"
// @Router       /dashboard/revenue [get]
func (h *DashboardHandler) GetRevenueTrend(c *gin.Context) {
	var req dto.RevenueRequest
	if !h.BindQuery(c, &req) {
		return
	}
	spec, ok := h.filterSpec(c, &req.FilterRequest)
	if !ok {
		return
	}

	var g analytics.Granularity
	if req.Granularity != "" {
		parsed, err := analytics.ParseGranularity(req.Granularity)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		g = parsed
	}

	points, err := h.service.RevenueTrend(c.Request.Context(), spec, g)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessOrEmpty(c, points, len(points) == 0)
}

// GetTopOrders godoc
// @Summary      Largest orders
// @Description  Orders of the filtered view with the most line items
// @Tags         dashboard
// @Produce      json
// @Router       /dashboard/orders/top [get]
func (h *DashboardHandler) GetTopOrders(c *gin.Context) {
	var req dto.TopOrdersRequest
	if !h.BindQuery(c, &req) {
		return
	}
	spec, ok := h.filterSpec(c, &req.FilterRequest)
	if !ok {
		return
	}

	orders, err := h.service.TopOrders(c.Request.Context(), spec, req.N)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessOrEmpty(c, orders, len(orders) == 0)
}

// GetFilterOptions godoc
// @Summary      Filter options
// @Description  Months, seasons and categories present in the filtered view
// @Tags         dashboard
// @Produce      json
// @Router       /dashboard/filters [get]
func (h *DashboardHandler) GetFilterOptions(c *gin.Context) {
	var req dto.FilterRequest
	if !h.BindQuery(c, &req) {
		return
	}
	spec, ok := h.filterSpec(c, &req)
	if !ok {
		return
	}

	options, err := h.service.FilterOptions(c.Request.Context(), spec)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, options)
}

// SearchCustomers godoc
// @Summary      Customers by zip prefix
// @Description  Customers whose zip code prefix equals zip
// @Tags         dashboard
// @Produce      json
// @Param        zip query string true "zip code prefix"
// @Router       /dashboard/customers [get]
func (h *DashboardHandler) SearchCustomers(c *gin.Context) {
	var req dto.CustomerSearchRequest
	if !h.BindQuery(c, &req) {
		return
	}

	customers := h.service.CustomersByZip(c.Request.Context(), req.Zip)
	h.SuccessOrEmpty(c, customers, len(customers) == 0)
}

// ListPanels godoc
// @Summary      Dashboard panels
// @Description  Names and titles of the predefined panels
// @Tags         dashboard
// @Produce      json
// @Router       /dashboard/panels [get]
func (h *DashboardHandler) ListPanels(c *gin.Context) {
	h.Success(c, analyticsapp.Panels())
}

// GetPanel godoc
// @Summary      Evaluate a panel
// @Description  Runs one predefined panel against the filtered view
// @Tags         dashboard
// @Produce      json
// @Param        name path string true "panel name"
// @Router       /dashboard/panels/{name} [get]
func (h *DashboardHandler) GetPanel(c *gin.Context) {
	var req dto.FilterRequest
	if !h.BindQuery(c, &req) {
		return
	}
	spec, ok := h.filterSpec(c, &req)
	if !ok {
		return
	}

	result, err := h.service.Panel(c.Request.Context(), c.Param("name"), spec)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessOrEmpty(c, result, result.Empty)
}
