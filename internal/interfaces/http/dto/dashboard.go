package dto

import (
	"time"

	"github.com/Nadifnugraha/dicowi/internal/domain/analytics"
	"github.com/Nadifnugraha/dicowi/internal/domain/shared"
)

// ErrIncompleteDateRange is returned when only one end of the date range is
// given
var ErrIncompleteDateRange = shared.ErrInvalidInput.WithMessage("start_date and end_date must be given together")

// FilterRequest carries the sidebar selections as query parameters
type FilterRequest struct {
	StartDate string `form:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"end_date" binding:"omitempty,datetime=2006-01-02"`
	Month     string `form:"month" binding:"omitempty,month_bucket"`
	Season    string `form:"season" binding:"omitempty,season"`
	Category  string `form:"category" binding:"max=100"`
	ZipPrefix string `form:"zip_prefix" binding:"omitempty,numeric,max=5"`
}

// ToSpec converts the request into a filter specification
func (r FilterRequest) ToSpec() (analytics.FilterSpec, error) {
	spec := analytics.FilterSpec{
		Month:     r.Month,
		Season:    r.Season,
		Category:  r.Category,
		ZipPrefix: r.ZipPrefix,
	}

	if r.StartDate == "" && r.EndDate == "" {
		return spec, nil
	}
	if r.StartDate == "" || r.EndDate == "" {
		return analytics.FilterSpec{}, ErrIncompleteDateRange
	}

	start, err := time.Parse(analytics.DayLayout, r.StartDate)
	if err != nil {
		return analytics.FilterSpec{}, shared.ErrInvalidInput.WithMessage("start_date must be formatted as YYYY-MM-DD")
	}
	end, err := time.Parse(analytics.DayLayout, r.EndDate)
	if err != nil {
		return analytics.FilterSpec{}, shared.ErrInvalidInput.WithMessage("end_date must be formatted as YYYY-MM-DD")
	}
	spec.DateRange = &analytics.DateRange{Start: start, End: end}
	return spec, nil
}

// RankingRequest selects a product ranking
type RankingRequest struct {
	FilterRequest
	Metric    string `form:"metric" binding:"omitempty,oneof=count revenue"`
	Direction string `form:"direction" binding:"omitempty,oneof=top bottom"`
	N         int    `form:"n" binding:"omitempty,min=1,max=1000"`
}

// PaymentRequest selects the payment distribution
type PaymentRequest struct {
	FilterRequest
	ExcludeUndefined *bool `form:"exclude_undefined"`
}

// GeoRequest selects the zip prefix distribution
type GeoRequest struct {
	FilterRequest
	N    int    `form:"n" binding:"omitempty,min=1,max=1000"`
	Unit string `form:"unit" binding:"omitempty,oneof=line_items customers"`
}

// RevenueRequest selects the revenue trend
type RevenueRequest struct {
	FilterRequest
	Granularity string `form:"granularity" binding:"omitempty,granularity"`
}

// TopOrdersRequest selects the orders with the most line items
type TopOrdersRequest struct {
	FilterRequest
	N int `form:"n" binding:"omitempty,min=1,max=1000"`
}

// CustomerSearchRequest looks a zip prefix up in the customer table
type CustomerSearchRequest struct {
	Zip string `form:"zip" binding:"required,numeric,max=5"`
}
