package analytics

import (
	"math"
	"slices"

	"github.com/shopspring/decimal"
)

// Summary holds the headline numbers of the overview page
type Summary struct {
	LineItems      int             `json:"line_items"`
	Orders         int             `json:"orders"`
	UniqueProducts int             `json:"unique_products"`
	Revenue        decimal.Decimal `json:"total_revenue"`
}

// Summarize totals view. uniqueProducts is the catalogue size, which the
// overview reports independently of the filters.
func Summarize(view View, uniqueProducts int) Summary {
	orders := make(map[string]struct{})
	revenue := decimal.Zero
	for i := range view {
		orders[view[i].OrderID] = struct{}{}
		revenue = revenue.Add(view[i].Price)
	}
	return Summary{
		LineItems:      len(view),
		Orders:         len(orders),
		UniqueProducts: uniqueProducts,
		Revenue:        revenue,
	}
}

// PriceStats describes the price column. Std is the sample standard
// deviation and quantiles use linear interpolation; both are 0 when there
// are too few rows to define them.
type PriceStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	P25    float64 `json:"p25"`
	Median float64 `json:"p50"`
	P75    float64 `json:"p75"`
	Max    float64 `json:"max"`
}

// DescribePrices computes descriptive statistics of the price column
func DescribePrices(view View) PriceStats {
	if len(view) == 0 {
		return PriceStats{}
	}

	prices := make([]float64, len(view))
	var sum float64
	for i := range view {
		prices[i] = view[i].Price.InexactFloat64()
		sum += prices[i]
	}
	slices.Sort(prices)

	n := float64(len(prices))
	mean := sum / n
	var std float64
	if len(prices) > 1 {
		var sq float64
		for _, p := range prices {
			sq += (p - mean) * (p - mean)
		}
		std = math.Sqrt(sq / (n - 1))
	}

	return PriceStats{
		Count:  len(prices),
		Mean:   mean,
		Std:    std,
		Min:    prices[0],
		P25:    quantile(prices, 0.25),
		Median: quantile(prices, 0.5),
		P75:    quantile(prices, 0.75),
		Max:    prices[len(prices)-1],
	}
}

func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// OrderItemCount is the number of line items of an order
type OrderItemCount struct {
	OrderID string `json:"order_id"`
	Items   int64  `json:"items"`
}

// TopOrdersByItemCount returns the n orders with the most line items
func TopOrdersByItemCount(view View, n int) []OrderItemCount {
	counts := countBy(view, func(li *LineItem) string { return li.OrderID })
	sortByCountDesc(counts)
	counts = limit(counts, n)

	out := make([]OrderItemCount, len(counts))
	for i, kc := range counts {
		out[i] = OrderItemCount{OrderID: kc.key, Items: kc.count}
	}
	return out
}

// Options lists the values the sidebar filters can take for a view
type Options struct {
	Months       []string `json:"months"`
	Seasons      []Season `json:"seasons"`
	Categories   []string `json:"categories"`
	EarliestDate string   `json:"earliest_date,omitempty"`
	LatestDate   string   `json:"latest_date,omitempty"`
}

// FilterOptions collects the distinct months (ascending), seasons (calendar
// order), categories (sorted) and the date bounds present in view
func FilterOptions(view View) Options {
	months := make(map[string]struct{})
	seasons := make(map[Season]struct{})
	categories := make(map[string]struct{})
	var earliest, latest string

	for i := range view {
		li := &view[i]
		categories[li.Category] = struct{}{}
		if !li.Period.Valid {
			continue
		}
		months[li.Period.Month] = struct{}{}
		seasons[li.Period.Season] = struct{}{}
		if earliest == "" || li.Period.Day < earliest {
			earliest = li.Period.Day
		}
		if li.Period.Day > latest {
			latest = li.Period.Day
		}
	}

	opts := Options{
		Months:       sortedKeys(months),
		Seasons:      make([]Season, 0, len(seasons)),
		Categories:   sortedKeys(categories),
		EarliestDate: earliest,
		LatestDate:   latest,
	}
	for _, s := range Seasons {
		if _, ok := seasons[s]; ok {
			opts.Seasons = append(opts.Seasons, s)
		}
	}
	return opts
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
