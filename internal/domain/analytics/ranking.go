package analytics

import (
	"cmp"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// Metric selects what a product ranking is ordered by
type Metric string

const (
	MetricCount   Metric = "count"
	MetricRevenue Metric = "revenue"
)

// ParseMetric converts a user supplied string to a Metric
func ParseMetric(s string) (Metric, error) {
	switch m := Metric(strings.ToLower(strings.TrimSpace(s))); m {
	case MetricCount, MetricRevenue:
		return m, nil
	}
	return "", ErrInvalidMetric
}

// Direction selects the end of the ranking to return
type Direction string

const (
	DirectionTop    Direction = "top"
	DirectionBottom Direction = "bottom"
)

// ParseDirection converts a user supplied string to a Direction
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case DirectionTop, DirectionBottom:
		return d, nil
	}
	return "", ErrInvalidDirection
}

// ProductSales is the per-product aggregate of a view
type ProductSales struct {
	Rank      int             `json:"rank,omitempty"`
	ProductID string          `json:"product_id"`
	Category  string          `json:"product_category_name"`
	Count     int64           `json:"total_sold"`
	Revenue   decimal.Decimal `json:"total_revenue"`
}

// ProductSalesTable groups view by product id. Rows come out in the order
// each product was first seen. A blank product id is grouped as Unknown.
func ProductSalesTable(view View) []ProductSales {
	index := make(map[string]int)
	var out []ProductSales

	for i := range view {
		li := &view[i]
		id := li.ProductID
		if id == "" {
			id = Unknown
		}
		pos, ok := index[id]
		if !ok {
			pos = len(out)
			index[id] = pos
			out = append(out, ProductSales{
				ProductID: id,
				Category:  li.Category,
				Revenue:   decimal.Zero,
			})
		}
		out[pos].Count++
		out[pos].Revenue = out[pos].Revenue.Add(li.Price)
	}

	return out
}

// RankedProductSales returns the first n products of view ordered by
// metric, descending for DirectionTop and ascending for DirectionBottom.
// Ties keep first-seen order. Fewer than n rows come back when the view
// holds fewer products; n <= 0 yields an empty result.
func RankedProductSales(view View, metric Metric, direction Direction, n int) ([]ProductSales, error) {
	var compare func(a, b ProductSales) int
	switch metric {
	case MetricCount:
		compare = func(a, b ProductSales) int { return cmp.Compare(a.Count, b.Count) }
	case MetricRevenue:
		compare = func(a, b ProductSales) int { return a.Revenue.Cmp(b.Revenue) }
	default:
		return nil, ErrInvalidMetric
	}

	switch direction {
	case DirectionTop:
		asc := compare
		compare = func(a, b ProductSales) int { return asc(b, a) }
	case DirectionBottom:
	default:
		return nil, ErrInvalidDirection
	}

	table := ProductSalesTable(view)
	slices.SortStableFunc(table, compare)
	table = limit(table, n)

	for i := range table {
		table[i].Rank = i + 1
	}
	return table, nil
}

// keyCount is a grouping key with its row count
type keyCount struct {
	key   string
	count int64
}

// countBy counts rows per key in first-seen order. Blank keys count as
// Unknown.
func countBy[T any](rows []T, key func(*T) string) []keyCount {
	index := make(map[string]int)
	var out []keyCount

	for i := range rows {
		k := key(&rows[i])
		if k == "" {
			k = Unknown
		}
		pos, ok := index[k]
		if !ok {
			pos = len(out)
			index[k] = pos
			out = append(out, keyCount{key: k})
		}
		out[pos].count++
	}

	return out
}

// sortByCountDesc orders counts from largest to smallest keeping first-seen
// order between equal counts
func sortByCountDesc(counts []keyCount) {
	slices.SortStableFunc(counts, func(a, b keyCount) int {
		return cmp.Compare(b.count, a.count)
	})
}

func limit[T any](rows []T, n int) []T {
	if n <= 0 {
		return []T{}
	}
	if len(rows) > n {
		return rows[:n]
	}
	if rows == nil {
		return []T{}
	}
	return rows
}
