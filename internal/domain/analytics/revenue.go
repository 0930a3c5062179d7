package analytics

import (
	"slices"

	"github.com/shopspring/decimal"
)

// RevenuePoint is the revenue of one time bucket
type RevenuePoint struct {
	Bucket  string          `json:"bucket"`
	Revenue decimal.Decimal `json:"total_revenue"`
	Items   int64           `json:"items"`
}

// RevenueOverTime sums price per time bucket and returns the buckets in
// chronological order. Rows without a valid timestamp are left out.
func RevenueOverTime(view View, g Granularity) ([]RevenuePoint, error) {
	if _, err := ParseGranularity(string(g)); err != nil {
		return nil, err
	}

	index := make(map[string]int)
	out := make([]RevenuePoint, 0)

	for i := range view {
		label, err := view[i].Period.Label(g)
		if err != nil {
			continue
		}
		pos, ok := index[label]
		if !ok {
			pos = len(out)
			index[label] = pos
			out = append(out, RevenuePoint{Bucket: label, Revenue: decimal.Zero})
		}
		out[pos].Revenue = out[pos].Revenue.Add(view[i].Price)
		out[pos].Items++
	}

	slices.SortFunc(out, func(a, b RevenuePoint) int {
		switch {
		case bucketLess(g, a.Bucket, b.Bucket):
			return -1
		case bucketLess(g, b.Bucket, a.Bucket):
			return 1
		}
		return 0
	})
	return out, nil
}
