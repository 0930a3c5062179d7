package analytics

import (
	"strings"

	"github.com/Nadifnugraha/dicowi/internal/domain/commerce"
)

// GeoUnit selects what GeoDistribution counts per zip prefix
type GeoUnit string

const (
	GeoUnitLineItems GeoUnit = "line_items"
	GeoUnitCustomers GeoUnit = "customers"
)

// ParseGeoUnit converts a user supplied string to a GeoUnit
func ParseGeoUnit(s string) (GeoUnit, error) {
	switch u := GeoUnit(strings.ToLower(strings.TrimSpace(s))); u {
	case GeoUnitLineItems, GeoUnitCustomers:
		return u, nil
	}
	return "", ErrInvalidGeoUnit
}

// ZipCount is the number of line items or customers behind a zip prefix
type ZipCount struct {
	ZipPrefix string `json:"customer_zip_code_prefix"`
	Count     int64  `json:"count"`
}

// GeoDistribution returns the n zip prefixes of view with the most line
// items, or the most distinct customers, largest first. Zip prefixes are
// compared as strings.
func GeoDistribution(view View, n int, unit GeoUnit) ([]ZipCount, error) {
	var counts []keyCount

	switch unit {
	case GeoUnitLineItems:
		counts = countBy(view, func(li *LineItem) string { return li.ZipPrefix })
	case GeoUnitCustomers:
		seen := make(map[string]struct{})
		distinct := make(View, 0, len(view))
		for i := range view {
			key := view[i].ZipPrefix + "\x00" + view[i].CustomerID
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			distinct = append(distinct, view[i])
		}
		counts = countBy(distinct, func(li *LineItem) string { return li.ZipPrefix })
	default:
		return nil, ErrInvalidGeoUnit
	}

	return toZipCounts(counts, n), nil
}

// CustomerZipDistribution counts rows of the customer table per zip prefix
// and returns the n largest groups
func CustomerZipDistribution(customers []commerce.Customer, n int) []ZipCount {
	counts := countBy(customers, func(c *commerce.Customer) string { return c.ZipCodePrefix })
	return toZipCounts(counts, n)
}

// CustomersByZip returns the customers whose zip prefix equals zip
func CustomersByZip(customers []commerce.Customer, zip string) []commerce.Customer {
	zip = strings.TrimSpace(zip)
	out := make([]commerce.Customer, 0)
	if zip == "" {
		return out
	}
	for _, c := range customers {
		if c.ZipCodePrefix == zip {
			out = append(out, c)
		}
	}
	return out
}

func toZipCounts(counts []keyCount, n int) []ZipCount {
	sortByCountDesc(counts)
	counts = limit(counts, n)

	out := make([]ZipCount, len(counts))
	for i, kc := range counts {
		out[i] = ZipCount{ZipPrefix: kc.key, Count: kc.count}
	}
	return out
}
