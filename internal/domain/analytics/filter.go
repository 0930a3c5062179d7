package analytics

import (
	"fmt"
	"strings"
	"time"
)

// All disables a string valued filter option
const All = "All"

// DateRange is an inclusive range of calendar dates
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// FilterSpec is the set of sidebar selections. Zero values, and All for the
// string options, leave the corresponding column unconstrained.
type FilterSpec struct {
	DateRange *DateRange `json:"date_range,omitempty"`
	Month     string     `json:"month_bucket,omitempty"`
	Season    string     `json:"season,omitempty"`
	Category  string     `json:"category,omitempty"`
	ZipPrefix string     `json:"zip_prefix,omitempty"`
}

func isAll(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, All)
}

// Validate reports malformed options. Filter itself never fails; an option
// that cannot match anything simply yields an empty view.
func (f FilterSpec) Validate() error {
	if f.DateRange != nil && dateOf(f.DateRange.Start).After(dateOf(f.DateRange.End)) {
		return ErrInvalidDateRange
	}
	if !isAll(f.Month) {
		if _, err := time.Parse(MonthLayout, strings.TrimSpace(f.Month)); err != nil {
			return ErrInvalidMonth
		}
	}
	if !isAll(f.Season) {
		if _, err := ParseSeason(f.Season); err != nil {
			return err
		}
	}
	return nil
}

// IsZero reports whether the spec constrains nothing
func (f FilterSpec) IsZero() bool {
	return len(f.predicates()) == 0
}

// Key is a canonical string form of the spec, equal for specs that select
// the same rows through the same options.
func (f FilterSpec) Key() string {
	var b strings.Builder
	if f.DateRange != nil {
		fmt.Fprintf(&b, "range=%s..%s;",
			dateOf(f.DateRange.Start).Format(DayLayout),
			dateOf(f.DateRange.End).Format(DayLayout))
	}
	if !isAll(f.Month) {
		fmt.Fprintf(&b, "month=%s;", strings.TrimSpace(f.Month))
	}
	if !isAll(f.Season) {
		season, err := ParseSeason(f.Season)
		if err != nil {
			season = Season(f.Season)
		}
		fmt.Fprintf(&b, "season=%s;", season)
	}
	if !isAll(f.Category) {
		fmt.Fprintf(&b, "category=%s;", f.Category)
	}
	if strings.TrimSpace(f.ZipPrefix) != "" {
		fmt.Fprintf(&b, "zip=%s;", strings.TrimSpace(f.ZipPrefix))
	}
	if b.Len() == 0 {
		return All
	}
	return b.String()
}

type predicate func(*LineItem) bool

// predicates returns one test per active option. Zip and category come
// first because they are usually the most selective; the result does not
// depend on the order since the tests are independent.
func (f FilterSpec) predicates() []predicate {
	var preds []predicate

	if zip := strings.TrimSpace(f.ZipPrefix); zip != "" {
		preds = append(preds, func(li *LineItem) bool {
			return strings.HasPrefix(li.ZipPrefix, zip)
		})
	}
	if !isAll(f.Category) {
		category := f.Category
		preds = append(preds, func(li *LineItem) bool {
			return li.Category == category
		})
	}
	if !isAll(f.Month) {
		month := strings.TrimSpace(f.Month)
		preds = append(preds, func(li *LineItem) bool {
			return li.Period.Valid && li.Period.Month == month
		})
	}
	if !isAll(f.Season) {
		// an unknown season matches no row
		season, _ := ParseSeason(f.Season)
		preds = append(preds, func(li *LineItem) bool {
			return li.Period.Valid && li.Period.Season == season
		})
	}
	if f.DateRange != nil {
		start, end := dateOf(f.DateRange.Start), dateOf(f.DateRange.End)
		preds = append(preds, func(li *LineItem) bool {
			if !li.Period.Valid {
				return false
			}
			day := dateOf(li.ShippingLimitDate.Time)
			return !day.Before(start) && !day.After(end)
		})
	}

	return preds
}

// Filter returns the rows of view that satisfy every active option of spec.
// Rows without a valid timestamp fail the date, month and season options.
func Filter(view View, spec FilterSpec) View {
	preds := spec.predicates()
	out := make(View, 0, len(view))

	for i := range view {
		keep := true
		for _, p := range preds {
			if !p(&view[i]) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, view[i])
		}
	}

	return out
}

// dateOf drops the clock part of ts, keeping the calendar date as written
func dateOf(ts time.Time) time.Time {
	y, m, d := ts.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
