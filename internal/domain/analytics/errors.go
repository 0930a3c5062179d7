package analytics

import "github.com/Nadifnugraha/dicowi/internal/domain/shared"

// Unknown labels a grouping key whose source value is null or whose join
// found no matching row.
const Unknown = "unknown"

// Analytics errors. None of them is fatal to a pipeline run: bucketing
// failures drop the row from time-based aggregations, bad parameters are
// reported back to the caller.
var (
	ErrInvalidTimestamp   = shared.ErrInvalidTimestamp
	ErrInvalidGranularity = shared.ErrInvalidInput.WithMessage("granularity must be day, month or season")
	ErrInvalidSeason      = shared.ErrInvalidInput.WithMessage("season must be Winter, Spring, Summer, Fall or All")
	ErrInvalidMonth       = shared.ErrInvalidInput.WithMessage("month must be formatted as YYYY-MM or All")
	ErrInvalidDateRange   = shared.ErrInvalidInput.WithMessage("date range start must not be after its end")
	ErrInvalidMetric      = shared.ErrInvalidInput.WithMessage("metric must be count or revenue")
	ErrInvalidDirection   = shared.ErrInvalidInput.WithMessage("direction must be top or bottom")
	ErrInvalidGeoUnit     = shared.ErrInvalidInput.WithMessage("unit must be line_items or customers")
)
