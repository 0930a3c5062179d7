package analytics

import (
	"database/sql"
	"strings"
	"time"
)

// Granularity is the calendar resolution of a time bucket
type Granularity string

const (
	GranularityDay    Granularity = "day"
	GranularityMonth  Granularity = "month"
	GranularitySeason Granularity = "season"
)

// Bucket label layouts
const (
	DayLayout   = "2006-01-02"
	MonthLayout = "2006-01"
)

// ParseGranularity converts a user supplied string to a Granularity
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case GranularityDay, GranularityMonth, GranularitySeason:
		return g, nil
	}
	return "", ErrInvalidGranularity
}

// Season is a meteorological season label
type Season string

const (
	SeasonWinter Season = "Winter"
	SeasonSpring Season = "Spring"
	SeasonSummer Season = "Summer"
	SeasonFall   Season = "Fall"
)

// Seasons lists the seasons in calendar order starting with Winter
var Seasons = []Season{SeasonWinter, SeasonSpring, SeasonSummer, SeasonFall}

// SeasonOf maps a month to its season: Dec-Feb Winter, Mar-May Spring,
// Jun-Aug Summer, Sep-Nov Fall.
func SeasonOf(m time.Month) Season {
	switch m {
	case time.December, time.January, time.February:
		return SeasonWinter
	case time.March, time.April, time.May:
		return SeasonSpring
	case time.June, time.July, time.August:
		return SeasonSummer
	default:
		return SeasonFall
	}
}

// ParseSeason matches a season name case-insensitively
func ParseSeason(s string) (Season, error) {
	for _, season := range Seasons {
		if strings.EqualFold(strings.TrimSpace(s), string(season)) {
			return season, nil
		}
	}
	return "", ErrInvalidSeason
}

func seasonOrdinal(s Season) int {
	for i, season := range Seasons {
		if season == s {
			return i
		}
	}
	return len(Seasons)
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	DayLayout,
}

// ParseTimestamp parses the timestamp formats found in the source tables.
// Blank or unparseable input yields ErrInvalidTimestamp.
func ParseTimestamp(raw string) (sql.NullTime, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return sql.NullTime{}, ErrInvalidTimestamp
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return sql.NullTime{Time: ts, Valid: true}, nil
		}
	}
	return sql.NullTime{}, ErrInvalidTimestamp.WithMessage("unparseable timestamp " + raw)
}

// Bucket returns the label of the period ts falls into
func Bucket(ts sql.NullTime, g Granularity) (string, error) {
	if !ts.Valid || ts.Time.IsZero() {
		return "", ErrInvalidTimestamp
	}
	switch g {
	case GranularityDay:
		return ts.Time.Format(DayLayout), nil
	case GranularityMonth:
		return ts.Time.Format(MonthLayout), nil
	case GranularitySeason:
		return string(SeasonOf(ts.Time.Month())), nil
	}
	return "", ErrInvalidGranularity
}

// Period is the precomputed set of bucket labels of a line item
type Period struct {
	Day    string `json:"day,omitempty"`
	Month  string `json:"month,omitempty"`
	Season Season `json:"season,omitempty"`
	Valid  bool   `json:"valid"`
}

// PeriodOf buckets ts at every granularity at once
func PeriodOf(ts sql.NullTime) (Period, error) {
	if !ts.Valid || ts.Time.IsZero() {
		return Period{}, ErrInvalidTimestamp
	}
	return Period{
		Day:    ts.Time.Format(DayLayout),
		Month:  ts.Time.Format(MonthLayout),
		Season: SeasonOf(ts.Time.Month()),
		Valid:  true,
	}, nil
}

// Label returns the bucket label of the period at granularity g
func (p Period) Label(g Granularity) (string, error) {
	if !p.Valid {
		return "", ErrInvalidTimestamp
	}
	switch g {
	case GranularityDay:
		return p.Day, nil
	case GranularityMonth:
		return p.Month, nil
	case GranularitySeason:
		return string(p.Season), nil
	}
	return "", ErrInvalidGranularity
}

// bucketLess orders bucket labels chronologically. Day and month labels
// are ISO formatted so they compare lexically; seasons follow Seasons.
func bucketLess(g Granularity, a, b string) bool {
	if g == GranularitySeason {
		return seasonOrdinal(Season(a)) < seasonOrdinal(Season(b))
	}
	return a < b
}
