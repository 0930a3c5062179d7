package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func orderIDs(v View) []string {
	ids := make([]string, len(v))
	for i := range v {
		ids[i] = v[i].OrderID + "/" + v[i].ProductID
	}
	return ids
}

func TestFilter(t *testing.T) {
	view := fixtureView()

	tests := []struct {
		name string
		spec FilterSpec
		want []string
	}{
		{
			name: "zero spec keeps everything",
			spec: FilterSpec{},
			want: []string{"o1/p1", "o1/p2", "o2/p1", "o3/p3", "o3/p1", "o4/pX"},
		},
		{
			name: "All options keep everything",
			spec: FilterSpec{Month: "All", Season: "All", Category: "All"},
			want: []string{"o1/p1", "o1/p2", "o2/p1", "o3/p3", "o3/p1", "o4/pX"},
		},
		{
			name: "inclusive date range",
			spec: FilterSpec{DateRange: &DateRange{Start: day("2018-01-10"), End: day("2018-04-02")}},
			want: []string{"o1/p1", "o1/p2", "o2/p1"},
		},
		{
			name: "month bucket",
			spec: FilterSpec{Month: "2018-07"},
			want: []string{"o3/p3"},
		},
		{
			name: "season",
			spec: FilterSpec{Season: "fall"},
			want: []string{"o3/p1"},
		},
		{
			name: "category",
			spec: FilterSpec{Category: "perfumaria"},
			want: []string{"o1/p1", "o2/p1", "o3/p1"},
		},
		{
			name: "unknown category is selectable",
			spec: FilterSpec{Category: Unknown},
			want: []string{"o3/p3", "o4/pX"},
		},
		{
			name: "zip prefix",
			spec: FilterSpec{ZipPrefix: "013"},
			want: []string{"o1/p1", "o1/p2", "o3/p3", "o3/p1"},
		},
		{
			name: "conjunction",
			spec: FilterSpec{Category: "perfumaria", ZipPrefix: "01310", Season: "Winter"},
			want: []string{"o1/p1"},
		},
		{
			name: "no match is an empty view",
			spec: FilterSpec{Month: "2016-01"},
			want: []string{},
		},
		{
			name: "unrecognised season matches nothing",
			spec: FilterSpec{Season: "Monsoon"},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(view, tt.spec)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, orderIDs(got))
		})
	}
}

func TestFilter_Idempotent(t *testing.T) {
	view := fixtureView()
	specs := []FilterSpec{
		{},
		{Category: "perfumaria"},
		{DateRange: &DateRange{Start: day("2018-01-01"), End: day("2018-12-31")}, ZipPrefix: "0"},
		{Season: "Summer", Month: "2018-07"},
	}

	for _, spec := range specs {
		once := Filter(view, spec)
		twice := Filter(once, spec)
		assert.Equal(t, once, twice, spec.Key())
	}
}

func TestFilter_OrderOfOptionsIsIrrelevant(t *testing.T) {
	view := fixtureView()
	combined := Filter(view, FilterSpec{Category: "perfumaria", Season: "Winter"})
	chained := Filter(Filter(view, FilterSpec{Season: "Winter"}), FilterSpec{Category: "perfumaria"})
	reversed := Filter(Filter(view, FilterSpec{Category: "perfumaria"}), FilterSpec{Season: "Winter"})

	assert.Equal(t, combined, chained)
	assert.Equal(t, combined, reversed)
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	view := fixtureView()
	before := orderIDs(view)

	_ = Filter(view, FilterSpec{Category: "pet_shop"})

	assert.Equal(t, before, orderIDs(view))
}

func TestFilterSpec_Validate(t *testing.T) {
	assert.NoError(t, FilterSpec{}.Validate())
	assert.NoError(t, FilterSpec{Month: "2018-02", Season: "spring"}.Validate())
	assert.Equal(t, ErrInvalidMonth, FilterSpec{Month: "Feb 2018"}.Validate())
	assert.Equal(t, ErrInvalidSeason, FilterSpec{Season: "Monsoon"}.Validate())
	assert.Equal(t, ErrInvalidDateRange, FilterSpec{
		DateRange: &DateRange{Start: day("2018-02-01"), End: day("2018-01-01")},
	}.Validate())
}

func TestFilterSpec_Key(t *testing.T) {
	assert.Equal(t, All, FilterSpec{}.Key())
	assert.Equal(t, FilterSpec{Month: "All"}.Key(), FilterSpec{}.Key())
	assert.Equal(t, FilterSpec{Season: "winter"}.Key(), FilterSpec{Season: "Winter"}.Key())
	assert.NotEqual(t, FilterSpec{Category: "a"}.Key(), FilterSpec{Category: "b"}.Key())
	assert.True(t, FilterSpec{Month: "All", Category: " All"}.IsZero())
}
