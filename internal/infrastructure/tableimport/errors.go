package tableimport

import (
	"errors"
	"fmt"
	"strings"
)

// Row error codes
const (
	CodeRequiredField = "REQUIRED_FIELD"
	CodeInvalidNumber = "INVALID_NUMBER"
)

var (
	// ErrEmptyFile is returned for an input with no bytes
	ErrEmptyFile = errors.New("csv file is empty")
	// ErrMissingHeader is returned when the input has no header row
	ErrMissingHeader = errors.New("csv file missing header row")
	// ErrMissingColumns is returned when required columns are absent
	ErrMissingColumns = errors.New("csv file missing required columns")
	// ErrUnknownTable is returned for a table name outside the bundle
	ErrUnknownTable = errors.New("unknown table")
)

// RowError describes a row that was skipped or a value that was coerced
type RowError struct {
	Table   string `json:"table"`
	Line    int    `json:"line"`
	Column  string `json:"column"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// Error implements the error interface
func (e RowError) Error() string {
	return fmt.Sprintf("%s line %d, column '%s': %s", e.Table, e.Line, e.Column, e.Message)
}

// Report summarises a bundle load
type Report struct {
	Rows    map[string]int `json:"rows"`
	Skipped []RowError     `json:"skipped"`
	// Dropped counts skipped rows beyond the ones kept in Skipped
	Dropped int `json:"dropped"`
	// Coerced lists kept rows with a value replaced by its zero value
	Coerced []RowError `json:"coerced,omitempty"`
	// CoercedDropped counts coerced rows beyond the ones kept in Coerced
	CoercedDropped int `json:"coerced_dropped,omitempty"`
}

const maxReportedErrors = 100

func newReport() *Report {
	return &Report{Rows: make(map[string]int)}
}

func (r *Report) skip(e RowError) {
	if len(r.Skipped) < maxReportedErrors {
		r.Skipped = append(r.Skipped, e)
		return
	}
	r.Dropped++
}

func (r *Report) coerce(e RowError) {
	if len(r.Coerced) < maxReportedErrors {
		r.Coerced = append(r.Coerced, e)
		return
	}
	r.CoercedDropped++
}

// CoercedCount is the total number of kept rows with a coerced value
func (r *Report) CoercedCount() int {
	return len(r.Coerced) + r.CoercedDropped
}

// SkippedCount is the total number of skipped rows
func (r *Report) SkippedCount() int {
	return len(r.Skipped) + r.Dropped
}

func missingColumnsError(table string, missing []string) error {
	return fmt.Errorf("%w: %s needs %s", ErrMissingColumns, table, strings.Join(missing, ", "))
}
