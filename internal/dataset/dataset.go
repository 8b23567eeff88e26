// Package dataset holds the tabular call-detail-record structure the
// rule engine scans. Loaders normalize column names; cell access is
// typed and null-aware so detectors can skip records cleanly.
package dataset

import (
	"strconv"
	"strings"
	"time"
)

// Conventioned column names recognized by the detectors.
const (
	ColCustomerID   = "customer_id"
	ColServiceArea  = "service_area"
	ColCallerNumber = "caller_number"
	ColTotalCalls   = "tot_call_cnt_d"
	ColCallDrops    = "call_drop_cnt_d"
	ColCallDuration = "call_duration"
	ColCallTime     = "call_time"
)

// Dataset is an already-parsed, column-named tabular structure. Rows are
// aligned with Columns; an empty cell is treated as null, never as zero.
type Dataset struct {
	Columns []string
	Rows    [][]string

	index map[string]int
}

// New builds a Dataset from raw columns and rows. Column names are
// normalized to lower_snake_case the way the upstream exports vary
// ("Call Duration" and "call_duration" address the same column).
func New(columns []string, rows [][]string) *Dataset {
	d := &Dataset{
		Columns: make([]string, len(columns)),
		Rows:    rows,
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		name := NormalizeColumn(c)
		d.Columns[i] = name
		d.index[name] = i
	}
	return d
}

// NormalizeColumn lowercases a header and replaces spaces with
// underscores.
func NormalizeColumn(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// Len returns the number of data rows.
func (d *Dataset) Len() int { return len(d.Rows) }

// HasColumns reports whether every named column is present. Detectors
// call this before running so the skip/run decision stays auditable.
func (d *Dataset) HasColumns(cols ...string) bool {
	for _, c := range cols {
		if _, ok := d.index[c]; !ok {
			return false
		}
	}
	return true
}

// cell returns the raw cell value and whether it is non-null.
func (d *Dataset) cell(row int, col string) (string, bool) {
	i, ok := d.index[col]
	if !ok || row < 0 || row >= len(d.Rows) {
		return "", false
	}
	r := d.Rows[row]
	if i >= len(r) {
		return "", false
	}
	v := strings.TrimSpace(r[i])
	if v == "" {
		return "", false
	}
	return v, true
}

// String returns the cell as a string, false when null.
func (d *Dataset) String(row int, col string) (string, bool) {
	return d.cell(row, col)
}

// Float returns the cell parsed as a float, false when null or
// unparseable.
func (d *Dataset) Float(row int, col string) (float64, bool) {
	v, ok := d.cell(row, col)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// timeLayouts covers the timestamp formats seen in CDR exports.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"02/01/2006 15:04:05",
	"01/02/2006 15:04",
	"2006-01-02",
}

// Time returns the cell parsed as a timestamp, false when null or not
// parseable by any known layout.
func (d *Dataset) Time(row int, col string) (time.Time, bool) {
	v, ok := d.cell(row, col)
	if !ok {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Record returns the row as a column→value map, omitting null cells.
// Used for evidence samples attached to findings.
func (d *Dataset) Record(row int, cols ...string) map[string]any {
	if len(cols) == 0 {
		cols = d.Columns
	}
	rec := make(map[string]any, len(cols))
	for _, c := range cols {
		if v, ok := d.cell(row, c); ok {
			rec[c] = v
		}
	}
	return rec
}

// MissingCounts returns, per column, the number of null cells. Columns
// with no nulls are omitted.
func (d *Dataset) MissingCounts() map[string]int {
	counts := make(map[string]int)
	for row := range d.Rows {
		for _, c := range d.Columns {
			if _, ok := d.cell(row, c); !ok {
				counts[c]++
			}
		}
	}
	return counts
}
