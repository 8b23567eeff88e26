package dataset

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// DateRange summarizes the time span covered by a dataset's timestamp
// column.
type DateRange struct {
	Start string `json:"start_date" yaml:"start_date"`
	End   string `json:"end_date" yaml:"end_date"`
	Days  int    `json:"duration_days" yaml:"duration_days"`
}

// QualityReport describes a dataset before any compliance scan runs:
// basic stats plus data-quality issues worth surfacing to an analyst.
type QualityReport struct {
	TotalRecords int       `json:"total_records" yaml:"total_records"`
	Columns      []string  `json:"columns" yaml:"columns"`
	DateRange    DateRange `json:"date_range" yaml:"date_range"`
	Issues       []string  `json:"quality_issues,omitempty" yaml:"quality_issues,omitempty"`
}

// CheckQuality inspects the dataset for missing values, duplicate rows
// and suspicious call durations, and extracts the covered date range.
func CheckQuality(d *Dataset) QualityReport {
	report := QualityReport{
		TotalRecords: d.Len(),
		Columns:      d.Columns,
		DateRange:    dateRange(d),
	}

	missing := d.MissingCounts()
	cols := make([]string, 0, len(missing))
	for c := range missing {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	for _, c := range cols {
		report.Issues = append(report.Issues, fmt.Sprintf("Missing values in %q: %d records", c, missing[c]))
	}

	if dups := duplicateRows(d); dups > 0 {
		report.Issues = append(report.Issues, fmt.Sprintf("Duplicate records found: %d", dups))
	}

	if d.HasColumns(ColCallDuration) {
		var long, short int
		for row := range d.Rows {
			dur, ok := d.Float(row, ColCallDuration)
			if !ok {
				continue
			}
			if dur > 7200 {
				long++
			}
			if dur < 1 {
				short++
			}
		}
		if long > 0 {
			report.Issues = append(report.Issues, fmt.Sprintf("Unusually long calls (>2 hours): %d", long))
		}
		if short > 0 {
			report.Issues = append(report.Issues, fmt.Sprintf("Very short calls (<1 second): %d", short))
		}
	}

	return report
}

// dateRangeColumns are tried in order when locating the timestamp column.
var dateRangeColumns = []string{ColCallTime, "timestamp", "date", "call_date"}

func dateRange(d *Dataset) DateRange {
	unknown := DateRange{Start: "Unknown", End: "Unknown"}

	for _, col := range dateRangeColumns {
		if !d.HasColumns(col) {
			continue
		}
		var min, max time.Time
		found := false
		for row := range d.Rows {
			t, ok := d.Time(row, col)
			if !ok {
				continue
			}
			if !found || t.Before(min) {
				min = t
			}
			if !found || t.After(max) {
				max = t
			}
			found = true
		}
		if !found {
			continue
		}
		return DateRange{
			Start: min.Format("2006-01-02"),
			End:   max.Format("2006-01-02"),
			Days:  int(max.Sub(min).Hours() / 24),
		}
	}

	return unknown
}

func duplicateRows(d *Dataset) int {
	seen := make(map[string]bool, len(d.Rows))
	dups := 0
	for _, row := range d.Rows {
		key := strings.Join(row, "\x1f")
		if seen[key] {
			dups++
			continue
		}
		seen[key] = true
	}
	return dups
}
