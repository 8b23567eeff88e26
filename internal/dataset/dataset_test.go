package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNormalizesColumns(t *testing.T) {
	d := New([]string{"Customer ID", " Call Duration ", "tot_call_cnt_d"}, nil)

	assert.Equal(t, []string{"customer_id", "call_duration", "tot_call_cnt_d"}, d.Columns)
	assert.True(t, d.HasColumns("customer_id", "call_duration"))
	assert.False(t, d.HasColumns("customer_id", "missing"))
}

func TestCellAccess(t *testing.T) {
	d := New([]string{"customer_id", "call_duration", "call_time"}, [][]string{
		{"C1", "120.5", "2024-03-01 14:30:00"},
		{"C2", "", "not a date"},
		{"C3", "abc"},
	})

	v, ok := d.String(0, "customer_id")
	require.True(t, ok)
	assert.Equal(t, "C1", v)

	f, ok := d.Float(0, "call_duration")
	require.True(t, ok)
	assert.Equal(t, 120.5, f)

	ts, ok := d.Time(0, "call_time")
	require.True(t, ok)
	assert.Equal(t, 14, ts.Hour())

	// Empty cell is null, never zero.
	_, ok = d.Float(1, "call_duration")
	assert.False(t, ok)

	// Unparseable values are null too.
	_, ok = d.Time(1, "call_time")
	assert.False(t, ok)
	_, ok = d.Float(2, "call_duration")
	assert.False(t, ok)

	// Ragged row: missing trailing cell is null.
	_, ok = d.String(2, "call_time")
	assert.False(t, ok)
}

func TestRecord(t *testing.T) {
	d := New([]string{"customer_id", "service_area"}, [][]string{
		{"C1", ""},
	})

	rec := d.Record(0)
	assert.Equal(t, map[string]any{"customer_id": "C1"}, rec)

	rec = d.Record(0, "customer_id")
	assert.Equal(t, map[string]any{"customer_id": "C1"}, rec)
}

func TestMissingCounts(t *testing.T) {
	d := New([]string{"a", "b"}, [][]string{
		{"1", ""},
		{"", ""},
	})

	assert.Equal(t, map[string]int{"a": 1, "b": 2}, d.MissingCounts())
}

func TestParseCSV(t *testing.T) {
	csv := "Customer ID,Tot Call Cnt D,Call Drop Cnt D\nC1,100,2\nC2,50,1\n"

	d, err := ParseCSV(strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 2, d.Len())
	assert.True(t, d.HasColumns("customer_id", "tot_call_cnt_d", "call_drop_cnt_d"))

	f, ok := d.Float(1, "call_drop_cnt_d")
	require.True(t, ok)
	assert.Equal(t, 1.0, f)
}

func TestParseCSVErrors(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""))
	assert.Error(t, err)

	_, err = ParseCSV(strings.NewReader("only,header\n"))
	assert.Error(t, err)
}

func TestCheckQuality(t *testing.T) {
	d := New([]string{"customer_id", "call_duration", "call_time"}, [][]string{
		{"C1", "8000", "2024-03-01 10:00:00"},
		{"C1", "8000", "2024-03-01 10:00:00"}, // duplicate
		{"C2", "0.5", "2024-03-05 11:00:00"},
		{"C3", "", "2024-03-10 12:00:00"},
	})

	report := CheckQuality(d)

	assert.Equal(t, 4, report.TotalRecords)
	assert.Equal(t, "2024-03-01", report.DateRange.Start)
	assert.Equal(t, "2024-03-10", report.DateRange.End)
	assert.Equal(t, 9, report.DateRange.Days)

	joined := strings.Join(report.Issues, "\n")
	assert.Contains(t, joined, `Missing values in "call_duration": 1`)
	assert.Contains(t, joined, "Duplicate records found: 1")
	assert.Contains(t, joined, "Unusually long calls (>2 hours): 2")
	assert.Contains(t, joined, "Very short calls (<1 second): 1")
}

func TestCheckQualityNoTimestampColumn(t *testing.T) {
	d := New([]string{"customer_id"}, [][]string{{"C1"}})

	report := CheckQuality(d)
	assert.Equal(t, "Unknown", report.DateRange.Start)
	assert.Equal(t, "Unknown", report.DateRange.End)
}
