package dataset

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func writeTestXLSX(t *testing.T, sheetName string, rows [][]string) string {
	t.Helper()

	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	require.NoError(t, err)
	for _, r := range rows {
		row := sheet.AddRow()
		for _, v := range r {
			row.AddCell().SetString(v)
		}
	}

	path := filepath.Join(t.TempDir(), "records.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestReadXLSX(t *testing.T) {
	path := writeTestXLSX(t, "Sheet1", [][]string{
		{"Customer ID", "Tot Call Cnt D", "Call Drop Cnt D"},
		{"C1", "100", "2"},
		{"C2", "50", "1"},
	})

	d, err := ReadXLSX(path, XLSXOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2, d.Len())
	assert.True(t, d.HasColumns("customer_id", "tot_call_cnt_d", "call_drop_cnt_d"))

	f, ok := d.Float(0, "tot_call_cnt_d")
	require.True(t, ok)
	assert.Equal(t, 100.0, f)
}

func TestReadXLSXBySheetName(t *testing.T) {
	path := writeTestXLSX(t, "CDR Export", [][]string{
		{"customer_id"},
		{"C1"},
	})

	d, err := ReadXLSX(path, XLSXOptions{SheetName: "CDR Export"})
	require.NoError(t, err)
	assert.Equal(t, 1, d.Len())

	_, err = ReadXLSX(path, XLSXOptions{SheetName: "Missing"})
	assert.Error(t, err)
}

func TestReadXLSXNoDataRows(t *testing.T) {
	path := writeTestXLSX(t, "Sheet1", [][]string{
		{"customer_id"},
	})

	_, err := ReadXLSX(path, XLSXOptions{})
	assert.Error(t, err)
}

func TestReadXLSXMissingFile(t *testing.T) {
	_, err := ReadXLSX(filepath.Join(t.TempDir(), "nope.xlsx"), XLSXOptions{})
	assert.Error(t, err)
}
