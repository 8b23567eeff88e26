package dataset

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/rotisserie/eris"
)

// ReadCSV loads call records from a CSV file. The first row is the
// header.
func ReadCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: open csv")
	}
	defer f.Close()

	return ParseCSV(f)
}

// ParseCSV reads CSV call records from r.
func ParseCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // ragged exports are common

	records, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "dataset: parse csv")
	}
	if len(records) == 0 {
		return nil, eris.New("dataset: csv is empty")
	}
	if len(records) == 1 {
		return nil, eris.New("dataset: csv has no data rows")
	}

	return New(records[0], records[1:]), nil
}
