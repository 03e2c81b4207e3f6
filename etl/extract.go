package etl

import (
	"github.com/edulytics/studentdw/dataset"
)

// Extract reads the raw performance file. Missing required columns
// surface as a FormatError from the CSV reader.
func Extract(path string) ([]dataset.Record, error) {
	return dataset.ReadCSV(path)
}
