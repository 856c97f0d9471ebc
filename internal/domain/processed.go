package domain

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// ProcessedColumns is the header written by WriteProcessedCSV.
func ProcessedColumns() []string {
	return append([]string{"time", "temperature_2m", "relative_humidity_2m"}, FeatureNames()...)
}

// WriteProcessedCSV writes engineered hours, one row per hour. The output can
// be read back with dataset.ReadCSV using FeatureNames.
func WriteProcessedCSV(w io.Writer, hours []Hour) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ProcessedColumns()); err != nil {
		return fmt.Errorf("write processed header: %w", err)
	}
	for i, h := range hours {
		rec := []string{h.Time.Format(hourLayout), formatFloat(h.Temperature), formatFloat(h.Humidity)}
		for _, v := range h.Features.Row() {
			rec = append(rec, formatFloat(v))
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write processed row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
