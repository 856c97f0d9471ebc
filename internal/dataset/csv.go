package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Schema describes how to read a dataset out of a CSV file.
type Schema struct {
	// Features lists the columns to load, in model order.
	Features []string
	// LabelColumns are candidate header names for the label column; the first
	// one present is used. Leave empty to read unlabelled data.
	LabelColumns []string
	// Labels maps raw label values to classes. Nil keeps raw values.
	Labels *LabelMapping
	// FillMissingColumns loads absent feature columns as MissingValue instead
	// of failing with ErrMissingColumn.
	FillMissingColumns bool
	// MissingValue replaces empty, unparseable and non-finite cells.
	MissingValue float64
}

// ReadCSV reads a headed CSV table according to the schema.
func ReadCSV(r io.Reader, s Schema) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read csv header: empty input")
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	positions := make(map[string]int, len(header))
	for i, h := range header {
		positions[strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")] = i
	}

	cols := make([]int, len(s.Features))
	for k, f := range s.Features {
		pos, ok := positions[f]
		switch {
		case ok:
			cols[k] = pos
		case s.FillMissingColumns:
			cols[k] = -1
		default:
			return nil, fmt.Errorf("%w: feature %q", ErrMissingColumn, f)
		}
	}

	labelCol := -1
	if len(s.LabelColumns) > 0 {
		for _, name := range s.LabelColumns {
			if pos, ok := positions[name]; ok {
				labelCol = pos
				break
			}
		}
		if labelCol < 0 {
			return nil, fmt.Errorf("%w: label column %q", ErrMissingColumn, s.LabelColumns[0])
		}
	}

	d := &Dataset{Features: append([]string(nil), s.Features...)}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		row := make([]float64, len(cols))
		for k, pos := range cols {
			if pos < 0 || pos >= len(rec) {
				row[k] = s.MissingValue
				continue
			}
			row[k] = parseCell(rec[pos], s.MissingValue)
		}
		d.Rows = append(d.Rows, row)

		if labelCol < 0 {
			continue
		}
		raw := ""
		if labelCol < len(rec) {
			raw = rec[labelCol]
		}
		label := strings.TrimSpace(raw)
		if s.Labels != nil {
			label, err = s.Labels.Map(raw)
			if err != nil {
				return nil, fmt.Errorf("csv line %d: %w", line, err)
			}
		}
		d.Labels = append(d.Labels, label)
	}
	return d, nil
}

// WriteCSV writes the dataset with a header row. The label column is appended
// when labelColumn is not empty and the dataset is labelled.
func WriteCSV(w io.Writer, d *Dataset, labelColumn string) error {
	cw := csv.NewWriter(w)
	withLabel := labelColumn != "" && d.Labelled()

	header := append([]string(nil), d.Features...)
	if withLabel {
		header = append(header, labelColumn)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, row := range d.Rows {
		rec := make([]string, 0, len(header))
		for _, v := range row {
			rec = append(rec, strconv.FormatFloat(v, 'f', -1, 64))
		}
		if withLabel {
			rec = append(rec, d.Labels[i])
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func parseCell(s string, missing float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return missing
	}
	return v
}
