// Package dataset holds labelled tabular data for model training: named numeric
// feature columns, one discrete label per row, CSV codecs and the stratified
// train/test splitter.
package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrShape reports rows, labels or feature lists that do not line up.
	ErrShape = errors.New("dataset shape mismatch")
	// ErrMissingColumn reports a requested feature or label column absent from the input.
	ErrMissingColumn = errors.New("missing column")
	// ErrUnknownLabel reports a label value outside the expected domain.
	ErrUnknownLabel = errors.New("unknown label")
	// ErrInvalidTestFraction reports a test fraction outside the open interval (0, 1).
	ErrInvalidTestFraction = errors.New("test fraction must be in (0, 1)")
)

// Dataset is an ordered set of samples. Rows[i][j] is the value of Features[j]
// for sample i and Labels[i] its class. Labels may be empty for unlabelled
// (prediction only) data.
type Dataset struct {
	Features []string
	Rows     [][]float64
	Labels   []string
}

// New validates the shape of the given table and wraps it in a Dataset.
// Slices are not copied.
func New(features []string, rows [][]float64, labels []string) (*Dataset, error) {
	d := &Dataset{Features: features, Rows: rows, Labels: labels}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Validate checks that every row has one value per feature, that labels (when
// present) align with rows and that feature names are unique.
func (d *Dataset) Validate() error {
	seen := make(map[string]struct{}, len(d.Features))
	for _, f := range d.Features {
		if _, dup := seen[f]; dup {
			return fmt.Errorf("%w: duplicate feature %q", ErrShape, f)
		}
		seen[f] = struct{}{}
	}
	for i, row := range d.Rows {
		if len(row) != len(d.Features) {
			return fmt.Errorf("%w: row %d has %d values, want %d", ErrShape, i, len(row), len(d.Features))
		}
	}
	if len(d.Labels) != 0 && len(d.Labels) != len(d.Rows) {
		return fmt.Errorf("%w: %d rows but %d labels", ErrShape, len(d.Rows), len(d.Labels))
	}
	return nil
}

// Len returns the number of samples.
func (d *Dataset) Len() int { return len(d.Rows) }

// Labelled reports whether every row carries a label.
func (d *Dataset) Labelled() bool { return len(d.Rows) > 0 && len(d.Labels) == len(d.Rows) }

// FeatureIndex returns the column index of the named feature, or -1.
func (d *Dataset) FeatureIndex(name string) int {
	for j, f := range d.Features {
		if f == name {
			return j
		}
	}
	return -1
}

// Column returns a copy of the j-th feature column.
func (d *Dataset) Column(j int) []float64 {
	col := make([]float64, len(d.Rows))
	for i, row := range d.Rows {
		col[i] = row[j]
	}
	return col
}

// Select projects the dataset onto the named features, in the given order.
func (d *Dataset) Select(names ...string) (*Dataset, error) {
	cols := make([]int, len(names))
	for k, name := range names {
		j := d.FeatureIndex(name)
		if j < 0 {
			return nil, fmt.Errorf("%w: feature %q", ErrMissingColumn, name)
		}
		cols[k] = j
	}
	rows := make([][]float64, len(d.Rows))
	for i, row := range d.Rows {
		out := make([]float64, len(cols))
		for k, j := range cols {
			out[k] = row[j]
		}
		rows[i] = out
	}
	return &Dataset{Features: append([]string(nil), names...), Rows: rows, Labels: d.Labels}, nil
}

// Subset returns the samples at the given indices, in index order. Rows are
// shared with the receiver.
func (d *Dataset) Subset(idx []int) *Dataset {
	out := &Dataset{
		Features: d.Features,
		Rows:     make([][]float64, len(idx)),
	}
	if len(d.Labels) > 0 {
		out.Labels = make([]string, len(idx))
	}
	for k, i := range idx {
		out.Rows[k] = d.Rows[i]
		if out.Labels != nil {
			out.Labels[k] = d.Labels[i]
		}
	}
	return out
}

// ClassCounts returns the distinct labels in first-encounter order together
// with their frequencies.
func (d *Dataset) ClassCounts() ([]string, map[string]int) {
	return CountLabels(d.Labels)
}

// CountLabels tallies labels, returning the classes in first-encounter order.
func CountLabels(labels []string) ([]string, map[string]int) {
	var classes []string
	counts := make(map[string]int)
	for _, l := range labels {
		if _, ok := counts[l]; !ok {
			classes = append(classes, l)
		}
		counts[l]++
	}
	return classes, counts
}
