package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset(t *testing.T) *Dataset {
	t.Helper()
	d, err := New(
		[]string{"rain", "wind", "temp"},
		[][]float64{{0, 10, 25}, {4, 30, 18}, {1, 12, 22}},
		[]string{"Low", "High", "Low"},
	)
	require.NoError(t, err)
	return d
}

func TestNew_ValidatesShape(t *testing.T) {
	tests := []struct {
		name     string
		features []string
		rows     [][]float64
		labels   []string
	}{
		{"duplicate feature", []string{"a", "a"}, [][]float64{{1, 2}}, nil},
		{"short row", []string{"a", "b"}, [][]float64{{1, 2}, {3}}, nil},
		{"label count", []string{"a"}, [][]float64{{1}, {2}}, []string{"x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.features, tt.rows, tt.labels)
			require.ErrorIs(t, err, ErrShape)
		})
	}
}

func TestNew_AllowsUnlabelled(t *testing.T) {
	d, err := New([]string{"a"}, [][]float64{{1}, {2}}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Len())
	assert.False(t, d.Labelled())
}

func TestColumn_ReturnsCopy(t *testing.T) {
	d := sampleDataset(t)
	col := d.Column(1)
	assert.Equal(t, []float64{10, 30, 12}, col)

	col[0] = 99
	assert.Equal(t, 10.0, d.Rows[0][1])
}

func TestSelect(t *testing.T) {
	d := sampleDataset(t)

	got, err := d.Select("temp", "rain")
	require.NoError(t, err)
	assert.Equal(t, []string{"temp", "rain"}, got.Features)
	assert.Equal(t, [][]float64{{25, 0}, {18, 4}, {22, 1}}, got.Rows)
	assert.Equal(t, d.Labels, got.Labels)

	_, err = d.Select("rain", "humidity")
	require.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "humidity")
}

func TestSubset(t *testing.T) {
	d := sampleDataset(t)

	got := d.Subset([]int{2, 0})
	assert.Equal(t, [][]float64{{1, 12, 22}, {0, 10, 25}}, got.Rows)
	assert.Equal(t, []string{"Low", "Low"}, got.Labels)
	assert.Equal(t, d.Features, got.Features)
}

func TestCountLabels_FirstEncounterOrder(t *testing.T) {
	classes, counts := CountLabels([]string{"Medium", "Low", "Medium", "High", "Low", "Medium"})
	assert.Equal(t, []string{"Medium", "Low", "High"}, classes)
	assert.Equal(t, map[string]int{"Medium": 3, "Low": 2, "High": 1}, counts)
}

func TestLabelMapping(t *testing.T) {
	m := &LabelMapping{
		Name:   "binary",
		Values: map[string]string{"Baixo": "Safe", "Médio": "Unsafe", "Alto": "Unsafe"},
	}

	got, err := m.Map(" Alto ")
	require.NoError(t, err)
	assert.Equal(t, "Unsafe", got)

	_, err = m.Map("Extremo")
	require.ErrorIs(t, err, ErrUnknownLabel)
	assert.Contains(t, err.Error(), "binary")

	lenient := m.WithDefault("Safe")
	got, err = lenient.Map("Extremo")
	require.NoError(t, err)
	assert.Equal(t, "Safe", got)
	assert.Empty(t, m.Default, "WithDefault must not modify the receiver")
}
