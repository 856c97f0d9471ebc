package dataset

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func repeatLabels(counts map[string]int, order ...string) []string {
	var out []string
	// Interleave so class membership is not contiguous.
	for remaining := true; remaining; {
		remaining = false
		for _, c := range order {
			if counts[c] > 0 {
				out = append(out, c)
				counts[c]--
				remaining = true
			}
		}
	}
	return out
}

func TestStratifiedIndices_PreservesClassShares(t *testing.T) {
	labels := repeatLabels(map[string]int{"Low": 50, "Medium": 30, "High": 7}, "Low", "Medium", "High")

	train, test, err := StratifiedIndices(labels, 0.2, DefaultSeed)
	require.NoError(t, err)

	_, testCounts := CountLabels(pick(labels, test))
	assert.Equal(t, map[string]int{"Low": 10, "Medium": 6, "High": 1}, testCounts)

	_, trainCounts := CountLabels(pick(labels, train))
	assert.Equal(t, map[string]int{"Low": 40, "Medium": 24, "High": 6}, trainCounts)
}

func TestStratifiedIndices_PartitionIsComplete(t *testing.T) {
	labels := repeatLabels(map[string]int{"Safe": 23, "Unsafe": 11}, "Unsafe", "Safe")

	train, test, err := StratifiedIndices(labels, 0.3, 7)
	require.NoError(t, err)

	all := append(append([]int(nil), train...), test...)
	sort.Ints(all)
	require.Len(t, all, len(labels))
	for i, v := range all {
		assert.Equal(t, i, v, "every index appears exactly once")
	}
}

func TestStratifiedIndices_SmallClassStillTested(t *testing.T) {
	labels := []string{"a", "a", "a", "a", "a", "a", "a", "a", "a", "b"}

	train, test, err := StratifiedIndices(labels, 0.2, 1)
	require.NoError(t, err)
	// floor(9*0.2) = 1 "a" plus the lone "b".
	assert.Len(t, test, 2)
	assert.Len(t, train, 8)
	assert.Contains(t, test, 9)
}

func TestStratifiedIndices_Deterministic(t *testing.T) {
	labels := repeatLabels(map[string]int{"x": 40, "y": 40}, "x", "y")

	train1, test1, err := StratifiedIndices(labels, 0.25, 42)
	require.NoError(t, err)
	train2, test2, err := StratifiedIndices(labels, 0.25, 42)
	require.NoError(t, err)
	assert.Equal(t, train1, train2)
	assert.Equal(t, test1, test2)

	_, test3, err := StratifiedIndices(labels, 0.25, 43)
	require.NoError(t, err)
	assert.NotEqual(t, test1, test3)
}

func TestStratifiedIndices_RejectsFraction(t *testing.T) {
	for _, f := range []float64{0, 1, -0.1, 1.5} {
		_, _, err := StratifiedIndices([]string{"a", "b"}, f, 1)
		require.ErrorIs(t, err, ErrInvalidTestFraction, "fraction %v", f)
	}
}

func TestStratifiedSplit(t *testing.T) {
	rows := make([][]float64, 20)
	labels := make([]string, 20)
	for i := range rows {
		rows[i] = []float64{float64(i)}
		labels[i] = "even"
		if i%2 == 1 {
			labels[i] = "odd"
		}
	}
	d, err := New([]string{"n"}, rows, labels)
	require.NoError(t, err)

	train, test, err := StratifiedSplit(d, DefaultTestFraction, DefaultSeed)
	require.NoError(t, err)
	assert.Equal(t, 16, train.Len())
	assert.Equal(t, 4, test.Len())
	for i, row := range test.Rows {
		parity := "even"
		if int(row[0])%2 == 1 {
			parity = "odd"
		}
		assert.Equal(t, parity, test.Labels[i], "rows and labels stay paired")
	}
}

func TestStratifiedSplit_NeedsLabels(t *testing.T) {
	d, err := New([]string{"n"}, [][]float64{{1}, {2}}, nil)
	require.NoError(t, err)

	_, _, err = StratifiedSplit(d, 0.5, 1)
	require.ErrorIs(t, err, ErrShape)
}

func pick(labels []string, idx []int) []string {
	out := make([]string, len(idx))
	for k, i := range idx {
		out[k] = labels[i]
	}
	return out
}
