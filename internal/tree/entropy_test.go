package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const eps = 1e-12

func TestEntropy(t *testing.T) {
	tests := []struct {
		name     string
		labels   []string
		expected float64
	}{
		{"empty", nil, 0},
		{"single", []string{"Low"}, 0},
		{"constant", []string{"x", "x", "x"}, 0},
		{"balanced two classes", []string{"a", "b", "a", "b"}, 1},
		{"balanced four classes", []string{"a", "b", "c", "d"}, 2},
		{"skewed", []string{"a", "a", "a", "b"}, 0.8112781244591328},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Entropy(tt.labels)
			assert.InDelta(t, tt.expected, got, eps)
			assert.GreaterOrEqual(t, got, 0.0)
		})
	}
}

func TestEntropy_BalancedLargeSequence(t *testing.T) {
	labels := make([]string, 0, 100)
	for i := 0; i < 50; i++ {
		labels = append(labels, "Safe", "Unsafe")
	}
	assert.InDelta(t, 1.0, Entropy(labels), eps)
}

func TestWeightedEntropy(t *testing.T) {
	assert.Equal(t, 0.0, WeightedEntropy(nil, nil))
	assert.InDelta(t, 0.0, WeightedEntropy([]string{"a", "a"}, []string{"b"}), eps)
	// left: entropy 1 with weight 2/3, right: entropy 0 with weight 1/3.
	assert.InDelta(t, 2.0/3.0, WeightedEntropy([]string{"a", "b"}, []string{"b"}), eps)
	assert.InDelta(t, 1.0, WeightedEntropy(nil, []string{"a", "b"}), eps)
}

func TestInformationGain(t *testing.T) {
	parent := []string{"0", "0", "1", "1"}

	t.Run("perfect split", func(t *testing.T) {
		assert.InDelta(t, 1.0, InformationGain(parent, []string{"0", "0"}, []string{"1", "1"}), eps)
	})

	t.Run("useless split", func(t *testing.T) {
		assert.InDelta(t, 0.0, InformationGain(parent, []string{"0", "1"}, []string{"0", "1"}), eps)
	})

	t.Run("non-negative for every exact partition", func(t *testing.T) {
		labels := []string{"Low", "High", "Medium", "Low", "High", "Low"}
		for mask := 0; mask < 1<<len(labels); mask++ {
			var left, right []string
			for i, l := range labels {
				if mask&(1<<i) != 0 {
					left = append(left, l)
				} else {
					right = append(right, l)
				}
			}
			assert.GreaterOrEqual(t, InformationGain(labels, left, right), -eps, "mask %b", mask)
		}
	})
}

func TestTallyMajority_TieKeepsFirstSeen(t *testing.T) {
	assert.Equal(t, "b", newTally([]string{"b", "a", "a", "b"}).majority())
	assert.Equal(t, "a", newTally([]string{"a", "b", "c", "c", "b", "a"}).majority())
	assert.Equal(t, "c", newTally([]string{"a", "c", "c"}).majority())
}
