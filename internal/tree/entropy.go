package tree

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Entropy returns the Shannon entropy of the label distribution in bits.
// An empty slice has entropy 0.
func Entropy(labels []string) float64 {
	if len(labels) == 0 {
		return 0
	}
	return newTally(labels).entropy()
}

// WeightedEntropy returns the sample-count-weighted mean entropy of the two
// sides of a binary split, or 0 when both sides are empty.
func WeightedEntropy(left, right []string) float64 {
	n := len(left) + len(right)
	if n == 0 {
		return 0
	}
	wl := float64(len(left)) / float64(n)
	wr := float64(len(right)) / float64(n)
	return wl*Entropy(left) + wr*Entropy(right)
}

// InformationGain is the entropy of parent minus the weighted entropy of the
// split. It is never negative when left and right partition parent exactly.
func InformationGain(parent, left, right []string) float64 {
	return Entropy(parent) - WeightedEntropy(left, right)
}

// tally counts labels keeping the order in which classes first appear, so
// that sums and tie-breaks are deterministic.
type tally struct {
	order  []string
	counts map[string]int
	total  int
}

func newTally(labels []string) *tally {
	t := &tally{counts: make(map[string]int)}
	for _, l := range labels {
		if _, ok := t.counts[l]; !ok {
			t.order = append(t.order, l)
		}
		t.counts[l]++
	}
	t.total = len(labels)
	return t
}

func (t *tally) distinct() int { return len(t.order) }

func (t *tally) entropy() float64 {
	if t.total == 0 {
		return 0
	}
	p := make([]float64, 0, len(t.order))
	for _, c := range t.order {
		if n := t.counts[c]; n > 0 {
			p = append(p, float64(n)/float64(t.total))
		}
	}
	// stat.Entropy works in nats and skips zero probabilities.
	h := stat.Entropy(p) / math.Ln2
	if h <= 0 {
		return 0
	}
	return h
}

// majority returns the most frequent label; ties go to the label seen first.
func (t *tally) majority() string {
	var best string
	bestCount := 0
	for _, c := range t.order {
		if n := t.counts[c]; n > bestCount {
			best, bestCount = c, n
		}
	}
	return best
}
