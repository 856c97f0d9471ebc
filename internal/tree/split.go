package tree

import (
	"math"
	"sort"
)

// BestThreshold searches one numeric column for the threshold that maximizes
// information gain when samples are split into value <= threshold (left) and
// value > threshold (right). labels must be aligned with values.
//
// Candidates are the midpoints between consecutive distinct values, or, when
// there are more than maxCandidates distinct values, maxCandidates evenly
// spaced percentiles of them. Non-finite values never produce candidates; when
// partitioning, NaN always falls right. A non-positive maxCandidates means
// DefaultMaxSplitCandidates.
//
// Ties keep the lowest threshold. ok is false when fewer than two distinct
// values exist or no candidate leaves both sides non-empty.
func BestThreshold(values []float64, labels []string, maxCandidates int) (threshold, gain float64, ok bool) {
	if maxCandidates <= 0 {
		maxCandidates = DefaultMaxSplitCandidates
	}
	distinct := distinctFinite(values)
	if len(distinct) < 2 {
		return 0, 0, false
	}

	var candidates []float64
	if len(distinct) > maxCandidates {
		candidates = percentiles(distinct, maxCandidates)
	} else {
		candidates = midpoints(distinct)
	}

	parent := Entropy(labels)
	best := -1.0
	left := make([]string, 0, len(labels))
	right := make([]string, 0, len(labels))
	for _, t := range candidates {
		left, right = left[:0], right[:0]
		for i, v := range values {
			if v <= t {
				left = append(left, labels[i])
			} else {
				right = append(right, labels[i])
			}
		}
		if len(left) == 0 || len(right) == 0 {
			continue
		}
		g := parent - WeightedEntropy(left, right)
		if g > best {
			best, threshold, ok = g, t, true
		}
	}
	if !ok {
		return 0, 0, false
	}
	return threshold, best, true
}

// distinctFinite returns the sorted distinct finite values.
func distinctFinite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	sort.Float64s(out)
	return dedupeSorted(out)
}

func dedupeSorted(s []float64) []float64 {
	if len(s) == 0 {
		return s
	}
	n := 1
	for _, v := range s[1:] {
		if v != s[n-1] {
			s[n] = v
			n++
		}
	}
	return s[:n]
}

func midpoints(sorted []float64) []float64 {
	out := make([]float64, len(sorted)-1)
	for i := range out {
		out[i] = (sorted[i] + sorted[i+1]) / 2
	}
	return out
}

// percentiles returns k evenly spaced percentiles (0 to 100) of sorted, using
// linear interpolation between closest ranks, deduplicated.
func percentiles(sorted []float64, k int) []float64 {
	out := make([]float64, 0, k)
	last := float64(len(sorted) - 1)
	for i := 0; i < k; i++ {
		q := 0.0
		if k > 1 {
			q = float64(i) / float64(k-1)
		}
		pos := q * last
		lo := int(math.Floor(pos))
		hi := int(math.Ceil(pos))
		frac := pos - float64(lo)
		out = append(out, sorted[lo]+(sorted[hi]-sorted[lo])*frac)
	}
	return dedupeSorted(out)
}
