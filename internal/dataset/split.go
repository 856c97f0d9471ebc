package dataset

import (
	"fmt"
	"math/rand"
)

const (
	// DefaultTestFraction is the share of each class held out for testing.
	DefaultTestFraction = 0.2
	// DefaultSeed seeds the shuffle of StratifiedSplit.
	DefaultSeed int64 = 42
)

// StratifiedIndices partitions sample indices into train and test sets while
// preserving per-class proportions. Classes are visited in first-encounter
// order and each class's indices are shuffled by one source seeded with seed;
// max(1, floor(count*testFraction)) of them go to the test set. The same seed
// and label order always yield the same partition.
func StratifiedIndices(labels []string, testFraction float64, seed int64) (train, test []int, err error) {
	if !(testFraction > 0 && testFraction < 1) {
		return nil, nil, fmt.Errorf("%w: got %v", ErrInvalidTestFraction, testFraction)
	}

	var classes []string
	byClass := make(map[string][]int)
	for i, l := range labels {
		if _, ok := byClass[l]; !ok {
			classes = append(classes, l)
		}
		byClass[l] = append(byClass[l], i)
	}

	rng := rand.New(rand.NewSource(seed))
	train = make([]int, 0, len(labels))
	test = make([]int, 0, len(labels))
	for _, c := range classes {
		idx := byClass[c]
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		nTest := int(float64(len(idx)) * testFraction)
		if nTest < 1 {
			nTest = 1
		}
		test = append(test, idx[:nTest]...)
		train = append(train, idx[nTest:]...)
	}
	return train, test, nil
}

// StratifiedSplit splits a labelled dataset into train and test subsets using
// StratifiedIndices.
func StratifiedSplit(d *Dataset, testFraction float64, seed int64) (train, test *Dataset, err error) {
	if !d.Labelled() {
		return nil, nil, fmt.Errorf("%w: stratified split needs one label per row", ErrShape)
	}
	trainIdx, testIdx, err := StratifiedIndices(d.Labels, testFraction, seed)
	if err != nil {
		return nil, nil, err
	}
	return d.Subset(trainIdx), d.Subset(testIdx), nil
}
