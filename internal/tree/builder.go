// Package tree implements an entropy-based binary decision tree classifier
// over continuous features: threshold search, recursive induction with depth
// and size limits, prediction and JSON persistence.
package tree

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/couchcryptid/bikelane-risk/internal/dataset"
)

const (
	DefaultMaxDepth           = 5
	DefaultMinLeafSamples     = 2
	DefaultMaxSplitCandidates = 20
)

var (
	// ErrInvalidConfig reports out-of-range training parameters.
	ErrInvalidConfig = errors.New("invalid tree config")
	// ErrEmptyDataset reports an attempt to train on zero samples.
	ErrEmptyDataset = errors.New("empty training dataset")
	// ErrNonFinite reports a NaN or infinite feature value in training data.
	ErrNonFinite = errors.New("non-finite feature value")
	// ErrMissingFeature reports a sample lacking a feature the tree needs.
	ErrMissingFeature = errors.New("missing feature")
	// ErrSampleWidth reports a positional sample of the wrong length.
	ErrSampleWidth = errors.New("sample width mismatch")
)

// Config holds the training parameters.
type Config struct {
	MaxDepth           int `json:"max_depth"`
	MinLeafSamples     int `json:"min_leaf_samples"`
	MaxSplitCandidates int `json:"max_split_candidates"`
}

// DefaultConfig returns max depth 5, minimum leaf size 2 and 20 split candidates.
func DefaultConfig() Config {
	return Config{
		MaxDepth:           DefaultMaxDepth,
		MinLeafSamples:     DefaultMinLeafSamples,
		MaxSplitCandidates: DefaultMaxSplitCandidates,
	}
}

// Validate rejects negative depth and non-positive leaf size or candidate count.
func (c Config) Validate() error {
	if c.MaxDepth < 0 {
		return fmt.Errorf("%w: max depth %d is negative", ErrInvalidConfig, c.MaxDepth)
	}
	if c.MinLeafSamples < 1 {
		return fmt.Errorf("%w: min leaf samples %d must be at least 1", ErrInvalidConfig, c.MinLeafSamples)
	}
	if c.MaxSplitCandidates < 1 {
		return fmt.Errorf("%w: max split candidates %d must be at least 1", ErrInvalidConfig, c.MaxSplitCandidates)
	}
	return nil
}

// BuildOption customizes Build.
type BuildOption func(*builder)

// WithLogger traces every split and leaf at debug level.
func WithLogger(logger *slog.Logger) BuildOption {
	return func(b *builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

type builder struct {
	cfg      Config
	features []string
	columns  [][]float64
	labels   []string
	logger   *slog.Logger
}

type candidate struct {
	column    int
	threshold float64
	gain      float64
}

// Build trains a tree on a labelled dataset. All inputs are validated before
// any node is created; on success the returned tree is complete and must not
// be modified.
func Build(d *dataset.Dataset, cfg Config, opts ...BuildOption) (*Tree, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if d == nil || d.Len() == 0 {
		return nil, ErrEmptyDataset
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if !d.Labelled() {
		return nil, fmt.Errorf("%w: %d rows but %d labels", dataset.ErrShape, d.Len(), len(d.Labels))
	}

	b := &builder{
		cfg:      cfg,
		features: append([]string(nil), d.Features...),
		columns:  make([][]float64, len(d.Features)),
		labels:   d.Labels,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(b)
	}
	for j, name := range d.Features {
		col := d.Column(j)
		for i, v := range col {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: feature %q row %d is %v", ErrNonFinite, name, i, v)
			}
		}
		b.columns[j] = col
	}

	idx := make([]int, d.Len())
	for i := range idx {
		idx[i] = i
	}
	classes, _ := dataset.CountLabels(d.Labels)
	return &Tree{
		Root:     b.grow(idx, 0),
		Features: b.features,
		Classes:  classes,
		Config:   cfg,
	}, nil
}

func (b *builder) grow(idx []int, depth int) Node {
	labels := make([]string, len(idx))
	for k, i := range idx {
		labels[k] = b.labels[i]
	}
	t := newTally(labels)
	n := len(idx)

	if t.distinct() == 1 {
		b.logger.Debug("pure leaf", "depth", depth, "label", labels[0], "samples", n)
		return &Leaf{Label: labels[0], Stats: Stats{Entropy: 0, Samples: n}}
	}

	h := t.entropy()
	majority := t.majority()
	if depth >= b.cfg.MaxDepth || n <= b.cfg.MinLeafSamples {
		reason := "min leaf samples"
		if depth >= b.cfg.MaxDepth {
			reason = "max depth"
		}
		b.logger.Debug("stopped leaf", "reason", reason, "depth", depth, "label", majority, "entropy", h, "samples", n)
		return &Leaf{Label: majority, Stats: Stats{Entropy: h, Samples: n}}
	}

	best, ok := b.bestSplit(idx, labels)
	if !ok || best.gain <= 0 {
		b.logger.Debug("no gain leaf", "depth", depth, "label", majority, "entropy", h, "samples", n)
		return &Leaf{Label: majority, Stats: Stats{Entropy: h, Samples: n}}
	}

	b.logger.Debug("split",
		"depth", depth,
		"feature", b.features[best.column],
		"threshold", best.threshold,
		"gain", best.gain,
		"entropy", h,
		"samples", n,
	)

	col := b.columns[best.column]
	left := make([]int, 0, n)
	right := make([]int, 0, n)
	for _, i := range idx {
		if col[i] <= best.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &Decision{
		Stats:     Stats{Entropy: h, Samples: n},
		Feature:   b.features[best.column],
		Index:     best.column,
		Threshold: best.threshold,
		Gain:      best.gain,
		Left:      b.grow(left, depth+1),
		Right:     b.grow(right, depth+1),
	}
}

// bestSplit scans every column; the first column reaching the highest gain wins.
func (b *builder) bestSplit(idx []int, labels []string) (candidate, bool) {
	best := candidate{gain: -1}
	found := false
	values := make([]float64, len(idx))
	for j, col := range b.columns {
		for k, i := range idx {
			values[k] = col[i]
		}
		threshold, gain, ok := BestThreshold(values, labels, b.cfg.MaxSplitCandidates)
		if ok && gain > best.gain {
			best = candidate{column: j, threshold: threshold, gain: gain}
			found = true
		}
	}
	return best, found
}
