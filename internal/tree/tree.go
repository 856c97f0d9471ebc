package tree

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Tree is a trained classifier. It is read-only after Build returns and safe
// for concurrent prediction.
type Tree struct {
	Root Node
	// Features is the column order expected by PredictOne.
	Features []string
	// Classes seen during training, in first-encounter order.
	Classes []string
	Config  Config
}

// PredictOne walks from the root to a leaf and returns its label. sample must
// hold one value per entry of Features, in the same order.
func (t *Tree) PredictOne(sample []float64) string {
	n := t.Root
	for {
		switch v := n.(type) {
		case *Leaf:
			return v.Label
		case *Decision:
			if sample[v.Index] <= v.Threshold {
				n = v.Left
			} else {
				n = v.Right
			}
		default:
			panic(fmt.Sprintf("tree: unexpected node type %T", n))
		}
	}
}

// Predict classifies each sample, preserving order.
func (t *Tree) Predict(samples [][]float64) []string {
	out := make([]string, len(samples))
	for i, s := range samples {
		out[i] = t.PredictOne(s)
	}
	return out
}

// PredictNamed classifies a sample keyed by feature name.
func (t *Tree) PredictNamed(sample map[string]float64) (string, error) {
	row, err := t.Row(sample)
	if err != nil {
		return "", err
	}
	return t.PredictOne(row), nil
}

// Row orders a named sample by Features.
func (t *Tree) Row(sample map[string]float64) ([]float64, error) {
	row := make([]float64, len(t.Features))
	for j, f := range t.Features {
		v, ok := sample[f]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingFeature, f)
		}
		row[j] = v
	}
	return row, nil
}

// PredictConcurrent is Predict spread over up to workers goroutines. A
// non-positive workers uses GOMAXPROCS. The result equals Predict(samples).
func (t *Tree) PredictConcurrent(ctx context.Context, samples [][]float64, workers int) ([]string, error) {
	for i, s := range samples {
		if len(s) != len(t.Features) {
			return nil, fmt.Errorf("%w: sample %d has %d values, want %d", ErrSampleWidth, i, len(s), len(t.Features))
		}
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	out := make([]string, len(samples))
	chunk := (len(samples) + workers - 1) / workers
	if chunk == 0 {
		return out, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < len(samples); start += chunk {
		end := min(start+chunk, len(samples))
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := start; i < end; i++ {
				out[i] = t.PredictOne(samples[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Depth returns the number of edges on the longest root-to-leaf path.
func (t *Tree) Depth() int { return depth(t.Root) }

// Leaves returns the number of leaf nodes.
func (t *Tree) Leaves() int { return leaves(t.Root) }

func depth(n Node) int {
	d, ok := n.(*Decision)
	if !ok {
		return 0
	}
	return 1 + max(depth(d.Left), depth(d.Right))
}

func leaves(n Node) int {
	d, ok := n.(*Decision)
	if !ok {
		return 1
	}
	return leaves(d.Left) + leaves(d.Right)
}

// Format writes an indented, human-readable rendering of the tree.
func (t *Tree) Format(w io.Writer) error {
	return format(w, t.Root, 0)
}

func format(w io.Writer, n Node, level int) error {
	indent := strings.Repeat("  ", level)
	switch v := n.(type) {
	case *Leaf:
		_, err := fmt.Fprintf(w, "%s[leaf] %s | entropy=%.4f | n=%d\n", indent, v.Label, v.Entropy, v.Samples)
		return err
	case *Decision:
		if _, err := fmt.Fprintf(w, "%s[split] %s <= %.4f | gain=%.6f | entropy=%.6f | n=%d\n",
			indent, v.Feature, v.Threshold, v.Gain, v.Entropy, v.Samples); err != nil {
			return err
		}
		if err := format(w, v.Left, level+1); err != nil {
			return err
		}
		return format(w, v.Right, level+1)
	default:
		return fmt.Errorf("tree: unexpected node type %T", n)
	}
}
