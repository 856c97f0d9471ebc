package tree

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

const (
	kindLeaf     = "leaf"
	kindDecision = "decision"
)

// ErrMalformed reports a serialized tree whose nodes are not a valid tree.
var ErrMalformed = errors.New("malformed tree")

type jsonNode struct {
	Kind      string    `json:"kind"`
	Label     string    `json:"label,omitempty"`
	Feature   string    `json:"feature,omitempty"`
	Index     int       `json:"index,omitempty"`
	Threshold float64   `json:"threshold,omitempty"`
	Gain      float64   `json:"gain,omitempty"`
	Entropy   float64   `json:"entropy"`
	Samples   int       `json:"samples"`
	Left      *jsonNode `json:"left,omitempty"`
	Right     *jsonNode `json:"right,omitempty"`
}

type jsonTree struct {
	Features []string  `json:"features"`
	Classes  []string  `json:"classes"`
	Config   Config    `json:"config"`
	Root     *jsonNode `json:"root"`
}

// MarshalJSON encodes the tree as nested nodes tagged with their kind.
func (t *Tree) MarshalJSON() ([]byte, error) {
	root, err := encodeNode(t.Root)
	if err != nil {
		return nil, err
	}
	return json.Marshal(jsonTree{
		Features: t.Features,
		Classes:  t.Classes,
		Config:   t.Config,
		Root:     root,
	})
}

// UnmarshalJSON decodes a tree written by MarshalJSON, rejecting node graphs
// that a trained tree could not have.
func (t *Tree) UnmarshalJSON(data []byte) error {
	var jt jsonTree
	if err := json.Unmarshal(data, &jt); err != nil {
		return fmt.Errorf("decode tree: %w", err)
	}
	if jt.Root == nil {
		return fmt.Errorf("%w: no root", ErrMalformed)
	}
	if err := jt.Config.Validate(); err != nil {
		return err
	}
	root, err := decodeNode(jt.Root, jt.Features)
	if err != nil {
		return err
	}
	*t = Tree{Root: root, Features: jt.Features, Classes: jt.Classes, Config: jt.Config}
	return nil
}

func encodeNode(n Node) (*jsonNode, error) {
	switch v := n.(type) {
	case *Leaf:
		return &jsonNode{Kind: kindLeaf, Label: v.Label, Entropy: v.Entropy, Samples: v.Samples}, nil
	case *Decision:
		left, err := encodeNode(v.Left)
		if err != nil {
			return nil, err
		}
		right, err := encodeNode(v.Right)
		if err != nil {
			return nil, err
		}
		return &jsonNode{
			Kind:      kindDecision,
			Feature:   v.Feature,
			Index:     v.Index,
			Threshold: v.Threshold,
			Gain:      v.Gain,
			Entropy:   v.Entropy,
			Samples:   v.Samples,
			Left:      left,
			Right:     right,
		}, nil
	default:
		return nil, fmt.Errorf("%w: unexpected node type %T", ErrMalformed, n)
	}
}

func decodeNode(jn *jsonNode, features []string) (Node, error) {
	stats := Stats{Entropy: jn.Entropy, Samples: jn.Samples}
	switch jn.Kind {
	case kindLeaf:
		if jn.Left != nil || jn.Right != nil {
			return nil, fmt.Errorf("%w: leaf %q has children", ErrMalformed, jn.Label)
		}
		return &Leaf{Stats: stats, Label: jn.Label}, nil
	case kindDecision:
		if jn.Left == nil || jn.Right == nil {
			return nil, fmt.Errorf("%w: decision on %q is missing a child", ErrMalformed, jn.Feature)
		}
		if jn.Index < 0 || jn.Index >= len(features) || features[jn.Index] != jn.Feature {
			return nil, fmt.Errorf("%w: decision feature %q does not match column %d", ErrMalformed, jn.Feature, jn.Index)
		}
		left, err := decodeNode(jn.Left, features)
		if err != nil {
			return nil, err
		}
		right, err := decodeNode(jn.Right, features)
		if err != nil {
			return nil, err
		}
		return &Decision{
			Stats:     stats,
			Feature:   jn.Feature,
			Index:     jn.Index,
			Threshold: jn.Threshold,
			Gain:      jn.Gain,
			Left:      left,
			Right:     right,
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown node kind %q", ErrMalformed, jn.Kind)
	}
}

// Save writes the tree as indented JSON.
func Save(path string, t *Tree) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("encode tree: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write tree %s: %w", path, err)
	}
	return nil
}

// Load reads a tree written by Save.
func Load(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tree %s: %w", path, err)
	}
	var t Tree
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}
