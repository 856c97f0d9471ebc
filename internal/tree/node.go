package tree

// Stats are diagnostics recorded for every node during training. They are not
// used for prediction.
type Stats struct {
	Entropy float64
	Samples int
}

// Node is either a *Decision or a *Leaf.
type Node interface {
	NodeStats() Stats
	isNode()
}

// Decision routes a sample left when its value for Feature is <= Threshold and
// right otherwise. Both children are always set.
type Decision struct {
	Stats
	Feature   string
	Index     int // column of Feature in Tree.Features
	Threshold float64
	Gain      float64
	Left      Node
	Right     Node
}

// Leaf predicts Label for every sample that reaches it.
type Leaf struct {
	Stats
	Label string
}

func (d *Decision) NodeStats() Stats { return d.Stats }
func (l *Leaf) NodeStats() Stats     { return l.Stats }

func (*Decision) isNode() {}
func (*Leaf) isNode()     {}
