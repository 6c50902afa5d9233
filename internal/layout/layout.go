// pattern: Functional Core

// Package layout derives proportional sizing, levels and edges from a tree.
// Results depend only on tree shape, never on content or earlier layouts.
package layout

import "logictree/internal/tree"

// Options tunes the proportional layout.
type Options struct {
	CanvasWidth  float64 // Absolute width given to the root
	MaxNodeWidth float64 // Cap on any non-root node's absolute width
	ShareBase    float64 // Percent split among siblings (70 => 70/n each)
	WrapColumns  int     // Children of a node with more than this many wrap into a grid
}

// DefaultOptions returns the layout used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		CanvasWidth:  1000,
		MaxNodeWidth: 320,
		ShareBase:    70,
		WrapColumns:  3,
	}
}

// NodeLayout holds the computed metrics for one node.
type NodeLayout struct {
	ID           tree.ID `json:"id"`
	ParentID     tree.ID `json:"parent_id,omitempty"`
	Level        int     `json:"level"`         // Distance from the root
	Index        int     `json:"index"`         // Position among siblings
	SiblingCount int     `json:"sibling_count"` // Children of the parent, including this node
	SharePercent float64 `json:"share_percent"` // Share of the parent's allotted width
	Width        float64 `json:"width"`         // Absolute width after capping
	Row          int     `json:"row"`
	Column       int     `json:"column"`
	Wrapped      bool    `json:"wrapped"` // Siblings flow in the fixed column grid

	SubtreeWidth  int  `json:"subtree_width"`
	Depth         int  `json:"depth"`
	ChildrenWidth int  `json:"children_width"`
	HasParentEdge bool `json:"has_parent_edge"`
	HasChildEdge  bool `json:"has_children_edge"`
}

// Edge connects a parent to one of its children.
type Edge struct {
	From tree.ID `json:"from"`
	To   tree.ID `json:"to"`
}

// Result is the layout of a whole tree. Nodes are in pre-order.
type Result struct {
	Nodes []NodeLayout `json:"nodes"`
	Edges []Edge       `json:"edges"`
	Width int          `json:"width"` // Leaf slots needed by the tree
	Depth int          `json:"depth"` // Height of the tree

	index map[tree.ID]int
}

// Lookup returns the layout of the node with the given id.
func (r Result) Lookup(id tree.ID) (NodeLayout, bool) {
	if r.index != nil {
		i, ok := r.index[id]
		if !ok {
			return NodeLayout{}, false
		}
		return r.Nodes[i], true
	}
	for _, n := range r.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return NodeLayout{}, false
}

// Children returns the layouts of the direct children of id, in order.
func (r Result) Children(id tree.ID) []NodeLayout {
	var out []NodeLayout
	for _, n := range r.Nodes {
		if n.ParentID == id && n.HasParentEdge {
			out = append(out, n)
		}
	}
	return out
}

// SubtreeWidth returns the number of leaves under n; a leaf counts as 1
// and a nil node as 0.
func SubtreeWidth(n *tree.Node) int {
	if n == nil {
		return 0
	}
	if n.IsLeaf() {
		return 1
	}
	width := 0
	for i := 0; i < n.ChildCount(); i++ {
		width += SubtreeWidth(n.Child(i))
	}
	return width
}

// Depth returns the length of the longest downward path from n to a leaf.
// A nil node has depth 0.
func Depth(n *tree.Node) int {
	if n == nil || n.IsLeaf() {
		return 0
	}
	deepest := 0
	for i := 0; i < n.ChildCount(); i++ {
		if d := Depth(n.Child(i)); d > deepest {
			deepest = d
		}
	}
	return 1 + deepest
}

// Compute lays out a whole tree from its root. A nil root yields an empty
// Result.
func Compute(root *tree.Node, opts Options) Result {
	return NewEngine(opts).Layout(root, "", 0, 0, 1)
}
