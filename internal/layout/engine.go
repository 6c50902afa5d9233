// pattern: Functional Core

package layout

import "logictree/internal/tree"

// Engine computes layouts with a fixed set of options.
type Engine struct {
	opts Options
}

// NewEngine returns an Engine, replacing unusable option values with defaults.
func NewEngine(opts Options) Engine {
	def := DefaultOptions()
	if opts.CanvasWidth <= 0 {
		opts.CanvasWidth = def.CanvasWidth
	}
	if opts.MaxNodeWidth <= 0 {
		opts.MaxNodeWidth = def.MaxNodeWidth
	}
	if opts.ShareBase <= 0 {
		opts.ShareBase = def.ShareBase
	}
	if opts.WrapColumns <= 0 {
		opts.WrapColumns = def.WrapColumns
	}
	return Engine{opts: opts}
}

// Options returns the effective options.
func (e Engine) Options() Options {
	return e.opts
}

// Layout lays out the subtree rooted at n. parentID, level, index and
// siblingCount describe where n sits in the enclosing tree; pass
// ("", 0, 0, 1) for a root. At level 0 the node takes the full canvas,
// otherwise the canvas stands in for the parent's allotted width.
func (e Engine) Layout(n *tree.Node, parentID tree.ID, level, index, siblingCount int) Result {
	r := Result{index: make(map[tree.ID]int)}
	if n == nil {
		return r
	}
	r.Width, r.Depth = e.place(&r, n, parentID, level, index, siblingCount, e.opts.CanvasWidth)
	return r
}

// place appends n and its subtree to r. It returns the subtree width and
// depth of n so each node is measured once.
func (e Engine) place(r *Result, n *tree.Node, parentID tree.ID, level, index, siblingCount int, parentWidth float64) (int, int) {
	nl := NodeLayout{
		ID:            n.ID(),
		ParentID:      parentID,
		Level:         level,
		Index:         index,
		SiblingCount:  siblingCount,
		HasParentEdge: level > 0,
		HasChildEdge:  !n.IsLeaf(),
	}

	if level == 0 {
		nl.SharePercent = 100
		nl.Width = parentWidth
	} else {
		nl.SharePercent = e.share(siblingCount)
		nl.Width = min(e.opts.MaxNodeWidth, parentWidth*nl.SharePercent/100)
	}

	if siblingCount > e.opts.WrapColumns {
		nl.Wrapped = true
		nl.Row = index / e.opts.WrapColumns
		nl.Column = index % e.opts.WrapColumns
	} else {
		nl.Column = index
	}

	pos := len(r.Nodes)
	r.index[nl.ID] = pos
	r.Nodes = append(r.Nodes, nl)

	count := n.ChildCount()
	width, depth := 0, 0
	for i := 0; i < count; i++ {
		child := n.Child(i)
		r.Edges = append(r.Edges, Edge{From: n.ID(), To: child.ID()})
		w, d := e.place(r, child, n.ID(), level+1, i, count, nl.Width)
		width += w
		depth = max(depth, d+1)
	}

	if count == 0 {
		width = 1
	}
	r.Nodes[pos].SubtreeWidth = width
	r.Nodes[pos].Depth = depth
	if count > 0 {
		r.Nodes[pos].ChildrenWidth = width
	}
	return width, depth
}

// share is the percentage of the parent's width given to each of
// siblingCount children.
func (e Engine) share(siblingCount int) float64 {
	return min(100, e.opts.ShareBase/float64(max(1, siblingCount)))
}
