// pattern: Functional Core

package tree

import (
	"slices"

	"github.com/google/uuid"
)

// ID addresses a node within a tree. IDs are opaque and never reused.
type ID string

// RootID is the reserved id of the root node.
const RootID ID = "root"

// NewID returns a fresh random node id.
func NewID() ID {
	return ID(uuid.NewString())
}

// Node is a labeled point in the hierarchy. Nodes are immutable once
// returned from this package and are shared between tree versions.
type Node struct {
	id       ID
	content  string
	children []*Node
}

// ID returns the node's identifier.
func (n *Node) ID() ID {
	return n.id
}

// Content returns the node's text label.
func (n *Node) Content() string {
	return n.content
}

// Children returns a copy of the node's ordered children.
func (n *Node) Children() []*Node {
	return slices.Clone(n.children)
}

// ChildCount returns the number of direct children.
func (n *Node) ChildCount() int {
	return len(n.children)
}

// Child returns the i-th child.
func (n *Node) Child(i int) *Node {
	return n.children[i]
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.children) == 0
}

// withContent returns a copy of n with the given content, sharing children.
func (n *Node) withContent(content string) *Node {
	return &Node{id: n.id, content: content, children: n.children}
}

// withChildren returns a copy of n with the given children slice.
func (n *Node) withChildren(children []*Node) *Node {
	return &Node{id: n.id, content: n.content, children: children}
}
