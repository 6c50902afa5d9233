// pattern: Functional Core

package tree

import "slices"

// Initialize returns a new root node with the given content and no children.
func Initialize(content string) *Node {
	return &Node{id: RootID, content: content}
}

// AddChild appends a fresh empty leaf to the node whose id is parentID.
// If no such node exists the input tree is returned unchanged.
func AddChild(root *Node, parentID ID) *Node {
	return AddChildWithID(root, parentID, NewID())
}

// AddChildWithID is AddChild with a caller-chosen id for the new leaf.
// An empty childID, or one already present in the tree (RootID included),
// leaves the tree unchanged.
func AddChildWithID(root *Node, parentID, childID ID) *Node {
	if childID == "" || Contains(root, childID) {
		return root
	}
	return rebuild(root, parentID, func(n *Node) *Node {
		children := make([]*Node, len(n.children), len(n.children)+1)
		copy(children, n.children)
		children = append(children, &Node{id: childID})
		return n.withChildren(children)
	})
}

// UpdateContent replaces the content of the node whose id is nodeID.
// If no such node exists, or it already holds content, the input tree is
// returned unchanged.
func UpdateContent(root *Node, nodeID ID, content string) *Node {
	return rebuild(root, nodeID, func(n *Node) *Node {
		if n.content == content {
			return n
		}
		return n.withContent(content)
	})
}

// DeleteChild removes the child nodeID, and its whole subtree, from the
// children of parentID. The tree is returned unchanged when either id is
// missing or nodeID is not a direct child of parentID.
func DeleteChild(root *Node, nodeID, parentID ID) *Node {
	return rebuild(root, parentID, func(n *Node) *Node {
		i := slices.IndexFunc(n.children, func(c *Node) bool { return c.id == nodeID })
		if i < 0 {
			return n
		}
		return n.withChildren(slices.Delete(slices.Clone(n.children), i, i+1))
	})
}

// rebuild applies fn to the first node (pre-order) whose id is target and
// rebuilds the path from root down to it. Subtrees off that path are
// returned as the same pointers, so an edit that changes nothing returns
// root itself.
func rebuild(n *Node, target ID, fn func(*Node) *Node) *Node {
	if n == nil {
		return nil
	}
	if n.id == target {
		return fn(n)
	}
	for i, c := range n.children {
		updated := rebuild(c, target, fn)
		if updated == c {
			continue
		}
		children := slices.Clone(n.children)
		children[i] = updated
		return n.withChildren(children)
	}
	return n
}
