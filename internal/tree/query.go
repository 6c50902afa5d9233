// pattern: Functional Core

package tree

// Find returns the node with the given id.
func Find(root *Node, id ID) (*Node, bool) {
	var found *Node
	Walk(root, func(n *Node, _ int) bool {
		if n.id == id {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}

// Contains reports whether a node with the given id is reachable from root.
func Contains(root *Node, id ID) bool {
	_, ok := Find(root, id)
	return ok
}

// ParentOf returns the parent of the node with the given id.
// The root, and ids not in the tree, have no parent.
func ParentOf(root *Node, id ID) (*Node, bool) {
	var parent *Node
	Walk(root, func(n *Node, _ int) bool {
		for _, c := range n.children {
			if c.id == id {
				parent = n
				return false
			}
		}
		return true
	})
	return parent, parent != nil
}

// IsChildOf reports whether nodeID is a direct child of parentID.
func IsChildOf(root *Node, nodeID, parentID ID) bool {
	parent, ok := ParentOf(root, nodeID)
	return ok && parent.id == parentID
}

// Walk visits nodes in pre-order, passing each node's distance from root.
// Returning false from fn stops the walk.
func Walk(root *Node, fn func(n *Node, level int) bool) {
	if root == nil {
		return
	}
	walk(root, 0, fn)
}

func walk(n *Node, level int, fn func(*Node, int) bool) bool {
	if !fn(n, level) {
		return false
	}
	for _, c := range n.children {
		if !walk(c, level+1, fn) {
			return false
		}
	}
	return true
}

// Count returns the number of nodes reachable from root.
func Count(root *Node) int {
	count := 0
	Walk(root, func(*Node, int) bool {
		count++
		return true
	})
	return count
}

// Equal reports whether two trees have the same ids, contents and shape.
func Equal(a, b *Node) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.id != b.id || a.content != b.content || len(a.children) != len(b.children) {
		return false
	}
	for i := range a.children {
		if !Equal(a.children[i], b.children[i]) {
			return false
		}
	}
	return true
}
