// pattern: Functional Core

package tree

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrDuplicateID is returned when decoding a tree that reuses an id.
	ErrDuplicateID = errors.New("duplicate node id")
	// ErrMisplacedRoot is returned when the root sentinel id appears below the top.
	ErrMisplacedRoot = errors.New("root id used by a non-root node")
	// ErrEmptyID is returned when decoding a node without an id.
	ErrEmptyID = errors.New("node id is empty")
)

// nodeJSON is the wire form used by the HTTP API.
type nodeJSON struct {
	ID       ID         `json:"id"`
	Content  string     `json:"content"`
	Children []nodeJSON `json:"children"`
}

// MarshalJSON encodes the subtree rooted at n.
func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(toJSON(n))
}

func toJSON(n *Node) nodeJSON {
	out := nodeJSON{ID: n.id, Content: n.content, Children: make([]nodeJSON, 0, len(n.children))}
	for _, c := range n.children {
		out.Children = append(out.Children, toJSON(c))
	}
	return out
}

// UnmarshalJSON decodes a subtree, rejecting empty or duplicate ids and any
// non-top node that claims the root id.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw nodeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	seen := make(map[ID]struct{})
	decoded, err := fromJSON(raw, 0, seen)
	if err != nil {
		return err
	}
	*n = *decoded
	return nil
}

func fromJSON(raw nodeJSON, level int, seen map[ID]struct{}) (*Node, error) {
	if raw.ID == "" {
		return nil, ErrEmptyID
	}
	if level > 0 && raw.ID == RootID {
		return nil, ErrMisplacedRoot
	}
	if _, dup := seen[raw.ID]; dup {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateID, raw.ID)
	}
	seen[raw.ID] = struct{}{}

	n := &Node{id: raw.ID, content: raw.Content}
	if len(raw.Children) > 0 {
		n.children = make([]*Node, 0, len(raw.Children))
	}
	for _, rc := range raw.Children {
		c, err := fromJSON(rc, level+1, seen)
		if err != nil {
			return nil, err
		}
		n.children = append(n.children, c)
	}
	return n, nil
}
