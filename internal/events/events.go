// Package events contains change notifications shared between the session
// and its transports.
package events

// ChangeKind names what happened to the session's tree.
type ChangeKind string

const (
	ChangeStarted ChangeKind = "started"
	ChangeReset   ChangeKind = "reset"
	ChangeAdded   ChangeKind = "child_added"
	ChangeUpdated ChangeKind = "content_updated"
	ChangeDeleted ChangeKind = "child_deleted"

	// ChangeLayout is emitted by transports when layout options change
	// while the tree stays the same.
	ChangeLayout ChangeKind = "layout_changed"
)

// TreeChanged describes one applied change.
type TreeChanged struct {
	Kind    ChangeKind `json:"kind"`
	Version uint64     `json:"version"`
	NodeID  string     `json:"node_id,omitempty"`
	Parent  string     `json:"parent_id,omitempty"`
}
