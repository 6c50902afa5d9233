// pattern: Imperative Shell

// Package session owns the authoritative tree of one editing session and
// applies edits to it as whole-tree replacements.
package session

import (
	"errors"
	"fmt"
	"sync"

	"logictree/internal/events"
	"logictree/internal/logging"
	"logictree/internal/tree"
)

var (
	// ErrNotStarted is returned for any operation before Start.
	ErrNotStarted = errors.New("session not started")
	// ErrVersionConflict is returned when an edit was computed against a
	// snapshot older than the current tree.
	ErrVersionConflict = errors.New("tree version has advanced")
	// ErrNodeNotFound is returned in strict mode for unknown node ids.
	ErrNodeNotFound = errors.New("node not found")
	// ErrNotAChild is returned in strict mode when a delete names a node
	// that is not a direct child of the given parent.
	ErrNotAChild = errors.New("node is not a child of parent")
)

// State is the lifecycle state of a session.
type State int

const (
	NotStarted State = iota
	Started
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Started:
		return "started"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Snapshot is an immutable view of the tree at a version. Holders keep a
// consistent tree even after later edits.
type Snapshot struct {
	Version uint64
	Root    *tree.Node
}

// Options configures a Session.
type Options struct {
	// StrictIDs reports edits on unknown ids as errors instead of no-ops.
	StrictIDs bool
}

// Session holds the current tree value. All methods are safe for
// concurrent use; edits are serialized.
type Session struct {
	mu        sync.Mutex
	state     State
	root      *tree.Node
	version   uint64
	strict    bool
	logger    *logging.ScopedLogger
	listeners []func(events.TreeChanged)
}

// New creates a session in the NotStarted state.
func New(opts Options, logProvider logging.LoggerProvider) *Session {
	return &Session{
		strict: opts.StrictIDs,
		logger: logProvider.For("session"),
	}
}

// SetStrictIDs switches the id policy for subsequent edits.
func (s *Session) SetStrictIDs(strict bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.strict = strict
}

// OnChange registers fn to be called after every applied change. Listeners
// run synchronously after the session lock is released, so concurrent
// edits may deliver events out of version order. Listeners that need the
// current tree should read Snapshot rather than rely on event order.
func (s *Session) OnChange(fn func(events.TreeChanged)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start initializes a new tree with the given root content. Calling Start
// on a started session discards the previous tree.
func (s *Session) Start(content string) Snapshot {
	s.mu.Lock()
	restarted := s.state == Started
	s.state = Started
	s.root = tree.Initialize(content)
	s.version++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Info("session started", "version", snap.Version, "restart", restarted)
	s.notify(events.TreeChanged{Kind: events.ChangeStarted, Version: snap.Version})
	return snap
}

// Reset discards the tree and returns to NotStarted. Resetting a session
// that was never started is a no-op.
func (s *Session) Reset() {
	s.mu.Lock()
	if s.state == NotStarted {
		s.mu.Unlock()
		return
	}
	s.state = NotStarted
	s.root = nil
	s.version++
	version := s.version
	s.mu.Unlock()

	s.logger.Info("session reset", "version", version)
	s.notify(events.TreeChanged{Kind: events.ChangeReset, Version: version})
}

// Snapshot returns the current tree.
func (s *Session) Snapshot() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Started {
		return Snapshot{}, ErrNotStarted
	}
	return s.snapshotLocked(), nil
}

// AddChild appends an empty leaf to parentID and returns the new tree and
// the new leaf's id. base is the version the caller last observed; zero
// skips the version check. In lenient mode an unknown parent returns the
// unchanged snapshot and an empty id.
func (s *Session) AddChild(base uint64, parentID tree.ID) (Snapshot, tree.ID, error) {
	childID := tree.NewID()
	snap, changed, err := s.apply(base, func(root *tree.Node) (*tree.Node, error) {
		if s.strict && !tree.Contains(root, parentID) {
			return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, parentID)
		}
		return tree.AddChildWithID(root, parentID, childID), nil
	})
	if err != nil {
		return snap, "", err
	}
	if !changed {
		s.logger.Debug("add child ignored", "parent", parentID)
		return snap, "", nil
	}

	s.logger.Info("child added", "parent", parentID, "child", childID, "version", snap.Version)
	s.notify(events.TreeChanged{Kind: events.ChangeAdded, Version: snap.Version, NodeID: string(childID), Parent: string(parentID)})
	return snap, childID, nil
}

// UpdateContent replaces the content of nodeID.
func (s *Session) UpdateContent(base uint64, nodeID tree.ID, content string) (Snapshot, error) {
	snap, changed, err := s.apply(base, func(root *tree.Node) (*tree.Node, error) {
		if s.strict && !tree.Contains(root, nodeID) {
			return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
		}
		return tree.UpdateContent(root, nodeID, content), nil
	})
	if err != nil || !changed {
		return snap, err
	}

	s.logger.Info("content updated", "node", nodeID, "version", snap.Version)
	s.notify(events.TreeChanged{Kind: events.ChangeUpdated, Version: snap.Version, NodeID: string(nodeID)})
	return snap, nil
}

// DeleteChild removes nodeID and its subtree from parentID's children.
func (s *Session) DeleteChild(base uint64, nodeID, parentID tree.ID) (Snapshot, error) {
	snap, changed, err := s.apply(base, func(root *tree.Node) (*tree.Node, error) {
		if s.strict {
			if !tree.Contains(root, parentID) {
				return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, parentID)
			}
			if !tree.Contains(root, nodeID) {
				return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
			}
			if !tree.IsChildOf(root, nodeID, parentID) {
				return nil, fmt.Errorf("%w: %s under %s", ErrNotAChild, nodeID, parentID)
			}
		}
		return tree.DeleteChild(root, nodeID, parentID), nil
	})
	if err != nil || !changed {
		return snap, err
	}

	s.logger.Info("child deleted", "parent", parentID, "child", nodeID, "version", snap.Version)
	s.notify(events.TreeChanged{Kind: events.ChangeDeleted, Version: snap.Version, NodeID: string(nodeID), Parent: string(parentID)})
	return snap, nil
}

// apply runs edit against the current tree under the lock. The version is
// bumped only when edit produced a different tree value.
func (s *Session) apply(base uint64, edit func(*tree.Node) (*tree.Node, error)) (Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Started {
		return Snapshot{}, false, ErrNotStarted
	}
	if base != 0 && base != s.version {
		s.logger.Warn("stale edit rejected", "base", base, "current", s.version)
		return s.snapshotLocked(), false, fmt.Errorf("%w: edit based on %d, current is %d", ErrVersionConflict, base, s.version)
	}

	updated, err := edit(s.root)
	if err != nil {
		return s.snapshotLocked(), false, err
	}
	if updated == s.root {
		return s.snapshotLocked(), false, nil
	}

	s.root = updated
	s.version++
	return s.snapshotLocked(), true, nil
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{Version: s.version, Root: s.root}
}

func (s *Session) notify(ev events.TreeChanged) {
	s.mu.Lock()
	listeners := make([]func(events.TreeChanged), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(ev)
	}
}
