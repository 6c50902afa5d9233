// pattern: Imperative Shell

package logging

import "sync"

// Journal keeps the most recent log entries in a fixed-size ring.
type Journal struct {
	mu      sync.Mutex
	entries []LogEntry
	next    int
	full    bool
}

// NewJournal creates a journal holding at most capacity entries.
func NewJournal(capacity int) *Journal {
	if capacity < 1 {
		capacity = 1
	}
	return &Journal{entries: make([]LogEntry, capacity)}
}

// Add records an entry, evicting the oldest when full.
func (j *Journal) Add(e LogEntry) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.entries[j.next] = e
	j.next = (j.next + 1) % len(j.entries)
	if j.next == 0 {
		j.full = true
	}
}

// Recent returns up to limit entries matching the scope prefix, oldest
// first. A limit of zero or less returns every match.
func (j *Journal) Recent(scopePrefix string, limit int) []LogEntry {
	j.mu.Lock()
	defer j.mu.Unlock()

	var ordered []LogEntry
	if j.full {
		ordered = append(ordered, j.entries[j.next:]...)
	}
	ordered = append(ordered, j.entries[:j.next]...)

	out := make([]LogEntry, 0, len(ordered))
	for _, e := range ordered {
		if e.MatchesScope(scopePrefix) {
			out = append(out, e)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}
