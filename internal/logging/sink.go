// pattern: Imperative Shell

package logging

import (
	"encoding/json"
	"errors"
	"sync"
	"time"
)

var errSinkClosed = errors.New("logging: write to closed channel sink")

// ChannelSink is the zapcore.WriteSyncer behind in-process log readers.
// Each JSON line from zap becomes a LogEntry that is recorded in the
// attached Journal, if any, and offered on the Entries channel. Writes
// never block: a full channel loses its oldest entry, the journal does not.
type ChannelSink struct {
	journal *Journal
	entries chan LogEntry
	mu      sync.Mutex
	closed  bool
}

// NewChannelSink creates a sink with a channel of bufferSize entries.
// journal may be nil.
func NewChannelSink(bufferSize int, journal *Journal) *ChannelSink {
	return &ChannelSink{journal: journal, entries: make(chan LogEntry, bufferSize)}
}

// Write implements io.Writer. Lines that are not JSON objects are
// swallowed so a bad line never fails the logger.
func (s *ChannelSink) Write(p []byte) (int, error) {
	entry, ok := decodeLine(p)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, errSinkClosed
	}
	if !ok {
		return len(p), nil
	}
	if s.journal != nil {
		s.journal.Add(entry)
	}
	s.offer(entry)
	return len(p), nil
}

// offer queues entry, evicting the oldest queued entry when the channel
// is full. Callers hold s.mu.
func (s *ChannelSink) offer(entry LogEntry) {
	for range 2 {
		select {
		case s.entries <- entry:
			return
		default:
		}
		select {
		case <-s.entries:
		default:
		}
	}
}

// Sync implements zapcore.WriteSyncer.
func (s *ChannelSink) Sync() error {
	return nil
}

// Close closes the entries channel. Safe to call multiple times.
func (s *ChannelSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.entries)
	}
	return nil
}

// Entries returns the channel of decoded entries.
func (s *ChannelSink) Entries() <-chan LogEntry {
	return s.entries
}

// decodeLine turns one line of zap's JSON encoder (see jsonEncoderConfig)
// into a LogEntry. Keys other than the encoder's own become Fields.
func decodeLine(line []byte) (LogEntry, bool) {
	var raw map[string]any
	if err := json.Unmarshal(line, &raw); err != nil {
		return LogEntry{}, false
	}

	entry := LogEntry{
		Timestamp: time.Now(),
		Level:     "INFO",
		Scope:     "app",
		Fields:    make(map[string]any, len(raw)),
	}
	for key, value := range raw {
		switch key {
		case "msg":
			entry.Message, _ = value.(string)
		case "level":
			if s, ok := value.(string); ok {
				entry.Level = ParseLevel(s)
			}
		case "logger":
			if s, ok := value.(string); ok && s != "" {
				entry.Scope = s
			}
		case "ts":
			if f, ok := value.(float64); ok {
				entry.Timestamp = time.UnixMicro(int64(f * 1e6))
			}
		case "caller", "stacktrace":
		default:
			entry.Fields[key] = value
		}
	}
	return entry, true
}
