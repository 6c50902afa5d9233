package logging

import (
	"strings"
	"testing"
	"time"
)

func TestLogEntry_String(t *testing.T) {
	entry := LogEntry{
		Timestamp: time.Date(2026, 3, 2, 9, 15, 0, 0, time.UTC),
		Level:     "INFO",
		Scope:     "session",
		Message:   "child added",
		Fields:    map[string]any{"parent": "root", "child": "c1"},
	}

	got := entry.String()
	want := "09:15:00 INFO [session] child added child=c1 parent=root"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestLogEntry_String_NoFields(t *testing.T) {
	entry := LogEntry{
		Timestamp: time.Date(2026, 3, 2, 9, 15, 0, 0, time.UTC),
		Level:     "WARN",
		Scope:     "web",
		Message:   "stale edit",
	}
	if got := entry.String(); strings.HasSuffix(got, " ") {
		t.Errorf("String() has trailing space: %q", got)
	}
}

func TestLogEntry_MatchesScope(t *testing.T) {
	tests := []struct {
		name   string
		scope  string
		prefix string
		want   bool
	}{
		{"empty prefix matches all", "session", "", true},
		{"exact match", "session", "session", true},
		{"nested scope", "web.stream", "web", true},
		{"different scope", "config", "session", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := LogEntry{Scope: tt.scope}
			if got := entry.MatchesScope(tt.prefix); got != tt.want {
				t.Errorf("MatchesScope(%q) = %v, want %v", tt.prefix, got, tt.want)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"debug", "DEBUG"},
		{"INFO", "INFO"},
		{"warn", "WARN"},
		{"warning", "WARN"},
		{"Error", "ERROR"},
		{"fatal", "INFO"},
		{"", "INFO"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
