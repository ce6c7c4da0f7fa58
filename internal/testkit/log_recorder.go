// Package testkit provides fixtures shared by the package tests: a seeded
// credit applicant generator and a logger that records what it was told.
package testkit

import (
	"fmt"
	"strings"
	"sync"
)

// LogEntry is one recorded log call
type LogEntry struct {
	Level   string
	Message string
}

// LogRecorder implements logging.Logger by keeping every record in memory
type LogRecorder struct {
	mu      sync.Mutex
	entries []LogEntry
}

// NewLogRecorder creates an empty recorder
func NewLogRecorder() *LogRecorder {
	return &LogRecorder{}
}

func (r *LogRecorder) Debug(format string, args ...interface{}) { r.record("DEBUG", format, args) }
func (r *LogRecorder) Info(format string, args ...interface{})  { r.record("INFO", format, args) }
func (r *LogRecorder) Warn(format string, args ...interface{})  { r.record("WARN", format, args) }
func (r *LogRecorder) Error(format string, args ...interface{}) { r.record("ERROR", format, args) }

func (r *LogRecorder) record(level, format string, args []interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, LogEntry{Level: level, Message: fmt.Sprintf(format, args...)})
}

// Entries returns a copy of everything recorded so far
func (r *LogRecorder) Entries() []LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]LogEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Contains reports whether a record at level contains substr
func (r *LogRecorder) Contains(level, substr string) bool {
	for _, e := range r.Entries() {
		if e.Level == level && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

// Count returns how many records were logged at level
func (r *LogRecorder) Count(level string) int {
	n := 0
	for _, e := range r.Entries() {
		if e.Level == level {
			n++
		}
	}
	return n
}
