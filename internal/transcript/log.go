// Package transcript provides the append-only conversation log for one run.
//
// A Log is owned by a single run and passed explicitly to every consumer;
// there is no process-global log. Appends assign strictly increasing
// sequence numbers and snapshots are stable copies that later appends never
// mutate.
package transcript

import (
	"fmt"
	"strings"
	"sync"
)

// Entry is one annotated transcript event. Entries are never edited or
// deleted once appended.
type Entry struct {
	Sequence int
	Label    string
	Body     string
}

// Log accumulates entries in append order.
type Log struct {
	mu      sync.Mutex
	runID   string
	entries []Entry
}

// New creates an empty log scoped to the given run ID.
func New(runID string) *Log {
	return &Log{runID: runID}
}

// RunID returns the run this log belongs to.
func (l *Log) RunID() string {
	return l.runID
}

// Append adds an entry and returns it with its assigned sequence number.
// Sequence numbers start at 1 and increase by exactly one per append.
func (l *Log) Append(label, body string) Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := Entry{
		Sequence: len(l.entries) + 1,
		Label:    label,
		Body:     body,
	}
	l.entries = append(l.entries, entry)
	return entry
}

// Snapshot returns a copy of the entries at call time. The copy is stable:
// later appends do not alter it.
func (l *Log) Snapshot() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries appended so far.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Render formats the log as conversation history text, one entry per
// paragraph, for use as context in judgment and reporting prompts.
func (l *Log) Render() string {
	entries := l.Snapshot()

	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d. [%s] %s", e.Sequence, e.Label, e.Body)
	}
	return b.String()
}
