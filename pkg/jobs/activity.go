package jobs

import (
	"sync"
	"time"

	"github.com/agentviz/agentviz/pkg/api"
)

// DefaultActivityCap bounds the activity log the frontend polls.
const DefaultActivityCap = 1000

// ActivityLog is the bounded, append-only feed of orchestration events.
// Once the cap is exceeded the oldest entries are dropped.
//
// All methods are safe for concurrent access.
type ActivityLog struct {
	mu      sync.Mutex
	entries []api.ActivityEntry
	step    int
	cap     int
}

// NewActivityLog creates a log retaining at most capacity entries.
// A non-positive capacity falls back to DefaultActivityCap.
func NewActivityLog(capacity int) *ActivityLog {
	if capacity <= 0 {
		capacity = DefaultActivityCap
	}
	return &ActivityLog{cap: capacity}
}

// Append records one event. Step numbering is monotonic across drops.
func (l *ActivityLog) Append(entryType, content string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.step++
	l.entries = append(l.entries, api.ActivityEntry{
		Timestamp: time.Now().UTC(),
		Type:      entryType,
		Content:   content,
		Step:      l.step,
	})
	if len(l.entries) > l.cap {
		l.entries = l.entries[len(l.entries)-l.cap:]
	}
}

// Entries returns a copy of the retained entries, oldest first.
func (l *ActivityLog) Entries() []api.ActivityEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]api.ActivityEntry, len(l.entries))
	copy(out, l.entries)
	return out
}
