package view

import (
	"sync"

	"github.com/zappabad/memex/internal/activity"
	"github.com/zappabad/memex/internal/ring"
)

// Event carries a published entry.
type Event struct {
	Entry activity.Entry
}

// Feed keeps the newest entries for late subscribers. It is safe for
// concurrent use.
type Feed struct {
	mu      sync.RWMutex
	entries *ring.Buffer[activity.Entry]
}

// NewFeed creates a Feed holding up to capacity entries (100 if unset).
func NewFeed(capacity int) *Feed {
	if capacity <= 0 {
		capacity = 100
	}
	return &Feed{entries: ring.New[activity.Entry](capacity)}
}

// Apply records the entry of ev.
func (f *Feed) Apply(ev Event) {
	f.mu.Lock()
	f.entries.Push(ev.Entry)
	f.mu.Unlock()
}

// Latest returns up to n entries, newest first.
func (f *Feed) Latest(n int) []activity.Entry {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.entries.Last(n)
}

// Count returns the number of entries held.
func (f *Feed) Count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.entries.Len()
}
