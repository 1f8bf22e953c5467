package route

import (
	"fmt"

	"github.com/roach88/kiln/internal/item"
)

// Entry is one recorded route.
type Entry struct {
	ID   item.ID `json:"id"`
	Path string  `json:"path"`
}

// Reader is the read-only view handed to compilers.
type Reader interface {
	Lookup(id item.ID) (string, bool)
	Len() int
}

// Table maps identifiers to destination paths in insertion order.
// An identifier is recorded at most once.
type Table struct {
	index   map[item.ID]int
	entries []Entry
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{index: make(map[item.ID]int)}
}

// Add records id → dest. Recording the same identifier twice is an error.
func (t *Table) Add(id item.ID, dest string) error {
	if i, ok := t.index[id]; ok {
		return fmt.Errorf("route for %s already recorded as %q", id, t.entries[i].Path)
	}
	t.index[id] = len(t.entries)
	t.entries = append(t.entries, Entry{ID: id, Path: dest})
	return nil
}

// Lookup returns the recorded path for id.
func (t *Table) Lookup(id item.ID) (string, bool) {
	i, ok := t.index[id]
	if !ok {
		return "", false
	}
	return t.entries[i].Path, true
}

// Len returns the number of recorded routes.
func (t *Table) Len() int { return len(t.entries) }

// Entries returns a copy of the recorded routes in insertion order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Owner returns the identifier already routed to dest, if any.
func (t *Table) Owner(dest string) (item.ID, bool) {
	for _, e := range t.entries {
		if e.Path == dest {
			return e.ID, true
		}
	}
	return item.ID{}, false
}
