package item

import (
	"fmt"
	"path"
)

// Entry pairs an item with the user data supplied by the population step.
type Entry struct {
	Item Item
	Data any
}

// Population is the ordered, read-only set of items for one run.
type Population struct {
	entries []Entry
	index   map[ID]int
}

// NewPopulation builds a population, rejecting duplicate identifiers.
func NewPopulation(entries []Entry) (*Population, error) {
	p := &Population{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[ID]int, len(entries)),
	}
	for _, e := range entries {
		if e.Item == nil {
			return nil, fmt.Errorf("population entry %d has no item", len(p.entries))
		}
		id := e.Item.ID()
		if _, dup := p.index[id]; dup {
			return nil, fmt.Errorf("duplicate item %s", id)
		}
		p.index[id] = len(p.entries)
		p.entries = append(p.entries, e)
	}
	return p, nil
}

// Len returns the number of items.
func (p *Population) Len() int { return len(p.entries) }

// Lookup returns the entry for id.
func (p *Population) Lookup(id ID) (Entry, bool) {
	i, ok := p.index[id]
	if !ok {
		return Entry{}, false
	}
	return p.entries[i], true
}

// Has reports whether id is part of the population.
func (p *Population) Has(id ID) bool {
	_, ok := p.index[id]
	return ok
}

// IDs returns every identifier in population order.
func (p *Population) IDs() []ID {
	ids := make([]ID, len(p.entries))
	for i, e := range p.entries {
		ids[i] = e.Item.ID()
	}
	return ids
}

// Entries returns a copy of the entries in population order.
func (p *Population) Entries() []Entry {
	out := make([]Entry, len(p.entries))
	copy(out, p.entries)
	return out
}

// Match returns, in population order, the identifiers whose path matches
// the glob pattern. Versioned identifiers only match when version is equal.
//
// A malformed pattern matches nothing.
func (p *Population) Match(pattern, version string) []ID {
	var out []ID
	for _, e := range p.entries {
		id := e.Item.ID()
		if id.Version != version {
			continue
		}
		if ok, err := path.Match(pattern, id.Path); err == nil && ok {
			out = append(out, id)
		}
	}
	return out
}
