package compiler

import (
	"fmt"

	"github.com/roach88/kiln/internal/item"
	"github.com/roach88/kiln/internal/route"
)

// Rule binds an item to its compile procedure and route.
// A nil Route means the item is never written.
type Rule struct {
	Item     item.Item
	Data     any
	Compiler Compiler
	Route    route.Func
}

// ID is the identifier of the rule's item.
func (r Rule) ID() item.ID { return r.Item.ID() }

// DuplicateError reports a rule registered twice.
type DuplicateError struct {
	ID item.ID
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate item %s", e.ID)
}

// Registry is the compilation map for one run. It only grows.
type Registry struct {
	rules []Rule
	index map[item.ID]int
}

// NewRegistry registers rules in order.
func NewRegistry(rules ...Rule) (*Registry, error) {
	r := &Registry{index: make(map[item.ID]int, len(rules))}
	if err := r.Add(rules...); err != nil {
		return nil, err
	}
	return r, nil
}

// Add registers rules. Nothing is registered when any of them is invalid
// or already present.
func (r *Registry) Add(rules ...Rule) error {
	seen := make(map[item.ID]struct{}, len(rules))
	for i, rule := range rules {
		if rule.Item == nil {
			return fmt.Errorf("rule %d has no item", i)
		}
		if rule.Compiler == nil {
			return fmt.Errorf("rule for %s has no compiler", rule.ID())
		}
		id := rule.ID()
		if _, ok := r.index[id]; ok {
			return &DuplicateError{ID: id}
		}
		if _, ok := seen[id]; ok {
			return &DuplicateError{ID: id}
		}
		seen[id] = struct{}{}
	}
	for _, rule := range rules {
		r.index[rule.ID()] = len(r.rules)
		r.rules = append(r.rules, rule)
	}
	return nil
}

// Lookup returns the rule for id.
func (r *Registry) Lookup(id item.ID) (Rule, bool) {
	i, ok := r.index[id]
	if !ok {
		return Rule{}, false
	}
	return r.rules[i], true
}

// Len returns the number of rules.
func (r *Registry) Len() int { return len(r.rules) }

// Rules returns a copy of the rules in registration order.
func (r *Registry) Rules() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// Population returns the registered items as a population.
func (r *Registry) Population() *item.Population {
	entries := make([]item.Entry, len(r.rules))
	for i, rule := range r.rules {
		entries[i] = item.Entry{Item: rule.Item, Data: rule.Data}
	}
	// Registry already guarantees unique, non-nil items.
	pop, err := item.NewPopulation(entries)
	if err != nil {
		panic(err)
	}
	return pop
}
