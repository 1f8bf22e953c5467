// Package analyzer decides, for one run, whether the dependency graph is
// acyclic and in which order items must execute.
//
// The previous run's graph is compared with the current one to derive the
// stale set: items whose inputs may have changed. The order itself is never
// pruned; every item is scheduled and each compile procedure decides on its
// own whether its work can be skipped.
package analyzer

import (
	"fmt"
	"strings"

	"github.com/roach88/kiln/internal/graph"
)

// CycleError reports a dependency cycle as a closed path.
type CycleError[N comparable] struct {
	Path []N
}

func (e *CycleError[N]) Error() string {
	parts := make([]string, len(e.Path))
	for i, n := range e.Path {
		parts[i] = fmt.Sprint(n)
	}
	return "dependency cycle: " + strings.Join(parts, " → ")
}

// Analysis is the outcome of a successful analysis.
type Analysis[N comparable] struct {
	// Order lists every node of the new graph exactly once, dependencies
	// before dependents.
	Order []N

	stale map[N]struct{}
}

// IsStale reports whether n is out of date: it was modified, its dependency
// set changed since the previous run, or it transitively depends on a node
// for which either holds.
func (a *Analysis[N]) IsStale(n N) bool {
	_, ok := a.stale[n]
	return ok
}

// Stale returns the stale nodes in execution order.
func (a *Analysis[N]) Stale() []N {
	var out []N
	for _, n := range a.Order {
		if a.IsStale(n) {
			out = append(out, n)
		}
	}
	return out
}

// Analyze checks newGraph for cycles and computes its execution order.
//
// oldGraph is the graph persisted by the previous run (empty on the first
// run, which makes every node stale). isModified reports whether a node's
// backing resource changed. A cycle aborts the analysis with *CycleError.
func Analyze[N comparable](oldGraph, newGraph *graph.Graph[N], isModified func(N) bool) (*Analysis[N], error) {
	if cycle := newGraph.FindCycle(); cycle != nil {
		return nil, &CycleError[N]{Path: cycle}
	}

	order, ok := newGraph.TopologicalOrder()
	if !ok {
		// FindCycle and TopologicalOrder disagree; this is a bug, not user error.
		return nil, fmt.Errorf("analyze: incomplete order (%d of %d nodes)", len(order), newGraph.Len())
	}

	return &Analysis[N]{
		Order: order,
		stale: staleClosure(oldGraph, newGraph, isModified),
	}, nil
}

// staleClosure seeds the stale set with modified nodes and nodes whose
// dependency set differs from the old graph, then adds every node that
// reaches a seed.
func staleClosure[N comparable](oldGraph, newGraph *graph.Graph[N], isModified func(N) bool) map[N]struct{} {
	stale := make(map[N]struct{})
	dependents := newGraph.Reverse()

	for _, n := range newGraph.Nodes() {
		if _, done := stale[n]; done {
			continue
		}
		if !isModified(n) && !dependenciesChanged(oldGraph, newGraph, n) {
			continue
		}
		stale[n] = struct{}{}
		for _, d := range dependents.Reachable(n) {
			stale[d] = struct{}{}
		}
	}
	return stale
}

func dependenciesChanged[N comparable](oldGraph, newGraph *graph.Graph[N], n N) bool {
	if !oldGraph.Has(n) {
		return true
	}
	oldDeps := oldGraph.DependenciesOf(n)
	newDeps := newGraph.DependenciesOf(n)
	if len(oldDeps) != len(newDeps) {
		return true
	}
	set := make(map[N]struct{}, len(oldDeps))
	for _, d := range oldDeps {
		set[d] = struct{}{}
	}
	for _, d := range newDeps {
		if _, ok := set[d]; !ok {
			return true
		}
	}
	return false
}
