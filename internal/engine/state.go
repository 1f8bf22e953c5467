package engine

import (
	"context"
	"fmt"

	"github.com/roach88/kiln/internal/compiler"
	"github.com/roach88/kiln/internal/graph"
	"github.com/roach88/kiln/internal/item"
	"github.com/roach88/kiln/internal/store"
)

// GraphKey holds the dependency graph of the last run.
var GraphKey = store.K("kiln", "graph")

func loadGraph(ctx context.Context, st *store.Store) (*graph.Graph[item.ID], bool, error) {
	var edges []graph.Adjacency[item.ID]
	ok, err := st.Get(ctx, GraphKey, &edges)
	if err != nil || !ok {
		return graph.Empty[item.ID](), false, err
	}
	g, err := graph.FromEdges(edges)
	if err != nil {
		return nil, false, fmt.Errorf("stored graph: %w", err)
	}
	return g, true, nil
}

func saveGraph(ctx context.Context, st *store.Store, g *graph.Graph[item.ID]) error {
	return st.Set(ctx, GraphKey, g.Edges())
}

// adjacency computes the dependency lists of rules against pop. Every
// dependency must be part of pop.
func adjacency(rules []compiler.Rule, pop *item.Population) ([]graph.Adjacency[item.ID], error) {
	out := make([]graph.Adjacency[item.ID], 0, len(rules))
	for _, rule := range rules {
		id := rule.ID()
		deps := rule.Compiler.Dependencies(pop)
		for _, dep := range deps {
			if !pop.Has(dep) {
				return nil, &RunError{
					Code:    ErrCodeUnknownDependency,
					Message: fmt.Sprintf("depends on unknown item %s", dep),
					ID:      id,
				}
			}
		}
		out = append(out, graph.Adjacency[item.ID]{Node: id, Deps: deps})
	}
	return out, nil
}

// buildGraph builds the dependency graph of every rule in reg.
func buildGraph(reg *compiler.Registry) (*graph.Graph[item.ID], error) {
	edges, err := adjacency(reg.Rules(), reg.Population())
	if err != nil {
		return nil, err
	}
	return graph.FromEdges(edges)
}
