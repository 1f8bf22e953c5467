package analyzer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kiln/internal/graph"
)

func build(t *testing.T, pairs ...graph.Adjacency[string]) *graph.Graph[string] {
	t.Helper()
	g, err := graph.FromEdges(pairs)
	require.NoError(t, err)
	return g
}

func adj(node string, deps ...string) graph.Adjacency[string] {
	return graph.Adjacency[string]{Node: node, Deps: deps}
}

func never(string) bool  { return false }
func always(string) bool { return true }

func TestAnalyze_OrderRespectsEdges(t *testing.T) {
	g := build(t, adj("A"), adj("B", "A"), adj("C", "A"))

	a, err := Analyze(graph.Empty[string](), g, always)
	require.NoError(t, err)

	assert.Equal(t, "A", a.Order[0])
	assert.ElementsMatch(t, []string{"A", "B", "C"}, a.Order)
}

func TestAnalyze_Cycle(t *testing.T) {
	g := build(t, adj("X", "Y"), adj("Y", "X"))

	a, err := Analyze(graph.Empty[string](), g, always)
	require.Error(t, err)
	assert.Nil(t, a)

	var cycleErr *CycleError[string]
	require.True(t, errors.As(err, &cycleErr))
	assert.Contains(t, [][]string{{"X", "Y", "X"}, {"Y", "X", "Y"}}, cycleErr.Path)
	assert.Contains(t, err.Error(), "X → Y → X")
}

func TestAnalyze_FirstRunEverythingStale(t *testing.T) {
	g := build(t, adj("A"), adj("B", "A"))

	// Even with a constant-false predicate, nodes missing from the old graph are stale.
	a, err := Analyze(graph.Empty[string](), g, never)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, a.Stale())
}

func TestAnalyze_UnchangedNothingStale(t *testing.T) {
	pairs := []graph.Adjacency[string]{adj("A"), adj("B", "A"), adj("C")}

	a, err := Analyze(build(t, pairs...), build(t, pairs...), never)
	require.NoError(t, err)
	assert.Empty(t, a.Stale())
	assert.Len(t, a.Order, 3, "order is never pruned")
}

func TestAnalyze_ModifiedPropagatesToDependents(t *testing.T) {
	pairs := []graph.Adjacency[string]{adj("A"), adj("B", "A"), adj("C", "B"), adj("D")}
	modified := func(n string) bool { return n == "A" }

	a, err := Analyze(build(t, pairs...), build(t, pairs...), modified)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, a.Stale())
	assert.False(t, a.IsStale("D"))
}

func TestAnalyze_ChangedDependenciesMakeStale(t *testing.T) {
	old := build(t, adj("A"), adj("B"), adj("C", "A"), adj("E", "C"))
	current := build(t, adj("A"), adj("B"), adj("C", "A", "B"), adj("E", "C"))

	a, err := Analyze(old, current, never)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "E"}, a.Stale())
}

func TestAnalyze_NewNodeIsStale(t *testing.T) {
	old := build(t, adj("A"))
	current := build(t, adj("A"), adj("N", "A"))

	a, err := Analyze(old, current, never)
	require.NoError(t, err)
	assert.Equal(t, []string{"N"}, a.Stale())
}
