package graph

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustGraph(t *testing.T, pairs ...Adjacency[string]) *Graph[string] {
	t.Helper()
	g, err := FromEdges(pairs)
	require.NoError(t, err)
	return g
}

func adj(node string, deps ...string) Adjacency[string] {
	return Adjacency[string]{Node: node, Deps: deps}
}

func TestFromEdges_TargetOnlyNodesArePresent(t *testing.T) {
	g := mustGraph(t, adj("b", "a"), adj("c", "a", "z"))

	assert.Equal(t, []string{"b", "c", "a", "z"}, g.Nodes())
	assert.True(t, g.Has("z"))
	assert.Empty(t, g.DependenciesOf("z"))
	assert.Nil(t, g.DependenciesOf("missing"))
}

func TestFromEdges_DuplicateNode(t *testing.T) {
	_, err := FromEdges([]Adjacency[string]{adj("a"), adj("a", "b")})
	require.ErrorIs(t, err, ErrDuplicateNode)
}

func TestFromEdges_CollapsesRepeatedDeps(t *testing.T) {
	g := mustGraph(t, adj("a", "b", "b", "c"))
	assert.Equal(t, []string{"b", "c"}, g.DependenciesOf("a"))
}

func TestEdges_RoundTrip(t *testing.T) {
	g := mustGraph(t, adj("c", "b"), adj("b", "a"), adj("a"))

	again, err := FromEdges(g.Edges())
	require.NoError(t, err)
	if diff := cmp.Diff(g.Edges(), again.Edges()); diff != "" {
		t.Errorf("edges changed after round trip (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{}, g.Edges()[2].Deps, "leaf nodes serialise an empty set, not null")
}

func TestReachable(t *testing.T) {
	g := mustGraph(t,
		adj("d", "c"),
		adj("c", "b"),
		adj("b", "a"),
		adj("e"),
	)

	assert.Equal(t, []string{"c", "b", "a"}, g.Reachable("d"))
	assert.Empty(t, g.Reachable("a"))
	assert.Nil(t, g.Reachable("missing"))
}

func TestReachable_IncludesSelfOnCycle(t *testing.T) {
	g := mustGraph(t, adj("x", "y"), adj("y", "x"))
	assert.ElementsMatch(t, []string{"x", "y"}, g.Reachable("x"))
}

func TestReverse(t *testing.T) {
	g := mustGraph(t, adj("b", "a"), adj("c", "a"))
	r := g.Reverse()

	assert.Equal(t, g.Nodes(), r.Nodes())
	assert.Equal(t, []string{"b", "c"}, r.DependenciesOf("a"))
	assert.Empty(t, r.DependenciesOf("b"))
}

func TestSubgraph(t *testing.T) {
	g := mustGraph(t, adj("c", "b", "a"), adj("b", "a"))
	s := g.Subgraph(func(n string) bool { return n != "b" })

	assert.Equal(t, []string{"c", "a"}, s.Nodes())
	assert.Equal(t, []string{"a"}, s.DependenciesOf("c"))
}

func TestEmpty(t *testing.T) {
	g := Empty[string]()
	assert.Zero(t, g.Len())
	assert.Nil(t, g.FindCycle())
	order, ok := g.TopologicalOrder()
	assert.True(t, ok)
	assert.Empty(t, order)
}
