package graph

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopologicalOrder_DependenciesFirst(t *testing.T) {
	// B and C both depend on A.
	g := mustGraph(t, adj("B", "A"), adj("C", "A"), adj("A"))

	order, ok := g.TopologicalOrder()
	require.True(t, ok)
	assert.Equal(t, "A", order[0])
	assert.Contains(t, [][]string{{"A", "B", "C"}, {"A", "C", "B"}}, order)
}

func TestTopologicalOrder_TiesFollowInsertionOrder(t *testing.T) {
	g := mustGraph(t, adj("z"), adj("m"), adj("a"), adj("top", "a", "z"))

	order, ok := g.TopologicalOrder()
	require.True(t, ok)
	if diff := cmp.Diff([]string{"z", "m", "a", "top"}, order); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestTopologicalOrder_Deterministic(t *testing.T) {
	pairs := []Adjacency[string]{adj("d", "b", "c"), adj("c", "a"), adj("b", "a"), adj("a")}

	first, _ := mustGraph(t, pairs...).TopologicalOrder()
	for i := 0; i < 20; i++ {
		again, _ := mustGraph(t, pairs...).TopologicalOrder()
		require.Equal(t, first, again)
	}
}

func TestTopologicalOrder_Cycle(t *testing.T) {
	g := mustGraph(t, adj("x", "y"), adj("y", "x"), adj("free"))

	order, ok := g.TopologicalOrder()
	assert.False(t, ok)
	assert.Equal(t, []string{"free"}, order)
}

// TestTopologicalOrder_RandomDAGs checks that every random acyclic edge set
// yields a permutation of its nodes in which each dependency precedes its
// dependent.
func TestTopologicalOrder_RandomDAGs(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 200; round++ {
		n := 1 + rng.Intn(25)
		pairs := make([]Adjacency[int], n)
		// Edges only point to lower-numbered nodes, which keeps the graph acyclic.
		for i := 0; i < n; i++ {
			pairs[i].Node = i
			for j := 0; j < i; j++ {
				if rng.Intn(4) == 0 {
					pairs[i].Deps = append(pairs[i].Deps, j)
				}
			}
		}
		rng.Shuffle(len(pairs), func(a, b int) { pairs[a], pairs[b] = pairs[b], pairs[a] })

		g, err := FromEdges(pairs)
		require.NoError(t, err)

		order, ok := g.TopologicalOrder()
		require.True(t, ok, "round %d", round)
		require.Len(t, order, n)

		pos := make(map[int]int, n)
		for i, node := range order {
			_, dup := pos[node]
			require.False(t, dup, "node %d emitted twice", node)
			pos[node] = i
		}
		for _, p := range pairs {
			for _, dep := range p.Deps {
				assert.Less(t, pos[dep], pos[p.Node], fmt.Sprintf("round %d: %d must precede %d", round, dep, p.Node))
			}
		}
		assert.Nil(t, g.FindCycle())
	}
}
