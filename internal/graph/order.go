package graph

import "container/heap"

type intMinHeap []int

func (h intMinHeap) Len() int           { return len(h) }
func (h intMinHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h intMinHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *intMinHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *intMinHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// TopologicalOrder returns every node with dependencies before dependents.
//
// Among nodes whose dependencies are all satisfied, the one inserted first
// is emitted first. The boolean is false when a cycle prevents a complete
// order; the returned slice then holds only the nodes that could be placed.
func (g *Graph[N]) TopologicalOrder() ([]N, bool) {
	order := g.topoOrderIndices()
	return g.names(order), len(order) == len(g.nodes)
}

func (g *Graph[N]) topoOrderIndices() []int {
	pending := make([]int, len(g.nodes))
	dependents := make([][]int, len(g.nodes))
	for from, deps := range g.out {
		pending[from] = len(deps)
		for _, to := range deps {
			dependents[to] = append(dependents[to], from)
		}
	}

	ready := &intMinHeap{}
	for i, n := range pending {
		if n == 0 {
			heap.Push(ready, i)
		}
	}

	out := make([]int, 0, len(g.nodes))
	for ready.Len() > 0 {
		u := heap.Pop(ready).(int)
		out = append(out, u)
		for _, d := range dependents[u] {
			pending[d]--
			if pending[d] == 0 {
				heap.Push(ready, d)
			}
		}
	}
	return out
}
