package graph

import (
	"errors"
	"fmt"
)

// ErrDuplicateNode is returned by FromEdges when a node is listed twice.
var ErrDuplicateNode = errors.New("duplicate node")

// Adjacency is one node and the set of nodes it depends on.
type Adjacency[N comparable] struct {
	Node N   `json:"node"`
	Deps []N `json:"deps"`
}

// Graph is an immutable directed graph.
//
// It is safe for concurrent read access.
type Graph[N comparable] struct {
	nodes []N
	index map[N]int
	out   [][]int // by insertion index, deduplicated, declaration order
}

// Empty returns a graph with no nodes.
func Empty[N comparable]() *Graph[N] {
	return &Graph[N]{index: make(map[N]int)}
}

// FromEdges builds a graph from an adjacency list.
//
// Each node may be listed at most once. Nodes that only appear as
// dependencies are still part of the graph, with no outgoing edges.
// Repeated dependencies of one node collapse into a single edge.
func FromEdges[N comparable](pairs []Adjacency[N]) (*Graph[N], error) {
	g := &Graph[N]{index: make(map[N]int, len(pairs))}

	for _, p := range pairs {
		if _, dup := g.index[p.Node]; dup {
			return nil, fmt.Errorf("%w: %v", ErrDuplicateNode, p.Node)
		}
		g.add(p.Node)
	}

	for _, p := range pairs {
		from := g.index[p.Node]
		seen := make(map[int]struct{}, len(p.Deps))
		for _, dep := range p.Deps {
			to := g.add(dep)
			if _, ok := seen[to]; ok {
				continue
			}
			seen[to] = struct{}{}
			g.out[from] = append(g.out[from], to)
		}
	}

	return g, nil
}

// add registers n if needed and returns its index.
func (g *Graph[N]) add(n N) int {
	if i, ok := g.index[n]; ok {
		return i
	}
	i := len(g.nodes)
	g.index[n] = i
	g.nodes = append(g.nodes, n)
	g.out = append(g.out, nil)
	return i
}

// Len returns the number of nodes.
func (g *Graph[N]) Len() int { return len(g.nodes) }

// Has reports whether n is a node of the graph.
func (g *Graph[N]) Has(n N) bool {
	_, ok := g.index[n]
	return ok
}

// Nodes returns every node in insertion order.
func (g *Graph[N]) Nodes() []N {
	out := make([]N, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// DependenciesOf returns the direct dependencies of n, or nil if n is unknown.
func (g *Graph[N]) DependenciesOf(n N) []N {
	i, ok := g.index[n]
	if !ok {
		return nil
	}
	return g.names(g.out[i])
}

// Edges returns the full adjacency list in insertion order, including
// nodes without dependencies. FromEdges(g.Edges()) reproduces g.
func (g *Graph[N]) Edges() []Adjacency[N] {
	out := make([]Adjacency[N], len(g.nodes))
	for i, n := range g.nodes {
		out[i] = Adjacency[N]{Node: n, Deps: g.names(g.out[i])}
		if out[i].Deps == nil {
			out[i].Deps = []N{}
		}
	}
	return out
}

// Reachable returns every node reachable from n through one or more edges,
// in depth-first discovery order. n itself is included only if it lies on
// a cycle.
func (g *Graph[N]) Reachable(n N) []N {
	start, ok := g.index[n]
	if !ok {
		return nil
	}

	visited := make([]bool, len(g.nodes))
	var order []int
	stack := make([]int, 0, len(g.out[start]))
	for i := len(g.out[start]) - 1; i >= 0; i-- {
		stack = append(stack, g.out[start][i])
	}
	for len(stack) > 0 {
		u := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[u] {
			continue
		}
		visited[u] = true
		order = append(order, u)
		for i := len(g.out[u]) - 1; i >= 0; i-- {
			if !visited[g.out[u][i]] {
				stack = append(stack, g.out[u][i])
			}
		}
	}
	return g.names(order)
}

// Reverse returns the graph with every edge flipped. Node order is kept.
func (g *Graph[N]) Reverse() *Graph[N] {
	r := g.shell()
	for from, deps := range g.out {
		for _, to := range deps {
			r.out[to] = append(r.out[to], from)
		}
	}
	return r
}

// Subgraph returns the graph induced by the nodes for which keep is true.
func (g *Graph[N]) Subgraph(keep func(N) bool) *Graph[N] {
	s := Empty[N]()
	for _, n := range g.nodes {
		if keep(n) {
			s.add(n)
		}
	}
	for i, n := range g.nodes {
		from, ok := s.index[n]
		if !ok {
			continue
		}
		for _, j := range g.out[i] {
			if to, ok := s.index[g.nodes[j]]; ok {
				s.out[from] = append(s.out[from], to)
			}
		}
	}
	return s
}

// shell copies the node set without edges.
func (g *Graph[N]) shell() *Graph[N] {
	s := &Graph[N]{
		nodes: make([]N, len(g.nodes)),
		index: make(map[N]int, len(g.nodes)),
		out:   make([][]int, len(g.nodes)),
	}
	copy(s.nodes, g.nodes)
	for n, i := range g.index {
		s.index[n] = i
	}
	return s
}

func (g *Graph[N]) names(idx []int) []N {
	if idx == nil {
		return nil
	}
	out := make([]N, len(idx))
	for i, j := range idx {
		out[i] = g.nodes[j]
	}
	return out
}
