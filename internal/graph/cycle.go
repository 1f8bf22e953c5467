package graph

import "slices"

// FindCycle returns one cycle of the graph as a closed path
// [v0, v1, ..., v0] in which every consecutive pair is an edge, or nil if
// the graph is acyclic.
//
// The search is a depth-first traversal in insertion order, so the same
// graph always yields the same witness. A self-loop yields [v, v].
func (g *Graph[N]) FindCycle() []N {
	return g.names(g.findCycleFrom(nil))
}

const (
	white = iota
	gray
	black
)

// findCycleFrom runs the DFS over the nodes for which member is true (all
// nodes when member is nil).
func (g *Graph[N]) findCycleFrom(member []bool) []int {
	color := make([]int, len(g.nodes))
	parent := make([]int, len(g.nodes))
	for i := range parent {
		parent[i] = -1
	}
	in := func(i int) bool { return member == nil || member[i] }

	var cycle []int
	var dfs func(u int) bool
	dfs = func(u int) bool {
		color[u] = gray
		for _, v := range g.out[u] {
			if !in(v) {
				continue
			}
			switch color[v] {
			case white:
				parent[v] = u
				if dfs(v) {
					return true
				}
			case gray:
				// Back edge u -> v: walk parents from u up to v.
				for cur := u; ; cur = parent[cur] {
					cycle = append(cycle, cur)
					if cur == v {
						break
					}
				}
				for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
					cycle[i], cycle[j] = cycle[j], cycle[i]
				}
				cycle = append(cycle, v)
				return true
			}
		}
		color[u] = black
		return false
	}

	for i := range g.nodes {
		if color[i] == white && in(i) && dfs(i) {
			break
		}
	}
	return cycle
}

// Cycles reports every cyclic strongly connected component, each rendered
// as a closed path like FindCycle. Components are ordered by their earliest
// inserted member.
//
// Tarjan's algorithm finds the components; a component is cyclic when it
// has more than one node or a self-loop.
func (g *Graph[N]) Cycles() [][]N {
	var cycles [][]N
	for _, scc := range g.stronglyConnected() {
		if len(scc) == 1 && !g.selfLoop(scc[0]) {
			continue
		}
		member := make([]bool, len(g.nodes))
		for _, i := range scc {
			member[i] = true
		}
		cycles = append(cycles, g.names(g.findCycleFrom(member)))
	}
	return cycles
}

func (g *Graph[N]) selfLoop(i int) bool {
	for _, j := range g.out[i] {
		if j == i {
			return true
		}
	}
	return false
}

// stronglyConnected returns the SCCs of the graph, each sorted by insertion
// index, ordered by their smallest member.
func (g *Graph[N]) stronglyConnected() [][]int {
	var (
		next    = 0
		stack   []int
		indices = make([]int, len(g.nodes))
		lowlink = make([]int, len(g.nodes))
		onStack = make([]bool, len(g.nodes))
		sccs    [][]int
	)
	for i := range indices {
		indices[i] = -1
	}

	var strongConnect func(v int)
	strongConnect = func(v int) {
		indices[v] = next
		lowlink[v] = next
		next++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.out[v] {
			if indices[w] < 0 {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []int
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for v := range g.nodes {
		if indices[v] < 0 {
			strongConnect(v)
		}
	}

	for _, scc := range sccs {
		slices.Sort(scc)
	}
	slices.SortFunc(sccs, func(a, b []int) int { return a[0] - b[0] })
	return sccs
}
