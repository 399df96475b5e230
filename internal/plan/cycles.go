package plan

import "container/heap"

// detectCycles proves the graph acyclic with Kahn's algorithm and, when it is
// not, extracts one cycle deterministically for the error.
func (p *Plan) detectCycles() error {
	if len(p.topoOrder()) == len(p.stages) {
		return nil
	}
	return cyclicDependency(p.findCycle())
}

// TopologicalOrder returns the stage names in a deterministic topological
// order. Among stages ready at the same time, the earlier-declared one comes
// first.
func (p *Plan) TopologicalOrder() []string {
	order := p.topoOrder()
	names := make([]string, len(order))
	for i, idx := range order {
		names[i] = p.stages[idx].Name
	}
	return names
}

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

func (p *Plan) topoOrder() []int {
	indeg := make([]int, len(p.stages))
	for i := range p.pred {
		indeg[i] = len(p.pred[i])
	}

	ready := &intMinHeap{}
	for i, d := range indeg {
		if d == 0 {
			heap.Push(ready, i)
		}
	}

	out := make([]int, 0, len(indeg))
	for ready.Len() > 0 {
		u := heap.Pop(ready).(int)
		out = append(out, u)
		for _, v := range p.succ[u] {
			indeg[v]--
			if indeg[v] == 0 {
				heap.Push(ready, v)
			}
		}
	}
	return out
}

// findCycle runs a DFS in declaration order and returns the first cycle it
// closes, as names in edge direction with the first repeated at the end.
func (p *Plan) findCycle() []string {
	const (
		white = iota
		gray
		black
	)
	color := make([]int, len(p.stages))
	parent := make([]int, len(p.stages))
	for i := range parent {
		parent[i] = -1
	}

	var cycle []int
	var dfs func(u int) bool
	dfs = func(u int) bool {
		color[u] = gray
		for _, v := range p.succ[u] {
			switch color[v] {
			case white:
				parent[v] = u
				if dfs(v) {
					return true
				}
			case gray:
				// Back edge u -> v closes v -> ... -> u -> v.
				for cur := u; cur != v; cur = parent[cur] {
					cycle = append(cycle, cur)
				}
				cycle = append(cycle, v)
				return true
			}
		}
		color[u] = black
		return false
	}

	for i := range p.stages {
		if color[i] == white && dfs(i) {
			break
		}
	}
	if len(cycle) == 0 {
		return nil
	}

	// cycle holds u, parent(u), ..., v; reverse it into edge direction.
	names := make([]string, 0, len(cycle)+1)
	for i := len(cycle) - 1; i >= 0; i-- {
		names = append(names, p.stages[cycle[i]].Name)
	}
	return append(names, names[0])
}
