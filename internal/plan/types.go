package plan

import (
	"slices"

	"github.com/specialistvlad/tickgrid/internal/resource"
	"github.com/specialistvlad/tickgrid/internal/stage"
)

// EdgeKind distinguishes author-declared ordering from conflict-derived ordering.
type EdgeKind int

const (
	// Explicit edges come from a stage's After list.
	Explicit EdgeKind = iota
	// Implicit edges resolve a resource conflict by declaration order.
	Implicit
)

func (k EdgeKind) String() string {
	if k == Implicit {
		return "implicit"
	}
	return "explicit"
}

// Edge states that stage From must finish before stage To starts.
type Edge struct {
	From string
	To   string
	Kind EdgeKind
	// Resources holds the conflicting resources behind an implicit edge.
	Resources []resource.ID
}

// Plan is a validated, immutable DAG over stages. Stage indices follow
// declaration order. A Plan is safe for concurrent reads.
type Plan struct {
	stages []stage.Declaration
	index  map[string]int
	table  *resource.Table

	succ  [][]int // sorted ascending
	pred  [][]int // sorted ascending
	edges []Edge  // in insertion order
}

// Len returns the number of stages.
func (p *Plan) Len() int { return len(p.stages) }

// Name returns the name of stage i.
func (p *Plan) Name(i int) string { return p.stages[i].Name }

// Names returns every stage name in declaration order.
func (p *Plan) Names() []string {
	out := make([]string, len(p.stages))
	for i, s := range p.stages {
		out[i] = s.Name
	}
	return out
}

// Index returns the declaration index of the named stage.
func (p *Plan) Index(name string) (int, bool) {
	i, ok := p.index[name]
	return i, ok
}

// Stage returns the declaration of stage i.
func (p *Plan) Stage(i int) stage.Declaration { return p.stages[i] }

// Table returns the resource access table the plan was built from.
func (p *Plan) Table() *resource.Table { return p.table }

// Successors returns the stages that directly depend on stage i, ascending.
func (p *Plan) Successors(i int) []int { return slices.Clone(p.succ[i]) }

// Predecessors returns the stages stage i directly depends on, ascending.
func (p *Plan) Predecessors(i int) []int { return slices.Clone(p.pred[i]) }

// InDegree returns the number of direct predecessors of stage i.
func (p *Plan) InDegree(i int) int { return len(p.pred[i]) }

// Edges returns all edges, explicit ones first, each group in the order added.
func (p *Plan) Edges() []Edge {
	out := make([]Edge, len(p.edges))
	for i, e := range p.edges {
		out[i] = e
		out[i].Resources = slices.Clone(e.Resources)
	}
	return out
}

// HasPath reports whether stage to is reachable from stage from.
func (p *Plan) HasPath(from, to int) bool {
	return reachable(p.succ, from, to)
}

// addEdge links from -> to unless the edge already exists. It reports
// whether a new edge was added.
func (p *Plan) addEdge(from, to int, kind EdgeKind, shared []resource.ID) bool {
	if _, found := slices.BinarySearch(p.succ[from], to); found {
		return false
	}
	p.succ[from] = insertSorted(p.succ[from], to)
	p.pred[to] = insertSorted(p.pred[to], from)
	p.edges = append(p.edges, Edge{
		From:      p.stages[from].Name,
		To:        p.stages[to].Name,
		Kind:      kind,
		Resources: shared,
	})
	return true
}

func insertSorted(s []int, v int) []int {
	pos, _ := slices.BinarySearch(s, v)
	return slices.Insert(s, pos, v)
}

// reachable runs an iterative DFS over adjacency lists.
func reachable(succ [][]int, from, to int) bool {
	if from == to {
		return true
	}
	visited := make([]bool, len(succ))
	stack := []int{from}
	visited[from] = true
	for len(stack) > 0 {
		u := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, v := range succ[u] {
			if v == to {
				return true
			}
			if !visited[v] {
				visited[v] = true
				stack = append(stack, v)
			}
		}
	}
	return false
}
