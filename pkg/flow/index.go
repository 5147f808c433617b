package flow

import (
	"slices"

	"github.com/matzehuels/flowchart/pkg/errors"
)

// Edge is a resolved dependency: To depends on From.
type Edge struct {
	From string // Dependency (upstream) id
	To   string // Dependent (downstream) id
}

// Dangling records a dep that names a node missing from the graph.
type Dangling struct {
	Node    string // Node declaring the dep
	Missing string // Unresolvable dep id
}

// Err returns the non-fatal DANGLING_DEPENDENCY error for d.
func (d Dangling) Err() error {
	return errors.New(errors.ErrCodeDanglingDependency, "node %q depends on unknown node %q", d.Node, d.Missing)
}

// Index is an immutable snapshot of the derived relations of a graph.
type Index struct {
	order      []string
	deps       map[string][]string // id -> resolved deps, declaration order, deduplicated
	dependents map[string][]string // id -> dependents, graph order
	roots      []string
	dangling   []Dangling
	edges      []Edge
}

// Index scans every node once and builds the reverse-dependency index.
// A node X is listed under each of its resolvable deps, in graph order; a
// dep repeated within one node is counted once.
func (g *Graph) Index() *Index {
	ix := &Index{
		order:      slices.Clone(g.order),
		deps:       make(map[string][]string, len(g.order)),
		dependents: make(map[string][]string, len(g.order)),
	}

	for _, id := range g.order {
		n := g.nodes[id]
		var resolved []string
		for _, dep := range n.Deps {
			if _, ok := g.nodes[dep]; !ok {
				ix.dangling = append(ix.dangling, Dangling{Node: id, Missing: dep})
				continue
			}
			if slices.Contains(resolved, dep) {
				continue
			}
			resolved = append(resolved, dep)
			ix.dependents[dep] = append(ix.dependents[dep], id)
			ix.edges = append(ix.edges, Edge{From: dep, To: id})
		}
		ix.deps[id] = resolved
		if len(resolved) == 0 {
			ix.roots = append(ix.roots, id)
		}
	}
	return ix
}

// Order returns node ids in graph order.
func (ix *Index) Order() []string { return ix.order }

// Deps returns the resolvable deps of id. The slice must not be modified.
func (ix *Index) Deps(id string) []string { return ix.deps[id] }

// Dependents returns the ids that depend on id, in graph order.
// The slice must not be modified.
func (ix *Index) Dependents(id string) []string { return ix.dependents[id] }

// Neighbors returns deps followed by dependents of id.
func (ix *Index) Neighbors(id string) []string {
	out := make([]string, 0, len(ix.deps[id])+len(ix.dependents[id]))
	out = append(out, ix.deps[id]...)
	return append(out, ix.dependents[id]...)
}

// Roots returns ids with no resolvable deps, in graph order.
func (ix *Index) Roots() []string { return ix.roots }

// Dangling returns every unresolvable dep in graph order.
func (ix *Index) Dangling() []Dangling { return ix.dangling }

// Edges returns every resolved dependency edge, grouped by dependent in
// graph order and by declaration order within a dependent.
func (ix *Index) Edges() []Edge { return ix.edges }
