package flow

import (
	"slices"
	"strings"

	"github.com/matzehuels/flowchart/pkg/errors"
	"github.com/matzehuels/flowchart/pkg/geom"
)

// Node is a rectangular diagram element.
//
// Deps and Box are read-only inputs to layout. Position is the top-left
// corner of the node.
type Node struct {
	ID       string     // Unique identifier
	Deps     []string   // Upstream dependency ids, in declaration order
	Position geom.Point // Top-left corner
	Box      geom.Size  // Bounding box reported by the renderer
}

// Rect returns the node's bounding rectangle at its current position.
func (n Node) Rect() geom.Rect { return geom.Rect{Point: n.Position, Size: n.Box} }

// DependsOn reports whether id appears in the node's declared deps.
func (n Node) DependsOn(id string) bool { return slices.Contains(n.Deps, id) }

// Graph is an ordered set of nodes keyed by id.
//
// The zero value is not usable - use New or FromNodes.
type Graph struct {
	order []string
	nodes map[string]*Node
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*Node)}
}

// FromNodes builds a graph from nodes in the given order.
// Returns the first AddNode error encountered.
func FromNodes(nodes []Node) (*Graph, error) {
	g := New()
	for _, n := range nodes {
		if err := g.AddNode(n); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// AddNode appends a node. The node's Deps slice is copied.
// Returns an INVALID_NODE_ID error for unusable ids, DUPLICATE_NODE if the id
// is already present, or INVALID_INPUT for a negative or non-finite box.
func (g *Graph) AddNode(n Node) error {
	if err := errors.ValidateNodeID(n.ID); err != nil {
		return err
	}
	if _, exists := g.nodes[n.ID]; exists {
		return errors.New(errors.ErrCodeDuplicateNode, "duplicate node id %q", n.ID)
	}
	if err := errors.ValidateExtent(n.ID, "width", n.Box.Width); err != nil {
		return err
	}
	if err := errors.ValidateExtent(n.ID, "height", n.Box.Height); err != nil {
		return err
	}
	n.Deps = slices.Clone(n.Deps)
	g.nodes[n.ID] = &n
	g.order = append(g.order, n.ID)
	return nil
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.order) }

// Has reports whether a node with the given id exists.
func (g *Graph) Has(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Node returns a copy of the node with the given id.
// The Deps slice is shared with the graph and must not be modified.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// IDs returns node ids in insertion order.
func (g *Graph) IDs() []string { return slices.Clone(g.order) }

// Nodes returns copies of all nodes in insertion order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.order))
	for i, id := range g.order {
		out[i] = *g.nodes[id]
	}
	return out
}

// SetPosition moves a single node, typically in response to a drag.
// Returns NOT_FOUND if the node does not exist.
func (g *Graph) SetPosition(id string, p geom.Point) error {
	n, ok := g.nodes[id]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "node %q not found", id)
	}
	n.Position = p
	return nil
}

// SetBox updates the bounding box reported by the renderer for a node.
func (g *Graph) SetBox(id string, s geom.Size) error {
	n, ok := g.nodes[id]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "node %q not found", id)
	}
	if err := errors.ValidateExtent(id, "width", s.Width); err != nil {
		return err
	}
	if err := errors.ValidateExtent(id, "height", s.Height); err != nil {
		return err
	}
	n.Box = s
	return nil
}

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		order: slices.Clone(g.order),
		nodes: make(map[string]*Node, len(g.nodes)),
	}
	for id, n := range g.nodes {
		cp := *n
		cp.Deps = slices.Clone(n.Deps)
		c.nodes[id] = &cp
	}
	return c
}

// WithPositions returns a copy of the graph whose positions are taken from
// pos. Nodes absent from pos keep their current position. The receiver is
// not modified, so applying an arrangement is all-or-nothing.
func (g *Graph) WithPositions(pos map[string]geom.Point) *Graph {
	c := g.Clone()
	for id, p := range pos {
		if n, ok := c.nodes[id]; ok {
			n.Position = p
		}
	}
	return c
}

// Positions returns the current position of every node.
func (g *Graph) Positions() map[string]geom.Point {
	out := make(map[string]geom.Point, len(g.nodes))
	for id, n := range g.nodes {
		out[id] = n.Position
	}
	return out
}

// Validate checks that every resolvable dependency chain is acyclic.
// Dangling deps are ignored. Returns a CYCLIC_GRAPH error naming the cycle.
//
// Cycle detection runs in O(N+E) time using depth-first search with
// white/gray/black coloring over the reverse-dependency index.
func (g *Graph) Validate() error {
	return g.Index().Validate()
}

// Validate runs cycle detection over the snapshot. See Graph.Validate.
func (ix *Index) Validate() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(ix.order))
	var stack []string
	var cycle []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		color[id] = gray
		stack = append(stack, id)
		for _, child := range ix.dependents[id] {
			switch color[child] {
			case white:
				if dfs(child) {
					return true
				}
			case gray:
				start := slices.Index(stack, child)
				cycle = append(slices.Clone(stack[start:]), child)
				return true
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = black
		return false
	}

	for _, id := range ix.order {
		if color[id] == white && dfs(id) {
			return CycleError(cycle)
		}
	}
	return nil
}

// CycleError builds the CYCLIC_GRAPH error for a dependency path that
// returns to its first element, listed from dependency to dependent.
func CycleError(path []string) error {
	return errors.New(errors.ErrCodeCyclicGraph, "dependency cycle: %s", strings.Join(path, " -> "))
}
