package route

import (
	"slices"

	"github.com/matzehuels/flowchart/pkg/errors"
	"github.com/matzehuels/flowchart/pkg/flow"
	"github.com/matzehuels/flowchart/pkg/geom"
	"github.com/matzehuels/flowchart/pkg/layout"
	"github.com/matzehuels/flowchart/pkg/path"
)

const (
	// DefaultArrowInset is the arrow head size connectors are pulled back by.
	DefaultArrowInset = 10.0
	// DefaultStrokeWidth is the connector line width.
	DefaultStrokeWidth = 2.0
)

// Arrow is a routed connector from a dependency to its dependent.
type Arrow struct {
	Source       string        `json:"source"`        // Dependency id
	Target       string        `json:"target"`        // Dependent id, where the arrow head is drawn
	SourceAnchor geom.Anchor   `json:"source_anchor"` // Anchor on Source
	TargetAnchor geom.Anchor   `json:"target_anchor"` // Anchor on Target
	Path         path.Geometry `json:"path"`
}

// pair is an ordered cache key: the anchor on from facing to.
type pair struct{ from, to string }

// Router assigns anchors and computes connector paths.
type Router struct {
	direction   layout.Direction
	strategy    path.Strategy
	arrowInset  float64
	strokeWidth float64
	closest     map[pair]geom.Anchor
}

// Option configures a Router.
type Option func(*Router)

// WithStrategy sets the path strategy. A nil strategy is ignored.
func WithStrategy(s path.Strategy) Option {
	return func(r *Router) {
		if s != nil {
			r.strategy = s
		}
	}
}

// WithArrowInset sets the arrow head size passed to the path strategy.
func WithArrowInset(v float64) Option { return func(r *Router) { r.arrowInset = v } }

// WithStrokeWidth sets the line width passed to the path strategy.
func WithStrokeWidth(v float64) Option { return func(r *Router) { r.strokeWidth = v } }

// New creates a router for layouts in the given direction.
func New(direction layout.Direction, opts ...Option) *Router {
	r := &Router{
		direction:   direction,
		strategy:    path.Default,
		arrowInset:  DefaultArrowInset,
		strokeWidth: DefaultStrokeWidth,
		closest:     make(map[pair]geom.Anchor),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Strategy returns the active path strategy.
func (r *Router) Strategy() path.Strategy { return r.strategy }

// SetStrategy swaps the path strategy. Cached anchors stay valid.
func (r *Router) SetStrategy(s path.Strategy) {
	if s != nil {
		r.strategy = s
	}
}

// Reset drops every cached anchor.
func (r *Router) Reset() { clear(r.closest) }

// Forget drops cached anchors for every pair involving id. Call it after
// moving a single node; pairs between other nodes stay valid.
func (r *Router) Forget(id string) {
	for k := range r.closest {
		if k.from == id || k.to == id {
			delete(r.closest, k)
		}
	}
}

// ClosestAnchors returns the anchor on a and the anchor on b that connect
// the pair, using the directional heuristic.
func (r *Router) ClosestAnchors(a, b flow.Node) (geom.Anchor, geom.Anchor) {
	parent, child := a, b
	swapped := false
	if !child.DependsOn(parent.ID) {
		parent, child = child, parent
		swapped = true
	}

	var onParent, onChild geom.Anchor
	switch r.side(parent, child) {
	case geom.Left:
		onParent, onChild = geom.Left, geom.Right
	case geom.Bottom:
		onParent, onChild = geom.Bottom, geom.Top
	case geom.Top:
		onParent, onChild = geom.Top, geom.Bottom
	default:
		onParent, onChild = geom.Right, geom.Left
	}

	if swapped {
		return onChild, onParent
	}
	return onParent, onChild
}

// side classifies where child sits relative to parent.
func (r *Router) side(parent, child flow.Node) geom.Anchor {
	x, y := child.Position.X, child.Position.Y
	w, h := child.Box.Width, child.Box.Height
	px, py := parent.Position.X, parent.Position.Y

	horizontal := func() (geom.Anchor, bool) {
		switch {
		case x+w < px:
			return geom.Left, true
		case x-w > px:
			return geom.Right, true
		}
		return 0, false
	}
	vertical := func() (geom.Anchor, bool) {
		switch {
		case y+h < py:
			return geom.Top, true
		case y-h > py:
			return geom.Bottom, true
		}
		return 0, false
	}

	first, second := horizontal, vertical
	if r.direction == layout.Vertical {
		first, second = vertical, horizontal
	}
	if s, ok := first(); ok {
		return s
	}
	if s, ok := second(); ok {
		return s
	}
	return geom.Right
}

// Nearest returns the pair of anchors, one on a and one on b, with the
// smallest Euclidean distance. Ties keep the earliest pair in anchor order.
func (r *Router) Nearest(a, b flow.Node) (geom.Anchor, geom.Anchor) {
	pa, pb := geom.AnchorPoints(a.Rect()), geom.AnchorPoints(b.Rect())
	bestA, bestB := geom.Top, geom.Top
	best := -1.0
	for i, p := range pa {
		for j, q := range pb {
			if d := p.Dist(q); best < 0 || d < best {
				best = d
				bestA, bestB = geom.Anchors[i], geom.Anchors[j]
			}
		}
	}
	return bestA, bestB
}

// Closest returns the anchor on item facing dep and the anchor on dep facing
// item, memoized. On a miss the cache is filled for every neighbour of item.
// Returns a DANGLING_DEPENDENCY error when either id is not in g.
func (r *Router) Closest(g *flow.Graph, itemID, depID string) (geom.Anchor, geom.Anchor, error) {
	return r.closestIn(g, g.Index(), itemID, depID)
}

func (r *Router) closestIn(g *flow.Graph, ix *flow.Index, itemID, depID string) (geom.Anchor, geom.Anchor, error) {
	item, ok := g.Node(itemID)
	if !ok {
		return 0, 0, errors.New(errors.ErrCodeDanglingDependency, "unknown node %q", itemID)
	}
	if !g.Has(depID) {
		return 0, 0, errors.New(errors.ErrCodeDanglingDependency, "node %q depends on unknown node %q", itemID, depID)
	}

	for _, id := range ix.Neighbors(itemID) {
		r.fill(g, item, id)
	}
	// A pair that is not an edge is not a neighbour; compute it directly.
	r.fill(g, item, depID)

	return r.closest[pair{itemID, depID}], r.closest[pair{depID, itemID}], nil
}

func (r *Router) fill(g *flow.Graph, item flow.Node, otherID string) {
	if _, ok := r.closest[pair{item.ID, otherID}]; ok {
		return
	}
	other, ok := g.Node(otherID)
	if !ok {
		return
	}
	onItem, onOther := r.ClosestAnchors(item, other)
	r.closest[pair{item.ID, otherID}] = onItem
	r.closest[pair{otherID, item.ID}] = onOther
}

// Route computes one arrow per resolvable dependency edge, in graph order,
// using the positions currently stored in g.
func (r *Router) Route(g *flow.Graph) ([]Arrow, error) {
	ix := g.Index()
	edges := ix.Edges()
	arrows := make([]Arrow, 0, len(edges))
	for _, e := range edges {
		onTarget, onSource, err := r.closestIn(g, ix, e.To, e.From)
		if err != nil {
			return nil, err
		}
		src, _ := g.Node(e.From)
		dst, _ := g.Node(e.To)

		start, err := geom.AnchorPoint(src.Rect(), onSource)
		if err != nil {
			return nil, err
		}
		end, err := geom.AnchorPoint(dst.Rect(), onTarget)
		if err != nil {
			return nil, err
		}

		d, err := r.strategy.Compute(
			path.Endpoint{Point: start, Anchor: onSource},
			path.Endpoint{Point: end, Anchor: onTarget},
			r.arrowInset, r.strokeWidth)
		if err != nil {
			return nil, err
		}
		arrows = append(arrows, Arrow{
			Source:       e.From,
			Target:       e.To,
			SourceAnchor: onSource,
			TargetAnchor: onTarget,
			Path:         d,
		})
	}
	return arrows, nil
}

// VisibleAnchors returns, per node, the sorted anchors used by at least one
// cached pair. Renderers hide the remaining anchors.
func (r *Router) VisibleAnchors() map[string][]geom.Anchor {
	out := make(map[string][]geom.Anchor)
	for k, a := range r.closest {
		if !slices.Contains(out[k.from], a) {
			out[k.from] = append(out[k.from], a)
		}
	}
	for id := range out {
		slices.Sort(out[id])
	}
	return out
}
