package layout

import (
	"context"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowchart/pkg/errors"
	"github.com/matzehuels/flowchart/pkg/flow"
	"github.com/matzehuels/flowchart/pkg/geom"
	"github.com/matzehuels/flowchart/pkg/observability"
)

// subtree is the measured extent of a node and everything below it.
type subtree struct {
	consumed     float64 // cross span reserved for the subtree
	block        float64 // cross span of the children alone, gaps included
	offset       float64 // node cross coordinate relative to the span start
	hasChildren  bool
	maxBranching int // largest dependent count among strict descendants
}

// arranger holds the state of one Arrange call.
type arranger struct {
	ctx        context.Context
	g          *flow.Graph
	ix         *flow.Index
	dir        Direction
	spacing    Spacing
	logger     *log.Logger
	onDangling func(flow.Dangling)

	measured map[string]subtree
	owner    map[string]string // parent that places each shared node
	onStack  map[string]bool
	stack    []string
	pos      Positions
}

func (a *arranger) reportDangling() {
	for _, d := range a.ix.Dangling() {
		a.logger.Warn("ignoring dangling dependency", "node", d.Node, "missing", d.Missing)
		observability.Layout().OnDanglingDependency(a.ctx, d.Node, d.Missing)
		if a.onDangling != nil {
			a.onDangling(d)
		}
	}
}

func (a *arranger) run() (Positions, error) {
	roots := a.ix.Roots()
	for _, root := range roots {
		if _, err := a.measure(root); err != nil {
			return nil, err
		}
	}

	// Every node behind a cycle has a resolvable dep, so none of them is a
	// root and the measure phase never reaches them.
	if len(a.measured) != a.g.Len() {
		if err := a.ix.Validate(); err != nil {
			return nil, err
		}
		return nil, errors.New(errors.ErrCodeInternal, "measured %d of %d nodes", len(a.measured), a.g.Len())
	}

	var origin float64
	for _, root := range roots {
		a.place(root, 0, origin)
		origin += a.measured[root].consumed + a.spacing.AxisGap
	}

	a.logger.Debug("arranged graph",
		"direction", a.dir,
		"nodes", len(a.pos),
		"roots", len(roots))
	return a.pos, nil
}

// measure computes the reserved cross span of id's subtree and id's offset
// within it, memoized. The last parent to reach a node becomes its owner.
func (a *arranger) measure(id string) (subtree, error) {
	if st, ok := a.measured[id]; ok {
		return st, nil
	}
	if a.onStack[id] {
		start := slices.Index(a.stack, id)
		return subtree{}, flow.CycleError(append(slices.Clone(a.stack[start:]), id))
	}
	a.onStack[id] = true
	a.stack = append(a.stack, id)

	kids := a.ix.Dependents(id)
	var st subtree
	for i, kid := range kids {
		a.owner[kid] = id
		child, err := a.measure(kid)
		if err != nil {
			return subtree{}, err
		}
		st.block += child.consumed
		if i < len(kids)-1 {
			st.block += a.gapAfter(child)
		}
		st.maxBranching = max(st.maxBranching, len(a.ix.Dependents(kid)), child.maxBranching)
	}
	st.hasChildren = len(kids) > 0
	st.consumed = max(a.crossSize(id), st.block)
	st.offset = a.offset(id, st)

	a.stack = a.stack[:len(a.stack)-1]
	delete(a.onStack, id)
	a.measured[id] = st
	return st, nil
}

// gapAfter returns the cross gap following a non-last sibling.
func (a *arranger) gapAfter(sibling subtree) float64 {
	if sibling.maxBranching > 1 {
		return a.spacing.CrossGap + a.spacing.GroupGap
	}
	return a.spacing.CrossGap
}

// offset returns id's cross coordinate relative to the start of its span.
// A lone child is centered under; several children are bracketed by their
// first and last member. Kids must already be measured.
func (a *arranger) offset(id string, st subtree) float64 {
	if !st.hasChildren {
		return 0
	}
	size := a.crossSize(id)
	kids := a.ix.Dependents(id)
	blockStart := (st.consumed - st.block) / 2

	var cross float64
	if len(kids) == 1 {
		cross = blockStart + a.measured[kids[0]].consumed/2 - size/2
	} else {
		starts := a.childStarts(kids, blockStart)
		first := starts[0] + a.measured[kids[0]].offset
		last := starts[len(kids)-1] + a.measured[kids[len(kids)-1]].offset
		cross = (first + last) / 2
	}
	return min(max(cross, 0), st.consumed-size)
}

// childStarts lays the kids' spans out from cursor in order.
func (a *arranger) childStarts(kids []string, cursor float64) []float64 {
	starts := make([]float64, len(kids))
	for i, kid := range kids {
		child := a.measured[kid]
		starts[i] = cursor
		cursor += child.consumed
		if i < len(kids)-1 {
			cursor += a.gapAfter(child)
		}
	}
	return starts
}

// place positions id at main with its subtree occupying
// [crossStart, crossStart+consumed). Every parent reserves a slot for each
// of its kids, but only the owner descends into a shared kid, so each node
// is placed exactly once.
func (a *arranger) place(id string, main, crossStart float64) {
	st := a.measured[id]
	cross := crossStart + st.offset
	a.pos[id] = a.point(main, cross)
	a.logger.Debug("placed node", "id", id, "main", main, "cross", cross)

	if !st.hasChildren {
		return
	}
	kids := a.ix.Dependents(id)
	childMain := main + a.mainSize(id) + a.spacing.AxisGap
	starts := a.childStarts(kids, crossStart+(st.consumed-st.block)/2)
	for i, kid := range kids {
		if a.owner[kid] == id {
			a.place(kid, childMain, starts[i])
		}
	}
}

func (a *arranger) box(id string) geom.Size {
	n, _ := a.g.Node(id)
	return n.Box
}

func (a *arranger) mainSize(id string) float64 {
	if a.dir == Vertical {
		return a.box(id).Height
	}
	return a.box(id).Width
}

func (a *arranger) crossSize(id string) float64 {
	if a.dir == Vertical {
		return a.box(id).Width
	}
	return a.box(id).Height
}

func (a *arranger) point(main, cross float64) geom.Point {
	if a.dir == Vertical {
		return geom.Point{X: cross, Y: main}
	}
	return geom.Point{X: main, Y: cross}
}
