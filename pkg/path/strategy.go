package path

import (
	"math"
	"sort"

	"github.com/matzehuels/flowchart/pkg/errors"
	"github.com/matzehuels/flowchart/pkg/geom"
)

// Endpoint is a connector end: a coordinate and the anchor it leaves from.
type Endpoint struct {
	Point  geom.Point
	Anchor geom.Anchor
}

// Strategy computes connector geometry between two endpoints.
//
// inset is the arrow size: the curve is pulled back from each anchor by that
// much along the anchor's normal. strokeWidth is the connector's line width.
type Strategy interface {
	Name() string
	Compute(start, end Endpoint, inset, strokeWidth float64) (Geometry, error)
}

const (
	// DefaultControlDistance is how far blend control points extend from an anchor.
	DefaultControlDistance = 50.0
	// DefaultTolerance is the alignment tolerance for straight segments.
	DefaultTolerance = 5.0
)

// Default is the strategy used when none is configured.
var Default Strategy = BlendCorners{ControlDistance: DefaultControlDistance}

// =============================================================================
// Blend corners
// =============================================================================

// BlendCorners draws a cubic curve that leaves start along its anchor normal
// and enters end along its anchor normal.
type BlendCorners struct {
	ControlDistance float64
}

// Name implements Strategy.
func (BlendCorners) Name() string { return "blend" }

// Compute implements Strategy. Returns UNKNOWN_ANCHOR_INDEX for an anchor
// outside [0,3].
func (b BlendCorners) Compute(start, end Endpoint, inset, strokeWidth float64) (Geometry, error) {
	sn, err := start.Anchor.Normal()
	if err != nil {
		return nil, err
	}
	en, err := end.Anchor.Normal()
	if err != nil {
		return nil, err
	}

	half := geom.Point{X: -strokeWidth / 2}
	s := start.Point.Add(sn.Scale(inset)).Add(half)
	e := end.Point.Add(en.Scale(inset)).Add(half)

	return Geometry{
		Move(start.Point),
		Curve(s.Add(sn.Scale(b.ControlDistance)), e.Add(en.Scale(b.ControlDistance)), e),
	}, nil
}

// =============================================================================
// Straight line
// =============================================================================

// StraightLine draws a single segment when the endpoints are aligned on
// either axis within Tolerance, and defers to Fallback otherwise.
// A nil Fallback uses Default.
type StraightLine struct {
	Tolerance float64
	Fallback  Strategy
}

// Name implements Strategy.
func (StraightLine) Name() string { return "straight" }

// Compute implements Strategy.
func (s StraightLine) Compute(start, end Endpoint, inset, strokeWidth float64) (Geometry, error) {
	if aligned(start.Point, end.Point, s.Tolerance) {
		return Geometry{Move(start.Point), Line(end.Point)}, nil
	}
	fallback := s.Fallback
	if fallback == nil {
		fallback = Default
	}
	return fallback.Compute(start, end, inset, strokeWidth)
}

// =============================================================================
// Orthogonal
// =============================================================================

// Orthogonal draws axis-parallel segments: across to the x midpoint, along
// to the end's y, then across to the end.
type Orthogonal struct {
	Tolerance float64
}

// Name implements Strategy.
func (Orthogonal) Name() string { return "orthogonal" }

// Compute implements Strategy.
func (o Orthogonal) Compute(start, end Endpoint, _, _ float64) (Geometry, error) {
	s, e := start.Point, end.Point
	if aligned(s, e, o.Tolerance) {
		return Geometry{Move(s), Line(e)}, nil
	}
	midX := (s.X + e.X) / 2
	return Geometry{
		Move(s),
		Line(geom.Point{X: midX, Y: s.Y}),
		Line(geom.Point{X: midX, Y: e.Y}),
		Line(e),
	}, nil
}

// =============================================================================
// Distance bezier
// =============================================================================

// DistanceBezier draws a cubic curve whose control points sit halfway along
// x and are pushed toward the other endpoint by a twelfth of the distance.
// Endpoints within Tolerance on y are joined by a straight line.
type DistanceBezier struct {
	Tolerance float64
}

// Name implements Strategy.
func (DistanceBezier) Name() string { return "bezier" }

// Compute implements Strategy.
func (d DistanceBezier) Compute(start, end Endpoint, _, _ float64) (Geometry, error) {
	s, e := start.Point, end.Point
	dx, dy := e.X-s.X, e.Y-s.Y
	if math.Abs(dy) <= d.Tolerance {
		return Geometry{Move(s), Line(e)}, nil
	}

	offset := math.Sqrt(dx*dx+dy*dy) / 12
	cp1 := geom.Point{X: s.X + dx/2, Y: s.Y - offset}
	cp2 := geom.Point{X: e.X - dx/2, Y: e.Y + offset}
	if e.Y > s.Y {
		cp1.Y = s.Y + offset
		cp2.Y = e.Y - offset
	}
	return Geometry{Move(s), Curve(cp1, cp2, e)}, nil
}

func aligned(a, b geom.Point, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol || math.Abs(a.Y-b.Y) <= tol
}

// =============================================================================
// Registry
// =============================================================================

var registry = map[string]func() Strategy{
	"blend":      func() Strategy { return BlendCorners{ControlDistance: DefaultControlDistance} },
	"straight":   func() Strategy { return StraightLine{Tolerance: DefaultTolerance} },
	"orthogonal": func() Strategy { return Orthogonal{Tolerance: DefaultTolerance} },
	"bezier":     func() Strategy { return DistanceBezier{Tolerance: DefaultTolerance} },
}

// ByName returns the named strategy with default parameters.
// An empty name selects Default.
func ByName(name string) (Strategy, error) {
	if name == "" {
		return Default, nil
	}
	ctor, ok := registry[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidStrategy, "unknown path strategy %q (must be one of: %v)", name, Names())
	}
	return ctor(), nil
}

// Names returns the registered strategy names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
