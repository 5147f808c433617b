package geom

import (
	"fmt"
	"math"

	"github.com/matzehuels/flowchart/pkg/errors"
)

// Point is a 2D coordinate.
type Point struct {
	X float64 `json:"x" toml:"x" yaml:"x"`
	Y float64 `json:"y" toml:"y" yaml:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Scale returns p multiplied by f on both axes.
func (p Point) Scale(f float64) Point { return Point{p.X * f, p.Y * f} }

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Size is the extent of a bounding box.
type Size struct {
	Width  float64 `json:"width" toml:"width" yaml:"width"`
	Height float64 `json:"height" toml:"height" yaml:"height"`
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	Point
	Size
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point {
	return Point{r.X + r.Width/2, r.Y + r.Height/2}
}

// Anchor identifies one of the four connection points of a node.
type Anchor int

// Anchor indices in their canonical order.
const (
	Top Anchor = iota
	Right
	Bottom
	Left
)

// Anchors lists every anchor in index order.
var Anchors = [4]Anchor{Top, Right, Bottom, Left}

// Valid reports whether a is one of the four anchors.
func (a Anchor) Valid() bool { return a >= Top && a <= Left }

// Opposite returns the anchor on the facing side.
func (a Anchor) Opposite() Anchor { return (a + 2) % 4 }

// String returns the side name, or "anchor(N)" for invalid values.
func (a Anchor) String() string {
	switch a {
	case Top:
		return "top"
	case Right:
		return "right"
	case Bottom:
		return "bottom"
	case Left:
		return "left"
	}
	return fmt.Sprintf("anchor(%d)", int(a))
}

// Normal returns the outward unit vector of the side a sits on.
func (a Anchor) Normal() (Point, error) {
	switch a {
	case Top:
		return Point{0, -1}, nil
	case Right:
		return Point{1, 0}, nil
	case Bottom:
		return Point{0, 1}, nil
	case Left:
		return Point{-1, 0}, nil
	}
	return Point{}, UnknownAnchor(a)
}

// AnchorPoint returns the coordinate of anchor a on r: the midpoint of the
// corresponding edge.
func AnchorPoint(r Rect, a Anchor) (Point, error) {
	switch a {
	case Top:
		return Point{r.X + r.Width/2, r.Y}, nil
	case Right:
		return Point{r.Right(), r.Y + r.Height/2}, nil
	case Bottom:
		return Point{r.X + r.Width/2, r.Bottom()}, nil
	case Left:
		return Point{r.X, r.Y + r.Height/2}, nil
	}
	return Point{}, UnknownAnchor(a)
}

// AnchorPoints returns all four anchor coordinates of r in index order.
func AnchorPoints(r Rect) [4]Point {
	var pts [4]Point
	for i, a := range Anchors {
		pts[i], _ = AnchorPoint(r, a)
	}
	return pts
}

// UnknownAnchor returns the error reported for an anchor index outside [0,3].
func UnknownAnchor(a Anchor) error {
	return errors.New(errors.ErrCodeUnknownAnchor, "anchor index %d out of range [0,3]", int(a))
}
