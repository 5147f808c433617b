package layout

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowchart/pkg/errors"
	"github.com/matzehuels/flowchart/pkg/flow"
	"github.com/matzehuels/flowchart/pkg/geom"
)

// Direction selects the main axis of a layout.
type Direction int

const (
	// Horizontal lays layers out left to right; the main axis is x.
	Horizontal Direction = iota
	// Vertical lays layers out top to bottom; the main axis is y.
	Vertical
)

// String returns "horizontal" or "vertical".
func (d Direction) String() string {
	switch d {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	}
	return "unknown"
}

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool { return d == Horizontal || d == Vertical }

// ParseDirection parses a direction name, case-insensitively.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "horizontal", "h":
		return Horizontal, nil
	case "vertical", "v":
		return Vertical, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidDirection, "invalid direction %q (must be horizontal or vertical)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidDirection, "invalid direction %d", int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(b []byte) error {
	v, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Spacing holds the gaps used by the arranger. All values must be >= 0.
type Spacing struct {
	AxisGap  float64 `json:"axis_gap" toml:"axis_gap" yaml:"axis_gap"`
	CrossGap float64 `json:"cross_gap" toml:"cross_gap" yaml:"cross_gap"`
	GroupGap float64 `json:"group_gap" toml:"group_gap" yaml:"group_gap"`
}

// DefaultSpacing is the spacing used when none is configured.
var DefaultSpacing = Spacing{AxisGap: 100, CrossGap: 20, GroupGap: 100}

// Validate returns INVALID_SPACING if any gap is negative or not finite.
func (s Spacing) Validate() error {
	if err := errors.ValidateGap("axis gap", s.AxisGap); err != nil {
		return err
	}
	if err := errors.ValidateGap("cross gap", s.CrossGap); err != nil {
		return err
	}
	return errors.ValidateGap("group gap", s.GroupGap)
}

// Positions maps node ids to top-left coordinates.
type Positions map[string]geom.Point

// Option configures a single Arrange call.
type Option func(*arranger)

// WithLogger traces placements at debug level.
func WithLogger(l *log.Logger) Option {
	return func(a *arranger) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithDanglingHandler registers fn to be called once per dangling dep.
func WithDanglingHandler(fn func(flow.Dangling)) Option {
	return func(a *arranger) { a.onDangling = fn }
}

// WithContext sets the context passed to observability hooks.
func WithContext(ctx context.Context) Option {
	return func(a *arranger) {
		if ctx != nil {
			a.ctx = ctx
		}
	}
}

// Arrange computes a position for every node in g.
//
// The returned map is new; g is not modified. Apply it with
// [flow.Graph.WithPositions]. A dependency cycle fails the whole pass with a
// CYCLIC_GRAPH error and no positions. Dangling deps are skipped and
// reported through the dangling handler and observability hooks.
//
// Each root's subtree takes its own band along the cross axis. Successive
// root bands are separated by AxisGap rather than CrossGap, so unrelated
// flows sit as far apart as consecutive levels. A node with several parents
// is placed once, in the slot of the last parent that reaches it; the other
// parents keep its slot reserved but empty.
func Arrange(g *flow.Graph, dir Direction, spacing Spacing, opts ...Option) (Positions, error) {
	if !dir.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidDirection, "invalid direction %d", int(dir))
	}
	if err := spacing.Validate(); err != nil {
		return nil, err
	}

	a := newArranger(g, dir, spacing)
	for _, opt := range opts {
		opt(a)
	}
	a.reportDangling()
	return a.run()
}

func newArranger(g *flow.Graph, dir Direction, spacing Spacing) *arranger {
	return &arranger{
		ctx:      context.Background(),
		g:        g,
		ix:       g.Index(),
		dir:      dir,
		spacing:  spacing,
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
		measured: make(map[string]subtree, g.Len()),
		owner:    make(map[string]string, g.Len()),
		onStack:  make(map[string]bool),
		pos:      make(Positions, g.Len()),
	}
}
