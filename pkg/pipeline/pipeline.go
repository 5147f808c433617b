// Package pipeline runs the arrange → route pass shared by the CLI and the
// server.
//
// Centralizing the pass keeps caching, logging and observability identical
// across entry points.
//
// # Stages
//
//  1. Arrange: compute a position for every node ([layout.Arrange])
//  2. Route: pick anchors and connector paths for every edge ([route.Router])
//
// [Runner.Execute] runs both stages. [Runner.Route] runs only the second,
// keeping the positions already stored in the graph; hosts call it while the
// user drags nodes around.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	res, err := runner.Execute(ctx, g, pipeline.Options{Direction: layout.Vertical})
//	if err != nil {
//	    return err
//	}
//	for _, a := range res.Arrows {
//	    fmt.Println(a.Source, "->", a.Target, a.Path)
//	}
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowchart/pkg/cache"
	"github.com/matzehuels/flowchart/pkg/errors"
	"github.com/matzehuels/flowchart/pkg/flow"
	"github.com/matzehuels/flowchart/pkg/geom"
	"github.com/matzehuels/flowchart/pkg/layout"
	"github.com/matzehuels/flowchart/pkg/path"
	"github.com/matzehuels/flowchart/pkg/route"
)

// Options configures a pipeline run.
// This struct supports JSON serialization for API requests.
//
// Spacing, ArrowInset and StrokeWidth are pointers so an explicit zero is
// kept; only nil takes the default.
type Options struct {
	Direction   layout.Direction `json:"direction"`
	Spacing     *layout.Spacing  `json:"spacing,omitempty"`
	Strategy    string           `json:"strategy,omitempty"`
	ArrowInset  *float64         `json:"arrow_inset,omitempty"`
	StrokeWidth *float64         `json:"stroke_width,omitempty"`
	Refresh     bool             `json:"refresh,omitempty"` // Skip cache reads

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	strategy  path.Strategy
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is a copy of the input carrying the final positions.
	Graph *flow.Graph

	// Positions maps every node id to its top-left corner.
	Positions layout.Positions

	// Arrows holds one connector per resolvable edge, in graph order.
	Arrows []route.Arrow

	// Visible lists the anchors each node uses; renderers hide the rest.
	Visible map[string][]geom.Anchor

	// Dangling lists deps naming unknown nodes. They are skipped, not fatal.
	Dangling []flow.Dangling

	// Stats contains timing and size information.
	Stats Stats

	// CacheHit is true when the result came from the cache.
	CacheHit bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount    int
	EdgeCount    int
	ArrangeTime  time.Duration
	RouteTime    time.Duration
	DanglingDeps int
}

// ValidateAndSetDefaults checks options and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForRoute(); err != nil {
		return err
	}
	if o.Spacing == nil {
		s := layout.DefaultSpacing
		o.Spacing = &s
	}
	if err := o.Spacing.Validate(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForRoute checks the options used by the route stage only.
func (o *Options) ValidateForRoute() error {
	if !o.Direction.Valid() {
		return errors.New(errors.ErrCodeInvalidDirection, "invalid direction %d", int(o.Direction))
	}
	s, err := path.ByName(o.Strategy)
	if err != nil {
		return err
	}
	o.strategy = s
	o.Strategy = s.Name()
	if o.ArrowInset == nil {
		o.ArrowInset = Float(route.DefaultArrowInset)
	}
	if o.StrokeWidth == nil {
		o.StrokeWidth = Float(route.DefaultStrokeWidth)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// NewRouter builds a router configured by the options.
// Call ValidateForRoute first.
func (o *Options) NewRouter() *route.Router {
	return route.New(o.Direction,
		route.WithStrategy(o.strategy),
		route.WithArrowInset(*o.ArrowInset),
		route.WithStrokeWidth(*o.StrokeWidth))
}

// RouteKeyOpts returns cache key options for the route stage.
func (o *Options) RouteKeyOpts() cache.RouteKeyOpts {
	return cache.RouteKeyOpts{
		Direction:   o.Direction.String(),
		Strategy:    o.Strategy,
		ArrowInset:  *o.ArrowInset,
		StrokeWidth: *o.StrokeWidth,
	}
}

// LayoutKeyOpts returns cache key options for a full run.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Direction: o.Direction.String(),
		AxisGap:   o.Spacing.AxisGap, // set by ValidateAndSetDefaults
		CrossGap:  o.Spacing.CrossGap,
		GroupGap:  o.Spacing.GroupGap,
		Route:     o.RouteKeyOpts(),
	}
}

// Float returns a pointer to v, for filling the optional fields of Options.
func Float(v float64) *float64 { return &v }
