package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowchart/pkg/cache"
	"github.com/matzehuels/flowchart/pkg/errors"
	"github.com/matzehuels/flowchart/pkg/flow"
	"github.com/matzehuels/flowchart/pkg/geom"
	"github.com/matzehuels/flowchart/pkg/layout"
	"github.com/matzehuels/flowchart/pkg/observability"
	"github.com/matzehuels/flowchart/pkg/route"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger. Every call builds
// its own router, so multiple goroutines can share one Runner.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides cache.TTLLayout for full results when > 0.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute arranges g, then routes every edge over the new positions.
// g itself is never modified; the positioned copy is Result.Graph.
func (r *Runner) Execute(ctx context.Context, g *flow.Graph, opts Options) (*Result, error) {
	if g == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "graph is nil")
	}
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	key, keyErr := r.layoutKey(g, opts)
	if keyErr != nil {
		opts.Logger.Debug("skipping cache", "error", keyErr)
	}
	if keyErr == nil && !opts.Refresh {
		if res, ok := r.load(ctx, g, key, cache.KeyTypeLayout); ok {
			opts.Logger.Debug("layout cache hit", "nodes", res.Stats.NodeCount)
			return res, nil
		}
	}

	res := &Result{}
	ix := g.Index()
	res.Stats.NodeCount = g.Len()
	res.Stats.EdgeCount = len(ix.Edges())
	res.Dangling = ix.Dangling()
	res.Stats.DanglingDeps = len(res.Dangling)

	hooks := observability.Layout()
	hooks.OnArrangeStart(ctx, opts.Direction.String(), g.Len())
	start := time.Now()
	pos, err := layout.Arrange(g, opts.Direction, *opts.Spacing,
		layout.WithLogger(opts.Logger),
		layout.WithContext(ctx))
	res.Stats.ArrangeTime = time.Since(start)
	hooks.OnArrangeComplete(ctx, opts.Direction.String(), res.Stats.ArrangeTime, err)
	if err != nil {
		return nil, fmt.Errorf("arrange: %w", err)
	}
	res.Positions = pos
	res.Graph = g.WithPositions(pos)

	r.Logger.Info("arranged nodes",
		"nodes", g.Len(),
		"direction", opts.Direction,
		"duration", res.Stats.ArrangeTime)

	if err := r.route(ctx, res, opts); err != nil {
		return nil, err
	}

	if keyErr == nil {
		r.store(ctx, key, res, cache.KeyTypeLayout, r.layoutTTL())
	}
	return res, nil
}

// Route recomputes anchors and arrows for the positions already stored in g.
// Direction, strategy, inset and stroke width are honoured; spacing is not
// used.
func (r *Runner) Route(ctx context.Context, g *flow.Graph, opts Options) (*Result, error) {
	if g == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "graph is nil")
	}
	r.applyLogger(&opts)
	if err := opts.ValidateForRoute(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	key, keyErr := r.routeKey(g, opts)
	if keyErr == nil && !opts.Refresh {
		if res, ok := r.load(ctx, g, key, cache.KeyTypeRoute); ok {
			return res, nil
		}
	}

	ix := g.Index()
	res := &Result{
		Graph:     g.Clone(),
		Positions: g.Positions(),
		Dangling:  ix.Dangling(),
	}
	res.Stats.NodeCount = g.Len()
	res.Stats.EdgeCount = len(ix.Edges())
	res.Stats.DanglingDeps = len(res.Dangling)

	if err := r.route(ctx, res, opts); err != nil {
		return nil, err
	}
	if keyErr == nil {
		r.store(ctx, key, res, cache.KeyTypeRoute, cache.TTLRoute)
	}
	return res, nil
}

func (r *Runner) route(ctx context.Context, res *Result, opts Options) error {
	router := opts.NewRouter()
	start := time.Now()
	arrows, err := router.Route(res.Graph)
	res.Stats.RouteTime = time.Since(start)
	observability.Layout().OnRouteComplete(ctx, opts.Strategy, len(arrows), res.Stats.RouteTime, err)
	if err != nil {
		return fmt.Errorf("route: %w", err)
	}
	res.Arrows = arrows
	res.Visible = router.VisibleAnchors()

	r.Logger.Info("routed connectors",
		"arrows", len(arrows),
		"strategy", opts.Strategy,
		"duration", res.Stats.RouteTime)
	return nil
}

func (r *Runner) layoutTTL() time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return cache.TTLLayout
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// keyNode is the canonical form of a node used for cache keys.
type keyNode struct {
	ID       string      `json:"id"`
	Deps     []string    `json:"deps"`
	Box      geom.Size   `json:"box"`
	Position *geom.Point `json:"pos,omitempty"`
}

func canonical(g *flow.Graph, withPositions bool) []keyNode {
	nodes := g.Nodes()
	out := make([]keyNode, len(nodes))
	for i, n := range nodes {
		out[i] = keyNode{ID: n.ID, Deps: n.Deps, Box: n.Box}
		if withPositions {
			p := n.Position
			out[i].Position = &p
		}
	}
	return out
}

func (r *Runner) layoutKey(g *flow.Graph, opts Options) (string, error) {
	h, err := cache.HashJSON(canonical(g, false))
	if err != nil {
		return "", err
	}
	return r.Keyer.LayoutKey(h, opts.LayoutKeyOpts()), nil
}

func (r *Runner) routeKey(g *flow.Graph, opts Options) (string, error) {
	h, err := cache.HashJSON(canonical(g, true))
	if err != nil {
		return "", err
	}
	return r.Keyer.RouteKey(h, opts.RouteKeyOpts()), nil
}

// cached is the encoded form of a Result stored in the cache.
type cached struct {
	Positions layout.Positions         `json:"positions"`
	Arrows    []route.Arrow            `json:"arrows"`
	Visible   map[string][]geom.Anchor `json:"visible"`
	Dangling  []flow.Dangling          `json:"dangling,omitempty"`
	Stats     Stats                    `json:"stats"`
}

func (r *Runner) load(ctx context.Context, g *flow.Graph, key, keyType string) (*Result, bool) {
	hooks := observability.Cache()
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "error", err)
	}
	if err != nil || !hit {
		hooks.OnCacheMiss(ctx, keyType)
		return nil, false
	}
	var c cached
	if err := json.Unmarshal(data, &c); err != nil {
		// Treat undecodable entries as a miss and recompute.
		hooks.OnCacheMiss(ctx, keyType)
		return nil, false
	}
	hooks.OnCacheHit(ctx, keyType)
	return &Result{
		Graph:     g.WithPositions(c.Positions),
		Positions: c.Positions,
		Arrows:    c.Arrows,
		Visible:   c.Visible,
		Dangling:  c.Dangling,
		Stats:     c.Stats,
		CacheHit:  true,
	}, true
}

func (r *Runner) store(ctx context.Context, key string, res *Result, keyType string, ttl time.Duration) {
	data, err := json.Marshal(cached{
		Positions: res.Positions,
		Arrows:    res.Arrows,
		Visible:   res.Visible,
		Dangling:  res.Dangling,
		Stats:     res.Stats,
	})
	if err != nil {
		r.Logger.Warn("encode result for cache", "error", err)
		return
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}
