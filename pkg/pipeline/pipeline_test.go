package pipeline

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/flowchart/pkg/cache"
	"github.com/matzehuels/flowchart/pkg/errors"
	"github.com/matzehuels/flowchart/pkg/flow"
	"github.com/matzehuels/flowchart/pkg/geom"
	"github.com/matzehuels/flowchart/pkg/layout"
	"github.com/matzehuels/flowchart/pkg/observability"
)

func build(t *testing.T, rows ...[]string) *flow.Graph {
	t.Helper()
	g := flow.New()
	for _, s := range rows {
		n := flow.Node{ID: s[0], Deps: s[1:], Box: geom.Size{Width: 200, Height: 200}}
		if err := g.AddNode(n); err != nil {
			t.Fatalf("AddNode(%s): %v", s[0], err)
		}
	}
	return g
}

func fixture(t *testing.T) *flow.Graph {
	return build(t,
		[]string{"1"},
		[]string{"2", "1"},
		[]string{"3", "2"},
		[]string{"4", "2"},
		[]string{"5", "1"},
		[]string{"6", "5"},
		[]string{"7", "5"},
		[]string{"8", "6", "7"},
	)
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{Direction: layout.Vertical}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if opts.Spacing == nil || *opts.Spacing != layout.DefaultSpacing {
		t.Errorf("Spacing = %+v, want defaults", opts.Spacing)
	}
	if opts.Strategy != "blend" {
		t.Errorf("Strategy = %q, want blend", opts.Strategy)
	}
	if *opts.ArrowInset != 10 || *opts.StrokeWidth != 2 {
		t.Errorf("inset/stroke = %v/%v, want 10/2", *opts.ArrowInset, *opts.StrokeWidth)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}

	// Idempotent.
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("second call: %v", err)
	}
}

func TestValidateAndSetDefaultsErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"direction", Options{Direction: layout.Direction(7)}, errors.ErrCodeInvalidDirection},
		{"strategy", Options{Strategy: "zigzag"}, errors.ErrCodeInvalidStrategy},
		{"spacing", Options{Spacing: &layout.Spacing{AxisGap: -1}}, errors.ErrCodeInvalidSpacing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestExplicitZeroOptions(t *testing.T) {
	var opts Options
	body := `{"direction":"vertical","spacing":{"axis_gap":0,"cross_gap":0,"group_gap":0},"arrow_inset":0,"stroke_width":0}`
	if err := json.Unmarshal([]byte(body), &opts); err != nil {
		t.Fatal(err)
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if *opts.Spacing != (layout.Spacing{}) {
		t.Errorf("Spacing = %+v, want zero gaps", *opts.Spacing)
	}
	if *opts.ArrowInset != 0 || *opts.StrokeWidth != 0 {
		t.Errorf("inset/stroke = %v/%v, want 0/0", *opts.ArrowInset, *opts.StrokeWidth)
	}

	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), build(t, []string{"a"}, []string{"b", "a"}), opts)
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Positions["b"]; got != (geom.Point{X: 0, Y: 200}) {
		t.Errorf("b at %+v, want directly below a at (0,200)", got)
	}
}

func TestExecute(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	g := fixture(t)
	res, err := r.Execute(context.Background(), g, Options{Direction: layout.Vertical})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if got := res.Positions["1"]; got != (geom.Point{X: 330, Y: 0}) {
		t.Errorf("node 1 at %+v, want (330,0)", got)
	}
	if got := res.Positions["8"]; got != (geom.Point{X: 660, Y: 900}) {
		t.Errorf("node 8 at %+v, want (660,900)", got)
	}
	if n, _ := res.Graph.Node("8"); n.Position != res.Positions["8"] {
		t.Errorf("Result.Graph not positioned: %+v", n.Position)
	}
	if n, _ := g.Node("8"); n.Position != (geom.Point{}) {
		t.Errorf("input graph modified: %+v", n.Position)
	}

	if len(res.Arrows) != 8 {
		t.Fatalf("got %d arrows, want 8", len(res.Arrows))
	}
	first := res.Arrows[0]
	if first.Source != "1" || first.Target != "2" {
		t.Errorf("first arrow %s -> %s, want 1 -> 2", first.Source, first.Target)
	}
	if first.SourceAnchor != geom.Bottom || first.TargetAnchor != geom.Top {
		t.Errorf("first arrow anchors %v/%v, want bottom/top", first.SourceAnchor, first.TargetAnchor)
	}
	if res.Stats.NodeCount != 8 || res.Stats.EdgeCount != 8 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if res.CacheHit {
		t.Error("NullCache run reported a cache hit")
	}
	if len(res.Visible["1"]) == 0 {
		t.Error("node 1 has no visible anchors")
	}
}

func TestExecuteCaches(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	r := NewRunner(fc, nil, nil)
	ctx := context.Background()
	opts := Options{Direction: layout.Vertical}

	first, err := r.Execute(ctx, fixture(t), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	second, err := r.Execute(ctx, fixture(t), opts)
	if err != nil {
		t.Fatalf("Execute (cached): %v", err)
	}
	if !second.CacheHit {
		t.Fatal("second run should hit the cache")
	}
	for id, p := range first.Positions {
		if second.Positions[id] != p {
			t.Errorf("node %s: cached %+v, computed %+v", id, second.Positions[id], p)
		}
	}
	if len(second.Arrows) != len(first.Arrows) {
		t.Fatalf("cached %d arrows, computed %d", len(second.Arrows), len(first.Arrows))
	}
	for i := range first.Arrows {
		if second.Arrows[i].Path.String() != first.Arrows[i].Path.String() {
			t.Errorf("arrow %d: cached %q, computed %q", i, second.Arrows[i].Path, first.Arrows[i].Path)
		}
	}
	if n, _ := second.Graph.Node("8"); n.Position != first.Positions["8"] {
		t.Errorf("cached Result.Graph not positioned: %+v", n.Position)
	}

	// Different options miss.
	third, err := r.Execute(ctx, fixture(t), Options{Direction: layout.Horizontal})
	if err != nil {
		t.Fatalf("Execute (horizontal): %v", err)
	}
	if third.CacheHit {
		t.Error("horizontal run should not reuse the vertical entry")
	}

	// Refresh skips reads.
	opts.Refresh = true
	fourth, err := r.Execute(ctx, fixture(t), opts)
	if err != nil {
		t.Fatalf("Execute (refresh): %v", err)
	}
	if fourth.CacheHit {
		t.Error("refresh run should not report a cache hit")
	}
}

func TestExecuteCycle(t *testing.T) {
	g := build(t, []string{"a", "b"}, []string{"b", "a"}, []string{"r"})
	_, err := NewRunner(nil, nil, nil).Execute(context.Background(), g, Options{})
	if !errors.Is(err, errors.ErrCodeCyclicGraph) {
		t.Fatalf("error = %v, want CYCLIC_GRAPH", err)
	}
}

func TestExecuteDangling(t *testing.T) {
	g := build(t, []string{"a"}, []string{"b", "a", "ghost"})
	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), g, Options{Direction: layout.Vertical})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(res.Dangling) != 1 || res.Dangling[0] != (flow.Dangling{Node: "b", Missing: "ghost"}) {
		t.Errorf("Dangling = %+v", res.Dangling)
	}
	if len(res.Arrows) != 1 {
		t.Errorf("got %d arrows, want 1", len(res.Arrows))
	}
}

func TestExecuteNilGraph(t *testing.T) {
	_, err := NewRunner(nil, nil, nil).Execute(context.Background(), nil, Options{})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestRouteKeepsPositions(t *testing.T) {
	g := build(t, []string{"a"}, []string{"b", "a"})
	_ = g.SetPosition("a", geom.Point{X: 0, Y: 0})
	_ = g.SetPosition("b", geom.Point{X: 500, Y: 0})

	res, err := NewRunner(nil, nil, nil).Route(context.Background(), g, Options{Direction: layout.Vertical})
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if res.Positions["b"] != (geom.Point{X: 500, Y: 0}) {
		t.Errorf("b moved to %+v", res.Positions["b"])
	}
	if len(res.Arrows) != 1 {
		t.Fatalf("got %d arrows, want 1", len(res.Arrows))
	}
	// b sits to the right of a on the same row.
	a := res.Arrows[0]
	if a.SourceAnchor != geom.Right || a.TargetAnchor != geom.Left {
		t.Errorf("anchors %v/%v, want right/left", a.SourceAnchor, a.TargetAnchor)
	}
	if res.Stats.ArrangeTime != 0 {
		t.Errorf("Route should not arrange, ArrangeTime = %v", res.Stats.ArrangeTime)
	}
}

type recordingHooks struct {
	observability.NoopLayoutHooks
	mu      sync.Mutex
	started []int
	routed  []int
}

func (h *recordingHooks) OnArrangeStart(_ context.Context, _ string, n int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.started = append(h.started, n)
}

func (h *recordingHooks) OnRouteComplete(_ context.Context, _ string, n int, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routed = append(h.routed, n)
}

func TestExecuteHooks(t *testing.T) {
	h := &recordingHooks{}
	observability.SetLayoutHooks(h)
	defer observability.Reset()

	if _, err := NewRunner(nil, nil, nil).Execute(context.Background(), fixture(t), Options{}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(h.started) != 1 || h.started[0] != 8 {
		t.Errorf("OnArrangeStart calls = %v, want [8]", h.started)
	}
	if len(h.routed) != 1 || h.routed[0] != 8 {
		t.Errorf("OnRouteComplete calls = %v, want [8]", h.routed)
	}
}
