package svg

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/matzehuels/flowchart/pkg/flow"
	"github.com/matzehuels/flowchart/pkg/geom"
	"github.com/matzehuels/flowchart/pkg/layout"
	"github.com/matzehuels/flowchart/pkg/route"
)

func positioned(t *testing.T) *flow.Graph {
	t.Helper()
	g, err := flow.FromNodes([]flow.Node{
		{ID: "a", Position: geom.Point{X: 0, Y: 0}, Box: geom.Size{Width: 100, Height: 50}},
		{ID: "b", Deps: []string{"a"}, Position: geom.Point{X: 0, Y: 150}, Box: geom.Size{Width: 100, Height: 50}},
	})
	if err != nil {
		t.Fatalf("FromNodes: %v", err)
	}
	return g
}

func TestRenderNodesOnly(t *testing.T) {
	out := string(Render(positioned(t), nil))

	if !strings.Contains(out, `viewBox="-20 -20 140 240"`) {
		t.Errorf("unexpected viewBox:\n%s", out)
	}
	if got := strings.Count(out, `<rect class="node"`); got != 2 {
		t.Errorf("got %d nodes, want 2", got)
	}
	if strings.Contains(out, `class="arrow"`) {
		t.Error("no arrows expected")
	}
	if err := xml.Unmarshal([]byte(out), new(struct{})); err != nil {
		t.Errorf("output is not well-formed XML: %v", err)
	}
}

func TestRenderArrowsAndAnchors(t *testing.T) {
	g := positioned(t)
	arrows, err := route.New(layout.Vertical).Route(g)
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	out := string(Render(g, arrows, WithAnchors(), WithArrowSize(12), WithPadding(0)))

	if got := strings.Count(out, `<path class="arrow"`); got != 1 {
		t.Errorf("got %d arrows, want 1", got)
	}
	if !strings.Contains(out, `markerWidth="12"`) {
		t.Error("arrow size not applied")
	}
	if !strings.Contains(out, `data-node="a" data-anchor="bottom"`) {
		t.Errorf("missing bottom anchor on a:\n%s", out)
	}
	if !strings.Contains(out, `data-node="b" data-anchor="top"`) {
		t.Errorf("missing top anchor on b:\n%s", out)
	}
	if got := strings.Count(out, `class="anchor"`); got != 2 {
		t.Errorf("got %d anchors, want only the 2 used ones", got)
	}
}

func TestRenderEscapesIDs(t *testing.T) {
	g, err := flow.FromNodes([]flow.Node{{ID: "a<b>&c", Box: geom.Size{Width: 10, Height: 10}}})
	if err != nil {
		t.Fatalf("FromNodes: %v", err)
	}
	out := string(Render(g, nil))
	if strings.Contains(out, "a<b>") {
		t.Error("id not escaped")
	}
	if err := xml.Unmarshal([]byte(out), new(struct{})); err != nil {
		t.Errorf("output is not well-formed XML: %v", err)
	}
}

func TestRenderEmpty(t *testing.T) {
	out := string(Render(flow.New(), nil, WithPadding(5)))
	if !strings.Contains(out, `viewBox="-5 -5 10 10"`) {
		t.Errorf("unexpected empty document:\n%s", out)
	}
}
