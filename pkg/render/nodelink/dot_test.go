package nodelink

import (
	"context"
	"regexp"
	"strconv"
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
		{ID: "a", Position: geom.Point{X: 0, Y: 0}, Box: geom.Size{Width: 144, Height: 72}},
		{ID: "b", Deps: []string{"a", "ghost"}, Position: geom.Point{X: 0, Y: 172}, Box: geom.Size{Width: 144, Height: 72}},
	})
	if err != nil {
		t.Fatalf("FromNodes: %v", err)
	}
	return g
}

func TestToDOT(t *testing.T) {
	g := positioned(t)
	arrows, err := route.New(layout.Vertical).Route(g)
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	dot := ToDOT(g, arrows)

	for _, want := range []string{
		"digraph G",
		"inputscale=72;",
		"splines=true",
		`"a" [label="a", pos="72,-36!", width=2, height=1]`,
		`"b" [label="b", pos="72,-208!", width=2, height=1]`,
		`"a" -> "b" [tailport=s, headport=n]`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "ghost") {
		t.Error("dangling dep should not produce an edge")
	}
}

func TestRenderSVGKeepsLayoutScale(t *testing.T) {
	g, err := flow.FromNodes([]flow.Node{
		{ID: "a", Box: geom.Size{Width: 100, Height: 50}},
		{ID: "b", Position: geom.Point{X: 300}, Box: geom.Size{Width: 100, Height: 50}},
	})
	if err != nil {
		t.Fatalf("FromNodes: %v", err)
	}
	out, err := RenderSVG(context.Background(), ToDOT(g, nil))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}

	m := regexp.MustCompile(`viewBox="0 0 ([0-9.]+) ([0-9.]+)"`).FindSubmatch(out)
	if m == nil {
		t.Fatalf("no viewBox in output:\n%s", out)
	}
	w, _ := strconv.ParseFloat(string(m[1]), 64)
	h, _ := strconv.ParseFloat(string(m[2]), 64)
	// 400 wide and 50 tall plus neato's margins.
	if w < 400 || w > 500 || h < 50 || h > 150 {
		t.Errorf("viewBox = %.2f x %.2f, want about 400 x 50", w, h)
	}
}

func TestPort(t *testing.T) {
	tests := []struct {
		anchor geom.Anchor
		want   string
	}{
		{geom.Top, "n"},
		{geom.Right, "e"},
		{geom.Bottom, "s"},
		{geom.Left, "w"},
		{geom.Anchor(9), "c"},
	}
	for _, tt := range tests {
		if got := port(tt.anchor.String()); got != tt.want {
			t.Errorf("port(%v) = %q, want %q", tt.anchor, got, tt.want)
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `width="100" height="50"`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}
	if got := string(normalizeViewBox([]byte("<svg/>"))); got != "<svg/>" {
		t.Errorf("svg without viewBox changed: %s", got)
	}
}
