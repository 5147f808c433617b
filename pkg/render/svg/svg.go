package svg

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/matzehuels/flowchart/pkg/flow"
	"github.com/matzehuels/flowchart/pkg/geom"
	"github.com/matzehuels/flowchart/pkg/route"
)

// Defaults for Render options.
const (
	DefaultArrowSize = route.DefaultArrowInset
	DefaultPadding   = 20.0
	anchorRadius     = 4.0
)

const styles = `
    .node { fill: #ffffff; stroke: #333333; stroke-width: 2; }
    .label { font-family: sans-serif; font-size: 14px; fill: #333333; }
    .arrow { fill: none; stroke: #555555; }
    .anchor { fill: #1e88e5; }`

// Option configures Render.
type Option func(*renderer)

type renderer struct {
	arrowSize   float64
	strokeWidth float64
	padding     float64
	anchors     bool
}

// WithArrowSize sets the arrowhead length. It should match the arrow inset
// used when routing so heads end on the anchor.
func WithArrowSize(v float64) Option { return func(r *renderer) { r.arrowSize = v } }

// WithStrokeWidth sets the connector line width.
func WithStrokeWidth(v float64) Option { return func(r *renderer) { r.strokeWidth = v } }

// WithAnchors draws the anchors used by the arrows.
func WithAnchors() Option { return func(r *renderer) { r.anchors = true } }

// WithPadding sets the margin around the drawing.
func WithPadding(v float64) Option { return func(r *renderer) { r.padding = v } }

// Render draws g and arrows. Node positions are taken from g.
func Render(g *flow.Graph, arrows []route.Arrow, opts ...Option) []byte {
	r := renderer{
		arrowSize:   DefaultArrowSize,
		strokeWidth: route.DefaultStrokeWidth,
		padding:     DefaultPadding,
	}
	for _, opt := range opts {
		opt(&r)
	}

	nodes := g.Nodes()
	minX, minY, maxX, maxY := bounds(nodes, arrows)
	x, y := minX-r.padding, minY-r.padding
	w, h := maxX-minX+2*r.padding, maxY-minY+2*r.padding

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%s %s %s %s" width="%.0f" height="%.0f">`+"\n",
		num(x), num(y), num(w), num(h), w, h)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", styles)
	r.renderDefs(&buf)

	for _, n := range nodes {
		renderNode(&buf, n)
	}
	for _, a := range arrows {
		fmt.Fprintf(&buf, `  <path class="arrow" d="%s" stroke-width="%s" marker-end="url(#arrowhead)" data-source="%s" data-target="%s"/>`+"\n",
			a.Path, num(r.strokeWidth), escape(a.Source), escape(a.Target))
	}
	if r.anchors {
		renderAnchors(&buf, g, arrows)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r renderer) renderDefs(buf *bytes.Buffer) {
	s := num(r.arrowSize)
	buf.WriteString("  <defs>\n")
	fmt.Fprintf(buf, `    <marker id="arrowhead" viewBox="0 0 10 10" refX="0" refY="5" markerUnits="userSpaceOnUse" markerWidth="%s" markerHeight="%s" orient="auto">`+"\n", s, s)
	buf.WriteString(`      <path d="M0 0 L10 5 L0 10 z" fill="#555555"/>` + "\n")
	buf.WriteString("    </marker>\n")
	buf.WriteString("  </defs>\n")
}

func renderNode(buf *bytes.Buffer, n flow.Node) {
	id := escape(n.ID)
	fmt.Fprintf(buf, `  <rect class="node" id="node-%s" x="%s" y="%s" width="%s" height="%s" rx="4"/>`+"\n",
		id, num(n.Position.X), num(n.Position.Y), num(n.Box.Width), num(n.Box.Height))
	c := n.Rect().Center()
	fmt.Fprintf(buf, `  <text class="label" x="%s" y="%s" text-anchor="middle" dominant-baseline="middle">%s</text>`+"\n",
		num(c.X), num(c.Y), id)
}

func renderAnchors(buf *bytes.Buffer, g *flow.Graph, arrows []route.Arrow) {
	used := make(map[string][]geom.Anchor)
	add := func(id string, a geom.Anchor) {
		if !slices.Contains(used[id], a) {
			used[id] = append(used[id], a)
		}
	}
	for _, a := range arrows {
		add(a.Source, a.SourceAnchor)
		add(a.Target, a.TargetAnchor)
	}
	for _, n := range g.Nodes() {
		anchors := used[n.ID]
		slices.Sort(anchors)
		for _, a := range anchors {
			p, err := geom.AnchorPoint(n.Rect(), a)
			if err != nil {
				continue
			}
			fmt.Fprintf(buf, `  <circle class="anchor" cx="%s" cy="%s" r="%s" data-node="%s" data-anchor="%s"/>`+"\n",
				num(p.X), num(p.Y), num(anchorRadius), escape(n.ID), a)
		}
	}
}

func bounds(nodes []flow.Node, arrows []route.Arrow) (minX, minY, maxX, maxY float64) {
	if len(nodes) == 0 && len(arrows) == 0 {
		return 0, 0, 0, 0
	}
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	grow := func(p geom.Point) {
		minX, minY = min(minX, p.X), min(minY, p.Y)
		maxX, maxY = max(maxX, p.X), max(maxY, p.Y)
	}
	for _, n := range nodes {
		r := n.Rect()
		grow(r.Point)
		grow(geom.Point{X: r.Right(), Y: r.Bottom()})
	}
	for _, a := range arrows {
		for _, c := range a.Path {
			for _, p := range c.Points {
				grow(p)
			}
		}
	}
	return minX, minY, maxX, maxY
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func escape(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
