package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/flowchart/pkg/flow"
	"github.com/matzehuels/flowchart/pkg/route"
)

const pointsPerInch = 72.0

// ToDOT converts a positioned graph and its arrows to Graphviz DOT.
// The resulting DOT string can be rendered using [RenderSVG].
//
// Pinned positions are written in points; inputscale tells neato so, since
// it reads pos in inches otherwise. Sizes are in inches as DOT requires.
func ToDOT(g *flow.Graph, arrows []route.Arrow) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  inputscale=%s;\n", num(pointsPerInch))
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fixedsize=true, fontsize=14];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		c := n.Rect().Center()
		fmt.Fprintf(&buf, "  %q [label=%q, pos=\"%s,%s!\", width=%s, height=%s];\n",
			n.ID, n.ID, num(c.X), num(-c.Y),
			num(n.Box.Width/pointsPerInch), num(n.Box.Height/pointsPerInch))
	}

	buf.WriteString("\n")
	for _, a := range arrows {
		fmt.Fprintf(&buf, "  %q -> %q [tailport=%s, headport=%s];\n",
			a.Source, a.Target, port(a.SourceAnchor.String()), port(a.TargetAnchor.String()))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// port maps an anchor name to a Graphviz compass point.
func port(anchor string) string {
	switch anchor {
	case "top":
		return "n"
	case "right":
		return "e"
	case "bottom":
		return "s"
	case "left":
		return "w"
	}
	return "c"
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// RenderSVG renders a DOT graph to SVG using the neato engine.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's svg tag, which sizes the document in
// points, with a pixel-sized one.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
