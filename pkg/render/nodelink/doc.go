// Package nodelink exports a positioned flowchart to Graphviz.
//
// # DOT Export
//
// [ToDOT] writes every node with a pinned position (pos="x,y!") so Graphviz
// keeps the layout computed by this module instead of running its own. Edges
// come from routed arrows, so dangling deps never appear.
//
//	res, _ := runner.Execute(ctx, g, opts)
//	dot := nodelink.ToDOT(res.Graph, res.Arrows)
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Coordinates
//
// Graphviz measures positions in points from the node centre with the y
// axis pointing up. ToDOT converts: one pixel is one point, y is negated,
// and box sizes are divided by 72 to get inches.
//
// # Rendering
//
// [RenderSVG] uses the neato engine, which honours pinned positions, and
// draws spline edges between the fixed nodes. It runs Graphviz in-process
// through [github.com/goccy/go-graphviz]; no system install is required.
package nodelink
