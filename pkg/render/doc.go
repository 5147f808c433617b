// Package render groups the output sinks for positioned flowcharts.
//
// Rendering is a host concern: layout and routing produce coordinates and
// path strings, and the sinks here turn them into documents.
//
//   - [svg]: standalone SVG with nodes, arrows and visible anchors
//   - [nodelink]: Graphviz DOT with pinned positions, rendered by neato
//
//	res, _ := runner.Execute(ctx, g, opts)
//	doc := svg.Render(res.Graph, res.Arrows, svg.WithAnchors())
//	dot := nodelink.ToDOT(res.Graph, res.Arrows)
//
// [svg]: github.com/matzehuels/flowchart/pkg/render/svg
// [nodelink]: github.com/matzehuels/flowchart/pkg/render/nodelink
package render
