// Package svg renders a positioned flowchart as a standalone SVG document.
//
// Nodes are drawn as labelled rectangles, arrows as paths ending in an
// arrowhead marker. With [WithAnchors], the anchors used by at least one
// arrow are drawn as dots; unused anchors stay hidden.
//
//	res, _ := runner.Execute(ctx, g, opts)
//	doc := svg.Render(res.Graph, res.Arrows, svg.WithAnchors())
//
// Output is deterministic: nodes follow graph order, arrows keep the order
// given, and anchors are sorted per node.
package svg
