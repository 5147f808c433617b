// Package path turns a pair of anchored endpoints into connector geometry.
//
// A [Strategy] computes the SVG path drawn between two anchors. Strategies
// are pure and stateless; the router holds one and may swap it at any time.
//
//	Strategy      Shape
//	----------    -----------------------------------------------
//	blend         cubic curve leaving and entering along anchor normals
//	straight      straight line when aligned, else blend
//	orthogonal    horizontal, vertical, horizontal segments
//	bezier        cubic curve whose bend grows with the distance
//
// Geometry is a list of M, L and C commands. [Geometry.String] renders the
// SVG "d" attribute with numbers in shortest round-trip form:
//
//	g, _ := path.DistanceBezier{Tolerance: 5}.Compute(
//	    path.Endpoint{Point: geom.Point{X: 0, Y: 0}},
//	    path.Endpoint{Point: geom.Point{X: 10, Y: 10}}, 0, 0)
//	fmt.Println(g) // M0 0 C5 1.1785113019775793 5 8.82148869802242 10 10
//
// Every strategy starts its path exactly at the start point: insets move
// the curve away from the anchor, never the M command.
package path
