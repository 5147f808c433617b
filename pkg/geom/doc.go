// Package geom provides the small geometric vocabulary shared by the layout,
// routing and path packages.
//
// # Coordinates
//
// All coordinates are in diagram units with the origin at the top-left and y
// growing downward, matching SVG user space. A node's [Point] is its top-left
// corner and its [Size] is the bounding box reported by the renderer.
//
// # Anchors
//
// Every node exposes four connection points, indexed in the fixed order
// top (0), right (1), bottom (2), left (3):
//
//	        Top
//	     ┌───●───┐
//	Left ●       ● Right
//	     └───●───┘
//	       Bottom
//
// [AnchorPoint] returns the coordinate of one anchor on a [Rect], and
// [Anchor.Normal] the outward unit direction a connector leaves along.
package geom
