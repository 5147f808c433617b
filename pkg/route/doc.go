// Package route picks the anchors each connector attaches to and computes
// the connector geometry.
//
// # Anchor selection
//
// [Router.ClosestAnchors] is a directional heuristic. For a pair it first
// decides which node is the dependency (the parent) and which depends on it
// (the child), then classifies where the child sits relative to the parent:
//
//	child left of parent    parent.Left   <- child.Right
//	child right of parent   parent.Right  -> child.Left
//	child above parent      parent.Top    <- child.Bottom
//	child below parent      parent.Bottom -> child.Top
//
// Horizontal layouts test the x axis first, vertical layouts the y axis.
// A child that overlaps its parent on both axes is treated as being to the
// right. The answer is always reported in argument order, so swapping the
// arguments swaps the result.
//
// [Router.Nearest] is the brute-force alternative: the closest of the 16
// anchor pairs by Euclidean distance.
//
// # Memoization
//
// [Router.Closest] caches the anchor for both directions of a pair and, on a
// miss, fills the cache for every neighbour of the node at once. The cache
// is only valid for the positions it was computed from; call [Router.Reset]
// after any node moves or the node set changes.
//
// A Router is not safe for concurrent use.
package route
