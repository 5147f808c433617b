// Package layout arranges a dependency graph into a layered, non-overlapping
// node-link layout.
//
// # Algorithm
//
// [Arrange] walks the graph from its roots along the reverse-dependency
// relation. Every node is placed one layer further along the main axis than
// the node it depends on, and its dependents are spread along the cross
// axis in graph order:
//
//	      main axis (Vertical)
//	          |
//	          v        [1]
//	               [2]     [5]
//	             [3] [4] [6] [7]
//	                           [8]
//	        cross axis ->
//
// The pass runs in two phases. The measure phase computes, bottom-up, the
// cross-axis span every subtree reserves: the larger of the node's own
// cross size and the sum of its children's spans plus gaps. The place phase
// then assigns coordinates top-down inside those reserved spans, so sibling
// subtrees never overlap.
//
// A parent with several dependents is centered between the first and last
// of them; a parent with one dependent is centered on that child's span.
//
// # Spacing
//
// [Spacing] controls the gaps:
//
//   - AxisGap separates layers along the main axis, and root subtrees from
//     each other along the cross axis
//   - CrossGap separates sibling subtrees
//   - GroupGap is added between a sibling and the next one when the
//     sibling's own subtree branches further down
//
// # Shared dependents
//
// A node that depends on several parents is laid out under each of them, so
// every parent reserves room for it, and keeps the position computed under
// the parent visited last.
//
// # Determinism
//
// Iteration follows graph insertion order everywhere and position inputs are
// ignored, so the same graph always produces the same map, and arranging a
// graph that already carries its arrangement changes nothing.
//
// All intermediate state lives in a value owned by one Arrange call;
// concurrent calls on different graphs do not interfere.
package layout
