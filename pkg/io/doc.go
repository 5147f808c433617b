// Package io reads host node lists and writes computed layouts.
//
// # Input Format
//
// A node list is an object with one "nodes" array. JSON, YAML and TOML are
// accepted; [FormatFromPath] picks the decoder from the file extension.
//
//	{
//	  "nodes": [
//	    {"id": "app", "deps": ["auth", "cache"]},
//	    {"id": "auth", "width": 160, "height": 60},
//	    {"id": "cache"}
//	  ]
//	}
//
// The same list in TOML:
//
//	[[nodes]]
//	id = "app"
//	deps = ["auth", "cache"]
//
//	[[nodes]]
//	id = "auth"
//
// # Node Fields
//
// Required:
//   - id: Unique identifier
//
// Optional:
//   - deps: Ids this node depends on, in declaration order
//   - x, y: Current top-left corner; used when re-routing without arranging
//   - width, height: Bounding box. Zero means [DefaultWidth] / [DefaultHeight]
//
// A dep naming an unknown id is kept; layout skips it and reports it as
// dangling.
//
// # Output Format
//
// [WriteResult] writes the input fields with computed positions, followed by
// the routed arrows:
//
//	{
//	  "nodes": [{"id": "app", "deps": ["auth"], "x": 110, "y": 0, "width": 200, "height": 200}],
//	  "arrows": [{"source": "auth", "target": "app", "source_anchor": 0, "target_anchor": 2, "path": "M..."}],
//	  "visible": {"app": [2]},
//	  "dangling": []
//	}
//
// Anchors are indexes: 0 top, 1 right, 2 bottom, 3 left. Path strings use
// SVG path syntax restricted to M, L and C commands.
//
// The output is a computed artefact. It is not meant to be read back as a
// saved diagram, although its "nodes" array is valid input.
package io
