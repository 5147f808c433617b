// Package flow provides the in-memory graph model consumed by the layout and
// routing packages.
//
// # Overview
//
// A [Graph] is an ordered arena of [Node] values keyed by id. Each node lists
// the ids it depends on in Deps; order matters, because the arranger places a
// node's dependents in the order they were added to the graph. A node whose
// deps are empty, or all unresolvable, is a root.
//
// # Reverse dependencies
//
// Layout and routing walk the graph from dependencies to dependents. That
// direction is derived, not stored: [Graph.Index] scans every node once and
// returns an [Index] snapshot holding the reverse-dependency lists, the
// resolved deps, the roots and any dangling references. A new Index is built
// for every pass and never patched, so it cannot go stale.
//
//	g := flow.New()
//	_ = g.AddNode(flow.Node{ID: "api"})
//	_ = g.AddNode(flow.Node{ID: "db", Deps: []string{"api"}})
//	ix := g.Index()
//	fmt.Println(ix.Dependents("api")) // [db]
//
// # Dangling dependencies
//
// A dep naming an id that is not in the graph is ignored by every lookup and
// recorded as a [Dangling] value. It never fails a pass.
//
// # Positions
//
// Positions are owned by whoever last wrote them: the arranger, or the host
// while a node is being dragged. [Graph.WithPositions] returns a new graph
// with a whole position map applied at once; [Graph.SetPosition] updates a
// single node in place for drag handling.
//
// Graph is not safe for concurrent use without external synchronization.
package flow
