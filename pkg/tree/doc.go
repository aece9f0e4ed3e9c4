// Package tree provides the read-only family tree view consumed by the
// highlight engine.
//
// # Overview
//
// A family tree is a forest of people linked to their fathers. The layout
// engine (outside this module) assigns every person screen coordinates; this
// package stores the result and exposes it through the [View] interface:
//
//	t := tree.New()
//	t.AddNode(tree.Node{ID: "1", X: 0, Y: 0})
//	t.AddNode(tree.Node{ID: "2", ParentID: "1", X: 0, Y: 120, Generation: 1})
//
// Any type with Node lookup and ForEach iteration can serve as a view. Views
// that can list children directly also implement [ChildIndex], which subtree
// traversal uses to avoid a full scan.
//
// # Corrupt Data
//
// Imported genealogy data is frequently broken: fathers that were deleted,
// accidental self-ancestry, missing coordinates. [Tree] keeps such data as is.
// [Tree.Validate] reports dangling parents and parent cycles for diagnostics,
// and [Node.HasPosition] tells whether the layout placed a node.
//
// # Serialization
//
// Trees use a flat JSON node list:
//
//	{
//	  "nodes": [
//	    {"id": "1", "x": 0, "y": 0},
//	    {"id": "2", "parent_id": "1", "x": 0, "y": 120, "generation": 1}
//	  ]
//	}
//
// Missing or null coordinates decode to NaN. See [ReadGraphFile] and
// [MarshalGraph].
package tree
