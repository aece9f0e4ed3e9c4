// Package highlight computes the render data for highlighted paths in a
// laid-out family tree.
//
// # Overview
//
// A highlight is a user request to emphasize part of the tree: the line from a
// person up to their ancestors, the path connecting two cousins, everyone
// descended from a founder, or a filtered set of parent links across the
// whole tree. This package turns a set of such requests into the segment list
// a renderer paints each frame:
//
//	reg, _, err := highlight.NewRegistry().Add(highlight.Definition{
//	    Kind: highlight.KindAncestryPath,
//	    From: "p-4182",
//	})
//	segs := highlight.Aggregate(reg.Definitions(), view)
//	visible := highlight.Cull(segs.Sorted(), &viewport)
//	data := highlight.Assemble(visible)
//
// # Stages
//
//   - [ComputePath] turns one [Definition] into ordered tree edges.
//   - [Aggregate] merges the edges of all definitions into a [SegmentMap],
//     one [Segment] per undirected edge, recording every contributing
//     highlight. Two or more contributions signal an overlap the renderer
//     composites additively.
//   - [Cull] keeps segments whose cached bounds meet the viewport.
//   - [Assemble] orders segments by priority, splits single from overlapping
//     ones, and picks a level-of-detail [Tier] from the visible count.
//   - [Registry] holds the definitions as an immutable value.
//
// # Failure Model
//
// Nothing here is fatal. Unknown people give empty paths, edges without
// usable coordinates are dropped, panicking filters exclude their edge, and
// cyclic parent data stops at [HardDepthLimit]. Anomalies are reported through
// observability.DiagnosticHooks and the optional logger. Only registry
// operations return errors, and only to reject a request.
//
// # Concurrency
//
// All functions are synchronous and pure with respect to their inputs. They
// may run concurrently on the same view as long as nothing mutates it.
package highlight
