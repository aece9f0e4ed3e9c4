// Package export turns assembled render data into files for inspection.
//
// # Overview
//
// The production renderer consumes [highlight.RenderData] directly and draws
// its own connectors. This package exists for everything around it: dumping
// a frame as JSON for a bug report, or previewing highlights as a Graphviz
// diagram without the real renderer.
//
// # Usage
//
//	data := highlight.Assemble(visible)
//	doc, err := export.JSON(data)
//
//	dot := export.ToDOT(view, data, export.Options{})
//	svg, err := export.RenderSVG(ctx, dot)
//
// # Compositing
//
// Overlapping segments are drawn with [Composite], which adds the
// contributing colors weighted by opacity and clamps the result. This mirrors
// the additive blending the renderer applies, so the preview shows the same
// hue a user sees where highlights cross.
//
// # Dependencies
//
// SVG output uses [github.com/goccy/go-graphviz], which runs Graphviz
// in-process; no system installation is needed. Color math uses
// [github.com/lucasb-eyer/go-colorful].
package export
