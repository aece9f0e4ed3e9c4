package export

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/kinship/pkg/highlight"
	"github.com/matzehuels/kinship/pkg/tree"
)

// Options configures the DOT preview.
type Options struct {
	// HighlightedOnly omits people and parent links no segment touches.
	HighlightedOnly bool
	// Labels shows node labels (falling back to the ID) instead of bare IDs.
	Labels bool
}

// baseEdgeColor is used for parent links that carry no highlight.
const baseEdgeColor = "#d1d5db"

// ToDOT renders the tree with its highlighted segments as Graphviz DOT.
// Parent links point from parent to child. Highlighted links use the
// composited color of their contributions and the widest stroke.
func ToDOT(v tree.View, data highlight.RenderData, opts Options) string {
	segs := make(map[highlight.SegmentKey]highlight.RenderSegment, len(data.Segments))
	touched := make(map[string]bool)
	for _, rs := range data.Segments {
		segs[rs.Key] = rs
		touched[rs.From] = true
		touched[rs.To] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14];\n")
	buf.WriteString("  edge [arrowhead=none];\n\n")

	var edges []string
	v.ForEach(func(n tree.Node) bool {
		if opts.HighlightedOnly && !touched[n.ID] {
			return true
		}
		fmt.Fprintf(&buf, "  %q [label=%q];\n", n.ID, nodeLabel(n, opts.Labels))

		if n.ParentID == "" {
			return true
		}
		if _, ok := v.Node(n.ParentID); !ok {
			return true
		}
		rs, lit := segs[highlight.KeyOf(n.ID, n.ParentID)]
		if opts.HighlightedOnly && !lit {
			return true
		}
		edges = append(edges, fmt.Sprintf("  %q -> %q [%s];", n.ParentID, n.ID, edgeAttrs(rs, lit)))
		return true
	})

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	return buf.String()
}

func nodeLabel(n tree.Node, labels bool) string {
	if labels && n.Label != "" {
		return n.Label
	}
	return n.ID
}

func edgeAttrs(rs highlight.RenderSegment, lit bool) string {
	if !lit {
		return fmt.Sprintf("color=%q", baseEdgeColor)
	}
	color, alpha := Composite(rs.Contributions)
	width := 0.0
	for _, c := range rs.Contributions {
		width = math.Max(width, c.StrokeWidth)
	}
	attrs := []string{
		fmt.Sprintf("color=%q", hexAlpha(color, alpha)),
		fmt.Sprintf("penwidth=%.1f", width),
	}
	if rs.Overlapping {
		attrs = append(attrs, "style=bold")
	}
	return strings.Join(attrs, ", ")
}

// Composite blends contributions additively: each color is scaled by its
// opacity, the results are summed and clamped to the RGB cube. The returned
// alpha is the combined coverage 1 - Π(1 - opacity).
func Composite(contribs []highlight.Contribution) (colorful.Color, float64) {
	var sum colorful.Color
	transparency := 1.0
	for _, c := range contribs {
		col, err := colorful.Hex(c.Color)
		if err != nil {
			col, _ = colorful.Hex(highlight.DefaultColor)
		}
		sum.R += col.R * c.Opacity
		sum.G += col.G * c.Opacity
		sum.B += col.B * c.Opacity
		transparency *= 1 - c.Opacity
	}
	return sum.Clamped(), 1 - transparency
}

func hexAlpha(c colorful.Color, alpha float64) string {
	a := uint8(math.Round(math.Max(0, math.Min(1, alpha)) * 255))
	return fmt.Sprintf("%s%02x", c.Hex(), a)
}
