package highlight

import (
	"cmp"
	"math"
	"slices"

	"github.com/matzehuels/kinship/pkg/observability"
	"github.com/matzehuels/kinship/pkg/tree"
)

// SegmentKey identifies an undirected tree edge. A is always the smaller ID,
// so walks in either direction land on the same key.
type SegmentKey struct {
	A string `json:"a"`
	B string `json:"b"`
}

// KeyOf returns the canonical key for the edge between two people.
func KeyOf(from, to string) SegmentKey {
	if to < from {
		from, to = to, from
	}
	return SegmentKey{A: from, B: to}
}

// Compare orders keys by A, then B.
func (k SegmentKey) Compare(o SegmentKey) int {
	if c := cmp.Compare(k.A, o.A); c != 0 {
		return c
	}
	return cmp.Compare(k.B, o.B)
}

// String renders the key for logs.
func (k SegmentKey) String() string { return k.A + "-" + k.B }

// Bounds is the axis-aligned box spanned by a segment's endpoints, computed
// once at aggregation so culling stays O(1) per segment.
type Bounds struct {
	MinX float64 `json:"min_x"`
	MaxX float64 `json:"max_x"`
	MinY float64 `json:"min_y"`
	MaxY float64 `json:"max_y"`
}

// BoundsOf returns the box spanned by two points.
func BoundsOf(x1, y1, x2, y2 float64) Bounds {
	return Bounds{
		MinX: math.Min(x1, x2),
		MaxX: math.Max(x1, x2),
		MinY: math.Min(y1, y2),
		MaxY: math.Max(y1, y2),
	}
}

// Contribution is one highlight's claim on a segment, copied from its
// definition at aggregation time.
type Contribution struct {
	HighlightID string  `json:"highlight_id"`
	Color       string  `json:"color"`
	Opacity     float64 `json:"opacity"`
	StrokeWidth float64 `json:"stroke_width"`
	Priority    int     `json:"priority"`
	CreatedAt   int64   `json:"created_at"`
}

// Segment is a tree edge with every highlight currently covering it.
// Contributions is never empty and is ordered by aggregation order.
type Segment struct {
	Key           SegmentKey     `json:"key"`
	From          string         `json:"from"`
	To            string         `json:"to"`
	Bounds        Bounds         `json:"bounds"`
	Contributions []Contribution `json:"contributions"`
}

// Overlapping reports whether two or more highlights share the segment.
func (s *Segment) Overlapping() bool { return len(s.Contributions) > 1 }

// SegmentMap is the deduplicated segment table of one aggregation pass.
type SegmentMap map[SegmentKey]*Segment

// Aggregate computes the path of every definition and merges the edges into
// one segment table. Edges whose endpoints are unknown or lack finite
// coordinates are skipped and reported as diagnostics; a highlight that walks
// the same edge twice contributes once.
func Aggregate(defs []Definition, v tree.View, opts ...Option) SegmentMap {
	s := newSettings(opts)
	segs := make(SegmentMap)
	dropped := 0

	for _, def := range defs {
		seen := make(map[SegmentKey]bool)
		for _, e := range ComputePath(def, v, opts...) {
			key := e.Key()
			if seen[key] {
				continue
			}
			seen[key] = true

			seg, ok := segs[key]
			if !ok {
				b, reason := edgeBounds(e, v)
				if reason != "" {
					dropped++
					s.diag.OnEdgeDropped(def.ID, e.From, e.To, reason)
					s.logger.Debug("edge dropped",
						"highlight", def.ID,
						"from", e.From,
						"to", e.To,
						"reason", reason)
					continue
				}
				seg = &Segment{Key: key, From: e.From, To: e.To, Bounds: b}
				segs[key] = seg
			}
			seg.Contributions = append(seg.Contributions, def.contribution())
		}
	}

	if dropped > 0 {
		s.logger.Warn("edges dropped for invalid geometry", "count", dropped)
	}
	return segs
}

// edgeBounds looks up both endpoints and returns their bounds, or the reason
// the edge cannot be drawn.
func edgeBounds(e Edge, v tree.View) (Bounds, string) {
	n1, ok1 := v.Node(e.From)
	n2, ok2 := v.Node(e.To)
	if !ok1 || !ok2 {
		return Bounds{}, observability.ReasonMissingNode
	}
	if !n1.HasPosition() || !n2.HasPosition() {
		return Bounds{}, observability.ReasonInvalidPosition
	}
	return BoundsOf(n1.X, n1.Y, n2.X, n2.Y), ""
}

// Sorted returns the segments ordered by key.
func (m SegmentMap) Sorted() []*Segment {
	out := make([]*Segment, 0, len(m))
	for _, seg := range m {
		out = append(out, seg)
	}
	slices.SortFunc(out, func(a, b *Segment) int { return a.Key.Compare(b.Key) })
	return out
}

// OverlapCount returns how many segments have two or more contributions.
func (m SegmentMap) OverlapCount() int {
	n := 0
	for _, seg := range m {
		if seg.Overlapping() {
			n++
		}
	}
	return n
}

// Remove returns a copy of the table without the contributions of the given
// highlight. Segments left without contributions are dropped; segments the
// highlight never touched are shared with the receiver.
func (m SegmentMap) Remove(highlightID string) SegmentMap {
	out := make(SegmentMap, len(m))
	for key, seg := range m {
		idx := slices.IndexFunc(seg.Contributions, func(c Contribution) bool {
			return c.HighlightID == highlightID
		})
		if idx < 0 {
			out[key] = seg
			continue
		}
		kept := slices.DeleteFunc(slices.Clone(seg.Contributions), func(c Contribution) bool {
			return c.HighlightID == highlightID
		})
		if len(kept) == 0 {
			continue
		}
		cp := *seg
		cp.Contributions = kept
		out[key] = &cp
	}
	return out
}
