package highlight

// Viewport is the visible screen rectangle in layout coordinates.
type Viewport struct {
	MinX float64 `json:"min_x" toml:"min_x" yaml:"min_x"`
	MaxX float64 `json:"max_x" toml:"max_x" yaml:"max_x"`
	MinY float64 `json:"min_y" toml:"min_y" yaml:"min_y"`
	MaxY float64 `json:"max_y" toml:"max_y" yaml:"max_y"`
}

// Intersects reports whether b overlaps vp. Touching edges count as overlap,
// and a box only partly inside the viewport is kept.
func (b Bounds) Intersects(vp Viewport) bool {
	return !(b.MaxX < vp.MinX ||
		b.MinX > vp.MaxX ||
		b.MaxY < vp.MinY ||
		b.MinY > vp.MaxY)
}

// Cull keeps the segments whose cached bounds intersect vp. A nil viewport
// disables culling and returns segs itself.
func Cull(segs []*Segment, vp *Viewport) []*Segment {
	if vp == nil {
		return segs
	}
	out := make([]*Segment, 0, len(segs))
	for _, seg := range segs {
		if seg.Bounds.Intersects(*vp) {
			out = append(out, seg)
		}
	}
	return out
}
