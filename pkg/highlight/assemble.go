package highlight

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	kerrors "github.com/matzehuels/kinship/pkg/errors"
)

// Tier is the level of detail the renderer should use for visual effects.
// The engine only selects it; honoring it (fewer glow passes, no blur) is the
// renderer's job.
type Tier int

const (
	TierFull Tier = iota
	TierReduced
	TierMinimal
)

// String returns the tier name.
func (t Tier) String() string {
	switch t {
	case TierFull:
		return "full"
	case TierReduced:
		return "reduced"
	case TierMinimal:
		return "minimal"
	default:
		return fmt.Sprintf("Tier(%d)", int(t))
	}
}

// MarshalText encodes the tier as its name.
func (t Tier) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText decodes a tier name.
func (t *Tier) UnmarshalText(b []byte) error {
	for _, c := range []Tier{TierFull, TierReduced, TierMinimal} {
		if c.String() == string(b) {
			*t = c
			return nil
		}
	}
	return kerrors.New(kerrors.ErrCodeInvalidInput, "unknown tier %q", b)
}

// Thresholds are the visible-segment counts at which detail drops. Counts
// below Reduced render at full detail, counts from Reduced through Minimal at
// reduced detail, and counts above Minimal at minimal detail.
type Thresholds struct {
	Reduced int `json:"reduced" toml:"reduced" yaml:"reduced"`
	Minimal int `json:"minimal" toml:"minimal" yaml:"minimal"`
}

// DefaultThresholds switch to reduced detail at 50 visible segments and to
// minimal detail above 100.
var DefaultThresholds = Thresholds{Reduced: 50, Minimal: 100}

// Validate checks that both thresholds are positive and ordered.
func (t Thresholds) Validate() error {
	if t.Reduced <= 0 || t.Minimal < t.Reduced {
		return kerrors.New(kerrors.ErrCodeInvalidConfig,
			"tier thresholds must satisfy 0 < reduced <= minimal (got %d, %d)", t.Reduced, t.Minimal)
	}
	return nil
}

// SelectTier maps a visible segment count to a tier.
func SelectTier(visible int, t Thresholds) Tier {
	switch {
	case visible < t.Reduced:
		return TierFull
	case visible <= t.Minimal:
		return TierReduced
	default:
		return TierMinimal
	}
}

// RenderSegment is a segment ready for the rendering backend. The renderer
// resolves paint geometry from the endpoint IDs itself.
type RenderSegment struct {
	Segment
	Tier            Tier  `json:"tier"`
	Overlapping     bool  `json:"overlapping"`
	TopPriority     int   `json:"top_priority"`
	EarliestCreated int64 `json:"earliest_created"`
}

// RenderData is the per-frame output of the engine.
type RenderData struct {
	// Segments in paint order: highest priority first, then oldest highlight.
	Segments []RenderSegment `json:"segments"`
	// Single holds segments with exactly one contribution, in paint order.
	Single []RenderSegment `json:"single"`
	// Overlapping holds segments needing additive compositing, in paint order.
	Overlapping []RenderSegment `json:"overlapping"`
	// Tier is the level of detail chosen from len(Segments).
	Tier Tier `json:"tier"`
}

// Assemble orders the culled segments, splits them into single and
// overlapping groups, and picks a tier from the visible count.
//
// Ordering is by the highest contribution priority (descending), then by the
// earliest contribution CreatedAt (ascending), then by segment key, so equal
// inputs always produce equal output.
func Assemble(segs []*Segment, opts ...Option) RenderData {
	s := newSettings(opts)

	out := make([]RenderSegment, 0, len(segs))
	for _, seg := range segs {
		if len(seg.Contributions) == 0 {
			continue
		}
		top, earliest := math.MinInt, int64(math.MaxInt64)
		for _, c := range seg.Contributions {
			top = max(top, c.Priority)
			earliest = min(earliest, c.CreatedAt)
		}
		out = append(out, RenderSegment{
			Segment:         *seg,
			Overlapping:     seg.Overlapping(),
			TopPriority:     top,
			EarliestCreated: earliest,
		})
	}

	slices.SortStableFunc(out, func(a, b RenderSegment) int {
		if c := cmp.Compare(b.TopPriority, a.TopPriority); c != 0 {
			return c
		}
		if c := cmp.Compare(a.EarliestCreated, b.EarliestCreated); c != 0 {
			return c
		}
		return a.Key.Compare(b.Key)
	})

	// Empty segments were skipped above, so the tier counts what is emitted.
	tier := SelectTier(len(out), s.thresholds)
	for i := range out {
		out[i].Tier = tier
	}

	data := RenderData{Segments: out, Tier: tier}
	for _, rs := range out {
		if rs.Overlapping {
			data.Overlapping = append(data.Overlapping, rs)
		} else {
			data.Single = append(data.Single, rs)
		}
	}
	return data
}
