package highlight

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/lucasb-eyer/go-colorful"

	kerrors "github.com/matzehuels/kinship/pkg/errors"
	"github.com/matzehuels/kinship/pkg/tree"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

const (
	// HardDepthLimit bounds every graph walk (ancestry, LCA chains, subtree
	// generations) regardless of the requested MaxDepth. It is what keeps
	// cyclic parent data from hanging a frame.
	HardDepthLimit = 20

	// MaxHighlights is the hard ceiling on concurrently registered definitions.
	MaxHighlights = 200

	// DefaultColor is applied when a definition has no color.
	DefaultColor = "#3b82f6"

	// DefaultOpacity is applied when a definition's opacity is zero.
	DefaultOpacity = 0.6

	// DefaultStrokeWidth is applied when a definition's stroke width is zero.
	DefaultStrokeWidth = 4.0
)

// Kind selects how a highlight turns its parameters into tree edges.
type Kind string

const (
	// KindNodeToNode connects two people through their lowest common ancestor.
	KindNodeToNode Kind = "node_to_node"
	// KindConnectionOnly marks the single edge between a parent and a child.
	KindConnectionOnly Kind = "connection_only"
	// KindAncestryPath follows father links upward from one person.
	KindAncestryPath Kind = "ancestry_path"
	// KindTreeWide marks every parent link, optionally filtered.
	KindTreeWide Kind = "tree_wide"
	// KindSubtree marks all descendants of a root person.
	KindSubtree Kind = "subtree"
)

// Kinds lists every supported kind in declaration order.
var Kinds = []Kind{KindNodeToNode, KindConnectionOnly, KindAncestryPath, KindTreeWide, KindSubtree}

// ParseKind converts a user-supplied name into a Kind. Matching is
// case-insensitive and accepts hyphens in place of underscores.
func ParseKind(s string) (Kind, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for _, k := range Kinds {
		if string(k) == norm {
			return k, nil
		}
	}
	return "", kerrors.New(kerrors.ErrCodeInvalidHighlight, "unknown highlight kind %q", s)
}

// Filter decides whether a tree-wide highlight includes the edge from child
// to its parent. Filters are user code: a panic is recovered and treated as
// exclusion.
type Filter func(child, parent tree.Node) bool

// Style is the visual treatment a highlight requests from the renderer.
type Style struct {
	Color       string  `json:"color" toml:"color" yaml:"color" validate:"omitempty,hexcolor"`
	Opacity     float64 `json:"opacity" toml:"opacity" yaml:"opacity" validate:"gte=0,lte=1"`
	StrokeWidth float64 `json:"stroke_width" toml:"stroke_width" yaml:"stroke_width" validate:"gte=0"`
}

// Definition is one user-requested highlight.
//
// Parameters by kind:
//   - KindNodeToNode, KindConnectionOnly: From and To
//   - KindAncestryPath: From, optional MaxDepth
//   - KindSubtree: Root, optional MaxDepth
//   - KindTreeWide: optional Filter
//
// MaxDepth zero means no depth was requested; HardDepthLimit still applies.
// ID and CreatedAt are assigned by [Registry.Add] when absent.
//
// FilterKey identifies what Filter selects: two filters with the same key must
// include the same edges. Memoizing callers hash it in place of the function;
// a Filter without a FilterKey makes a definition set uncacheable.
type Definition struct {
	ID        string
	Kind      Kind
	From      string
	To        string
	Root      string
	MaxDepth  int
	Filter    Filter
	FilterKey string
	Style     Style
	Priority  int
	CreatedAt int64
}

// StylePatch carries the mutable fields accepted by [Registry.Update].
// Nil fields are left unchanged.
type StylePatch struct {
	Color       *string
	Opacity     *float64
	StrokeWidth *float64
	Priority    *int
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// WithDefaults returns the style with zero fields replaced by defaults and
// the color normalized to lower-case #rrggbb where possible.
func (s Style) WithDefaults() Style {
	if s.Color == "" {
		s.Color = DefaultColor
	}
	if s.Opacity == 0 {
		s.Opacity = DefaultOpacity
	}
	if s.StrokeWidth == 0 {
		s.StrokeWidth = DefaultStrokeWidth
	}
	s.Color = NormalizeColor(s.Color)
	return s
}

// Validate checks value ranges: opacity in [0,1], non-negative stroke width,
// and a hex color (#rgb, #rgba, #rrggbb or #rrggbbaa).
func (s Style) Validate() error {
	if err := validate.Struct(s); err != nil {
		return kerrors.Wrap(kerrors.ErrCodeInvalidStyle, err, "invalid style")
	}
	return nil
}

// NormalizeColor lower-cases a hex color and expands #rgb to #rrggbb.
// Colors with an alpha channel are only lower-cased.
func NormalizeColor(s string) string {
	if c, err := colorful.Hex(s); err == nil {
		return c.Hex()
	}
	return strings.ToLower(s)
}

// Validate checks that the definition carries the parameters its kind needs
// and that its style is well formed. It does not consult the tree: unknown
// node IDs are a lookup failure handled at computation time.
func (d Definition) Validate() error {
	switch d.Kind {
	case KindNodeToNode, KindConnectionOnly:
		if d.From == "" || d.To == "" {
			return kerrors.New(kerrors.ErrCodeInvalidHighlight, "%s requires from and to", d.Kind)
		}
	case KindAncestryPath:
		if d.From == "" {
			return kerrors.New(kerrors.ErrCodeInvalidHighlight, "%s requires from", d.Kind)
		}
	case KindSubtree:
		if d.Root == "" {
			return kerrors.New(kerrors.ErrCodeInvalidHighlight, "%s requires root", d.Kind)
		}
	case KindTreeWide:
	default:
		return kerrors.New(kerrors.ErrCodeInvalidHighlight, "unknown highlight kind %q", d.Kind)
	}
	if d.MaxDepth < 0 {
		return kerrors.New(kerrors.ErrCodeInvalidHighlight, "max depth must not be negative")
	}
	return d.Style.Validate()
}

// depthLimit returns the effective walk bound for the definition.
func (d Definition) depthLimit() int {
	if d.MaxDepth > 0 && d.MaxDepth < HardDepthLimit {
		return d.MaxDepth
	}
	return HardDepthLimit
}

func (d Definition) contribution() Contribution {
	return Contribution{
		HighlightID: d.ID,
		Color:       d.Style.Color,
		Opacity:     d.Style.Opacity,
		StrokeWidth: d.Style.StrokeWidth,
		Priority:    d.Priority,
		CreatedAt:   d.CreatedAt,
	}
}
