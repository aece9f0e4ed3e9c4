// Package pipeline runs the highlight pass for one frame.
//
// The pass wires the engine stages together:
//
//  1. Aggregate: compute every definition's path and merge edges into segments
//  2. Cull: keep segments whose bounds meet the viewport
//  3. Assemble: order segments, split overlaps, pick a detail tier
//
// Because each stage is pure, a whole pass is keyed on its inputs (the
// definition set, the tree revision, the viewport and the tier thresholds)
// and memoized through a [cache.Cache]. A UI calling Execute every frame only
// pays for recomputation when something actually changed.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache.NewMemoryCache(256, 0), nil, logger)
//	result, err := runner.Execute(ctx, reg, view, pipeline.Options{
//	    Viewport: &highlight.Viewport{MaxX: 1920, MaxY: 1080},
//	})
//	paint(result.Render)
//
// Export artifacts for a finished pass:
//
//	artifacts, err := runner.Export(ctx, view, result.Render, []string{"svg"}, export.Options{})
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kinship/pkg/cache"
	kerrors "github.com/matzehuels/kinship/pkg/errors"
	"github.com/matzehuels/kinship/pkg/highlight"
	"github.com/matzehuels/kinship/pkg/observability"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultReducedThreshold is the visible-segment count where detail drops
	// to reduced.
	DefaultReducedThreshold = 50

	// DefaultMinimalThreshold is the count above which detail drops to minimal.
	DefaultMinimalThreshold = 100
)

// =============================================================================
// Options
// =============================================================================

// Options configures one pass.
type Options struct {
	// Viewport limits output to visible segments. Nil disables culling.
	Viewport *highlight.Viewport `json:"viewport,omitempty"`

	// Thresholds for the level-of-detail tier. Zero uses the defaults.
	Thresholds highlight.Thresholds `json:"thresholds"`

	// TreeRevision identifies the tree contents in the memo key. When empty
	// the runner fingerprints the view, which costs one pass over the nodes.
	TreeRevision string `json:"tree_revision,omitempty"`

	// Refresh bypasses the memo cache for reads. Results are still stored.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger      *log.Logger                   `json:"-"`
	Diagnostics observability.DiagnosticHooks `json:"-"`

	validated bool
}

// ValidateAndSetDefaults fills defaults and checks the viewport and
// thresholds. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Thresholds == (highlight.Thresholds{}) {
		o.Thresholds = highlight.Thresholds{Reduced: DefaultReducedThreshold, Minimal: DefaultMinimalThreshold}
	}
	if err := o.Thresholds.Validate(); err != nil {
		return err
	}
	if vp := o.Viewport; vp != nil && (vp.MinX > vp.MaxX || vp.MinY > vp.MaxY) {
		return kerrors.New(kerrors.ErrCodeInvalidInput,
			"viewport min exceeds max (x %g..%g, y %g..%g)", vp.MinX, vp.MaxX, vp.MinY, vp.MaxY)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Diagnostics == nil {
		o.Diagnostics = observability.Diagnostics()
	}
	o.validated = true
	return nil
}

// engineOptions translates pass options into highlight options.
func (o *Options) engineOptions() []highlight.Option {
	return []highlight.Option{
		highlight.WithLogger(o.Logger),
		highlight.WithDiagnostics(o.Diagnostics),
		highlight.WithThresholds(o.Thresholds),
	}
}

// keyOpts returns the option part of the memo key.
func (o *Options) keyOpts() cache.RenderKeyOpts {
	k := cache.RenderKeyOpts{Reduced: o.Thresholds.Reduced, Minimal: o.Thresholds.Minimal}
	if vp := o.Viewport; vp != nil {
		k.Viewport = &cache.Rect{MinX: vp.MinX, MaxX: vp.MaxX, MinY: vp.MinY, MaxY: vp.MaxY}
	}
	return k
}

// =============================================================================
// Result
// =============================================================================

// Result is the outcome of one pass.
type Result struct {
	// Render is the data handed to the rendering backend.
	Render highlight.RenderData `json:"render"`

	// Stats counts definitions, aggregated segments and overlaps.
	Stats highlight.Stats `json:"stats"`

	// Visible is the number of segments left after culling.
	Visible int `json:"visible"`

	// Key is the memo key of the pass; empty when the pass was not memoizable.
	Key string `json:"key"`

	// CacheHit reports whether Render came from the memo cache.
	CacheHit bool `json:"cache_hit"`

	// Timing holds per-stage durations. Stage timings are zero on a cache hit.
	Timing Timing `json:"timing"`
}

// Timing contains per-stage durations of a pass.
type Timing struct {
	Aggregate time.Duration `json:"aggregate"`
	Cull      time.Duration `json:"cull"`
	Assemble  time.Duration `json:"assemble"`
	Total     time.Duration `json:"total"`
}
