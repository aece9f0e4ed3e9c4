package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kinship/pkg/cache"
	kerrors "github.com/matzehuels/kinship/pkg/errors"
	"github.com/matzehuels/kinship/pkg/export"
	"github.com/matzehuels/kinship/pkg/highlight"
	"github.com/matzehuels/kinship/pkg/observability"
	"github.com/matzehuels/kinship/pkg/tree"
)

// Runner executes highlight passes with memoization.
//
// Apart from the cache it only remembers the stats of the most recent pass,
// so multiple goroutines can share one Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	mu   sync.RWMutex
	last highlight.Stats
}

// NewRunner creates a runner. A nil cache disables memoization, a nil keyer
// uses cache.DefaultKeyer and a nil logger uses log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// cachedPass is the memoized payload of one pass.
type cachedPass struct {
	Render  highlight.RenderData `json:"render"`
	Stats   highlight.Stats      `json:"stats"`
	Visible int                  `json:"visible"`
}

// Execute runs aggregate → cull → assemble for the registry's definitions
// over v. Engine anomalies never fail a pass; errors come only from invalid
// options or a cancelled context. Cache failures are logged and otherwise
// ignored.
func (r *Runner) Execute(ctx context.Context, reg highlight.Registry, v tree.View, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if v == nil {
		return nil, kerrors.New(kerrors.ErrCodeInvalidInput, "tree view is required")
	}
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	start := time.Now()
	defs := reg.Definitions()
	observability.Pipeline().OnPassStart(ctx, len(defs))

	key, err := r.passKey(defs, v, &opts)
	if err != nil {
		return nil, err
	}
	result := &Result{Key: key}

	if key != "" && !opts.Refresh {
		if pass, ok := r.lookup(ctx, key); ok {
			result.Render = pass.Render
			result.Stats = pass.Stats
			result.Visible = pass.Visible
			result.CacheHit = true
			result.Timing.Total = time.Since(start)
			r.finish(ctx, result)
			return result, nil
		}
	}

	engine := opts.engineOptions()

	t := time.Now()
	segs := highlight.Aggregate(defs, v, engine...)
	result.Timing.Aggregate = time.Since(t)

	t = time.Now()
	visible := highlight.Cull(segs.Sorted(), opts.Viewport)
	result.Timing.Cull = time.Since(t)

	t = time.Now()
	result.Render = highlight.Assemble(visible, engine...)
	result.Timing.Assemble = time.Since(t)

	result.Stats = highlight.StatsOf(reg, segs)
	result.Visible = len(visible)
	result.Timing.Total = time.Since(start)

	if key != "" {
		r.store(ctx, key, cachedPass{Render: result.Render, Stats: result.Stats, Visible: result.Visible})
	}

	opts.Logger.Debug("highlight pass",
		"definitions", result.Stats.Definitions,
		"segments", result.Stats.Segments,
		"visible", result.Visible,
		"overlapping", result.Stats.Overlapping,
		"tier", result.Render.Tier,
		"duration", result.Timing.Total)

	r.finish(ctx, result)
	return result, nil
}

// Stats returns the counts of the most recent pass.
func (r *Runner) Stats() highlight.Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last
}

// Export renders a finished pass into the requested artifact formats.
func (r *Runner) Export(ctx context.Context, v tree.View, data highlight.RenderData, formats []string, opts export.Options) (map[string][]byte, error) {
	start := time.Now()
	artifacts, err := export.Render(ctx, v, data, formats, opts)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("exported render data", "formats", formats, "duration", time.Since(start))
	return artifacts, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// passKey returns the memo key of a pass, or "" when the definitions cannot
// be fingerprinted and the pass must not be memoized.
func (r *Runner) passKey(defs []highlight.Definition, v tree.View, opts *Options) (string, error) {
	defsHash, err := DefinitionsHash(defs)
	if errors.Is(err, ErrUnkeyedFilter) {
		opts.Logger.Debug("pass not memoized", "reason", err)
		return "", nil
	}
	if err != nil {
		return "", kerrors.Wrap(kerrors.ErrCodeInternal, err, "fingerprint definitions")
	}
	rev := opts.TreeRevision
	if rev == "" {
		rev = TreeHash(v)
	}
	return r.Keyer.RenderKey(defsHash, rev, opts.keyOpts()), nil
}

func (r *Runner) lookup(ctx context.Context, key string) (cachedPass, bool) {
	hooks := observability.Cache()
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "error", err)
	}
	if err != nil || !hit {
		hooks.OnCacheMiss(ctx, cache.KeyTypeRender)
		return cachedPass{}, false
	}

	var pass cachedPass
	if err := json.Unmarshal(data, &pass); err != nil {
		r.Logger.Warn("discarding corrupt cache entry", "error", err)
		_ = r.Cache.Delete(ctx, key)
		hooks.OnCacheMiss(ctx, cache.KeyTypeRender)
		return cachedPass{}, false
	}
	hooks.OnCacheHit(ctx, cache.KeyTypeRender)
	return pass, true
}

func (r *Runner) store(ctx context.Context, key string, pass cachedPass) {
	data, err := json.Marshal(pass)
	if err != nil {
		r.Logger.Warn("encode pass for cache", "error", err)
		return
	}
	if err := r.Cache.Set(ctx, key, data, cache.TTLRender); err != nil {
		r.Logger.Warn("cache write failed", "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, cache.KeyTypeRender, len(data))
}

func (r *Runner) finish(ctx context.Context, result *Result) {
	r.mu.Lock()
	r.last = result.Stats
	r.mu.Unlock()

	observability.Pipeline().OnPassComplete(ctx, observability.PassSummary{
		Definitions: result.Stats.Definitions,
		Segments:    result.Stats.Segments,
		Visible:     result.Visible,
		Overlapping: len(result.Render.Overlapping),
		Tier:        result.Render.Tier.String(),
		CacheHit:    result.CacheHit,
	}, result.Timing.Total)
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
