// Package observability provides hooks for metrics and diagnostics.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup to
// receive events about highlight passes, memoization and engine diagnostics.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// The highlight engine never fails on bad data; instead it reports what it
// skipped through [DiagnosticHooks]. A Prometheus implementation lives in
// pkg/metrics.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    m := metrics.NewRegistry()
//	    observability.SetPipelineHooks(m)
//	    observability.SetDiagnosticHooks(m)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnPassStart(ctx, len(defs))
//	// ... compute ...
//	observability.Pipeline().OnPassComplete(ctx, summary, duration)
package observability

import (
	"context"
	"sync"
	"time"
)

// Reasons reported with [DiagnosticHooks.OnEdgeDropped].
const (
	ReasonMissingNode     = "missing_node"
	ReasonInvalidPosition = "invalid_position"
)

// PassSummary describes the outcome of one highlight pass.
type PassSummary struct {
	Definitions int    // Highlight definitions in the pass
	Segments    int    // Segments after aggregation
	Visible     int    // Segments after viewport culling
	Overlapping int    // Visible segments with two or more contributions
	Tier        string // Selected level-of-detail tier
	CacheHit    bool   // Whether the result came from the memo cache
}

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the highlight pipeline.
type PipelineHooks interface {
	OnPassStart(ctx context.Context, definitions int)
	OnPassComplete(ctx context.Context, summary PassSummary, duration time.Duration)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from memoization cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Diagnostic Hooks
// =============================================================================

// DiagnosticHooks receives recoverable anomalies found while computing paths.
// Implementations must be cheap: they run inside the frame budget.
type DiagnosticHooks interface {
	// OnEdgeDropped records an edge skipped during aggregation.
	OnEdgeDropped(highlightID, from, to, reason string)

	// OnFilterPanic records a tree-wide filter that panicked on an edge.
	OnFilterPanic(highlightID, child, parent string, recovered any)

	// OnDepthLimit records a walk that stopped at the hard depth limit.
	OnDepthLimit(highlightID, kind string, limit int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnPassStart(context.Context, int)                           {}
func (NoopPipelineHooks) OnPassComplete(context.Context, PassSummary, time.Duration) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopDiagnosticHooks is a no-op implementation of DiagnosticHooks.
type NoopDiagnosticHooks struct{}

func (NoopDiagnosticHooks) OnEdgeDropped(string, string, string, string) {}
func (NoopDiagnosticHooks) OnFilterPanic(string, string, string, any)    {}
func (NoopDiagnosticHooks) OnDepthLimit(string, string, int)             {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks   PipelineHooks   = NoopPipelineHooks{}
	cacheHooks      CacheHooks      = NoopCacheHooks{}
	diagnosticHooks DiagnosticHooks = NoopDiagnosticHooks{}
	hooksMu         sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any pipeline operations.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetDiagnosticHooks registers custom diagnostic hooks.
// This should be called once at application startup before any computation.
func SetDiagnosticHooks(h DiagnosticHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		diagnosticHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Diagnostics returns the registered diagnostic hooks.
func Diagnostics() DiagnosticHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return diagnosticHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
	diagnosticHooks = NoopDiagnosticHooks{}
}
