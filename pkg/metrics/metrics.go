// Package metrics exports highlight engine activity as Prometheus metrics.
//
// A [Registry] implements the observability hook interfaces. Install it once
// at startup and every pass, cache access and diagnostic is counted:
//
//	m := metrics.NewRegistry()
//	m.Install()
//	defer observability.Reset()
//
// Metrics live on a private prometheus.Registry so that tests and embedders
// never collide with the global default registerer.
package metrics

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"

	"github.com/matzehuels/kinship/pkg/observability"
)

// Namespace prefixes every metric name.
const Namespace = "kinship"

// Registry holds all engine metrics.
type Registry struct {
	// Pass metrics
	PassesTotal      *prometheus.CounterVec
	PassDuration     *prometheus.HistogramVec
	PassesInFlight   prometheus.Gauge
	VisibleSegments  prometheus.Histogram
	Definitions      prometheus.Gauge
	Segments         prometheus.Gauge
	OverlappingEdges prometheus.Gauge

	// Cache metrics
	CacheOperations *prometheus.CounterVec
	CacheWriteBytes prometheus.Histogram

	// Diagnostics
	EdgesDropped  *prometheus.CounterVec
	FilterPanics  prometheus.Counter
	DepthLimitHit *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewRegistry creates a registry with every metric initialized.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.initPassMetrics()
	r.initCacheMetrics()
	r.initDiagnosticMetrics()
	return r
}

func (r *Registry) initPassMetrics() {
	f := promauto.With(r.registry)
	r.PassesTotal = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "passes_total",
		Help:      "Highlight passes executed, by detail tier and cache outcome",
	}, []string{"tier", "cache"})
	r.PassDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "pass_duration_seconds",
		Help:      "Highlight pass duration in seconds",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.004, 0.016, 0.05, 0.25},
	}, []string{"cache"})
	r.PassesInFlight = f.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "passes_in_flight",
		Help:      "Highlight passes currently executing",
	})
	r.VisibleSegments = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "visible_segments",
		Help:      "Segments left after viewport culling per pass",
		Buckets:   []float64{0, 10, 50, 100, 500, 1000, 5000},
	})
	r.Definitions = f.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "definitions",
		Help:      "Highlight definitions in the most recent pass",
	})
	r.Segments = f.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "segments",
		Help:      "Aggregated segments in the most recent pass",
	})
	r.OverlappingEdges = f.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "overlapping_segments",
		Help:      "Visible segments claimed by more than one highlight in the most recent pass",
	})
}

func (r *Registry) initCacheMetrics() {
	f := promauto.With(r.registry)
	r.CacheOperations = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "cache_operations_total",
		Help:      "Memo cache operations, by key type and result (hit, miss, set)",
	}, []string{"key_type", "result"})
	r.CacheWriteBytes = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "cache_write_bytes",
		Help:      "Size of memo cache writes in bytes",
		Buckets:   prometheus.ExponentialBuckets(256, 4, 8),
	})
}

func (r *Registry) initDiagnosticMetrics() {
	f := promauto.With(r.registry)
	r.EdgesDropped = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "edges_dropped_total",
		Help:      "Edges skipped during aggregation, by reason",
	}, []string{"reason"})
	r.FilterPanics = f.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "filter_panics_total",
		Help:      "Tree-wide filter calls that panicked",
	})
	r.DepthLimitHit = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "depth_limit_total",
		Help:      "Path walks stopped by the hard depth limit, by highlight kind",
	}, []string{"kind"})
}

// Prometheus returns the underlying Prometheus registry.
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.registry
}

// Install registers r as the global pipeline, cache and diagnostic hooks.
func (r *Registry) Install() {
	observability.SetPipelineHooks(r)
	observability.SetCacheHooks(r)
	observability.SetDiagnosticHooks(r)
}

// WriteText writes all metrics in the Prometheus text exposition format.
func (r *Registry) WriteText(w io.Writer) error {
	families, err := r.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Hook implementations
// =============================================================================

func cacheLabel(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

// OnPassStart implements observability.PipelineHooks.
func (r *Registry) OnPassStart(context.Context, int) {
	r.PassesInFlight.Inc()
}

// OnPassComplete implements observability.PipelineHooks.
func (r *Registry) OnPassComplete(_ context.Context, s observability.PassSummary, d time.Duration) {
	r.PassesInFlight.Dec()
	label := cacheLabel(s.CacheHit)
	r.PassesTotal.WithLabelValues(s.Tier, label).Inc()
	r.PassDuration.WithLabelValues(label).Observe(d.Seconds())
	r.VisibleSegments.Observe(float64(s.Visible))
	r.Definitions.Set(float64(s.Definitions))
	r.Segments.Set(float64(s.Segments))
	r.OverlappingEdges.Set(float64(s.Overlapping))
}

// OnCacheHit implements observability.CacheHooks.
func (r *Registry) OnCacheHit(_ context.Context, keyType string) {
	r.CacheOperations.WithLabelValues(keyType, "hit").Inc()
}

// OnCacheMiss implements observability.CacheHooks.
func (r *Registry) OnCacheMiss(_ context.Context, keyType string) {
	r.CacheOperations.WithLabelValues(keyType, "miss").Inc()
}

// OnCacheSet implements observability.CacheHooks.
func (r *Registry) OnCacheSet(_ context.Context, keyType string, size int) {
	r.CacheOperations.WithLabelValues(keyType, "set").Inc()
	r.CacheWriteBytes.Observe(float64(size))
}

// OnEdgeDropped implements observability.DiagnosticHooks.
func (r *Registry) OnEdgeDropped(_, _, _, reason string) {
	r.EdgesDropped.WithLabelValues(reason).Inc()
}

// OnFilterPanic implements observability.DiagnosticHooks.
func (r *Registry) OnFilterPanic(string, string, string, any) {
	r.FilterPanics.Inc()
}

// OnDepthLimit implements observability.DiagnosticHooks.
func (r *Registry) OnDepthLimit(_, kind string, _ int) {
	r.DepthLimitHit.WithLabelValues(kind).Inc()
}

var (
	_ observability.PipelineHooks   = (*Registry)(nil)
	_ observability.CacheHooks      = (*Registry)(nil)
	_ observability.DiagnosticHooks = (*Registry)(nil)
)
