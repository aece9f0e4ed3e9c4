package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Pipeline hooks
	p := NoopPipelineHooks{}
	p.OnPassStart(ctx, 3)
	p.OnPassComplete(ctx, PassSummary{Definitions: 3, Segments: 10, Tier: "full"}, time.Millisecond)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "render")
	c.OnCacheMiss(ctx, "render")
	c.OnCacheSet(ctx, "render", 1024)

	// Diagnostic hooks
	d := NoopDiagnosticHooks{}
	d.OnEdgeDropped("h1", "2", "1", ReasonInvalidPosition)
	d.OnFilterPanic("h1", "2", "1", errors.New("boom"))
	d.OnDepthLimit("h1", "subtree", 20)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Diagnostics().(NoopDiagnosticHooks); !ok {
		t.Error("Diagnostics() should return NoopDiagnosticHooks by default")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customDiag := &testDiagnosticHooks{}
	SetDiagnosticHooks(customDiag)
	if Diagnostics() != customDiag {
		t.Error("SetDiagnosticHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
	if _, ok := Diagnostics().(NoopDiagnosticHooks); !ok {
		t.Error("Reset() should restore NoopDiagnosticHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testDiagnosticHooks{}
	SetDiagnosticHooks(custom)

	// Setting nil should be ignored
	SetDiagnosticHooks(nil)

	if Diagnostics() != custom {
		t.Error("SetDiagnosticHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testDiagnosticHooks struct{ NoopDiagnosticHooks }
