// Package pkg provides the core libraries for Kinship relationship highlighting.
//
// # Overview
//
// Kinship takes a family tree whose people already carry layout coordinates
// and answers one question per frame: which edges should be drawn highlighted,
// in which style, and in what order. The pkg directory is organized into:
//
//  1. [tree] - The laid-out tree and its JSON graph format
//  2. [highlight] - Path calculation, aggregation, culling and assembly
//  3. [pipeline] - Orchestration with memoization (registry → render data)
//  4. [export] - JSON, Graphviz DOT and SVG output
//  5. [cache], [config], [metrics], [observability] - Supporting infrastructure
//
// # Architecture
//
// The data flow of one highlight pass:
//
//	Highlight file (TOML/YAML) + tree.json
//	         ↓
//	    [highlight.Registry] (validated definitions, capacity 200)
//	         ↓
//	    [highlight.ComputePath] per definition
//	         ↓
//	    [highlight.Aggregate] (one segment per edge, contributions merged)
//	         ↓
//	    [highlight.Cull] (viewport) → [highlight.Assemble] (order, tier)
//	         ↓
//	    RenderData → JSON/DOT/SVG
//
// # Quick Start
//
//	t, _ := tree.ReadGraphFile("family.json")
//	reg := highlight.NewRegistry()
//	reg, _, _ = reg.Add(highlight.Definition{Kind: highlight.KindAncestryPath, From: "p17"})
//
//	runner := pipeline.NewRunner(cache.NewMemoryCache(64, 0), nil, nil)
//	defer runner.Close()
//	result, _ := runner.Execute(ctx, reg, t, pipeline.Options{})
//	fmt.Println(result.Render.Tier, len(result.Render.Overlapping))
//
// [tree]: github.com/matzehuels/kinship/pkg/tree
// [highlight]: github.com/matzehuels/kinship/pkg/highlight
// [pipeline]: github.com/matzehuels/kinship/pkg/pipeline
// [export]: github.com/matzehuels/kinship/pkg/export
// [cache]: github.com/matzehuels/kinship/pkg/cache
// [config]: github.com/matzehuels/kinship/pkg/config
// [metrics]: github.com/matzehuels/kinship/pkg/metrics
// [observability]: github.com/matzehuels/kinship/pkg/observability
// [highlight.Registry]: github.com/matzehuels/kinship/pkg/highlight#Registry
// [highlight.ComputePath]: github.com/matzehuels/kinship/pkg/highlight#ComputePath
// [highlight.Aggregate]: github.com/matzehuels/kinship/pkg/highlight#Aggregate
// [highlight.Cull]: github.com/matzehuels/kinship/pkg/highlight#Cull
// [highlight.Assemble]: github.com/matzehuels/kinship/pkg/highlight#Assemble
package pkg
