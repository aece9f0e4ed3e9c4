package highlight_test

import (
	"fmt"

	"github.com/matzehuels/kinship/pkg/highlight"
	"github.com/matzehuels/kinship/pkg/tree"
)

func familyView() *tree.Tree {
	t := tree.New()
	_ = t.AddNode(tree.Node{ID: "1", X: 100, Y: 0})
	_ = t.AddNode(tree.Node{ID: "2", ParentID: "1", X: 50, Y: 100})
	_ = t.AddNode(tree.Node{ID: "3", ParentID: "1", X: 150, Y: 100})
	_ = t.AddNode(tree.Node{ID: "4", ParentID: "2", X: 50, Y: 200})
	_ = t.AddNode(tree.Node{ID: "5", ParentID: "3", X: 150, Y: 200})
	return t
}

func ExampleComputePath() {
	edges := highlight.ComputePath(highlight.Definition{
		Kind: highlight.KindNodeToNode,
		From: "4",
		To:   "5",
	}, familyView())

	for _, e := range edges {
		fmt.Println(e.From, "->", e.To)
	}
	// Output:
	// 4 -> 2
	// 2 -> 1
	// 1 -> 3
	// 3 -> 5
}

func ExampleAssemble() {
	reg := highlight.NewRegistry()
	reg, _, _ = reg.Add(highlight.Definition{ID: "line", Kind: highlight.KindAncestryPath, From: "4"})
	reg, _, _ = reg.Add(highlight.Definition{ID: "branch", Kind: highlight.KindSubtree, Root: "2", Priority: 1})

	segs := highlight.Aggregate(reg.Definitions(), familyView())
	data := highlight.Assemble(highlight.Cull(segs.Sorted(), nil))

	for _, rs := range data.Segments {
		fmt.Printf("%s overlapping=%v priority=%d\n", rs.Key, rs.Overlapping, rs.TopPriority)
	}
	fmt.Println("tier:", data.Tier)
	// Output:
	// 2-4 overlapping=true priority=1
	// 1-2 overlapping=false priority=0
	// tier: full
}

func ExampleRegistry_Add() {
	reg := highlight.NewRegistry(highlight.WithCapacity(1))
	reg, def, _ := reg.Add(highlight.Definition{Kind: highlight.KindTreeWide})
	fmt.Println(def.Style.Color, def.Style.Opacity, def.CreatedAt)

	_, _, err := reg.Add(highlight.Definition{Kind: highlight.KindTreeWide})
	fmt.Println(err != nil, reg.Len())
	// Output:
	// #3b82f6 0.6 1
	// true 1
}
