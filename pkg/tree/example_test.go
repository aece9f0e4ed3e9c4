package tree_test

import (
	"fmt"

	"github.com/matzehuels/kinship/pkg/tree"
)

func ExampleTree_basic() {
	// Grandfather → father → son
	t := tree.New()
	_ = t.AddNode(tree.Node{ID: "grandfather", X: 0, Y: 0})
	_ = t.AddNode(tree.Node{ID: "father", ParentID: "grandfather", X: 0, Y: 100, Generation: 1})
	_ = t.AddNode(tree.Node{ID: "son", ParentID: "father", X: 0, Y: 200, Generation: 2})

	fmt.Println("Nodes:", t.NodeCount())
	fmt.Println("Roots:", t.Roots())
	fmt.Println("Children of father:", t.Children("father"))
	// Output:
	// Nodes: 3
	// Roots: [grandfather]
	// Children of father: [son]
}

func ExampleTree_Validate() {
	// Corrupt import: two people listed as each other's father
	t := tree.New()
	_ = t.AddNode(tree.Node{ID: "a", ParentID: "b"})
	_ = t.AddNode(tree.Node{ID: "b", ParentID: "a"})

	fmt.Println(t.Validate())
	// Output:
	// parent links form a cycle
}
