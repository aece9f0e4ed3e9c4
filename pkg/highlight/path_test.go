package highlight

import (
	"fmt"
	"slices"
	"testing"

	"github.com/matzehuels/kinship/pkg/tree"
)

// =============================================================================
// Fixtures
// =============================================================================

// chainTree builds 1 → 2 → ... → n with node i at (i*10, i*100).
func chainTree(t *testing.T, n int) *tree.Tree {
	t.Helper()
	tr := tree.New()
	for i := 1; i <= n; i++ {
		parent := ""
		if i > 1 {
			parent = fmt.Sprint(i - 1)
		}
		if err := tr.AddNode(tree.Node{
			ID:         fmt.Sprint(i),
			ParentID:   parent,
			X:          float64(i * 10),
			Y:          float64(i * 100),
			Generation: i - 1,
		}); err != nil {
			t.Fatalf("AddNode: %v", err)
		}
	}
	return tr
}

// familyTree builds: 1 has children 2 and 3; 2 has child 4; 3 has child 5.
func familyTree(t *testing.T) *tree.Tree {
	t.Helper()
	tr := tree.New()
	for _, n := range []tree.Node{
		{ID: "1", X: 100, Y: 0},
		{ID: "2", ParentID: "1", X: 50, Y: 100, Generation: 1},
		{ID: "3", ParentID: "1", X: 150, Y: 100, Generation: 1},
		{ID: "4", ParentID: "2", X: 50, Y: 200, Generation: 2},
		{ID: "5", ParentID: "3", X: 150, Y: 200, Generation: 2},
	} {
		if err := tr.AddNode(n); err != nil {
			t.Fatalf("AddNode: %v", err)
		}
	}
	return tr
}

// cyclicTree builds a → b → c → a through parent links, plus d under a.
func cyclicTree(t *testing.T) *tree.Tree {
	t.Helper()
	tr := tree.New()
	for _, n := range []tree.Node{
		{ID: "a", ParentID: "c"},
		{ID: "b", ParentID: "a"},
		{ID: "c", ParentID: "b"},
		{ID: "d", ParentID: "a"},
	} {
		if err := tr.AddNode(n); err != nil {
			t.Fatalf("AddNode: %v", err)
		}
	}
	return tr
}

// mapView is a View without a ChildIndex, with unordered iteration.
type mapView map[string]tree.Node

func (m mapView) Node(id string) (tree.Node, bool) {
	n, ok := m[id]
	return n, ok
}

func (m mapView) ForEach(fn func(tree.Node) bool) {
	for _, n := range m {
		if !fn(n) {
			return
		}
	}
}

func toMapView(tr *tree.Tree) mapView {
	m := make(mapView)
	tr.ForEach(func(n tree.Node) bool {
		m[n.ID] = n
		return true
	})
	return m
}

// recorder captures diagnostic events.
type recorder struct {
	dropped []string
	panics  []string
	depth   int
}

func (r *recorder) OnEdgeDropped(id, from, to, reason string) {
	r.dropped = append(r.dropped, from+"-"+to+":"+reason)
}

func (r *recorder) OnFilterPanic(id, child, parent string, recovered any) {
	r.panics = append(r.panics, child+"-"+parent)
}

func (r *recorder) OnDepthLimit(id, kind string, limit int) { r.depth++ }

func edgeSet(edges []Edge) []SegmentKey {
	keys := make([]SegmentKey, len(edges))
	for i, e := range edges {
		keys[i] = e.Key()
	}
	slices.SortFunc(keys, SegmentKey.Compare)
	return keys
}

// =============================================================================
// AncestryPath
// =============================================================================

func TestAncestryPath(t *testing.T) {
	tr := chainTree(t, 4)

	tests := []struct {
		name     string
		from     string
		maxDepth int
		want     []Edge
	}{
		{"max depth 2", "4", 2, []Edge{{"4", "3"}, {"3", "2"}}},
		{"max depth 1", "4", 1, []Edge{{"4", "3"}}},
		{"unbounded", "4", 0, []Edge{{"4", "3"}, {"3", "2"}, {"2", "1"}}},
		{"depth beyond root", "3", 10, []Edge{{"3", "2"}, {"2", "1"}}},
		{"root", "1", 0, nil},
		{"missing node", "ghost", 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputePath(Definition{Kind: KindAncestryPath, From: tt.from, MaxDepth: tt.maxDepth}, tr)
			if !slices.Equal(got, tt.want) {
				t.Errorf("ComputePath() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAncestryPathHardLimit(t *testing.T) {
	tr := chainTree(t, 40)
	rec := &recorder{}

	got := ComputePath(Definition{Kind: KindAncestryPath, From: "40", MaxDepth: 35}, tr, WithDiagnostics(rec))
	if len(got) != HardDepthLimit {
		t.Errorf("len(path) = %d, want %d", len(got), HardDepthLimit)
	}
	if rec.depth != 1 {
		t.Errorf("depth limit events = %d, want 1", rec.depth)
	}
}

func TestAncestryPathCycleTerminates(t *testing.T) {
	got := ComputePath(Definition{Kind: KindAncestryPath, From: "a"}, cyclicTree(t))
	if len(got) != HardDepthLimit {
		t.Errorf("len(path) = %d, want %d", len(got), HardDepthLimit)
	}
}

func TestAncestryPathDanglingParent(t *testing.T) {
	tr := tree.New()
	_ = tr.AddNode(tree.Node{ID: "2", ParentID: "1"})
	_ = tr.AddNode(tree.Node{ID: "3", ParentID: "2"})

	got := ComputePath(Definition{Kind: KindAncestryPath, From: "3"}, tr)
	want := []Edge{{"3", "2"}}
	if !slices.Equal(got, want) {
		t.Errorf("ComputePath() = %v, want %v", got, want)
	}
}

// =============================================================================
// ConnectionOnly
// =============================================================================

func TestConnectionOnly(t *testing.T) {
	tr := familyTree(t)

	tests := []struct {
		name     string
		from, to string
		want     int
	}{
		{"parent to child", "1", "2", 1},
		{"child to parent", "4", "2", 1},
		{"siblings", "2", "3", 0},
		{"grandparent", "1", "4", 0},
		{"same node", "2", "2", 0},
		{"missing", "1", "ghost", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputePath(Definition{Kind: KindConnectionOnly, From: tt.from, To: tt.to}, tr)
			if len(got) != tt.want {
				t.Fatalf("len(path) = %d, want %d (%v)", len(got), tt.want, got)
			}
			if tt.want == 1 && got[0] != (Edge{tt.from, tt.to}) {
				t.Errorf("edge = %v, want %v", got[0], Edge{tt.from, tt.to})
			}
		})
	}
}

// =============================================================================
// NodeToNode
// =============================================================================

func TestNodeToNode(t *testing.T) {
	tr := familyTree(t)

	got := ComputePath(Definition{Kind: KindNodeToNode, From: "4", To: "5"}, tr)
	want := []Edge{{"4", "2"}, {"2", "1"}, {"1", "3"}, {"3", "5"}}
	if !slices.Equal(got, want) {
		t.Errorf("NodeToNode(4,5) = %v, want %v", got, want)
	}

	reverse := ComputePath(Definition{Kind: KindNodeToNode, From: "5", To: "4"}, tr)
	if !slices.Equal(edgeSet(got), edgeSet(reverse)) {
		t.Errorf("NodeToNode(5,4) edge set = %v, want %v", edgeSet(reverse), edgeSet(got))
	}
}

func TestNodeToNodeCases(t *testing.T) {
	tr := familyTree(t)

	tests := []struct {
		name     string
		from, to string
		want     []Edge
	}{
		{"ancestor and descendant", "1", "4", []Edge{{"1", "2"}, {"2", "4"}}},
		{"descendant and ancestor", "4", "1", []Edge{{"4", "2"}, {"2", "1"}}},
		{"siblings", "2", "3", []Edge{{"2", "1"}, {"1", "3"}}},
		{"same node", "4", "4", []Edge{}},
		{"missing node", "4", "ghost", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputePath(Definition{Kind: KindNodeToNode, From: tt.from, To: tt.to}, tr)
			if len(got) != len(tt.want) || (len(got) > 0 && !slices.Equal(got, tt.want)) {
				t.Errorf("ComputePath() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNodeToNodeDisconnected(t *testing.T) {
	tr := familyTree(t)
	_ = tr.AddNode(tree.Node{ID: "x"})
	_ = tr.AddNode(tree.Node{ID: "y", ParentID: "x"})

	if got := ComputePath(Definition{Kind: KindNodeToNode, From: "4", To: "y"}, tr); len(got) != 0 {
		t.Errorf("disconnected path = %v, want empty", got)
	}
}

func TestNodeToNodeBeyondDepthLimit(t *testing.T) {
	// Two branches of 21 generations each below a shared root: the root is
	// out of reach within HardDepthLimit steps.
	tr := tree.New()
	_ = tr.AddNode(tree.Node{ID: "root"})
	for _, branch := range []string{"l", "r"} {
		parent := "root"
		for i := 0; i < HardDepthLimit+1; i++ {
			id := fmt.Sprintf("%s%d", branch, i)
			_ = tr.AddNode(tree.Node{ID: id, ParentID: parent})
			parent = id
		}
	}
	if got := ComputePath(Definition{Kind: KindNodeToNode, From: "l20", To: "r20"}, tr); len(got) != 0 {
		t.Errorf("path beyond limit = %v, want empty", got)
	}
	if got := ComputePath(Definition{Kind: KindNodeToNode, From: "l5", To: "r5"}, tr); len(got) != 12 {
		t.Errorf("len(path) = %d, want 12", len(got))
	}
}

func TestLowestCommonAncestor(t *testing.T) {
	tr := familyTree(t)

	tests := []struct {
		a, b   string
		want   string
		wantOK bool
	}{
		{"4", "5", "1", true},
		{"4", "2", "2", true},
		{"2", "4", "2", true},
		{"4", "4", "4", true},
		{"4", "ghost", "", false},
	}
	for _, tt := range tests {
		got, ok := LowestCommonAncestor(tt.a, tt.b, tr)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("LowestCommonAncestor(%s, %s) = %q, %v; want %q, %v", tt.a, tt.b, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestNodeToNodeCycleTerminates(t *testing.T) {
	got := ComputePath(Definition{Kind: KindNodeToNode, From: "d", To: "b"}, cyclicTree(t))
	want := []SegmentKey{KeyOf("a", "b"), KeyOf("a", "d")}
	if !slices.Equal(edgeSet(got), want) {
		t.Errorf("edge set = %v, want %v", edgeSet(got), want)
	}
}

// =============================================================================
// TreeWide
// =============================================================================

func TestTreeWide(t *testing.T) {
	tr := familyTree(t)

	got := ComputePath(Definition{Kind: KindTreeWide}, tr)
	want := []Edge{{"2", "1"}, {"3", "1"}, {"4", "2"}, {"5", "3"}}
	if !slices.Equal(got, want) {
		t.Errorf("TreeWide() = %v, want %v", got, want)
	}
}

func TestTreeWideGenerationFilter(t *testing.T) {
	tr := familyTree(t)
	_ = tr.AddNode(tree.Node{ID: "6", ParentID: "3", Generation: 2})

	filter := func(child, parent tree.Node) bool { return child.Generation == 2 }
	got := ComputePath(Definition{Kind: KindTreeWide, Filter: filter}, tr)
	want := []Edge{{"4", "2"}, {"5", "3"}, {"6", "3"}}
	if !slices.Equal(got, want) {
		t.Errorf("TreeWide(gen=2) = %v, want %v", got, want)
	}
}

func TestTreeWidePanickingFilter(t *testing.T) {
	tr := familyTree(t)
	rec := &recorder{}

	filter := func(child, parent tree.Node) bool {
		if child.ID == "4" {
			panic("bad record")
		}
		return true
	}
	got := ComputePath(Definition{ID: "h", Kind: KindTreeWide, Filter: filter}, tr, WithDiagnostics(rec))
	want := []Edge{{"2", "1"}, {"3", "1"}, {"5", "3"}}
	if !slices.Equal(got, want) {
		t.Errorf("TreeWide() = %v, want %v", got, want)
	}
	if !slices.Equal(rec.panics, []string{"4-2"}) {
		t.Errorf("filter panics = %v, want [4-2]", rec.panics)
	}
}

func TestTreeWideSkipsDanglingParents(t *testing.T) {
	tr := tree.New()
	_ = tr.AddNode(tree.Node{ID: "1"})
	_ = tr.AddNode(tree.Node{ID: "2", ParentID: "1"})
	_ = tr.AddNode(tree.Node{ID: "3", ParentID: "deleted"})

	got := ComputePath(Definition{Kind: KindTreeWide}, tr)
	if !slices.Equal(got, []Edge{{"2", "1"}}) {
		t.Errorf("TreeWide() = %v, want [{2 1}]", got)
	}
}

func TestTreeWideUnorderedView(t *testing.T) {
	tr := familyTree(t)
	want := ComputePath(Definition{Kind: KindTreeWide}, tr)
	for i := 0; i < 5; i++ {
		if got := ComputePath(Definition{Kind: KindTreeWide}, toMapView(tr)); !slices.Equal(got, want) {
			t.Fatalf("unordered view gave %v, want %v", got, want)
		}
	}
}

// =============================================================================
// Subtree
// =============================================================================

func TestSubtree(t *testing.T) {
	tr := familyTree(t)

	tests := []struct {
		name     string
		root     string
		maxDepth int
		want     []Edge
	}{
		{"whole tree", "1", 0, []Edge{{"1", "2"}, {"2", "4"}, {"1", "3"}, {"3", "5"}}},
		{"one generation", "1", 1, []Edge{{"1", "2"}, {"1", "3"}}},
		{"branch", "3", 0, []Edge{{"3", "5"}}},
		{"leaf", "5", 0, nil},
		{"missing root", "ghost", 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputePath(Definition{Kind: KindSubtree, Root: tt.root, MaxDepth: tt.maxDepth}, tr)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Subtree() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSubtreeWithoutChildIndex(t *testing.T) {
	tr := familyTree(t)
	want := ComputePath(Definition{Kind: KindSubtree, Root: "1"}, tr)
	got := ComputePath(Definition{Kind: KindSubtree, Root: "1"}, toMapView(tr))
	if !slices.Equal(edgeSet(got), edgeSet(want)) {
		t.Errorf("Subtree() on map view = %v, want %v", edgeSet(got), edgeSet(want))
	}
}

func TestSubtreeCycleTerminates(t *testing.T) {
	got := ComputePath(Definition{Kind: KindSubtree, Root: "a"}, cyclicTree(t))
	want := []SegmentKey{KeyOf("a", "b"), KeyOf("a", "d"), KeyOf("b", "c")}
	if !slices.Equal(edgeSet(got), want) {
		t.Errorf("edge set = %v, want %v", edgeSet(got), want)
	}
}

func TestSubtreeHardLimit(t *testing.T) {
	tr := chainTree(t, 30)
	rec := &recorder{}

	got := ComputePath(Definition{Kind: KindSubtree, Root: "1", MaxDepth: 25}, tr, WithDiagnostics(rec))
	if len(got) != HardDepthLimit {
		t.Errorf("len(path) = %d, want %d", len(got), HardDepthLimit)
	}
	if rec.depth != 1 {
		t.Errorf("depth limit events = %d, want 1", rec.depth)
	}
}

func TestUnknownKind(t *testing.T) {
	if got := ComputePath(Definition{Kind: "spiral"}, familyTree(t)); got != nil {
		t.Errorf("unknown kind path = %v, want nil", got)
	}
}
