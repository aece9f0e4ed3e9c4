package highlight

import (
	"bytes"
	"math"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kinship/pkg/observability"
	"github.com/matzehuels/kinship/pkg/tree"
)

func styled(def Definition, id string, createdAt int64) Definition {
	def.ID = id
	def.CreatedAt = createdAt
	def.Style = def.Style.WithDefaults()
	return def
}

func TestKeyOf(t *testing.T) {
	if KeyOf("b", "a") != KeyOf("a", "b") {
		t.Errorf("KeyOf is not symmetric")
	}
	if k := KeyOf("b", "a"); k.A != "a" || k.B != "b" {
		t.Errorf("KeyOf(b, a) = %+v, want {a b}", k)
	}
}

func TestBoundsOf(t *testing.T) {
	got := BoundsOf(10, 200, 5, 100)
	want := Bounds{MinX: 5, MaxX: 10, MinY: 100, MaxY: 200}
	if got != want {
		t.Errorf("BoundsOf() = %+v, want %+v", got, want)
	}
}

func TestAggregateSharedEdge(t *testing.T) {
	tr := familyTree(t)
	defs := []Definition{
		styled(Definition{Kind: KindAncestryPath, From: "4"}, "up", 1),
		styled(Definition{Kind: KindSubtree, Root: "1", Style: Style{Color: "#ff0000"}}, "down", 2),
	}

	segs := Aggregate(defs, tr)
	if len(segs) != 4 {
		t.Fatalf("len(segs) = %d, want 4", len(segs))
	}

	shared := segs[KeyOf("2", "4")]
	if shared == nil {
		t.Fatal("segment 2-4 missing")
	}
	if len(shared.Contributions) != 2 {
		t.Fatalf("contributions = %d, want 2", len(shared.Contributions))
	}
	if shared.Contributions[0].HighlightID != "up" || shared.Contributions[1].HighlightID != "down" {
		t.Errorf("contribution order = %v", shared.Contributions)
	}
	if shared.Contributions[1].Color != "#ff0000" {
		t.Errorf("contribution color = %q, want #ff0000", shared.Contributions[1].Color)
	}
	if got := segs.OverlapCount(); got != 2 {
		t.Errorf("OverlapCount() = %d, want 2", got)
	}
	if segs[KeyOf("1", "3")].Overlapping() {
		t.Error("segment 1-3 should not overlap")
	}
}

func TestAggregateBounds(t *testing.T) {
	segs := Aggregate([]Definition{styled(Definition{Kind: KindConnectionOnly, From: "4", To: "2"}, "h", 1)}, familyTree(t))
	seg := segs[KeyOf("2", "4")]
	if seg == nil {
		t.Fatal("segment missing")
	}
	want := Bounds{MinX: 50, MaxX: 50, MinY: 100, MaxY: 200}
	if seg.Bounds != want {
		t.Errorf("Bounds = %+v, want %+v", seg.Bounds, want)
	}
	if seg.From != "4" || seg.To != "2" {
		t.Errorf("endpoints = %s,%s, want 4,2", seg.From, seg.To)
	}
}

func TestAggregateDeduplicatesWithinHighlight(t *testing.T) {
	// On a cycle the ancestry walk repeats edges until the depth limit.
	segs := Aggregate([]Definition{styled(Definition{Kind: KindAncestryPath, From: "a"}, "h", 1)}, positionedCycle(t))
	if len(segs) != 3 {
		t.Fatalf("len(segs) = %d, want 3", len(segs))
	}
	for key, seg := range segs {
		if len(seg.Contributions) != 1 {
			t.Errorf("segment %s has %d contributions, want 1", key, len(seg.Contributions))
		}
	}
}

func positionedCycle(t *testing.T) *tree.Tree {
	t.Helper()
	tr := tree.New()
	for i, n := range []tree.Node{
		{ID: "a", ParentID: "c"},
		{ID: "b", ParentID: "a"},
		{ID: "c", ParentID: "b"},
	} {
		n.X, n.Y = float64(i), float64(i)
		_ = tr.AddNode(n)
	}
	return tr
}

func TestAggregateDropsInvalidGeometry(t *testing.T) {
	tr := tree.New()
	_ = tr.AddNode(tree.Node{ID: "1", X: 0, Y: 0})
	_ = tr.AddNode(tree.Node{ID: "2", ParentID: "1", X: math.NaN(), Y: 10})
	_ = tr.AddNode(tree.Node{ID: "3", ParentID: "1", X: 10, Y: math.Inf(1)})
	_ = tr.AddNode(tree.Node{ID: "4", ParentID: "1", X: 20, Y: 10})

	rec := &recorder{}
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.WarnLevel})

	segs := Aggregate([]Definition{styled(Definition{Kind: KindTreeWide}, "all", 1)}, tr,
		WithDiagnostics(rec), WithLogger(logger))

	if len(segs) != 1 || segs[KeyOf("1", "4")] == nil {
		t.Errorf("segments = %v, want only 1-4", segs.Sorted())
	}
	want := []string{
		"2-1:" + observability.ReasonInvalidPosition,
		"3-1:" + observability.ReasonInvalidPosition,
	}
	if !slices.Equal(rec.dropped, want) {
		t.Errorf("dropped = %v, want %v", rec.dropped, want)
	}
	if !strings.Contains(buf.String(), "edges dropped") {
		t.Errorf("expected warn summary in log, got %q", buf.String())
	}
}

func TestAggregateEmpty(t *testing.T) {
	if segs := Aggregate(nil, familyTree(t)); len(segs) != 0 {
		t.Errorf("len(segs) = %d, want 0", len(segs))
	}
	defs := []Definition{styled(Definition{Kind: KindAncestryPath, From: "ghost"}, "h", 1)}
	if segs := Aggregate(defs, familyTree(t)); len(segs) != 0 {
		t.Errorf("missing node produced %d segments", len(segs))
	}
}

func TestSegmentMapSorted(t *testing.T) {
	segs := Aggregate([]Definition{styled(Definition{Kind: KindTreeWide}, "all", 1)}, familyTree(t))
	var got []SegmentKey
	for _, seg := range segs.Sorted() {
		got = append(got, seg.Key)
	}
	want := []SegmentKey{KeyOf("1", "2"), KeyOf("1", "3"), KeyOf("2", "4"), KeyOf("3", "5")}
	if !slices.Equal(got, want) {
		t.Errorf("Sorted() keys = %v, want %v", got, want)
	}
}

func TestSegmentMapRemove(t *testing.T) {
	tr := familyTree(t)
	defs := []Definition{
		styled(Definition{Kind: KindConnectionOnly, From: "2", To: "4"}, "x", 1),
		styled(Definition{Kind: KindAncestryPath, From: "4", MaxDepth: 1}, "y", 2),
	}
	segs := Aggregate(defs, tr)
	key := KeyOf("2", "4")
	if len(segs[key].Contributions) != 2 {
		t.Fatalf("contributions = %d, want 2", len(segs[key].Contributions))
	}

	withoutX := segs.Remove("x")
	if got := withoutX[key].Contributions; len(got) != 1 || got[0].HighlightID != "y" {
		t.Errorf("after removing x: %v, want [y]", got)
	}
	withoutY := segs.Remove("y")
	if got := withoutY[key].Contributions; len(got) != 1 || got[0].HighlightID != "x" {
		t.Errorf("after removing y: %v, want [x]", got)
	}
	if both := withoutX.Remove("y"); len(both) != 0 {
		t.Errorf("after removing both: %d segments, want 0", len(both))
	}

	// Receiver untouched.
	if len(segs[key].Contributions) != 2 {
		t.Error("Remove mutated the receiver")
	}
}

func TestSegmentKeyString(t *testing.T) {
	tests := []struct {
		from, to string
		want     string
	}{
		{"1", "2", "1-2"},
		{"2", "1", "1-2"},
		{"p17", "p4", "p17-p4"},
	}
	for _, tt := range tests {
		if got := KeyOf(tt.from, tt.to).String(); got != tt.want {
			t.Errorf("KeyOf(%q, %q).String() = %q, want %q", tt.from, tt.to, got, tt.want)
		}
	}
}
