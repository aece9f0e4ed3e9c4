package highlight

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/matzehuels/kinship/pkg/tree"
)

// Edge is one directed step between adjacent people in the tree. Paths are
// ordered edge lists; orientation follows the walk (child to parent when
// climbing, parent to child when descending).
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Key returns the canonical segment key of the edge.
func (e Edge) Key() SegmentKey { return KeyOf(e.From, e.To) }

// ComputePath returns the ordered edges realizing def over v.
//
// It never fails: unknown nodes, dangling parents and disconnected people all
// yield an empty path, and every walk stops at [HardDepthLimit]. Coordinates
// are not inspected here; see [Aggregate].
func ComputePath(def Definition, v tree.View, opts ...Option) []Edge {
	s := newSettings(opts)
	switch def.Kind {
	case KindAncestryPath:
		return ancestryPath(def, v, s)
	case KindConnectionOnly:
		return connectionOnly(def, v)
	case KindNodeToNode:
		return nodeToNode(def, v, s)
	case KindTreeWide:
		return treeWide(def, v, s)
	case KindSubtree:
		return subtree(def, v, s)
	default:
		return nil
	}
}

// ancestryPath climbs father links from def.From. The walk stops before the
// step that would reach the depth limit, so MaxDepth=1 yields one edge.
// There is no visited set here: on cyclic data the walk repeats edges until
// the limit and aggregation collapses the duplicates.
func ancestryPath(def Definition, v tree.View, s *settings) []Edge {
	cur, ok := v.Node(def.From)
	if !ok {
		return nil
	}
	limit := def.depthLimit()

	var edges []Edge
	for depth := 0; cur.ParentID != ""; depth++ {
		if depth >= limit {
			if limit == HardDepthLimit {
				s.depthLimitHit(def, limit)
			}
			break
		}
		parent, ok := v.Node(cur.ParentID)
		if !ok {
			break
		}
		edges = append(edges, Edge{From: cur.ID, To: parent.ID})
		cur = parent
	}
	return edges
}

// connectionOnly yields the single edge between From and To when one is the
// other's father, checked in both directions.
func connectionOnly(def Definition, v tree.View) []Edge {
	if def.From == def.To {
		return nil
	}
	a, okA := v.Node(def.From)
	b, okB := v.Node(def.To)
	if !okA || !okB {
		return nil
	}
	if a.ParentID == b.ID || b.ParentID == a.ID {
		return []Edge{{From: a.ID, To: b.ID}}
	}
	return nil
}

// nodeToNode joins From and To through their lowest common ancestor: edges
// climbing from From to the ancestor, then edges descending to To.
func nodeToNode(def Definition, v tree.View, s *settings) []Edge {
	chainA := ancestorChain(def.From, v, def, s)
	chainB := ancestorChain(def.To, v, def, s)
	if len(chainA) == 0 || len(chainB) == 0 {
		return nil
	}
	i, j, ok := meet(chainA, chainB)
	if !ok {
		return nil
	}

	edges := make([]Edge, 0, i+j)
	for k := 0; k < i; k++ {
		edges = append(edges, Edge{From: chainA[k], To: chainA[k+1]})
	}
	for k := j - 1; k >= 0; k-- {
		edges = append(edges, Edge{From: chainB[k+1], To: chainB[k]})
	}
	return edges
}

// LowestCommonAncestor returns the closest person that is an ancestor of (or
// equal to) both a and b, searching at most HardDepthLimit generations up
// from each. It reports false when either person is unknown or no shared
// ancestor lies within the bound.
func LowestCommonAncestor(a, b string, v tree.View) (string, bool) {
	s := newSettings(nil)
	def := Definition{Kind: KindNodeToNode, From: a, To: b}
	chainA := ancestorChain(a, v, def, s)
	chainB := ancestorChain(b, v, def, s)
	i, _, ok := meet(chainA, chainB)
	if !ok {
		return "", false
	}
	return chainA[i], true
}

// ancestorChain lists id followed by its ancestors, nearest first, taking at
// most HardDepthLimit steps. A repeated ID ends the chain so cyclic data
// cannot produce a chain that meets itself.
func ancestorChain(id string, v tree.View, def Definition, s *settings) []string {
	cur, ok := v.Node(id)
	if !ok {
		return nil
	}
	chain := []string{cur.ID}
	seen := map[string]bool{cur.ID: true}
	for steps := 0; cur.ParentID != ""; steps++ {
		if steps >= HardDepthLimit {
			s.depthLimitHit(def, HardDepthLimit)
			break
		}
		if seen[cur.ParentID] {
			break
		}
		parent, ok := v.Node(cur.ParentID)
		if !ok {
			break
		}
		chain = append(chain, parent.ID)
		seen[parent.ID] = true
		cur = parent
	}
	return chain
}

// meet finds the first entry of a that also occurs in b. Because a is ordered
// nearest first, that entry is the deepest shared ancestor. It returns the
// positions in both chains.
func meet(a, b []string) (int, int, bool) {
	pos := make(map[string]int, len(b))
	for j, id := range b {
		pos[id] = j
	}
	for i, id := range a {
		if j, ok := pos[id]; ok {
			return i, j, true
		}
	}
	return 0, 0, false
}

// treeWide emits (child, parent) for every node with a resolvable father,
// filtered by def.Filter when set. Output is sorted by child ID so that views
// with unordered iteration still give stable results.
func treeWide(def Definition, v tree.View, s *settings) []Edge {
	var edges []Edge
	v.ForEach(func(n tree.Node) bool {
		if n.ParentID == "" {
			return true
		}
		parent, ok := v.Node(n.ParentID)
		if !ok {
			return true
		}
		if def.Filter != nil && !s.runFilter(def, n, parent) {
			return true
		}
		edges = append(edges, Edge{From: n.ID, To: parent.ID})
		return true
	})
	slices.SortFunc(edges, func(a, b Edge) int {
		if c := cmp.Compare(a.From, b.From); c != 0 {
			return c
		}
		return cmp.Compare(a.To, b.To)
	})
	return edges
}

// runFilter invokes the user filter, mapping a panic to exclusion.
func (s *settings) runFilter(def Definition, child, parent tree.Node) (keep bool) {
	defer func() {
		if r := recover(); r != nil {
			keep = false
			s.diag.OnFilterPanic(def.ID, child.ID, parent.ID, r)
			s.logger.Warn("highlight filter panicked, edge excluded",
				"highlight", def.ID,
				"child", child.ID,
				"parent", parent.ID,
				"panic", fmt.Sprint(r))
		}
	}()
	return def.Filter(child, parent)
}

// subtree walks descendants of def.Root depth-first, emitting (parent, child)
// edges in pre-order. A visited set prevents revisits; independently the
// generation counter never exceeds HardDepthLimit.
func subtree(def Definition, v tree.View, s *settings) []Edge {
	if _, ok := v.Node(def.Root); !ok {
		return nil
	}
	children := childLookup(v)
	limit := def.depthLimit()

	type frame struct {
		id, parent string
		depth      int
	}
	stack := []frame{{id: def.Root}}
	visited := make(map[string]bool)
	var edges []Edge
	capped := false

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[f.id] {
			continue
		}
		visited[f.id] = true
		if f.parent != "" {
			edges = append(edges, Edge{From: f.parent, To: f.id})
		}

		kids := children(f.id)
		if f.depth >= limit {
			if f.depth >= HardDepthLimit && len(kids) > 0 {
				capped = true
			}
			continue
		}
		for i := len(kids) - 1; i >= 0; i-- {
			if !visited[kids[i]] {
				stack = append(stack, frame{id: kids[i], parent: f.id, depth: f.depth + 1})
			}
		}
	}
	if capped {
		s.depthLimitHit(def, HardDepthLimit)
	}
	return edges
}

// childLookup returns a children function for v, using its ChildIndex when
// available and otherwise indexing parent links in one pass.
func childLookup(v tree.View) func(string) []string {
	if ci, ok := v.(tree.ChildIndex); ok {
		return ci.Children
	}
	index := make(map[string][]string)
	v.ForEach(func(n tree.Node) bool {
		if n.ParentID != "" {
			index[n.ParentID] = append(index[n.ParentID], n.ID)
		}
		return true
	})
	for _, kids := range index {
		slices.Sort(kids)
	}
	return func(id string) []string { return index[id] }
}

func (s *settings) depthLimitHit(def Definition, limit int) {
	s.diag.OnDepthLimit(def.ID, string(def.Kind), limit)
	s.logger.Debug("walk stopped at depth limit",
		"highlight", def.ID,
		"kind", def.Kind,
		"limit", limit)
}
