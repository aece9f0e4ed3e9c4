package tree

import (
	"errors"
	"math"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Tree.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Tree.AddNode] when a node with the same
	// ID already exists in the tree.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrDanglingParent is returned by [Tree.Validate] when a node names a
	// parent that is not part of the tree.
	ErrDanglingParent = errors.New("parent node does not exist")

	// ErrParentCycle is returned by [Tree.Validate] when following parent
	// links from some node leads back to that node.
	ErrParentCycle = errors.New("parent links form a cycle")
)

// Metadata stores arbitrary key-value pairs attached to a person node, such as
// birth year or lineage tags used by tree-wide filters.
type Metadata map[string]any

// Node is one person in the family tree as seen by the highlight engine.
//
// X and Y are screen coordinates assigned by the external layout engine. They
// are NaN when the layout could not place the node; consumers must treat such
// nodes as unusable for geometry but still valid for topology.
type Node struct {
	ID         string   // Unique identifier
	ParentID   string   // Father's ID, empty for a root
	X, Y       float64  // Layout coordinates, NaN when missing
	Generation int      // Generation index assigned by the layout (0 = root)
	Label      string   // Display name (optional)
	Meta       Metadata // Arbitrary metadata (optional)
}

// IsRoot reports whether the node has no parent link.
func (n Node) IsRoot() bool { return n.ParentID == "" }

// HasPosition reports whether both coordinates are finite numbers.
func (n Node) HasPosition() bool {
	return isFinite(n.X) && isFinite(n.Y)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// View is the read-only tree the engine computes against. Implementations
// must not be mutated while a computation is running.
type View interface {
	// Node returns the node with the given ID and true, or the zero Node and
	// false when the ID is unknown.
	Node(id string) (Node, bool)

	// ForEach calls fn for every node until fn returns false. Iteration order
	// is implementation-defined.
	ForEach(fn func(Node) bool)
}

// ChildIndex is implemented by views that can list children without a full
// scan. Subtree traversal uses it when available.
type ChildIndex interface {
	Children(id string) []string
}

// Tree is an in-memory [View] over a parent-linked family tree.
//
// Parent links are stored as given: a node may name a parent that does not
// exist, and corrupt input may contain cycles. Use [Tree.Validate] to detect
// both; the engine itself tolerates them.
//
// The zero value is not usable - use New to create a Tree.
// Tree is not safe for concurrent mutation; concurrent reads are fine.
type Tree struct {
	nodes    map[string]*Node
	order    []string            // insertion order for deterministic iteration
	children map[string][]string // parentID -> child IDs
}

var (
	_ View       = (*Tree)(nil)
	_ ChildIndex = (*Tree)(nil)
)

// New creates an empty tree.
func New() *Tree {
	return &Tree{
		nodes:    make(map[string]*Node),
		children: make(map[string][]string),
	}
}

// AddNode adds a person to the tree and indexes it under its parent.
// Returns ErrInvalidNodeID if the ID is empty, or ErrDuplicateNodeID if the
// ID is already present. The parent does not need to exist yet.
func (t *Tree) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := t.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	node := &n
	t.nodes[n.ID] = node
	t.order = append(t.order, n.ID)
	if n.ParentID != "" {
		t.children[n.ParentID] = append(t.children[n.ParentID], n.ID)
	}
	return nil
}

// Node returns a copy of the node with the given ID.
func (t *Tree) Node(id string) (Node, bool) {
	n, ok := t.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// ForEach visits nodes in insertion order until fn returns false.
func (t *Tree) ForEach(fn func(Node) bool) {
	for _, id := range t.order {
		if !fn(*t.nodes[id]) {
			return
		}
	}
}

// Children returns the IDs of nodes whose ParentID is id, in insertion order.
// The returned slice should not be modified.
func (t *Tree) Children(id string) []string { return t.children[id] }

// Parent returns the parent ID of the node and whether the node has one.
func (t *Tree) Parent(id string) (string, bool) {
	n, ok := t.nodes[id]
	if !ok || n.ParentID == "" {
		return "", false
	}
	return n.ParentID, true
}

// NodeCount returns the number of nodes in the tree.
func (t *Tree) NodeCount() int { return len(t.nodes) }

// Roots returns the IDs of nodes without a parent link, in insertion order.
func (t *Tree) Roots() []string {
	var roots []string
	for _, id := range t.order {
		if t.nodes[id].ParentID == "" {
			roots = append(roots, id)
		}
	}
	return roots
}

// IDs returns all node IDs in insertion order.
func (t *Tree) IDs() []string { return slices.Clone(t.order) }

// Validate checks parent links and returns nil if the tree is well formed.
// Returns ErrDanglingParent if a node references a missing parent, or
// ErrParentCycle if parent links loop. The check is diagnostic only; the
// highlight engine bounds every walk and never requires a valid tree.
func (t *Tree) Validate() error {
	for _, id := range t.order {
		p := t.nodes[id].ParentID
		if p == "" {
			continue
		}
		if _, ok := t.nodes[p]; !ok {
			return ErrDanglingParent
		}
	}
	return t.detectCycles()
}

// detectCycles colors nodes while walking parent links. Each node has at most
// one parent, so the walk from any node is a simple chain.
func (t *Tree) detectCycles() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(t.nodes))
	for _, start := range t.order {
		if color[start] != white {
			continue
		}
		var chain []string
		id := start
		for id != "" {
			c := color[id]
			if c == gray {
				return ErrParentCycle
			}
			if c == black {
				break
			}
			color[id] = gray
			chain = append(chain, id)
			n, ok := t.nodes[id]
			if !ok {
				break
			}
			id = n.ParentID
		}
		for _, c := range chain {
			color[c] = black
		}
	}
	return nil
}
