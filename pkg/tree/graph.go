package tree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
)

// =============================================================================
// Graph - Tree Serialization
// =============================================================================

// Graph is the canonical serialization format for laid-out family trees.
// It is what the layout engine hands over and what CLI tools read from disk.
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
}

// GraphNode is the wire form of [Node]. Coordinates are pointers so that a
// missing or null value can be told apart from zero.
type GraphNode struct {
	ID         string         `json:"id"`
	ParentID   string         `json:"parent_id,omitempty"`
	X          *float64       `json:"x"`
	Y          *float64       `json:"y"`
	Generation int            `json:"generation,omitempty"`
	Label      string         `json:"label,omitempty"`
	Meta       map[string]any `json:"meta,omitempty"`
}

// FromTree converts a tree to its serialization format, in insertion order.
// NaN or infinite coordinates are written as null.
func FromTree(t *Tree) Graph {
	out := Graph{Nodes: make([]GraphNode, 0, t.NodeCount())}
	t.ForEach(func(n Node) bool {
		out.Nodes = append(out.Nodes, GraphNode{
			ID:         n.ID,
			ParentID:   n.ParentID,
			X:          coord(n.X),
			Y:          coord(n.Y),
			Generation: n.Generation,
			Label:      n.Label,
			Meta:       copyMeta(n.Meta),
		})
		return true
	})
	return out
}

// ToTree converts a Graph to a Tree. Returns an error for empty or duplicate
// IDs; dangling parents and cycles are accepted (see [Tree.Validate]).
func ToTree(g Graph) (*Tree, error) {
	t := New()
	for _, gn := range g.Nodes {
		n := Node{
			ID:         gn.ID,
			ParentID:   gn.ParentID,
			X:          value(gn.X),
			Y:          value(gn.Y),
			Generation: gn.Generation,
			Label:      gn.Label,
			Meta:       copyMeta(gn.Meta),
		}
		if err := t.AddNode(n); err != nil {
			return nil, fmt.Errorf("add node %q: %w", gn.ID, err)
		}
	}
	return t, nil
}

// =============================================================================
// Serialization API
// =============================================================================

// MarshalGraph converts a tree to indented JSON bytes.
func MarshalGraph(t *Tree) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteGraph(t, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraph writes a tree as JSON to an io.Writer.
func WriteGraph(t *Tree, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromTree(t)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteGraphFile writes a tree to a JSON file.
func WriteGraphFile(t *Tree, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteGraph(t, f)
}

// ReadGraph decodes a JSON tree from an io.Reader.
func ReadGraph(r io.Reader) (*Tree, error) {
	var g Graph
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return ToTree(g)
}

// ReadGraphFile reads a JSON file and returns the decoded tree.
func ReadGraphFile(path string) (*Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadGraph(f)
}

// =============================================================================
// Internal Helpers
// =============================================================================

func coord(f float64) *float64 {
	if !isFinite(f) {
		return nil
	}
	return &f
}

func value(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

func copyMeta(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	result := make(map[string]any, len(m))
	for k, v := range m {
		result[k] = v
	}
	return result
}
