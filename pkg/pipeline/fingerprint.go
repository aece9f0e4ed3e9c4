package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/matzehuels/kinship/pkg/cache"
	"github.com/matzehuels/kinship/pkg/highlight"
	"github.com/matzehuels/kinship/pkg/tree"
)

// ErrUnkeyedFilter is returned by DefinitionsHash for a definition whose
// Filter has no FilterKey. Such sets are computed on every pass.
var ErrUnkeyedFilter = errors.New("filter has no key")

// definitionPrint is the hashed identity of a definition. Filters are
// functions and cannot be hashed; FilterKey stands in for them.
type definitionPrint struct {
	ID        string          `json:"id"`
	Kind      highlight.Kind  `json:"kind"`
	From      string          `json:"from,omitempty"`
	To        string          `json:"to,omitempty"`
	Root      string          `json:"root,omitempty"`
	MaxDepth  int             `json:"max_depth,omitempty"`
	FilterKey string          `json:"filter_key,omitempty"`
	Style     highlight.Style `json:"style"`
	Priority  int             `json:"priority"`
	CreatedAt int64           `json:"created_at"`
}

// DefinitionsHash fingerprints a definition set. The order of defs matters;
// pass Registry.Definitions() for a canonical order. A filter without a
// FilterKey cannot be fingerprinted and yields [ErrUnkeyedFilter].
func DefinitionsHash(defs []highlight.Definition) (string, error) {
	prints := make([]definitionPrint, len(defs))
	for i, d := range defs {
		if d.Filter != nil && d.FilterKey == "" {
			return "", fmt.Errorf("highlight %q: %w", d.ID, ErrUnkeyedFilter)
		}
		prints[i] = definitionPrint{
			ID:        d.ID,
			Kind:      d.Kind,
			From:      d.From,
			To:        d.To,
			Root:      d.Root,
			MaxDepth:  d.MaxDepth,
			FilterKey: d.FilterKey,
			Style:     d.Style,
			Priority:  d.Priority,
			CreatedAt: d.CreatedAt,
		}
	}
	return cache.HashJSON(prints)
}

// TreeHash fingerprints the parts of a view that affect highlights: IDs,
// parent links, coordinates, and the generation and metadata that filters
// read. The result does not depend on iteration order. Coordinates are written
// with strconv so NaN hashes consistently.
func TreeHash(v tree.View) string {
	var lines [][]byte
	v.ForEach(func(n tree.Node) bool {
		var b []byte
		b = append(b, n.ID...)
		b = append(b, 0)
		b = append(b, n.ParentID...)
		b = append(b, 0)
		b = strconv.AppendFloat(b, n.X, 'g', -1, 64)
		b = append(b, 0)
		b = strconv.AppendFloat(b, n.Y, 'g', -1, 64)
		b = append(b, 0)
		b = strconv.AppendInt(b, int64(n.Generation), 10)
		if len(n.Meta) > 0 {
			meta, err := json.Marshal(n.Meta)
			if err != nil {
				meta = []byte(fmt.Sprint(n.Meta))
			}
			b = append(b, 0)
			b = append(b, meta...)
		}
		lines = append(lines, b)
		return true
	})
	slices.SortFunc(lines, bytes.Compare)
	return cache.Hash(bytes.Join(lines, []byte{'\n'}))
}
