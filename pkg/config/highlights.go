package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	kerrors "github.com/matzehuels/kinship/pkg/errors"
	"github.com/matzehuels/kinship/pkg/highlight"
	"github.com/matzehuels/kinship/pkg/tree"
)

// HighlightFile is a declarative list of highlight definitions.
//
// TOML:
//
//	[[highlight]]
//	kind = "ancestry_path"
//	from = "p17"
//	max_depth = 4
//	style = { color = "#f59e0b", opacity = 0.8 }
//
// YAML:
//
//	highlight:
//	  - kind: tree_wide
//	    filter: { meta_key: house, meta_value: York }
type HighlightFile struct {
	Highlights []HighlightSpec `toml:"highlight" yaml:"highlight"`
}

// HighlightSpec is one definition as written in a file.
type HighlightSpec struct {
	ID       string          `toml:"id,omitempty" yaml:"id,omitempty"`
	Kind     string          `toml:"kind" yaml:"kind"`
	From     string          `toml:"from,omitempty" yaml:"from,omitempty"`
	To       string          `toml:"to,omitempty" yaml:"to,omitempty"`
	Root     string          `toml:"root,omitempty" yaml:"root,omitempty"`
	MaxDepth int             `toml:"max_depth,omitempty" yaml:"max_depth,omitempty"`
	Priority int             `toml:"priority,omitempty" yaml:"priority,omitempty"`
	Style    highlight.Style `toml:"style,omitempty" yaml:"style,omitempty"`
	Filter   *FilterSpec     `toml:"filter,omitempty" yaml:"filter,omitempty"`
}

// FilterSpec selects tree-wide edges by properties of the child node. All
// set fields must match.
type FilterSpec struct {
	Generation    *int   `toml:"generation,omitempty" yaml:"generation,omitempty"`
	MinGeneration *int   `toml:"min_generation,omitempty" yaml:"min_generation,omitempty"`
	MaxGeneration *int   `toml:"max_generation,omitempty" yaml:"max_generation,omitempty"`
	MetaKey       string `toml:"meta_key,omitempty" yaml:"meta_key,omitempty"`
	MetaValue     string `toml:"meta_value,omitempty" yaml:"meta_value,omitempty"`
}

// Key is a canonical encoding of the filter. Specs selecting the same edges
// by the same fields share a key; a nil spec has none.
func (f *FilterSpec) Key() string {
	if f == nil {
		return ""
	}
	bound := func(p *int) string {
		if p == nil {
			return "*"
		}
		return strconv.Itoa(*p)
	}
	return "generation=" + bound(f.Generation) +
		";min=" + bound(f.MinGeneration) +
		";max=" + bound(f.MaxGeneration) +
		";meta=" + strconv.Quote(f.MetaKey) + ":" + strconv.Quote(f.MetaValue)
}

// Compile returns the filter function. A nil spec compiles to nil, which
// includes every edge.
func (f *FilterSpec) Compile() highlight.Filter {
	if f == nil {
		return nil
	}
	spec := *f
	return func(child, _ tree.Node) bool {
		g := child.Generation
		if spec.Generation != nil && g != *spec.Generation {
			return false
		}
		if spec.MinGeneration != nil && g < *spec.MinGeneration {
			return false
		}
		if spec.MaxGeneration != nil && g > *spec.MaxGeneration {
			return false
		}
		if spec.MetaKey != "" {
			v, ok := child.Meta[spec.MetaKey]
			if !ok {
				return false
			}
			if spec.MetaValue != "" && fmt.Sprint(v) != spec.MetaValue {
				return false
			}
		}
		return true
	}
}

// Definition converts the spec. Style fields left unset fall back to base.
func (s HighlightSpec) Definition(base highlight.Style) (highlight.Definition, error) {
	kind, err := highlight.ParseKind(s.Kind)
	if err != nil {
		return highlight.Definition{}, err
	}
	if s.Filter != nil && kind != highlight.KindTreeWide {
		return highlight.Definition{}, kerrors.New(kerrors.ErrCodeInvalidHighlight,
			"filter is only valid for %s highlights", highlight.KindTreeWide)
	}
	ids := [][2]string{{"id", s.ID}, {"from", s.From}, {"to", s.To}, {"root", s.Root}}
	if s.Filter != nil {
		ids = append(ids, [2]string{"meta_key", s.Filter.MetaKey})
	}
	for _, f := range ids {
		if err := kerrors.ValidateOptionalID(f[0], f[1]); err != nil {
			return highlight.Definition{}, err
		}
	}
	style := s.Style
	if style.Color == "" {
		style.Color = base.Color
	}
	if style.Opacity == 0 {
		style.Opacity = base.Opacity
	}
	if style.StrokeWidth == 0 {
		style.StrokeWidth = base.StrokeWidth
	}
	return highlight.Definition{
		ID:        s.ID,
		Kind:      kind,
		From:      s.From,
		To:        s.To,
		Root:      s.Root,
		MaxDepth:  s.MaxDepth,
		Filter:    s.Filter.Compile(),
		FilterKey: s.Filter.Key(),
		Style:     style,
		Priority:  s.Priority,
	}, nil
}

// Registry adds every spec to a new registry in file order.
func (f HighlightFile) Registry(base highlight.Style, opts ...highlight.RegistryOption) (highlight.Registry, error) {
	reg := highlight.NewRegistry(opts...)
	for i, spec := range f.Highlights {
		def, err := spec.Definition(base)
		if err != nil {
			return reg, kerrors.Wrap(kerrors.GetCode(err), err, "highlight %d", i+1)
		}
		if reg, _, err = reg.Add(def); err != nil {
			return reg, kerrors.Wrap(kerrors.GetCode(err), err, "highlight %d", i+1)
		}
	}
	return reg, nil
}

// LoadHighlights reads a TOML or YAML highlight file.
func LoadHighlights(path string) (*HighlightFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeNotFound, err, "read highlights")
	}
	var f HighlightFile
	if err := decode(path, data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// SaveHighlights writes f to path, as YAML for .yaml/.yml and TOML otherwise.
func SaveHighlights(path string, f *HighlightFile) error {
	var buf bytes.Buffer
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return kerrors.Wrap(kerrors.ErrCodeInternal, err, "encode highlights")
		}
		_ = enc.Close()
	default:
		if err := toml.NewEncoder(&buf).Encode(f); err != nil {
			return kerrors.Wrap(kerrors.ErrCodeInternal, err, "encode highlights")
		}
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return kerrors.Wrap(kerrors.ErrCodeInternal, err, "create directory")
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return kerrors.Wrap(kerrors.ErrCodeInternal, err, "write highlights")
	}
	return nil
}
