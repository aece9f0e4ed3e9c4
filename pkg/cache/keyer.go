package cache

// Rect is a viewport rectangle as it enters a cache key.
type Rect struct {
	MinX float64 `json:"min_x"`
	MaxX float64 `json:"max_x"`
	MinY float64 `json:"min_y"`
	MaxY float64 `json:"max_y"`
}

// RenderKeyOpts are the pass settings that change render output besides the
// definitions and the tree.
type RenderKeyOpts struct {
	Viewport *Rect `json:"viewport,omitempty"`
	Reduced  int   `json:"reduced"`
	Minimal  int   `json:"minimal"`
}

// Keyer derives cache keys from hashed pass inputs.
type Keyer interface {
	// RenderKey identifies the render data produced from a definition set and
	// a tree under the given options.
	RenderKey(definitionsHash, treeHash string, opts RenderKeyOpts) string
}

// DefaultKeyer produces "render:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// RenderKey implements Keyer.
func (DefaultKeyer) RenderKey(definitionsHash, treeHash string, opts RenderKeyOpts) string {
	return hashKey(KeyTypeRender, definitionsHash, treeHash, opts)
}
