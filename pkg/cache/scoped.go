package cache

// ScopedKeyer prefixes every key of an inner Keyer. The CLI scopes keys by
// build version so a persistent cache never serves render data encoded by a
// different release.
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.CacheScope())
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner with prefix. A nil inner uses DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// Prefix returns the scope prefix.
func (k *ScopedKeyer) Prefix() string { return k.prefix }

// RenderKey implements Keyer.
func (k *ScopedKeyer) RenderKey(definitionsHash, treeHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(definitionsHash, treeHash, opts)
}
