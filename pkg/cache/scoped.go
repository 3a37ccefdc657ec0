package cache

// ScopedKeyer wraps a Keyer with a prefix so that several deployments can
// share one Redis database without colliding.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "mondrian:staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// LayoutKey generates a prefixed key for layout caching.
func (k *ScopedKeyer) LayoutKey(traceHash string) string {
	return k.prefix + k.inner.LayoutKey(traceHash)
}

// AtlasKey generates a prefixed key for atlas manifest caching.
func (k *ScopedKeyer) AtlasKey(sourcesHash string, opts AtlasKeyOpts) string {
	return k.prefix + k.inner.AtlasKey(sourcesHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
