package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation, e.g. to
// keep per-board or per-user entries apart in a shared Redis instance.
//
// Example usage:
//
//	boardKeyer := NewScopedKeyer(NewDefaultKeyer(), "board:amd64-generic:")
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

// DepsTreeKey generates a prefixed key for an extracted deps tree.
func (k *ScopedKeyer) DepsTreeKey(board, command string) string {
	return k.prefix + k.inner.DepsTreeKey(board, command)
}

// GraphKey generates a prefixed key for a constructed graph document.
func (k *ScopedKeyer) GraphKey(board string, rootPackages []string) string {
	return k.prefix + k.inner.GraphKey(board, rootPackages)
}

// ArtifactKey generates a prefixed key for a rendered artifact.
func (k *ScopedKeyer) ArtifactKey(graphHash, format string) string {
	return k.prefix + k.inner.ArtifactKey(graphHash, format)
}
