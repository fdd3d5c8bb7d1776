package cache

// ScopedKeyer wraps a Keyer with a prefix so that several tenants or
// environments can share one backend without seeing each other's entries.
//
//	apiKeyer := NewScopedKeyer(NewDefaultKeyer(), "api:v1:")
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

// LinearizationKey generates a prefixed linearization key.
func (k *ScopedKeyer) LinearizationKey(hierarchyHash, root string) string {
	return k.prefix + k.inner.LinearizationKey(hierarchyHash, root)
}

// ReportKey generates a prefixed report key.
func (k *ScopedKeyer) ReportKey(hierarchyHash string) string {
	return k.prefix + k.inner.ReportKey(hierarchyHash)
}
