package cache

// ScopedKeyer prefixes every key of an inner [Keyer]. Deployments that load
// different technology directories use it to share one Redis without
// colliding, e.g. NewScopedKeyer(nil, "fab2:").
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or the [DefaultKeyer] when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return ScopedKeyer{inner: inner, prefix: prefix}
}

func (k ScopedKeyer) LayoutKey(planHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(planHash, opts)
}

func (k ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
