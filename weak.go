package rwarc

// Weak is a non-owning existence reference to a core. It never keeps the
// core alive and never blocks: upgrading is a single CAS loop on the
// reference count that refuses to resurrect a torn-down core.
//
// The zero Weak refers to nothing.
type Weak[T any] struct {
	inner *core[T]
}

// Alive reports whether the core still has owners. The answer can be
// stale by the time the caller acts on it; attach paths re-check
// atomically via upgrade.
func (w Weak[T]) Alive() bool {
	c := w.inner
	return c != nil && c.refs.Load() > 0
}

// upgrade acquires one reference if the core is still alive. The CAS from
// a non-zero count is the single atomic existence check: it can never
// interleave with the teardown decrement in a way that revives the core.
func (w Weak[T]) upgrade() (*core[T], bool) {
	c := w.inner
	if c == nil {
		return nil, false
	}
	for {
		n := c.refs.Load()
		if n <= 0 {
			return nil, false
		}
		if c.refs.CompareAndSwap(n, n+1) {
			return c, true
		}
	}
}
