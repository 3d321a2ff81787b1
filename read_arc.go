package rwarc

// ReadArc is a shared, non-exclusive claim on a core. Any number of
// ReadArcs may coexist; none may coexist with a held WriteArc.
//
// A ReadArc holds one reference on the core and must be released with
// Unlock exactly once, on every exit path.
type ReadArc[T any] struct {
	inner *core[T]
}

func (g *ReadArc[T]) core() *core[T] {
	c := g.inner
	if c == nil {
		panic("rwarc: use of unlocked ReadArc")
	}
	return c
}

// Get returns the protected value. The returned copy stays coherent only
// for as long as the claim is held if it carries interior pointers.
func (g *ReadArc[T]) Get() T {
	return g.core().value
}

// Unlock releases the claim and the guard's reference. The guard must not
// be used afterwards.
func (g *ReadArc[T]) Unlock() {
	c := g.core()
	g.inner = nil
	c.rUnlock()
	c.decRef()
}
