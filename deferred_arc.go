package rwarc

// DeferredWriteArc is a write-on-destruct guard. Construction (see
// RwArc.DeferredWrite) copies the value out under a brief exclusive claim
// and releases it; the holder then mutates the private scratch with no
// synchronization cost and no visibility to other guards. Release
// re-acquires the exclusive claim just long enough to commit the scratch
// back into the slot.
//
// Caveat, by contract rather than accident: a writer that runs between
// construction and Release has its effect overwritten by the commit
// (last-writer-wins). Discard abandons the scratch and leaves the slot as
// other writers left it.
type DeferredWriteArc[T any] struct {
	inner   *core[T]
	scratch T
}

func (g *DeferredWriteArc[T]) core() *core[T] {
	c := g.inner
	if c == nil {
		panic("rwarc: use of released DeferredWriteArc")
	}
	return c
}

// Get returns the scratch value.
func (g *DeferredWriteArc[T]) Get() T {
	g.core()
	return g.scratch
}

// Set overwrites the scratch value.
func (g *DeferredWriteArc[T]) Set(value T) {
	g.core()
	g.scratch = value
}

// Update replaces the scratch value with f applied to it.
func (g *DeferredWriteArc[T]) Update(f func(T) T) {
	g.core()
	g.scratch = f(g.scratch)
}

// Release commits the scratch into the slot under a brief exclusive claim
// and drops the guard's reference. The guard must not be used afterwards.
func (g *DeferredWriteArc[T]) Release() {
	c := g.core()
	g.inner = nil
	c.wLock()
	c.value = g.scratch
	c.wUnlock()
	var zero T
	g.scratch = zero
	c.decRef()
}

// Discard drops the guard without committing; the slot keeps whatever
// value it had. The guard must not be used afterwards.
func (g *DeferredWriteArc[T]) Discard() {
	c := g.core()
	g.inner = nil
	var zero T
	g.scratch = zero
	c.decRef()
}

// DeferredReadArc is a snapshot guard: the value was copied out under a
// brief shared claim at construction and is readable with no further
// contention. It keeps the core alive until Release.
type DeferredReadArc[T any] struct {
	inner *core[T]
	data  T
}

// Get returns the snapshot value.
func (g *DeferredReadArc[T]) Get() T {
	if g.inner == nil {
		panic("rwarc: use of released DeferredReadArc")
	}
	return g.data
}

// Release drops the guard's reference. The guard must not be used
// afterwards.
func (g *DeferredReadArc[T]) Release() {
	c := g.inner
	if c == nil {
		panic("rwarc: use of released DeferredReadArc")
	}
	g.inner = nil
	var zero T
	g.data = zero
	c.decRef()
}
