package rwarc

// WriteArc is the exclusive claim on a core. At most one exists at a time
// and no read share coexists with it.
//
// A WriteArc holds one reference on the core and ends in exactly one of
// Unlock, Downgrade or DowngradeToUpgradable.
type WriteArc[T any] struct {
	inner *core[T]
}

func (g *WriteArc[T]) core() *core[T] {
	c := g.inner
	if c == nil {
		panic("rwarc: use of unlocked WriteArc")
	}
	return c
}

// Get returns the protected value.
func (g *WriteArc[T]) Get() T {
	return g.core().value
}

// Set overwrites the protected value.
func (g *WriteArc[T]) Set(value T) {
	g.core().value = value
}

// Update replaces the protected value with f applied to it.
func (g *WriteArc[T]) Update(f func(T) T) {
	c := g.core()
	c.value = f(c.value)
}

// Unlock releases the claim and the guard's reference. The guard must not
// be used afterwards.
func (g *WriteArc[T]) Unlock() {
	c := g.core()
	g.inner = nil
	c.wUnlock()
	c.decRef()
}

// Downgrade converts the exclusive claim into a shared one without any
// window in which another writer could intervene. The guard's reference
// carries over to the returned ReadArc; this guard must not be used
// afterwards.
func (g *WriteArc[T]) Downgrade() *ReadArc[T] {
	c := g.core()
	g.inner = nil
	c.wDowngrade()
	return &ReadArc[T]{inner: c}
}

// DowngradeToUpgradable converts the exclusive claim into the upgrade
// reservation, again with no intervening window. The reference carries
// over; this guard must not be used afterwards.
func (g *WriteArc[T]) DowngradeToUpgradable() *UpgradableArc[T] {
	c := g.core()
	g.inner = nil
	c.wDowngradeUpgradable()
	return &UpgradableArc[T]{inner: c}
}
