package rwarc

// UpgradableArc is a read claim that additionally holds the core's unique
// upgrade reservation: the right to become the next WriteArc without
// releasing the lock in between. Plain ReadArcs may coexist with it, but
// no second reservation and no writer can, and new readers are shut out
// while it exists so the promotion cannot starve.
type UpgradableArc[T any] struct {
	inner *core[T]
}

func (g *UpgradableArc[T]) core() *core[T] {
	c := g.inner
	if c == nil {
		panic("rwarc: use of unlocked UpgradableArc")
	}
	return c
}

// Get returns the protected value.
func (g *UpgradableArc[T]) Get() T {
	return g.core().value
}

// Upgrade blocks until the remaining plain readers drain, then promotes
// the reservation to the exclusive claim. No other writer can be granted
// between the reservation and the promotion. The reference carries over
// to the returned WriteArc; this guard must not be used afterwards.
func (g *UpgradableArc[T]) Upgrade() *WriteArc[T] {
	c := g.core()
	g.inner = nil
	c.upgrade()
	return &WriteArc[T]{inner: c}
}

// TryUpgrade attempts the promotion without blocking. On failure the
// reservation is kept and the guard remains usable.
func (g *UpgradableArc[T]) TryUpgrade() (*WriteArc[T], bool) {
	c := g.core()
	if !c.tryUpgrade() {
		return nil, false
	}
	g.inner = nil
	return &WriteArc[T]{inner: c}, true
}

// Downgrade gives up the reservation, keeping a plain shared claim, in one
// atomic step. The reference carries over; this guard must not be used
// afterwards.
func (g *UpgradableArc[T]) Downgrade() *ReadArc[T] {
	c := g.core()
	g.inner = nil
	c.uDowngrade()
	return &ReadArc[T]{inner: c}
}

// Unlock releases the reservation and the guard's reference. The guard
// must not be used afterwards.
func (g *UpgradableArc[T]) Unlock() {
	c := g.core()
	g.inner = nil
	c.uUnlock()
	c.decRef()
}
