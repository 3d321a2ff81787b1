package rwarc

// Deferred pairs an upgradable claim on a KeyContainer's backing map with
// a private scratch value. The holder mutates the scratch freely while
// plain readers of the container proceed, then publishes it under a key
// with Commit: the claim is upgraded for the insert and dropped back to
// upgradable, so a sequence of commits never lets another writer slip in
// between observation and publication.
type Deferred[K comparable, V any] struct {
	guard *UpgradableArc[map[K]V]
	data  V
}

// Deferred opens a deferred commit session seeded with value. The session
// holds the container's upgrade reservation until Release, blocking other
// writers; point writes on the container wait accordingly.
func (c *KeyContainer[K, V]) Deferred(value V) *Deferred[K, V] {
	return &Deferred[K, V]{guard: c.state.UpgradableRead(), data: value}
}

// Get returns the scratch value.
func (d *Deferred[K, V]) Get() V {
	return d.data
}

// Set overwrites the scratch value.
func (d *Deferred[K, V]) Set(value V) {
	d.data = value
}

// Peek reads the container's current value under key through the held
// claim, without publishing anything.
func (d *Deferred[K, V]) Peek(key K) (V, bool) {
	v, ok := d.guard.Get()[key]
	return v, ok
}

// Commit publishes a copy of the scratch value under key. The session
// stays open; further mutation and commits are permitted.
func (d *Deferred[K, V]) Commit(key K) {
	w := d.guard.Upgrade()
	m := w.Get()
	m[key] = d.data
	d.guard = w.DowngradeToUpgradable()
}

// Release drops the claim without publishing. The session must not be
// used afterwards.
func (d *Deferred[K, V]) Release() {
	g := d.guard
	d.guard = nil
	g.Unlock()
}
