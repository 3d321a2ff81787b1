// Package rwarc provides a shared-ownership reader/writer synchronization
// primitive: a reference-counted cell protected by a writer-preferred
// reader/writer lock, with guard kinds beyond plain read/write:
//
//   - UpgradableArc: a read claim holding the unique upgrade reservation,
//     promotable to a WriteArc without releasing the lock.
//   - DeferredWriteArc: write-on-destruct; copies the value out under a
//     brief exclusive claim, lets the holder mutate the private copy
//     without synchronization, and commits it back on Release.
//   - DetachedArc: an owned standalone value that can later be attached
//     to a live core through a non-owning Weak reference.
//
// All blocking acquisitions busy-wait with backoff (runtime spinning, then
// short sleeps). They never time out; callers wanting timeouts must race
// the acquisition externally.
package rwarc

import (
	"sync/atomic"
	"unsafe"
)

// Lock word layout, low bits to high:
//   bit 0:   writer (held, or claimed and draining readers)
//   bit 1:   upgradable reservation (counts as one read share)
//   bits 2+: plain reader count
const (
	writerBit   = 1
	upgradedBit = 1 << 1
	readerShift = 2
	readerUnit  = 1 << readerShift

	// An arbitrary cap that allows us to catch overflows long before they happen.
	maxReaders = (^uintptr(0) >> readerShift) / 2
)

// core is the heap-resident slot shared by every handle and guard:
// the protected value, its lock word and its reference count.
// The value is accessed only while a claim on the lock word is held,
// except at teardown when no handle remains.
type core[T any] struct {
	state atomic.Uintptr
	_     [(cacheLineSize - unsafe.Sizeof(atomic.Uintptr{})%cacheLineSize) % cacheLineSize]byte
	refs  atomic.Int64
	_     [(cacheLineSize - unsafe.Sizeof(atomic.Int64{})%cacheLineSize) % cacheLineSize]byte
	value T
}

// RwArc is an owning handle on a shared core. Handles are cheap to clone;
// the core is torn down when the last handle or guard releases it.
//
// The zero RwArc is not usable; construct with New.
type RwArc[T any] struct {
	inner *core[T]
}

// New creates a core holding value and returns its first owning handle.
func New[T any](value T) *RwArc[T] {
	c := &core[T]{value: value}
	c.refs.Store(1)
	return &RwArc[T]{inner: c}
}

func (a *RwArc[T]) core() *core[T] {
	c := a.inner
	if c == nil {
		panic("rwarc: use of released RwArc")
	}
	return c
}

// Clone returns a new owning handle sharing the same core.
func (a *RwArc[T]) Clone() *RwArc[T] {
	c := a.core()
	c.incRef()
	return &RwArc[T]{inner: c}
}

// Release drops this handle's ownership. The decrement that observes the
// count reaching zero tears the core down; any further use of this handle
// panics. Guards issued from the handle hold their own references and
// remain valid.
func (a *RwArc[T]) Release() {
	c := a.core()
	a.inner = nil
	c.decRef()
}

// Weak returns a non-owning existence reference to the core, suitable for
// the DetachedArc attach protocol. It does not keep the core alive.
func (a *RwArc[T]) Weak() Weak[T] {
	return Weak[T]{inner: a.core()}
}

// Read blocks until a shared claim is acquired.
func (a *RwArc[T]) Read() *ReadArc[T] {
	c := a.core()
	c.rLock()
	c.incRef()
	return &ReadArc[T]{inner: c}
}

// TryRead attempts a shared claim without blocking.
func (a *RwArc[T]) TryRead() (*ReadArc[T], bool) {
	c := a.core()
	if !c.tryRLock() {
		return nil, false
	}
	c.incRef()
	return &ReadArc[T]{inner: c}, true
}

// Write blocks until the exclusive claim is acquired. A blocking writer
// claims the writer bit as soon as no other writer or reservation holds
// the word, which shuts out newly arriving readers while the in-flight
// ones drain (writer preference).
func (a *RwArc[T]) Write() *WriteArc[T] {
	c := a.core()
	c.wLock()
	c.incRef()
	return &WriteArc[T]{inner: c}
}

// TryWrite attempts the exclusive claim without blocking. It succeeds only
// when the lock word is completely free.
func (a *RwArc[T]) TryWrite() (*WriteArc[T], bool) {
	c := a.core()
	if !c.tryWLock() {
		return nil, false
	}
	c.incRef()
	return &WriteArc[T]{inner: c}, true
}

// UpgradableRead blocks until a shared claim plus the upgrade reservation
// is acquired. At most one reservation exists per core at a time; a second
// caller blocks until the first releases, downgrades or upgrades.
func (a *RwArc[T]) UpgradableRead() *UpgradableArc[T] {
	c := a.core()
	c.uLock()
	c.incRef()
	return &UpgradableArc[T]{inner: c}
}

// TryUpgradableRead attempts the reservation without blocking.
func (a *RwArc[T]) TryUpgradableRead() (*UpgradableArc[T], bool) {
	c := a.core()
	if !c.tryULock() {
		return nil, false
	}
	c.incRef()
	return &UpgradableArc[T]{inner: c}, true
}

// DeferredWrite acquires the exclusive claim briefly, copies the value out
// to a private scratch, releases the claim and returns the guard. Other
// readers and writers proceed while the holder mutates the scratch; the
// scratch is committed back by Release.
//
// The copy is a Go value copy. For payloads carrying interior pointers
// (maps, slices) the holder must replace rather than mutate shared
// structure, or the deferral provides no isolation.
func (a *RwArc[T]) DeferredWrite() *DeferredWriteArc[T] {
	c := a.core()
	c.wLock()
	scratch := c.value
	c.wUnlock()
	c.incRef()
	return &DeferredWriteArc[T]{inner: c, scratch: scratch}
}

// DeferredRead acquires a shared claim briefly, copies the value out and
// releases the claim, returning a snapshot guard that never contends.
func (a *RwArc[T]) DeferredRead() *DeferredReadArc[T] {
	c := a.core()
	c.rLock()
	data := c.value
	c.rUnlock()
	c.incRef()
	return &DeferredReadArc[T]{inner: c, data: data}
}

// IntoInner consumes a uniquely owned handle and returns the protected
// value. It reports false, leaving the handle usable, when other handles
// or guards still share the core.
func (a *RwArc[T]) IntoInner() (T, bool) {
	c := a.core()
	if !c.refs.CompareAndSwap(1, 0) {
		var zero T
		return zero, false
	}
	a.inner = nil
	v := c.value
	var zero T
	c.value = zero
	return v, true
}

// HasReaders reports whether any read share is outstanding.
// The upgrade reservation counts as a read share.
func (a *RwArc[T]) HasReaders() bool { return a.ReaderCount() > 0 }

// HasUpgradable reports whether the upgrade reservation is held.
func (a *RwArc[T]) HasUpgradable() bool { return a.UpgradableCount() > 0 }

// HasWriter reports whether a writer holds the word, or has claimed it and
// is draining readers.
func (a *RwArc[T]) HasWriter() bool { return a.WriterCount() > 0 }

// ReaderCount returns the number of outstanding read shares, including the
// upgrade reservation if held.
func (a *RwArc[T]) ReaderCount() int {
	s := a.core().state.Load()
	return int(s>>readerShift) + int(s&upgradedBit)>>1
}

// UpgradableCount returns 1 while the upgrade reservation is held, else 0.
func (a *RwArc[T]) UpgradableCount() int {
	return int(a.core().state.Load()&upgradedBit) >> 1
}

// WriterCount returns 1 while the writer bit is set (held or draining),
// else 0.
func (a *RwArc[T]) WriterCount() int {
	return int(a.core().state.Load() & writerBit)
}

// Refs returns the current number of owning handles and guards.
func (a *RwArc[T]) Refs() int {
	return int(a.core().refs.Load())
}

// ----------------------------------------------------------------------------
// Lock-state machine
// ----------------------------------------------------------------------------

func (c *core[T]) tryRLock() bool {
	for {
		s := c.state.Load()
		if s&(writerBit|upgradedBit) != 0 {
			return false
		}
		if s>>readerShift > maxReaders {
			panic("rwarc: too many readers, cannot safely proceed")
		}
		if c.state.CompareAndSwap(s, s+readerUnit) {
			return true
		}
	}
}

func (c *core[T]) rLock() {
	var spins int
	for !c.tryRLock() {
		delay(&spins)
	}
}

func (c *core[T]) rUnlock() {
	c.state.Add(^uintptr(readerUnit - 1))
}

func (c *core[T]) tryWLock() bool {
	return c.state.CompareAndSwap(0, writerBit)
}

// wLock claims the writer bit, then waits for the plain readers to drain.
// The claim requires the reservation bit to be clear, so a pending upgrade
// is never raced by a plain writer.
func (c *core[T]) wLock() {
	var spins int
	for {
		s := c.state.Load()
		if s&(writerBit|upgradedBit) == 0 {
			if c.state.CompareAndSwap(s, s|writerBit) {
				for c.state.Load()>>readerShift != 0 {
					delay(&spins)
				}
				return
			}
		}
		delay(&spins)
	}
}

// wUnlock resets the word. The holder is exclusive: no reader, reservation
// or second writer can touch the word while the writer bit is set.
func (c *core[T]) wUnlock() {
	c.state.Store(0)
}

// wDowngrade converts the exclusive claim into a plain read share with no
// intervening window: the writer bit keeps every other claimant out until
// the single store publishes the read share.
func (c *core[T]) wDowngrade() {
	c.state.Store(readerUnit)
}

// wDowngradeUpgradable converts the exclusive claim into the upgrade
// reservation, same single-store argument as wDowngrade.
func (c *core[T]) wDowngradeUpgradable() {
	c.state.Store(upgradedBit)
}

func (c *core[T]) tryULock() bool {
	for {
		s := c.state.Load()
		if s&(writerBit|upgradedBit) != 0 {
			return false
		}
		if c.state.CompareAndSwap(s, s|upgradedBit) {
			return true
		}
	}
}

func (c *core[T]) uLock() {
	var spins int
	for !c.tryULock() {
		delay(&spins)
	}
}

func (c *core[T]) uUnlock() {
	c.state.Add(^uintptr(upgradedBit - 1))
}

// uDowngrade turns the reservation into a plain read share in one atomic
// step, so no writer can slip in between.
func (c *core[T]) uDowngrade() {
	c.state.Add(readerUnit - upgradedBit)
}

// tryUpgrade promotes the reservation to the exclusive claim. The compare
// is against the exact reservation-only word: it succeeds precisely when
// the holder's own share is the sole outstanding share. The reservation
// bit keeps new readers and writers out, so the wait is bounded by the
// in-flight readers.
func (c *core[T]) tryUpgrade() bool {
	return c.state.CompareAndSwap(upgradedBit, writerBit)
}

func (c *core[T]) upgrade() {
	var spins int
	for !c.tryUpgrade() {
		delay(&spins)
	}
}

// ----------------------------------------------------------------------------
// Reference counting
// ----------------------------------------------------------------------------

func (c *core[T]) incRef() {
	c.refs.Add(1)
}

// decRef drops one reference. Decrement-and-test is a single atomic step;
// exactly one caller observes zero and tears the core down.
func (c *core[T]) decRef() {
	n := c.refs.Add(-1)
	if n == 0 {
		var zero T
		c.value = zero
		return
	}
	if n < 0 {
		panic("rwarc: reference count underflow")
	}
}
