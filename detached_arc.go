package rwarc

import "errors"

// ErrTargetGone is returned by attach operations when the target core has
// already been torn down. The detached value is left intact; the caller
// may retry against another target or keep using the standalone value.
var ErrTargetGone = errors.New("rwarc: attach target core has been torn down")

// DetachedArc owns a standalone value with no relation to any core. It is
// a handle-shaped placeholder for staged initialization: construct it
// before the target core is known, then attach to a live core later.
//
// Attaching observes the target's existing state; the standalone value is
// never injected into the target. On a successful attach it is discarded.
type DetachedArc[T any] struct {
	value T
}

// Detached returns a DetachedArc owning value. It touches no core and
// never blocks.
func Detached[T any](value T) *DetachedArc[T] {
	return &DetachedArc[T]{value: value}
}

// Get returns the standalone value.
func (d *DetachedArc[T]) Get() T {
	return d.value
}

// Set overwrites the standalone value.
func (d *DetachedArc[T]) Set(value T) {
	d.value = value
}

// AttachRead binds to the target core with a shared claim, blocking like
// an ordinary Read once the core's liveness is established. On success
// the standalone value is discarded and the returned guard observes the
// core's current value. On ErrTargetGone the DetachedArc is unchanged.
func (d *DetachedArc[T]) AttachRead(target Weak[T]) (*ReadArc[T], error) {
	c, ok := target.upgrade()
	if !ok {
		return nil, ErrTargetGone
	}
	c.rLock()
	var zero T
	d.value = zero
	return &ReadArc[T]{inner: c}, nil
}

// AttachWrite binds to the target core with the exclusive claim, blocking
// like an ordinary Write once the core's liveness is established. Success
// and failure behave as for AttachRead.
func (d *DetachedArc[T]) AttachWrite(target Weak[T]) (*WriteArc[T], error) {
	c, ok := target.upgrade()
	if !ok {
		return nil, ErrTargetGone
	}
	c.wLock()
	var zero T
	d.value = zero
	return &WriteArc[T]{inner: c}, nil
}
