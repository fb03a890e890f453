package bind

import "sync/atomic"

// Destroyer is implemented by native types that release resources when the
// binding destroys them. It is the default destructor of raw classes and of
// Shared handles created without an explicit destructor.
type Destroyer interface {
	Destroy()
}

type control struct {
	refs    atomic.Int64
	destroy func()
}

// Shared is a reference counted handle to a native object. Each handle holds
// one reference; the object is destroyed when the last reference is
// released. The count is safe for concurrent use.
//
// Handles returned by Class.Unwrap are borrowed: they do not hold a reference
// and Release on them does nothing. Clone a borrowed handle to keep it.
type Shared[T any] struct {
	ptr      *T
	ctl      *control
	released atomic.Bool
	borrowed bool
}

// NewShared takes ownership of p. destroy, when given, runs once the last
// reference is released; otherwise p.Destroy() runs if *T is a Destroyer.
func NewShared[T any](p *T, destroy ...func(*T)) *Shared[T] {
	if p == nil {
		return nil
	}
	ctl := &control{}
	switch {
	case len(destroy) > 0 && destroy[0] != nil:
		d := destroy[0]
		ctl.destroy = func() { d(p) }
	default:
		if d, ok := any(p).(Destroyer); ok {
			ctl.destroy = d.Destroy
		}
	}
	ctl.refs.Store(1)
	return &Shared[T]{ptr: p, ctl: ctl}
}

// Get returns the object pointer, or nil for a nil or released handle.
func (s *Shared[T]) Get() *T {
	if s == nil || s.released.Load() {
		return nil
	}
	return s.ptr
}

// Clone returns a new handle holding its own reference.
func (s *Shared[T]) Clone() *Shared[T] {
	if s.Get() == nil {
		return nil
	}
	s.ctl.refs.Add(1)
	return &Shared[T]{ptr: s.ptr, ctl: s.ctl}
}

// Release gives up the handle's reference. Releasing a handle twice, or a
// borrowed handle, does nothing.
func (s *Shared[T]) Release() {
	if s == nil || s.ctl == nil || s.borrowed || !s.released.CompareAndSwap(false, true) {
		return
	}
	if s.ctl.refs.Add(-1) == 0 && s.ctl.destroy != nil {
		s.ctl.destroy()
	}
}

// UseCount returns the number of live references to the object.
func (s *Shared[T]) UseCount() int64 {
	if s == nil || s.ctl == nil {
		return 0
	}
	return s.ctl.refs.Load()
}

// Share returns Clone as an untyped value.
func (s *Shared[T]) Share() any { return s.Clone() }

func (s *Shared[T]) sharedControl() *control { return s.ctl }

// alias returns a borrowed handle to p, a part of the object owned by ctl.
func alias[T any](ctl *control, p *T) *Shared[T] {
	return &Shared[T]{ptr: p, ctl: ctl, borrowed: true}
}

type controlled interface {
	sharedControl() *control
}
