package bind

import (
	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/bind/errors"
	"github.com/ygrebnov/bind/host"
)

// Wrap returns the host object of p, creating a weakly held one when p is
// not wrapped yet. Collecting the object destroys a raw p; a shared wrapper
// holds its own reference, released on collection. Wrapping the same
// pointer twice returns the same object.
func (c *Class[T, P]) Wrap(p P) (*host.Object, error) {
	if err := c.usable(); err != nil {
		return nil, err
	}
	raw := rawOf[T](p)
	if raw == nil {
		return nil, errorc.With(errors.ErrNilPointer, errorc.String(errors.ErrorFieldClassName, c.name))
	}
	if w, ok := c.objects.Find(raw); ok {
		return w.Object(), nil
	}
	obj := c.rt.NewInstance(c.ft)
	if _, err := c.attach(obj, p, true, false); err != nil {
		return nil, err
	}
	return obj, nil
}

// ReferenceExternal wraps p in a host object pinned against collection. The
// caller keeps ownership: a raw p is never destroyed by the binding while
// pinned, and a shared wrapper holds its own reference. It fails with
// ErrAlreadyWrapped when p is already wrapped.
func (c *Class[T, P]) ReferenceExternal(p P) (*host.Object, error) {
	return c.external(p, true, true)
}

// ImportExternal wraps p in a weakly held host object and hands ownership
// over to it: collection destroys a raw p, or releases the caller's shared
// reference, which must not be used afterwards. It fails with
// ErrAlreadyWrapped when p is already wrapped.
func (c *Class[T, P]) ImportExternal(p P) (*host.Object, error) {
	return c.external(p, false, false)
}

func (c *Class[T, P]) external(p P, retain, pinned bool) (*host.Object, error) {
	if err := c.usable(); err != nil {
		return nil, err
	}
	obj := c.rt.NewInstance(c.ft)
	if _, err := c.attach(obj, p, retain, pinned); err != nil {
		return nil, err
	}
	return obj, nil
}

// UnreferenceExternal returns a pinned wrapper to the weak state, so that
// collection destroys the object according to the policy. It fails with
// ErrNotExternallyReferenced when p is not pinned.
func (c *Class[T, P]) UnreferenceExternal(p P) error {
	raw := rawOf[T](p)
	w, ok := c.objects.Find(raw)
	if raw == nil || !ok {
		return errorc.With(errors.ErrNotExternallyReferenced,
			errorc.String(errors.ErrorFieldClassName, c.name),
			errorc.String(errors.ErrorFieldObjectState, Unwrapped.String()))
	}
	if err := w.Unpin(); err != nil {
		return errorc.With(err, errorc.String(errors.ErrorFieldClassName, c.name))
	}
	return nil
}

// Unwrap returns the object pointer held by host value v, adjusted to T when
// v is an instance of a derived class. Shared handles returned by Unwrap are
// borrowed.
func (c *Class[T, P]) Unwrap(v host.Value) (P, bool) {
	p, err := c.UnwrapObject(v)
	return p, err == nil
}

// UnwrapObject is like Unwrap but reports why v has no native object.
func (c *Class[T, P]) UnwrapObject(v host.Value) (P, error) {
	var zero P
	w, raw, err := c.unwrap(v)
	if err != nil {
		return zero, err
	}
	p, ok := c.view(w, raw).(P)
	if !ok || rawOf[T](p) == nil {
		return zero, errorc.With(errors.ErrUnwrappedObject, errorc.String(errors.ErrorFieldClassName, c.name))
	}
	return p, nil
}

// Find returns the host object wrapping p.
func (c *Class[T, P]) Find(p P) (*host.Object, bool) {
	raw := rawOf[T](p)
	if raw == nil {
		return nil, false
	}
	w, ok := c.objects.Find(raw)
	if !ok {
		return nil, false
	}
	return w.Object(), true
}

// State returns the lifecycle state of p's wrapper.
func (c *Class[T, P]) State(p P) State {
	if w, ok := c.objects.Find(rawOf[T](p)); ok {
		return w.State()
	}
	return Unwrapped
}

// DestroyObject destroys the wrapper of p whatever its state: the host
// object loses its native pointer and the object is destroyed according to
// the policy. Destroying an object that is not wrapped does nothing.
func (c *Class[T, P]) DestroyObject(p P) {
	if raw := rawOf[T](p); raw != nil {
		c.objects.Remove(raw)
	}
}

// Destroy destroys every wrapper of the class. Raw objects pinned by
// ReferenceExternal are detached without being destroyed. It is safe to
// call more than once.
func (c *Class[T, P]) Destroy() {
	c.objects.DestroyAll()
}

// New constructs an instance the way a script would, running the
// constructor with args.
func (c *Class[T, P]) New(args ...host.Value) (*host.Object, error) {
	if err := c.usable(); err != nil {
		return nil, err
	}
	return c.rt.New(c.ft.GetFunction(), args...)
}
