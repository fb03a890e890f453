package core

import (
	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/bind/constants"
	"github.com/ygrebnov/bind/errors"
	"github.com/ygrebnov/bind/host"
)

// State is the lifecycle state of a Wrapper.
type State uint8

const (
	Unwrapped State = iota
	// WrappedWeak: the host object may be collected, which destroys the
	// native object according to the policy.
	WrappedWeak
	// WrappedExternal: the host object is pinned by native code and is not
	// collected.
	WrappedExternal
	Destroyed
)

func (s State) String() string {
	switch s {
	case Unwrapped:
		return "unwrapped"
	case WrappedWeak:
		return "weak"
	case WrappedExternal:
		return "external"
	case Destroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Wrapper associates one native object with one host object.
type Wrapper struct {
	key     any
	held    any
	obj     *host.Object
	handle  *host.Persistent
	state   State
	policy  Policy
	destroy func()
	onGone  func(*Wrapper)
	seq     uint64
}

func newWrapper(id TypeID, key, held any, obj *host.Object, policy Policy, destroy func()) *Wrapper {
	obj.SetInternalField(constants.FieldTypeID, id)
	obj.SetInternalField(constants.FieldNativePtr, key)
	return &Wrapper{
		key:     key,
		held:    held,
		obj:     obj,
		handle:  obj.Runtime().NewPersistent(obj),
		policy:  policy,
		destroy: destroy,
	}
}

// Object returns the host object, or nil once destroyed.
func (w *Wrapper) Object() *host.Object {
	if w.state == Destroyed {
		return nil
	}
	return w.obj
}

// Key returns the native pointer identifying the object.
func (w *Wrapper) Key() any { return w.key }

// Held returns the object pointer kept by the wrapper.
func (w *Wrapper) Held() any { return w.held }

// State returns the current lifecycle state.
func (w *Wrapper) State() State { return w.state }

// Pin moves the wrapper to WrappedExternal.
func (w *Wrapper) Pin() {
	if w.state == Destroyed {
		return
	}
	w.handle.ClearWeak()
	w.state = WrappedExternal
}

// Unpin moves a WrappedExternal wrapper back to WrappedWeak.
func (w *Wrapper) Unpin() error {
	if w.state != WrappedExternal {
		return errorc.With(errors.ErrNotExternallyReferenced,
			errorc.String(errors.ErrorFieldObjectState, w.state.String()))
	}
	w.weaken()
	return nil
}

func (w *Wrapper) weaken() {
	w.handle.SetWeak(w, finalize)
	w.state = WrappedWeak
}

// finalize runs when the host object of a weak wrapper is collected.
func finalize(info *host.WeakCallbackInfo) {
	w := info.Data.(*Wrapper)
	w.Destroy(true)
}

// Destroy clears the association and releases the native object according to
// the policy. destruct allows the raw destructor to run. It returns false when
// the wrapper was already destroyed.
func (w *Wrapper) Destroy(destruct bool) bool {
	if w.state == Destroyed {
		return false
	}
	w.state = Destroyed
	if w.obj != nil && !w.obj.IsCollected() {
		w.obj.SetInternalField(constants.FieldTypeID, nil)
		w.obj.SetInternalField(constants.FieldNativePtr, nil)
	}
	w.handle.Reset()
	if w.onGone != nil {
		w.onGone(w)
	}
	w.policy.Release(w.held, w.destroy, destruct)
	w.held = nil
	return true
}
