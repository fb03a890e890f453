package core

import (
	"sort"

	"github.com/ygrebnov/errorc"
	"go.uber.org/zap"

	"github.com/ygrebnov/bind/errors"
	"github.com/ygrebnov/bind/host"
)

// InstanceRegistry maps native pointers of one class to their wrappers. It
// holds at most one wrapper per pointer.
type InstanceRegistry struct {
	typ     TypeID
	policy  Policy
	log     *zap.Logger
	objects map[any]*Wrapper
	seq     uint64
}

// NewInstanceRegistry creates an empty registry for class typ.
func NewInstanceRegistry(typ TypeID, policy Policy, log *zap.Logger) *InstanceRegistry {
	if log == nil {
		log = zap.NewNop()
	}
	return &InstanceRegistry{
		typ:     typ,
		policy:  policy,
		log:     log,
		objects: make(map[any]*Wrapper),
	}
}

// Policy returns the ownership policy of the class.
func (r *InstanceRegistry) Policy() Policy { return r.policy }

// Find returns the live wrapper of key.
func (r *InstanceRegistry) Find(key any) (*Wrapper, bool) {
	w, ok := r.objects[key]
	return w, ok
}

// Len returns the number of live wrappers.
func (r *InstanceRegistry) Len() int { return len(r.objects) }

// Add wraps key with obj. held is the reference the wrapper keeps; destroy is
// the class destructor for raw objects. A pinned wrapper starts in
// WrappedExternal, otherwise in WrappedWeak. Adding a key that is already
// wrapped fails with ErrAlreadyWrapped.
func (r *InstanceRegistry) Add(key, held any, obj *host.Object, pinned bool, destroy func()) (*Wrapper, error) {
	if key == nil {
		return nil, errorc.With(errors.ErrNilPointer, errorc.String(errors.ErrorFieldClassType, r.typ.String()))
	}
	if w, ok := r.objects[key]; ok {
		return nil, errorc.With(errors.ErrAlreadyWrapped,
			errorc.String(errors.ErrorFieldClassType, r.typ.String()),
			errorc.String(errors.ErrorFieldObjectState, w.state.String()))
	}

	w := newWrapper(r.typ, key, held, obj, r.policy, destroy)
	w.onGone = r.forget
	if pinned {
		w.Pin()
	} else {
		w.weaken()
	}
	r.seq++
	w.seq = r.seq
	r.objects[key] = w

	r.log.Debug("object wrapped",
		zap.Uint64("object", obj.ID()),
		zap.Stringer("state", w.state))
	return w, nil
}

func (r *InstanceRegistry) forget(w *Wrapper) {
	if cur, ok := r.objects[w.key]; ok && cur == w {
		delete(r.objects, w.key)
	}
	r.log.Debug("object released", zap.Uint64("seq", w.seq))
}

// Remove destroys the wrapper of key, running the policy destructor whatever
// the wrapper state. Removing an unknown key is a no-op.
func (r *InstanceRegistry) Remove(key any) bool {
	w, ok := r.objects[key]
	if !ok {
		return false
	}
	return w.Destroy(true)
}

// DestroyAll destroys every wrapper in creation order. Raw objects in
// WrappedExternal are detached without running the destructor, as they
// belong to native code. It returns the number of wrappers destroyed.
func (r *InstanceRegistry) DestroyAll() int {
	n := 0
	for _, w := range r.snapshot() {
		if w.Destroy(w.state != WrappedExternal) {
			n++
		}
	}
	if n > 0 {
		r.log.Debug("class instances destroyed", zap.Int("count", n))
	}
	return n
}

// Each calls fn for every live wrapper in creation order.
func (r *InstanceRegistry) Each(fn func(*Wrapper) bool) {
	for _, w := range r.snapshot() {
		if !fn(w) {
			return
		}
	}
}

func (r *InstanceRegistry) snapshot() []*Wrapper {
	ws := make([]*Wrapper, 0, len(r.objects))
	for _, w := range r.objects {
		ws = append(ws, w)
	}
	sort.Slice(ws, func(i, j int) bool { return ws[i].seq < ws[j].seq })
	return ws
}
