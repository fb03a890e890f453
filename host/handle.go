package host

// WeakCallback runs when the object held by a weak handle is collected.
type WeakCallback func(info *WeakCallbackInfo)

// WeakCallbackInfo is passed to weak callbacks. The collected object is no
// longer reachable; only the private data is handed back.
type WeakCallbackInfo struct {
	Runtime *Runtime
	Handle  *Persistent
	Data    any
}

// Persistent is a handle to an object that outlives any single call. A strong
// handle is a collection root; a weak handle is not, and its callback runs when
// the object is collected.
type Persistent struct {
	id   uint64
	rt   *Runtime
	obj  *Object
	weak bool
	data any
	cb   WeakCallback
}

// NewPersistent creates a strong handle to o.
func (rt *Runtime) NewPersistent(o *Object) *Persistent {
	rt.nextHandle++
	p := &Persistent{id: rt.nextHandle, rt: rt, obj: o}
	if o != nil && !rt.disposed {
		rt.handles[p.id] = p
	}
	return p
}

// Get returns the held object, or nil for an empty handle.
func (p *Persistent) Get() *Object { return p.obj }

// IsEmpty reports whether the handle holds no object.
func (p *Persistent) IsEmpty() bool { return p.obj == nil }

// IsWeak reports whether the handle is weak.
func (p *Persistent) IsWeak() bool { return p.weak }

// SetWeak makes the handle weak. cb runs once when the object is collected,
// after which the handle is empty.
func (p *Persistent) SetWeak(data any, cb WeakCallback) {
	if p.obj == nil {
		return
	}
	p.weak = true
	p.data = data
	p.cb = cb
}

// ClearWeak makes the handle strong again and drops the weak callback.
func (p *Persistent) ClearWeak() {
	p.weak = false
	p.data = nil
	p.cb = nil
}

// Reset empties the handle without running the weak callback. It is safe to
// call more than once.
func (p *Persistent) Reset() {
	if p.obj == nil {
		return
	}
	delete(p.rt.handles, p.id)
	p.obj = nil
	p.weak = false
	p.data = nil
	p.cb = nil
}
