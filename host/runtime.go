package host

import (
	"github.com/ygrebnov/errorc"
	"go.uber.org/zap"
)

// Runtime is one independent host runtime instance: a heap, globals,
// templates, persistent handles and per-runtime data slots.
type Runtime struct {
	name   string
	log    *zap.Logger
	nextID uint64
	heap   map[uint64]*Object

	globals           map[string]Value
	functionTemplates []*FunctionTemplate
	objectTemplates   []*ObjectTemplate

	nextHandle uint64
	handles    map[uint64]*Persistent

	data      map[any]any
	onDispose []func()

	collecting bool
	disposed   bool
	stats      Stats
}

// Option configures a Runtime at construction time.
type Option func(*Runtime)

// WithName names the runtime in log output.
func WithName(name string) Option {
	return func(rt *Runtime) { rt.name = name }
}

// WithLogger overrides the package logger for one runtime.
func WithLogger(l *zap.Logger) Option {
	return func(rt *Runtime) {
		if l != nil {
			rt.log = l
		}
	}
}

// New creates a runtime.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		name:    "default",
		heap:    make(map[uint64]*Object),
		globals: make(map[string]Value),
		handles: make(map[uint64]*Persistent),
		data:    make(map[any]any),
	}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.log == nil {
		rt.log = Logger()
	}
	rt.log = rt.log.With(zap.String("runtime", rt.name))
	return rt
}

// Name returns the runtime name.
func (rt *Runtime) Name() string { return rt.name }

// Log returns the runtime's logger.
func (rt *Runtime) Log() *zap.Logger { return rt.log }

func (rt *Runtime) allocate() *Object {
	rt.nextID++
	o := &Object{id: rt.nextID, rt: rt}
	if rt.disposed {
		o.dead = true
		return o
	}
	rt.heap[o.id] = o
	rt.stats.Allocated++
	return o
}

// NewObject creates a plain empty object.
func (rt *Runtime) NewObject() *Object {
	return rt.allocate()
}

// NewFunction creates a plain callable function object.
func (rt *Runtime) NewFunction(name string, cb CallbackFunc, data any) *Object {
	o := rt.allocate()
	o.fn = &function{name: name, callback: cb, data: data}
	return o
}

// SetGlobal binds a global name. Globals are collection roots.
func (rt *Runtime) SetGlobal(name string, v Value) {
	if v == nil {
		delete(rt.globals, name)
		return
	}
	rt.globals[name] = v
}

// Global returns a global value, or nil when unset.
func (rt *Runtime) Global(name string) Value { return rt.globals[name] }

// Data returns the value stored in the runtime data slot key.
func (rt *Runtime) Data(key any) any { return rt.data[key] }

// SetData stores v in the runtime data slot key. A nil v clears the slot.
func (rt *Runtime) SetData(key, v any) {
	if v == nil {
		delete(rt.data, key)
		return
	}
	rt.data[key] = v
}

// OnDispose registers fn to run when the runtime is disposed. Hooks run in
// reverse registration order.
func (rt *Runtime) OnDispose(fn func()) {
	rt.onDispose = append(rt.onDispose, fn)
}

// IsDisposed reports whether Dispose has been called.
func (rt *Runtime) IsDisposed() bool { return rt.disposed }

// Dispose runs dispose hooks and releases the heap. Weak callbacks do not run;
// owners of native state must register a dispose hook. It is safe to call more
// than once.
func (rt *Runtime) Dispose() {
	if rt.disposed {
		return
	}
	for i := len(rt.onDispose) - 1; i >= 0; i-- {
		rt.onDispose[i]()
	}
	rt.onDispose = nil
	rt.disposed = true

	for _, o := range rt.heap {
		o.dead = true
	}
	for _, h := range rt.handles {
		h.obj = nil
	}
	rt.heap = map[uint64]*Object{}
	rt.handles = map[uint64]*Persistent{}
	rt.globals = map[string]Value{}
	rt.data = map[any]any{}
	rt.log.Debug("runtime disposed")
}

func (rt *Runtime) object(v Value) (*Object, error) {
	if rt.disposed {
		return nil, ErrDisposed
	}
	o, ok := v.(*Object)
	if !ok || o == nil {
		return nil, errorc.With(ErrNotObject, errorc.String(ErrorFieldValueType, TypeName(v)))
	}
	if o.rt != rt {
		return nil, ErrForeignValue
	}
	if o.dead {
		return nil, ErrCollected
	}
	return o, nil
}

// Get reads property name of target. Missing properties read as nil.
func (rt *Runtime) Get(target Value, name string) (Value, error) {
	o, err := rt.object(target)
	if err != nil {
		return nil, err
	}
	p := o.lookup(name)
	if p == nil {
		return nil, nil
	}
	if p.isAccessor() {
		if p.getter == nil {
			return nil, nil
		}
		return p.getter(&PropertyInfo{Runtime: rt, This: o, Name: name, Data: p.data})
	}
	return p.value, nil
}

// Set writes property name of target. Writing a read-only property fails with
// ErrReadOnly.
func (rt *Runtime) Set(target Value, name string, v Value) error {
	o, err := rt.object(target)
	if err != nil {
		return err
	}
	if p := o.lookup(name); p != nil {
		if p.isAccessor() {
			if p.setter == nil {
				return errorc.With(ErrReadOnly, errorc.String(ErrorFieldMemberName, name))
			}
			return p.setter(&PropertyInfo{Runtime: rt, This: o, Name: name, Data: p.data}, v)
		}
		if p.attrs&ReadOnly != 0 {
			return errorc.With(ErrReadOnly, errorc.String(ErrorFieldMemberName, name))
		}
	}
	if o.props == nil {
		o.props = make(map[string]*property)
	}
	if own, ok := o.props[name]; ok {
		own.value = v
		return nil
	}
	o.props[name] = &property{value: v}
	return nil
}

// Call invokes method name on target with target as the receiver.
func (rt *Runtime) Call(target Value, name string, args ...Value) (Value, error) {
	o, err := rt.object(target)
	if err != nil {
		return nil, err
	}
	if o.lookup(name) == nil {
		return nil, errorc.With(ErrNoSuchMember, errorc.String(ErrorFieldMemberName, name))
	}
	fn, err := rt.Get(o, name)
	if err != nil {
		return nil, err
	}
	return rt.CallFunction(fn, o, args...)
}

// CallFunction invokes fn with the given receiver.
func (rt *Runtime) CallFunction(fn Value, this Value, args ...Value) (Value, error) {
	f, err := rt.object(fn)
	if err != nil {
		return nil, err
	}
	if f.fn == nil {
		return nil, errorc.With(ErrNotCallable, errorc.String(ErrorFieldValueType, TypeName(fn)))
	}
	if f.fn.template != nil {
		return nil, errorc.With(ErrNotCallable, errorc.String(ErrorFieldFunction, f.Name()))
	}
	if f.fn.callback == nil {
		return nil, nil
	}
	return f.fn.callback(&CallInfo{Runtime: rt, This: this, Args: args, Data: f.fn.data, Callee: f})
}

// New constructs an instance with the constructor function ctor.
func (rt *Runtime) New(ctor Value, args ...Value) (*Object, error) {
	f, err := rt.object(ctor)
	if err != nil {
		return nil, err
	}
	if f.fn == nil || f.fn.template == nil {
		return nil, errorc.With(ErrNotConstruct, errorc.String(ErrorFieldValueType, TypeName(ctor)))
	}
	ft := f.fn.template
	o := rt.allocate()
	o.class = ft
	o.tmpl = ft.instance
	o.internal = make([]any, ft.instance.internalCount)
	if ft.callback != nil {
		_, err := ft.callback(&CallInfo{Runtime: rt, This: o, Args: args, Data: ft.data, Callee: f, IsConstruct: true})
		if err != nil {
			return nil, err
		}
	}
	return o, nil
}

// NewInstance creates an instance of ft without running its constructor
// callback. Bindings use it to wrap native objects created outside the host.
func (rt *Runtime) NewInstance(ft *FunctionTemplate) *Object {
	o := rt.allocate()
	o.class = ft
	o.tmpl = ft.instance
	o.internal = make([]any, ft.instance.internalCount)
	return o
}
