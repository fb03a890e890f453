package bind

import (
	"reflect"

	"github.com/ygrebnov/errorc"
	"go.uber.org/zap"

	"github.com/ygrebnov/bind/errors"
	"github.com/ygrebnov/bind/host"
	"github.com/ygrebnov/bind/internal/core"
	"github.com/ygrebnov/bind/internal/invoke"
)

// TypeID identifies a bound native type.
type TypeID = core.TypeID

// TypeOf returns the TypeID of T.
func TypeOf[T any]() TypeID { return core.TypeOf[T]() }

// Policy names the ownership policy of a class.
type Policy = core.PolicyKind

const (
	RawPointer    = core.RawPointer
	SharedPointer = core.SharedPointer
)

// State is the lifecycle state of a wrapped object.
type State = core.State

const (
	Unwrapped       = core.Unwrapped
	WrappedWeak     = core.WrappedWeak
	WrappedExternal = core.WrappedExternal
	Destroyed       = core.Destroyed
)

// Pointer is the object pointer type of a class. *T selects the raw pointer
// policy and *Shared[T] the shared policy.
type Pointer[T any] interface {
	*T | *Shared[T]
}

// Binding is the type-erased view of a bound class.
type Binding interface {
	Name() string
	TypeID() TypeID
	Policy() Policy
	FunctionTemplate() *host.FunctionTemplate
	Count() int
	Bases() []TypeID
}

// classInfo is the part of a class binding shared with the directory and
// with derived classes.
type classInfo struct {
	id      TypeID
	name    string
	rt      *host.Runtime
	dir     *directory
	log     *zap.Logger
	rawType reflect.Type // *T
	ptrType reflect.Type // the object pointer type
	casts   *core.CastTable
	objects *core.InstanceRegistry
	ft      *host.FunctionTemplate
	unbound bool

	// key extracts the registry key from a *T or *Shared[T].
	key func(p any) any
	// view builds the object pointer for raw, a pointer to this class taken
	// from the live wrapper w of the object's concrete class.
	view func(w *core.Wrapper, raw any) any
}

// Name returns the class name.
func (ci *classInfo) Name() string { return ci.name }

// TypeID returns the identity of the bound type.
func (ci *classInfo) TypeID() TypeID { return ci.id }

// Policy returns the ownership policy.
func (ci *classInfo) Policy() Policy { return ci.objects.Policy().Kind() }

// FunctionTemplate returns the constructor template of the class.
func (ci *classInfo) FunctionTemplate() *host.FunctionTemplate { return ci.ft }

// Runtime returns the runtime the class is bound in.
func (ci *classInfo) Runtime() *host.Runtime { return ci.rt }

// Count returns the number of live wrapped objects.
func (ci *classInfo) Count() int { return ci.objects.Len() }

// Bases returns every base class reachable from the class.
func (ci *classInfo) Bases() []TypeID { return ci.casts.Bases() }

func (ci *classInfo) usable() error {
	if ci.unbound || ci.rt.IsDisposed() {
		return errorc.With(errors.ErrUnboundType,
			errorc.String(errors.ErrorFieldClassName, ci.name),
			errorc.String(errors.ErrorFieldClassType, ci.id.String()))
	}
	return nil
}

// unwrap resolves host value v to a pointer to this class. It returns the
// wrapper of the object's concrete class and the adjusted pointer.
func (ci *classInfo) unwrap(v host.Value) (*core.Wrapper, any, error) {
	src, w, key, ok := ci.dir.instance(v)
	if !ok {
		return nil, nil, errorc.With(errors.ErrUnwrappedObject,
			errorc.String(errors.ErrorFieldClassName, ci.name),
			errorc.String(errors.ErrorFieldObjectType, host.TypeName(v)))
	}
	if src == ci {
		return w, key, nil
	}
	raw, ok := src.casts.Cast(key, ci.id)
	if !ok {
		return nil, nil, errorc.With(errors.ErrUnwrappedObject,
			errorc.String(errors.ErrorFieldClassName, ci.name),
			errorc.String(errors.ErrorFieldObjectType, src.name))
	}
	return w, raw, nil
}

// adjust resolves the pointer conversion from this class to the receiver
// type recv, a pointer to the class itself, to a declared base or to an
// embedded struct. A nil CastFunc means identity.
func (ci *classInfo) adjust(recv reflect.Type) (core.CastFunc, bool) {
	if recv == ci.rawType {
		return nil, true
	}
	if recv.Kind() != reflect.Ptr {
		return nil, false
	}
	target := recv.Elem()
	if e, ok := ci.casts.Edge(core.TypeIDOf(target)); ok {
		if e.Adjust == nil {
			return func(p any) any { return p }, true
		}
		return e.Adjust, true
	}
	path, err := core.EmbeddedPath(ci.rawType.Elem(), target)
	if err != nil {
		return nil, false
	}
	return core.FieldPathCast(path), true
}

// Class is the binding of native type T in one runtime. P selects the
// ownership policy: *T for raw pointers, *Shared[T] for shared ownership.
//
// A Class is confined to the goroutine driving its runtime.
type Class[T any, P Pointer[T]] struct {
	*classInfo
	ctor       *invoke.Callable
	destructor func(*T)
}

func rawOf[T any, P Pointer[T]](p P) *T {
	switch x := any(p).(type) {
	case *T:
		return x
	case *Shared[T]:
		return x.Get()
	}
	return nil
}

func (c *Class[T, P]) destroyFunc(raw *T) func() {
	if c.destructor != nil {
		d := c.destructor
		return func() { d(raw) }
	}
	if d, ok := any(raw).(Destroyer); ok {
		return d.Destroy
	}
	return nil
}

// attach associates p with obj. retain makes the wrapper take its own
// reference instead of adopting the caller's.
func (c *Class[T, P]) attach(obj *host.Object, p P, retain, pinned bool) (*core.Wrapper, error) {
	raw := rawOf[T](p)
	if raw == nil {
		return nil, errorc.With(errors.ErrNilPointer, errorc.String(errors.ErrorFieldClassName, c.name))
	}
	if w, ok := c.objects.Find(raw); ok {
		return nil, errorc.With(errors.ErrAlreadyWrapped,
			errorc.String(errors.ErrorFieldClassName, c.name),
			errorc.String(errors.ErrorFieldObjectState, w.State().String()))
	}
	held := any(p)
	if retain {
		held = c.objects.Policy().Retain(held)
	}
	return c.objects.Add(raw, held, obj, pinned, c.destroyFunc(raw))
}

func (c *Class[T, P]) construct(info *host.CallInfo) (host.Value, error) {
	if err := c.usable(); err != nil {
		return nil, err
	}
	if c.ctor == nil {
		return nil, errorc.With(errors.ErrNoConstructor, errorc.String(errors.ErrorFieldClassName, c.name))
	}
	obj, ok := info.This.(*host.Object)
	if !ok {
		return nil, errorc.With(errors.ErrUnwrappedObject, errorc.String(errors.ErrorFieldClassName, c.name))
	}
	out, err := c.ctor.Invoke(c.dir, reflect.Value{}, info)
	if err != nil {
		return nil, err
	}
	p, _ := out[0].Interface().(P)
	if _, err := c.attach(obj, p, false, false); err != nil {
		return nil, err
	}
	c.log.Debug("object constructed", zap.Uint64("object", obj.ID()))
	return obj, nil
}
