package bind

import (
	"reflect"

	"github.com/ygrebnov/errorc"
	"go.uber.org/zap"

	"github.com/ygrebnov/bind/constants"
	"github.com/ygrebnov/bind/errors"
	"github.com/ygrebnov/bind/host"
	"github.com/ygrebnov/bind/internal/core"
)

type directoryKey struct{}

// directory maps type identities to the classes bound in one runtime. It is
// stored in the runtime's data slot and torn down when the runtime is
// disposed.
type directory struct {
	rt      *host.Runtime
	log     *zap.Logger
	classes map[TypeID]*classInfo
	order   []*classInfo
	byPtr   map[reflect.Type]*classInfo
}

func lookupDirectory(rt *host.Runtime) *directory {
	if rt == nil {
		return nil
	}
	d, _ := rt.Data(directoryKey{}).(*directory)
	return d
}

func directoryOf(rt *host.Runtime) *directory {
	if d := lookupDirectory(rt); d != nil {
		return d
	}
	d := &directory{
		rt:      rt,
		log:     Logger().With(zap.String("runtime", rt.Name())),
		classes: make(map[TypeID]*classInfo),
		byPtr:   make(map[reflect.Type]*classInfo),
	}
	rt.SetData(directoryKey{}, d)
	rt.OnDispose(d.destroy)
	return d
}

func (d *directory) add(ci *classInfo) {
	d.classes[ci.id] = ci
	d.order = append(d.order, ci)
	d.byPtr[ci.rawType] = ci
	d.byPtr[ci.ptrType] = ci
}

func (d *directory) remove(ci *classInfo) {
	delete(d.classes, ci.id)
	delete(d.byPtr, ci.rawType)
	delete(d.byPtr, ci.ptrType)
	for i, c := range d.order {
		if c == ci {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
}

// unbind destroys every instance of ci and removes it from the directory.
func (d *directory) unbind(ci *classInfo) {
	n := ci.objects.DestroyAll()
	d.remove(ci)
	ci.unbound = true
	ci.log.Debug("class unbound", zap.Int("destroyed", n))
}

// destroy tears down every class, most recently bound first.
func (d *directory) destroy() {
	for i := len(d.order) - 1; i >= 0; i-- {
		ci := d.order[i]
		ci.objects.DestroyAll()
		ci.unbound = true
	}
	d.log.Debug("classes destroyed", zap.Int("classes", len(d.order)))
	d.classes = make(map[TypeID]*classInfo)
	d.byPtr = make(map[reflect.Type]*classInfo)
	d.order = nil
}

// instance resolves a host value to the live wrapper of its concrete class.
func (d *directory) instance(v host.Value) (*classInfo, *core.Wrapper, any, bool) {
	o, ok := v.(*host.Object)
	if !ok || o == nil || o.IsCollected() || o.Runtime() != d.rt {
		return nil, nil, nil, false
	}
	id, ok := o.InternalField(constants.FieldTypeID).(TypeID)
	key := o.InternalField(constants.FieldNativePtr)
	if !ok || key == nil {
		return nil, nil, nil, false
	}
	ci := d.classes[id]
	if ci == nil {
		return nil, nil, nil, false
	}
	w, ok := ci.objects.Find(key)
	if !ok || w.Object() != o {
		return nil, nil, nil, false
	}
	return ci, w, key, true
}

// Runtime implements convert.Resolver.
func (d *directory) Runtime() *host.Runtime { return d.rt }

// Native implements convert.Resolver.
func (d *directory) Native(v host.Value, t reflect.Type) (reflect.Value, bool, error) {
	ci := d.byPtr[t]
	if ci == nil {
		return reflect.Value{}, false, nil
	}
	if v == nil {
		return reflect.Zero(t), true, nil
	}
	w, raw, err := ci.unwrap(v)
	if err != nil {
		return reflect.Value{}, true, err
	}
	if t == ci.rawType {
		return reflect.ValueOf(raw), true, nil
	}
	return reflect.ValueOf(ci.view(w, raw)), true, nil
}

// Host implements convert.Resolver. Pointers that are not wrapped convert
// to undefined.
func (d *directory) Host(v reflect.Value) (host.Value, bool, error) {
	ci := d.byPtr[v.Type()]
	if ci == nil {
		return nil, false, nil
	}
	if v.IsNil() {
		return nil, true, nil
	}
	key := ci.key(v.Interface())
	if key == nil {
		return nil, true, nil
	}
	if w, ok := ci.objects.Find(key); ok {
		return w.Object(), true, nil
	}
	return nil, true, nil
}

// Unbind destroys every live instance of T in rt and removes its binding.
// Unbinding a type that is not bound does nothing.
func Unbind[T any](rt *host.Runtime) {
	d := lookupDirectory(rt)
	if d == nil {
		return
	}
	if ci, ok := d.classes[core.TypeOf[T]()]; ok {
		d.unbind(ci)
	}
}

// Lookup returns the class bound for id in rt.
func Lookup(rt *host.Runtime, id TypeID) (Binding, error) {
	if d := lookupDirectory(rt); d != nil {
		if ci, ok := d.classes[id]; ok {
			return ci, nil
		}
	}
	return nil, errorc.With(errors.ErrUnboundType, errorc.String(errors.ErrorFieldClassType, id.String()))
}

// Classes returns the classes bound in rt in bind order.
func Classes(rt *host.Runtime) []Binding {
	d := lookupDirectory(rt)
	if d == nil {
		return nil
	}
	out := make([]Binding, 0, len(d.order))
	for _, ci := range d.order {
		out = append(out, ci)
	}
	return out
}

// FindObject returns the host object wrapping p in rt, or nil when p is not
// wrapped. It fails with ErrUnboundType when T is not bound.
func FindObject[T any](rt *host.Runtime, p *T) (*host.Object, error) {
	id := core.TypeOf[T]()
	d := lookupDirectory(rt)
	if d == nil || d.classes[id] == nil {
		return nil, errorc.With(errors.ErrUnboundType, errorc.String(errors.ErrorFieldClassType, id.String()))
	}
	if p == nil {
		return nil, nil
	}
	if w, ok := d.classes[id].objects.Find(p); ok {
		return w.Object(), nil
	}
	return nil, nil
}
