package bind

import (
	"reflect"

	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/bind/errors"
	"github.com/ygrebnov/bind/host"
	"github.com/ygrebnov/bind/internal/convert"
	"github.com/ygrebnov/bind/internal/invoke"
)

// Module groups functions, variables, constants, classes and submodules
// under one host object.
type Module struct {
	rt   *host.Runtime
	dir  *directory
	tmpl *host.ObjectTemplate
}

// NewModule creates an empty module in rt.
func NewModule(rt *host.Runtime) *Module {
	return &Module{rt: rt, dir: directoryOf(rt), tmpl: rt.NewObjectTemplate()}
}

// Runtime returns the module's runtime.
func (m *Module) Runtime() *host.Runtime { return m.rt }

// SetValue sets a plain value.
func (m *Module) SetValue(name string, v host.Value) *Module {
	m.tmpl.Set(name, v, host.None)
	return m
}

// SetSubmodule sets a nested module.
func (m *Module) SetSubmodule(name string, sub *Module) *Module {
	return m.SetValue(name, sub.NewInstance())
}

// SetClass exposes a bound class under name, renaming it.
func (m *Module) SetClass(name string, c Binding) *Module {
	ft := c.FunctionTemplate()
	ft.SetClassName(name)
	m.tmpl.Set(name, ft.GetFunction(), host.DontDelete)
	return m
}

// SetFunction sets a function. Arguments and results are converted like
// static class functions.
func (m *Module) SetFunction(name string, fn any) error {
	call, err := invoke.Compile(fn, false)
	if err != nil {
		return errorc.With(err, errorc.String(errors.ErrorFieldMemberName, name))
	}
	m.tmpl.SetMethod(name, func(info *host.CallInfo) (host.Value, error) {
		return call.Call(m.dir, reflect.Value{}, info)
	}, nil)
	return nil
}

// SetVar exposes the Go variable ptr points to as a read-write property.
func (m *Module) SetVar(name string, ptr any) error {
	v := reflect.ValueOf(ptr)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return errorc.With(errors.ErrNilPointer, errorc.String(errors.ErrorFieldMemberName, name))
	}
	elem := v.Elem()
	m.tmpl.SetAccessor(name,
		func(*host.PropertyInfo) (host.Value, error) {
			return convert.ToHost(elem, m.dir)
		},
		func(_ *host.PropertyInfo, hv host.Value) error {
			nv, err := convert.FromHost(hv, elem.Type(), m.dir)
			if err != nil {
				return errorc.With(err, errorc.String(errors.ErrorFieldMemberName, name))
			}
			elem.Set(nv)
			return nil
		},
		nil, host.DontDelete)
	return nil
}

// SetProperty declares an accessor property from a getter taking no
// arguments and an optional setter taking the new value.
func (m *Module) SetProperty(name string, getter any, setter ...any) error {
	get, err := invoke.Compile(getter, false)
	if err != nil || get.NumParams() != 0 || get.NumResults() != 1 {
		return errorc.With(errors.ErrInvalidCallable, errorc.String(errors.ErrorFieldMemberName, name))
	}
	var set host.AccessorSetter
	if len(setter) > 0 && setter[0] != nil {
		s, err := invoke.Compile(setter[0], false)
		if err != nil || s.NumParams() != 1 || s.NumResults() != 0 {
			return errorc.With(errors.ErrInvalidCallable, errorc.String(errors.ErrorFieldMemberName, name))
		}
		set = func(info *host.PropertyInfo, v host.Value) error {
			_, err := s.Invoke(m.dir, reflect.Value{}, &host.CallInfo{Runtime: info.Runtime, This: info.This, Args: []host.Value{v}})
			return err
		}
	}
	m.tmpl.SetAccessor(name, func(info *host.PropertyInfo) (host.Value, error) {
		return get.Call(m.dir, reflect.Value{}, &host.CallInfo{Runtime: info.Runtime, This: info.This})
	}, set, nil, host.DontDelete)
	return nil
}

// SetConst sets a read-only value.
func (m *Module) SetConst(name string, value any) error {
	hv, err := convert.ToHost(reflect.ValueOf(value), m.dir)
	if err != nil {
		return errorc.With(err, errorc.String(errors.ErrorFieldMemberName, name))
	}
	m.tmpl.Set(name, hv, host.ReadOnly|host.DontDelete)
	return nil
}

// NewInstance creates a host object exposing the module's members.
func (m *Module) NewInstance() *host.Object {
	return m.tmpl.NewInstance()
}

// Install creates an instance and binds it to the global name.
func (m *Module) Install(name string) *host.Object {
	o := m.NewInstance()
	m.rt.SetGlobal(name, o)
	return o
}
