package bind

import (
	"fmt"
	"reflect"

	"github.com/ygrebnov/errorc"
	"go.uber.org/zap"

	"github.com/ygrebnov/bind/errors"
	"github.com/ygrebnov/bind/host"
	"github.com/ygrebnov/bind/internal/convert"
	"github.com/ygrebnov/bind/internal/core"
	"github.com/ygrebnov/bind/internal/invoke"
)

var callInfoType = reflect.TypeOf((*host.CallInfo)(nil))

// Constructor sets the factory run when scripts construct the class. The
// factory returns P, optionally followed by an error, and takes host
// arguments converted to its parameter types. A first parameter of type
// *host.CallInfo receives the raw call.
func (c *Class[T, P]) Constructor(factory any) error {
	call, err := invoke.Compile(factory, false)
	if err != nil {
		return errorc.With(err, errorc.String(errors.ErrorFieldClassName, c.name))
	}
	if call.NumResults() != 1 || call.Result(0) != c.ptrType {
		return errorc.With(errors.ErrInvalidCallable,
			errorc.String(errors.ErrorFieldClassName, c.name),
			errorc.String(errors.ErrorFieldArgWant, "func(...) "+c.ptrType.String()),
			errorc.String(errors.ErrorFieldArgGot, call.Type().String()))
	}
	c.ctor = call
	return nil
}

// self resolves the receiver of an instance member and applies the member's
// pointer adjustment.
func (c *Class[T, P]) self(this host.Value, adjust core.CastFunc) (any, error) {
	_, raw, err := c.unwrap(this)
	if err != nil {
		return nil, err
	}
	if adjust != nil {
		if raw = adjust(raw); raw == nil {
			return nil, errorc.With(errors.ErrUnwrappedObject,
				errorc.String(errors.ErrorFieldClassName, c.name),
				errorc.String(errors.ErrorFieldObjectState, "nil base"))
		}
	}
	return raw, nil
}

// Method declares a member function. When the first parameter of fn is a
// pointer to T, to a base of T or to a struct embedded in T, fn is an
// instance method called with the adjusted receiver. Otherwise fn is a
// static function, available on the prototype and on the constructor.
func (c *Class[T, P]) Method(name string, fn any) error {
	ft := reflect.TypeOf(fn)
	if ft == nil || ft.Kind() != reflect.Func {
		return errorc.With(errors.ErrInvalidCallable,
			errorc.String(errors.ErrorFieldClassName, c.name),
			errorc.String(errors.ErrorFieldMemberName, name))
	}
	if ft.NumIn() > 0 && ft.In(0) != callInfoType {
		if adjust, ok := c.adjust(ft.In(0)); ok {
			return c.instanceMethod(name, fn, adjust)
		}
	}
	return c.StaticFunction(name, fn)
}

func (c *Class[T, P]) instanceMethod(name string, fn any, adjust core.CastFunc) error {
	call, err := invoke.Compile(fn, true)
	if err != nil {
		return errorc.With(err, errorc.String(errors.ErrorFieldMemberName, name))
	}
	c.ft.PrototypeTemplate().SetMethod(name, func(info *host.CallInfo) (host.Value, error) {
		raw, err := c.self(info.This, adjust)
		if err != nil {
			return nil, errorc.With(err, errorc.String(errors.ErrorFieldMemberName, name))
		}
		return call.Call(c.dir, reflect.ValueOf(raw), info)
	}, nil)
	c.log.Debug("method declared", zap.String("member", name))
	return nil
}

// StaticFunction declares fn as a static function. It needs no instance and
// is available on the prototype and on the constructor.
func (c *Class[T, P]) StaticFunction(name string, fn any) error {
	call, err := invoke.Compile(fn, false)
	if err != nil {
		return errorc.With(err,
			errorc.String(errors.ErrorFieldClassName, c.name),
			errorc.String(errors.ErrorFieldMemberName, name))
	}
	cb := func(info *host.CallInfo) (host.Value, error) {
		return call.Call(c.dir, reflect.Value{}, info)
	}
	c.ft.PrototypeTemplate().SetMethod(name, cb, nil)
	c.ft.SetMethod(name, cb, nil)
	c.log.Debug("static function declared", zap.String("member", name))
	return nil
}

// Field exposes the struct field at the dotted path as a read-write
// property. Promoted fields of embedded structs are found by name.
func (c *Class[T, P]) Field(name, path string) error {
	return c.field(name, path, false)
}

// ReadOnlyField exposes the struct field at the dotted path as a read-only
// property.
func (c *Class[T, P]) ReadOnlyField(name, path string) error {
	return c.field(name, path, true)
}

func (c *Class[T, P]) field(name, path string, readOnly bool) error {
	index, typ, err := core.FieldPath(c.rawType.Elem(), path)
	if err != nil {
		return errorc.With(err,
			errorc.String(errors.ErrorFieldClassName, c.name),
			errorc.String(errors.ErrorFieldMemberName, name))
	}
	locate := func(this host.Value) (reflect.Value, error) {
		raw, err := c.self(this, nil)
		if err != nil {
			return reflect.Value{}, errorc.With(err, errorc.String(errors.ErrorFieldMemberName, name))
		}
		fv, err := reflect.ValueOf(raw).Elem().FieldByIndexErr(index)
		if err != nil {
			return reflect.Value{}, errorc.With(errors.ErrUnwrappedObject,
				errorc.String(errors.ErrorFieldMemberName, name),
				errorc.String(errors.ErrorFieldFieldPath, path),
				errorc.Error(errors.ErrorFieldCause, err))
		}
		return fv, nil
	}

	get := func(info *host.PropertyInfo) (host.Value, error) {
		fv, err := locate(info.This)
		if err != nil {
			return nil, err
		}
		return convert.ToHost(fv, c.dir)
	}
	var set host.AccessorSetter
	if !readOnly {
		set = func(info *host.PropertyInfo, v host.Value) error {
			fv, err := locate(info.This)
			if err != nil {
				return err
			}
			nv, err := convert.FromHost(v, typ, c.dir)
			if err != nil {
				return errorc.With(err, errorc.String(errors.ErrorFieldMemberName, name))
			}
			fv.Set(nv)
			return nil
		}
	}
	c.ft.PrototypeTemplate().SetAccessor(name, get, set, nil, host.DontDelete)
	c.log.Debug("field declared", zap.String("member", name), zap.String("path", path), zap.Bool("read_only", readOnly))
	return nil
}

// Property declares an accessor property from a getter and an optional
// setter. The getter takes the receiver and returns the value, optionally
// followed by an error. The setter takes the receiver and the new value and
// returns nothing or an error. Receivers resolve like Method receivers.
// Without a setter the property is read-only.
func (c *Class[T, P]) Property(name string, getter any, setter ...any) error {
	get, err := c.accessor(name, getter, 0, 1)
	if err != nil {
		return err
	}
	var set *accessor
	if len(setter) > 0 && setter[0] != nil {
		if set, err = c.accessor(name, setter[0], 1, 0); err != nil {
			return err
		}
	}

	hostGet := func(info *host.PropertyInfo) (host.Value, error) {
		raw, err := c.self(info.This, get.adjust)
		if err != nil {
			return nil, errorc.With(err, errorc.String(errors.ErrorFieldMemberName, name))
		}
		return get.call.Call(c.dir, reflect.ValueOf(raw), &host.CallInfo{Runtime: info.Runtime, This: info.This})
	}
	var hostSet host.AccessorSetter
	if set != nil {
		hostSet = func(info *host.PropertyInfo, v host.Value) error {
			raw, err := c.self(info.This, set.adjust)
			if err != nil {
				return errorc.With(err, errorc.String(errors.ErrorFieldMemberName, name))
			}
			_, err = set.call.Invoke(c.dir, reflect.ValueOf(raw),
				&host.CallInfo{Runtime: info.Runtime, This: info.This, Args: []host.Value{v}})
			return err
		}
	}
	c.ft.PrototypeTemplate().SetAccessor(name, hostGet, hostSet, nil, host.DontDelete)
	c.log.Debug("property declared", zap.String("member", name), zap.Bool("read_only", set == nil))
	return nil
}

type accessor struct {
	call   *invoke.Callable
	adjust core.CastFunc
}

func (c *Class[T, P]) accessor(name string, fn any, params, results int) (*accessor, error) {
	fail := func() (*accessor, error) {
		return nil, errorc.With(errors.ErrInvalidCallable,
			errorc.String(errors.ErrorFieldClassName, c.name),
			errorc.String(errors.ErrorFieldMemberName, name),
			errorc.String(errors.ErrorFieldArgGot, fmt.Sprintf("%T", fn)))
	}
	ft := reflect.TypeOf(fn)
	if ft == nil || ft.Kind() != reflect.Func || ft.NumIn() == 0 {
		return fail()
	}
	adjust, ok := c.adjust(ft.In(0))
	if !ok {
		return nil, errorc.With(errors.ErrUnreachableReceiver,
			errorc.String(errors.ErrorFieldClassName, c.name),
			errorc.String(errors.ErrorFieldMemberName, name),
			errorc.String(errors.ErrorFieldArgGot, ft.In(0).String()))
	}
	call, err := invoke.Compile(fn, true)
	if err != nil {
		return nil, err
	}
	if call.NumParams() != params || call.NumResults() != results || ft.IsVariadic() {
		return fail()
	}
	return &accessor{call: call, adjust: adjust}, nil
}

// Constant declares a read-only value on the constructor and on the
// prototype.
func (c *Class[T, P]) Constant(name string, value any) error {
	hv, err := convert.ToHost(reflect.ValueOf(value), c.dir)
	if err != nil {
		return errorc.With(err,
			errorc.String(errors.ErrorFieldClassName, c.name),
			errorc.String(errors.ErrorFieldMemberName, name))
	}
	c.ft.Set(name, hv, host.ReadOnly|host.DontDelete)
	c.ft.PrototypeTemplate().Set(name, hv, host.ReadOnly|host.DontDelete)
	return nil
}
