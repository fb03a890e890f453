package bind

import (
	"reflect"

	"github.com/ygrebnov/errorc"
	"go.uber.org/zap"

	"github.com/ygrebnov/bind/errors"
	"github.com/ygrebnov/bind/internal/core"
)

// Inherit declares the bound class B as a base of T. T must embed B, directly
// or through other embedded structs, by value or by pointer; the pointer
// adjustment is computed once from the embedding path. Instances of T then
// expose the members of B and convert to *B wherever a *B is expected.
//
// Classes already derived from T reach B as well, whatever the order in which
// the bases were declared.
//
// Inherit fails with ErrUnboundBase when B is not bound, ErrDuplicateInheritance
// when B is already a base of T, and ErrAmbiguousBase when a base of B would
// become reachable twice from T or from a class derived from T.
func Inherit[B, T any, P Pointer[T]](c *Class[T, P]) error {
	base, err := c.base(core.TypeOf[B]())
	if err != nil {
		return err
	}
	path, err := core.EmbeddedPath(reflect.TypeOf((*T)(nil)).Elem(), reflect.TypeOf((*B)(nil)).Elem())
	if err != nil {
		return err
	}
	return c.inherit(base, core.FieldPathCast(path))
}

// InheritFunc declares the bound class B as a base of T reached through cast.
// Use it when B is not embedded in T. cast must return nil when the base is
// not available.
func InheritFunc[B, T any, P Pointer[T]](c *Class[T, P], cast func(*T) *B) error {
	if cast == nil {
		return errorc.With(errors.ErrInvalidCallable, errorc.String(errors.ErrorFieldClassName, c.name))
	}
	base, err := c.base(core.TypeOf[B]())
	if err != nil {
		return err
	}
	return c.inherit(base, func(p any) any {
		t, _ := p.(*T)
		if t == nil {
			return nil
		}
		if b := cast(t); b != nil {
			return b
		}
		return nil
	})
}

func (c *Class[T, P]) base(id TypeID) (*classInfo, error) {
	if err := c.usable(); err != nil {
		return nil, err
	}
	base, ok := c.dir.classes[id]
	if !ok {
		return nil, errorc.With(errors.ErrUnboundBase,
			errorc.String(errors.ErrorFieldClassName, c.name),
			errorc.String(errors.ErrorFieldBaseType, id.String()))
	}
	if base.Policy() != c.Policy() {
		return nil, errorc.With(errors.ErrPolicyMismatch,
			errorc.String(errors.ErrorFieldClassName, c.name),
			errorc.String(errors.ErrorFieldBaseType, id.String()),
			errorc.String(errors.ErrorFieldPolicy, base.Policy().String()))
	}
	return base, nil
}

func (c *Class[T, P]) inherit(base *classInfo, adjust core.CastFunc) error {
	var derived []*core.CastTable
	for _, ci := range c.dir.order {
		if ci.id != c.id && ci.casts.Has(c.id) {
			derived = append(derived, ci.casts)
		}
	}
	if err := c.casts.Inherit(base.casts, adjust, derived...); err != nil {
		return errorc.With(err, errorc.String(errors.ErrorFieldClassName, c.name))
	}
	c.ft.Inherit(base.ft)
	c.log.Debug("base declared", zap.String("base", base.name))
	return nil
}
