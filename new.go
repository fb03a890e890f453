package bind

import (
	"fmt"
	"reflect"

	"github.com/ygrebnov/errorc"
	"go.uber.org/zap"

	"github.com/ygrebnov/bind/constants"
	"github.com/ygrebnov/bind/errors"
	"github.com/ygrebnov/bind/host"
	"github.com/ygrebnov/bind/internal/core"
)

type config[T any] struct {
	name       string
	destructor func(*T)
	logger     *zap.Logger
}

// Option configures a Class at bind time.
type Option[T any] func(*config[T])

// WithName sets the host class name. It defaults to the Go type name.
func WithName[T any](name string) Option[T] {
	return func(c *config[T]) { c.name = name }
}

// WithDestructor sets the function destroying raw objects owned by the
// binding. It defaults to calling Destroy on types implementing Destroyer.
// Shared objects are destroyed by their Shared handle instead.
func WithDestructor[T any](fn func(*T)) Option[T] {
	return func(c *config[T]) { c.destructor = fn }
}

// WithLogger overrides the package logger for one class.
func WithLogger[T any](l *zap.Logger) Option[T] {
	return func(c *config[T]) { c.logger = l }
}

// NewClass binds T in runtime rt. Binding the same type twice in one runtime
// fails with ErrDuplicateBinding.
func NewClass[T any, P Pointer[T]](rt *host.Runtime, opts ...Option[T]) (*Class[T, P], error) {
	if rt == nil {
		panic("bind: runtime is nil")
	}
	cfg := config[T]{}
	for _, opt := range opts {
		opt(&cfg)
	}

	if rt.IsDisposed() {
		return nil, host.ErrDisposed
	}

	d := directoryOf(rt)
	id := core.TypeOf[T]()
	if prev, ok := d.classes[id]; ok {
		return nil, errorc.With(errors.ErrDuplicateBinding,
			errorc.String(errors.ErrorFieldClassName, prev.name),
			errorc.String(errors.ErrorFieldClassType, id.String()))
	}
	kind := core.RawPointer
	var zero P
	if _, ok := any(zero).(*Shared[T]); ok {
		kind = core.SharedPointer
	}

	name := cfg.name
	if name == "" {
		name = id.Name()
	}
	log := cfg.logger
	if log == nil {
		log = d.log
	}
	log = log.With(zap.String("class", name), zap.Stringer("policy", kind))

	c := &Class[T, P]{destructor: cfg.destructor}
	c.classInfo = &classInfo{
		id:      id,
		name:    name,
		rt:      rt,
		dir:     d,
		log:     log,
		rawType: reflect.TypeOf((*T)(nil)),
		ptrType: reflect.TypeOf(zero),
		casts:   core.NewCastTable(id),
		objects: core.NewInstanceRegistry(id, core.PolicyFor(kind), log),
	}
	c.key = func(p any) any {
		switch x := p.(type) {
		case *T:
			if x != nil {
				return x
			}
		case *Shared[T]:
			if r := x.Get(); r != nil {
				return r
			}
		}
		return nil
	}
	c.view = func(w *core.Wrapper, raw any) any {
		p, _ := raw.(*T)
		if kind == core.RawPointer || p == nil {
			return p
		}
		held, ok := w.Held().(controlled)
		if !ok {
			return (*Shared[T])(nil)
		}
		return alias(held.sharedControl(), p)
	}

	c.ft = rt.NewFunctionTemplate(name, c.construct, nil)
	c.ft.InstanceTemplate().SetInternalFieldCount(constants.InternalFieldSize)
	d.add(c.classInfo)

	log.Debug("class bound", zap.Stringer("type", id))
	return c, nil
}

// MustClass is like NewClass but panics on error.
func MustClass[T any, P Pointer[T]](rt *host.Runtime, opts ...Option[T]) *Class[T, P] {
	c, err := NewClass[T, P](rt, opts...)
	if err != nil {
		panic(fmt.Errorf("bind: MustClass: %w", err))
	}
	return c
}
