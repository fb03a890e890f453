// Package invoke calls Go functions from host callbacks, marshalling
// arguments and results.
package invoke

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/bind/errors"
	"github.com/ygrebnov/bind/host"
	"github.com/ygrebnov/bind/internal/convert"
)

var callInfoType = reflect.TypeOf((*host.CallInfo)(nil))

// Callable is a Go function whose signature has been inspected once.
//
// Supported shapes, after an optional receiver:
//
//	func(args...) [results...] [error]
//	func(*host.CallInfo, args...) [results...] [error]
//
// A function taking *host.CallInfo accepts more arguments than it declares.
type Callable struct {
	fn       reflect.Value
	typ      reflect.Type
	receiver reflect.Type
	withInfo bool
	params   []reflect.Type
	variadic bool
	results  int
	errLast  bool
}

// Compile inspects fn. When receiver is true the first parameter is a receiver
// supplied by the caller rather than a host argument.
func Compile(fn any, receiver bool) (*Callable, error) {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return nil, errorc.With(errors.ErrInvalidCallable,
			errorc.String(errors.ErrorFieldArgGot, fmt.Sprintf("%T", fn)))
	}
	t := v.Type()
	c := &Callable{fn: v, typ: t, variadic: t.IsVariadic()}

	i := 0
	if receiver {
		if t.NumIn() == 0 {
			return nil, errorc.With(errors.ErrInvalidCallable,
				errorc.String(errors.ErrorFieldArgGot, t.String()))
		}
		c.receiver = t.In(0)
		i++
	}
	if i < t.NumIn() && t.In(i) == callInfoType {
		c.withInfo = true
		i++
	}
	for ; i < t.NumIn(); i++ {
		c.params = append(c.params, t.In(i))
	}

	c.results = t.NumOut()
	if c.results > 0 && t.Out(c.results-1) == convert.ErrorType() {
		c.errLast = true
		c.results--
	}
	return c, nil
}

// Type returns the function type.
func (c *Callable) Type() reflect.Type { return c.typ }

// Receiver returns the receiver type, or nil.
func (c *Callable) Receiver() reflect.Type { return c.receiver }

// NumParams returns the number of host arguments the function takes, not
// counting the receiver or a *host.CallInfo parameter.
func (c *Callable) NumParams() int { return len(c.params) }

// Param returns the type of host argument i.
func (c *Callable) Param(i int) reflect.Type { return c.params[i] }

// NumResults returns the number of results, not counting a trailing error.
func (c *Callable) NumResults() int { return c.results }

// Result returns the type of result i.
func (c *Callable) Result(i int) reflect.Type { return c.typ.Out(i) }

// Call invokes the function and converts its results into a host value:
// undefined for no result, the value for one result and an array for more.
func (c *Callable) Call(r convert.Resolver, recv reflect.Value, info *host.CallInfo) (host.Value, error) {
	out, err := c.Invoke(r, recv, info)
	if err != nil {
		return nil, err
	}
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return convert.ToHost(out[0], r)
	}
	arr := make([]host.Value, len(out))
	for i, o := range out {
		hv, err := convert.ToHost(o, r)
		if err != nil {
			return nil, err
		}
		arr[i] = hv
	}
	return arr, nil
}

// Invoke calls the function with arguments taken from info and returns its
// results without converting them. A non-nil trailing error result is
// returned as the error. A panic in the function is returned as
// ErrNativePanic.
func (c *Callable) Invoke(r convert.Resolver, recv reflect.Value, info *host.CallInfo) (out []reflect.Value, err error) {
	var args []host.Value
	if info != nil {
		args = info.Args
	}
	in, err := c.arguments(r, recv, info, args)
	if err != nil {
		return nil, err
	}

	defer func() {
		if p := recover(); p != nil {
			out = nil
			err = errorc.With(errors.ErrNativePanic,
				errorc.String(errors.ErrorFieldArgWant, c.typ.String()),
				errorc.String(errors.ErrorFieldPanic, fmt.Sprint(p)))
		}
	}()

	res := c.fn.Call(in)
	if c.errLast {
		if e := res[len(res)-1]; !e.IsNil() {
			return nil, e.Interface().(error)
		}
		res = res[:len(res)-1]
	}
	return res, nil
}

func (c *Callable) arguments(r convert.Resolver, recv reflect.Value, info *host.CallInfo, args []host.Value) ([]reflect.Value, error) {
	n := len(c.params)
	switch {
	case c.variadic:
		if len(args) < n-1 {
			return nil, c.countError(len(args))
		}
	case c.withInfo:
		// extra arguments stay reachable through the CallInfo
		if len(args) < n {
			return nil, c.countError(len(args))
		}
		args = args[:n]
	case len(args) != n:
		return nil, c.countError(len(args))
	}

	in := make([]reflect.Value, 0, n+2)
	if c.receiver != nil {
		if !recv.IsValid() || !recv.Type().AssignableTo(c.receiver) {
			return nil, errorc.With(errors.ErrArgumentType,
				errorc.String(errors.ErrorFieldArgIndex, "receiver"),
				errorc.String(errors.ErrorFieldArgWant, c.receiver.String()))
		}
		in = append(in, recv)
	}
	if c.withInfo {
		in = append(in, reflect.ValueOf(info))
	}

	for i, a := range args {
		pt := c.paramType(i)
		v, err := convert.FromHost(a, pt, r)
		if err != nil {
			return nil, errorc.With(errors.ErrArgumentType,
				errorc.String(errors.ErrorFieldArgIndex, strconv.Itoa(i)),
				errorc.String(errors.ErrorFieldArgWant, pt.String()),
				errorc.String(errors.ErrorFieldArgGot, host.TypeName(a)),
				errorc.Error(errors.ErrorFieldCause, err))
		}
		in = append(in, v)
	}
	return in, nil
}

func (c *Callable) paramType(i int) reflect.Type {
	if c.variadic && i >= len(c.params)-1 {
		return c.params[len(c.params)-1].Elem()
	}
	return c.params[i]
}

func (c *Callable) countError(got int) error {
	want := strconv.Itoa(len(c.params))
	switch {
	case c.variadic:
		want = "at least " + strconv.Itoa(len(c.params)-1)
	case c.withInfo:
		want = "at least " + want
	}
	return errorc.With(errors.ErrArgumentCount,
		errorc.String(errors.ErrorFieldArgWant, want),
		errorc.String(errors.ErrorFieldArgGot, strconv.Itoa(got)))
}
