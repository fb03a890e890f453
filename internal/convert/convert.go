// Package convert marshals values between Go and host representations.
package convert

import (
	"math"
	"reflect"
	"sort"

	"fortio.org/safecast"
	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/bind/errors"
	"github.com/ygrebnov/bind/host"
)

// Resolver converts bound native pointers. It is implemented by the class
// directory of a runtime.
type Resolver interface {
	Runtime() *host.Runtime
	// Native converts host value v into bound pointer type t. ok is false
	// when t is not a bound pointer type.
	Native(v host.Value, t reflect.Type) (rv reflect.Value, ok bool, err error)
	// Host converts bound pointer v into its host object. ok is false when
	// v's type is not a bound pointer type.
	Host(v reflect.Value) (hv host.Value, ok bool, err error)
}

var (
	hostValueType  = reflect.TypeOf((*host.Value)(nil)).Elem()
	hostObjectType = reflect.TypeOf((*host.Object)(nil))
	errorType      = reflect.TypeOf((*error)(nil)).Elem()
)

// ErrorType is the reflect type of the error interface.
func ErrorType() reflect.Type { return errorType }

func conversionError(want reflect.Type, v host.Value) error {
	return errorc.With(errors.ErrConversion,
		errorc.String(errors.ErrorFieldArgWant, want.String()),
		errorc.String(errors.ErrorFieldArgGot, host.TypeName(v)))
}

// FromHost converts host value v into a Go value of type t.
//
//nolint:gocyclo // one case per kind
func FromHost(v host.Value, t reflect.Type, r Resolver) (reflect.Value, error) {
	if t == hostValueType {
		if v == nil {
			return reflect.Zero(t), nil
		}
		return reflect.ValueOf(&v).Elem(), nil
	}
	if t == hostObjectType {
		if v == nil {
			return reflect.Zero(t), nil
		}
		if o, ok := v.(*host.Object); ok {
			return reflect.ValueOf(o), nil
		}
		return reflect.Value{}, conversionError(t, v)
	}
	if r != nil {
		rv, ok, err := r.Native(v, t)
		if ok || err != nil {
			return rv, err
		}
	}

	switch t.Kind() {
	case reflect.Bool:
		b, ok := v.(bool)
		if !ok {
			return reflect.Value{}, conversionError(t, v)
		}
		return reflect.ValueOf(b).Convert(t), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f, ok := v.(float64)
		if !ok || f != math.Trunc(f) {
			return reflect.Value{}, conversionError(t, v)
		}
		n, err := toInt(f, t.Kind())
		if err != nil {
			return reflect.Value{}, errorc.With(conversionError(t, v), errorc.Error(errors.ErrorFieldCause, err))
		}
		rv := reflect.New(t).Elem()
		rv.SetInt(n)
		return rv, nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		f, ok := v.(float64)
		if !ok || f != math.Trunc(f) {
			return reflect.Value{}, conversionError(t, v)
		}
		n, err := toUint(f, t.Kind())
		if err != nil {
			return reflect.Value{}, errorc.With(conversionError(t, v), errorc.Error(errors.ErrorFieldCause, err))
		}
		rv := reflect.New(t).Elem()
		rv.SetUint(n)
		return rv, nil

	case reflect.Float32, reflect.Float64:
		f, ok := v.(float64)
		if !ok {
			return reflect.Value{}, conversionError(t, v)
		}
		if t.Kind() == reflect.Float32 && !math.IsInf(f, 0) && !math.IsNaN(f) && math.Abs(f) > math.MaxFloat32 {
			return reflect.Value{}, conversionError(t, v)
		}
		rv := reflect.New(t).Elem()
		rv.SetFloat(f)
		return rv, nil

	case reflect.String:
		s, ok := v.(string)
		if !ok {
			return reflect.Value{}, conversionError(t, v)
		}
		return reflect.ValueOf(s).Convert(t), nil

	case reflect.Slice:
		if v == nil {
			return reflect.Zero(t), nil
		}
		if s, ok := v.(string); ok && t.Elem().Kind() == reflect.Uint8 {
			return reflect.ValueOf([]byte(s)).Convert(t), nil
		}
		arr, ok := v.([]host.Value)
		if !ok {
			return reflect.Value{}, conversionError(t, v)
		}
		out := reflect.MakeSlice(t, len(arr), len(arr))
		for i, e := range arr {
			ev, err := FromHost(e, t.Elem(), r)
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(i).Set(ev)
		}
		return out, nil

	case reflect.Array:
		arr, ok := v.([]host.Value)
		if !ok || len(arr) != t.Len() {
			return reflect.Value{}, conversionError(t, v)
		}
		out := reflect.New(t).Elem()
		for i, e := range arr {
			ev, err := FromHost(e, t.Elem(), r)
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(i).Set(ev)
		}
		return out, nil

	case reflect.Map:
		if v == nil {
			return reflect.Zero(t), nil
		}
		return mapFromHost(v, t, r)

	case reflect.Ptr, reflect.Interface, reflect.Func, reflect.Chan:
		if v == nil {
			return reflect.Zero(t), nil
		}
		if t.Kind() == reflect.Interface && reflect.TypeOf(v).Implements(t) {
			rv := reflect.New(t).Elem()
			rv.Set(reflect.ValueOf(v))
			return rv, nil
		}
	}
	return reflect.Value{}, conversionError(t, v)
}

func mapFromHost(v host.Value, t reflect.Type, r Resolver) (reflect.Value, error) {
	o, ok := v.(*host.Object)
	if !ok || o.IsFunction() || t.Key().Kind() != reflect.String || r == nil {
		return reflect.Value{}, conversionError(t, v)
	}
	rt := r.Runtime()
	out := reflect.MakeMapWithSize(t, len(o.Keys()))
	for _, k := range o.Keys() {
		hv, err := rt.Get(o, k)
		if err != nil {
			return reflect.Value{}, err
		}
		ev, err := FromHost(hv, t.Elem(), r)
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetMapIndex(reflect.ValueOf(k).Convert(t.Key()), ev)
	}
	return out, nil
}

// ToHost converts Go value v into a host value. Bound pointers become their
// host objects; pointers that are not wrapped become undefined.
//
//nolint:gocyclo // one case per kind
func ToHost(v reflect.Value, r Resolver) (host.Value, error) {
	if !v.IsValid() {
		return nil, nil
	}
	if v.Type() == hostObjectType {
		if v.IsNil() {
			return nil, nil
		}
		return v.Interface(), nil
	}
	if r != nil {
		hv, ok, err := r.Host(v)
		if ok || err != nil {
			return hv, err
		}
	}

	switch v.Kind() {
	case reflect.Bool:
		return v.Bool(), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f, err := safecast.Convert[float64](v.Int())
		if err != nil {
			return nil, errorc.With(errors.ErrConversion,
				errorc.String(errors.ErrorFieldArgWant, "number"),
				errorc.String(errors.ErrorFieldArgGot, v.Type().String()),
				errorc.Error(errors.ErrorFieldCause, err))
		}
		return f, nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		f, err := safecast.Convert[float64](v.Uint())
		if err != nil {
			return nil, errorc.With(errors.ErrConversion,
				errorc.String(errors.ErrorFieldArgWant, "number"),
				errorc.String(errors.ErrorFieldArgGot, v.Type().String()),
				errorc.Error(errors.ErrorFieldCause, err))
		}
		return f, nil

	case reflect.Float32, reflect.Float64:
		return v.Float(), nil

	case reflect.String:
		return v.String(), nil

	case reflect.Slice:
		if v.IsNil() {
			return nil, nil
		}
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return string(v.Bytes()), nil
		}
		fallthrough
	case reflect.Array:
		out := make([]host.Value, v.Len())
		for i := range out {
			e, err := ToHost(v.Index(i), r)
			if err != nil {
				return nil, err
			}
			out[i] = e
		}
		return out, nil

	case reflect.Map:
		if v.IsNil() {
			return nil, nil
		}
		return mapToHost(v, r)

	case reflect.Interface:
		if v.IsNil() {
			return nil, nil
		}
		return ToHost(v.Elem(), r)

	case reflect.Ptr:
		if v.IsNil() {
			return nil, nil
		}
	}
	return nil, errorc.With(errors.ErrConversion,
		errorc.String(errors.ErrorFieldArgGot, v.Type().String()))
}

func mapToHost(v reflect.Value, r Resolver) (host.Value, error) {
	if v.Type().Key().Kind() != reflect.String || r == nil {
		return nil, errorc.With(errors.ErrConversion,
			errorc.String(errors.ErrorFieldArgGot, v.Type().String()))
	}
	rt := r.Runtime()
	keys := v.MapKeys()
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })

	o := rt.NewObject()
	for _, k := range keys {
		e, err := ToHost(v.MapIndex(k), r)
		if err != nil {
			return nil, err
		}
		if err := rt.Set(o, k.String(), e); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func toInt(f float64, k reflect.Kind) (int64, error) {
	switch k {
	case reflect.Int8:
		n, err := safecast.Convert[int8](f)
		return int64(n), err
	case reflect.Int16:
		n, err := safecast.Convert[int16](f)
		return int64(n), err
	case reflect.Int32:
		n, err := safecast.Convert[int32](f)
		return int64(n), err
	case reflect.Int:
		n, err := safecast.Convert[int](f)
		return int64(n), err
	default:
		return safecast.Convert[int64](f)
	}
}

func toUint(f float64, k reflect.Kind) (uint64, error) {
	switch k {
	case reflect.Uint8:
		n, err := safecast.Convert[uint8](f)
		return uint64(n), err
	case reflect.Uint16:
		n, err := safecast.Convert[uint16](f)
		return uint64(n), err
	case reflect.Uint32:
		n, err := safecast.Convert[uint32](f)
		return uint64(n), err
	case reflect.Uint:
		n, err := safecast.Convert[uint](f)
		return uint64(n), err
	default:
		return safecast.Convert[uint64](f)
	}
}
