package bind

import (
	"reflect"

	"github.com/ygrebnov/bind/host"
	"github.com/ygrebnov/bind/internal/convert"
)

// ToHost converts a Go value into a host value of rt. Wrapped bound
// pointers become their host objects.
func ToHost(rt *host.Runtime, v any) (host.Value, error) {
	return convert.ToHost(reflect.ValueOf(v), directoryOf(rt))
}

// FromHost converts host value v into a V. Bound pointer types are
// unwrapped and adjusted across inheritance.
func FromHost[V any](rt *host.Runtime, v host.Value) (V, error) {
	var out V
	rv, err := convert.FromHost(v, reflect.TypeOf((*V)(nil)).Elem(), directoryOf(rt))
	if err != nil {
		return out, err
	}
	if rv.IsValid() {
		reflect.ValueOf(&out).Elem().Set(rv)
	}
	return out, nil
}
