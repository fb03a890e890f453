package core

import (
	"reflect"
	"strings"
	"unsafe"

	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/bind/errors"
)

// EmbeddedPath finds the embedded field index path leading from struct type
// from to the embedded type to, following embedded structs and pointers to
// structs. The shallowest match wins; two matches at the same depth fail with
// ErrAmbiguousBase. Unexported embedded types are followed too. Results are
// cached per type pair.
func EmbeddedPath(from, to reflect.Type) ([]int, error) {
	if e, ok := embeddedPaths.get(from, to); ok {
		return e.path, e.err
	}
	path, err := embeddedPath(from, to)
	embeddedPaths.put(from, to, path, err)
	return append([]int(nil), path...), err
}

func embeddedPath(from, to reflect.Type) ([]int, error) {
	type node struct {
		t    reflect.Type
		path []int
	}
	if from.Kind() != reflect.Struct {
		return nil, errorc.With(errors.ErrNotEmbedded,
			errorc.String(errors.ErrorFieldClassType, from.String()),
			errorc.String(errors.ErrorFieldBaseType, to.String()))
	}

	visited := map[reflect.Type]bool{from: true}
	level := []node{{t: from}}
	for len(level) > 0 {
		var next []node
		var found [][]int
		for _, n := range level {
			for i := 0; i < n.t.NumField(); i++ {
				f := n.t.Field(i)
				if !f.Anonymous {
					continue
				}
				ft := f.Type
				if ft.Kind() == reflect.Ptr {
					ft = ft.Elem()
				}
				path := append(append([]int(nil), n.path...), i)
				if ft == to {
					found = append(found, path)
					continue
				}
				if ft.Kind() == reflect.Struct && !visited[ft] {
					visited[ft] = true
					next = append(next, node{t: ft, path: path})
				}
			}
		}
		switch len(found) {
		case 0:
			level = next
		case 1:
			return found[0], nil
		default:
			return nil, errorc.With(errors.ErrAmbiguousBase,
				errorc.String(errors.ErrorFieldClassType, from.String()),
				errorc.String(errors.ErrorFieldBaseType, to.String()))
		}
	}
	return nil, errorc.With(errors.ErrNotEmbedded,
		errorc.String(errors.ErrorFieldClassType, from.String()),
		errorc.String(errors.ErrorFieldBaseType, to.String()))
}

// FieldPathCast returns a CastFunc that walks an embedded field index path
// from a struct pointer. It yields nil when the pointer, or an embedded
// pointer along the path, is nil. Unexported embedded fields are reached
// through their address.
func FieldPathCast(path []int) CastFunc {
	path = append([]int(nil), path...)
	return func(p any) any {
		v := reflect.ValueOf(p)
		if !v.IsValid() || v.IsNil() {
			return nil
		}
		for _, i := range path {
			f := v.Elem().Field(i)
			if !f.CanInterface() {
				f = reflect.NewAt(f.Type(), unsafe.Pointer(f.UnsafeAddr())).Elem()
			}
			switch {
			case f.Kind() != reflect.Ptr:
				v = f.Addr()
			case f.IsNil():
				return nil
			default:
				v = f
			}
		}
		return v.Interface()
	}
}

// FieldPath resolves a dotted field path such as "Pos.X" against struct type
// t. Promoted fields of embedded structs are found by name. It returns the
// index sequence usable with reflect.Value.FieldByIndexErr and the field type.
func FieldPath(t reflect.Type, dotted string) ([]int, reflect.Type, error) {
	fail := func() ([]int, reflect.Type, error) {
		return nil, nil, errorc.With(errors.ErrFieldNotFound,
			errorc.String(errors.ErrorFieldClassType, t.String()),
			errorc.String(errors.ErrorFieldFieldPath, dotted))
	}
	if dotted == "" {
		return fail()
	}

	var index []int
	cur := t
	for _, name := range strings.Split(dotted, ".") {
		if cur.Kind() == reflect.Ptr {
			cur = cur.Elem()
		}
		if cur.Kind() != reflect.Struct {
			return fail()
		}
		f, ok := cur.FieldByName(name)
		if !ok || !f.IsExported() {
			return fail()
		}
		index = append(index, f.Index...)
		cur = f.Type
	}
	return index, cur, nil
}
