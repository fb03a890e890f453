package core

import "reflect"

// TypeID identifies a native type at runtime. Two TypeIDs are equal exactly
// when they describe the same Go type.
type TypeID struct {
	t reflect.Type
}

// TypeOf returns the TypeID of T.
func TypeOf[T any]() TypeID {
	return TypeID{t: reflect.TypeOf((*T)(nil)).Elem()}
}

// TypeIDOf returns the TypeID of t.
func TypeIDOf(t reflect.Type) TypeID { return TypeID{t: t} }

// Type returns the described reflect type.
func (id TypeID) Type() reflect.Type { return id.t }

// IsZero reports whether id describes no type.
func (id TypeID) IsZero() bool { return id.t == nil }

// String returns the qualified type name.
func (id TypeID) String() string {
	if id.t == nil {
		return "<nil>"
	}
	return id.t.String()
}

// Name returns the short type name, falling back to the qualified name for
// unnamed types.
func (id TypeID) Name() string {
	if id.t == nil {
		return ""
	}
	if n := id.t.Name(); n != "" {
		return n
	}
	return id.t.String()
}
