package host

import (
	"errors"
	"strings"
	"testing"
)

func TestRuntime_GetSet(t *testing.T) {
	rt := New()
	o := rt.NewObject()

	if err := rt.Set(o, "x", 1.5); err != nil {
		t.Fatalf("Set unexpected error: %v", err)
	}
	v, err := rt.Get(o, "x")
	if err != nil {
		t.Fatalf("Get unexpected error: %v", err)
	}
	if v != 1.5 {
		t.Fatalf("Get = %v, want 1.5", v)
	}

	v, err = rt.Get(o, "missing")
	if err != nil || v != nil {
		t.Fatalf("Get(missing) = %v, %v; want nil, nil", v, err)
	}
}

func TestRuntime_ReadOnly(t *testing.T) {
	rt := New()
	tmpl := rt.NewObjectTemplate()
	tmpl.Set("answer", 42.0, ReadOnly)
	tmpl.SetAccessor("computed", func(*PropertyInfo) (Value, error) { return "c", nil }, nil, nil, None)
	o := tmpl.NewInstance()

	for _, name := range []string{"answer", "computed"} {
		t.Run(name, func(t *testing.T) {
			err := rt.Set(o, name, 1.0)
			if !errors.Is(err, ErrReadOnly) {
				t.Fatalf("Set(%s) expected ErrReadOnly, got %v", name, err)
			}
			if !strings.Contains(err.Error(), string(ErrorFieldMemberName)+": "+name) {
				t.Fatalf("error %q does not name the member", err)
			}
		})
	}

	v, err := rt.Get(o, "computed")
	if err != nil || v != "c" {
		t.Fatalf("Get(computed) = %v, %v", v, err)
	}
}

func TestRuntime_Accessor(t *testing.T) {
	rt := New()
	var stored Value
	tmpl := rt.NewObjectTemplate()
	tmpl.SetAccessor("v",
		func(info *PropertyInfo) (Value, error) { return stored, nil },
		func(info *PropertyInfo, v Value) error { stored = v; return nil },
		nil, None)
	o := tmpl.NewInstance()

	if err := rt.Set(o, "v", "hello"); err != nil {
		t.Fatalf("Set unexpected error: %v", err)
	}
	if stored != "hello" {
		t.Fatalf("setter not called, stored = %v", stored)
	}
	if len(o.Keys()) != 0 {
		t.Fatalf("accessor write created an own property: %v", o.Keys())
	}
}

func TestRuntime_PrototypeChain(t *testing.T) {
	rt := New()
	base := rt.NewFunctionTemplate("Base", nil, nil)
	base.PrototypeTemplate().SetMethod("who", func(*CallInfo) (Value, error) { return "base", nil }, nil)
	mixin := rt.NewFunctionTemplate("Mixin", nil, nil)
	mixin.PrototypeTemplate().SetMethod("mix", func(*CallInfo) (Value, error) { return "mixin", nil }, nil)

	derived := rt.NewFunctionTemplate("Derived", nil, nil)
	derived.Inherit(base)
	derived.Inherit(mixin)
	derived.Inherit(base)
	if got := len(derived.Parents()); got != 2 {
		t.Fatalf("Parents() len = %d, want 2", got)
	}

	o, err := rt.New(derived.GetFunction())
	if err != nil {
		t.Fatalf("New unexpected error: %v", err)
	}
	for name, want := range map[string]string{"who": "base", "mix": "mixin"} {
		got, err := rt.Call(o, name)
		if err != nil {
			t.Fatalf("Call(%s) unexpected error: %v", name, err)
		}
		if got != want {
			t.Fatalf("Call(%s) = %v, want %v", name, got, want)
		}
	}

	if !base.HasInstance(o) || !mixin.HasInstance(o) || !derived.HasInstance(o) {
		t.Fatalf("HasInstance should hold along the chain")
	}
	plain, _ := rt.New(base.GetFunction())
	if derived.HasInstance(plain) {
		t.Fatalf("derived.HasInstance(base instance) = true")
	}
}

func TestRuntime_Construct(t *testing.T) {
	rt := New()
	var seen *CallInfo
	ft := rt.NewFunctionTemplate("Point", func(info *CallInfo) (Value, error) {
		seen = info
		return info.This, nil
	}, "data")
	ft.InstanceTemplate().SetInternalFieldCount(2)

	o, err := rt.New(ft.GetFunction(), 1.0, 2.0)
	if err != nil {
		t.Fatalf("New unexpected error: %v", err)
	}
	if seen == nil || !seen.IsConstruct || seen.Len() != 2 || seen.Data != "data" {
		t.Fatalf("unexpected CallInfo: %+v", seen)
	}
	if seen.Arg(5) != nil {
		t.Fatalf("Arg out of range should be nil")
	}
	if o.InternalFieldCount() != 2 {
		t.Fatalf("InternalFieldCount = %d, want 2", o.InternalFieldCount())
	}

	_, err = rt.CallFunction(ft.GetFunction(), nil)
	if !errors.Is(err, ErrNotCallable) {
		t.Fatalf("calling a constructor expected ErrNotCallable, got %v", err)
	}
	_, err = rt.New(rt.NewObject())
	if !errors.Is(err, ErrNotConstruct) {
		t.Fatalf("New(plain) expected ErrNotConstruct, got %v", err)
	}
}

func TestRuntime_CallErrors(t *testing.T) {
	rt := New()
	other := New()
	o := rt.NewObject()

	tests := []struct {
		name   string
		target Value
		want   error
	}{
		{"not an object", 1.0, ErrNotObject},
		{"foreign", other.NewObject(), ErrForeignValue},
		{"missing member", o, ErrNoSuchMember},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rt.Call(tt.target, "f")
			if !errors.Is(err, tt.want) {
				t.Fatalf("Call expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestRuntime_Dispose(t *testing.T) {
	rt := New()
	var order []int
	rt.OnDispose(func() { order = append(order, 1) })
	rt.OnDispose(func() { order = append(order, 2) })
	o := rt.NewObject()
	rt.SetData("k", "v")

	rt.Dispose()
	rt.Dispose()

	if len(order) != 2 || order[0] != 2 || order[1] != 1 {
		t.Fatalf("dispose hooks order = %v, want [2 1]", order)
	}
	if !o.IsCollected() {
		t.Fatalf("objects must be dead after dispose")
	}
	if rt.Data("k") != nil {
		t.Fatalf("data slots must be cleared after dispose")
	}
	if _, err := rt.Get(o, "x"); !errors.Is(err, ErrDisposed) {
		t.Fatalf("Get after dispose expected ErrDisposed, got %v", err)
	}
}

func TestTypeName(t *testing.T) {
	rt := New()
	tests := []struct {
		v    Value
		want string
	}{
		{nil, "undefined"},
		{true, "boolean"},
		{1.0, "number"},
		{"s", "string"},
		{[]Value{}, "array"},
		{rt.NewObject(), "object"},
		{rt.NewFunction("f", nil, nil), "function"},
		{3, "foreign(int)"},
	}
	for _, tt := range tests {
		if got := TypeName(tt.v); got != tt.want {
			t.Errorf("TypeName(%#v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}
