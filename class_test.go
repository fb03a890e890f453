package bind

import (
	"errors"
	"testing"

	"github.com/ygrebnov/bind/host"
)

type Xbase struct{ Var int }

func (x *Xbase) Get() int      { return x.Var }
func (x *Xbase) Set(v int)     { x.Var = v }
func (x *Xbase) Fun1(a int) int { return x.Var + a }

func staticFun(a int) int { return a }

type X struct{ Xbase }

type Y struct {
	X
	count *int
}

func newY(v int, count *int) *Y {
	*count++
	return &Y{X: X{Xbase{Var: v}}, count: count}
}

func (y *Y) Destroy() { *y.count-- }

func (y *Y) UseX(x *X) int { return y.Var + x.Var }

type Z struct{}

func mustNum(t *testing.T, v host.Value, err error) float64 {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f, ok := v.(float64)
	if !ok {
		t.Fatalf("value %#v is not a number", v)
	}
	return f
}

func TestClass_RawPointer(t *testing.T) {
	testClass[*X, *Y](t, RawPointer,
		func(x *X) *X { return x },
		func(y *Y) *Y { return y })
}

func TestClass_SharedPointer(t *testing.T) {
	testClass[*Shared[X], *Shared[Y]](t, SharedPointer,
		func(x *X) *Shared[X] { return NewShared(x) },
		func(y *Y) *Shared[Y] { return NewShared(y) })
}

//nolint:funlen,gocyclo // one scenario exercising the whole class surface
func testClass[XP Pointer[X], YP Pointer[Y]](t *testing.T, policy Policy, mkX func(*X) XP, mkY func(*Y) YP) {
	rt := host.New()
	defer rt.Dispose()
	count := 0

	xc, err := NewClass[X, XP](rt)
	if err != nil {
		t.Fatalf("NewClass[X]: %v", err)
	}
	if xc.Policy() != policy {
		t.Fatalf("Policy = %v, want %v", xc.Policy(), policy)
	}
	steps := []error{
		xc.Constructor(func() XP { return mkX(&X{Xbase{Var: 1}}) }),
		xc.Constant("konst", 99),
		xc.Field("var", "Var"),
		xc.Property("rprop", (*X).Get),
		xc.Property("wprop", (*X).Get, (*X).Set),
		xc.Method("fun1", (*X).Fun1),
		xc.Method("static_fun", staticFun),
		xc.Method("static_lambda", func(x int) int { return x + 3 }),
		xc.Method("extern_fun", func(info *host.CallInfo) (int, error) {
			x, err := FromHost[int](info.Runtime, info.Arg(0))
			if err != nil {
				return 0, err
			}
			if self, ok := xc.Unwrap(info.This); ok {
				x += rawOf[X](self).Var
			}
			return x, nil
		}),
	}
	for i, err := range steps {
		if err != nil {
			t.Fatalf("declaring X member %d: %v", i, err)
		}
	}

	yc, err := NewClass[Y, YP](rt, WithName[Y]("Y"))
	if err != nil {
		t.Fatalf("NewClass[Y]: %v", err)
	}
	steps = []error{
		Inherit[X](yc),
		yc.Constructor(func(v int) YP { return mkY(newY(v, &count)) }),
		yc.Method("useX", (*Y).UseX),
		yc.Method("useX_ptr", func(y *Y, x XP) int { return y.Var + rawOf[X](x).Var }),
	}
	for i, err := range steps {
		if err != nil {
			t.Fatalf("declaring Y member %d: %v", i, err)
		}
	}

	t.Run("binding errors", func(t *testing.T) {
		if _, err := NewClass[X, XP](rt); !errors.Is(err, ErrDuplicateBinding) {
			t.Fatalf("second NewClass[X] expected ErrDuplicateBinding, got %v", err)
		}
		if err := Inherit[X](yc); !errors.Is(err, ErrDuplicateInheritance) {
			t.Fatalf("second Inherit[X] expected ErrDuplicateInheritance, got %v", err)
		}
		if _, err := FindObject[Z](rt, nil); !errors.Is(err, ErrUnboundType) {
			t.Fatalf("FindObject[Z] expected ErrUnboundType, got %v", err)
		}
	})

	NewModule(rt).SetClass("X", xc).SetClass("Y", yc).Install("lib")
	get := func(t *testing.T, o host.Value, name string) float64 {
		t.Helper()
		v, err := rt.Get(o, name)
		return mustNum(t, v, err)
	}
	call := func(t *testing.T, o host.Value, name string, args ...host.Value) float64 {
		t.Helper()
		v, err := rt.Call(o, name, args...)
		return mustNum(t, v, err)
	}

	t.Run("members", func(t *testing.T) {
		x, err := xc.New()
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if got := get(t, x, "var") + get(t, x, "konst"); got != 100 {
			t.Fatalf("x.var + x.konst = %v, want 100", got)
		}
		if got := get(t, x, "rprop"); got != 1 {
			t.Fatalf("x.rprop = %v, want 1", got)
		}
		if err := rt.Set(x, "rprop", 5.0); !errors.Is(err, host.ErrReadOnly) {
			t.Fatalf("setting rprop expected ErrReadOnly, got %v", err)
		}
		if err := rt.Set(x, "wprop", get(t, x, "wprop")+1); err != nil {
			t.Fatalf("setting wprop: %v", err)
		}
		if got := get(t, x, "wprop"); got != 2 {
			t.Fatalf("x.wprop = %v, want 2", got)
		}
		if got := call(t, x, "fun1", 1.0); got != 3 {
			t.Fatalf("x.fun1(1) = %v, want 3", got)
		}
		ctor := xc.FunctionTemplate().GetFunction()
		if got := call(t, ctor, "static_fun", 1.0); got != 1 {
			t.Fatalf("X.static_fun(1) = %v, want 1", got)
		}
		if got := call(t, ctor, "static_lambda", 1.0); got != 4 {
			t.Fatalf("X.static_lambda(1) = %v, want 4", got)
		}
		if got := call(t, x, "extern_fun", 5.0); got != 7 {
			t.Fatalf("x.extern_fun(5) = %v, want 7", got)
		}
		if got := call(t, ctor, "extern_fun", 6.0); got != 6 {
			t.Fatalf("X.extern_fun(6) = %v, want 6", got)
		}
		if got := get(t, ctor, "konst"); got != 99 {
			t.Fatalf("X.konst = %v, want 99", got)
		}
		if _, err := rt.Call(x, "fun1", "one"); !errors.Is(err, ErrArgumentType) {
			t.Fatalf("x.fun1(\"one\") expected ErrArgumentType, got %v", err)
		}
		if _, err := rt.Call(x, "fun1"); !errors.Is(err, ErrArgumentCount) {
			t.Fatalf("x.fun1() expected ErrArgumentCount, got %v", err)
		}
	})

	y, err := yc.New(-100.0)
	if err != nil {
		t.Fatalf("New Y: %v", err)
	}
	if got := get(t, y, "konst") + get(t, y, "var"); got != -1 {
		t.Fatalf("y.konst + y.var = %v, want -1", got)
	}

	y1 := mkY(newY(-1, &count))
	y1obj, err := yc.ReferenceExternal(y1)
	if err != nil {
		t.Fatalf("ReferenceExternal: %v", err)
	}
	if p, ok := yc.Unwrap(y1obj); !ok || rawOf[Y](p) != rawOf[Y](y1) {
		t.Fatalf("Unwrap(y1obj) does not return y1")
	}
	if o, ok := yc.Find(y1); !ok || o != y1obj {
		t.Fatalf("Find(y1) does not return y1obj")
	}
	if _, err := yc.ReferenceExternal(y1); !errors.Is(err, ErrAlreadyWrapped) {
		t.Fatalf("second ReferenceExternal expected ErrAlreadyWrapped, got %v", err)
	}

	y2 := mkY(newY(-2, &count))
	y2raw := rawOf[Y](y2)
	y2obj, err := yc.ImportExternal(y2)
	if err != nil {
		t.Fatalf("ImportExternal: %v", err)
	}
	if p, ok := yc.Unwrap(y2obj); !ok || rawOf[Y](p) != y2raw {
		t.Fatalf("Unwrap(y2obj) does not return y2")
	}
	if yc.State(y2) != WrappedWeak {
		t.Fatalf("imported object state = %v, want weak", yc.State(y2))
	}

	y3obj, err := yc.New(-3.0)
	if err != nil {
		t.Fatalf("New(-3): %v", err)
	}
	y3, ok := yc.Unwrap(y3obj)
	if !ok || rawOf[Y](y3).Var != -3 {
		t.Fatalf("Unwrap(y3obj) failed")
	}
	if o, ok := yc.Find(y3); !ok || o != y3obj {
		t.Fatalf("Find(y3) does not return y3obj")
	}

	x, err := xc.New()
	if err != nil {
		t.Fatalf("New X: %v", err)
	}
	for i := 0; i < 10; i++ {
		yi, err := yc.New(float64(i))
		if err != nil {
			t.Fatalf("New Y(%d): %v", i, err)
		}
		if got := call(t, yi, "useX", x); got != float64(i+1) {
			t.Fatalf("y.useX(x) = %v, want %d", got, i+1)
		}
		if got := call(t, yi, "useX_ptr", x); got != float64(i+1) {
			t.Fatalf("y.useX_ptr(x) = %v, want %d", got, i+1)
		}
		if got := call(t, yi, "fun1", 1.0); got != float64(i+1) {
			t.Fatalf("inherited y.fun1(1) = %v, want %d", got, i+1)
		}
	}
	if count != 10+4 {
		t.Fatalf("Y count = %d, want 14", count)
	}

	if err := yc.UnreferenceExternal(y1); err != nil {
		t.Fatalf("UnreferenceExternal: %v", err)
	}
	if err := yc.UnreferenceExternal(y1); !errors.Is(err, ErrNotExternallyReferenced) {
		t.Fatalf("second UnreferenceExternal expected ErrNotExternallyReferenced, got %v", err)
	}

	yc.DestroyObject(y2)
	if _, ok := yc.Unwrap(y2obj); ok {
		t.Fatalf("Unwrap after DestroyObject(y2) must fail")
	}
	yc.DestroyObject(y3)
	if _, ok := yc.Find(y3); ok {
		t.Fatalf("Find after DestroyObject(y3) must fail")
	}
	if _, err := rt.Call(y3obj, "useX", x); !errors.Is(err, ErrUnwrappedObject) {
		t.Fatalf("calling a destroyed object expected ErrUnwrappedObject, got %v", err)
	}
	if count != 12 {
		t.Fatalf("Y count after destroying y2 and y3 = %d, want 12", count)
	}

	rt.Collect()

	// y1 survives only when its owner still holds a shared reference.
	want := 0
	if policy == SharedPointer {
		want = 1
	}
	if count != want {
		t.Fatalf("Y count after collection = %d, want %d", count, want)
	}
	yc.Destroy()
	if count != want {
		t.Fatalf("Y count after Destroy = %d, want %d", count, want)
	}
	yc.Destroy()
	if count != want {
		t.Fatalf("Y count after second Destroy = %d, want %d", count, want)
	}

	if s, ok := any(y1).(*Shared[Y]); ok {
		if s.UseCount() != 1 {
			t.Fatalf("y1 use count = %d, want 1", s.UseCount())
		}
		s.Release()
		if count != 0 {
			t.Fatalf("Y count after releasing y1 = %d, want 0", count)
		}
	}
}
