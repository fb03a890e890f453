package bind

import (
	"errors"
	"testing"

	"github.com/ygrebnov/bind/host"
)

type tracked struct {
	ID   int
	gone *int
}

func (o *tracked) Destroy() { *o.gone++ }

type untracked struct{ ID int }

func TestWrap_Identity(t *testing.T) {
	rt := host.New()
	defer rt.Dispose()
	c := MustClass[untracked, *untracked](rt)

	p := &untracked{ID: 1}
	o1, err := c.Wrap(p)
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}
	o2, err := c.Wrap(p)
	if err != nil {
		t.Fatalf("second Wrap: %v", err)
	}
	if o1 != o2 {
		t.Fatalf("wrapping the same pointer twice returned different objects")
	}
	if c.Count() != 1 || c.State(p) != WrappedWeak {
		t.Fatalf("Count = %d, State = %v; want 1, weak", c.Count(), c.State(p))
	}

	t.Run("round trip", func(t *testing.T) {
		hv, err := ToHost(rt, p)
		if err != nil || hv != o1 {
			t.Fatalf("ToHost = %v, %v; want the wrapper object", hv, err)
		}
		back, err := FromHost[*untracked](rt, hv)
		if err != nil || back != p {
			t.Fatalf("FromHost = %p, %v; want %p", back, err, p)
		}
		if got, err := FindObject(rt, p); err != nil || got != o1 {
			t.Fatalf("FindObject = %v, %v", got, err)
		}
	})

	t.Run("unwrapped pointer", func(t *testing.T) {
		q := &untracked{ID: 2}
		if hv, err := ToHost(rt, q); err != nil || hv != nil {
			t.Fatalf("ToHost of an unwrapped pointer = %v, %v; want undefined", hv, err)
		}
		if _, ok := c.Find(q); ok {
			t.Fatalf("Find of an unwrapped pointer succeeded")
		}
		if c.State(q) != Unwrapped {
			t.Fatalf("State = %v, want unwrapped", c.State(q))
		}
	})

	t.Run("foreign values", func(t *testing.T) {
		for name, v := range map[string]host.Value{
			"plain object": rt.NewObject(),
			"number":       1.0,
			"undefined":    nil,
		} {
			if _, err := c.UnwrapObject(v); !errors.Is(err, ErrUnwrappedObject) {
				t.Fatalf("%s: expected ErrUnwrappedObject, got %v", name, err)
			}
		}
	})

	t.Run("nil pointer", func(t *testing.T) {
		if _, err := c.Wrap(nil); !errors.Is(err, ErrNilPointer) {
			t.Fatalf("Wrap(nil) expected ErrNilPointer, got %v", err)
		}
	})
}

func TestCollect_DestroysTransientObjects(t *testing.T) {
	t.Run("raw", func(t *testing.T) {
		rt := host.New()
		defer rt.Dispose()
		c := MustClass[tracked, *tracked](rt)
		gone := 0
		for i := 0; i < 10; i++ {
			if _, err := c.Wrap(&tracked{ID: i, gone: &gone}); err != nil {
				t.Fatalf("Wrap: %v", err)
			}
		}
		kept := &tracked{ID: 100, gone: &gone}
		keptObj, err := c.Wrap(kept)
		if err != nil {
			t.Fatalf("Wrap: %v", err)
		}
		rt.SetGlobal("kept", keptObj)

		rt.Collect()
		if gone != 10 {
			t.Fatalf("destroyed = %d, want 10", gone)
		}
		if c.Count() != 1 {
			t.Fatalf("Count = %d, want 1", c.Count())
		}
		if p, ok := c.Unwrap(keptObj); !ok || p != kept {
			t.Fatalf("reachable object lost its native pointer")
		}
	})

	t.Run("shared", func(t *testing.T) {
		rt := host.New()
		defer rt.Dispose()
		c := MustClass[tracked, *Shared[tracked]](rt)
		gone := 0
		for i := 0; i < 10; i++ {
			s := NewShared(&tracked{ID: i, gone: &gone})
			if _, err := c.Wrap(s); err != nil {
				t.Fatalf("Wrap: %v", err)
			}
			if s.UseCount() != 2 {
				t.Fatalf("use count after Wrap = %d, want 2", s.UseCount())
			}
			s.Release()
		}
		if gone != 0 {
			t.Fatalf("wrapped shared objects destroyed before collection: %d", gone)
		}

		rt.Collect()
		if gone != 10 {
			t.Fatalf("destroyed = %d, want 10", gone)
		}
		if c.Count() != 0 {
			t.Fatalf("Count = %d, want 0", c.Count())
		}
	})
}

func TestReferenceExternal_Lifecycle(t *testing.T) {
	rt := host.New()
	defer rt.Dispose()
	c := MustClass[tracked, *Shared[tracked]](rt)
	gone := 0

	s := NewShared(&tracked{gone: &gone})
	obj, err := c.ReferenceExternal(s)
	if err != nil {
		t.Fatalf("ReferenceExternal: %v", err)
	}
	if c.State(s) != WrappedExternal || s.UseCount() != 2 {
		t.Fatalf("State = %v, use count = %d; want external, 2", c.State(s), s.UseCount())
	}

	rt.Collect()
	if obj.IsCollected() || gone != 0 {
		t.Fatalf("an externally referenced object must survive collection")
	}

	if err := c.UnreferenceExternal(s); err != nil {
		t.Fatalf("UnreferenceExternal: %v", err)
	}
	if c.State(s) != WrappedWeak {
		t.Fatalf("State after UnreferenceExternal = %v, want weak", c.State(s))
	}
	rt.Collect()
	if !obj.IsCollected() || c.Count() != 0 {
		t.Fatalf("the object must be collected once unreferenced")
	}
	if s.UseCount() != 1 || gone != 0 {
		t.Fatalf("use count = %d, destroyed = %d; want 1, 0", s.UseCount(), gone)
	}
	s.Release()
	if gone != 1 {
		t.Fatalf("releasing the last reference must destroy the object")
	}
	if err := c.UnreferenceExternal(s); !errors.Is(err, ErrNotExternallyReferenced) {
		t.Fatalf("UnreferenceExternal of a released handle expected ErrNotExternallyReferenced, got %v", err)
	}
}

func TestImportExternal_AdoptsReference(t *testing.T) {
	rt := host.New()
	defer rt.Dispose()
	c := MustClass[tracked, *Shared[tracked]](rt)
	gone := 0

	s := NewShared(&tracked{gone: &gone})
	keep := s.Clone()
	if _, err := c.ImportExternal(s); err != nil {
		t.Fatalf("ImportExternal: %v", err)
	}
	if keep.UseCount() != 2 {
		t.Fatalf("use count = %d, want 2", keep.UseCount())
	}
	if _, err := c.ImportExternal(keep); !errors.Is(err, ErrAlreadyWrapped) {
		t.Fatalf("second ImportExternal expected ErrAlreadyWrapped, got %v", err)
	}

	rt.Collect()
	if keep.UseCount() != 1 || gone != 0 {
		t.Fatalf("use count = %d, destroyed = %d; want 1, 0", keep.UseCount(), gone)
	}
	keep.Release()
	if gone != 1 {
		t.Fatalf("destroyed = %d, want 1", gone)
	}
}

func TestDestroyObject(t *testing.T) {
	rt := host.New()
	defer rt.Dispose()
	c := MustClass[tracked, *tracked](rt)
	if err := c.ReadOnlyField("id", "ID"); err != nil {
		t.Fatalf("ReadOnlyField: %v", err)
	}
	gone := 0

	weak := &tracked{ID: 1, gone: &gone}
	pinned := &tracked{ID: 2, gone: &gone}
	weakObj, _ := c.Wrap(weak)
	pinnedObj, _ := c.ReferenceExternal(pinned)

	c.DestroyObject(weak)
	c.DestroyObject(pinned)
	if gone != 2 {
		t.Fatalf("destroyed = %d, want 2", gone)
	}
	for name, o := range map[string]*host.Object{"weak": weakObj, "pinned": pinnedObj} {
		if _, ok := c.Unwrap(o); ok {
			t.Fatalf("%s: Unwrap after DestroyObject must fail", name)
		}
		if _, err := rt.Get(o, "id"); !errors.Is(err, ErrUnwrappedObject) {
			t.Fatalf("%s: reading a member expected ErrUnwrappedObject, got %v", name, err)
		}
	}
	if c.Count() != 0 || c.State(weak) != Unwrapped {
		t.Fatalf("Count = %d, State = %v", c.Count(), c.State(weak))
	}

	c.DestroyObject(weak)
	c.DestroyObject(nil)
	if gone != 2 {
		t.Fatalf("destroying twice must not run the destructor again")
	}

	// a destroyed pointer can be wrapped again
	o, err := c.Wrap(weak)
	if err != nil || o == weakObj {
		t.Fatalf("rewrap = %v, %v; want a new object", o, err)
	}
}

func TestDestroy_Teardown(t *testing.T) {
	rt := host.New()
	c := MustClass[tracked, *tracked](rt)
	gone := 0

	for i := 0; i < 3; i++ {
		if _, err := c.Wrap(&tracked{ID: i, gone: &gone}); err != nil {
			t.Fatalf("Wrap: %v", err)
		}
	}
	pinned := &tracked{ID: 10, gone: &gone}
	if _, err := c.ReferenceExternal(pinned); err != nil {
		t.Fatalf("ReferenceExternal: %v", err)
	}

	rt.Dispose()
	if gone != 3 {
		t.Fatalf("destroyed on dispose = %d, want 3", gone)
	}
	rt.Dispose()
	c.Destroy()
	if gone != 3 {
		t.Fatalf("teardown must be idempotent, destroyed = %d", gone)
	}

	if _, err := c.Wrap(&tracked{gone: &gone}); !errors.Is(err, ErrUnboundType) {
		t.Fatalf("Wrap after dispose expected ErrUnboundType, got %v", err)
	}
	if _, err := NewClass[untracked, *untracked](rt); !errors.Is(err, host.ErrDisposed) {
		t.Fatalf("NewClass after dispose expected ErrDisposed, got %v", err)
	}
}
