// Package host is a small embeddable object runtime used as the host side of
// native bindings.
//
// It is not a scripting language. Go code plays the role of scripts by driving
// the runtime through New, Get, Set and Call, and the runtime provides the
// embedding primitives a binding layer needs:
//
//   - function templates with instance and prototype object templates,
//     template inheritance and static members,
//   - accessors with getter/setter callbacks and private data,
//   - named callable properties,
//   - internal (pointer-sized) fields on instances,
//   - strong and weak persistent handles with weak callbacks,
//   - a deterministic mark-and-sweep collector (Collect),
//   - per-runtime data slots and dispose hooks.
//
// # Values
//
// Host values are nil (undefined), bool, float64, string, []Value and *Object.
// Functions, including class constructors, are objects that can be called.
//
// # Collection
//
// Roots are globals, strong persistent handles and everything reachable from
// templates. Objects only held by weak handles are collected by Collect: the
// weak callback of each such handle runs once, synchronously, before the object
// is swept.
//
//	rt := host.New()
//	defer rt.Dispose()
//
//	obj := rt.NewObject()
//	h := rt.NewPersistent(obj)
//	h.SetWeak("payload", func(info *host.WeakCallbackInfo) {
//	    fmt.Println("collected", info.Data)
//	})
//	rt.Collect() // prints "collected payload"
//
// A Runtime is confined to one goroutine at a time. Independent runtimes share
// nothing and may run concurrently.
package host
