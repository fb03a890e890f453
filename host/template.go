package host

// ObjectTemplate describes properties and internal fields shared by objects
// created from it.
type ObjectTemplate struct {
	rt            *Runtime
	props         map[string]*property
	internalCount int
}

// NewObjectTemplate creates a standalone object template.
func (rt *Runtime) NewObjectTemplate() *ObjectTemplate {
	t := rt.newObjectTemplate()
	rt.objectTemplates = append(rt.objectTemplates, t)
	return t
}

func (rt *Runtime) newObjectTemplate() *ObjectTemplate {
	return &ObjectTemplate{rt: rt, props: make(map[string]*property)}
}

// SetInternalFieldCount reserves n internal fields on every instance.
func (t *ObjectTemplate) SetInternalFieldCount(n int) {
	if n < 0 {
		n = 0
	}
	t.internalCount = n
}

// InternalFieldCount returns the number of internal fields reserved on instances.
func (t *ObjectTemplate) InternalFieldCount() int { return t.internalCount }

// Set defines a data property shared by all instances.
func (t *ObjectTemplate) Set(name string, v Value, attrs PropertyAttribute) {
	t.props[name] = &property{value: v, attrs: attrs}
}

// SetAccessor defines an accessor property. A nil setter makes the property
// read-only.
func (t *ObjectTemplate) SetAccessor(name string, get AccessorGetter, set AccessorSetter, data any, attrs PropertyAttribute) {
	if set == nil {
		attrs |= ReadOnly
	}
	t.props[name] = &property{getter: get, setter: set, data: data, attrs: attrs}
}

// SetMethod defines a named callable property.
func (t *ObjectTemplate) SetMethod(name string, cb CallbackFunc, data any) *Object {
	fn := t.rt.NewFunction(name, cb, data)
	t.props[name] = &property{value: fn, attrs: DontDelete}
	return fn
}

// Has reports whether the template defines name.
func (t *ObjectTemplate) Has(name string) bool {
	_, ok := t.props[name]
	return ok
}

// NewInstance creates a plain object from the template.
func (t *ObjectTemplate) NewInstance() *Object {
	o := t.rt.allocate()
	o.tmpl = t
	o.internal = make([]any, t.internalCount)
	return o
}

// FunctionTemplate describes a constructor function: its callback, the
// template of the instances it creates, their prototype and static members.
type FunctionTemplate struct {
	rt       *Runtime
	name     string
	callback CallbackFunc
	data     any
	instance *ObjectTemplate
	proto    *ObjectTemplate
	parents  []*FunctionTemplate
	fn       *Object
}

// NewFunctionTemplate creates a constructor template. cb runs on construction
// with CallInfo.This set to the new instance; it may be nil.
func (rt *Runtime) NewFunctionTemplate(name string, cb CallbackFunc, data any) *FunctionTemplate {
	ft := &FunctionTemplate{
		rt:       rt,
		name:     name,
		callback: cb,
		data:     data,
		instance: rt.newObjectTemplate(),
		proto:    rt.newObjectTemplate(),
	}
	ft.fn = rt.allocate()
	ft.fn.fn = &function{name: name, template: ft}
	rt.functionTemplates = append(rt.functionTemplates, ft)
	return ft
}

// ClassName returns the template's class name.
func (ft *FunctionTemplate) ClassName() string { return ft.name }

// SetClassName renames the class.
func (ft *FunctionTemplate) SetClassName(name string) { ft.name = name }

// SetCallHandler replaces the construction callback.
func (ft *FunctionTemplate) SetCallHandler(cb CallbackFunc, data any) {
	ft.callback = cb
	ft.data = data
}

// InstanceTemplate returns the template used for instances.
func (ft *FunctionTemplate) InstanceTemplate() *ObjectTemplate { return ft.instance }

// PrototypeTemplate returns the template of properties shared through the
// prototype chain.
func (ft *FunctionTemplate) PrototypeTemplate() *ObjectTemplate { return ft.proto }

// Inherit makes parent's prototype part of this template's prototype chain.
// A template may inherit several parents; lookups visit them depth-first in
// the order they were added.
func (ft *FunctionTemplate) Inherit(parent *FunctionTemplate) {
	if parent == nil || parent == ft {
		return
	}
	for _, p := range ft.parents {
		if p == parent {
			return
		}
	}
	ft.parents = append(ft.parents, parent)
}

// Parents returns the inherited templates.
func (ft *FunctionTemplate) Parents() []*FunctionTemplate { return ft.parents }

// each visits ft and its ancestors depth-first until fn returns false.
func (ft *FunctionTemplate) each(fn func(*FunctionTemplate) bool) bool {
	if !fn(ft) {
		return false
	}
	for _, p := range ft.parents {
		if !p.each(fn) {
			return false
		}
	}
	return true
}

// GetFunction returns the constructor function object.
func (ft *FunctionTemplate) GetFunction() *Object { return ft.fn }

// Set defines a static data property on the constructor function.
func (ft *FunctionTemplate) Set(name string, v Value, attrs PropertyAttribute) {
	if ft.fn.props == nil {
		ft.fn.props = make(map[string]*property)
	}
	ft.fn.props[name] = &property{value: v, attrs: attrs}
}

// SetMethod defines a static method on the constructor function.
func (ft *FunctionTemplate) SetMethod(name string, cb CallbackFunc, data any) *Object {
	fn := ft.rt.NewFunction(name, cb, data)
	ft.Set(name, fn, DontDelete)
	return fn
}

// HasInstance reports whether v was constructed from ft or from a template
// inheriting it.
func (ft *FunctionTemplate) HasInstance(v Value) bool {
	o, ok := v.(*Object)
	if !ok || o == nil {
		return false
	}
	if o.class == nil {
		return false
	}
	found := false
	o.class.each(func(c *FunctionTemplate) bool {
		found = c == ft
		return !found
	})
	return found
}
