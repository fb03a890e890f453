package host

// PropertyAttribute controls how a property may be modified.
type PropertyAttribute uint8

const (
	None       PropertyAttribute = 0
	ReadOnly   PropertyAttribute = 1
	DontDelete PropertyAttribute = 2
)

// property is either a data property (value) or an accessor (getter/setter).
type property struct {
	value  Value
	getter AccessorGetter
	setter AccessorSetter
	data   any
	attrs  PropertyAttribute
}

func (p *property) isAccessor() bool {
	return p.getter != nil || p.setter != nil
}

// function is the callable part of an Object.
type function struct {
	name     string
	callback CallbackFunc
	data     any
	template *FunctionTemplate // non-nil for constructors
}

// Object is a host object living in a Runtime's heap.
type Object struct {
	id       uint64
	rt       *Runtime
	class    *FunctionTemplate // constructor template, nil for plain objects
	tmpl     *ObjectTemplate   // template the object was instantiated from
	props    map[string]*property
	internal []any
	fn       *function
	dead     bool
	marked   bool
}

// ID returns the heap identifier of the object.
func (o *Object) ID() uint64 { return o.id }

// Runtime returns the runtime owning the object.
func (o *Object) Runtime() *Runtime { return o.rt }

// IsFunction reports whether the object can be called.
func (o *Object) IsFunction() bool { return o.fn != nil }

// IsCollected reports whether the object has been swept by the collector or
// its runtime has been disposed.
func (o *Object) IsCollected() bool { return o.dead }

// Name returns the function name, or "" for non-function objects.
func (o *Object) Name() string {
	if o.fn == nil {
		return ""
	}
	if o.fn.template != nil {
		return o.fn.template.name
	}
	return o.fn.name
}

// Template returns the function template of a constructor function.
func (o *Object) Template() *FunctionTemplate {
	if o.fn == nil {
		return nil
	}
	return o.fn.template
}

// Class returns the function template the object was constructed from.
func (o *Object) Class() *FunctionTemplate { return o.class }

// InternalFieldCount returns the number of internal fields of the object.
func (o *Object) InternalFieldCount() int { return len(o.internal) }

// InternalField returns the value stored in internal field i, or nil when the
// field does not exist.
func (o *Object) InternalField(i int) any {
	if i < 0 || i >= len(o.internal) {
		return nil
	}
	return o.internal[i]
}

// SetInternalField stores v in internal field i. Out of range indexes are
// ignored.
func (o *Object) SetInternalField(i int, v any) {
	if i < 0 || i >= len(o.internal) {
		return
	}
	o.internal[i] = v
}

// Has reports whether name resolves to an own or inherited property.
func (o *Object) Has(name string) bool {
	return o.lookup(name) != nil
}

// Keys returns own property names.
func (o *Object) Keys() []string {
	keys := make([]string, 0, len(o.props))
	for k := range o.props {
		keys = append(keys, k)
	}
	return keys
}

// lookup resolves name through own properties, the instance template and the
// prototype chain of the object's class.
func (o *Object) lookup(name string) *property {
	if p, ok := o.props[name]; ok {
		return p
	}
	if o.tmpl != nil {
		if p, ok := o.tmpl.props[name]; ok {
			return p
		}
	}
	if o.class == nil {
		return nil
	}
	var found *property
	o.class.each(func(ft *FunctionTemplate) bool {
		found = ft.proto.props[name]
		return found == nil
	})
	return found
}
