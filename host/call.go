package host

// CallbackFunc implements a host function. A returned error is raised to the
// caller of the function as a script exception.
type CallbackFunc func(info *CallInfo) (Value, error)

// CallInfo describes one function invocation.
type CallInfo struct {
	Runtime *Runtime
	// This is the receiver: an instance, a constructor function for static
	// calls, or nil for plain function calls.
	This Value
	Args []Value
	// Data is the private data registered with the function.
	Data any
	// Callee is the function being called.
	Callee      *Object
	IsConstruct bool
}

// Len returns the number of arguments.
func (c *CallInfo) Len() int { return len(c.Args) }

// Arg returns argument i, or nil (undefined) when absent.
func (c *CallInfo) Arg(i int) Value {
	if i < 0 || i >= len(c.Args) {
		return nil
	}
	return c.Args[i]
}

// AccessorGetter reads an accessor property.
type AccessorGetter func(info *PropertyInfo) (Value, error)

// AccessorSetter writes an accessor property.
type AccessorSetter func(info *PropertyInfo, v Value) error

// PropertyInfo describes one accessor invocation.
type PropertyInfo struct {
	Runtime *Runtime
	This    Value
	Name    string
	Data    any
}
