package core

// PolicyKind names an ownership policy.
type PolicyKind uint8

const (
	// RawPointer: the binding owns objects it created and destroys them
	// with the class destructor; externally referenced objects stay with
	// their owner.
	RawPointer PolicyKind = iota
	// SharedPointer: objects are reference counted; a wrapper holds one
	// reference and releases it when destroyed.
	SharedPointer
)

func (k PolicyKind) String() string {
	switch k {
	case RawPointer:
		return "raw"
	case SharedPointer:
		return "shared"
	default:
		return "unknown"
	}
}

// Counted is implemented by reference counted object pointers.
type Counted interface {
	// Share returns a new reference to the same object.
	Share() any
	// Release gives up the reference.
	Release()
}

// Policy decides how a wrapper holds and releases its native object.
type Policy interface {
	Kind() PolicyKind
	// Retain returns the reference the wrapper keeps for held.
	Retain(held any) any
	// Release gives up the wrapper's reference. destroy is the class
	// destructor for held; destruct reports whether it may run.
	Release(held any, destroy func(), destruct bool)
}

// PolicyFor returns the policy of the given kind.
func PolicyFor(k PolicyKind) Policy {
	if k == SharedPointer {
		return sharedPolicy{}
	}
	return rawPolicy{}
}

type rawPolicy struct{}

func (rawPolicy) Kind() PolicyKind    { return RawPointer }
func (rawPolicy) Retain(held any) any { return held }

func (rawPolicy) Release(_ any, destroy func(), destruct bool) {
	if destruct && destroy != nil {
		destroy()
	}
}

type sharedPolicy struct{}

func (sharedPolicy) Kind() PolicyKind { return SharedPointer }

func (sharedPolicy) Retain(held any) any {
	if c, ok := held.(Counted); ok {
		return c.Share()
	}
	return held
}

func (sharedPolicy) Release(held any, _ func(), _ bool) {
	if c, ok := held.(Counted); ok {
		c.Release()
	}
}
