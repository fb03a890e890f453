package errors

import (
	"strings"

	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/bind/constants"
)

const Namespace = constants.Namespace

// Key is a structured error field key, e.g. "bind.class.name".
type Key string

func newError(msg string) error {
	return errorc.New(Namespace + ": " + msg)
}

// newKey joins the namespace, segments and name with dots.
func newKey(name string, segments ...string) Key {
	parts := make([]string, 0, len(segments)+2)
	parts = append(parts, constants.ErrorFieldNamespace)
	parts = append(parts, segments...)
	return Key(strings.Join(append(parts, name), "."))
}

// Sentinel errors. Use errors.Is to match.
var (
	// Registry contract violations.
	ErrDuplicateBinding        = newError("class already bound")
	ErrDuplicateInheritance    = newError("class already inherited")
	ErrUnboundBase             = newError("base class is not bound")
	ErrUnboundType             = newError("class is not bound")
	ErrAmbiguousBase           = newError("base class is reachable more than once")
	ErrNotEmbedded             = newError("base type is not embedded")
	ErrAlreadyWrapped          = newError("object already wrapped")
	ErrNotExternallyReferenced = newError("object is not externally referenced")
	ErrUnwrappedObject         = newError("object has no live native instance")
	ErrNilPointer              = newError("nil native pointer")
	ErrPolicyMismatch          = newError("base class uses a different ownership policy")

	// Declaration misuses.
	ErrInvalidCallable     = newError("invalid callable")
	ErrUnreachableReceiver = newError("receiver type is not reachable from class")
	ErrFieldNotFound       = newError("field not found")
	ErrNoConstructor       = newError("class has no constructor")

	// Marshalling and invocation.
	ErrConversion    = newError("cannot convert value")
	ErrArgumentCount = newError("wrong number of arguments")
	ErrArgumentType  = newError("wrong argument type")
	ErrNativePanic   = newError("native call panicked")
)

// Internal hierarchical segments used to build dotted keys.
const (
	keySegmentClass  = "class"
	keySegmentBase   = "base"
	keySegmentMember = "member"
	keySegmentObject = "object"
	keySegmentArg    = "arg"
)

// Exported structured error field keys
var (
	ErrorFieldClassName = newKey("name", keySegmentClass) // bind.class.name
	ErrorFieldClassType = newKey("type", keySegmentClass) // bind.class.type
	ErrorFieldBaseType  = newKey("type", keySegmentBase)  // bind.base.type
)

var (
	ErrorFieldMemberName = newKey("name", keySegmentMember) // bind.member.name
	ErrorFieldFieldPath  = newKey("path", keySegmentMember) // bind.member.path
)

var (
	ErrorFieldObjectState = newKey("state", keySegmentObject) // bind.object.state
	ErrorFieldObjectType  = newKey("type", keySegmentObject)  // bind.object.type
)

var (
	ErrorFieldArgIndex = newKey("index", keySegmentArg) // bind.arg.index
	ErrorFieldArgWant  = newKey("want", keySegmentArg)  // bind.arg.want
	ErrorFieldArgGot   = newKey("got", keySegmentArg)   // bind.arg.got
)

var (
	ErrorFieldPolicy = newKey("policy")
	ErrorFieldCause  = newKey("cause")
	ErrorFieldPanic  = newKey("panic")
)
