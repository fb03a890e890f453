package host

import (
	"strings"

	"github.com/ygrebnov/errorc"
)

const Namespace = "host"

// Key is a structured error field key.
type Key string

func newError(msg string) error { return errorc.New(Namespace + ": " + msg) }

func newKey(name string, segments ...string) Key {
	return Key(strings.Join(append(append([]string{Namespace}, segments...), name), "."))
}

// Sentinel errors. Use errors.Is to match.
var (
	ErrDisposed     = newError("runtime disposed")
	ErrCollected    = newError("object was collected")
	ErrNotObject    = newError("value is not an object")
	ErrNotCallable  = newError("value is not callable")
	ErrNotConstruct = newError("function is not a constructor")
	ErrNoSuchMember = newError("no such member")
	ErrReadOnly     = newError("property is read-only")
	ErrForeignValue = newError("object belongs to another runtime")
)

var (
	ErrorFieldMemberName = newKey("name", "member") // host.member.name
	ErrorFieldValueType  = newKey("type", "value")  // host.value.type
	ErrorFieldFunction   = newKey("function")       // host.function
)
