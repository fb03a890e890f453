package constants

const Namespace = "bind"

// ErrorFieldNamespace for all exported error field keys.
const ErrorFieldNamespace = Namespace

// Internal field slots reserved on every bound instance object.
const (
	FieldTypeID       = 0
	FieldNativePtr    = 1
	InternalFieldSize = 2
)
