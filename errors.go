package bind

import "github.com/ygrebnov/bind/errors"

const Namespace = errors.Namespace

// Sentinel errors re-exported for callers. Use errors.Is to match.
var (
	ErrDuplicateBinding        = errors.ErrDuplicateBinding
	ErrDuplicateInheritance    = errors.ErrDuplicateInheritance
	ErrUnboundBase             = errors.ErrUnboundBase
	ErrUnboundType             = errors.ErrUnboundType
	ErrAmbiguousBase           = errors.ErrAmbiguousBase
	ErrNotEmbedded             = errors.ErrNotEmbedded
	ErrPolicyMismatch          = errors.ErrPolicyMismatch
	ErrAlreadyWrapped          = errors.ErrAlreadyWrapped
	ErrNotExternallyReferenced = errors.ErrNotExternallyReferenced
	ErrUnwrappedObject         = errors.ErrUnwrappedObject
	ErrNilPointer              = errors.ErrNilPointer

	ErrInvalidCallable     = errors.ErrInvalidCallable
	ErrUnreachableReceiver = errors.ErrUnreachableReceiver
	ErrFieldNotFound       = errors.ErrFieldNotFound
	ErrNoConstructor       = errors.ErrNoConstructor

	ErrConversion    = errors.ErrConversion
	ErrArgumentCount = errors.ErrArgumentCount
	ErrArgumentType  = errors.ErrArgumentType
	ErrNativePanic   = errors.ErrNativePanic
)
