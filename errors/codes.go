package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Argument and configuration errors
const (
	// ErrCodeInvalidArgument indicates a required collaborator or type was nil.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeConfiguration indicates an option or lifetime outside the supported set.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"
)

// Resolution errors
const (
	// ErrCodeServiceNotFound indicates a required service has no registration.
	ErrCodeServiceNotFound ErrorCode = "SERVICE_NOT_FOUND"
	// ErrCodeUnsupported indicates a type cannot be constructed without a registration.
	ErrCodeUnsupported ErrorCode = "UNSUPPORTED_OPERATION"
	// ErrCodeCircularDependency indicates a resolution chain revisited a service.
	ErrCodeCircularDependency ErrorCode = "CIRCULAR_DEPENDENCY"
	// ErrCodeScopeViolation indicates a scoped service was requested outside a scope.
	ErrCodeScopeViolation ErrorCode = "SCOPE_VIOLATION"
	// ErrCodeConstructionFailed indicates a factory returned an error.
	ErrCodeConstructionFailed ErrorCode = "CONSTRUCTION_FAILED"
)

// Lifecycle errors
const (
	// ErrCodeDisposed indicates the object was used after Close.
	ErrCodeDisposed ErrorCode = "OBJECT_DISPOSED"
	// ErrCodeInternal indicates an unexpected failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var argumentCodes = map[ErrorCode]bool{
	ErrCodeInvalidArgument: true,
	ErrCodeConfiguration:   true,
}

// IsArgumentCode returns true if the code reports a caller mistake rather
// than a runtime resolution failure.
func IsArgumentCode(code ErrorCode) bool {
	return argumentCodes[code]
}
