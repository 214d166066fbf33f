package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// AppError is the unified error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// --- Constructors ---

// InvalidArgument creates an error for a missing required argument.
func InvalidArgument(name string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidArgument,
		Message: fmt.Sprintf("%s must not be nil", name),
		Details: map[string]any{"argument": name},
	}
}

// Configuration creates an error for an unsupported configuration value.
func Configuration(message string) *AppError {
	return &AppError{Code: ErrCodeConfiguration, Message: message}
}

// ServiceNotFound creates an error for a required service with no registration.
func ServiceNotFound(service string) *AppError {
	return &AppError{
		Code:    ErrCodeServiceNotFound,
		Message: fmt.Sprintf("no service registered for %s", service),
		Details: map[string]any{"service": service},
	}
}

// Unsupported creates an error for a type that cannot be constructed on demand.
func Unsupported(service, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeUnsupported,
		Message: fmt.Sprintf("the service type %s is unregistered but cannot be resolved because %s", service, reason),
		Details: map[string]any{"service": service},
	}
}

// CircularDependency creates an error describing the resolution chain that looped.
func CircularDependency(chain []string) *AppError {
	return &AppError{
		Code:    ErrCodeCircularDependency,
		Message: fmt.Sprintf("circular dependency detected: %s", strings.Join(chain, " -> ")),
		Details: map[string]any{"chain": chain},
	}
}

// ScopeViolation creates an error for a scoped service requested from the root provider.
func ScopeViolation(service string) *AppError {
	return &AppError{
		Code:    ErrCodeScopeViolation,
		Message: fmt.Sprintf("scoped service %s cannot be resolved from the root provider, create a scope first", service),
		Details: map[string]any{"service": service},
	}
}

// ConstructionFailed creates an error for a factory that returned an error.
func ConstructionFailed(service string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeConstructionFailed,
		Message: fmt.Sprintf("failed to construct %s", service),
		Details: map[string]any{"service": service},
		Cause:   cause,
	}
}

// Disposed creates an error for an object used after Close.
func Disposed(object string) *AppError {
	return &AppError{
		Code:    ErrCodeDisposed,
		Message: fmt.Sprintf("cannot access a disposed object: %s", object),
		Details: map[string]any{"object": object},
	}
}

// Internal creates an error for an unexpected failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "an unexpected error occurred",
		Cause:   cause,
	}
}

// --- Inspection ---

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err, or any error it wraps, is an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		appErr, ok := AsAppError(err)
		if !ok {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Cause
	}
	return false
}

// CodeOf returns the code of the outermost AppError in err's chain, or "" if there is none.
func CodeOf(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ""
}
