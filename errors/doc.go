// Package errors provides the coded error type used across diext.
// Every failure raised by the container, the lazy extender and the
// unregistered-type fallback is an *AppError carrying a machine-readable
// ErrorCode, so callers can branch with HasCode instead of matching strings.
package errors
