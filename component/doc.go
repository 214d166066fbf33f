// Package component defines the lifecycle interfaces implemented by
// long-lived infrastructure such as a built service provider.
package component
