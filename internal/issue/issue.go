// SPDX-License-Identifier: MPL-2.0

// Package issue provides errors with enough context for user-facing display:
// what operation failed, what resource was involved, and how to fix it.
package issue

import (
	"strings"
)

// ActionableError is an error carrying user-facing context. The zero
// Suggestions and Resource fields are optional; Operation is required.
type ActionableError struct {
	// Operation describes what was being attempted (e.g., "import trace file").
	Operation string

	// Resource identifies the file or entity involved (optional).
	Resource string

	// Suggestions are hints on how to fix the issue (optional).
	Suggestions []string

	// Cause is the underlying error (optional).
	Cause error
}

// New creates an ActionableError for the given operation.
func New(operation string) *ActionableError {
	return &ActionableError{Operation: operation}
}

// Wrap wraps an error with operation context. Returns nil for a nil cause
// so it can be used directly on a call result.
func Wrap(err error, operation string) *ActionableError {
	if err == nil {
		return nil
	}
	return &ActionableError{Operation: operation, Cause: err}
}

// WrapResource wraps an error with operation and resource context.
func WrapResource(err error, operation, resource string) *ActionableError {
	if err == nil {
		return nil
	}
	return &ActionableError{Operation: operation, Resource: resource, Cause: err}
}

// WithSuggestion appends a suggestion and returns the error for chaining.
func (e *ActionableError) WithSuggestion(s string) *ActionableError {
	e.Suggestions = append(e.Suggestions, s)
	return e
}

// Error implements the error interface with a concise single-line message.
func (e *ActionableError) Error() string {
	var msg strings.Builder
	msg.WriteString("failed to ")
	msg.WriteString(e.Operation)
	if e.Resource != "" {
		msg.WriteString(": ")
		msg.WriteString(e.Resource)
	}
	if e.Cause != nil {
		msg.WriteString(": ")
		msg.WriteString(e.Cause.Error())
	}
	return msg.String()
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *ActionableError) Unwrap() error { return e.Cause }

// Format renders the error for terminal display. In verbose mode the full
// cause chain is included; suggestions are always listed when present.
func (e *ActionableError) Format(verbose bool) string {
	var msg strings.Builder

	msg.WriteString("Failed to ")
	msg.WriteString(e.Operation)
	if e.Resource != "" {
		msg.WriteString(" (")
		msg.WriteString(e.Resource)
		msg.WriteString(")")
	}

	if e.Cause != nil && verbose {
		msg.WriteString("\n  cause: ")
		msg.WriteString(e.Cause.Error())
	}

	for _, s := range e.Suggestions {
		msg.WriteString("\n  - ")
		msg.WriteString(s)
	}

	return msg.String()
}
