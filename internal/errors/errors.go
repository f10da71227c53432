package errors

import (
	stderrors "errors"
	"fmt"
)

// Error is the panel error type with structured metadata.
type Error struct {
	Code     Code              // Machine-readable error code
	Message  string            // User-facing message
	Metadata map[string]string // Additional context (panel, field, status)
	Cause    error             // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil && e.Message == "" {
		return e.Cause.Error()
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a simple error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithMetadata creates an error carrying extra context.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{Code: code, Message: message, Metadata: metadata}
}

// Wrap creates an error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Network wraps a transport failure.
func Network(cause error) *Error {
	return Wrap(CodeNetwork, "request failed", cause)
}

// Rejected reports a server-side refusal with the server's message.
func Rejected(message string) *Error {
	if message == "" {
		message = "request rejected"
	}
	return New(CodeServerRejected, message)
}

// NotFound reports a cache miss for id.
func NotFound(id string) *Error {
	return WithMetadata(CodeNotFound, fmt.Sprintf("record %q not found", id), map[string]string{"id": id})
}

// Validation reports invalid input for field.
func Validation(field, message string) *Error {
	return WithMetadata(CodeValidation, message, map[string]string{"field": field})
}

// Sentinels usable with errors.Is.
var (
	ErrNetwork        = &Error{Code: CodeNetwork}
	ErrServerRejected = &Error{Code: CodeServerRejected}
	ErrNotFound       = &Error{Code: CodeNotFound}
	ErrValidation     = &Error{Code: CodeValidation}
)

// CodeOf classifies err. Errors outside the taxonomy are CodeUnknown.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}
