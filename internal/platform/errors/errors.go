package errors

import (
	stderrors "errors"
	"fmt"
	"maps"
)

// Error is the domain error type with structured metadata.
type Error struct {
	Kind    Kind           // Variant of the failure
	Code    Code           // Machine-readable error code
	Message string         // Internal message (for logs)
	Details map[string]any // Structured context, e.g. failing fields
	Cause   error          // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
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

// StatusCode returns the HTTP-like status number for the error's code.
func (e *Error) StatusCode() int {
	return e.Code.StatusCode()
}

// Retryable reports whether repeating the same call could succeed.
// Caller mistakes never are; upstream faults may be.
func (e *Error) Retryable() bool {
	if e.Kind != KindAPI {
		return false
	}
	status, ok := e.Details["status"].(int)
	if !ok {
		return true
	}
	return status >= 500 || status == 429
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{
		Kind:    kind,
		Code:    kind.Code(),
		Message: message,
	}
}

// WithDetails creates an error of the given kind with structured details.
// The details map is copied so later caller mutation cannot leak in.
func WithDetails(kind Kind, message string, details map[string]any) *Error {
	err := New(kind, message)
	if details != nil {
		err.Details = maps.Clone(details)
	}
	return err
}

// Wrap creates an error of the given kind that wraps an underlying cause.
func Wrap(kind Kind, message string, cause error) *Error {
	err := New(kind, message)
	err.Cause = cause
	return err
}

// APIError reports an upstream failure.
func APIError(message string, details map[string]any, cause error) *Error {
	err := WithDetails(KindAPI, message, details)
	err.Cause = cause
	return err
}

// Validation reports malformed or missing input.
func Validation(message string, details map[string]any) *Error {
	return WithDetails(KindValidation, message, details)
}

// Authentication reports rejected credentials.
func Authentication(message string) *Error {
	return New(KindAuthentication, message)
}

// ResourceNotFound reports that uri does not match template.
func ResourceNotFound(uri, template string) *Error {
	return WithDetails(KindResourceNotFound, "no resource matches "+uri, map[string]any{"uri": uri, "template": template})
}

// From coerces err into an *Error. Recognized errors anywhere in the chain are
// returned unchanged; anything else becomes an internal error that keeps the
// original under Details["originalError"].
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return &Error{
		Kind:    KindInternal,
		Code:    CodeInternal,
		Message: err.Error(),
		Details: map[string]any{"originalError": err.Error()},
		Cause:   err,
	}
}

// FromPanic converts a recovered panic value into an internal error.
func FromPanic(recovered any) *Error {
	if err, ok := recovered.(error); ok {
		return From(fmt.Errorf("panic: %w", err))
	}
	return From(fmt.Errorf("panic: %v", recovered))
}
