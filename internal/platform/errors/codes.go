// Package errors provides the typed failure taxonomy shared by the API client,
// the validation layer, and the MCP dispatch boundary.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeInternal marks failures that did not originate from a recognized kind.
	CodeInternal Code = "INTERNAL_ERROR"
	// CodeAPI marks upstream non-success responses and network faults.
	CodeAPI Code = "API_ERROR"
	// CodeValidation marks malformed or missing caller input.
	CodeValidation Code = "VALIDATION_ERROR"
	// CodeAuthentication marks rejected or missing credentials.
	CodeAuthentication Code = "AUTHENTICATION_ERROR"
	// CodeResourceNotFound marks resource URIs that match no template.
	CodeResourceNotFound Code = "RESOURCE_NOT_FOUND"
)

// StatusCode maps codes to HTTP-like status numbers.
func (c Code) StatusCode() int {
	switch c {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeAuthentication:
		return http.StatusUnauthorized
	case CodeResourceNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Kind is the tagged variant of an Error.
type Kind int

const (
	KindInternal Kind = iota
	KindAPI
	KindValidation
	KindAuthentication
	KindResourceNotFound
)

// Code returns the stable code for the kind.
func (k Kind) Code() Code {
	switch k {
	case KindAPI:
		return CodeAPI
	case KindValidation:
		return CodeValidation
	case KindAuthentication:
		return CodeAuthentication
	case KindResourceNotFound:
		return CodeResourceNotFound
	default:
		return CodeInternal
	}
}

// String returns the type name used in log lines.
func (k Kind) String() string {
	switch k {
	case KindAPI:
		return "ApiError"
	case KindValidation:
		return "ValidationError"
	case KindAuthentication:
		return "AuthenticationError"
	case KindResourceNotFound:
		return "ResourceNotFoundError"
	default:
		return "AppError"
	}
}
