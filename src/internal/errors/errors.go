// Package errors provides domain-specific error types for keen-targets.
//
// Errors carry a code so callers can tell an unresolved target from an
// unreadable file or a broken resolver without matching on message text.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a category of error that can occur in the application.
type ErrorCode string

const (
	// ErrCodeConfig indicates a configuration-related error.
	ErrCodeConfig ErrorCode = "CONFIG_ERROR"

	// ErrCodeValidation indicates a validation error.
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"

	// ErrCodeUnresolvedTarget indicates a token that is not an IP, CIDR,
	// resolvable hostname or existing file.
	ErrCodeUnresolvedTarget ErrorCode = "UNRESOLVED_TARGET"

	// ErrCodeFileRead indicates a target file that exists but cannot be read.
	ErrCodeFileRead ErrorCode = "FILE_READ_ERROR"

	// ErrCodeResolver indicates the DNS resolver could not be constructed.
	ErrCodeResolver ErrorCode = "RESOLVER_ERROR"

	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Error represents a domain-specific error with an error code and optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error for errors.Is and errors.As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a new domain error with the specified code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Wrap creates a new domain error wrapping an existing error.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// HasCode reports whether err or any error it wraps carries the given code.
func HasCode(err error, code ErrorCode) bool {
	var e *Error
	for err != nil {
		if stderrors.As(err, &e) {
			if e.Code == code {
				return true
			}
			err = e.Cause
			continue
		}
		return false
	}
	return false
}

// NewConfigError creates a new configuration error.
func NewConfigError(message string, cause error) *Error {
	return Wrap(ErrCodeConfig, message, cause)
}

// NewValidationError creates a new validation error.
func NewValidationError(message string, cause error) *Error {
	return Wrap(ErrCodeValidation, message, cause)
}

// NewUnresolvedTargetError creates an error for a target that matched nothing.
func NewUnresolvedTargetError(target string) *Error {
	return New(ErrCodeUnresolvedTarget, fmt.Sprintf("host %q could not be resolved", target))
}

// NewFileReadError creates a new target file read error.
func NewFileReadError(path string, cause error) *Error {
	return Wrap(ErrCodeFileRead, fmt.Sprintf("failed to read %q", path), cause)
}

// NewResolverError creates a new resolver construction error.
func NewResolverError(message string, cause error) *Error {
	return Wrap(ErrCodeResolver, message, cause)
}

// NewInternalError creates a new internal error.
func NewInternalError(message string, cause error) *Error {
	return Wrap(ErrCodeInternal, message, cause)
}
