package errors

import (
	stderrors "errors"
	"fmt"
)

// Error codes
const (
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"

	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeMissingField = "MISSING_FIELD"

	ErrCodeNotFound = "NOT_FOUND"
	ErrCodeConflict = "CONFLICT"

	ErrCodeInvalidState      = "INVALID_STATE"
	ErrCodeProtectionFailure = "PROTECTION_FAILURE"

	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Kind classifies an error for transport mapping. Every error the lifecycle
// services return carries exactly one kind.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindUnauthorized
	KindInvalidState
	KindValidation
	KindConflict
	KindProtection
)

// Error is a domain error with a kind and a specific, user-actionable message.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound reports a missing mission, proposal, delivery or user.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Code: ErrCodeNotFound, Message: message}
}

// Unauthorized reports that the actor is not the required party for an operation.
func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Code: ErrCodeForbidden, Message: message}
}

// InvalidState reports a transition attempted from the wrong source state.
func InvalidState(message string) *Error {
	return &Error{Kind: KindInvalidState, Code: ErrCodeInvalidState, Message: message}
}

// Validation reports a missing or malformed payload field.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Code: ErrCodeInvalidInput, Message: message}
}

// Conflict reports that a concurrent transition won the race.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Code: ErrCodeConflict, Message: message}
}

// Protection reports that the watermark pipeline could not produce a safe
// artifact. The upload is rejected wholesale.
func Protection(message string, err error) *Error {
	return &Error{Kind: KindProtection, Code: ErrCodeProtectionFailure, Message: message, Err: err}
}

// Internal wraps an unexpected error.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Code: ErrCodeInternalError, Message: message, Err: err}
}

// KindOf extracts the kind from an error chain, defaulting to KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
