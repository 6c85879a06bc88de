package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown       ErrorCode = "UNKNOWN"
	ErrInternal      ErrorCode = "INTERNAL"
	ErrInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrNotFound      ErrorCode = "NOT_FOUND"
	ErrAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Definition errors (template registration and resolution)
	ErrTemplateMalformed ErrorCode = "TEMPLATE_MALFORMED"
	ErrTemplateCycle     ErrorCode = "TEMPLATE_CYCLE"
	ErrTokenTypeConflict ErrorCode = "TOKEN_TYPE_CONFLICT"
	ErrUnknownReference  ErrorCode = "UNKNOWN_REFERENCE"
	ErrTokenConfig       ErrorCode = "TOKEN_CONFIG"

	// Match errors (parsing a concrete path)
	ErrPathNoMatch      ErrorCode = "PATH_NO_MATCH"
	ErrTypeMismatch     ErrorCode = "TYPE_MISMATCH"
	ErrNotInChoices     ErrorCode = "NOT_IN_CHOICES"
	ErrPaddingViolation ErrorCode = "PADDING_VIOLATION"

	// Format errors (rendering a path)
	ErrMissingField ErrorCode = "MISSING_FIELD"

	// Definitions file errors
	ErrDefinitionsLoad  ErrorCode = "DEFINITIONS_LOAD"
	ErrDefinitionsParse ErrorCode = "DEFINITIONS_PARSE"
)

// Error represents a structured error with code and details
type Error struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *Error) Is(target error) bool {
	var targetErr *Error
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new Error with the given code and message
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new Error with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with an Error
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not an Error
func GetErrorCode(err error) ErrorCode {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not an Error
func GetErrorDetails(err error) map[string]interface{} {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Details
	}
	return nil
}

// IsMatchError reports whether the error is one of the recoverable
// path-matching failures. Callers iterating templates treat these as a
// "try the next template" signal rather than a hard failure.
func IsMatchError(err error) bool {
	switch GetErrorCode(err) {
	case ErrPathNoMatch, ErrTypeMismatch, ErrNotInChoices, ErrPaddingViolation:
		return true
	}
	return false
}
