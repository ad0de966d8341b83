package services

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a failed core operation
type ErrorCode string

const (
	CodeNotFound            ErrorCode = "NOT_FOUND"
	CodeConflict            ErrorCode = "CONFLICT"
	CodeOutOfCapacity       ErrorCode = "OUT_OF_CAPACITY"
	CodeForbidden           ErrorCode = "FORBIDDEN"
	CodePreconditionFailed  ErrorCode = "PRECONDITION_FAILED"
	CodeExternalUnavailable ErrorCode = "EXTERNAL_UNAVAILABLE"
	CodeValidation          ErrorCode = "VALIDATION"
	CodeInternal            ErrorCode = "INTERNAL"
)

// Error is returned by every service operation that fails
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

func wrapError(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func notFound(message string) *Error { return newError(CodeNotFound, message) }

func conflict(message string) *Error { return newError(CodeConflict, message) }

func forbidden(message string) *Error { return newError(CodeForbidden, message) }

func validationError(message string) *Error { return newError(CodeValidation, message) }

func internalError(message string, err error) *Error {
	return wrapError(CodeInternal, message, err)
}

// CodeOf extracts the error code, INTERNAL for anything unclassified
func CodeOf(err error) ErrorCode {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Code
	}
	return CodeInternal
}

// IsCode checks whether err carries the given code
func IsCode(err error, code ErrorCode) bool {
	var svcErr *Error
	return errors.As(err, &svcErr) && svcErr.Code == code
}
