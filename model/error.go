package model

import (
	"errors"
	"fmt"
)

var (
	ErrResourceNotAllowed = errors.New("resource not allowed")
	ErrUserNotFound       = errors.New("user not found")
	ErrPostNotFound       = errors.New("post not found")
)

type ErrorKind string

const (
	ValidationError      ErrorKind = "validation"
	AuthenticationError  ErrorKind = "authentication"
	UnauthenticatedError ErrorKind = "unauthenticated"
	ForbiddenError       ErrorKind = "forbidden"
	NotFoundError        ErrorKind = "not_found"
	OperationError       ErrorKind = "operation"
)

// Error is the only error shape the services hand back to transport. Message is
// always safe to show to an end user; Err keeps the underlying cause for logs.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewValidationError(message string) *Error {
	return &Error{Kind: ValidationError, Message: message, Err: errors.New(message)}
}

func NewUnauthenticatedError(reason, message string) *Error {
	return &Error{Kind: UnauthenticatedError, Message: message, Err: errors.New(reason)}
}

func NewNotFoundError(err error, message string) *Error {
	return &Error{Kind: NotFoundError, Message: message, Err: err}
}

func NewForbiddenError(err error) *Error {
	return &Error{Kind: ForbiddenError, Message: "You are not allowed to access this resource.", Err: err}
}

// NewOperationError wraps a store or connectivity failure as
// "Failed to <action>: <reason>".
func NewOperationError(action string, err error) *Error {
	return &Error{Kind: OperationError, Message: fmt.Sprintf("Failed to %s: %s", action, err.Error()), Err: err}
}

// AsError returns err as *Error, treating anything unrecognised as an
// operation failure with a generic message.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: OperationError, Message: "An error occurred. Please try again.", Err: err}
}

func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
