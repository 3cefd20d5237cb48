package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is the typed API error. Code echoes the HTTP status and is
// serialized together with the fixed message as the response body.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code int, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Fixed message catalogue; every status always maps to the same body.
var (
	ErrBadRequest = New(http.StatusBadRequest,
		"`Bad Request` User name or e-mail already exists")
	ErrUnauthorized = New(http.StatusUnauthorized,
		"UNAUTHORIZED: invalid `Authorization` header")
	ErrForbidden = New(http.StatusForbidden,
		"`Forbidden` You don't have permission to access")
	ErrNotFound = New(http.StatusNotFound,
		"Resource not found")
	ErrMethodNotAllowed = New(http.StatusMethodNotAllowed,
		"Method not allowed")
	ErrConflict = New(http.StatusConflict,
		"`Conflict`: the creator does not exist or is not a teacher.")
	ErrUnprocessableEntity = New(http.StatusUnprocessableEntity,
		"`Unprocessable entity` Username, e-mail or password is left out")
	ErrInternal = New(http.StatusInternalServerError,
		"Internal server error")
)

// FromError normalises any error into an *Error. Unrecognised errors map
// to the generic server error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Message)
}
