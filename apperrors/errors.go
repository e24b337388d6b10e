package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind names an error category the way the API reports it in the
// "errorType" field.
type Kind string

const (
	KindValidation        Kind = "ValidationError"
	KindNotFound          Kind = "NotFound"
	KindUnauthorized      Kind = "Unauthorized"
	KindInvalidState      Kind = "InvalidState"
	KindInvalidAction     Kind = "InvalidAction"
	KindInsufficientStock Kind = "InsufficientStock"
	KindSignatureMismatch Kind = "SignatureMismatch"
	KindConcurrent        Kind = "ConcurrentModification"
	KindExternal          Kind = "ExternalServiceError"
	KindInternal          Kind = "ServerError"
)

// Error is the one error type allowed to cross a service boundary.
type Error struct {
	Kind    Kind   `json:"errorType"`
	Code    int    `json:"-"`
	Message string `json:"message"`
	Err     error  `json:"-"`
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

func New(kind Kind, code int, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Wrap(kind Kind, code int, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

func Validation(message string) *Error {
	return New(KindValidation, http.StatusBadRequest, message)
}

func NotFound(message string) *Error {
	return New(KindNotFound, http.StatusNotFound, message)
}

func Unauthorized(message string) *Error {
	return New(KindUnauthorized, http.StatusForbidden, message)
}

func InvalidState(message string) *Error {
	return New(KindInvalidState, http.StatusBadRequest, message)
}

func InvalidAction(message string) *Error {
	return New(KindInvalidAction, http.StatusBadRequest, message)
}

func InsufficientStock(message string) *Error {
	return New(KindInsufficientStock, http.StatusBadRequest, message)
}

func SignatureMismatch(message string) *Error {
	return New(KindSignatureMismatch, http.StatusBadRequest, message)
}

func Concurrent(message string, err error) *Error {
	return Wrap(KindConcurrent, http.StatusConflict, message, err)
}

func External(message string, err error) *Error {
	return Wrap(KindExternal, http.StatusBadGateway, message, err)
}

func Internal(message string, err error) *Error {
	return Wrap(KindInternal, http.StatusInternalServerError, message, err)
}

// From coerces any error into an *Error, defaulting to ServerError so that
// low-level errors never leak their own shape to clients.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("Something went wrong on the server", err)
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}
