// Package apperr defines the error taxonomy shared by the domain services.
// Every user-visible failure carries a machine-readable kind and a short
// message; storage failures keep their cause for the logs but surface a
// generic message to callers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation       Kind = "validation"
	KindNotFound         Kind = "not_found"
	KindInsufficientData Kind = "insufficient_data"
	KindStorage          Kind = "storage"
)

type Error struct {
	Kind    Kind   `json:"kind"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Validation reports a missing or invalid input field.
func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

// NotFound reports a missing referenced entity.
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// InsufficientData reports an operation invoked before its preconditions hold.
func InsufficientData(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInsufficientData, Message: fmt.Sprintf(format, args...)}
}

// Storage wraps a data-store failure. The cause stays available for logging
// via Unwrap; the client-facing message is always generic.
func Storage(cause error) *Error {
	return &Error{Kind: KindStorage, Message: "server error", cause: cause}
}

// HTTPStatus maps an error to the status code its kind prescribes.
// Unrecognized errors are treated as storage failures.
func HTTPStatus(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindInsufficientData:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Payload returns the JSON body for an error response. Internal detail is
// stripped from storage errors.
func Payload(err error) map[string]string {
	var e *Error
	if !errors.As(err, &e) {
		return map[string]string{"error": "server error"}
	}
	body := map[string]string{"error": e.Message, "kind": string(e.Kind)}
	if e.Field != "" {
		body["field"] = e.Field
	}
	if e.Kind == KindStorage {
		body["error"] = "server error"
	}
	return body
}
