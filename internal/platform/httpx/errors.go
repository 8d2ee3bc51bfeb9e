// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors for domain layer.
var (
	ErrNotFound   = errors.New("resource not found")
	ErrDuplicate  = errors.New("duplicate entry")
	ErrValidation = errors.New("validation failed")
)

// Messages returned to API clients for the mapped sentinels.
const (
	MessageNotFound   = "User not found!"
	MessageRequired   = "Name and email are required!"
	MessageDuplicate  = "Email already registered!"
	MessageInternal   = "Internal server error"
	MessageBadRequest = "Invalid JSON body"
)

// RespondError maps domain errors to HTTP responses carrying a message envelope.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		Message(w, http.StatusNotFound, MessageNotFound)
	case errors.Is(err, ErrDuplicate):
		Message(w, http.StatusConflict, MessageDuplicate)
	case errors.Is(err, ErrValidation):
		Message(w, http.StatusBadRequest, validationMessage(err))
	default:
		Message(w, http.StatusInternalServerError, MessageInternal)
	}
}

// ValidationError carries a client-facing message for a rejected input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Unwrap lets errors.Is match ErrValidation.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid builds a validation error with a client-facing message.
func Invalid(msg string) error {
	return &ValidationError{Msg: msg}
}

func validationMessage(err error) string {
	var verr *ValidationError
	if errors.As(err, &verr) && verr.Msg != "" {
		return verr.Msg
	}
	return MessageRequired
}
