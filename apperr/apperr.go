package apperr

import (
	"fmt"
	"net/http"
)

// Kind classifies an error for HTTP mapping and retry semantics.
type Kind int

const (
	ClientInput Kind = iota
	StateConflict
	Auth
	External
	NotFound
	Internal
)

// RemovedItem describes a cart entry dropped during reconciliation.
type RemovedItem struct {
	Name   string `json:"name"`
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

type Error struct {
	Kind         Kind
	Message      string
	RemovedItems []RemovedItem
	Err          error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Status maps the error kind to an HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case ClientInput:
		return http.StatusBadRequest
	case StateConflict:
		return http.StatusUnprocessableEntity
	case Auth:
		return http.StatusUnauthorized
	case External:
		return http.StatusBadGateway
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Conflict builds a StateConflict error carrying the itemized removal list.
func Conflict(message string, removed []RemovedItem) *Error {
	return &Error{Kind: StateConflict, Message: message, RemovedItems: removed}
}
