package errors

import (
	stderrors "errors"
	"fmt"
)

// FallbackMessage is surfaced when the backend gives no message of its own.
const FallbackMessage = "Something went wrong. Please try again."

// ErrValidation is raised before any request is issued
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ErrRequest is a failed backend round-trip
type ErrRequest struct {
	Status  int
	Message string
}

func (e *ErrRequest) Error() string {
	if e.Message == "" {
		return FallbackMessage
	}
	return e.Message
}

// ErrUnauthorized means no authenticated session
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message == "" {
		return "unauthorized"
	}
	return e.Message
}

// ErrForbidden means the session's role is not allowed
type ErrForbidden struct {
	Message string
}

func (e *ErrForbidden) Error() string {
	if e.Message == "" {
		return "access denied"
	}
	return e.Message
}

// ErrNotFound represents a missing resource
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// ErrInvalidStateTransition is returned when an order cannot move between two statuses
type ErrInvalidStateTransition struct {
	From fmt.Stringer
	To   fmt.Stringer
}

func (e *ErrInvalidStateTransition) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}

// ErrNotEligible is returned when an action is gated off for the order's current state
type ErrNotEligible struct {
	Action string
	Reason string
}

func (e *ErrNotEligible) Error() string {
	return fmt.Sprintf("%s not allowed: %s", e.Action, e.Reason)
}

// Message returns the text to show the user for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var reqErr *ErrRequest
	if stderrors.As(err, &reqErr) {
		return reqErr.Error()
	}
	var valErr *ErrValidation
	if stderrors.As(err, &valErr) {
		return valErr.Message
	}
	return err.Error()
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	var valErr *ErrValidation
	return stderrors.As(err, &valErr)
}
