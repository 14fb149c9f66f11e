package usecase

import (
	"errors"
	"fmt"
)

// ErrorKind is the stable classification of a scheduling failure
type ErrorKind string

const (
	KindNotFound            ErrorKind = "not_found"
	KindValidation          ErrorKind = "validation"
	KindPastBooking         ErrorKind = "past_booking"
	KindHorizon             ErrorKind = "horizon"
	KindOutsideAvailability ErrorKind = "outside_availability"
	KindSlotTaken           ErrorKind = "slot_taken"
	KindInvalidState        ErrorKind = "invalid_state"
)

// AppError carries a classification callers can switch on plus a readable message.
// Entity is set for not-found errors.
type AppError struct {
	Kind    ErrorKind
	Entity  string
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

// Is matches any AppError of the same kind, so errors.Is(err, ErrSlotTaken) works
// regardless of the message.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrNotFound            = &AppError{Kind: KindNotFound, Message: "resource not found"}
	ErrValidation          = &AppError{Kind: KindValidation, Message: "validation failed"}
	ErrPastBooking         = &AppError{Kind: KindPastBooking, Message: "appointment must be in the future"}
	ErrHorizon             = &AppError{Kind: KindHorizon, Message: "appointment is too far in the future"}
	ErrOutsideAvailability = &AppError{Kind: KindOutsideAvailability, Message: "doctor is not available at that time"}
	ErrSlotTaken           = &AppError{Kind: KindSlotTaken, Message: "slot is already booked"}
	ErrInvalidState        = &AppError{Kind: KindInvalidState, Message: "invalid appointment state"}
)

func notFound(entityName string) *AppError {
	return &AppError{
		Kind:    KindNotFound,
		Entity:  entityName,
		Message: entityName + " not found",
	}
}

func validationError(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func invalidState(reason string) *AppError {
	return &AppError{Kind: KindInvalidState, Message: reason}
}

// KindOf returns the classification of err, or "" for unexpected errors
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}
