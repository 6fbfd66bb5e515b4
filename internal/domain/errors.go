package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest    = errors.New("invalid request")
	ErrInsufficientRooms = errors.New("insufficient rooms")
	ErrConflict          = errors.New("booking conflict")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrNotCancellable    = errors.New("booking cannot be cancelled")

	ErrInvalidRange = &ValidationError{Field: "check_out", Msg: "check-out must be after check-in"}
)

// ValidationError names the offending input field and always matches ErrInvalidRequest.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidRequest }

type ErrorClass string

const (
	ClassNone              ErrorClass = "none"
	ClassInvalidRequest    ErrorClass = "invalid_request"
	ClassInsufficientRooms ErrorClass = "insufficient_rooms"
	ClassConflict          ErrorClass = "conflict"
	ClassNotFound          ErrorClass = "not_found"
	ClassForbidden         ErrorClass = "forbidden"
	ClassNotCancellable    ErrorClass = "not_cancellable"
	ClassSystem            ErrorClass = "system"
)

// Classify maps an error onto the business taxonomy; anything unknown is a system error.
func Classify(err error) ErrorClass {
	switch {
	case err == nil:
		return ClassNone
	case errors.Is(err, ErrInvalidRequest):
		return ClassInvalidRequest
	case errors.Is(err, ErrInsufficientRooms):
		return ClassInsufficientRooms
	case errors.Is(err, ErrConflict):
		return ClassConflict
	case errors.Is(err, ErrNotFound):
		return ClassNotFound
	case errors.Is(err, ErrForbidden):
		return ClassForbidden
	case errors.Is(err, ErrNotCancellable):
		return ClassNotCancellable
	default:
		return ClassSystem
	}
}
