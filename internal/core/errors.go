package core

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateName     = errors.New("vehicle name already exists")
	ErrDuplicateOdometer = errors.New("duplicate odometer value for vehicle")
	ErrNotFound          = errors.New("not found")
	ErrOutOfRange        = errors.New("value out of range")
	ErrInvalidName       = errors.New("invalid vehicle name")
	ErrInconsistentInput = errors.New("duplicate odometer values in record list")
	ErrInsufficientData  = errors.New("no full tank recorded")
)

// MalformedLineError reports a CSV line that could not be parsed.
// Line numbers are 1-based so they can be shown to the user as-is.
type MalformedLineError struct {
	Line  int
	Field string
	Cause error
}

func (e *MalformedLineError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("line %d: bad %s: %v", e.Line, e.Field, e.Cause)
	}
	return fmt.Sprintf("line %d: %v", e.Line, e.Cause)
}

func (e *MalformedLineError) Unwrap() error {
	return e.Cause
}
