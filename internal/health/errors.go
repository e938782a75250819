// ABOUTME: Error kinds shared by validation and the tracking store.
// ABOUTME: Callers match kinds with errors.Is; preconditions panic instead.
package health

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientInput means a required field was empty.
	ErrInsufficientInput = errors.New("insufficient input")

	// ErrInvalidInput means a field was present but malformed or out of range.
	ErrInvalidInput = errors.New("invalid input")

	// ErrOutOfBounds means an index fell outside a collection.
	ErrOutOfBounds = errors.New("index out of bounds")

	// ErrPrecondition marks a caller contract violation. It is only ever
	// raised through panic.
	ErrPrecondition = errors.New("precondition violated")
)

// Insufficientf returns an error of kind ErrInsufficientInput.
func Insufficientf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInsufficientInput, fmt.Sprintf(format, args...))
}

// Invalidf returns an error of kind ErrInvalidInput.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func outOfBounds(index, size int) error {
	return fmt.Errorf("%w: index %d, %d entries", ErrOutOfBounds, index, size)
}

// precondition panics when cond is false.
func precondition(cond bool, msg string) {
	if !cond {
		panic(fmt.Errorf("%w: %s", ErrPrecondition, msg))
	}
}
