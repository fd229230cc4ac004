package textbox

import (
	"errors"
	"fmt"
)

var (
	// ErrCannotFit is returned when not even one character of non-blank
	// input fits the requested width.
	ErrCannotFit = errors.New("textbox: cannot fit any text in the given width")

	// ErrUsage signals that an Arranger method was called in the wrong state.
	ErrUsage = errors.New("textbox: arranger protocol violation")

	// ErrUnsupportedStyle is returned by providers when a font has no variant
	// for the requested bold/italic combination.
	ErrUnsupportedStyle = errors.New("textbox: unsupported style combination")
)

// UsageError records which operation was attempted in which state.
type UsageError struct {
	Op    string
	State State
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("textbox: %s is not valid while the arranger is %s", e.Op, e.State)
}

func (e *UsageError) Unwrap() error { return ErrUsage }
