package split

import (
	"errors"
	"fmt"
)

// Kind classifies pipeline failures into the categories callers act on.
type Kind string

const (
	KindInvalidTimeFormat Kind = "invalid_time_format"
	KindConfigValidation  Kind = "config_validation"
	KindIncompatibleMedia Kind = "incompatible_media"
	KindProbe             Kind = "probe"
	KindProcess           Kind = "process"
)

// Error is the single failure type used across the pipeline instead of the
// mixed bool/exception conventions the concerns started with.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error { return e.Err }

// Errorf builds an Error with a formatted detail message.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and detail to an underlying error.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the failure kind from err, or empty when err is not a
// pipeline error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}
