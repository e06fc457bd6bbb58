package filters

import (
	"errors"
	"fmt"
)

// Sentinel errors identifying the kind of a FormatError.
var (
	ErrInvalidTime      = errors.New("invalid time format")
	ErrInvalidPriority  = errors.New("invalid priority")
	ErrPriorityRange    = errors.New("priority must be between 1 and 10")
	ErrPriorityInverted = errors.New("min must be <= max")
	ErrInvalidSort      = errors.New("invalid sort field")
	ErrInvalidOrder     = errors.New("invalid sort order")
	ErrInvalidLimit     = errors.New("invalid limit")
)

// FormatError reports malformed filter input. It always carries the raw input.
type FormatError struct {
	Kind   error
	Input  string
	Detail string
}

func (formatError *FormatError) Error() string {
	if formatError.Detail != "" {
		return fmt.Sprintf("%v: %q (%s)", formatError.Kind, formatError.Input, formatError.Detail)
	}
	return fmt.Sprintf("%v: %q", formatError.Kind, formatError.Input)
}

// Unwrap exposes the kind so callers can use errors.Is.
func (formatError *FormatError) Unwrap() error {
	return formatError.Kind
}

func newFormatError(kind error, input string, detail string) *FormatError {
	return &FormatError{Kind: kind, Input: input, Detail: detail}
}
