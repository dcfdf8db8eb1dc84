package damping

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration indicates an unsupported or missing scheme selection.
	ErrConfiguration = errors.New("damping: invalid configuration")

	// ErrDegenerateInput indicates inputs for which the closed-form
	// coefficients are undefined (equal frequencies, non-positive time step).
	ErrDegenerateInput = errors.New("damping: degenerate input")

	// ErrRatioOutOfRange indicates a damping ratio outside [0, 1) under
	// RangeReject.
	ErrRatioOutOfRange = errors.New("damping: damping ratio outside [0, 1)")
)

// InputError names the input that failed validation.
type InputError struct {
	Field string
	Value any
	Err   error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%v (%s = %v)", e.Err, e.Field, e.Value)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

func degenerate(field string, value any, reason string) error {
	return &InputError{Field: field, Value: value, Err: fmt.Errorf("%w: %s", ErrDegenerateInput, reason)}
}
