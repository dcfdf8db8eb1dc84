package dynamo

import "errors"

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates a state vector with invalid dimensions or values.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrUnstable indicates the simulation became numerically unstable.
	ErrUnstable = errors.New("dynamo: simulation unstable (state diverged)")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrMissingParameter indicates a scheme parameter absent from the store.
	ErrMissingParameter = errors.New("dynamo: parameter missing from process info")

	// ErrContextCanceled indicates the simulation was interrupted.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")

	// ErrNotInitialized indicates a step before Initialize.
	ErrNotInitialized = errors.New("dynamo: scheme not initialized")

	// ErrDimensionMismatch indicates mismatched model/kinematics dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between model and kinematics")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	Scheme  string
	Wrapped error
}

func (e *SimulationError) Error() string {
	if e.Scheme == "" {
		return e.Wrapped.Error()
	}
	return e.Scheme + ": " + e.Wrapped.Error()
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
