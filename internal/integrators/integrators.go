// Package integrators implements the explicit schemes selectable by
// scheme.Type. Every scheme reads its coefficients from the process info
// store during Initialize.
package integrators

import (
	"fmt"

	"github.com/san-kum/dampcal/internal/dynamo"
	"github.com/san-kum/dampcal/internal/scheme"
)

// New constructs the translational scheme t.
func New(t scheme.Type) (dynamo.Scheme, error) {
	switch t {
	case scheme.CentralDifferences:
		return NewCentralDifferences(), nil
	case scheme.VelocityVerlet:
		return NewVelocityVerlet(), nil
	case scheme.CDF:
		return NewCDF(), nil
	case scheme.ForwardEuler:
		return NewForwardEuler(), nil
	case scheme.SymplecticEuler:
		return NewSymplecticEuler(), nil
	case scheme.Taylor:
		return NewTaylor(), nil
	}
	return nil, fmt.Errorf("%w: %s is not a translational scheme", scheme.ErrUnsupported, t)
}

// NewRotational constructs the rotational scheme t. Direct integration
// reuses translational, which must then be non-nil.
func NewRotational(t scheme.Type, translational dynamo.Scheme) (dynamo.Scheme, error) {
	switch t {
	case scheme.RungeKutta:
		return NewRungeKutta(), nil
	case scheme.QuaternionIntegration:
		return NewQuaternionIntegration(), nil
	case scheme.DirectIntegration:
		if translational == nil {
			return nil, fmt.Errorf("%w: direct integration without a translational scheme", scheme.ErrUnsupported)
		}
		return NewDirectIntegration(translational), nil
	}
	return nil, fmt.Errorf("%w: %s is not a rotational scheme", scheme.ErrUnsupported, t)
}
