// Package scheme enumerates the explicit time integration schemes a solver
// can be configured with.
//
// Identifiers from configuration files are parsed into a closed [Type]:
//
//	t, err := scheme.ParseTranslational("Explicit_Central_Differences")
//	r, err := scheme.ParseRotational("Direct_Integration")
//
// Translational schemes advance displacement dofs. Rotational schemes
// advance orientation dofs; [DirectIntegration] reuses the translational
// scheme for them.
package scheme

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupported is returned for identifiers that name no known scheme.
var ErrUnsupported = errors.New("scheme: unsupported scheme type")

type Type int

const (
	Unset Type = iota

	CentralDifferences
	VelocityVerlet
	CDF
	ForwardEuler
	SymplecticEuler
	Taylor

	RungeKutta
	QuaternionIntegration
	DirectIntegration
)

var names = map[Type]string{
	CentralDifferences:    "Central_Differences",
	VelocityVerlet:        "Velocity_Verlet",
	CDF:                   "CDF",
	ForwardEuler:          "Forward_Euler",
	SymplecticEuler:       "Symplectic_Euler",
	Taylor:                "Taylor_Scheme",
	RungeKutta:            "Runge_Kutta",
	QuaternionIntegration: "Quaternion_Integration",
	DirectIntegration:     "Direct_Integration",
}

// translational maps every accepted spelling. The poromechanics solver
// prefixes its identifiers with "Explicit_".
var translational = map[string]Type{
	"Central_Differences":          CentralDifferences,
	"Explicit_Central_Differences": CentralDifferences,
	"Velocity_Verlet":              VelocityVerlet,
	"Explicit_Velocity_Verlet":     VelocityVerlet,
	"CDF":                          CDF,
	"Explicit_CDF":                 CDF,
	"Forward_Euler":                ForwardEuler,
	"Symplectic_Euler":             SymplecticEuler,
	"Taylor_Scheme":                Taylor,
}

var rotational = map[string]Type{
	"Runge_Kutta":            RungeKutta,
	"Quaternion_Integration": QuaternionIntegration,
	"Direct_Integration":     DirectIntegration,
}

func (t Type) String() string {
	if n, ok := names[t]; ok {
		return n
	}
	return "Unset"
}

func (t Type) IsTranslational() bool {
	return t >= CentralDifferences && t <= Taylor
}

func (t Type) IsRotational() bool {
	return t >= RungeKutta && t <= DirectIntegration
}

// Damped reports whether the scheme applies Rayleigh damping and therefore
// needs calibrated coefficients.
func (t Type) Damped() bool {
	return t == CentralDifferences || t == VelocityVerlet || t == CDF
}

func ParseTranslational(s string) (Type, error) {
	if t, ok := translational[strings.TrimSpace(s)]; ok {
		return t, nil
	}
	return Unset, fmt.Errorf("%w: translational %q (available: %s)", ErrUnsupported, s, strings.Join(TranslationalNames(), ", "))
}

func ParseRotational(s string) (Type, error) {
	if t, ok := rotational[strings.TrimSpace(s)]; ok {
		return t, nil
	}
	return Unset, fmt.Errorf("%w: rotational %q (available: %s)", ErrUnsupported, s, strings.Join(RotationalNames(), ", "))
}

func TranslationalNames() []string {
	return []string{
		CentralDifferences.String(),
		VelocityVerlet.String(),
		CDF.String(),
		ForwardEuler.String(),
		SymplecticEuler.String(),
		Taylor.String(),
	}
}

func RotationalNames() []string {
	return []string{
		RungeKutta.String(),
		QuaternionIntegration.String(),
		DirectIntegration.String(),
	}
}
