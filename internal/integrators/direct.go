package integrators

import (
	"github.com/san-kum/dampcal/internal/dynamo"
	"github.com/san-kum/dampcal/internal/scheme"
)

// DirectIntegration advances rotational dofs with the translational scheme
// instance itself.
type DirectIntegration struct {
	translational dynamo.Scheme
}

func NewDirectIntegration(translational dynamo.Scheme) *DirectIntegration {
	return &DirectIntegration{translational: translational}
}

func (d *DirectIntegration) Name() string {
	return scheme.DirectIntegration.String() + "(" + d.translational.Name() + ")"
}

// Translational returns the delegated scheme.
func (d *DirectIntegration) Translational() dynamo.Scheme {
	return d.translational
}

func (d *DirectIntegration) Initialize(p dynamo.ParameterReader, m dynamo.Model, k *dynamo.Kinematics) error {
	return d.translational.Initialize(p, m, k)
}

func (d *DirectIntegration) Step(m dynamo.Model, k *dynamo.Kinematics, t, dt float64) error {
	return d.translational.Step(m, k, t, dt)
}
