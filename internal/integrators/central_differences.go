package integrators

import (
	"github.com/san-kum/dampcal/internal/dynamo"
	"github.com/san-kum/dampcal/internal/processinfo"
	"github.com/san-kum/dampcal/internal/scheme"
)

// CentralDifferences is the explicit central difference scheme with
// Rayleigh damping. The mass-proportional part is blended between the
// backward and forward velocity by theta; the stiffness-proportional part
// uses the lagged internal force difference.
type CentralDifferences struct {
	damped
	theta float64
	g     float64
	next  dynamo.State
}

func NewCentralDifferences() *CentralDifferences {
	return &CentralDifferences{}
}

func (c *CentralDifferences) Name() string {
	return scheme.CentralDifferences.String()
}

// GCoefficient is the stability coefficient handed on to the element
// formulation; the update itself does not use it.
func (c *CentralDifferences) GCoefficient() float64 { return c.g }

func (c *CentralDifferences) Theta() float64 { return c.theta }

func (c *CentralDifferences) Initialize(p dynamo.ParameterReader, m dynamo.Model, k *dynamo.Kinematics) error {
	if err := c.readDamping(p); err != nil {
		return err
	}
	theta, err := requireValue(p, processinfo.ThetaFactor)
	if err != nil {
		return err
	}
	dt, err := requireValue(p, processinfo.DeltaTime)
	if err != nil {
		return err
	}
	c.theta = theta
	c.g = p.GetValue(processinfo.GCoefficient)

	mass := c.lumpedMass(m)
	if err := prime(m, k, mass, c.alpha); err != nil {
		return err
	}
	// Start from u_{-1} = u_0 - dt v_0 + dt^2/2 a_0.
	for i := range k.U {
		k.UOld[i] = k.U[i] - dt*k.V[i] + 0.5*dt*dt*k.A[i]
	}
	c.initialized = true
	return nil
}

func (c *CentralDifferences) Step(m dynamo.Model, k *dynamo.Kinematics, t, dt float64) error {
	if err := checkStep(c.initialized, c.Name(), k, m, dt); err != nil {
		return err
	}
	n := len(k.U)
	if len(c.next) != n {
		c.next = make(dynamo.State, n)
	}
	mass := c.lumpedMass(m)
	alpha, beta, theta := c.alpha, c.beta, c.theta
	dt2 := dt * dt

	dynamo.ParallelFor(n, parallelChunk, func(start, end int) {
		for i := start; i < end; i++ {
			u, uOld := k.U[i], k.UOld[i]
			mi := mass[i]
			if k.IsFixed(i) || mi == 0 {
				c.next[i] = u
				continue
			}
			rhs := k.FExt[i] - k.FInt[i] -
				beta*(k.FInt[i]-k.FIntOld[i])/dt +
				mi*(2*u-uOld)/dt2 +
				alpha*mi*(theta*u/dt-(1-theta)*(u-uOld)/dt)
			c.next[i] = rhs / (mi/dt2 + theta*alpha*mi/dt)
		}
	})

	k.Shift()
	copy(k.UOlder, k.UOld)
	copy(k.UOld, k.U)
	copy(k.U, c.next)
	for i := range k.U {
		k.V[i] = (k.U[i] - k.UOld[i]) / dt
		k.A[i] = (k.V[i] - k.VOld[i]) / dt
	}
	finish(m, k, t+dt)
	return nil
}
