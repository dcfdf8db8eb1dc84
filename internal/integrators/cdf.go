package integrators

import (
	"github.com/san-kum/dampcal/internal/dynamo"
	"github.com/san-kum/dampcal/internal/processinfo"
	"github.com/san-kum/dampcal/internal/scheme"
)

// CDF is the three-level central difference scheme with a secondary
// Rayleigh pair (alpha_b, beta_b) blended by b_0, b_1 and b_2.
type CDF struct {
	damped
	delta          float64
	b0, b1, b2     float64
	alphaB, betaB  float64
	delta0, delta1 float64
	delta2, bigB   float64
	next           dynamo.State
}

func NewCDF() *CDF {
	return &CDF{}
}

func (c *CDF) Name() string {
	return scheme.CDF.String()
}

func (c *CDF) Initialize(p dynamo.ParameterReader, m dynamo.Model, k *dynamo.Kinematics) error {
	if err := c.readDamping(p); err != nil {
		return err
	}
	keys := append([]processinfo.Key{processinfo.DeltaTime}, processinfo.CDFKeys...)
	vals := make(map[processinfo.Key]float64, len(keys))
	for _, key := range keys {
		v, err := requireValue(p, key)
		if err != nil {
			return err
		}
		vals[key] = v
	}
	c.delta = vals[processinfo.Delta]
	c.b0 = vals[processinfo.B0]
	c.b1 = vals[processinfo.B1]
	c.b2 = vals[processinfo.B2]
	c.alphaB = vals[processinfo.RayleighAlphaB]
	c.betaB = vals[processinfo.RayleighBetaB]
	c.delta0 = 7.0 / 12.0 * c.delta
	c.delta1 = -c.delta / 6.0
	c.delta2 = -c.delta
	c.bigB = 1.0 + 23.0/12.0*c.delta

	if err := prime(m, k, c.lumpedMass(m), c.alpha); err != nil {
		return err
	}
	dt := vals[processinfo.DeltaTime]
	for i := range k.U {
		k.UOld[i] = k.U[i] - dt*k.V[i] + 0.5*dt*dt*k.A[i]
		k.UOlder[i] = k.U[i] - 2*dt*k.V[i] + 2*dt*dt*k.A[i]
	}
	c.initialized = true
	return nil
}

func (c *CDF) Step(m dynamo.Model, k *dynamo.Kinematics, t, dt float64) error {
	if err := checkStep(c.initialized, c.Name(), k, m, dt); err != nil {
		return err
	}
	n := len(k.U)
	if len(c.next) != n {
		c.next = make(dynamo.State, n)
	}
	mass := c.lumpedMass(m)

	// The correction terms only apply with one scalar mass per node.
	var epsHat, epsI float64
	if !c.nodalMassArray {
		sumB := c.b0 + c.b1 + c.b2
		epsHat = sumB * c.delta * dt * c.alphaB
		epsI = sumB / 3.0 * c.delta * dt * c.betaB
	}

	d, bigB := c.delta, c.bigB
	dynamo.ParallelFor(n, parallelChunk, func(start, end int) {
		for i := start; i < end; i++ {
			mi := mass[i]
			if k.IsFixed(i) || mi == 0 {
				c.next[i] = k.U[i]
				continue
			}
			c.next[i] = ((2.0*bigB-dt*(c.alpha+d*c.b0*c.alphaB))*mi*k.U[i] -
				dt*(c.beta+d*c.b0*c.betaB+dt*(1.0+c.delta0))*k.FInt[i] -
				(bigB-epsHat+dt*(-c.alpha+d*c.b1*c.alphaB))*mi*k.UOld[i] -
				dt*(-c.beta+d*c.b1*c.betaB+dt*c.delta1)*k.FIntOld[i] -
				dt*d*c.b2*c.alphaB*mi*k.UOlder[i] -
				dt*(d*c.b2*c.betaB+dt*c.delta2)*k.FIntOlder[i] +
				dt*dt*((1.0+c.delta0)*k.FExt[i]+c.delta1*k.FExtOld[i]+c.delta2*k.FExtOlder[i]) +
				epsI*(k.FExt[i]+k.FExtOld[i]+k.FExtOlder[i])) / (mi * bigB)
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
