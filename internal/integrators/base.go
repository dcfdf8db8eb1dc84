package integrators

import (
	"fmt"

	"github.com/san-kum/dampcal/internal/dynamo"
	"github.com/san-kum/dampcal/internal/processinfo"
)

// parallelChunk is the smallest dof range worth a goroutine.
const parallelChunk = 4096

// damped holds what every Rayleigh-damped scheme reads from the store.
type damped struct {
	alpha          float64
	beta           float64
	nodalMassArray bool
	initialized    bool

	mass dynamo.State
}

func (d *damped) readDamping(p dynamo.ParameterReader) error {
	for _, key := range []processinfo.Key{processinfo.RayleighAlpha, processinfo.RayleighBeta} {
		if !p.Has(key) {
			return fmt.Errorf("%w: %s", dynamo.ErrMissingParameter, key)
		}
	}
	d.alpha = p.GetValue(processinfo.RayleighAlpha)
	d.beta = p.GetValue(processinfo.RayleighBeta)
	d.nodalMassArray = p.GetFlag(processinfo.UseNodalMassArray)
	return nil
}

func (d *damped) Alpha() float64 { return d.alpha }
func (d *damped) Beta() float64  { return d.beta }

// lumpedMass fills d.mass for m. Without the nodal mass array every dof of
// a node takes the mass of its first dof.
func (d *damped) lumpedMass(m dynamo.Model) dynamo.State {
	d.mass = effectiveMass(d.mass, m, d.nodalMassArray)
	return d.mass
}

func effectiveMass(dst dynamo.State, m dynamo.Model, perDof bool) dynamo.State {
	src := m.Mass()
	if len(dst) != len(src) {
		dst = make(dynamo.State, len(src))
	}
	if perDof {
		copy(dst, src)
		return dst
	}
	dim := m.Dim()
	if dim < 1 {
		dim = 1
	}
	for i := range src {
		dst[i] = src[i-i%dim]
	}
	return dst
}

func requireValue(p dynamo.ParameterReader, key processinfo.Key) (float64, error) {
	if !p.Has(key) {
		return 0, fmt.Errorf("%w: %s", dynamo.ErrMissingParameter, key)
	}
	return p.GetValue(key), nil
}

// prime evaluates the forces at t = 0 and the matching acceleration, then
// resets the history.
func prime(m dynamo.Model, k *dynamo.Kinematics, mass dynamo.State, alpha float64) error {
	if err := k.Check(m); err != nil {
		return err
	}
	m.InternalForce(k.U, k.FInt)
	m.ExternalForce(0, k.FExt)
	for i := range k.U {
		if k.IsFixed(i) || mass[i] == 0 {
			k.A[i] = 0
			continue
		}
		k.A[i] = (k.FExt[i] - k.FInt[i] - alpha*mass[i]*k.V[i]) / mass[i]
	}
	k.ResetHistory()
	return nil
}

// finish evaluates the forces at the new position.
func finish(m dynamo.Model, k *dynamo.Kinematics, t float64) {
	m.InternalForce(k.U, k.FInt)
	m.ExternalForce(t, k.FExt)
}

func checkStep(initialized bool, name string, k *dynamo.Kinematics, m dynamo.Model, dt float64) error {
	if !initialized {
		return fmt.Errorf("%s: %w", name, dynamo.ErrNotInitialized)
	}
	if !(dt > 0) {
		return fmt.Errorf("%s: %w: dt = %g", name, dynamo.ErrParameterBounds, dt)
	}
	if len(k.U) != m.Dofs() {
		return fmt.Errorf("%s: %w", name, dynamo.ErrDimensionMismatch)
	}
	return nil
}
