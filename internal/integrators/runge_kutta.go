package integrators

import (
	"github.com/san-kum/dampcal/internal/dynamo"
	"github.com/san-kum/dampcal/internal/processinfo"
	"github.com/san-kum/dampcal/internal/scheme"
)

// RungeKutta is the classical fourth-order scheme applied to the first-order
// form (u, v)' = (v, (f_ext - f_int(u)) / M).
type RungeKutta struct {
	nodalMassArray bool
	initialized    bool
	mass           dynamo.State

	k1u, k2u, k3u, k4u dynamo.State
	k1v, k2v, k3v, k4v dynamo.State
	su, sv             dynamo.State
	fint, fext         dynamo.State
}

func NewRungeKutta() *RungeKutta {
	return &RungeKutta{}
}

func (r *RungeKutta) Name() string {
	return scheme.RungeKutta.String()
}

func (r *RungeKutta) ensureScratch(n int) {
	if len(r.k1u) != n {
		r.k1u = make(dynamo.State, n)
		r.k2u = make(dynamo.State, n)
		r.k3u = make(dynamo.State, n)
		r.k4u = make(dynamo.State, n)
		r.k1v = make(dynamo.State, n)
		r.k2v = make(dynamo.State, n)
		r.k3v = make(dynamo.State, n)
		r.k4v = make(dynamo.State, n)
		r.su = make(dynamo.State, n)
		r.sv = make(dynamo.State, n)
		r.fint = make(dynamo.State, n)
		r.fext = make(dynamo.State, n)
	}
}

func (r *RungeKutta) Initialize(p dynamo.ParameterReader, m dynamo.Model, k *dynamo.Kinematics) error {
	r.nodalMassArray = p.GetFlag(processinfo.UseNodalMassArray)
	r.mass = effectiveMass(r.mass, m, r.nodalMassArray)
	if err := prime(m, k, r.mass, 0); err != nil {
		return err
	}
	r.initialized = true
	return nil
}

// derive writes the slopes at (u, v, t).
func (r *RungeKutta) derive(m dynamo.Model, k *dynamo.Kinematics, u, v dynamo.State, t float64, du, dv dynamo.State) {
	m.InternalForce(u, r.fint)
	m.ExternalForce(t, r.fext)
	for i := range u {
		if k.IsFixed(i) || r.mass[i] == 0 {
			du[i], dv[i] = 0, 0
			continue
		}
		du[i] = v[i]
		dv[i] = (r.fext[i] - r.fint[i]) / r.mass[i]
	}
}

func (r *RungeKutta) Step(m dynamo.Model, k *dynamo.Kinematics, t, dt float64) error {
	if err := checkStep(r.initialized, r.Name(), k, m, dt); err != nil {
		return err
	}
	n := len(k.U)
	r.ensureScratch(n)
	r.mass = effectiveMass(r.mass, m, r.nodalMassArray)

	r.derive(m, k, k.U, k.V, t, r.k1u, r.k1v)

	for i := 0; i < n; i++ {
		r.su[i] = k.U[i] + dt*0.5*r.k1u[i]
		r.sv[i] = k.V[i] + dt*0.5*r.k1v[i]
	}
	r.derive(m, k, r.su, r.sv, t+dt*0.5, r.k2u, r.k2v)

	for i := 0; i < n; i++ {
		r.su[i] = k.U[i] + dt*0.5*r.k2u[i]
		r.sv[i] = k.V[i] + dt*0.5*r.k2v[i]
	}
	r.derive(m, k, r.su, r.sv, t+dt*0.5, r.k3u, r.k3v)

	for i := 0; i < n; i++ {
		r.su[i] = k.U[i] + dt*r.k3u[i]
		r.sv[i] = k.V[i] + dt*r.k3v[i]
	}
	r.derive(m, k, r.su, r.sv, t+dt, r.k4u, r.k4v)

	k.Shift()
	copy(k.UOlder, k.UOld)
	copy(k.UOld, k.U)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		k.U[i] += dt6 * (r.k1u[i] + 2*r.k2u[i] + 2*r.k3u[i] + r.k4u[i])
		k.V[i] += dt6 * (r.k1v[i] + 2*r.k2v[i] + 2*r.k3v[i] + r.k4v[i])
	}

	finish(m, k, t+dt)
	for i := 0; i < n; i++ {
		if k.IsFixed(i) || r.mass[i] == 0 {
			k.A[i] = 0
			continue
		}
		k.A[i] = (k.FExt[i] - k.FInt[i]) / r.mass[i]
	}
	return nil
}
