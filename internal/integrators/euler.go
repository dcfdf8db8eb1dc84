package integrators

import (
	"github.com/san-kum/dampcal/internal/dynamo"
	"github.com/san-kum/dampcal/internal/processinfo"
	"github.com/san-kum/dampcal/internal/scheme"
)

// undamped is shared by the particle schemes. They apply no Rayleigh
// damping; the mass layout flag is still honoured.
type undamped struct {
	name           string
	nodalMassArray bool
	initialized    bool
	mass           dynamo.State
	update         func(u, v, a *float64, dt float64)
}

func (e *undamped) Name() string { return e.name }

func (e *undamped) Initialize(p dynamo.ParameterReader, m dynamo.Model, k *dynamo.Kinematics) error {
	e.nodalMassArray = p.GetFlag(processinfo.UseNodalMassArray)
	e.mass = effectiveMass(e.mass, m, e.nodalMassArray)
	if err := prime(m, k, e.mass, 0); err != nil {
		return err
	}
	e.initialized = true
	return nil
}

func (e *undamped) Step(m dynamo.Model, k *dynamo.Kinematics, t, dt float64) error {
	if err := checkStep(e.initialized, e.name, k, m, dt); err != nil {
		return err
	}
	e.mass = effectiveMass(e.mass, m, e.nodalMassArray)

	k.Shift()
	copy(k.UOlder, k.UOld)
	copy(k.UOld, k.U)
	for i := range k.U {
		if k.IsFixed(i) {
			continue
		}
		e.update(&k.U[i], &k.V[i], &k.A[i], dt)
	}

	finish(m, k, t+dt)
	for i := range k.U {
		if k.IsFixed(i) || e.mass[i] == 0 {
			k.A[i] = 0
			continue
		}
		k.A[i] = (k.FExt[i] - k.FInt[i]) / e.mass[i]
	}
	return nil
}

// NewForwardEuler moves with the old velocity, then updates the velocity.
func NewForwardEuler() dynamo.Scheme {
	return &undamped{
		name: scheme.ForwardEuler.String(),
		update: func(u, v, a *float64, dt float64) {
			*u += *v * dt
			*v += *a * dt
		},
	}
}

// NewSymplecticEuler updates the velocity first and moves with it.
func NewSymplecticEuler() dynamo.Scheme {
	return &undamped{
		name: scheme.SymplecticEuler.String(),
		update: func(u, v, a *float64, dt float64) {
			*v += *a * dt
			*u += *v * dt
		},
	}
}

// NewTaylor is the second-order Taylor expansion of the position.
func NewTaylor() dynamo.Scheme {
	return &undamped{
		name: scheme.Taylor.String(),
		update: func(u, v, a *float64, dt float64) {
			*u += *v*dt + 0.5*(*a)*dt*dt
			*v += *a * dt
		},
	}
}
