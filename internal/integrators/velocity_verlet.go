package integrators

import (
	"github.com/san-kum/dampcal/internal/dynamo"
	"github.com/san-kum/dampcal/internal/scheme"
)

// VelocityVerlet advances the position with the half-step velocity and
// applies Rayleigh damping on that half-step velocity.
type VelocityVerlet struct {
	damped
	half dynamo.State
}

func NewVelocityVerlet() *VelocityVerlet {
	return &VelocityVerlet{}
}

func (v *VelocityVerlet) Name() string {
	return scheme.VelocityVerlet.String()
}

func (v *VelocityVerlet) Initialize(p dynamo.ParameterReader, m dynamo.Model, k *dynamo.Kinematics) error {
	if err := v.readDamping(p); err != nil {
		return err
	}
	if err := prime(m, k, v.lumpedMass(m), v.alpha); err != nil {
		return err
	}
	v.initialized = true
	return nil
}

func (v *VelocityVerlet) Step(m dynamo.Model, k *dynamo.Kinematics, t, dt float64) error {
	if err := checkStep(v.initialized, v.Name(), k, m, dt); err != nil {
		return err
	}
	n := len(k.U)
	if len(v.half) != n {
		v.half = make(dynamo.State, n)
	}
	mass := v.lumpedMass(m)
	halfDt := 0.5 * dt

	k.Shift()
	copy(k.UOlder, k.UOld)
	copy(k.UOld, k.U)
	for i := 0; i < n; i++ {
		if k.IsFixed(i) {
			v.half[i] = 0
			continue
		}
		v.half[i] = k.V[i] + halfDt*k.A[i]
		k.U[i] += dt * v.half[i]
	}

	finish(m, k, t+dt)

	for i := 0; i < n; i++ {
		if k.IsFixed(i) {
			k.V[i], k.A[i] = 0, 0
			continue
		}
		mi := mass[i]
		if mi == 0 {
			k.A[i] = 0
			k.V[i] = v.half[i]
			continue
		}
		k.A[i] = (k.FExt[i] - k.FInt[i] - v.alpha*mi*v.half[i] - v.beta*(k.FInt[i]-k.FIntOld[i])/dt) / mi
		k.V[i] = v.half[i] + halfDt*k.A[i]
	}
	return nil
}
