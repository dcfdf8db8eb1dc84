package integrators

import (
	"fmt"
	"math"

	"github.com/san-kum/dampcal/internal/dynamo"
	"github.com/san-kum/dampcal/internal/processinfo"
	"github.com/san-kum/dampcal/internal/scheme"
)

// Quaternion is a unit quaternion w + xi + yj + zk.
type Quaternion struct {
	W, X, Y, Z float64
}

// QuaternionFromRotationVector is the exponential map of r.
func QuaternionFromRotationVector(r [3]float64) Quaternion {
	angle := math.Sqrt(r[0]*r[0] + r[1]*r[1] + r[2]*r[2])
	if angle < 1e-12 {
		return Quaternion{W: 1, X: 0.5 * r[0], Y: 0.5 * r[1], Z: 0.5 * r[2]}.Normalize()
	}
	s, c := math.Sincos(0.5 * angle)
	f := s / angle
	return Quaternion{W: c, X: f * r[0], Y: f * r[1], Z: f * r[2]}
}

func (q Quaternion) Normalize() Quaternion {
	n := math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
	if n == 0 {
		return Quaternion{W: 1}
	}
	return Quaternion{W: q.W / n, X: q.X / n, Y: q.Y / n, Z: q.Z / n}
}

// Mul is the Hamilton product q*p.
func (q Quaternion) Mul(p Quaternion) Quaternion {
	return Quaternion{
		W: q.W*p.W - q.X*p.X - q.Y*p.Y - q.Z*p.Z,
		X: q.W*p.X + q.X*p.W + q.Y*p.Z - q.Z*p.Y,
		Y: q.W*p.Y - q.X*p.Z + q.Y*p.W + q.Z*p.X,
		Z: q.W*p.Z + q.X*p.Y - q.Y*p.X + q.Z*p.W,
	}
}

// RotationVector is the logarithm of q, with the angle in [0, pi].
func (q Quaternion) RotationVector() [3]float64 {
	q = q.Normalize()
	if q.W < 0 {
		q = Quaternion{W: -q.W, X: -q.X, Y: -q.Y, Z: -q.Z}
	}
	s := math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z)
	if s < 1e-12 {
		return [3]float64{2 * q.X, 2 * q.Y, 2 * q.Z}
	}
	f := 2 * math.Atan2(s, q.W) / s
	return [3]float64{f * q.X, f * q.Y, f * q.Z}
}

// QuaternionIntegration advances rotational dofs stored as one rotation
// vector per node. The angular velocity is updated first and the
// orientation is composed with its exponential map.
type QuaternionIntegration struct {
	nodalMassArray bool
	initialized    bool
	mass           dynamo.State
}

func NewQuaternionIntegration() *QuaternionIntegration {
	return &QuaternionIntegration{}
}

func (q *QuaternionIntegration) Name() string {
	return scheme.QuaternionIntegration.String()
}

func (q *QuaternionIntegration) Initialize(p dynamo.ParameterReader, m dynamo.Model, k *dynamo.Kinematics) error {
	if m.Dim() != 3 || m.Dofs()%3 != 0 {
		return fmt.Errorf("%s: %w: needs 3 rotational dofs per node, got dim %d with %d dofs",
			q.Name(), dynamo.ErrDimensionMismatch, m.Dim(), m.Dofs())
	}
	q.nodalMassArray = p.GetFlag(processinfo.UseNodalMassArray)
	q.mass = effectiveMass(q.mass, m, q.nodalMassArray)
	if err := prime(m, k, q.mass, 0); err != nil {
		return err
	}
	q.initialized = true
	return nil
}

func (q *QuaternionIntegration) Step(m dynamo.Model, k *dynamo.Kinematics, t, dt float64) error {
	if err := checkStep(q.initialized, q.Name(), k, m, dt); err != nil {
		return err
	}
	q.mass = effectiveMass(q.mass, m, q.nodalMassArray)

	k.Shift()
	copy(k.UOlder, k.UOld)
	copy(k.UOld, k.U)
	for node := 0; node+2 < len(k.U); node += 3 {
		var w [3]float64
		for j := 0; j < 3; j++ {
			i := node + j
			if !k.IsFixed(i) {
				k.V[i] += k.A[i] * dt
			}
			w[j] = k.V[i] * dt
		}
		orientation := QuaternionFromRotationVector([3]float64{k.U[node], k.U[node+1], k.U[node+2]})
		r := QuaternionFromRotationVector(w).Mul(orientation).RotationVector()
		for j := 0; j < 3; j++ {
			if !k.IsFixed(node + j) {
				k.U[node+j] = r[j]
			}
		}
	}

	finish(m, k, t+dt)
	for i := range k.U {
		if k.IsFixed(i) || q.mass[i] == 0 {
			k.A[i] = 0
			continue
		}
		k.A[i] = (k.FExt[i] - k.FInt[i]) / q.mass[i]
	}
	return nil
}
