package physics

import (
	"fmt"

	"github.com/san-kum/dampcal/internal/dynamo"
)

// Rotor is a spring chain of spheres whose orientations are held by
// torsional springs to the ground. Translation follows the chain; every
// node adds three rotational dofs (a rotation vector).
type Rotor struct {
	*SpringChain
	Inertia   float64
	Torsional float64
	rotation  *torsion
}

func NewRotor(n int, m, k, inertia, torsional float64) *Rotor {
	r := &Rotor{
		SpringChain: NewSpringChain(n, m, k).WithDim(3),
		Inertia:     inertia,
		Torsional:   torsional,
	}
	r.rotation = &torsion{rotor: r}
	return r
}

// Rotation implements dynamo.Rotor.
func (r *Rotor) Rotation() dynamo.Model {
	return r.rotation
}

func (r *Rotor) GetParams() map[string]float64 {
	p := r.SpringChain.GetParams()
	p["inertia"] = r.Inertia
	p["torsional"] = r.Torsional
	return p
}

func (r *Rotor) SetParam(name string, value float64) error {
	switch name {
	case "inertia":
		if value <= 0 {
			return fmt.Errorf("%w: inertia = %g", dynamo.ErrParameterBounds, value)
		}
		r.Inertia = value
	case "torsional":
		if value < 0 {
			return fmt.Errorf("%w: torsional = %g", dynamo.ErrParameterBounds, value)
		}
		r.Torsional = value
	default:
		return r.SpringChain.SetParam(name, value)
	}
	return nil
}

// torsion is the rotational view of a Rotor.
type torsion struct {
	rotor   *Rotor
	inertia []float64
}

func (t *torsion) Dofs() int { return 3 * t.rotor.Nodes() }
func (t *torsion) Dim() int  { return 3 }

func (t *torsion) Mass() []float64 {
	n := t.Dofs()
	if len(t.inertia) != n {
		t.inertia = make([]float64, n)
	}
	for i := range t.inertia {
		t.inertia[i] = t.rotor.Inertia
	}
	return t.inertia
}

func (t *torsion) InternalForce(theta, out dynamo.State) {
	for i := range theta {
		out[i] = t.rotor.Torsional * theta[i]
	}
}

func (t *torsion) ExternalForce(_ float64, out dynamo.State) {
	clear(out)
}

func (t *torsion) PotentialEnergy(theta dynamo.State) float64 {
	e := 0.0
	for _, v := range theta {
		e += 0.5 * t.rotor.Torsional * v * v
	}
	return e
}
