package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/dampcal/internal/dynamo"
)

const (
	DefaultMass      = 1.0
	DefaultStiffness = 100.0
)

// Oscillator is a single mass on a spring with an optional harmonic load.
type Oscillator struct {
	M        float64
	K        float64
	Force    float64
	LoadFreq float64
	mass     []float64
}

func NewOscillator() *Oscillator {
	return &Oscillator{M: DefaultMass, K: DefaultStiffness}
}

func (o *Oscillator) Dofs() int { return 1 }
func (o *Oscillator) Dim() int  { return 1 }

func (o *Oscillator) Mass() []float64 {
	if len(o.mass) != 1 {
		o.mass = make([]float64, 1)
	}
	o.mass[0] = o.M
	return o.mass
}

func (o *Oscillator) InternalForce(u, out dynamo.State) {
	out[0] = o.K * u[0]
}

func (o *Oscillator) ExternalForce(t float64, out dynamo.State) {
	out[0] = o.Force * math.Cos(o.LoadFreq*t)
}

func (o *Oscillator) PotentialEnergy(u dynamo.State) float64 {
	return 0.5 * o.K * u[0] * u[0]
}

func (o *Oscillator) NaturalFrequencies() []float64 {
	return []float64{math.Sqrt(o.K / o.M)}
}

func (o *Oscillator) GetParams() map[string]float64 {
	return map[string]float64{
		"m":         o.M,
		"k":         o.K,
		"force":     o.Force,
		"load_freq": o.LoadFreq,
	}
}

func (o *Oscillator) SetParam(name string, value float64) error {
	switch name {
	case "m":
		if value <= 0 {
			return fmt.Errorf("%w: m = %g", dynamo.ErrParameterBounds, value)
		}
		o.M = value
	case "k":
		if value <= 0 {
			return fmt.Errorf("%w: k = %g", dynamo.ErrParameterBounds, value)
		}
		o.K = value
	case "force":
		o.Force = value
	case "load_freq":
		o.LoadFreq = value
	default:
		return fmt.Errorf("%w: unknown parameter %q", dynamo.ErrParameterBounds, name)
	}
	return nil
}
