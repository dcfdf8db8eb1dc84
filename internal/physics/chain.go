package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/dampcal/internal/dynamo"
)

// SpringChain is n equal masses joined by equal springs between two fixed
// walls. Each node carries dim independent translational dofs.
// Dofs: [x1_0..x1_dim, x2_0.., ...].
type SpringChain struct {
	n    int
	dim  int
	m    float64
	k    float64
	mass []float64

	// Load acts on the last mass along the first axis:
	// F(t) = Force * cos(LoadFreq * t).
	Force    float64
	LoadFreq float64
}

func NewSpringChain(n int, m, k float64) *SpringChain {
	c := &SpringChain{n: n, dim: 1, m: m, k: k}
	c.resize()
	return c
}

// WithDim gives every node dim dofs.
func (c *SpringChain) WithDim(dim int) *SpringChain {
	if dim > 0 {
		c.dim = dim
		c.resize()
	}
	return c
}

func (c *SpringChain) resize() {
	c.mass = make([]float64, c.n*c.dim)
	for i := range c.mass {
		c.mass[i] = c.m
	}
}

func (c *SpringChain) Nodes() int         { return c.n }
func (c *SpringChain) Dofs() int          { return c.n * c.dim }
func (c *SpringChain) Dim() int           { return c.dim }
func (c *SpringChain) Mass() []float64    { return c.mass }
func (c *SpringChain) Stiffness() float64 { return c.k }

func (c *SpringChain) InternalForce(u, out dynamo.State) {
	d := c.dim
	for i := 0; i < c.n; i++ {
		for j := 0; j < d; j++ {
			x := u[i*d+j]
			left, right := 0.0, 0.0
			if i > 0 {
				left = u[(i-1)*d+j]
			}
			if i < c.n-1 {
				right = u[(i+1)*d+j]
			}
			out[i*d+j] = c.k * (2*x - left - right)
		}
	}
}

func (c *SpringChain) ExternalForce(t float64, out dynamo.State) {
	clear(out)
	if c.n == 0 || c.Force == 0 {
		return
	}
	out[(c.n-1)*c.dim] = c.Force * math.Cos(c.LoadFreq*t)
}

func (c *SpringChain) PotentialEnergy(u dynamo.State) float64 {
	d := c.dim
	e := 0.0
	for j := 0; j < d; j++ {
		prev := 0.0
		for i := 0; i < c.n; i++ {
			x := u[i*d+j]
			e += 0.5 * c.k * (x - prev) * (x - prev)
			prev = x
		}
		e += 0.5 * c.k * prev * prev
	}
	return e
}

// NaturalFrequencies are w_j = 2 sqrt(k/m) sin(j pi / (2(n+1))), j = 1..n.
func (c *SpringChain) NaturalFrequencies() []float64 {
	w := make([]float64, c.n)
	base := 2 * math.Sqrt(c.k/c.m)
	for j := 1; j <= c.n; j++ {
		w[j-1] = base * math.Sin(float64(j)*math.Pi/(2*float64(c.n+1)))
	}
	return w
}

// ModeShape returns mode j (1-based) along the first axis, unit amplitude.
func (c *SpringChain) ModeShape(j int) dynamo.State {
	u := make(dynamo.State, c.Dofs())
	for i := 0; i < c.n; i++ {
		u[i*c.dim] = math.Sin(float64(j*(i+1)) * math.Pi / float64(c.n+1))
	}
	return u
}

// CriticalTimeStep is 2/w_max, the stability limit of undamped central
// differences.
func (c *SpringChain) CriticalTimeStep() float64 {
	w := c.NaturalFrequencies()
	if len(w) == 0 {
		return math.Inf(1)
	}
	return 2 / w[len(w)-1]
}

func (c *SpringChain) GetParams() map[string]float64 {
	return map[string]float64{
		"n":         float64(c.n),
		"m":         c.m,
		"k":         c.k,
		"force":     c.Force,
		"load_freq": c.LoadFreq,
	}
}

func (c *SpringChain) SetParam(name string, value float64) error {
	switch name {
	case "n":
		if value < 1 {
			return fmt.Errorf("%w: n = %g", dynamo.ErrParameterBounds, value)
		}
		c.n = int(value)
		c.resize()
	case "m":
		if value <= 0 {
			return fmt.Errorf("%w: m = %g", dynamo.ErrParameterBounds, value)
		}
		c.m = value
		c.resize()
	case "k":
		if value <= 0 {
			return fmt.Errorf("%w: k = %g", dynamo.ErrParameterBounds, value)
		}
		c.k = value
	case "force":
		c.Force = value
	case "load_freq":
		c.LoadFreq = value
	default:
		return fmt.Errorf("%w: unknown parameter %q", dynamo.ErrParameterBounds, name)
	}
	return nil
}
