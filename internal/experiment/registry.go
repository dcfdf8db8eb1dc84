package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/dampcal/internal/config"
	"github.com/san-kum/dampcal/internal/dynamo"
	"github.com/san-kum/dampcal/internal/metrics"
	"github.com/san-kum/dampcal/internal/physics"
)

type Registry struct {
	models map[string]func(config.ModelConfig) dynamo.Model
}

func NewRegistry() *Registry {
	r := &Registry{
		models: make(map[string]func(config.ModelConfig) dynamo.Model),
	}

	r.models["oscillator"] = func(p config.ModelConfig) dynamo.Model {
		o := physics.NewOscillator()
		o.M, o.K = p.Mass, p.Stiffness
		o.Force, o.LoadFreq = p.Force, p.LoadFreq
		return o
	}
	r.models["spring_chain"] = func(p config.ModelConfig) dynamo.Model {
		c := physics.NewSpringChain(p.Nodes, p.Mass, p.Stiffness)
		c.Force, c.LoadFreq = p.Force, p.LoadFreq
		return c
	}
	r.models["rotor"] = func(p config.ModelConfig) dynamo.Model {
		rt := physics.NewRotor(p.Nodes, p.Mass, p.Stiffness, p.Inertia, p.Torsional)
		rt.Force, rt.LoadFreq = p.Force, p.LoadFreq
		return rt
	}

	return r
}

func (r *Registry) GetModel(name string, params config.ModelConfig) (dynamo.Model, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	if params.Mass <= 0 || params.Stiffness < 0 {
		return nil, fmt.Errorf("%w: model %s needs mass > 0 and stiffness >= 0", dynamo.ErrParameterBounds, name)
	}
	if name != "oscillator" && params.Nodes < 1 {
		return nil, fmt.Errorf("%w: model %s needs at least one node", dynamo.ErrParameterBounds, name)
	}
	if name == "rotor" && params.Inertia <= 0 {
		return nil, fmt.Errorf("%w: rotor needs inertia > 0", dynamo.ErrParameterBounds)
	}
	return fn(params), nil
}

func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics() []dynamo.Metric {
	return metrics.Standard(1e3)
}

// InitialKinematics allocates kinematics for m and applies the initial
// displacement, velocity and spin.
func InitialKinematics(m dynamo.Model, is config.InitStateConfig) *dynamo.Kinematics {
	k := dynamo.ForModel(m)

	chain, isChain := m.(interface{ ModeShape(int) dynamo.State })
	if isChain && is.Mode > 0 {
		shape := chain.ModeShape(is.Mode)
		for i, s := range shape {
			k.U[i] = is.Displacement * s
			k.V[i] = is.Velocity * s
		}
	} else {
		dim := m.Dim()
		for i := 0; i < m.Dofs(); i += dim {
			k.U[i] = is.Displacement
			k.V[i] = is.Velocity
		}
	}

	if k.Rot != nil && is.Spin != 0 {
		for i := 2; i < k.Rot.Dofs(); i += 3 {
			k.Rot.V[i] = is.Spin
		}
	}
	return k
}
