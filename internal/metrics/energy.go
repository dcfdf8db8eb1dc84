package metrics

import (
	"math"

	"github.com/san-kum/dampcal/internal/dynamo"
)

// TotalEnergy is kinetic plus potential energy. Models that are not
// dynamo.Hamiltonian contribute kinetic energy only.
func TotalEnergy(m dynamo.Model, k *dynamo.Kinematics) float64 {
	e := 0.0
	mass := m.Mass()
	for i, v := range k.V {
		e += 0.5 * mass[i] * v * v
	}
	if h, ok := m.(dynamo.Hamiltonian); ok {
		e += h.PotentialEnergy(k.U)
	}
	if r, ok := m.(dynamo.Rotor); ok && k.Rot != nil {
		e += TotalEnergy(r.Rotation(), k.Rot)
	}
	return e
}

// Energy is the mean total energy over the run.
type Energy struct {
	name        string
	samples     int
	totalEnergy float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(m dynamo.Model, k *dynamo.Kinematics, t float64) {
	e.totalEnergy += TotalEnergy(m, k)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift is the largest relative deviation from the initial energy.
// Meant for undamped runs.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(m dynamo.Model, k *dynamo.Kinematics, t float64) {
	energy := TotalEnergy(m, k)
	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

// EnergyDecay is the ratio of the final to the initial energy, the amount
// of energy the damping left in the system.
type EnergyDecay struct {
	initial float64
	current float64
	samples int
}

func NewEnergyDecay() *EnergyDecay {
	return &EnergyDecay{}
}

func (e *EnergyDecay) Name() string { return "energy_decay" }

func (e *EnergyDecay) Observe(m dynamo.Model, k *dynamo.Kinematics, t float64) {
	e.current = TotalEnergy(m, k)
	if e.samples == 0 {
		e.initial = e.current
	}
	e.samples++
}

func (e *EnergyDecay) Value() float64 {
	if e.initial == 0 {
		return 0
	}
	return e.current / e.initial
}

func (e *EnergyDecay) Reset() {
	e.initial, e.current, e.samples = 0, 0, 0
}
