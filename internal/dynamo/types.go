package dynamo

import (
	"fmt"
	"math"

	"github.com/san-kum/dampcal/internal/processinfo"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// MaxAbs is the infinity norm.
func (s State) MaxAbs() float64 {
	m := 0.0
	for _, v := range s {
		if a := math.Abs(v); a > m {
			m = a
		}
	}
	return m
}

// Model is a lumped second-order system M a + f_int(u) = f_ext(t). Damping
// is added by the scheme.
type Model interface {
	Dofs() int
	// Dim is the number of dofs per node.
	Dim() int
	// Mass returns the lumped mass of every dof.
	Mass() []float64
	InternalForce(u State, out State)
	ExternalForce(t float64, out State)
}

// Rotor is a model that also carries rotational dofs. The returned model
// treats rotation angles as displacements, inertia as mass and torques as
// forces.
type Rotor interface {
	Rotation() Model
}

// Hamiltonian models can report their stored potential energy.
type Hamiltonian interface {
	PotentialEnergy(u State) float64
}

// Modal models know their natural frequencies in ascending order.
type Modal interface {
	NaturalFrequencies() []float64
}

// Kinematics holds the nodal solution and the history the three-level
// schemes need. Schemes keep no per-dof state themselves, so one scheme
// instance can advance more than one Kinematics.
type Kinematics struct {
	U, V, A State

	UOld, UOlder State
	VOld         State

	FInt, FIntOld, FIntOlder State
	FExt, FExtOld, FExtOlder State

	// Fixed dofs are never moved.
	Fixed []bool

	Rot *Kinematics
}

func NewKinematics(dofs int) *Kinematics {
	return &Kinematics{
		U:         make(State, dofs),
		V:         make(State, dofs),
		A:         make(State, dofs),
		UOld:      make(State, dofs),
		UOlder:    make(State, dofs),
		VOld:      make(State, dofs),
		FInt:      make(State, dofs),
		FIntOld:   make(State, dofs),
		FIntOlder: make(State, dofs),
		FExt:      make(State, dofs),
		FExtOld:   make(State, dofs),
		FExtOlder: make(State, dofs),
	}
}

// ForModel allocates kinematics sized for m, including the rotational part
// when m is a Rotor.
func ForModel(m Model) *Kinematics {
	k := NewKinematics(m.Dofs())
	if r, ok := m.(Rotor); ok {
		k.Rot = NewKinematics(r.Rotation().Dofs())
	}
	return k
}

func (k *Kinematics) Dofs() int {
	return len(k.U)
}

func (k *Kinematics) IsFixed(i int) bool {
	return k.Fixed != nil && k.Fixed[i]
}

func (k *Kinematics) IsValid() bool {
	return k.U.IsValid() && k.V.IsValid() && k.A.IsValid()
}

// ResetHistory makes the previous levels equal to the current one.
func (k *Kinematics) ResetHistory() {
	copy(k.UOld, k.U)
	copy(k.UOlder, k.U)
	copy(k.VOld, k.V)
	copy(k.FIntOld, k.FInt)
	copy(k.FIntOlder, k.FInt)
	copy(k.FExtOld, k.FExt)
	copy(k.FExtOlder, k.FExt)
}

// Shift moves the current forces one level back. Called by schemes before
// the new forces are evaluated.
func (k *Kinematics) Shift() {
	copy(k.FIntOlder, k.FIntOld)
	copy(k.FIntOld, k.FInt)
	copy(k.FExtOlder, k.FExtOld)
	copy(k.FExtOld, k.FExt)
	copy(k.VOld, k.V)
}

// Check verifies that k matches m.
func (k *Kinematics) Check(m Model) error {
	if len(k.U) != m.Dofs() {
		return fmt.Errorf("%w: model has %d dofs, kinematics %d", ErrDimensionMismatch, m.Dofs(), len(k.U))
	}
	if len(m.Mass()) != m.Dofs() {
		return fmt.Errorf("%w: %d masses for %d dofs", ErrDimensionMismatch, len(m.Mass()), m.Dofs())
	}
	if k.Fixed != nil && len(k.Fixed) != len(k.U) {
		return fmt.Errorf("%w: %d fixity flags for %d dofs", ErrDimensionMismatch, len(k.Fixed), len(k.U))
	}
	return nil
}

// ParameterReader is the read side of the process info store.
type ParameterReader interface {
	GetValue(key processinfo.Key) float64
	GetFlag(key processinfo.Key) bool
	Has(key processinfo.Key) bool
}

// Scheme advances a Kinematics by one explicit step.
type Scheme interface {
	Name() string
	// Initialize reads the scheme parameters from p and sets the initial
	// forces, acceleration and history of k.
	Initialize(p ParameterReader, m Model, k *Kinematics) error
	Step(m Model, k *Kinematics, t, dt float64) error
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

type Metric interface {
	Name() string
	Observe(m Model, k *Kinematics, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(k *Kinematics, t float64)
}

type Config struct {
	Dt            float64
	Duration      float64
	ValidateState bool
	// Record every n-th step; 0 or 1 records all.
	RecordEvery int
	// Dofs to record; empty records all.
	Probes []int
}

func DefaultConfig() Config {
	return Config{
		Dt:            1e-3,
		Duration:      10.0,
		ValidateState: true,
		RecordEvery:   1,
	}
}

// Result is the recorded response of one run.
type Result struct {
	Times         []float64
	Displacements []State
	Velocities    []State
	Probes        []int
	Metrics       map[string]float64
	StepsTaken    int
}

// Series returns the recorded displacement of probe index p.
func (r *Result) Series(p int) []float64 {
	out := make([]float64, len(r.Displacements))
	for i, d := range r.Displacements {
		if p < len(d) {
			out[i] = d[p]
		}
	}
	return out
}
