// Package solver wires the damping calibration into an explicit solution
// stage: calibrate, publish the coefficients to the process info store,
// then build and initialize the schemes that read them.
package solver

import (
	"errors"
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/san-kum/dampcal/internal/damping"
	"github.com/san-kum/dampcal/internal/dynamo"
	"github.com/san-kum/dampcal/internal/integrators"
	"github.com/san-kum/dampcal/internal/processinfo"
	"github.com/san-kum/dampcal/internal/scheme"
)

var (
	// ErrPartitionMismatch indicates ranks that calibrated differently.
	ErrPartitionMismatch = errors.New("solver: partitions disagree on calibrated coefficients")

	// ErrNotInitialized indicates a solution step before Initialize.
	ErrNotInitialized = errors.New("solver: not initialized")
)

type Option func(*Solver)

// WithStore makes the solver publish into st instead of a private store.
func WithStore(st *processinfo.Store) Option {
	return func(s *Solver) { s.store = st }
}

func WithLogger(l log.FieldLogger) Option {
	return func(s *Solver) { s.logger = l }
}

type Solver struct {
	settings damping.Settings
	store    *processinfo.Store
	logger   log.FieldLogger

	coeffs        damping.Coefficients
	translational dynamo.Scheme
	rotational    dynamo.Scheme

	model dynamo.Model
	kin   *dynamo.Kinematics
	time  float64
	steps int
}

func New(settings damping.Settings, opts ...Option) *Solver {
	s := &Solver{settings: settings}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = processinfo.New()
	}
	if s.logger == nil {
		s.logger = log.StandardLogger()
	}
	return s
}

// Initialize calibrates the damping, writes it to the store and sets up the
// schemes for m. Nothing is written when calibration or scheme setup fails.
// Calling it again recomputes everything from the settings.
func (s *Solver) Initialize(m dynamo.Model, k *dynamo.Kinematics) error {
	c, err := damping.Calibrate(s.settings)
	if err != nil {
		return err
	}

	translational, err := integrators.New(s.settings.Scheme)
	if err != nil {
		return &damping.InputError{Field: "scheme_type", Value: s.settings.Scheme, Err: fmt.Errorf("%w: %w", damping.ErrConfiguration, err)}
	}

	var rotational dynamo.Scheme
	var rotor dynamo.Rotor
	if s.settings.Rotational != scheme.Unset {
		var ok bool
		if rotor, ok = m.(dynamo.Rotor); !ok || k.Rot == nil {
			return &damping.InputError{Field: "rotational_scheme_type", Value: s.settings.Rotational,
				Err: fmt.Errorf("%w: model has no rotational dofs", damping.ErrConfiguration)}
		}
		rotational, err = integrators.NewRotational(s.settings.Rotational, translational)
		if err != nil {
			return &damping.InputError{Field: "rotational_scheme_type", Value: s.settings.Rotational, Err: fmt.Errorf("%w: %w", damping.ErrConfiguration, err)}
		}
	}

	// The schemes read a staged copy so that a failed scheme setup leaves
	// the shared store as it was.
	staged := processinfo.New()
	c.Apply(staged)
	if err := translational.Initialize(staged, m, k); err != nil {
		return fmt.Errorf("initialize %s: %w", translational.Name(), err)
	}
	if rotational != nil {
		if err := rotational.Initialize(staged, rotor.Rotation(), k.Rot); err != nil {
			return fmt.Errorf("initialize %s: %w", rotational.Name(), err)
		}
	} else if _, ok := m.(dynamo.Rotor); ok {
		s.logger.WithField("model_dofs", m.Dofs()).Warn("rotational dofs present but no rotational scheme selected")
	}

	c.Apply(s.store)
	s.store.SetFlag(processinfo.IsConverged, false)

	s.coeffs = c
	s.translational = translational
	s.rotational = rotational
	s.model = m
	s.kin = k
	s.time = 0
	s.steps = 0

	damping.LogCoefficients(s.logger, c)
	fields := log.Fields{"translational": translational.Name(), "dofs": m.Dofs()}
	if rotational != nil {
		fields["rotational"] = rotational.Name()
	}
	s.logger.WithFields(fields).Debug("explicit solver initialized")
	return nil
}

// SolveSolutionStep advances by one time step. Explicit steps always
// converge; an invalid state is reported as an error instead.
func (s *Solver) SolveSolutionStep() (bool, error) {
	if s.translational == nil {
		return false, ErrNotInitialized
	}
	dt := s.settings.Dt

	if err := s.translational.Step(s.model, s.kin, s.time, dt); err != nil {
		return false, s.stepError(s.translational, err)
	}
	if s.rotational != nil {
		rotor := s.model.(dynamo.Rotor)
		if err := s.rotational.Step(rotor.Rotation(), s.kin.Rot, s.time, dt); err != nil {
			return false, s.stepError(s.rotational, err)
		}
	}

	s.steps++
	s.time = float64(s.steps) * dt
	if !s.kin.IsValid() {
		return false, s.stepError(s.translational, dynamo.ErrInvalidState)
	}
	s.store.SetFlag(processinfo.IsConverged, true)
	return true, nil
}

func (s *Solver) stepError(sc dynamo.Scheme, err error) error {
	s.store.SetFlag(processinfo.IsConverged, false)
	return &dynamo.SimulationError{Step: s.steps, Time: s.time, Scheme: sc.Name(), Wrapped: err}
}

func (s *Solver) Store() *processinfo.Store          { return s.store }
func (s *Solver) Settings() damping.Settings         { return s.settings }
func (s *Solver) Coefficients() damping.Coefficients { return s.coeffs }
func (s *Solver) Translational() dynamo.Scheme       { return s.translational }
func (s *Solver) Rotational() dynamo.Scheme          { return s.rotational }
func (s *Solver) Time() float64                      { return s.time }
func (s *Solver) Steps() int                         { return s.steps }
func (s *Solver) Kinematics() *dynamo.Kinematics     { return s.kin }

// sameValues compares two calibrations bit for bit.
func sameValues(a, b map[processinfo.Key]float64) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		w, ok := b[k]
		if !ok || math.Float64bits(v) != math.Float64bits(w) {
			return false
		}
	}
	return true
}
