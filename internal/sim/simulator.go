// Package sim drives an explicit solver through time: it records the
// response, feeds metrics and observers, and honours context cancellation.
package sim

import (
	"context"
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/san-kum/dampcal/internal/dynamo"
	"github.com/san-kum/dampcal/internal/solver"
)

type Simulator struct {
	solver    *solver.Solver
	model     dynamo.Model
	metrics   []dynamo.Metric
	observers []dynamo.Observer
	logger    log.FieldLogger
}

func New(s *solver.Solver, m dynamo.Model) *Simulator {
	return &Simulator{
		solver:    s,
		model:     m,
		metrics:   make([]dynamo.Metric, 0),
		observers: make([]dynamo.Observer, 0),
		logger:    log.StandardLogger(),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }
func (s *Simulator) SetLogger(l log.FieldLogger)   { s.logger = l }
func (s *Simulator) Solver() *solver.Solver        { return s.solver }

// Run initializes the solver on k and steps it for cfg.Duration. On error
// the partial result is returned along with it.
func (s *Simulator) Run(ctx context.Context, k *dynamo.Kinematics, cfg dynamo.Config) (*dynamo.Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	if err := s.solver.Initialize(s.model, k); err != nil {
		return nil, err
	}

	dt := s.solver.Settings().Dt
	steps := int(math.Round(cfg.Duration / dt))
	every := cfg.RecordEvery
	if every < 1 {
		every = 1
	}
	probes := s.probes(cfg)

	result := &dynamo.Result{
		Times:         make([]float64, 0, steps/every+1),
		Displacements: make([]dynamo.State, 0, steps/every+1),
		Velocities:    make([]dynamo.State, 0, steps/every+1),
		Probes:        probes,
		Metrics:       make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}
	s.record(result, k, 0, probes)
	s.observe(k, 0)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			s.finish(result)
			return result, fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err())
		default:
		}

		if _, err := s.solver.SolveSolutionStep(); err != nil {
			s.finish(result)
			return result, err
		}
		result.StepsTaken++
		t := s.solver.Time()

		if cfg.ValidateState && k.U.MaxAbs() > divergenceLimit {
			s.finish(result)
			return result, &dynamo.SimulationError{Step: i, Time: t, Scheme: s.solver.Translational().Name(), Wrapped: dynamo.ErrUnstable}
		}

		s.observe(k, t)
		if (i+1)%every == 0 || i == steps-1 {
			s.record(result, k, t, probes)
		}
	}

	s.finish(result)
	s.logger.WithFields(log.Fields{
		"steps":    result.StepsTaken,
		"duration": cfg.Duration,
		"scheme":   s.solver.Translational().Name(),
	}).Debug("run finished")
	return result, nil
}

// divergenceLimit flags a response that has clearly blown up before it
// reaches Inf.
const divergenceLimit = 1e12

func (s *Simulator) validateConfig(cfg dynamo.Config) error {
	if cfg.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %f", dynamo.ErrParameterBounds, cfg.Duration)
	}
	dt := s.solver.Settings().Dt
	if cfg.Dt != 0 && cfg.Dt != dt {
		return fmt.Errorf("%w: run dt %g differs from calibrated dt %g", dynamo.ErrParameterBounds, cfg.Dt, dt)
	}
	for _, p := range cfg.Probes {
		if p < 0 || p >= s.model.Dofs() {
			return fmt.Errorf("%w: probe %d outside [0, %d)", dynamo.ErrDimensionMismatch, p, s.model.Dofs())
		}
	}
	return nil
}

func (s *Simulator) probes(cfg dynamo.Config) []int {
	if len(cfg.Probes) > 0 {
		return append([]int(nil), cfg.Probes...)
	}
	all := make([]int, s.model.Dofs())
	for i := range all {
		all[i] = i
	}
	return all
}

func (s *Simulator) observe(k *dynamo.Kinematics, t float64) {
	for _, m := range s.metrics {
		m.Observe(s.model, k, t)
	}
	for _, obs := range s.observers {
		obs.OnStep(k, t)
	}
}

func (s *Simulator) record(r *dynamo.Result, k *dynamo.Kinematics, t float64, probes []int) {
	u := make(dynamo.State, len(probes))
	v := make(dynamo.State, len(probes))
	for i, p := range probes {
		u[i] = k.U[p]
		v[i] = k.V[p]
	}
	r.Times = append(r.Times, t)
	r.Displacements = append(r.Displacements, u)
	r.Velocities = append(r.Velocities, v)
}

func (s *Simulator) finish(r *dynamo.Result) {
	for _, m := range s.metrics {
		r.Metrics[m.Name()] = m.Value()
	}
}

// RunWithCallback steps until cfg.Duration or until callback returns false.
// Nothing is recorded.
func (s *Simulator) RunWithCallback(ctx context.Context, k *dynamo.Kinematics, cfg dynamo.Config, callback func(*dynamo.Kinematics, float64) bool) error {
	if err := s.validateConfig(cfg); err != nil {
		return err
	}
	if err := s.solver.Initialize(s.model, k); err != nil {
		return err
	}

	for s.solver.Time() < cfg.Duration {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !callback(k, s.solver.Time()) {
			return nil
		}
		if _, err := s.solver.SolveSolutionStep(); err != nil {
			return err
		}
	}

	return nil
}
