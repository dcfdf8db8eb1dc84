// Package experiment turns a configuration into a calibrated, ready to run
// simulation: model, initial kinematics, solver settings and metrics.
package experiment

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/san-kum/dampcal/internal/config"
	"github.com/san-kum/dampcal/internal/damping"
	"github.com/san-kum/dampcal/internal/dynamo"
	"github.com/san-kum/dampcal/internal/sim"
	"github.com/san-kum/dampcal/internal/solver"
)

type Experiment struct {
	cfg       *config.Config
	registry  *Registry
	logger    log.FieldLogger
	model     dynamo.Model
	kin       *dynamo.Kinematics
	settings  damping.Settings
	simulator *sim.Simulator
}

func New(cfg *config.Config, logger log.FieldLogger) *Experiment {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Experiment{
		cfg:      cfg,
		registry: NewRegistry(),
		logger:   logger,
	}
}

// Settings builds the model named by the configuration and derives the
// calibration settings from it.
func (e *Experiment) Settings() (dynamo.Model, damping.Settings, error) {
	m, err := e.registry.GetModel(e.cfg.Model, e.cfg.ModelParams)
	if err != nil {
		return nil, damping.Settings{}, err
	}
	var freqs []float64
	if modal, ok := m.(dynamo.Modal); ok {
		freqs = modal.NaturalFrequencies()
	}
	s, err := e.cfg.DampingSettings(freqs)
	if err != nil {
		return nil, damping.Settings{}, err
	}
	return m, s, nil
}

// Calibrate computes the coefficients without running anything.
func (e *Experiment) Calibrate() (damping.Coefficients, error) {
	_, s, err := e.Settings()
	if err != nil {
		return damping.Coefficients{}, err
	}
	return damping.Calibrate(s)
}

func (e *Experiment) Setup(metrics []dynamo.Metric) error {
	m, s, err := e.Settings()
	if err != nil {
		return err
	}
	e.model = m
	e.settings = s
	e.kin = InitialKinematics(m, e.cfg.InitState)

	slv := solver.New(s, solver.WithLogger(e.logger))
	e.simulator = sim.New(slv, m)
	e.simulator.SetLogger(e.logger)
	for _, mt := range metrics {
		e.simulator.AddMetric(mt)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.kin, e.RunConfig())
}

// RunConfig is the run part of the configuration.
func (e *Experiment) RunConfig() dynamo.Config {
	cfg := dynamo.DefaultConfig()
	cfg.Dt = e.cfg.Dt
	cfg.Duration = e.cfg.Duration
	if e.cfg.RecordEvery > 0 {
		cfg.RecordEvery = e.cfg.RecordEvery
	}
	return cfg
}

// SetupFunc builds a fresh model, kinematics and metric set on every call,
// for sim.Compare.
func (e *Experiment) SetupFunc() sim.Setup {
	return func() (dynamo.Model, *dynamo.Kinematics, []dynamo.Metric, error) {
		m, err := e.registry.GetModel(e.cfg.Model, e.cfg.ModelParams)
		if err != nil {
			return nil, nil, nil, err
		}
		return m, InitialKinematics(m, e.cfg.InitState), e.registry.DefaultMetrics(), nil
	}
}

func (e *Experiment) Config() *config.Config         { return e.cfg }
func (e *Experiment) Registry() *Registry            { return e.registry }
func (e *Experiment) Model() dynamo.Model            { return e.model }
func (e *Experiment) Kinematics() *dynamo.Kinematics { return e.kin }

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}
