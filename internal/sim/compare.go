package sim

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/dampcal/internal/damping"
	"github.com/san-kum/dampcal/internal/dynamo"
	"github.com/san-kum/dampcal/internal/solver"
)

// Case is one calibration to compare.
type Case struct {
	Name     string
	Settings damping.Settings
}

type Comparison struct {
	Name         string
	Coefficients damping.Coefficients
	Result       *dynamo.Result
}

// Setup builds a fresh model with its initial kinematics and metrics, once
// per case.
type Setup func() (dynamo.Model, *dynamo.Kinematics, []dynamo.Metric, error)

// Compare runs every case concurrently on its own model. The first failure
// cancels the remaining runs.
func Compare(ctx context.Context, setup Setup, cases []Case, cfg dynamo.Config, logger log.FieldLogger) ([]Comparison, error) {
	if logger == nil {
		logger = log.StandardLogger()
	}
	out := make([]Comparison, len(cases))

	g, ctx := errgroup.WithContext(ctx)
	for i, c := range cases {
		g.Go(func() error {
			m, k, metrics, err := setup()
			if err != nil {
				return fmt.Errorf("case %s: %w", c.Name, err)
			}
			slv := solver.New(c.Settings, solver.WithLogger(logger.WithField("case", c.Name)))
			s := New(slv, m)
			s.SetLogger(logger)
			for _, mt := range metrics {
				s.AddMetric(mt)
			}

			runCfg := cfg
			runCfg.Dt = 0
			res, err := s.Run(ctx, k, runCfg)
			if err != nil {
				return fmt.Errorf("case %s: %w", c.Name, err)
			}
			out[i] = Comparison{Name: c.Name, Coefficients: slv.Coefficients(), Result: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
