package solver

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/dampcal/internal/damping"
	"github.com/san-kum/dampcal/internal/processinfo"
)

// InitializePartitions runs the calibration independently for n ranks, each
// into its own store, and checks that every rank arrived at the same
// coefficients.
func InitializePartitions(ctx context.Context, settings damping.Settings, n int, logger log.FieldLogger) ([]*processinfo.Store, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: %d partitions", damping.ErrDegenerateInput, n)
	}
	if logger == nil {
		logger = log.StandardLogger()
	}

	stores := make([]*processinfo.Store, n)
	results := make([]damping.Coefficients, n)

	g, ctx := errgroup.WithContext(ctx)
	for rank := 0; rank < n; rank++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c, err := damping.Calibrate(settings)
			if err != nil {
				return fmt.Errorf("rank %d: %w", rank, err)
			}
			st := processinfo.New()
			c.Apply(st)
			stores[rank] = st
			results[rank] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ref := results[0].Values()
	for rank := 1; rank < n; rank++ {
		if !sameValues(ref, results[rank].Values()) {
			return nil, fmt.Errorf("%w: rank %d", ErrPartitionMismatch, rank)
		}
	}

	logger.WithFields(log.Fields{
		"partitions": n,
		"scheme":     settings.Scheme.String(),
	}).Debug("partitions calibrated")
	return stores, nil
}
