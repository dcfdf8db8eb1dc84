// Package metrics implements dynamo.Metric observers for explicit runs.
package metrics

import "github.com/san-kum/dampcal/internal/dynamo"

// Standard returns the metrics recorded for every stored run.
func Standard(threshold float64) []dynamo.Metric {
	return []dynamo.Metric{
		NewEnergy(),
		NewEnergyDecay(),
		NewPeakDisplacement(),
		NewStability(threshold),
	}
}
