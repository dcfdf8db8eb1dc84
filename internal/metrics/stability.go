package metrics

import (
	"math"

	"github.com/san-kum/dampcal/internal/dynamo"
)

// Stability is the fraction of samples whose displacements all stay within
// the threshold.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(m dynamo.Model, k *dynamo.Kinematics, t float64) {
	s.samples++
	if k.U.MaxAbs() > s.threshold || !k.U.IsValid() {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// PeakDisplacement is the largest absolute displacement seen.
type PeakDisplacement struct {
	peak float64
}

func NewPeakDisplacement() *PeakDisplacement {
	return &PeakDisplacement{}
}

func (p *PeakDisplacement) Name() string { return "peak_displacement" }

func (p *PeakDisplacement) Observe(m dynamo.Model, k *dynamo.Kinematics, t float64) {
	p.peak = math.Max(p.peak, k.U.MaxAbs())
}

func (p *PeakDisplacement) Value() float64 { return p.peak }
func (p *PeakDisplacement) Reset()         { p.peak = 0 }
