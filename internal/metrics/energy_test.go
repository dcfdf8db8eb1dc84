package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/dampcal/internal/dynamo"
	"github.com/san-kum/dampcal/internal/physics"
)

func TestTotalEnergy(t *testing.T) {
	o := physics.NewOscillator()
	k := dynamo.NewKinematics(1)
	k.U[0] = 0.1
	k.V[0] = 2.0

	want := 0.5*1.0*4.0 + 0.5*100.0*0.01
	if got := TotalEnergy(o, k); math.Abs(got-want) > 1e-12 {
		t.Errorf("expected %f, got %f", want, got)
	}
}

func TestTotalEnergy_IncludesRotation(t *testing.T) {
	r := physics.NewRotor(1, 1.0, 10.0, 0.5, 4.0)
	k := dynamo.ForModel(r)
	k.Rot.V[0] = 2.0
	k.Rot.U[1] = 0.5

	want := 0.5*0.5*4.0 + 0.5*4.0*0.25
	if got := TotalEnergy(r, k); math.Abs(got-want) > 1e-12 {
		t.Errorf("expected %f, got %f", want, got)
	}
}

func TestEnergyReset(t *testing.T) {
	o := physics.NewOscillator()
	k := dynamo.NewKinematics(1)
	k.U[0] = 1.0

	m := NewEnergy()
	m.Observe(o, k, 0)
	if m.Value() == 0 {
		t.Error("expected non-zero energy")
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestEnergyDriftAndDecay(t *testing.T) {
	o := physics.NewOscillator()
	k := dynamo.NewKinematics(1)
	drift := NewEnergyDrift()
	decay := NewEnergyDecay()

	for _, u := range []float64{1.0, 0.9, 1.1, 0.5} {
		k.U[0] = u
		drift.Observe(o, k, 0)
		decay.Observe(o, k, 0)
	}

	if math.Abs(drift.Value()-0.75) > 1e-12 {
		t.Errorf("expected drift 0.75, got %f", drift.Value())
	}
	if math.Abs(decay.Value()-0.25) > 1e-12 {
		t.Errorf("expected decay 0.25, got %f", decay.Value())
	}
}

func TestStabilityAndPeak(t *testing.T) {
	o := physics.NewOscillator()
	k := dynamo.NewKinematics(1)
	stab := NewStability(1.0)
	peak := NewPeakDisplacement()

	for _, u := range []float64{0.5, -2.0, 0.3, 0.1} {
		k.U[0] = u
		stab.Observe(o, k, 0)
		peak.Observe(o, k, 0)
	}

	if stab.Value() != 0.75 {
		t.Errorf("expected stability 0.75, got %f", stab.Value())
	}
	if peak.Value() != 2.0 {
		t.Errorf("expected peak 2, got %f", peak.Value())
	}

	if len(Standard(1.0)) != 4 {
		t.Error("expected four standard metrics")
	}
}
