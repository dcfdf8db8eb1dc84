package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/san-kum/dampcal/internal/dynamo"
)

func decay(xi, omega, dt float64, n int) []float64 {
	wd := omega * math.Sqrt(1-xi*xi)
	s := make([]float64, n)
	for i := range s {
		t := float64(i) * dt
		s[i] = math.Exp(-xi*omega*t) * math.Cos(wd*t)
	}
	return s
}

func TestDominantFrequency(t *testing.T) {
	dt := 1e-3
	s := make([]float64, 4000)
	for i := range s {
		s[i] = 0.3 + math.Sin(25*float64(i)*dt)
	}

	w, err := DominantFrequency(s, dt)
	if err != nil {
		t.Fatal(err)
	}
	// Bin width is 2 pi / 4 = 1.57 rad/s.
	if math.Abs(w-25) > 0.5 {
		t.Errorf("expected about 25 rad/s, got %.3f", w)
	}
}

func TestSpectrum_ShortSeries(t *testing.T) {
	if _, _, err := Spectrum([]float64{1, 2}, 1e-3); err != ErrShortSeries {
		t.Errorf("expected ErrShortSeries, got %v", err)
	}
}

func TestLogDecrement(t *testing.T) {
	tests := []struct {
		name  string
		xi    float64
		omega float64
	}{
		{"light", 0.01, 10},
		{"moderate", 0.05, 10},
		{"fast", 0.02, 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dt := 1e-4
			got, err := LogDecrement(decay(tt.xi, tt.omega, dt, 40000))
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(got-tt.xi) > 0.05*tt.xi {
				t.Errorf("expected xi %.4f, got %.4f", tt.xi, got)
			}
		})
	}

	if _, err := LogDecrement([]float64{0, 1, 0}); err == nil {
		t.Error("expected error for a single peak")
	}
}

func TestRayleighRatio(t *testing.T) {
	// alpha and beta matching xi = 0.05 at 1 and 10 rad/s.
	beta := 2 * (0.05*10 - 0.05*1) / (100 - 1)
	alpha := 2*0.05*1 - beta
	for _, w := range []float64{1, 10} {
		if got := RayleighRatio(alpha, beta, w); math.Abs(got-0.05) > 1e-12 {
			t.Errorf("w=%g: expected 0.05, got %.15f", w, got)
		}
	}
}

func TestPhasePortrait(t *testing.T) {
	r := &dynamo.Result{
		Probes:        []int{4},
		Displacements: []dynamo.State{{1}, {0}, {-1}, {0}},
		Velocities:    []dynamo.State{{0}, {-1}, {0}, {1}},
	}
	p := PhasePortrait(r, 0)
	if p == nil || p.Probe != 4 || len(p.Points) != 4 {
		t.Fatalf("unexpected portrait %+v", p)
	}
	if PhasePortrait(r, 1) != nil {
		t.Error("expected nil for an unknown probe")
	}

	art := PhasePortraitToASCII(p, 20, 10)
	if strings.Count(art, "\n") != 10 || !strings.Contains(art, "•") {
		t.Errorf("unexpected drawing:\n%s", art)
	}
}
