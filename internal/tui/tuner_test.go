package tui

import (
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/dampcal/internal/config"
)

func testConfig() *config.Config {
	cfg := config.GetPreset("oscillator", "free_decay")
	cfg.Duration = 0.2
	return cfg
}

// settle runs cmd and feeds the run result back into t.
func settle(t *testing.T, tu *Tuner, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	cmds := []tea.Cmd{cmd}
	if batch, ok := cmd().(tea.BatchMsg); ok {
		cmds = batch
	} else {
		t.Fatal("expected a batched run and tick")
	}
	for _, c := range cmds {
		if c == nil {
			continue
		}
		if msg, ok := c().(resultMsg); ok {
			tu.Update(msg)
			return
		}
	}
	t.Fatal("no run result")
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTuner_InitRuns(t *testing.T) {
	tu := NewTuner(testConfig())
	if got := tu.schemes[tu.schemeIdx]; got != "Velocity_Verlet" {
		t.Errorf("expected Velocity_Verlet selected, got %s", got)
	}

	settle(t, tu, tu.Init())
	if tu.calErr != nil {
		t.Fatalf("calibration failed: %v", tu.calErr)
	}
	if tu.running {
		t.Error("run should have finished")
	}
	if tu.runErr != nil || tu.result == nil {
		t.Fatalf("expected a result, got err %v", tu.runErr)
	}

	view := tu.View()
	for _, want := range []string{"xi_1", "time_step", "rayleigh_alpha", "energy_decay"} {
		if !strings.Contains(view, want) {
			t.Errorf("view misses %q", want)
		}
	}
}

func TestTuner_Navigation(t *testing.T) {
	tu := NewTuner(testConfig())

	tu.Update(key("up"))
	if tu.cursor != 0 {
		t.Errorf("cursor should stay at 0, got %d", tu.cursor)
	}
	for i := 0; i < len(knobs)+3; i++ {
		tu.Update(key("down"))
	}
	if tu.cursor != len(knobs)-1 {
		t.Errorf("cursor should stop at %d, got %d", len(knobs)-1, tu.cursor)
	}
}

func TestTuner_Adjust(t *testing.T) {
	cfg := testConfig()
	tu := NewTuner(cfg)
	settle(t, tu, tu.Init())
	alpha := tu.coeffs.Alpha

	_, cmd := tu.Update(key("right"))
	settle(t, tu, cmd)
	if got, want := tu.Config().Damping.Xi1, cfg.Damping.Xi1+0.005; math.Abs(got-want) > 1e-12 {
		t.Errorf("expected xi_1 %g, got %g", want, got)
	}
	if tu.coeffs.Alpha <= alpha {
		t.Errorf("alpha should grow with xi_1: %g -> %g", alpha, tu.coeffs.Alpha)
	}
	if cfg.Damping.Xi1 != testConfig().Damping.Xi1 {
		t.Error("tuner must not modify the caller's config")
	}

	for i := 0; i < 4; i++ {
		tu.Update(key("down"))
	}
	_, cmd = tu.Update(key("left"))
	settle(t, tu, cmd)
	if got, want := tu.Config().Dt, cfg.Dt/1.25; math.Abs(got-want) > 1e-15 {
		t.Errorf("expected time_step %g, got %g", want, got)
	}
}

func TestTuner_StaleResultDropped(t *testing.T) {
	tu := NewTuner(testConfig())
	first := tu.Init()
	tu.Update(key("right"))

	settle(t, tu, first)
	if tu.result != nil {
		t.Error("result of a superseded run should be dropped")
	}
}

func TestTuner_CycleScheme(t *testing.T) {
	tu := NewTuner(testConfig())
	_, cmd := tu.Update(key("tab"))
	settle(t, tu, cmd)

	if got := tu.Config().Damping.SchemeType; got != "CDF" {
		t.Errorf("expected CDF, got %s", got)
	}
	if tu.coeffs.CDF == nil {
		t.Error("expected CDF coefficients")
	}
}

func TestTuner_CalibrationError(t *testing.T) {
	cfg := testConfig()
	cfg.Dt = -1
	tu := NewTuner(cfg)

	if cmd := tu.Init(); cmd != nil {
		t.Error("no run should start after a failed calibration")
	}
	if tu.calErr == nil {
		t.Fatal("expected a calibration error")
	}
	if !strings.Contains(tu.View(), "calibration failed") {
		t.Error("view should report the failure")
	}
}

func TestTuner_Quit(t *testing.T) {
	tu := NewTuner(testConfig())
	_, cmd := tu.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected quit")
	}
}

func TestKnob_Adjust(t *testing.T) {
	tests := []struct {
		name string
		k    knob
		v    float64
		dir  int
		want float64
	}{
		{"additive up", knob{step: 0.5, min: 0, max: 10}, 1, 1, 1.5},
		{"additive clamped", knob{step: 0.5, min: 0, max: 10}, 0.2, -1, 0},
		{"scaled down", knob{factor: 2, min: 0, max: 10}, 1, -1, 0.5},
		{"scaled clamped", knob{factor: 2, min: 0, max: 10}, 8, 1, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.k.adjust(tt.v, tt.dir); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("expected %g, got %g", tt.want, got)
			}
		})
	}
}
