package experiment

import (
	"context"
	"io"
	"math"
	"testing"

	log "github.com/sirupsen/logrus"

	"github.com/san-kum/dampcal/internal/config"
	"github.com/san-kum/dampcal/internal/dynamo"
	"github.com/san-kum/dampcal/internal/sim"
)

func quiet() log.FieldLogger {
	l := log.New()
	l.SetOutput(io.Discard)
	return l
}

func TestRegistry_ListModels(t *testing.T) {
	got := NewRegistry().ListModels()
	want := []string{"oscillator", "rotor", "spring_chain"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
		}
	}
}

func TestRegistry_GetModel(t *testing.T) {
	r := NewRegistry()
	params := config.DefaultConfig().ModelParams

	tests := []struct {
		name string
		dofs int
		rot  bool
	}{
		{"oscillator", 1, false},
		{"spring_chain", params.Nodes, false},
		{"rotor", 3 * params.Nodes, true},
	}
	for _, tt := range tests {
		m, err := r.GetModel(tt.name, params)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if m.Dofs() != tt.dofs {
			t.Errorf("%s: expected %d dofs, got %d", tt.name, tt.dofs, m.Dofs())
		}
		if _, ok := m.(dynamo.Rotor); ok != tt.rot {
			t.Errorf("%s: rotor = %v", tt.name, ok)
		}
	}

	if _, err := r.GetModel("pendulum", params); err == nil {
		t.Error("expected error for unknown model")
	}
	bad := params
	bad.Mass = 0
	if _, err := r.GetModel("spring_chain", bad); err == nil {
		t.Error("expected error for zero mass")
	}
}

func TestInitialKinematics(t *testing.T) {
	r := NewRegistry()
	params := config.DefaultConfig().ModelParams

	chain, _ := r.GetModel("spring_chain", params)
	k := InitialKinematics(chain, config.InitStateConfig{Displacement: 0.5, Mode: 1})
	mid := params.Nodes / 2
	if k.U[mid] <= 0 || k.U[mid] > 0.5 {
		t.Errorf("expected first mode shape, got %v", k.U)
	}

	rotor, _ := r.GetModel("rotor", params)
	k = InitialKinematics(rotor, config.InitStateConfig{Displacement: 0.1, Spin: 2})
	if k.Rot == nil {
		t.Fatal("expected rotational kinematics")
	}
	if k.Rot.V[2] != 2 || k.Rot.V[0] != 0 {
		t.Errorf("spin not about z: %v", k.Rot.V[:3])
	}
	if k.U[0] != 0.1 || k.U[1] != 0 {
		t.Errorf("displacement should act along the first axis: %v", k.U[:3])
	}
}

func TestExperiment_Calibrate(t *testing.T) {
	cfg := config.DefaultConfig()
	e := New(cfg, quiet())

	c, err := e.Calibrate()
	if err != nil {
		t.Fatal(err)
	}
	m, _ := e.registry.GetModel(cfg.Model, cfg.ModelParams)
	w := m.(dynamo.Modal).NaturalFrequencies()
	if c.Omega1 != w[0] || c.OmegaN != w[len(w)-1] {
		t.Errorf("expected model frequencies, got %g/%g", c.Omega1, c.OmegaN)
	}
	if c.Alpha <= 0 || c.Beta <= 0 {
		t.Errorf("expected positive coefficients, got %g/%g", c.Alpha, c.Beta)
	}
}

func TestExperiment_RunPresets(t *testing.T) {
	for model := range config.Presets {
		for _, name := range config.ListPresets(model) {
			cfg := config.GetPreset(model, name)
			cfg.Duration = 0.05
			e := New(cfg, quiet())
			if err := e.Setup(e.Registry().DefaultMetrics()); err != nil {
				t.Fatalf("%s/%s setup: %v", model, name, err)
			}
			res, err := e.Run(context.Background())
			if err != nil {
				t.Fatalf("%s/%s run: %v", model, name, err)
			}
			want := int(math.Round(cfg.Duration / cfg.Dt))
			if res.StepsTaken != want {
				t.Errorf("%s/%s: expected %d steps, got %d", model, name, want, res.StepsTaken)
			}
			if _, ok := res.Metrics["energy"]; !ok {
				t.Errorf("%s/%s: missing energy metric", model, name)
			}
		}
	}
}

func TestExperiment_RunWithoutSetup(t *testing.T) {
	e := New(config.DefaultConfig(), quiet())
	if _, err := e.Run(context.Background()); err == nil {
		t.Error("expected error before Setup")
	}
}

func TestExperiment_Compare(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Duration = 0.05
	e := New(cfg, quiet())

	_, light, err := e.Settings()
	if err != nil {
		t.Fatal(err)
	}
	heavy := light
	heavy.Targets.Xi1, heavy.Targets.XiN = 0.1, 0.1

	out, err := sim.Compare(context.Background(), e.SetupFunc(), []sim.Case{
		{Name: "light", Settings: light},
		{Name: "heavy", Settings: heavy},
	}, e.RunConfig(), quiet())
	if err != nil {
		t.Fatal(err)
	}
	if out[1].Coefficients.Alpha <= out[0].Coefficients.Alpha {
		t.Errorf("expected larger alpha for heavier damping")
	}
}
