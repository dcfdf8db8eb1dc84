package config

// Presets holds named overrides per model. Damping fields left zero in a
// preset keep the defaults.
var Presets = map[string]map[string]*Config{
	"oscillator": {
		"free_decay": {
			Model: "oscillator", Dt: 1e-3, Duration: 5.0,
			Damping:     DampingConfig{SchemeType: "Velocity_Verlet", Omega1: 5, OmegaN: 20, Xi1: 0.05, XiN: 0.05},
			ModelParams: ModelConfig{Mass: 1.0, Stiffness: 100.0},
			InitState:   InitStateConfig{Displacement: 1.0},
		},
		"resonance": {
			Model: "oscillator", Dt: 1e-3, Duration: 10.0,
			Damping:     DampingConfig{SchemeType: "Explicit_Central_Differences", Omega1: 5, OmegaN: 20, Xi1: 0.02, XiN: 0.02},
			ModelParams: ModelConfig{Mass: 1.0, Stiffness: 100.0, Force: 1.0, LoadFreq: 10.0},
		},
	},
	"spring_chain": {
		"first_mode": {
			Model: "spring_chain", Dt: 1e-4, Duration: 2.0,
			Damping:     DampingConfig{SchemeType: "Explicit_Central_Differences", AutoFrequencies: true, Xi1: 0.02, XiN: 0.02},
			ModelParams: ModelConfig{Nodes: 10, Mass: 1.0, Stiffness: 1e4},
			InitState:   InitStateConfig{Displacement: 0.01, Mode: 1},
		},
		"stabilized": {
			Model: "spring_chain", Dt: 2e-4, Duration: 2.0,
			Damping:     DampingConfig{SchemeType: "Explicit_Central_Differences", AutoFrequencies: true, CalculateXi: true, Xi1Factor: 1.0, GFactor: 1.0},
			ModelParams: ModelConfig{Nodes: 10, Mass: 1.0, Stiffness: 1e4},
			InitState:   InitStateConfig{Displacement: 0.01, Mode: 1},
		},
		// CDF is meant to run close to the critical step 2/w_n.
		"cdf": {
			Model: "spring_chain", Dt: 8e-3, Duration: 2.0,
			Damping:     DampingConfig{SchemeType: "Explicit_CDF", AutoFrequencies: true},
			ModelParams: ModelConfig{Nodes: 10, Mass: 1.0, Stiffness: 1e4},
			InitState:   InitStateConfig{Displacement: 0.01, Mode: 1},
		},
		"pulled": {
			Model: "spring_chain", Dt: 1e-4, Duration: 3.0,
			Damping:     DampingConfig{SchemeType: "Velocity_Verlet", AutoFrequencies: true, Xi1: 0.05, XiN: 0.05},
			ModelParams: ModelConfig{Nodes: 10, Mass: 1.0, Stiffness: 1e4, Force: 10.0},
		},
	},
	"rotor": {
		"spin": {
			Model: "rotor", Dt: 1e-4, Duration: 1.0,
			Damping:     DampingConfig{SchemeType: "Symplectic_Euler", RotationalSchemeType: "Quaternion_Integration"},
			ModelParams: ModelConfig{Nodes: 4, Mass: 1.0, Stiffness: 1e4, Inertia: 0.1, Torsional: 0.0},
			InitState:   InitStateConfig{Spin: 5.0},
		},
		"direct": {
			Model: "rotor", Dt: 1e-4, Duration: 1.0,
			Damping:     DampingConfig{SchemeType: "Explicit_Central_Differences", RotationalSchemeType: "Direct_Integration", AutoFrequencies: true, Xi1: 0.02, XiN: 0.02},
			ModelParams: ModelConfig{Nodes: 4, Mass: 1.0, Stiffness: 1e4, Inertia: 0.1, Torsional: 50.0},
			InitState:   InitStateConfig{Displacement: 0.01, Mode: 1, Spin: 1.0},
		},
	},
}

// GetPreset returns a copy of the preset merged over the defaults.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	p, ok := modelPresets[preset]
	if !ok {
		return nil
	}

	cfg := DefaultConfig()
	cfg.Model = p.Model
	cfg.Dt = p.Dt
	cfg.Duration = p.Duration
	cfg.ModelParams = p.ModelParams
	cfg.InitState = p.InitState

	d := &cfg.Damping
	d.SchemeType = p.Damping.SchemeType
	d.RotationalSchemeType = p.Damping.RotationalSchemeType
	d.AutoFrequencies = p.Damping.AutoFrequencies
	d.Omega1, d.OmegaN = p.Damping.Omega1, p.Damping.OmegaN
	if p.Damping.Xi1 != 0 || p.Damping.XiN != 0 {
		d.Xi1, d.XiN = p.Damping.Xi1, p.Damping.XiN
	}
	d.CalculateXi = p.Damping.CalculateXi
	if p.Damping.Xi1Factor != 0 {
		d.Xi1Factor = p.Damping.Xi1Factor
	}
	d.GFactor = p.Damping.GFactor
	return cfg
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	return names
}
