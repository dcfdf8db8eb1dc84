package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/dampcal/internal/damping"
)

const (
	DefaultDt          = 1e-4
	DefaultDuration    = 2.0
	DefaultRecordEvery = 10
	DefaultNodes       = 10
	DefaultMass        = 1.0
	DefaultStiffness   = 1e4
	DefaultXi          = 0.02
	DefaultInertia     = 0.1
	DefaultTorsional   = 50.0
)

type Config struct {
	Model       string          `yaml:"model"`
	Dt          float64         `yaml:"time_step"`
	Duration    float64         `yaml:"duration"`
	RecordEvery int             `yaml:"record_every"`
	Damping     DampingConfig   `yaml:"damping"`
	ModelParams ModelConfig     `yaml:"model_params"`
	InitState   InitStateConfig `yaml:"init_state"`
}

// DampingConfig carries the solver options with their file names.
type DampingConfig struct {
	SchemeType           string  `yaml:"scheme_type"`
	RotationalSchemeType string  `yaml:"rotational_scheme_type"`
	AutoFrequencies      bool    `yaml:"auto_frequencies"`
	Omega1               float64 `yaml:"omega_1"`
	OmegaN               float64 `yaml:"omega_n"`
	Xi1                  float64 `yaml:"xi_1"`
	XiN                  float64 `yaml:"xi_n"`
	CalculateXi          bool    `yaml:"calculate_xi"`
	Xi1Factor            float64 `yaml:"xi_1_factor"`
	GFactor              float64 `yaml:"g_factor"`
	ThetaFactor          float64 `yaml:"theta_factor"`
	CalculateAlphaBeta   bool    `yaml:"calculate_alpha_beta"`
	RayleighAlpha        float64 `yaml:"rayleigh_alpha"`
	RayleighBeta         float64 `yaml:"rayleigh_beta"`
	UseNodalMassArray    bool    `yaml:"use_nodal_mass_array"`
	RangePolicy          string  `yaml:"range_policy"`

	Delta  float64 `yaml:"delta"`
	Alpha0 float64 `yaml:"alpha_0"`
	Alpha1 float64 `yaml:"alpha_1"`
	Alpha2 float64 `yaml:"alpha_2"`
	Xi1F   float64 `yaml:"xi_1_f"`
	XiNF   float64 `yaml:"xi_n_f"`
	Xib1F  float64 `yaml:"xib_1_f"`
	XibNF  float64 `yaml:"xib_n_f"`
}

type ModelConfig struct {
	Nodes     int     `yaml:"nodes"`
	Mass      float64 `yaml:"mass"`
	Stiffness float64 `yaml:"stiffness"`
	Inertia   float64 `yaml:"inertia"`
	Torsional float64 `yaml:"torsional"`
	Force     float64 `yaml:"force"`
	LoadFreq  float64 `yaml:"load_freq"`
}

// InitStateConfig sets the initial displacement. With Mode > 0 a spring
// chain starts in that mode shape scaled by Displacement.
type InitStateConfig struct {
	Displacement float64 `yaml:"displacement"`
	Velocity     float64 `yaml:"velocity"`
	Mode         int     `yaml:"mode"`
	Spin         float64 `yaml:"spin"`
}

func DefaultDamping() DampingConfig {
	cdf := damping.DefaultCDFParams()
	return DampingConfig{
		SchemeType:         "Explicit_Central_Differences",
		AutoFrequencies:    true,
		Xi1:                DefaultXi,
		XiN:                DefaultXi,
		Xi1Factor:          damping.DefaultXi1Factor,
		GFactor:            damping.DefaultGFactor,
		ThetaFactor:        damping.DefaultThetaFactor,
		CalculateAlphaBeta: true,
		RangePolicy:        damping.RangeWarn.String(),
		Delta:              cdf.Delta,
		Alpha0:             cdf.Alpha0,
		Alpha1:             cdf.Alpha1,
		Alpha2:             cdf.Alpha2,
		Xi1F:               cdf.Xi1F,
		XiNF:               cdf.XiNF,
		Xib1F:              cdf.Xib1F,
		XibNF:              cdf.XibNF,
	}
}

func DefaultConfig() *Config {
	return &Config{
		Model:       "spring_chain",
		Dt:          DefaultDt,
		Duration:    DefaultDuration,
		RecordEvery: DefaultRecordEvery,
		Damping:     DefaultDamping(),
		ModelParams: ModelConfig{
			Nodes:     DefaultNodes,
			Mass:      DefaultMass,
			Stiffness: DefaultStiffness,
			Inertia:   DefaultInertia,
			Torsional: DefaultTorsional,
		},
		InitState: InitStateConfig{
			Displacement: 0.01,
			Mode:         1,
		},
	}
}

// Load reads a YAML or, for .ini/.cfg files, an INI configuration.
func Load(path string) (*Config, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ini", ".cfg":
		return LoadINI(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadINI reads the [run], [damping], [model] and [init] sections. Missing
// keys keep their defaults.
func LoadINI(path string) (*Config, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()

	run := file.Section("run")
	cfg.Model = run.Key("model").MustString(cfg.Model)
	cfg.Dt = run.Key("time_step").MustFloat64(cfg.Dt)
	cfg.Duration = run.Key("duration").MustFloat64(cfg.Duration)
	cfg.RecordEvery = run.Key("record_every").MustInt(cfg.RecordEvery)

	d := &cfg.Damping
	sec := file.Section("damping")
	d.SchemeType = sec.Key("scheme_type").MustString(d.SchemeType)
	d.RotationalSchemeType = sec.Key("rotational_scheme_type").MustString(d.RotationalSchemeType)
	d.AutoFrequencies = sec.Key("auto_frequencies").MustBool(d.AutoFrequencies)
	d.CalculateXi = sec.Key("calculate_xi").MustBool(d.CalculateXi)
	d.CalculateAlphaBeta = sec.Key("calculate_alpha_beta").MustBool(d.CalculateAlphaBeta)
	d.UseNodalMassArray = sec.Key("use_nodal_mass_array").MustBool(d.UseNodalMassArray)
	d.RangePolicy = sec.Key("range_policy").MustString(d.RangePolicy)
	for key, field := range map[string]*float64{
		"omega_1":        &d.Omega1,
		"omega_n":        &d.OmegaN,
		"xi_1":           &d.Xi1,
		"xi_n":           &d.XiN,
		"xi_1_factor":    &d.Xi1Factor,
		"g_factor":       &d.GFactor,
		"theta_factor":   &d.ThetaFactor,
		"rayleigh_alpha": &d.RayleighAlpha,
		"rayleigh_beta":  &d.RayleighBeta,
		"delta":          &d.Delta,
		"alpha_0":        &d.Alpha0,
		"alpha_1":        &d.Alpha1,
		"alpha_2":        &d.Alpha2,
		"xi_1_f":         &d.Xi1F,
		"xi_n_f":         &d.XiNF,
		"xib_1_f":        &d.Xib1F,
		"xib_n_f":        &d.XibNF,
	} {
		*field = sec.Key(key).MustFloat64(*field)
	}

	mp := &cfg.ModelParams
	sec = file.Section("model")
	mp.Nodes = sec.Key("nodes").MustInt(mp.Nodes)
	mp.Mass = sec.Key("mass").MustFloat64(mp.Mass)
	mp.Stiffness = sec.Key("stiffness").MustFloat64(mp.Stiffness)
	mp.Inertia = sec.Key("inertia").MustFloat64(mp.Inertia)
	mp.Torsional = sec.Key("torsional").MustFloat64(mp.Torsional)
	mp.Force = sec.Key("force").MustFloat64(mp.Force)
	mp.LoadFreq = sec.Key("load_freq").MustFloat64(mp.LoadFreq)

	is := &cfg.InitState
	sec = file.Section("init")
	is.Displacement = sec.Key("displacement").MustFloat64(is.Displacement)
	is.Velocity = sec.Key("velocity").MustFloat64(is.Velocity)
	is.Mode = sec.Key("mode").MustInt(is.Mode)
	is.Spin = sec.Key("spin").MustFloat64(is.Spin)

	return cfg, nil
}

// DampingSettings builds validated calibration settings. freqs are the
// model's natural frequencies in ascending order. With AutoFrequencies and
// at least two of them, the lowest and highest replace omega_1 and omega_n.
func (c *Config) DampingSettings(freqs []float64) (damping.Settings, error) {
	d := c.Damping
	policy, err := damping.ParseRangePolicy(d.RangePolicy)
	if err != nil {
		return damping.Settings{}, err
	}

	omega1, omegaN := d.Omega1, d.OmegaN
	if d.AutoFrequencies && len(freqs) > 1 {
		omega1, omegaN = freqs[0], freqs[len(freqs)-1]
	}

	b := damping.NewBuilder().
		Scheme(d.SchemeType).
		Rotational(d.RotationalSchemeType).
		TimeStep(c.Dt).
		Frequencies(omega1, omegaN).
		Ratios(d.Xi1, d.XiN).
		CalculateXi(d.CalculateXi, d.Xi1Factor).
		Stability(d.GFactor, d.ThetaFactor).
		NodalMassArray(d.UseNodalMassArray).
		RangePolicy(policy).
		CDF(damping.CDFParams{
			Delta:  d.Delta,
			Alpha0: d.Alpha0,
			Alpha1: d.Alpha1,
			Alpha2: d.Alpha2,
			Xi1F:   d.Xi1F,
			XiNF:   d.XiNF,
			Xib1F:  d.Xib1F,
			XibNF:  d.XibNF,
		})
	if !d.CalculateAlphaBeta {
		b = b.Coefficients(d.RayleighAlpha, d.RayleighBeta)
	}
	return b.Build()
}

// Params lists the tunable numeric damping options by file name.
func (c *Config) Params() map[string]float64 {
	d := c.Damping
	return map[string]float64{
		"time_step":      c.Dt,
		"omega_1":        d.Omega1,
		"omega_n":        d.OmegaN,
		"xi_1":           d.Xi1,
		"xi_n":           d.XiN,
		"xi_1_factor":    d.Xi1Factor,
		"g_factor":       d.GFactor,
		"theta_factor":   d.ThetaFactor,
		"rayleigh_alpha": d.RayleighAlpha,
		"rayleigh_beta":  d.RayleighBeta,
		"delta":          d.Delta,
		"alpha_0":        d.Alpha0,
		"alpha_1":        d.Alpha1,
		"alpha_2":        d.Alpha2,
	}
}

// SetParam sets one of the options listed by Params.
func (c *Config) SetParam(name string, value float64) error {
	d := &c.Damping
	fields := map[string]*float64{
		"time_step":      &c.Dt,
		"omega_1":        &d.Omega1,
		"omega_n":        &d.OmegaN,
		"xi_1":           &d.Xi1,
		"xi_n":           &d.XiN,
		"xi_1_factor":    &d.Xi1Factor,
		"g_factor":       &d.GFactor,
		"theta_factor":   &d.ThetaFactor,
		"rayleigh_alpha": &d.RayleighAlpha,
		"rayleigh_beta":  &d.RayleighBeta,
		"delta":          &d.Delta,
		"alpha_0":        &d.Alpha0,
		"alpha_1":        &d.Alpha1,
		"alpha_2":        &d.Alpha2,
	}
	f, ok := fields[name]
	if !ok {
		return fmt.Errorf("unknown parameter: %s", name)
	}
	*f = value
	switch name {
	case "omega_1", "omega_n":
		d.AutoFrequencies = false
	case "rayleigh_alpha", "rayleigh_beta":
		d.CalculateAlphaBeta = false
	}
	return nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	return &out
}
