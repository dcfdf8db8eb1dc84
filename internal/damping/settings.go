package damping

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/dampcal/internal/scheme"
)

// Defaults of the explicit solver.
const (
	DefaultThetaFactor = 1.0
	DefaultGFactor     = 0.0
	DefaultXi1Factor   = 1.0
	DefaultDelta       = 1.3
	DefaultAlpha0      = 1.0
	DefaultAlpha1      = 1.0
	DefaultAlpha2      = 0.5
)

// RangePolicy decides what happens to damping ratios outside [0, 1).
type RangePolicy int

const (
	RangeWarn RangePolicy = iota
	RangeIgnore
	RangeReject
)

func (p RangePolicy) String() string {
	switch p {
	case RangeIgnore:
		return "ignore"
	case RangeReject:
		return "reject"
	default:
		return "warn"
	}
}

func ParseRangePolicy(s string) (RangePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "warn":
		return RangeWarn, nil
	case "ignore":
		return RangeIgnore, nil
	case "reject":
		return RangeReject, nil
	}
	return RangeWarn, &InputError{Field: "range_policy", Value: s, Err: ErrConfiguration}
}

// Targets are the two reference frequencies and the damping ratios wanted
// there. With CalculateXi the ratios are derived from the stability factor
// instead.
type Targets struct {
	Omega1      float64
	OmegaN      float64
	Xi1         float64
	XiN         float64
	CalculateXi bool
	Xi1Factor   float64
}

// CDFParams are the tuning scalars of the CDF scheme.
type CDFParams struct {
	Delta  float64
	Alpha0 float64
	Alpha1 float64
	Alpha2 float64
	Xi1F   float64
	XiNF   float64
	Xib1F  float64
	XibNF  float64
}

func DefaultCDFParams() CDFParams {
	return CDFParams{
		Delta:  DefaultDelta,
		Alpha0: DefaultAlpha0,
		Alpha1: DefaultAlpha1,
		Alpha2: DefaultAlpha2,
		Xi1F:   1.0,
		XiNF:   1.0,
		Xib1F:  1.0,
		XibNF:  1.0,
	}
}

// Settings is the complete calibration input of one solver stage. Build it
// with a Builder; Calibrate validates it again before use.
type Settings struct {
	Scheme     scheme.Type
	Rotational scheme.Type
	Dt         float64

	Targets     Targets
	GFactor     float64
	ThetaFactor float64

	// When CalculateAlphaBeta is false the given coefficients are used as is.
	CalculateAlphaBeta bool
	RayleighAlpha      float64
	RayleighBeta       float64

	CDF               CDFParams
	UseNodalMassArray bool
	RangePolicy       RangePolicy
}

// needsFrequencies reports whether the reference frequencies take part in
// the calibration.
func (s Settings) needsFrequencies() bool {
	switch s.Scheme {
	case scheme.CDF:
		return true
	case scheme.CentralDifferences, scheme.VelocityVerlet:
		return s.CalculateAlphaBeta
	}
	return false
}

// Validate checks every cross-field invariant.
func (s Settings) Validate() error {
	if !s.Scheme.IsTranslational() {
		return &InputError{Field: "scheme_type", Value: s.Scheme, Err: ErrConfiguration}
	}
	if s.Rotational != scheme.Unset && !s.Rotational.IsRotational() {
		return &InputError{Field: "rotational_scheme_type", Value: s.Rotational, Err: ErrConfiguration}
	}
	if !(s.Dt > 0) || math.IsInf(s.Dt, 0) {
		return degenerate("time_step", s.Dt, "time step must be positive and finite")
	}
	for name, v := range map[string]float64{
		"g_factor":     s.GFactor,
		"theta_factor": s.ThetaFactor,
		"xi_1":         s.Targets.Xi1,
		"xi_n":         s.Targets.XiN,
		"xi_1_factor":  s.Targets.Xi1Factor,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return degenerate(name, v, "value must be finite")
		}
	}

	if s.needsFrequencies() {
		t := s.Targets
		if !(t.Omega1 > 0) || math.IsInf(t.Omega1, 0) {
			return degenerate("omega_1", t.Omega1, "frequency must be positive and finite")
		}
		if !(t.OmegaN > 0) || math.IsInf(t.OmegaN, 0) {
			return degenerate("omega_n", t.OmegaN, "frequency must be positive and finite")
		}
		if t.Omega1 == t.OmegaN {
			return degenerate("omega_n", t.OmegaN, "omega_1 and omega_n must differ")
		}
		if t.Omega1 > t.OmegaN {
			return degenerate("omega_1", t.Omega1, fmt.Sprintf("omega_1 must be below omega_n (%g)", t.OmegaN))
		}
	}

	if s.Scheme == scheme.CDF {
		if s.CDF.Delta == 0 || math.IsNaN(s.CDF.Delta) {
			return degenerate("delta", s.CDF.Delta, "delta must be non-zero")
		}
		if s.CDF.XibNF == 0 || math.IsNaN(s.CDF.XibNF) {
			return degenerate("xib_n_f", s.CDF.XibNF, "xib_n_f must be non-zero")
		}
	}
	return nil
}

// Builder assembles Settings. The first invalid input is kept and reported
// by Build.
type Builder struct {
	s   Settings
	err error
}

// NewBuilder starts from the explicit solver defaults: Central Differences,
// theta_factor 1, g_factor 0, alpha/beta calibrated from xi_1 and xi_n.
func NewBuilder() *Builder {
	return &Builder{s: Settings{
		Scheme:             scheme.CentralDifferences,
		ThetaFactor:        DefaultThetaFactor,
		GFactor:            DefaultGFactor,
		CalculateAlphaBeta: true,
		Targets:            Targets{Xi1Factor: DefaultXi1Factor},
		CDF:                DefaultCDFParams(),
	}}
}

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

func (b *Builder) Scheme(name string) *Builder {
	t, err := scheme.ParseTranslational(name)
	if err != nil {
		return b.fail(&InputError{Field: "scheme_type", Value: name, Err: fmt.Errorf("%w: %w", ErrConfiguration, err)})
	}
	b.s.Scheme = t
	return b
}

// Rotational selects the scheme for rotational dofs. An empty name means
// the stage has none.
func (b *Builder) Rotational(name string) *Builder {
	if strings.TrimSpace(name) == "" {
		b.s.Rotational = scheme.Unset
		return b
	}
	t, err := scheme.ParseRotational(name)
	if err != nil {
		return b.fail(&InputError{Field: "rotational_scheme_type", Value: name, Err: fmt.Errorf("%w: %w", ErrConfiguration, err)})
	}
	b.s.Rotational = t
	return b
}

func (b *Builder) TimeStep(dt float64) *Builder {
	b.s.Dt = dt
	return b
}

func (b *Builder) Frequencies(omega1, omegaN float64) *Builder {
	b.s.Targets.Omega1 = omega1
	b.s.Targets.OmegaN = omegaN
	return b
}

func (b *Builder) Ratios(xi1, xiN float64) *Builder {
	b.s.Targets.Xi1 = xi1
	b.s.Targets.XiN = xiN
	return b
}

// CalculateXi derives the ratios from the stability factor, scaling xi_1
// by factor.
func (b *Builder) CalculateXi(enabled bool, factor float64) *Builder {
	b.s.Targets.CalculateXi = enabled
	b.s.Targets.Xi1Factor = factor
	return b
}

func (b *Builder) Stability(gFactor, thetaFactor float64) *Builder {
	b.s.GFactor = gFactor
	b.s.ThetaFactor = thetaFactor
	return b
}

func (b *Builder) CDF(p CDFParams) *Builder {
	b.s.CDF = p
	return b
}

// Coefficients bypasses the calibration and uses alpha and beta directly.
func (b *Builder) Coefficients(alpha, beta float64) *Builder {
	b.s.CalculateAlphaBeta = false
	b.s.RayleighAlpha = alpha
	b.s.RayleighBeta = beta
	return b
}

func (b *Builder) NodalMassArray(enabled bool) *Builder {
	b.s.UseNodalMassArray = enabled
	return b
}

func (b *Builder) RangePolicy(p RangePolicy) *Builder {
	b.s.RangePolicy = p
	return b
}

func (b *Builder) Build() (Settings, error) {
	if b.err != nil {
		return Settings{}, b.err
	}
	if err := b.s.Validate(); err != nil {
		return Settings{}, err
	}
	return b.s, nil
}
