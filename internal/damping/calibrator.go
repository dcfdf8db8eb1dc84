package damping

import (
	"fmt"
	"math"

	"github.com/san-kum/dampcal/internal/processinfo"
	"github.com/san-kum/dampcal/internal/scheme"
	log "github.com/sirupsen/logrus"
)

// CDFCoefficients are the extra quantities of the CDF scheme.
type CDFCoefficients struct {
	Delta  float64 `json:"delta" yaml:"delta"`
	B0     float64 `json:"b_0" yaml:"b_0"`
	B1     float64 `json:"b_1" yaml:"b_1"`
	B2     float64 `json:"b_2" yaml:"b_2"`
	Xib1   float64 `json:"xib_1" yaml:"xib_1"`
	XibN   float64 `json:"xib_n" yaml:"xib_n"`
	AlphaB float64 `json:"rayleigh_alpha_b" yaml:"rayleigh_alpha_b"`
	BetaB  float64 `json:"rayleigh_beta_b" yaml:"rayleigh_beta_b"`
}

// Coefficients is the result of one calibration.
type Coefficients struct {
	Scheme scheme.Type `json:"-" yaml:"-"`
	Dt     float64     `json:"dt" yaml:"dt"`
	Omega1 float64     `json:"omega_1" yaml:"omega_1"`
	OmegaN float64     `json:"omega_n" yaml:"omega_n"`
	Xi1    float64     `json:"xi_1" yaml:"xi_1"`
	XiN    float64     `json:"xi_n" yaml:"xi_n"`

	Alpha        float64 `json:"rayleigh_alpha" yaml:"rayleigh_alpha"`
	Beta         float64 `json:"rayleigh_beta" yaml:"rayleigh_beta"`
	GCoefficient float64 `json:"g_coefficient" yaml:"g_coefficient"`
	ThetaFactor  float64 `json:"theta_factor" yaml:"theta_factor"`

	CDF               *CDFCoefficients `json:"cdf,omitempty" yaml:"cdf,omitempty"`
	UseNodalMassArray bool             `json:"use_nodal_mass_array" yaml:"use_nodal_mass_array"`
	Warnings          []string         `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Rayleigh returns the two-point Rayleigh coefficients matching ratio xi1 at
// omega1 and xiN at omegaN.
func Rayleigh(xi1, omega1, xiN, omegaN float64) (alpha, beta float64, err error) {
	den := omegaN*omegaN - omega1*omega1
	if den == 0 {
		return 0, 0, degenerate("omega_n", omegaN, "omega_1 and omega_n must differ")
	}
	beta = 2.0 * (xiN*omegaN - xi1*omega1) / den
	alpha = 2.0*xi1*omega1 - beta*omega1*omega1
	return alpha, beta, nil
}

// stabilityCoefficient is g_coefficient = Dt*omega_n^2*0.25*g_factor.
func stabilityCoefficient(dt, omegaN, gFactor float64) float64 {
	return dt * omegaN * omegaN * 0.25 * gFactor
}

// derivedRatios estimates xi_1 and xi_n from the stability coefficient.
func derivedRatios(g, theta, omega1, omegaN, dt, xi1Factor float64) (xi1, xiN float64) {
	root := math.Sqrt(1 + g*dt)
	xi1 = (root - theta*omega1*dt*0.5) * xi1Factor
	xiN = root - theta*omegaN*dt*0.5
	return xi1, xiN
}

// Calibrate derives the damping coefficients for s. It is a pure function
// of its input.
func Calibrate(s Settings) (Coefficients, error) {
	if err := s.Validate(); err != nil {
		return Coefficients{}, err
	}

	c := Coefficients{
		Scheme:            s.Scheme,
		Dt:                s.Dt,
		Omega1:            s.Targets.Omega1,
		OmegaN:            s.Targets.OmegaN,
		Xi1:               s.Targets.Xi1,
		XiN:               s.Targets.XiN,
		Alpha:             s.RayleighAlpha,
		Beta:              s.RayleighBeta,
		ThetaFactor:       s.ThetaFactor,
		UseNodalMassArray: s.UseNodalMassArray,
	}

	var err error
	switch s.Scheme {
	case scheme.CentralDifferences:
		err = calibrateCentralDifferences(s, &c)
	case scheme.VelocityVerlet:
		err = calibrateClassical(s, &c)
	case scheme.CDF:
		err = calibrateCDF(s, &c)
	}
	if err != nil {
		return Coefficients{}, err
	}

	if err := c.checkFinite(); err != nil {
		return Coefficients{}, err
	}
	return c, nil
}

func calibrateCentralDifferences(s Settings, c *Coefficients) error {
	if s.GFactor >= 1.0 {
		c.ThetaFactor = 0.5
		c.GCoefficient = stabilityCoefficient(s.Dt, s.Targets.OmegaN, s.GFactor)
	}
	if !s.CalculateAlphaBeta {
		return nil
	}
	if s.Targets.CalculateXi {
		c.Xi1, c.XiN = derivedRatios(c.GCoefficient, c.ThetaFactor, s.Targets.Omega1, s.Targets.OmegaN, s.Dt, s.Targets.Xi1Factor)
	}
	return calibrateRatios(s, c)
}

func calibrateClassical(s Settings, c *Coefficients) error {
	if !s.CalculateAlphaBeta {
		return nil
	}
	return calibrateRatios(s, c)
}

func calibrateRatios(s Settings, c *Coefficients) error {
	for _, r := range []struct {
		field string
		value float64
	}{{"xi_1", c.Xi1}, {"xi_n", c.XiN}} {
		if r.value >= 0 && r.value < 1 {
			continue
		}
		switch s.RangePolicy {
		case RangeReject:
			return &InputError{Field: r.field, Value: r.value, Err: ErrRatioOutOfRange}
		case RangeWarn:
			c.Warnings = append(c.Warnings, fmt.Sprintf("%s = %g is outside [0, 1)", r.field, r.value))
		}
	}

	alpha, beta, err := Rayleigh(c.Xi1, s.Targets.Omega1, c.XiN, s.Targets.OmegaN)
	if err != nil {
		return err
	}
	c.Alpha, c.Beta = alpha, beta
	return nil
}

func calibrateCDF(s Settings, c *Coefficients) error {
	p := s.CDF
	w1, wn := s.Targets.Omega1, s.Targets.OmegaN

	delta0 := 7.0 / 12.0 * p.Delta
	delta1 := -p.Delta / 6.0
	delta2 := -p.Delta
	bigB := 1.0 + 23.0/12.0*p.Delta
	pn := s.Dt * wn
	p1 := s.Dt * w1

	c.Xi1 = (bigB - 0.5*(1.0+delta0)*p1) * p.Xi1F
	c.XiN = 0.0 * p.XiNF
	xibN := (-3.0 / p.Delta) * p.XibNF

	scale := pn / (2.0 * p.Delta * xibN)
	pn2 := pn * pn
	b0 := scale * (-(1.0 + delta0) + (bigB*p.Alpha0+2.0+23.0/6.0*p.Delta)/pn2)
	b1 := scale * (-delta1 + bigB*(p.Alpha1-1.0)/pn2)
	b2 := scale * (-delta2 + bigB*p.Alpha2/pn2)
	if b2 == 0 {
		return degenerate("alpha_2", p.Alpha2, "b_2 vanishes")
	}
	xib1 := (-delta2 / (2.0 * p.Delta * b2) * p1) * p.Xib1F

	alpha, beta, err := Rayleigh(c.Xi1, w1, c.XiN, wn)
	if err != nil {
		return err
	}
	alphaB, betaB, err := Rayleigh(xib1, w1, xibN, wn)
	if err != nil {
		return err
	}

	c.Alpha, c.Beta = alpha, beta
	c.CDF = &CDFCoefficients{
		Delta:  p.Delta,
		B0:     b0,
		B1:     b1,
		B2:     b2,
		Xib1:   xib1,
		XibN:   xibN,
		AlphaB: alphaB,
		BetaB:  betaB,
	}
	return nil
}

func (c Coefficients) checkFinite() error {
	for k, v := range c.Values() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return degenerate(string(k), v, "calibration produced a non-finite value")
		}
	}
	return nil
}

// Values lists the scalars written to a parameter store. CDF keys appear
// only for the CDF scheme.
func (c Coefficients) Values() map[processinfo.Key]float64 {
	v := map[processinfo.Key]float64{
		processinfo.RayleighAlpha: c.Alpha,
		processinfo.RayleighBeta:  c.Beta,
		processinfo.GCoefficient:  c.GCoefficient,
		processinfo.ThetaFactor:   c.ThetaFactor,
		processinfo.DeltaTime:     c.Dt,
	}
	if c.CDF != nil {
		v[processinfo.Delta] = c.CDF.Delta
		v[processinfo.B0] = c.CDF.B0
		v[processinfo.B1] = c.CDF.B1
		v[processinfo.B2] = c.CDF.B2
		v[processinfo.RayleighAlphaB] = c.CDF.AlphaB
		v[processinfo.RayleighBetaB] = c.CDF.BetaB
	}
	return v
}

// Apply writes the coefficients into st. CDF-only keys left over from an
// earlier CDF calibration are removed when c is for another scheme.
func (c Coefficients) Apply(st *processinfo.Store) {
	if c.CDF == nil {
		st.Delete(processinfo.CDFKeys...)
	}
	for k, v := range c.Values() {
		st.SetValue(k, v)
	}
	st.SetFlag(processinfo.UseNodalMassArray, c.UseNodalMassArray)
}

// LogCoefficients reports every calibrated quantity.
func LogCoefficients(logger log.FieldLogger, c Coefficients) {
	if logger == nil {
		logger = log.StandardLogger()
	}
	fields := log.Fields{
		"scheme":         c.Scheme.String(),
		"dt":             c.Dt,
		"g_coefficient":  c.GCoefficient,
		"theta_factor":   c.ThetaFactor,
		"omega_1":        c.Omega1,
		"omega_n":        c.OmegaN,
		"xi_1":           c.Xi1,
		"xi_n":           c.XiN,
		"rayleigh_alpha": c.Alpha,
		"rayleigh_beta":  c.Beta,
	}
	if c.CDF != nil {
		fields["delta"] = c.CDF.Delta
		fields["b_0"] = c.CDF.B0
		fields["b_1"] = c.CDF.B1
		fields["b_2"] = c.CDF.B2
		fields["xib_1"] = c.CDF.Xib1
		fields["xib_n"] = c.CDF.XibN
		fields["rayleigh_alpha_b"] = c.CDF.AlphaB
		fields["rayleigh_beta_b"] = c.CDF.BetaB
	}
	logger.WithFields(fields).Info("rayleigh damping calibrated")

	for _, w := range c.Warnings {
		logger.WithField("scheme", c.Scheme.String()).Warn(w)
	}
}
