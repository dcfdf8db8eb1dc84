package damping_test

import (
	"bytes"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	log "github.com/sirupsen/logrus"

	"github.com/san-kum/dampcal/internal/damping"
	"github.com/san-kum/dampcal/internal/processinfo"
	"github.com/san-kum/dampcal/internal/scheme"
)

func classicalBeta(xi1, w1, xiN, wN float64) float64 {
	return 2 * (xiN*wN - xi1*w1) / (wN*wN - w1*w1)
}

var _ = Describe("Calibrate", func() {
	Context("with fixed damping ratios", func() {
		It("reproduces classical two-point Rayleigh damping", func() {
			s, err := damping.NewBuilder().
				Scheme("Central_Differences").
				TimeStep(1e-3).
				Frequencies(1.0, 10.0).
				Ratios(0.05, 0.05).
				Build()
			Expect(err).NotTo(HaveOccurred())

			c, err := damping.Calibrate(s)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Beta).To(BeNumerically("~", 0.00909090909, 1e-10))
			Expect(c.Alpha).To(BeNumerically("~", 0.0909090909, 1e-9))
			Expect(c.GCoefficient).To(Equal(0.0))
			Expect(c.Warnings).To(BeEmpty())
		})

		It("is bit-identical across calls", func() {
			s, err := damping.NewBuilder().
				Scheme("Velocity_Verlet").
				TimeStep(2e-4).
				Frequencies(3.3, 41.7).
				Ratios(0.013, 0.071).
				Build()
			Expect(err).NotTo(HaveOccurred())

			a, err := damping.Calibrate(s)
			Expect(err).NotTo(HaveOccurred())
			b, err := damping.Calibrate(s)
			Expect(err).NotTo(HaveOccurred())

			Expect(math.Float64bits(a.Alpha)).To(Equal(math.Float64bits(b.Alpha)))
			Expect(math.Float64bits(a.Beta)).To(Equal(math.Float64bits(b.Beta)))
		})
	})

	Context("end to end with Explicit_Central_Differences", func() {
		It("keeps theta_factor and derives alpha and beta from the formula", func() {
			s, err := damping.NewBuilder().
				Scheme("Explicit_Central_Differences").
				TimeStep(5e-5).
				Frequencies(5.0, 50.0).
				Ratios(0.02, 0.02).
				Stability(0.0, 0.8).
				Build()
			Expect(err).NotTo(HaveOccurred())

			c, err := damping.Calibrate(s)
			Expect(err).NotTo(HaveOccurred())

			beta := classicalBeta(0.02, 5, 0.02, 50)
			alpha := 2*0.02*5 - beta*25
			Expect(c.ThetaFactor).To(Equal(0.8))
			Expect(c.GCoefficient).To(Equal(0.0))
			Expect(c.Beta).To(BeNumerically("~", beta, 1e-15))
			Expect(c.Alpha).To(BeNumerically("~", alpha, 1e-15))
			Expect(c.Beta).To(BeNumerically("~", 0.000727273, 1e-9))
			Expect(c.Alpha).To(BeNumerically("~", 0.181818, 1e-6))
		})
	})

	Context("with g_factor >= 1", func() {
		It("forces theta_factor to 0.5 and computes g_coefficient", func() {
			s, err := damping.NewBuilder().
				Scheme("Central_Differences").
				TimeStep(0.001).
				Frequencies(1.0, 10.0).
				Ratios(0.05, 0.05).
				Stability(1.0, 0.9).
				Build()
			Expect(err).NotTo(HaveOccurred())

			c, err := damping.Calibrate(s)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.ThetaFactor).To(Equal(0.5))
			Expect(c.GCoefficient).To(BeNumerically("~", 0.001*10.0*10.0*0.25*1.0, 1e-15))
		})

		It("derives the ratios when calculate_xi is set", func() {
			dt, w1, wn := 0.001, 1.0, 10.0
			s, err := damping.NewBuilder().
				Scheme("Central_Differences").
				TimeStep(dt).
				Frequencies(w1, wn).
				CalculateXi(true, 1.0).
				Stability(2.0, 1.0).
				Build()
			Expect(err).NotTo(HaveOccurred())

			c, err := damping.Calibrate(s)
			Expect(err).NotTo(HaveOccurred())

			g := dt * wn * wn * 0.25 * 2.0
			xi1 := math.Sqrt(1+g*dt) - 0.5*w1*dt*0.5
			xiN := math.Sqrt(1+g*dt) - 0.5*wn*dt*0.5
			Expect(c.Xi1).To(BeNumerically("~", xi1, 1e-12))
			Expect(c.XiN).To(BeNumerically("~", xiN, 1e-12))
			Expect(c.Beta).To(BeNumerically("~", classicalBeta(xi1, w1, xiN, wn), 1e-12))
		})
	})

	Context("with degenerate input", func() {
		It("rejects equal reference frequencies", func() {
			s := damping.Settings{
				Scheme:             scheme.CentralDifferences,
				Dt:                 1e-3,
				ThetaFactor:        1,
				CalculateAlphaBeta: true,
				Targets:            damping.Targets{Omega1: 7, OmegaN: 7, Xi1: 0.05, XiN: 0.05},
			}
			c, err := damping.Calibrate(s)
			Expect(errors.Is(err, damping.ErrDegenerateInput)).To(BeTrue())
			Expect(c.Alpha).To(Equal(0.0))

			var inErr *damping.InputError
			Expect(errors.As(err, &inErr)).To(BeTrue())
			Expect(inErr.Field).To(Equal("omega_n"))
		})

		It("rejects a non-positive time step", func() {
			_, err := damping.NewBuilder().Frequencies(1, 10).TimeStep(0).Build()
			Expect(errors.Is(err, damping.ErrDegenerateInput)).To(BeTrue())

			_, err = damping.NewBuilder().Frequencies(1, 10).TimeStep(-1e-3).Build()
			Expect(errors.Is(err, damping.ErrDegenerateInput)).To(BeTrue())
		})

		It("returns the Rayleigh error instead of infinities", func() {
			_, _, err := damping.Rayleigh(0.05, 3, 0.05, 3)
			Expect(errors.Is(err, damping.ErrDegenerateInput)).To(BeTrue())
		})
	})

	Context("with scheme dispatch", func() {
		It("fails on an unknown scheme before calibrating", func() {
			_, err := damping.NewBuilder().Scheme("Unknown_Scheme").TimeStep(0).Build()
			Expect(errors.Is(err, damping.ErrConfiguration)).To(BeTrue())
			Expect(errors.Is(err, scheme.ErrUnsupported)).To(BeTrue())
			Expect(errors.Is(err, damping.ErrDegenerateInput)).To(BeFalse())
		})

		It("does not populate CDF keys for Velocity_Verlet", func() {
			s, err := damping.NewBuilder().
				Scheme("Velocity_Verlet").
				TimeStep(1e-3).
				Frequencies(1, 10).
				Ratios(0.05, 0.05).
				Build()
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Scheme).To(Equal(scheme.VelocityVerlet))

			c, err := damping.Calibrate(s)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.CDF).To(BeNil())

			st := processinfo.New()
			c.Apply(st)
			for _, k := range processinfo.CDFKeys {
				Expect(st.Has(k)).To(BeFalse(), string(k))
			}
			Expect(st.Has(processinfo.RayleighAlpha)).To(BeTrue())
			Expect(st.Has(processinfo.UseNodalMassArray)).To(BeTrue())
		})

		It("clears CDF keys left in the store by an earlier calibration", func() {
			s, err := damping.NewBuilder().
				Scheme("Velocity_Verlet").
				TimeStep(1e-3).
				Frequencies(1, 10).
				Build()
			Expect(err).NotTo(HaveOccurred())
			c, err := damping.Calibrate(s)
			Expect(err).NotTo(HaveOccurred())

			st := processinfo.New()
			for _, k := range processinfo.CDFKeys {
				st.SetValue(k, 0.3)
			}
			c.Apply(st)
			for _, k := range processinfo.CDFKeys {
				Expect(st.Has(k)).To(BeFalse(), string(k))
			}
			Expect(st.GetValue(processinfo.DeltaTime)).To(Equal(1e-3))
		})
	})

	Context("with the CDF scheme", func() {
		It("computes both coefficient pairs and the blending coefficients", func() {
			dt, w1, wn := 1e-4, 10.0, 400.0
			s, err := damping.NewBuilder().
				Scheme("Explicit_CDF").
				TimeStep(dt).
				Frequencies(w1, wn).
				Build()
			Expect(err).NotTo(HaveOccurred())

			c, err := damping.Calibrate(s)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.CDF).NotTo(BeNil())

			delta := damping.DefaultDelta
			d0 := 7.0 / 12.0 * delta
			bigB := 1 + 23.0/12.0*delta
			pn, p1 := dt*wn, dt*w1
			xibN := -3.0 / delta
			scale := pn / (2 * delta * xibN)
			b2 := scale * (delta + bigB*damping.DefaultAlpha2/(pn*pn))
			xib1 := delta / (2 * delta * b2) * p1
			xi1 := bigB - 0.5*(1+d0)*p1

			Expect(c.Xi1).To(BeNumerically("~", xi1, 1e-12))
			Expect(c.XiN).To(Equal(0.0))
			Expect(c.CDF.XibN).To(BeNumerically("~", xibN, 1e-12))
			Expect(c.CDF.B2).To(BeNumerically("~", b2, 1e-9*math.Abs(b2)))
			Expect(c.CDF.Xib1).To(BeNumerically("~", xib1, 1e-12))
			Expect(c.CDF.BetaB).To(BeNumerically("~", classicalBeta(xib1, w1, xibN, wn), 1e-12))

			st := processinfo.New()
			c.Apply(st)
			for _, k := range processinfo.CDFKeys {
				Expect(st.Has(k)).To(BeTrue(), string(k))
			}
			Expect(st.GetValue(processinfo.Delta)).To(Equal(delta))
		})

		It("is not subject to the range policy", func() {
			s, err := damping.NewBuilder().
				Scheme("CDF").
				TimeStep(1e-4).
				Frequencies(10, 400).
				RangePolicy(damping.RangeReject).
				Build()
			Expect(err).NotTo(HaveOccurred())

			_, err = damping.Calibrate(s)
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Context("with out-of-range ratios", func() {
		build := func(p damping.RangePolicy) damping.Settings {
			s, err := damping.NewBuilder().
				Scheme("Velocity_Verlet").
				TimeStep(1e-3).
				Frequencies(1, 10).
				Ratios(0.05, 1.2).
				RangePolicy(p).
				Build()
			Expect(err).NotTo(HaveOccurred())
			return s
		}

		It("warns by default", func() {
			c, err := damping.Calibrate(build(damping.RangeWarn))
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Warnings).To(HaveLen(1))
			Expect(c.Warnings[0]).To(ContainSubstring("xi_n"))
		})

		It("rejects under RangeReject", func() {
			_, err := damping.Calibrate(build(damping.RangeReject))
			Expect(errors.Is(err, damping.ErrRatioOutOfRange)).To(BeTrue())
		})

		It("stays silent under RangeIgnore", func() {
			c, err := damping.Calibrate(build(damping.RangeIgnore))
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Warnings).To(BeEmpty())
		})
	})

	Context("with given coefficients", func() {
		It("passes alpha and beta through without frequencies", func() {
			s, err := damping.NewBuilder().
				Scheme("Central_Differences").
				TimeStep(1e-3).
				Coefficients(0.3, 0.002).
				Build()
			Expect(err).NotTo(HaveOccurred())

			c, err := damping.Calibrate(s)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Alpha).To(Equal(0.3))
			Expect(c.Beta).To(Equal(0.002))
		})
	})

	Context("when logging", func() {
		It("emits every calibrated quantity", func() {
			var buf bytes.Buffer
			logger := log.New()
			logger.SetOutput(&buf)
			logger.SetFormatter(&log.TextFormatter{DisableColors: true, DisableTimestamp: true})

			s, err := damping.NewBuilder().Scheme("CDF").TimeStep(1e-4).Frequencies(10, 400).Build()
			Expect(err).NotTo(HaveOccurred())
			c, err := damping.Calibrate(s)
			Expect(err).NotTo(HaveOccurred())

			damping.LogCoefficients(logger, c)
			out := buf.String()
			for _, key := range []string{"rayleigh_alpha", "rayleigh_beta", "g_coefficient", "omega_1", "xi_n", "b_2", "rayleigh_beta_b"} {
				Expect(out).To(ContainSubstring(key))
			}
		})
	})
})
