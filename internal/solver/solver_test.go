package solver_test

import (
	"context"
	"errors"
	"io"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	log "github.com/sirupsen/logrus"

	"github.com/san-kum/dampcal/internal/damping"
	"github.com/san-kum/dampcal/internal/dynamo"
	"github.com/san-kum/dampcal/internal/integrators"
	"github.com/san-kum/dampcal/internal/physics"
	"github.com/san-kum/dampcal/internal/processinfo"
	"github.com/san-kum/dampcal/internal/scheme"
	"github.com/san-kum/dampcal/internal/solver"
)

func quietLogger() log.FieldLogger {
	l := log.New()
	l.SetOutput(io.Discard)
	return l
}

func settingsFor(name string, w1, wn float64) damping.Settings {
	s, err := damping.NewBuilder().
		Scheme(name).
		TimeStep(1e-4).
		Frequencies(w1, wn).
		Ratios(0.02, 0.02).
		Build()
	Expect(err).NotTo(HaveOccurred())
	return s
}

var _ = Describe("Solver", func() {
	var chain *physics.SpringChain

	BeforeEach(func() {
		chain = physics.NewSpringChain(6, 1.0, 1e3)
	})

	Describe("Initialize", func() {
		It("publishes the calibrated coefficients before the schemes read them", func() {
			w := chain.NaturalFrequencies()
			s := solver.New(settingsFor("Explicit_Velocity_Verlet", w[0], w[len(w)-1]), solver.WithLogger(quietLogger()))
			k := dynamo.ForModel(chain)

			Expect(s.Initialize(chain, k)).To(Succeed())

			st := s.Store()
			Expect(st.GetValue(processinfo.RayleighAlpha)).To(Equal(s.Coefficients().Alpha))
			Expect(st.GetValue(processinfo.RayleighBeta)).To(Equal(s.Coefficients().Beta))
			Expect(st.GetFlag(processinfo.IsConverged)).To(BeFalse())
			for _, key := range processinfo.CDFKeys {
				Expect(st.Has(key)).To(BeFalse())
			}

			vv, ok := s.Translational().(*integrators.VelocityVerlet)
			Expect(ok).To(BeTrue())
			Expect(vv.Alpha()).To(Equal(s.Coefficients().Alpha))
			Expect(s.Rotational()).To(BeNil())
		})

		It("writes nothing when calibration fails", func() {
			st := processinfo.New()
			settings := damping.Settings{
				Scheme:             scheme.CentralDifferences,
				Dt:                 1e-4,
				ThetaFactor:        1,
				CalculateAlphaBeta: true,
				Targets:            damping.Targets{Omega1: 4, OmegaN: 4, Xi1: 0.02, XiN: 0.02},
			}
			s := solver.New(settings, solver.WithStore(st), solver.WithLogger(quietLogger()))

			err := s.Initialize(chain, dynamo.ForModel(chain))
			Expect(errors.Is(err, damping.ErrDegenerateInput)).To(BeTrue())
			Expect(st.Keys()).To(BeEmpty())
		})

		It("writes nothing when a scheme fails to initialize", func() {
			st := processinfo.New()
			w := chain.NaturalFrequencies()
			s := solver.New(settingsFor("Explicit_Velocity_Verlet", w[0], w[len(w)-1]),
				solver.WithStore(st), solver.WithLogger(quietLogger()))

			err := s.Initialize(chain, dynamo.NewKinematics(chain.Dofs()-1))
			Expect(errors.Is(err, dynamo.ErrDimensionMismatch)).To(BeTrue())
			Expect(st.Keys()).To(BeEmpty())
			Expect(s.Translational()).To(BeNil())
		})

		It("drops CDF-only keys when a reused store is recalibrated for another scheme", func() {
			st := processinfo.New()
			cdf := solver.New(settingsFor("CDF", 10, 80), solver.WithStore(st), solver.WithLogger(quietLogger()))
			Expect(cdf.Initialize(chain, dynamo.ForModel(chain))).To(Succeed())
			Expect(st.Has(processinfo.B0)).To(BeTrue())

			vv := solver.New(settingsFor("Explicit_Velocity_Verlet", 10, 80), solver.WithStore(st), solver.WithLogger(quietLogger()))
			Expect(vv.Initialize(chain, dynamo.ForModel(chain))).To(Succeed())
			for _, key := range processinfo.CDFKeys {
				Expect(st.Has(key)).To(BeFalse(), string(key))
			}
			Expect(st.GetValue(processinfo.RayleighAlpha)).To(Equal(vv.Coefficients().Alpha))
		})

		It("switches central differences to theta 0.5 when g_factor is set", func() {
			w := chain.NaturalFrequencies()
			settings, err := damping.NewBuilder().
				Scheme("Central_Differences").
				TimeStep(1e-4).
				Frequencies(w[0], w[len(w)-1]).
				Stability(2.0, 1.0).
				Build()
			Expect(err).NotTo(HaveOccurred())

			s := solver.New(settings, solver.WithLogger(quietLogger()))
			Expect(s.Initialize(chain, dynamo.ForModel(chain))).To(Succeed())

			cd, ok := s.Translational().(*integrators.CentralDifferences)
			Expect(ok).To(BeTrue())
			Expect(cd.Theta()).To(Equal(0.5))
			Expect(s.Store().GetValue(processinfo.ThetaFactor)).To(Equal(0.5))
			want := 1e-4 * w[len(w)-1] * w[len(w)-1] * 0.25 * 2.0
			Expect(cd.GCoefficient()).To(BeNumerically("~", want, 1e-12))
		})

		It("recomputes from scratch when initialized again", func() {
			s := solver.New(settingsFor("CDF", 10, 80), solver.WithLogger(quietLogger()))
			Expect(s.Initialize(chain, dynamo.ForModel(chain))).To(Succeed())
			first := s.Store().Snapshot()

			for i := 0; i < 10; i++ {
				_, err := s.SolveSolutionStep()
				Expect(err).NotTo(HaveOccurred())
			}
			Expect(s.Initialize(chain, dynamo.ForModel(chain))).To(Succeed())
			Expect(s.Time()).To(Equal(0.0))

			second := s.Store().Snapshot()
			delete(first, string(processinfo.IsConverged))
			delete(second, string(processinfo.IsConverged))
			Expect(second).To(Equal(first))
		})
	})

	Describe("rotational schemes", func() {
		It("reuses the translational instance for direct integration", func() {
			rotor := physics.NewRotor(3, 1.0, 500, 0.1, 2.0)
			settings, err := damping.NewBuilder().
				Scheme("Velocity_Verlet").
				Rotational("Direct_Integration").
				TimeStep(1e-4).
				Frequencies(5, 50).
				Build()
			Expect(err).NotTo(HaveOccurred())

			s := solver.New(settings, solver.WithLogger(quietLogger()))
			Expect(s.Initialize(rotor, dynamo.ForModel(rotor))).To(Succeed())

			direct, ok := s.Rotational().(*integrators.DirectIntegration)
			Expect(ok).To(BeTrue())
			Expect(direct.Translational()).To(BeIdenticalTo(s.Translational()))
		})

		It("integrates orientations with quaternions", func() {
			rotor := physics.NewRotor(2, 1.0, 500, 0.1, 0.0)
			settings, err := damping.NewBuilder().
				Scheme("Symplectic_Euler").
				Rotational("Quaternion_Integration").
				TimeStep(1e-3).
				Build()
			Expect(err).NotTo(HaveOccurred())

			k := dynamo.ForModel(rotor)
			k.Rot.V[2] = 2.0
			s := solver.New(settings, solver.WithLogger(quietLogger()))
			Expect(s.Initialize(rotor, k)).To(Succeed())

			for i := 0; i < 500; i++ {
				converged, err := s.SolveSolutionStep()
				Expect(err).NotTo(HaveOccurred())
				Expect(converged).To(BeTrue())
			}
			Expect(k.Rot.U[2]).To(BeNumerically("~", 1.0, 1e-9))
		})

		It("rejects a rotational scheme for a model without rotations", func() {
			settings, err := damping.NewBuilder().
				Scheme("Forward_Euler").
				Rotational("Runge_Kutta").
				TimeStep(1e-3).
				Build()
			Expect(err).NotTo(HaveOccurred())

			err = solver.New(settings, solver.WithLogger(quietLogger())).Initialize(chain, dynamo.ForModel(chain))
			Expect(errors.Is(err, damping.ErrConfiguration)).To(BeTrue())
		})
	})

	Describe("SolveSolutionStep", func() {
		It("fails before Initialize", func() {
			s := solver.New(settingsFor("Central_Differences", 1, 10))
			_, err := s.SolveSolutionStep()
			Expect(err).To(MatchError(solver.ErrNotInitialized))
		})

		It("advances time and reports convergence", func() {
			chain.Force = 1.0
			w := chain.NaturalFrequencies()
			s := solver.New(settingsFor("Central_Differences", w[0], w[len(w)-1]), solver.WithLogger(quietLogger()))
			Expect(s.Initialize(chain, dynamo.ForModel(chain))).To(Succeed())

			for i := 0; i < 100; i++ {
				converged, err := s.SolveSolutionStep()
				Expect(err).NotTo(HaveOccurred())
				Expect(converged).To(BeTrue())
			}
			Expect(s.Steps()).To(Equal(100))
			Expect(s.Time()).To(BeNumerically("~", 0.01, 1e-15))
			Expect(s.Store().GetFlag(processinfo.IsConverged)).To(BeTrue())
			Expect(s.Kinematics().U.MaxAbs()).To(BeNumerically(">", 0))
		})

		It("reports divergence as a simulation error", func() {
			stiff := physics.NewSpringChain(4, 1.0, 1e8)
			settings, err := damping.NewBuilder().
				Scheme("Central_Differences").
				TimeStep(1e-2).
				Coefficients(0, 0).
				Build()
			Expect(err).NotTo(HaveOccurred())

			k := dynamo.ForModel(stiff)
			k.U[0] = 1.0
			s := solver.New(settings, solver.WithLogger(quietLogger()))
			Expect(s.Initialize(stiff, k)).To(Succeed())

			var stepErr error
			for i := 0; i < 2000 && stepErr == nil; i++ {
				_, stepErr = s.SolveSolutionStep()
			}
			Expect(errors.Is(stepErr, dynamo.ErrInvalidState)).To(BeTrue())

			var simErr *dynamo.SimulationError
			Expect(errors.As(stepErr, &simErr)).To(BeTrue())
			Expect(simErr.Scheme).To(Equal("Central_Differences"))
			Expect(s.Store().GetFlag(processinfo.IsConverged)).To(BeFalse())
		})
	})
})

var _ = Describe("InitializePartitions", func() {
	It("gives every rank identical coefficients", func() {
		stores, err := solver.InitializePartitions(context.Background(), settingsFor("CDF", 3, 300), 8, quietLogger())
		Expect(err).NotTo(HaveOccurred())
		Expect(stores).To(HaveLen(8))
		for _, st := range stores[1:] {
			Expect(st.Snapshot()).To(Equal(stores[0].Snapshot()))
		}
	})

	It("propagates calibration errors", func() {
		settings := settingsFor("Central_Differences", 1, 10)
		settings.Targets.OmegaN = settings.Targets.Omega1
		_, err := solver.InitializePartitions(context.Background(), settings, 4, quietLogger())
		Expect(errors.Is(err, damping.ErrDegenerateInput)).To(BeTrue())
	})

	It("stops on a canceled context", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := solver.InitializePartitions(ctx, settingsFor("Central_Differences", 1, 10), 4, quietLogger())
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
	})

	It("rejects zero partitions", func() {
		_, err := solver.InitializePartitions(context.Background(), settingsFor("Central_Differences", 1, 10), 0, nil)
		Expect(errors.Is(err, damping.ErrDegenerateInput)).To(BeTrue())
	})
})
