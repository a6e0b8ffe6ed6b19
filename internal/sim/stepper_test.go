package sim_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/clothsim/internal/metrics"
	"github.com/san-kum/clothsim/internal/sim"
	"github.com/san-kum/clothsim/internal/xpbd"
)

var _ = Describe("Stepper", func() {
	var (
		s *sim.Stepper
		p xpbd.Params
	)

	BeforeEach(func() {
		s = sim.NewStepper(10, 10)
		p = xpbd.DefaultParams()
	})

	// Advances past the initial rebuild so specs start from live state.
	prime := func() {
		out, err := s.Step(0, p)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Rebuilt).To(BeTrue())
	}

	Describe("first tick", func() {
		It("builds topology without stepping", func() {
			out, err := s.Step(5.0, p)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Rebuilt).To(BeTrue())
			Expect(out.Stepped).To(BeFalse())
			Expect(s.Cloth().NumParticles()).To(Equal(100))
			Expect(s.StepCount()).To(BeZero())
		})

		It("re-bases the clock on the rebuild timestamp", func() {
			_, err := s.Step(5.0, p)
			Expect(err).NotTo(HaveOccurred())

			// Half a frame after rebuild: too soon to step.
			out, err := s.Step(5.0+sim.TargetDt/2, p)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Stepped).To(BeFalse())

			out, err = s.Step(5.0+sim.TargetDt, p)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Stepped).To(BeTrue())
			Expect(out.Step).To(Equal(1))
		})
	})

	Describe("frame pacing", func() {
		It("treats fast ticks as render-only", func() {
			prime()
			before := append([]xpbd.Vec3(nil), s.Positions()...)

			out, err := s.Step(sim.TargetDt*0.4, p)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Stepped).To(BeFalse())
			Expect(s.Positions()).To(Equal(before))
		})

		It("runs exactly one step for oversized deltas", func() {
			prime()
			out, err := s.Step(sim.TargetDt*7, p)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Stepped).To(BeTrue())
			Expect(s.StepCount()).To(Equal(1))
		})

		It("accumulates skipped time toward the next step", func() {
			prime()
			out, err := s.Step(sim.TargetDt*0.6, p)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Stepped).To(BeFalse())

			// 0.6 + 0.6 frames since the last processed tick.
			out, err = s.Step(sim.TargetDt*1.2, p)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Stepped).To(BeTrue())
		})
	})

	Describe("reset", func() {
		It("rebuilds deterministically at the next tick", func() {
			prime()
			for i := 1; i <= 5; i++ {
				_, err := s.Step(float64(i)*sim.TargetDt*1.01, p)
				Expect(err).NotTo(HaveOccurred())
			}
			Expect(s.StepCount()).To(Equal(5))

			fresh := sim.NewStepper(10, 10)
			_, err := fresh.Step(0, p)
			Expect(err).NotTo(HaveOccurred())

			s.RequestReset()
			out, err := s.Step(10, p)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Rebuilt).To(BeTrue())
			Expect(s.StepCount()).To(BeZero())
			Expect(s.Positions()).To(Equal(fresh.Positions()))
		})
	})

	Describe("stored impulses", func() {
		// Sags the cloth enough that every cell constraint carries lambda.
		settle := func() {
			prime()
			for i := 1; i <= 20; i++ {
				_, err := s.Step(float64(i)*sim.TargetDt*1.01, p)
				Expect(err).NotTo(HaveOccurred())
			}
		}

		anyLambda := func() bool {
			for _, con := range s.Cloth().Constraints {
				if !con.Lambda.IsZero() {
					return true
				}
			}
			return false
		}

		It("clears on request, even on a render-only tick", func() {
			settle()
			Expect(anyLambda()).To(BeTrue())

			s.RequestImpulseClear()
			last := float64(20) * sim.TargetDt * 1.01
			out, err := s.Step(last+sim.TargetDt/10, p)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Stepped).To(BeFalse())
			Expect(anyLambda()).To(BeFalse())
		})

		It("clears implicitly when the solve mode changes", func() {
			settle()
			Expect(anyLambda()).To(BeTrue())

			p.Mode = xpbd.Jacobi
			last := float64(20) * sim.TargetDt * 1.01
			_, err := s.Step(last+sim.TargetDt/10, p)
			Expect(err).NotTo(HaveOccurred())
			Expect(anyLambda()).To(BeFalse())
		})

		It("clears implicitly when warm starting is toggled", func() {
			settle()
			Expect(anyLambda()).To(BeTrue())

			p.WarmStart = false
			last := float64(20) * sim.TargetDt * 1.01
			_, err := s.Step(last+sim.TargetDt/10, p)
			Expect(err).NotTo(HaveOccurred())
			Expect(anyLambda()).To(BeFalse())
		})
	})

	Describe("resize", func() {
		It("rejects degenerate grids", func() {
			Expect(s.Resize(1, 10)).To(MatchError(xpbd.ErrGridTooSmall))
		})

		It("rebuilds with the new dimensions", func() {
			prime()
			Expect(s.Resize(4, 6)).To(Succeed())
			out, err := s.Step(1, p)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Rebuilt).To(BeTrue())
			Expect(s.Cloth().NumParticles()).To(Equal(24))
		})
	})

	Describe("parameter validation", func() {
		It("rejects invalid params before touching state", func() {
			prime()
			bad := p
			bad.Iterations = 0
			_, err := s.Step(sim.TargetDt, bad)
			Expect(err).To(MatchError(xpbd.ErrParameterBounds))
			Expect(s.StepCount()).To(BeZero())
		})
	})
})

var _ = Describe("Runner", func() {
	var cfg sim.Config

	BeforeEach(func() {
		cfg = sim.Config{
			Cols:     8,
			Rows:     8,
			Duration: 1.0,
			Params:   xpbd.DefaultParams(),
		}
	})

	It("runs one step per frame for the configured duration", func() {
		r := sim.NewRunner()
		result, err := r.Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.StepsTaken).To(BeNumerically("~", 60, 1))
		Expect(result.Samples).To(HaveLen(result.StepsTaken))
		Expect(result.FinalPositions).To(HaveLen(64))
		Expect(result.Edges).NotTo(BeEmpty())
	})

	It("produces monotonically increasing sample times", func() {
		r := sim.NewRunner()
		result, err := r.Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		for i := 1; i < len(result.Samples); i++ {
			Expect(result.Samples[i].Time).To(BeNumerically(">", result.Samples[i-1].Time))
		}
	})

	It("fills aggregate metrics", func() {
		r := sim.NewRunner()
		r.AddMetric(metrics.NewMeanResidual())
		r.AddMetric(metrics.NewPeakStretch())
		r.AddMetric(metrics.NewSettleEnergy(sim.TargetDt))

		result, err := r.Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Metrics).To(HaveKey("mean_residual"))
		Expect(result.Metrics).To(HaveKey("peak_stretch"))
		Expect(result.Metrics).To(HaveKey("settle_energy"))
		Expect(result.Metrics["peak_stretch"]).To(BeNumerically(">", 0))
	})

	It("lets the cloth settle under gravity", func() {
		cfg.Duration = 3.0
		r := sim.NewRunner()
		result, err := r.Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())

		early := result.Samples[10].Kinetic
		late := result.Samples[len(result.Samples)-1].Kinetic
		Expect(late).To(BeNumerically("<", early))
	})

	It("is deterministic for a fixed config", func() {
		a, err := sim.NewRunner().Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		b, err := sim.NewRunner().Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(a.FinalPositions).To(Equal(b.FinalPositions))
		Expect(a.StepsTaken).To(Equal(b.StepsTaken))
	})

	It("stops on context cancellation", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := sim.NewRunner().Run(ctx, cfg)
		Expect(err).To(MatchError(context.Canceled))
	})

	It("rejects invalid params", func() {
		cfg.Params.Stiffness = -1
		_, err := sim.NewRunner().Run(context.Background(), cfg)
		Expect(err).To(MatchError(xpbd.ErrParameterBounds))
	})

	It("honors a deadline without hanging", func(ctx SpecContext) {
		cfg.Duration = 0.5
		done := make(chan struct{})
		go func() {
			defer GinkgoRecover()
			defer close(done)
			_, err := sim.NewRunner().Run(context.Background(), cfg)
			Expect(err).NotTo(HaveOccurred())
		}()
		Eventually(done, 5*time.Second).Should(BeClosed())
	})
})
