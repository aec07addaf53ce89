package sim_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/quadsim/internal/dynamo"
	"github.com/san-kum/quadsim/internal/metrics"
	"github.com/san-kum/quadsim/internal/sim"
)

type countingObserver struct{ steps int }

func (c *countingObserver) OnStep(dynamo.Snapshot) { c.steps++ }

var _ = Describe("Simulator", func() {
	var (
		simulator *sim.Simulator
		cfg       sim.Config
	)

	BeforeEach(func() {
		simulator = sim.New(nil)
		cfg = sim.Config{
			Flight:   quietConfig(),
			Dt:       0.01,
			Duration: 1.0,
		}
		cfg.Flight.EulerAngles = dynamo.Vec3{X: 0.1}
	})

	It("records every tick plus the initial snapshot", func() {
		obs := &countingObserver{}
		simulator.AddObserver(obs)

		result, err := simulator.Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.StepsTaken).To(Equal(100))
		Expect(result.Snapshots).To(HaveLen(101))
		Expect(result.Times).To(HaveLen(101))
		Expect(result.Times[100]).To(BeNumerically("~", 1.0, 1e-9))
		Expect(result.Halted).To(BeFalse())
		Expect(obs.steps).To(Equal(100))
	})

	It("thins recorded snapshots but keeps the last one", func() {
		cfg.RecordEvery = 30
		result, err := simulator.Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Snapshots).To(HaveLen(5))
		Expect(result.Snapshots[4].Step).To(Equal(100))
	})

	It("reports metrics for a converging flight", func() {
		for _, m := range metrics.Standard(dynamo.Vec3{}, 1, 9.82) {
			simulator.AddMetric(m)
		}
		cfg.Duration = 10
		result, err := simulator.Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())

		Expect(result.Metrics).To(HaveKey("attitude_error"))
		Expect(result.Metrics["attitude_error"]).To(BeNumerically("<", 0.1))
		Expect(result.Metrics["stability"]).To(BeNumerically(">", 0.9))
		Expect(result.Metrics["saturation"]).To(BeNumerically("==", 0))
		Expect(result.Metrics["sensor_drift"]).To(BeNumerically("<", 1e-9))
	})

	It("stops on an invalid config", func() {
		cfg.Dt = 0
		_, err := simulator.Run(context.Background(), cfg)
		Expect(err).To(MatchError(dynamo.ErrInvalidTimestep))

		cfg.Dt = 0.01
		cfg.Duration = -1
		_, err = simulator.Run(context.Background(), cfg)
		Expect(err).To(HaveOccurred())
	})

	It("honours cancellation", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		result, err := simulator.Run(ctx, cfg)
		Expect(err).To(MatchError(context.Canceled))
		Expect(result.StepsTaken).To(Equal(0))
	})

	It("ends early with Halted when the flight goes non-finite", func() {
		flight, err := sim.NewFlight(cfg.Flight)
		Expect(err).NotTo(HaveOccurred())
		flight.Quadcopter().SetVelocity(dynamo.Vec3{Z: math.Inf(1)})

		result, err := simulator.RunFlight(context.Background(), flight, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Halted).To(BeTrue())
		Expect(result.StepsTaken).To(Equal(0))
		Expect(result.Errors).To(HaveLen(1))
		Expect(result.Errors[0]).To(MatchError(dynamo.ErrInvalidState))
	})

	It("runs until the callback stops it", func() {
		flight, err := sim.NewFlight(cfg.Flight)
		Expect(err).NotTo(HaveOccurred())

		err = simulator.RunWithCallback(context.Background(), flight, 0.01, func(s dynamo.Snapshot) bool {
			return s.Step < 25
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(flight.Step()).To(Equal(25))
	})
})

var _ = Describe("Ensemble", func() {
	var cfg sim.Config

	BeforeEach(func() {
		cfg = sim.Config{Flight: sim.DefaultFlightConfig(), Dt: 0.01, Duration: 0.5}
		cfg.Flight.GyroSigma = 0.01
	})

	It("gives each seed its own disturbance", func() {
		ens := sim.NewEnsemble(nil, 4, 10, nil)
		results, err := ens.Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(4))

		first := results[0].Snapshots[0].AngularVelocity
		Expect(results[1].Snapshots[0].AngularVelocity).NotTo(Equal(first))
	})

	It("is reproducible for the same seeds", func() {
		a, err := sim.NewEnsemble(nil, 3, 7, nil).Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		b, err := sim.NewEnsemble(nil, 3, 7, nil).Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())

		for i := range a {
			Expect(a[i].Snapshots).To(Equal(b[i].Snapshots))
		}
	})

	It("summarizes per-run metrics", func() {
		newMetrics := func() []dynamo.Metric {
			return []dynamo.Metric{metrics.NewControlEffort(), metrics.NewSaturation()}
		}
		results, err := sim.NewEnsemble(nil, 5, 1, newMetrics).Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())

		summary := sim.Summarize(results)
		Expect(summary.Runs).To(Equal(5))
		Expect(summary.Halted).To(Equal(0))
		Expect(summary.MetricNames()).To(Equal([]string{"control_effort", "saturation"}))
		Expect(summary.Mean["control_effort"]).To(BeNumerically(">", 0))
	})

	It("fails fast on an invalid config", func() {
		cfg.Duration = 0
		_, err := sim.NewEnsemble(nil, 2, 1, nil).Run(context.Background(), cfg)
		Expect(err).To(HaveOccurred())
	})
})
