package sim_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/quadsim/internal/dynamo"
	"github.com/san-kum/quadsim/internal/physics"
	"github.com/san-kum/quadsim/internal/sim"
)

func quietConfig() sim.FlightConfig {
	cfg := sim.DefaultFlightConfig()
	cfg.Disturbance = 0
	cfg.GyroSigma = 0
	return cfg
}

var _ = Describe("Flight", func() {
	var (
		flight *sim.Flight
		cfg    sim.FlightConfig
	)

	BeforeEach(func() {
		cfg = quietConfig()
		cfg.EulerAngles = dynamo.Vec3{X: 0.1}
	})

	JustBeforeEach(func() {
		var err error
		flight, err = sim.NewFlight(cfg)
		Expect(err).NotTo(HaveOccurred())
	})

	It("starts armed at the launch pose", func() {
		snap := flight.Snapshot()
		Expect(snap.Armed).To(BeTrue())
		Expect(snap.Step).To(Equal(0))
		Expect(snap.EulerAngles).To(Equal(cfg.EulerAngles))
		Expect(snap.Measured).To(Equal(cfg.EulerAngles))
	})

	It("levels the vehicle from a small roll", func() {
		for i := 0; i < 1000; i++ {
			Expect(flight.Tick(0.01)).To(Succeed())
		}
		Expect(flight.Step()).To(Equal(1000))
		Expect(flight.Time()).To(BeNumerically("~", 10, 1e-9))
		Expect(flight.Snapshot().EulerAngles.X).To(BeNumerically("~", 0, 1e-3))
	})

	It("rejects a bad timestep without halting", func() {
		Expect(flight.Tick(0)).To(MatchError(dynamo.ErrInvalidTimestep))
		Expect(flight.Halted()).To(BeFalse())
	})

	Context("when the state goes non-finite", func() {
		JustBeforeEach(func() {
			flight.Quadcopter().SetAngularVelocity(dynamo.Vec3{X: math.NaN()})
		})

		It("halts and disarms on the same tick", func() {
			err := flight.Tick(0.01)
			Expect(err).To(MatchError(dynamo.ErrInvalidState))

			var simErr *dynamo.SimulationError
			Expect(err).To(BeAssignableToTypeOf(simErr))
			Expect(flight.Halted()).To(BeTrue())
			Expect(flight.Armed()).To(BeFalse())
			Expect(flight.Snapshot().Motors).To(Equal([physics.NumRotors]float64{}))
		})

		It("refuses further ticks and arming until reset", func() {
			Expect(flight.Tick(0.01)).NotTo(Succeed())

			err := flight.Tick(0.01)
			Expect(err).To(MatchError(dynamo.ErrDisarmed))
			Expect(err).To(MatchError(dynamo.ErrInvalidState))
			Expect(flight.Arm()).To(MatchError(dynamo.ErrDisarmed))

			flight.Reset()
			Expect(flight.Halted()).To(BeFalse())
			Expect(flight.Armed()).To(BeTrue())
			Expect(flight.Err()).NotTo(HaveOccurred())
			Expect(flight.Tick(0.01)).To(Succeed())
			Expect(flight.Snapshot().Position.IsValid()).To(BeTrue())
		})
	})

	Describe("Reset", func() {
		It("restores the launch pose and clears the sensor", func() {
			for i := 0; i < 50; i++ {
				Expect(flight.Tick(0.01)).To(Succeed())
			}
			flight.Reset()

			snap := flight.Snapshot()
			Expect(snap.Step).To(Equal(0))
			Expect(snap.Position).To(Equal(cfg.Position))
			Expect(snap.EulerAngles).To(Equal(cfg.EulerAngles))
			Expect(snap.Velocity).To(Equal(dynamo.Vec3{}))
			Expect(snap.Measured).To(Equal(cfg.EulerAngles))

			errs := flight.Controller().Errors()
			Expect(errs.Proportional).To(Equal(dynamo.Vec3{}))
			Expect(errs.Integral).To(Equal(dynamo.Vec3{}))
		})
	})

	Describe("Disarm", func() {
		It("cuts the motors and lets the vehicle fall", func() {
			Expect(flight.Tick(0.01)).To(Succeed())
			flight.Disarm()
			z := flight.Snapshot().Position.Z

			for i := 0; i < 10; i++ {
				Expect(flight.Tick(0.01)).To(Succeed())
			}
			snap := flight.Snapshot()
			Expect(snap.Armed).To(BeFalse())
			Expect(snap.Motors).To(Equal([physics.NumRotors]float64{}))
			Expect(snap.Position.Z).To(BeNumerically("<", z))

			Expect(flight.Arm()).To(Succeed())
			Expect(flight.Armed()).To(BeTrue())
		})
	})

	Describe("targets", func() {
		It("tracks a new attitude target", func() {
			flight.SetTarget(dynamo.Vec3{Y: 0.15})
			Expect(flight.Target()).To(Equal(dynamo.Vec3{Y: 0.15}))
			for i := 0; i < 1500; i++ {
				Expect(flight.Tick(0.01)).To(Succeed())
			}
			Expect(flight.Snapshot().EulerAngles.Y).To(BeNumerically("~", 0.15, 1e-3))
		})
	})

	It("rejects an invalid vehicle", func() {
		bad := quietConfig()
		bad.Spec.Mass = 0
		_, err := sim.NewFlight(bad)
		Expect(err).To(MatchError(dynamo.ErrInvalidSpec))
	})
})
