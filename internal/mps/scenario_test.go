package mps_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mpsfluid/internal/mps"
)

func damBreak(p mps.Params, withInjectors bool) ([]mps.Particle, []mps.Injector) {
	tank := mps.Rect{Width: 0.8, Height: 0.6}
	ps := mps.FillFluid(mps.Rect{Width: 0.2, Height: 0.4}, p.Spacing)
	ps = append(ps, mps.FillTank(tank, p.Spacing, mps.WallLayers(p.ReNon))...)
	if !withInjectors {
		return ps, nil
	}
	in := mps.InjectorColumn(mps.Vec2{X: p.Spacing / 2, Y: 0.5}, mps.Vec2{X: 1}, 10, p.Spacing)
	in = append(in, mps.InjectorColumn(mps.Vec2{X: tank.Width - p.Spacing/2, Y: 0.5}, mps.Vec2{X: -1}, 10, p.Spacing)...)
	return ps, in
}

var _ = Describe("Simulation", func() {
	var (
		params mps.Params
		sim    *mps.Simulation
	)

	BeforeEach(func() {
		params = mps.DefaultParams()
	})

	Describe("dam break", func() {
		BeforeEach(func() {
			ps, in := damBreak(params, false)
			var err error
			sim, err = mps.New(params, ps, in)
			Expect(err).NotTo(HaveOccurred())
		})

		It("starts with the reference fluid column", func() {
			Expect(sim.Counts()[mps.Fluid]).To(Equal(3200))
			Expect(sim.Step()).To(Equal(0))
			Expect(sim.Time()).To(BeZero())
		})

		It("keeps every invariant over a run", func() {
			prevTime := 0.0
			for k := 0; k < 20; k++ {
				dt := sim.Update()
				Expect(dt).To(BeNumerically(">", 0))
				Expect(dt).To(BeNumerically("<=", params.DtMax))
				Expect(sim.Time()).To(BeNumerically(">", prevTime))
				prevTime = sim.Time()
			}
			Expect(sim.Step()).To(Equal(20))
			Expect(sim.Validate()).To(Succeed())

			for _, p := range sim.Particles() {
				Expect(p.Pressure).To(BeNumerically(">=", 0))
			}
			Expect(sim.Counts()[mps.Ghost]).To(BeZero())
		})

		It("lets the column fall under gravity without moving the walls", func() {
			before := append(mps.Particles(nil), sim.Particles()...)
			for k := 0; k < 20; k++ {
				sim.Update()
			}
			after := sim.Particles()
			for i := range before {
				if before[i].Type == mps.Fluid {
					continue
				}
				Expect(after[i].Pos).To(Equal(before[i].Pos))
				Expect(after[i].Vel).To(Equal(mps.Vec2{}))
			}
			top := 3199
			Expect(after[top].Pos.Y).To(BeNumerically("<", before[top].Pos.Y))
		})
	})

	Describe("inflow", func() {
		BeforeEach(func() {
			ps, in := damBreak(params, true)
			var err error
			sim, err = mps.New(params, ps, in)
			Expect(err).NotTo(HaveOccurred())
		})

		It("spawns fluid at every injector", func() {
			initial := len(sim.Particles())
			for k := 0; k < 40; k++ {
				sim.Update()
			}
			Expect(len(sim.Particles()) - initial).To(BeNumerically(">=", 20))
			Expect(len(sim.Injectors())).To(Equal(20))
		})
	})

	Describe("without optional stages", func() {
		It("runs with viscosity, collision and injection disabled", func() {
			params.EnableViscosity = false
			params.EnableCollision = false
			params.EnableInjector = false
			params.AdaptiveDt = false
			ps, in := damBreak(params, true)
			s, err := mps.New(params, ps, in)
			Expect(err).NotTo(HaveOccurred())

			initial := len(s.Particles())
			for k := 0; k < 30; k++ {
				Expect(s.Update()).To(Equal(params.DtMax))
			}
			Expect(s.Particles()).To(HaveLen(initial))
			Expect(s.Validate()).To(Succeed())
		})
	})
})
