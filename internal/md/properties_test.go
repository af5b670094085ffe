package md_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mdsim/internal/md"
	"github.com/san-kum/mdsim/internal/particle"
	"github.com/san-kum/mdsim/internal/vec"
)

func totalEnergy(ps []particle.Particle) float64 {
	ke, pe := 0.0, 0.0
	for i := range ps {
		ke += ps[i].KineticEnergy()
		pe += ps[i].Potential
	}
	n := float64(len(ps))
	return ke/n + pe/n
}

var _ = Describe("Integrator", func() {
	const (
		side    = 10
		density = 0.7
		dt      = 0.001
	)

	var (
		integ *md.Integrator
		ps    []particle.Particle
	)

	BeforeEach(func() {
		var err error
		integ, err = md.NewIntegrator(side*side, density, dt)
		Expect(err).NotTo(HaveOccurred())

		ps, err = particle.Lattice(particle.NewSequence(0), integ.BoxWidth(), side, 0.8, rand.New(rand.NewSource(2024)))
		Expect(err).NotTo(HaveOccurred())
	})

	It("derives the box width from count and density", func() {
		Expect(integ.BoxWidth()).To(BeNumerically("~", 11.952, 1e-3))
	})

	Context("in flat mode", func() {
		It("conserves total momentum", func() {
			p0 := particle.Momentum(ps)
			for i := 0; i < 200; i++ {
				Expect(integ.StepFlat(ps)).To(Succeed())
			}
			p1 := particle.Momentum(ps)
			Expect(p1.X).To(BeNumerically("~", p0.X, 1e-10))
			Expect(p1.Y).To(BeNumerically("~", p0.Y, 1e-10))
		})

		It("keeps total energy steady", func() {
			Expect(integ.StepFlat(ps)).To(Succeed())
			e0 := totalEnergy(ps)
			for i := 0; i < 300; i++ {
				Expect(integ.StepFlat(ps)).To(Succeed())
			}
			Expect(totalEnergy(ps)).To(BeNumerically("~", e0, 1e-3))
		})

		It("produces equal and opposite accelerations", func() {
			Expect(integ.StepFlat(ps)).To(Succeed())
			var sum vec.Vec2
			for _, p := range ps {
				sum = sum.Add(p.Acceleration)
			}
			Expect(sum.X).To(BeNumerically("~", 0, 1e-9))
			Expect(sum.Y).To(BeNumerically("~", 0, 1e-9))
		})
	})

	Context("in grid mode", func() {
		It("conserves momentum with the pair set restricted to neighbors", func() {
			grid, err := md.BuildCellGrid(ps, integ.BoxWidth(), 2.5)
			Expect(err).NotTo(HaveOccurred())
			Expect(grid.Side()).To(Equal(4))

			p0 := particle.Momentum(grid.Particles())
			for i := 0; i < 200; i++ {
				Expect(integ.StepGrid(grid)).To(Succeed())
			}
			p1 := particle.Momentum(grid.Particles())
			Expect(p1.X).To(BeNumerically("~", p0.X, 1e-10))
			Expect(p1.Y).To(BeNumerically("~", p0.Y, 1e-10))
		})

		It("matches flat mode exactly when the grid is a single cell", func() {
			flat := particle.Clone(ps)
			grid, err := md.BuildCellGrid(ps, integ.BoxWidth(), integ.BoxWidth())
			Expect(err).NotTo(HaveOccurred())
			Expect(grid.Side()).To(Equal(1))

			for i := 0; i < 25; i++ {
				Expect(integ.StepFlat(flat)).To(Succeed())
				Expect(integ.StepGrid(grid)).To(Succeed())
			}
			Expect(grid.Particles()).To(Equal(flat))
		})

		It("conserves the particle set across rebuilds", func() {
			grid, err := md.BuildCellGrid(ps, integ.BoxWidth(), 1.5)
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 100; i++ {
				Expect(integ.StepGrid(grid)).To(Succeed())
			}

			seen := make(map[int]int)
			for r := 0; r < grid.Side(); r++ {
				for c := 0; c < grid.Side(); c++ {
					for _, idx := range grid.Cell(r, c) {
						seen[grid.Particles()[idx].ID]++
					}
				}
			}
			Expect(seen).To(HaveLen(side * side))
			for _, n := range seen {
				Expect(n).To(Equal(1))
			}
		})
	})

	It("rejects a coincident pair", func() {
		ps[1].Center = ps[0].Center
		ps[1].Velocity = ps[0].Velocity
		Expect(integ.StepFlat(ps)).To(MatchError(md.ErrCoincident))
	})
})
