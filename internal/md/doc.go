// Package md implements the molecular-dynamics kernel: a Lennard-Jones pair
// force evaluator with minimum-image periodic correction, a cell-list
// neighbor structure, and the time integrator that ties them together.
//
//   - [Box]: square periodic domain (wrap, minimum image)
//   - [ForceEngine]: pairwise Lennard-Jones acceleration and potential
//   - [CellGrid]: particles bucketed into a periodic grid of cells
//   - [FlatSet]: plain particle slice, every pair considered
//   - [Integrator]: one fixed time step over a [ParticleSet]
//
// # Example
//
//	integ, _ := md.NewIntegrator(n, 0.7, 0.001)
//	ps, _ := particle.Lattice(seq, integ.BoxWidth(), side, 0.8, rng)
//	grid, _ := md.BuildCellGrid(ps, integ.BoxWidth(), 5)
//	for i := 0; i < steps; i++ {
//	    if err := integ.StepGrid(grid); err != nil {
//	        return err
//	    }
//	}
//
// # Neighbor truncation
//
// Grid mode only evaluates pairs in the same or adjacent cells. There is no
// explicit cutoff-distance test, so pairs further apart than one cell width
// are dropped regardless of their minimum-image distance. With a single
// cell per side the grid visits exactly the pairs a [FlatSet] visits.
//
// # Thread Safety
//
// An Integrator and the set it steps must not be shared between
// goroutines. [WithWorkers] parallelizes a single step internally, using
// per-worker accumulation buffers for the force phase.
package md
