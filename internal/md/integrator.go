package md

import (
	"fmt"
	"math"

	"github.com/san-kum/mdsim/internal/particle"
	"github.com/san-kum/mdsim/internal/vec"
)

// Integrator advances a particle set by one fixed time step.
//
// The position drift uses the velocity from before the first half-kick:
//
//	center   += velocity*dt + acceleration*dt²/2
//	velocity += acceleration*dt/2
//
// followed by wrap, accumulator reset, force accumulation and a second
// half-kick with the new accelerations.
type Integrator struct {
	dt      float64
	n       int
	box     Box
	force   ForceEngine
	workers int
	bufs    []*reduction
}

type Option func(*Integrator)

// WithWorkers splits each step across n goroutines. Values below 2 keep the
// step serial.
func WithWorkers(n int) Option {
	return func(in *Integrator) {
		if n < 1 {
			n = 1
		}
		in.workers = n
	}
}

// BoxWidth returns sqrt(numberOfParticles / density).
func BoxWidth(numberOfParticles int, density float64) float64 {
	return math.Sqrt(float64(numberOfParticles) / density)
}

// NewIntegrator derives the box from the particle count and density.
func NewIntegrator(numberOfParticles int, density, deltaTime float64, opts ...Option) (*Integrator, error) {
	if numberOfParticles <= 0 {
		return nil, fmt.Errorf("number of particles must be positive, got %d", numberOfParticles)
	}
	if !(density > 0) {
		return nil, fmt.Errorf("density must be positive, got %f", density)
	}
	if !(deltaTime > 0) {
		return nil, fmt.Errorf("delta time must be positive, got %f", deltaTime)
	}

	box := Box{Width: BoxWidth(numberOfParticles, density)}
	in := &Integrator{
		dt:      deltaTime,
		n:       numberOfParticles,
		box:     box,
		force:   NewForceEngine(box),
		workers: 1,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in, nil
}

func (in *Integrator) BoxWidth() float64 { return in.box.Width }

func (in *Integrator) Box() Box { return in.box }

func (in *Integrator) DeltaTime() float64 { return in.dt }

func (in *Integrator) NumParticles() int { return in.n }

func (in *Integrator) Workers() int { return in.workers }

func (in *Integrator) ForceEngine() ForceEngine { return in.force }

// StepFlat steps ps in place considering every pair.
func (in *Integrator) StepFlat(ps []particle.Particle) error {
	return in.Step(FlatSet(ps))
}

// StepGrid steps the grid's particles in place considering only same-cell
// and adjacent-cell pairs. The grid is rebuilt during the step.
func (in *Integrator) StepGrid(g *CellGrid) error {
	return in.Step(g)
}

// Step runs one time step over set. On error the particle state is left
// partially updated and should be discarded.
func (in *Integrator) Step(set ParticleSet) error {
	ps := set.Particles()
	if len(ps) != in.n {
		return fmt.Errorf("%w: have %d, want %d", ErrParticleCount, len(ps), in.n)
	}

	in.forEach(ps, in.drift)
	set.Refresh()

	if err := in.accumulate(set); err != nil {
		return err
	}

	in.forEach(ps, in.kick)
	return nil
}

func (in *Integrator) drift(p *particle.Particle) {
	dt := in.dt
	p.Center = p.Center.Add(p.Velocity.Scale(dt)).Add(p.Acceleration.Scale(dt * dt / 2))
	p.Velocity = p.Velocity.Add(p.Acceleration.Scale(dt / 2))
	p.Center = in.box.Wrap(p.Center)
	p.ResetAccumulators()
}

func (in *Integrator) kick(p *particle.Particle) {
	p.Velocity = p.Velocity.Add(p.Acceleration.Scale(in.dt / 2))
}

func (in *Integrator) forEach(ps []particle.Particle, fn func(*particle.Particle)) {
	parallelFor(len(ps), minChunk, in.workers, func(start, end int) {
		for i := start; i < end; i++ {
			fn(&ps[i])
		}
	})
}

func (in *Integrator) accumulate(set ParticleSet) error {
	if in.workers > 1 && set.Blocks() > 1 {
		return in.accumulateParallel(set)
	}

	ps := set.Particles()
	visit := func(i, j int) error {
		return in.force.Evaluate(&ps[i], &ps[j])
	}
	for b := 0; b < set.Blocks(); b++ {
		if err := set.VisitBlock(b, visit); err != nil {
			return err
		}
	}
	return nil
}

// reduction is one worker's private force accumulator, indexed like the
// set's backing slice.
type reduction struct {
	acc []vec.Vec2
	pot []float64
}

func (r *reduction) reset(n int) {
	if cap(r.acc) < n {
		r.acc = make([]vec.Vec2, n)
		r.pot = make([]float64, n)
		return
	}
	r.acc = r.acc[:n]
	r.pot = r.pot[:n]
	for i := range r.acc {
		r.acc[i] = vec.Vec2{}
		r.pot[i] = 0
	}
}
