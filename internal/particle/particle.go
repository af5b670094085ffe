// Package particle defines the particle entity and its initial-condition
// factory.
package particle

import (
	"fmt"

	"github.com/san-kum/mdsim/internal/vec"
)

// Particle is a point mass in the periodic box. Acceleration and Potential
// are per-step accumulators written by the force evaluator.
type Particle struct {
	ID           int
	Center       vec.Vec2
	Velocity     vec.Vec2
	Acceleration vec.Vec2
	Potential    float64
	Mass         float64
}

// Sequence issues particle ids. Ids are unique and increasing for the life
// of the sequence and are never reused.
type Sequence struct {
	next int
}

// NewSequence returns a sequence whose first id is start.
func NewSequence(start int) *Sequence {
	return &Sequence{next: start}
}

func (s *Sequence) Next() int {
	id := s.next
	s.next++
	return id
}

// Peek returns the id the next call to Next will issue.
func (s *Sequence) Peek() int { return s.next }

// New creates a unit-mass particle at rest acceleration with an id taken
// from seq.
func New(seq *Sequence, center, velocity vec.Vec2) Particle {
	return Particle{
		ID:       seq.Next(),
		Center:   center,
		Velocity: velocity,
		Mass:     1,
	}
}

func (p *Particle) Translate(d vec.Vec2) {
	p.Center = p.Center.Add(d)
}

// ResetAccumulators zeroes acceleration and potential.
func (p *Particle) ResetAccumulators() {
	p.Acceleration = vec.Vec2{}
	p.Potential = 0
}

// KineticEnergy returns |v|²/2. Mass is not applied, matching the
// reduced-unit reporting.
func (p *Particle) KineticEnergy() float64 {
	return p.Velocity.NormSq() / 2
}

func (p Particle) String() string {
	return fmt.Sprintf("(%g, %g, %g, %g)", p.Center.X, p.Center.Y, p.Velocity.X, p.Velocity.Y)
}

// Clone returns a copy of ps.
func Clone(ps []Particle) []Particle {
	c := make([]Particle, len(ps))
	copy(c, ps)
	return c
}
