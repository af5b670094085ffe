package particle

import (
	"fmt"
	"math/rand"

	"github.com/san-kum/mdsim/internal/vec"
)

// Lattice places sideCount² particles on a square lattice filling a box of
// the given width, one particle at the center of each lattice cell.
// Velocities are drawn from a standard normal distribution scaled by
// velocityMul, then the center-of-mass velocity is removed.
func Lattice(seq *Sequence, boxWidth float64, sideCount int, velocityMul float64, rng *rand.Rand) ([]Particle, error) {
	if sideCount <= 0 {
		return nil, fmt.Errorf("side count must be positive, got %d", sideCount)
	}
	if boxWidth <= 0 {
		return nil, fmt.Errorf("box width must be positive, got %f", boxWidth)
	}

	dw := boxWidth / float64(sideCount)
	ps := make([]Particle, 0, sideCount*sideCount)

	for i := 0; i < sideCount; i++ {
		for j := 0; j < sideCount; j++ {
			center := vec.New(dw*float64(j)+0.5*dw, dw*float64(i)+0.5*dw)
			velocity := vec.New(rng.NormFloat64(), rng.NormFloat64()).Scale(velocityMul)
			ps = append(ps, New(seq, center, velocity))
		}
	}

	RemoveDrift(ps)
	return ps, nil
}

// CenterOfMassVelocity returns Σ v·m / N.
func CenterOfMassVelocity(ps []Particle) vec.Vec2 {
	var com vec.Vec2
	if len(ps) == 0 {
		return com
	}
	n := float64(len(ps))
	for i := range ps {
		com = com.Add(ps[i].Velocity.Scale(ps[i].Mass / n))
	}
	return com
}

// RemoveDrift subtracts the center-of-mass velocity from every particle.
func RemoveDrift(ps []Particle) {
	com := CenterOfMassVelocity(ps)
	for i := range ps {
		ps[i].Velocity = ps[i].Velocity.Sub(com)
	}
}

// Momentum returns Σ m·v.
func Momentum(ps []Particle) vec.Vec2 {
	var p vec.Vec2
	for i := range ps {
		p = p.Add(ps[i].Velocity.Scale(ps[i].Mass))
	}
	return p
}
