package md

import (
	"github.com/san-kum/mdsim/internal/particle"
	"github.com/san-kum/mdsim/internal/vec"
)

// ForceEngine evaluates the Lennard-Jones interaction (reduced units) of a
// particle pair under the minimum-image convention.
type ForceEngine struct {
	box Box
}

func NewForceEngine(box Box) ForceEngine {
	return ForceEngine{box: box}
}

func (f ForceEngine) Box() Box { return f.box }

// Pair returns the acceleration contribution for the particle at c1 (the
// particle at c2 receives its negation) and the pair potential credited to
// each of them. It returns ErrCoincident when the separation is zero.
func (f ForceEngine) Pair(c1, c2 vec.Vec2) (vec.Vec2, float64, error) {
	d := f.box.Displacement(c1, c2)
	r := d.Norm()
	if r == 0 {
		return vec.Vec2{}, 0, ErrCoincident
	}

	rinv := 1 / r
	rr := rinv * rinv
	rrr := rinv * rr
	r6 := rrr * rrr
	r12 := r6 * r6

	a := d.Scale(-48 * (r12*rr - 0.5*r6*rr))
	u := 2 * (r12 - r6)
	return a, u, nil
}

// Evaluate accumulates the pair interaction onto both particles: equal and
// opposite accelerations and the full pair potential on each. Neither
// particle is modified when an error is returned.
func (f ForceEngine) Evaluate(p1, p2 *particle.Particle) error {
	a, u, err := f.Pair(p1.Center, p2.Center)
	if err != nil {
		return coincidentError(p1, p2)
	}

	p1.Acceleration = p1.Acceleration.Add(a)
	p2.Acceleration = p2.Acceleration.Sub(a)
	p1.Potential += u
	p2.Potential += u
	return nil
}
