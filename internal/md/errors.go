package md

import (
	"errors"
	"fmt"

	"github.com/san-kum/mdsim/internal/particle"
)

var (
	// ErrCoincident indicates two particles at zero separation. The pair
	// force is undefined there and the step cannot continue.
	ErrCoincident = errors.New("md: coincident particles")

	// ErrOutOfDomain indicates a particle position outside [0, width).
	ErrOutOfDomain = errors.New("md: particle outside the box")

	// ErrInvalidGeometry indicates a non-positive box width or cutoff radius.
	ErrInvalidGeometry = errors.New("md: invalid box geometry")

	// ErrParticleCount indicates a set whose size differs from the integrator's.
	ErrParticleCount = errors.New("md: particle count mismatch")
)

func coincidentError(p1, p2 *particle.Particle) error {
	return fmt.Errorf("%w: ids %d and %d at (%g, %g)", ErrCoincident, p1.ID, p2.ID, p1.Center.X, p1.Center.Y)
}
