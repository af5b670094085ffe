package md

import "github.com/san-kum/mdsim/internal/vec"

// Box is the square periodic domain [0, Width)².
type Box struct {
	Width float64
}

// Wrap folds p back into the box with a single shift per axis. Positions
// more than one width outside the box are not fully folded.
func (b Box) Wrap(p vec.Vec2) vec.Vec2 {
	return vec.Vec2{X: wrap(p.X, b.Width), Y: wrap(p.Y, b.Width)}
}

func wrap(x, w float64) float64 {
	if x >= w {
		return x - w
	} else if x < 0 {
		return x + w
	}
	return x
}

// MinimumImage replaces each component of d whose magnitude exceeds half the
// box width with the shorter displacement across the periodic boundary.
func (b Box) MinimumImage(d vec.Vec2) vec.Vec2 {
	half := b.Width / 2
	if abs(d.X) > half {
		d.X = -(b.Width - abs(d.X)) * signum(d.X)
	}
	if abs(d.Y) > half {
		d.Y = -(b.Width - abs(d.Y)) * signum(d.Y)
	}
	return d
}

// Displacement returns the minimum-image vector from a to c.
func (b Box) Displacement(a, c vec.Vec2) vec.Vec2 {
	return b.MinimumImage(c.Sub(a))
}

// Contains reports whether p lies in [0, Width) on both axes.
func (b Box) Contains(p vec.Vec2) bool {
	return p.X >= 0 && p.X < b.Width && p.Y >= 0 && p.Y < b.Width
}

func signum(x float64) float64 {
	if x == 0 {
		return 0
	} else if x < 0 {
		return -1
	}
	return 1
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
