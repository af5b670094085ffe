package md

import (
	"math/rand"
	"testing"

	"github.com/san-kum/mdsim/internal/vec"
	"github.com/stretchr/testify/assert"
)

func TestMinimumImageAcrossBoundary(t *testing.T) {
	box := Box{Width: 10}
	d := box.Displacement(vec.New(1, 5), vec.New(9, 5))
	assert.Equal(t, vec.New(-2, 0), d)
	assert.Equal(t, 2.0, d.Norm())

	back := box.Displacement(vec.New(9, 5), vec.New(1, 5))
	assert.Equal(t, vec.New(2, 0), back)
}

func TestMinimumImageKeepsShortDisplacement(t *testing.T) {
	box := Box{Width: 10}
	tests := []struct {
		d, want vec.Vec2
	}{
		{vec.New(3, -4), vec.New(3, -4)},
		{vec.New(5, -5), vec.New(5, -5)},
		{vec.New(6, -6), vec.New(-4, 4)},
		{vec.New(0, 9.5), vec.New(0, -0.5)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, box.MinimumImage(tt.d), "d=%v", tt.d)
	}
}

func TestMinimumImageAntisymmetric(t *testing.T) {
	box := Box{Width: 11.952286093343936}
	rng := rand.New(rand.NewSource(7))

	for k := 0; k < 1000; k++ {
		a := vec.New(rng.Float64()*box.Width, rng.Float64()*box.Width)
		b := vec.New(rng.Float64()*box.Width, rng.Float64()*box.Width)

		ab := box.Displacement(a, b)
		ba := box.Displacement(b, a)
		assert.Equal(t, ab.Neg(), ba)
		assert.LessOrEqual(t, abs(ab.X), box.Width/2)
		assert.LessOrEqual(t, abs(ab.Y), box.Width/2)
	}
}

func TestWrap(t *testing.T) {
	box := Box{Width: 10}
	tests := []struct {
		name    string
		in, out vec.Vec2
	}{
		{"inside", vec.New(3, 7), vec.New(3, 7)},
		{"upper edge", vec.New(10, 2), vec.New(0, 2)},
		{"above", vec.New(10.5, 12), vec.New(0.5, 2)},
		{"below", vec.New(-0.5, -3), vec.New(9.5, 7)},
		{"zero", vec.New(0, 0), vec.New(0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.out, box.Wrap(tt.in))
		})
	}
}

func TestWrapIdempotent(t *testing.T) {
	box := Box{Width: 7.5}
	rng := rand.New(rand.NewSource(3))

	for k := 0; k < 1000; k++ {
		p := vec.New(rng.Float64()*3*box.Width-box.Width, rng.Float64()*3*box.Width-box.Width)
		once := box.Wrap(p)
		if !box.Contains(once) {
			continue
		}
		assert.Equal(t, once, box.Wrap(once))
	}
}

func TestSignum(t *testing.T) {
	assert.Equal(t, 0.0, signum(0))
	assert.Equal(t, -1.0, signum(-3))
	assert.Equal(t, 1.0, signum(0.1))
}
