// Package vec provides the 2D vector value type used for particle state.
package vec

import "math"

// Vec2 is a 2D vector with value semantics.
type Vec2 struct {
	X, Y float64
}

func New(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

func (v Vec2) Scale(f float64) Vec2 { return Vec2{v.X * f, v.Y * f} }

func (v Vec2) Neg() Vec2 { return Vec2{-v.X, -v.Y} }

func (v Vec2) Dot(o Vec2) float64 { return v.X*o.X + v.Y*o.Y }

func (v Vec2) NormSq() float64 { return v.X*v.X + v.Y*v.Y }

// Norm returns the Euclidean length.
func (v Vec2) Norm() float64 { return math.Sqrt(v.X*v.X + v.Y*v.Y) }

// IsFinite reports whether neither component is NaN or Inf.
func (v Vec2) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) && !math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}
