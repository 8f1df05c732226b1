package physics

import "math"

// Vec2 is a 2D vector used for positions, headings and velocities.
type Vec2 struct{ X, Y float64 }

// V builds a Vec2.
func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2         { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2         { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }
func (v Vec2) Scale(f float64) Vec2    { return Vec2{X: v.X * f, Y: v.Y * f} }
func (v Vec2) Dot(o Vec2) float64      { return v.X*o.X + v.Y*o.Y }
func (v Vec2) Len() float64            { return math.Hypot(v.X, v.Y) }
func (v Vec2) Perp() Vec2              { return Vec2{X: -v.Y, Y: v.X} }
func (v Vec2) Mul(sx, sy float64) Vec2 { return Vec2{X: v.X * sx, Y: v.Y * sy} }

// Normalize returns the unit vector of v, or fallback when v has zero length.
func (v Vec2) Normalize(fallback Vec2) Vec2 {
	l := v.Len()
	if l == 0 {
		return fallback
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

// Distance computes distance between two vectors.
func Distance(a, b Vec2) float64 { return math.Hypot(b.X-a.X, b.Y-a.Y) }
