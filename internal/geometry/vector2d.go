package geometry

import "math"

// Vec2 is a 2D vector in board units. Arithmetic is exact float64 so that
// kinematic snapshots survive serialization unchanged.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func NewVec2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

func (v Vec2) Plus(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec2) Minus(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vec2) Times(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

func (v Vec2) Dot(o Vec2) float64 {
	return v.X*o.X + v.Y*o.Y
}

// Cross returns the z component of the 3D cross product.
func (v Vec2) Cross(o Vec2) float64 {
	return v.X*o.Y - v.Y*o.X
}

func (v Vec2) Magnitude() float64 {
	return math.Hypot(v.X, v.Y)
}

func (v Vec2) MagnitudeSquared() float64 {
	return v.X*v.X + v.Y*v.Y
}

func (v Vec2) Normalize() Vec2 {
	m := v.Magnitude()
	if m == 0 {
		return Vec2{}
	}
	return v.Times(1.0 / m)
}

func (v Vec2) LeftNormal() Vec2 {
	return Vec2{X: -v.Y, Y: v.X}
}

// Rotate turns v by degrees using (x cos - y sin, x sin + y cos). With y
// pointing down the turn appears clockwise on screen. Quarter turns are exact.
func (v Vec2) Rotate(degrees float64) Vec2 {
	switch math.Mod(math.Mod(degrees, 360)+360, 360) {
	case 0:
		return v
	case 90:
		return Vec2{X: -v.Y, Y: v.X}
	case 180:
		return Vec2{X: -v.X, Y: -v.Y}
	case 270:
		return Vec2{X: v.Y, Y: -v.X}
	}
	return v.RotateRadians(degrees * math.Pi / 180)
}

func (v Vec2) RotateRadians(rad float64) Vec2 {
	sin, cos := math.Sincos(rad)
	return Vec2{
		X: v.X*cos - v.Y*sin,
		Y: v.X*sin + v.Y*cos,
	}
}

// RotateAround rotates v by rad about pivot.
func (v Vec2) RotateAround(pivot Vec2, rad float64) Vec2 {
	return v.Minus(pivot).RotateRadians(rad).Plus(pivot)
}

func (v Vec2) Invert() Vec2 {
	return Vec2{X: -v.X, Y: -v.Y}
}


func (v Vec2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

func (v Vec2) IsEqualTo(o Vec2) bool {
	return v.X == o.X && v.Y == o.Y
}

// IsNear reports whether v and o differ by at most eps on each axis.
func (v Vec2) IsNear(o Vec2, eps float64) bool {
	return math.Abs(v.X-o.X) <= eps && math.Abs(v.Y-o.Y) <= eps
}

// Clamp scales v down so its magnitude does not exceed max, keeping its heading.
func Clamp(v Vec2, max float64) Vec2 {
	m := v.Magnitude()
	if m <= max || m == 0 {
		return v
	}
	return v.Times(max / m)
}
