package geometry

import "math"

// Never is the time-to-contact reported when two bodies will not touch.
var Never = math.Inf(1)

// Segment is a line segment from A to B.
type Segment struct {
	A Vec2 `json:"a"`
	B Vec2 `json:"b"`
}

// Circle is a circle; a zero radius models a point such as a segment end.
type Circle struct {
	Center Vec2    `json:"center"`
	Radius float64 `json:"radius"`
}

func (s Segment) Length() float64 {
	return s.B.Minus(s.A).Magnitude()
}

// Normal returns a unit normal of s. Its sign is arbitrary.
func (s Segment) Normal() Vec2 {
	return s.B.Minus(s.A).LeftNormal().Normalize()
}

// ClosestPoint returns the point of s nearest to p.
func (s Segment) ClosestPoint(p Vec2) Vec2 {
	d := s.B.Minus(s.A)
	l2 := d.MagnitudeSquared()
	if l2 == 0 {
		return s.A
	}
	u := p.Minus(s.A).Dot(d) / l2
	if u < 0 {
		u = 0
	} else if u > 1 {
		u = 1
	}
	return s.A.Plus(d.Times(u))
}

// Endpoints returns zero-radius circles at both ends of s.
func (s Segment) Endpoints() [2]Circle {
	return [2]Circle{{Center: s.A}, {Center: s.B}}
}

// TimeUntilCircleCollision returns the earliest time at which ball, moving at
// velocity v, touches the fixed circle. An overlapping ball that is still
// approaching reports 0; a receding ball reports Never.
func TimeUntilCircleCollision(fixed Circle, ball Circle, v Vec2) float64 {
	d := ball.Center.Minus(fixed.Center)
	r := fixed.Radius + ball.Radius
	approach := d.Dot(v)
	if approach >= 0 {
		return Never
	}
	c := d.MagnitudeSquared() - r*r
	if c <= 0 {
		return 0
	}
	a := v.MagnitudeSquared()
	b := 2 * approach
	disc := b*b - 4*a*c
	if disc < 0 {
		return Never
	}
	t := (-b - math.Sqrt(disc)) / (2 * a)
	if t < 0 {
		return 0
	}
	return t
}

// TimeUntilSegmentCollision returns the earliest time at which ball, moving at
// velocity v, touches the interior of seg. Segment ends are not considered;
// callers pair a segment with circles from Endpoints.
func TimeUntilSegmentCollision(seg Segment, ball Circle, v Vec2) float64 {
	length := seg.Length()
	if length == 0 {
		return Never
	}
	dir := seg.B.Minus(seg.A).Times(1 / length)
	n := dir.LeftNormal()
	dist := ball.Center.Minus(seg.A).Dot(n)
	if dist < 0 {
		n = n.Invert()
		dist = -dist
	}
	vn := v.Dot(n)
	if vn >= 0 {
		return Never
	}

	t := (dist - ball.Radius) / -vn
	if t < 0 {
		t = 0
	}
	contact := ball.Center.Plus(v.Times(t))
	u := contact.Minus(seg.A).Dot(dir)
	if u < 0 || u > length {
		return Never
	}
	return t
}

// TimeUntilBallBallCollision returns the earliest time at which two moving
// balls touch.
func TimeUntilBallBallCollision(b1 Circle, v1 Vec2, b2 Circle, v2 Vec2) float64 {
	return TimeUntilCircleCollision(b1, b2, v2.Minus(v1))
}

// reflectAlong reverses the component of v along the unit normal n and scales
// it by coeff, leaving the tangential component untouched.
func reflectAlong(n Vec2, v Vec2, coeff float64) Vec2 {
	vn := v.Dot(n)
	return v.Minus(n.Times((1 + coeff) * vn))
}

// ReflectSegment returns the velocity of a ball bouncing off seg.
func ReflectSegment(seg Segment, v Vec2, coeff float64) Vec2 {
	return reflectAlong(seg.Normal(), v, coeff)
}

// ReflectCircle returns the velocity of a ball centred at ballCenter bouncing
// off a circle centred at center.
func ReflectCircle(center, ballCenter Vec2, v Vec2, coeff float64) Vec2 {
	n := ballCenter.Minus(center).Normalize()
	if n.IsZero() {
		return v.Times(-coeff)
	}
	return reflectAlong(n, v, coeff)
}

// ReflectBalls resolves an elastic collision between two balls of equal mass.
func ReflectBalls(c1 Vec2, v1 Vec2, c2 Vec2, v2 Vec2) (Vec2, Vec2) {
	n := c2.Minus(c1).Normalize()
	if n.IsZero() {
		return v1, v2
	}
	p := v1.Minus(v2).Dot(n)
	return v1.Minus(n.Times(p)), v2.Plus(n.Times(p))
}

// ReflectMovingSurface bounces v off a surface with unit normal n that moves
// with surfaceVelocity at the contact point. A ball already separating from
// the surface keeps its velocity.
func ReflectMovingSurface(n Vec2, surfaceVelocity Vec2, v Vec2, coeff float64) Vec2 {
	rel := v.Minus(surfaceVelocity)
	if rel.Dot(n) >= 0 {
		return v
	}
	return surfaceVelocity.Plus(reflectAlong(n, rel, coeff))
}
