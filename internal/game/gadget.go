package game

import (
	"math"

	"github.com/pingball/backend/internal/geometry"
	"github.com/pingball/backend/internal/protocol"
)

// Footprint is the integer grid rectangle a gadget occupies.
type Footprint struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Contains reports whether a ball lies entirely inside the footprint.
func (f Footprint) Contains(b *Ball) bool {
	return float64(f.X) <= b.Position.X-b.Radius &&
		b.Position.X+b.Radius <= float64(f.X+f.W) &&
		float64(f.Y) <= b.Position.Y-b.Radius &&
		b.Position.Y+b.Radius <= float64(f.Y+f.H)
}

// Outcome describes what a collision did to the ball.
type Outcome struct {
	// Departure is set when the ball left the board through a portal.
	Departure *protocol.GoodbyePortalBall
}

// Gadget is the fixed capability set shared by every board fixture.
// The unexported methods keep the set of variants closed to this package.
type Gadget interface {
	Name() string
	Kind() string
	Footprint() Footprint
	// TimeToCollision returns when b will hit the gadget, or geometry.Never
	// when that is later than budget.
	TimeToCollision(b *Ball, budget float64) float64
	Collide(b *Ball) Outcome
	Activate()
	Triggers() []int

	addTrigger(id int)
}

// gadgetBase holds the state every variant shares.
type gadgetBase struct {
	name     string
	fp       Footprint
	triggers []int
}

func (g *gadgetBase) Name() string         { return g.name }
func (g *gadgetBase) Footprint() Footprint { return g.fp }
func (g *gadgetBase) Triggers() []int      { return g.triggers }
func (g *gadgetBase) addTrigger(id int)    { g.triggers = append(g.triggers, id) }

func (g *gadgetBase) origin() geometry.Vec2 {
	return geometry.NewVec2(float64(g.fp.X), float64(g.fp.Y))
}

// shapes is the collision outline of a gadget: segments plus point or round
// circles at their ends.
type shapes struct {
	segments []geometry.Segment
	circles  []geometry.Circle
}

// contact describes the closest approach found by shapes.hit.
type contact struct {
	time  float64
	point geometry.Vec2
}

// polygon builds closed outline shapes from corner points.
func polygon(points ...geometry.Vec2) shapes {
	var s shapes
	for i, p := range points {
		next := points[(i+1)%len(points)]
		s.segments = append(s.segments, geometry.Segment{A: p, B: next})
		s.circles = append(s.circles, geometry.Circle{Center: p})
	}
	return s
}

// timeTo returns the earliest contact time of a ball moving with velocity v.
func (s shapes) timeTo(ball geometry.Circle, v geometry.Vec2) float64 {
	best := geometry.Never
	for _, seg := range s.segments {
		if t := geometry.TimeUntilSegmentCollision(seg, ball, v); t < best {
			best = t
		}
	}
	for _, c := range s.circles {
		if t := geometry.TimeUntilCircleCollision(c, ball, v); t < best {
			best = t
		}
	}
	return best
}

// hit finds the part of the outline the ball is touching and the point on it
// closest to the ball centre.
func (s shapes) hit(ball geometry.Circle, v geometry.Vec2) contact {
	best := contact{time: geometry.Never}
	for _, seg := range s.segments {
		if t := geometry.TimeUntilSegmentCollision(seg, ball, v); t < best.time {
			best = contact{time: t, point: seg.ClosestPoint(ball.Center)}
		}
	}
	for _, c := range s.circles {
		if t := geometry.TimeUntilCircleCollision(c, ball, v); t < best.time {
			best = contact{time: t, point: c.Center}
		}
	}
	if best.time == geometry.Never {
		best.point = s.nearest(ball.Center)
	}
	return best
}

func (s shapes) nearest(p geometry.Vec2) geometry.Vec2 {
	var best geometry.Vec2
	bestDist := geometry.Never
	for _, seg := range s.segments {
		q := seg.ClosestPoint(p)
		if d := q.Minus(p).MagnitudeSquared(); d < bestDist {
			best, bestDist = q, d
		}
	}
	for _, c := range s.circles {
		if d := c.Center.Minus(p).MagnitudeSquared(); d < bestDist {
			best, bestDist = c.Center, d
		}
	}
	return best
}

// encloses reports whether p lies strictly inside the convex outline.
func (s shapes) encloses(p geometry.Vec2) bool {
	sign := 0.0
	for _, seg := range s.segments {
		c := seg.B.Minus(seg.A).Cross(p.Minus(seg.A))
		if math.Abs(c) <= boundsTolerance {
			return false
		}
		if sign == 0 {
			sign = c
		} else if (c > 0) != (sign > 0) {
			return false
		}
	}
	return len(s.segments) > 0
}

// solid is implemented by the bumpers, whose interiors no ball centre may
// ever enter.
type solid interface {
	Gadget
	encloses(p geometry.Vec2) bool
}

// within clips t to the budget.
func within(t, budget float64) float64 {
	if t > budget {
		return geometry.Never
	}
	return t
}

// bounce reflects b off point p of a stationary outline.
func bounce(b *Ball, p geometry.Vec2, coeff float64) {
	b.SetVelocity(geometry.ReflectCircle(p, b.Position, b.Velocity(), coeff))
}
