package game

import (
	"fmt"
	"math"

	"github.com/pingball/backend/internal/geometry"
)

// Flipper is a 2L arm in a 2x2 box that swings 90 degrees about its pivot
// each time it is activated. A left flipper swings counterclockwise on
// screen when flipping, a right flipper clockwise.
type Flipper struct {
	gadgetBase
	left        bool
	orientation int

	pivot   geometry.Vec2
	restTip geometry.Vec2 // tip position while unflipped

	flipped  bool
	rotating bool
	elapsed  float64
}

func NewFlipper(name string, x, y, orientation int, left bool) (*Flipper, error) {
	switch orientation {
	case 0, 90, 180, 270:
	default:
		return nil, fmt.Errorf("flipper %s: invalid orientation %d", name, orientation)
	}
	g := &Flipper{
		gadgetBase:  gadgetBase{name: name, fp: Footprint{X: x, Y: y, W: FlipperSize, H: FlipperSize}},
		left:        left,
		orientation: orientation,
	}

	pivot, tip := geometry.NewVec2(0, 0), geometry.NewVec2(0, 2)
	if !left {
		pivot, tip = geometry.NewVec2(2, 0), geometry.NewVec2(2, 2)
	}
	center := geometry.NewVec2(1, 1)
	o := g.origin()
	g.pivot = pivot.Minus(center).Rotate(float64(orientation)).Plus(center).Plus(o)
	g.restTip = tip.Minus(center).Rotate(float64(orientation)).Plus(center).Plus(o)
	return g, nil
}

func (g *Flipper) Kind() string {
	if g.left {
		return "leftFlipper"
	}
	return "rightFlipper"
}

func (g *Flipper) Orientation() int { return g.orientation }
func (g *Flipper) Flipped() bool    { return g.flipped }
func (g *Flipper) Rotating() bool   { return g.rotating }

// sign is the rotation direction of the unflipped-to-flipped swing.
func (g *Flipper) sign() float64 {
	if g.left {
		return -1
	}
	return 1
}

// angle is the current rotation of the arm away from its unflipped rest.
func (g *Flipper) angle() float64 {
	full := g.sign() * math.Pi / 2
	if !g.rotating {
		if g.flipped {
			return full
		}
		return 0
	}
	swept := g.sign() * FlipperAngularSpeed * g.elapsed
	if g.flipped {
		return swept
	}
	return full - swept
}

// angularVelocity is zero at rest and ±FlipperAngularSpeed mid-swing.
func (g *Flipper) angularVelocity() float64 {
	if !g.rotating {
		return 0
	}
	if g.flipped {
		return g.sign() * FlipperAngularSpeed
	}
	return -g.sign() * FlipperAngularSpeed
}

// Arm returns the current pivot-to-tip segment.
func (g *Flipper) Arm() geometry.Segment {
	a := g.angle()
	var tip geometry.Vec2
	if a == 0 {
		tip = g.restTip
	} else if a == g.sign()*math.Pi/2 {
		tip = g.restTip.Minus(g.pivot).Rotate(g.sign() * 90).Plus(g.pivot)
	} else {
		tip = g.restTip.RotateAround(g.pivot, a)
	}
	return geometry.Segment{A: g.pivot, B: tip}
}

func (g *Flipper) outline() shapes {
	arm := g.Arm()
	ends := arm.Endpoints()
	return shapes{segments: []geometry.Segment{arm}, circles: ends[:]}
}

// surfaceVelocity is the velocity of the arm at p.
func (g *Flipper) surfaceVelocity(p geometry.Vec2) geometry.Vec2 {
	return p.Minus(g.pivot).LeftNormal().Times(g.angularVelocity())
}

func (g *Flipper) TimeToCollision(b *Ball, budget float64) float64 {
	arm := g.Arm()
	rel := b.Velocity().Minus(g.surfaceVelocity(arm.ClosestPoint(b.Position)))
	return within(g.outline().timeTo(b.Circle(), rel), budget)
}

func (g *Flipper) Collide(b *Ball) Outcome {
	arm := g.Arm()
	vs := g.surfaceVelocity(arm.ClosestPoint(b.Position))
	p := g.outline().hit(b.Circle(), b.Velocity().Minus(vs)).point
	n := b.Position.Minus(p).Normalize()
	if n.IsZero() {
		n = arm.Normal()
	}
	b.SetVelocity(geometry.ReflectMovingSurface(n, g.surfaceVelocity(p), b.Velocity(), FlipperReflection))
	return Outcome{}
}

// Activate starts a swing. A flipper already swinging ignores the trigger.
func (g *Flipper) Activate() {
	if g.rotating {
		return
	}
	g.flipped = !g.flipped
	g.rotating = true
	g.elapsed = 0
}

// Advance moves a swinging arm forward by dt and snaps it to rest at the end.
func (g *Flipper) Advance(dt float64) {
	if !g.rotating {
		return
	}
	g.elapsed += dt
	if g.elapsed >= FlipperRotationTime {
		g.rotating = false
		g.elapsed = 0
	}
}
