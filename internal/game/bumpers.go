package game

import (
	"fmt"

	"github.com/pingball/backend/internal/geometry"
)

// SquareBumper is a 1x1 square that reflects balls perfectly.
type SquareBumper struct {
	gadgetBase
	outline shapes
}

func NewSquareBumper(name string, x, y int) *SquareBumper {
	g := &SquareBumper{gadgetBase: gadgetBase{name: name, fp: Footprint{X: x, Y: y, W: 1, H: 1}}}
	o := g.origin()
	g.outline = polygon(o, o.Plus(geometry.NewVec2(1, 0)), o.Plus(geometry.NewVec2(1, 1)), o.Plus(geometry.NewVec2(0, 1)))
	return g
}

func (g *SquareBumper) Kind() string { return "squareBumper" }

func (g *SquareBumper) TimeToCollision(b *Ball, budget float64) float64 {
	return within(g.outline.timeTo(b.Circle(), b.Velocity()), budget)
}

func (g *SquareBumper) Collide(b *Ball) Outcome {
	bounce(b, g.outline.hit(b.Circle(), b.Velocity()).point, BumperReflection)
	return Outcome{}
}

func (g *SquareBumper) Activate() {}

func (g *SquareBumper) encloses(p geometry.Vec2) bool { return g.outline.encloses(p) }

// CircleBumper is a circle of diameter 1 inscribed in its grid cell.
type CircleBumper struct {
	gadgetBase
	circle geometry.Circle
}

func NewCircleBumper(name string, x, y int) *CircleBumper {
	g := &CircleBumper{gadgetBase: gadgetBase{name: name, fp: Footprint{X: x, Y: y, W: 1, H: 1}}}
	g.circle = geometry.Circle{Center: g.origin().Plus(geometry.NewVec2(0.5, 0.5)), Radius: 0.5}
	return g
}

func (g *CircleBumper) Kind() string { return "circleBumper" }

func (g *CircleBumper) TimeToCollision(b *Ball, budget float64) float64 {
	return within(geometry.TimeUntilCircleCollision(g.circle, b.Circle(), b.Velocity()), budget)
}

func (g *CircleBumper) Collide(b *Ball) Outcome {
	bounce(b, g.circle.Center, BumperReflection)
	return Outcome{}
}

func (g *CircleBumper) Activate() {}

func (g *CircleBumper) encloses(p geometry.Vec2) bool {
	r := g.circle.Radius - boundsTolerance
	return p.Minus(g.circle.Center).MagnitudeSquared() < r*r
}

// TriangleBumper is a right triangle filling half of its cell. Orientation
// turns the hypotenuse clockwise in steps of 90 degrees.
type TriangleBumper struct {
	gadgetBase
	orientation int
	outline     shapes
}

func NewTriangleBumper(name string, x, y, orientation int) (*TriangleBumper, error) {
	g := &TriangleBumper{
		gadgetBase:  gadgetBase{name: name, fp: Footprint{X: x, Y: y, W: 1, H: 1}},
		orientation: orientation,
	}
	o := g.origin()
	corner := func(dx, dy float64) geometry.Vec2 { return o.Plus(geometry.NewVec2(dx, dy)) }

	switch orientation {
	case 0:
		g.outline = polygon(corner(0, 0), corner(1, 0), corner(0, 1))
	case 90:
		g.outline = polygon(corner(0, 0), corner(1, 0), corner(1, 1))
	case 180:
		g.outline = polygon(corner(1, 0), corner(1, 1), corner(0, 1))
	case 270:
		g.outline = polygon(corner(0, 0), corner(1, 1), corner(0, 1))
	default:
		return nil, fmt.Errorf("triangle %s: invalid orientation %d", name, orientation)
	}
	return g, nil
}

func (g *TriangleBumper) Kind() string { return "triangleBumper" }

func (g *TriangleBumper) Orientation() int { return g.orientation }

func (g *TriangleBumper) TimeToCollision(b *Ball, budget float64) float64 {
	return within(g.outline.timeTo(b.Circle(), b.Velocity()), budget)
}

func (g *TriangleBumper) Collide(b *Ball) Outcome {
	bounce(b, g.outline.hit(b.Circle(), b.Velocity()).point, BumperReflection)
	return Outcome{}
}

func (g *TriangleBumper) Activate() {}

func (g *TriangleBumper) encloses(p geometry.Vec2) bool { return g.outline.encloses(p) }
