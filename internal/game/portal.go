package game

import (
	"github.com/pingball/backend/internal/geometry"
	"github.com/pingball/backend/internal/protocol"
)

// Portal is shaped like a circle bumper. While its destination board is
// connected it swallows balls and sends them to the destination portal;
// otherwise balls roll straight over it.
type Portal struct {
	gadgetBase
	circle     geometry.Circle
	destBoard  string
	destPortal string
	connected  bool
}

func NewPortal(name string, x, y int, destPortal, destBoard string) *Portal {
	g := &Portal{
		gadgetBase: gadgetBase{name: name, fp: Footprint{X: x, Y: y, W: 1, H: 1}},
		destBoard:  destBoard,
		destPortal: destPortal,
	}
	g.circle = geometry.Circle{Center: g.origin().Plus(geometry.NewVec2(0.5, 0.5)), Radius: 0.5}
	return g
}

func (g *Portal) Kind() string { return "portal" }

func (g *Portal) DestinationBoard() string  { return g.destBoard }
func (g *Portal) DestinationPortal() string { return g.destPortal }
func (g *Portal) Connected() bool           { return g.connected }
func (g *Portal) SetConnected(c bool)       { g.connected = c }

// Center is where balls arriving through this portal appear.
func (g *Portal) Center() geometry.Vec2 { return g.circle.Center }

func (g *Portal) overlaps(b *Ball) bool {
	r := g.circle.Radius + b.Radius
	return b.Position.Minus(g.circle.Center).MagnitudeSquared() < r*r
}

func (g *Portal) TimeToCollision(b *Ball, budget float64) float64 {
	if !g.connected || b.Immune {
		return geometry.Never
	}
	return within(geometry.TimeUntilCircleCollision(g.circle, b.Circle(), b.Velocity()), budget)
}

func (g *Portal) Collide(b *Ball) Outcome {
	v := b.Velocity()
	return Outcome{Departure: &protocol.GoodbyePortalBall{
		Board:  g.destBoard,
		Portal: g.destPortal,
		Kinematics: protocol.Kinematics{
			X: b.Position.X, Y: b.Position.Y, VX: v.X, VY: v.Y,
		},
	}}
}

func (g *Portal) Activate() {}
