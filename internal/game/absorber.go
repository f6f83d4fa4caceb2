package game

import (
	"fmt"

	"github.com/pingball/backend/internal/geometry"
)

// Absorber captures every ball that touches it and holds it until triggered.
// Captured balls are released oldest first.
type Absorber struct {
	gadgetBase
	outline shapes
	queue   []*Ball
}

func NewAbsorber(name string, x, y, w, h int) (*Absorber, error) {
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("absorber %s: invalid size %dx%d", name, w, h)
	}
	g := &Absorber{gadgetBase: gadgetBase{name: name, fp: Footprint{X: x, Y: y, W: w, H: h}}}
	o := g.origin()
	fw, fh := float64(w), float64(h)
	g.outline = polygon(o, o.Plus(geometry.NewVec2(fw, 0)), o.Plus(geometry.NewVec2(fw, fh)), o.Plus(geometry.NewVec2(0, fh)))
	return g, nil
}

func (g *Absorber) Kind() string { return "absorber" }

// Held returns the captured balls, oldest first.
func (g *Absorber) Held() []*Ball {
	return append([]*Ball(nil), g.queue...)
}

// ParkPosition is where a captured ball waits: the bottom right corner, lifted slightly.
func (g *Absorber) ParkPosition() geometry.Vec2 {
	return geometry.NewVec2(
		float64(g.fp.X+g.fp.W)-BallRadius,
		float64(g.fp.Y+g.fp.H)-BallRadius-absorberParkLift,
	)
}

// EjectPosition is where a released ball starts, resting on the top edge.
func (g *Absorber) EjectPosition() geometry.Vec2 {
	return geometry.NewVec2(float64(g.fp.X+g.fp.W)-BallRadius, float64(g.fp.Y)-BallRadius)
}

func (g *Absorber) TimeToCollision(b *Ball, budget float64) float64 {
	if g.fp.Contains(b) {
		return geometry.Never
	}
	return within(g.outline.timeTo(b.Circle(), b.Velocity()), budget)
}

func (g *Absorber) Collide(b *Ball) Outcome {
	b.Position = g.ParkPosition()
	b.SetVelocity(geometry.Vec2{})
	for _, held := range g.queue {
		if held == b {
			return Outcome{}
		}
	}
	g.queue = append(g.queue, b)
	return Outcome{}
}

// Activate launches the oldest captured ball straight up. An empty absorber does nothing.
func (g *Absorber) Activate() {
	if len(g.queue) == 0 {
		return
	}
	b := g.queue[0]
	g.queue[0] = nil
	g.queue = g.queue[1:]
	b.Position = g.EjectPosition()
	b.SetVelocity(geometry.NewVec2(0, -AbsorberEjectSpeed))
}

// release forgets b, used when a held ball leaves the board some other way.
func (g *Absorber) release(b *Ball) {
	for i, held := range g.queue {
		if held == b {
			g.queue = append(g.queue[:i], g.queue[i+1:]...)
			return
		}
	}
}
