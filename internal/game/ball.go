package game

import (
	"math"

	"github.com/pingball/backend/internal/geometry"
)

// Ball is a moving ball owned by exactly one board at a time.
type Ball struct {
	Name     string        `json:"name"`
	Position geometry.Vec2 `json:"position"`
	Radius   float64       `json:"radius"`
	Immune   bool          `json:"immune"`
	velocity geometry.Vec2
}

// NewBall creates a standard-size ball. The velocity is capped.
func NewBall(name string, position, velocity geometry.Vec2) *Ball {
	b := &Ball{Name: name, Position: position, Radius: BallRadius}
	b.SetVelocity(velocity)
	return b
}

func (b *Ball) Velocity() geometry.Vec2 {
	return b.velocity
}

// SetVelocity is the only way to change a ball's velocity; it enforces MaxSpeed.
func (b *Ball) SetVelocity(v geometry.Vec2) {
	b.velocity = geometry.Clamp(v, MaxSpeed)
}

func (b *Ball) Speed() float64 {
	return b.velocity.Magnitude()
}

func (b *Ball) Circle() geometry.Circle {
	return geometry.Circle{Center: b.Position, Radius: b.Radius}
}

// Update integrates gravity and friction over dt. A zero dt leaves the ball untouched.
func (b *Ball) Update(dt float64, gravity geometry.Vec2, friction1, friction2 float64) {
	if dt == 0 {
		return
	}
	b.Position = b.Position.
		Plus(b.velocity.Times(dt)).
		Plus(gravity.Times(0.5 * dt * dt))

	v := b.velocity.Plus(gravity.Times(dt))
	scale := 1 - friction1*dt - friction2*v.Magnitude()*dt
	scale = math.Max(scale, 0)
	b.SetVelocity(v.Times(scale))
}
