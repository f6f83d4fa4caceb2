package game

import (
	"fmt"
	"log"

	"github.com/pingball/backend/internal/geometry"
	"github.com/pingball/backend/internal/protocol"
)

// InvariantError reports a board state that Update must never produce.
type InvariantError struct {
	Board  string
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("board %s: invariant violated: %s", e.Board, e.Reason)
}

// Event categories in scan priority order.
const (
	kindCorner = iota
	kindWall
	kindBall
	kindGadget
)

var kindNames = [...]string{"corner", "wall", "ball", "gadget"}

type collisionCandidate struct {
	kind      int
	ball      *Ball
	target    int // corner, wall, ball or gadget index
	time      float64
	departure bool
}

// better reports whether c should be applied before best. Earlier wins; at
// equal time a departure beats a reflection and otherwise the first found
// (higher priority) candidate stays.
func (c collisionCandidate) better(best *collisionCandidate) bool {
	if best == nil {
		return true
	}
	if c.time != best.time {
		return c.time < best.time
	}
	return c.departure && !best.departure
}

// Update advances the board by dt seconds.
//
// Collisions are applied one at a time in real time order: the earliest
// qualifying event within the remaining budget is found, every live ball is
// moved to that instant, the event is applied, and the scan starts over.
// Balls resting inside an absorber take no part. Departing balls leave the
// live set as soon as they depart. Flippers then advance by the full dt.
// Update panics with *InvariantError if a ball ends up off the board or
// with its centre inside a bumper.
func (b *Board) Update(dt float64) {
	b.Events = b.Events[:0]

	remaining := b.predictCollisions(dt, dt, kindCorner, kindWall, kindBall, kindGadget)
	b.moveBalls(remaining)

	for _, g := range b.gadgets {
		if f, ok := g.(*Flipper); ok {
			f.Advance(dt)
		}
	}

	b.clearImmunity()
	b.checkRep()
}

// predictCollisions resolves events of the given kinds until none falls
// within budget, and returns the time left over.
func (b *Board) predictCollisions(dt, budget float64, kinds ...int) float64 {
	for i := 0; i < MaxCollisionsPerUpdate; i++ {
		c := b.earliest(budget, kinds)
		if c == nil {
			return budget
		}
		b.moveBalls(c.time)
		budget -= c.time
		b.resolve(*c, dt-budget)
	}
	// Balls locked in a zero-time cycle would be pushed through whatever
	// they are pinned against; hold them still for the rest of the tick.
	log.Printf("[BOARD] %s: collision limit reached with %.6fs left", b.Name, budget)
	return 0
}

// live returns the balls taking part in this scan.
func (b *Board) live() []*Ball {
	out := make([]*Ball, 0, len(b.balls))
	for _, ball := range b.balls {
		if !b.absorbed(ball) {
			out = append(out, ball)
		}
	}
	return out
}

func (b *Board) absorbed(ball *Ball) bool {
	for _, g := range b.gadgets {
		if a, ok := g.(*Absorber); ok && a.Footprint().Contains(ball) {
			return true
		}
	}
	return false
}

func (b *Board) earliest(budget float64, kinds []int) *collisionCandidate {
	balls := b.live()
	var best *collisionCandidate
	consider := func(c collisionCandidate) {
		if c.time <= budget && c.better(best) {
			cc := c
			best = &cc
		}
	}

	for _, kind := range kinds {
		for bi, ball := range balls {
			switch kind {
			case kindCorner:
				for ci, corner := range b.corners {
					t := geometry.TimeUntilCircleCollision(corner, ball.Circle(), ball.Velocity())
					consider(collisionCandidate{kind: kind, ball: ball, target: ci, time: t})
				}
			case kindWall:
				for wi, w := range b.walls {
					t := w.TimeToCollision(ball, budget)
					consider(collisionCandidate{kind: kind, ball: ball, target: wi, time: t, departure: w.Transparent()})
				}
			case kindBall:
				for oi := bi + 1; oi < len(balls); oi++ {
					other := balls[oi]
					t := geometry.TimeUntilBallBallCollision(ball.Circle(), ball.Velocity(), other.Circle(), other.Velocity())
					consider(collisionCandidate{kind: kind, ball: ball, target: b.ballIndex(other), time: t})
				}
			case kindGadget:
				for gi, g := range b.gadgets {
					t := g.TimeToCollision(ball, budget)
					_, portal := g.(*Portal)
					consider(collisionCandidate{kind: kind, ball: ball, target: gi, time: t, departure: portal})
				}
			}
		}
	}
	return best
}

func (b *Board) ballIndex(ball *Ball) int {
	for i, other := range b.balls {
		if other == ball {
			return i
		}
	}
	return -1
}

func (b *Board) resolve(c collisionCandidate, at float64) {
	ball := c.ball
	ev := CollisionEvent{Type: kindNames[c.kind], Ball: ball.Name, At: at, Speed: ball.Speed()}

	switch c.kind {
	case kindCorner:
		ev.Target = fmt.Sprintf("corner%d", c.target)
		ball.SetVelocity(geometry.ReflectCircle(b.corners[c.target].Center, ball.Position, ball.Velocity(), 1.0))

	case kindWall:
		w := b.walls[c.target]
		ev.Target = string(w.Side)
		if w.Transparent() {
			v := ball.Velocity()
			b.wallDepartures = append(b.wallDepartures, protocol.GoodbyeWallBall{
				Board:      b.Name,
				Wall:       w.Side,
				Kinematics: protocol.Kinematics{X: ball.Position.X, Y: ball.Position.Y, VX: v.X, VY: v.Y},
			})
			b.removeBall(ball)
		} else {
			ball.SetVelocity(geometry.ReflectSegment(w.Segment(), ball.Velocity(), 1.0))
		}

	case kindBall:
		other := b.balls[c.target]
		ev.Target = other.Name
		v1, v2 := geometry.ReflectBalls(ball.Position, ball.Velocity(), other.Position, other.Velocity())
		ball.SetVelocity(v1)
		other.SetVelocity(v2)

	case kindGadget:
		g := b.gadgets[c.target]
		ev.Target = g.Name()
		out := g.Collide(ball)
		if out.Departure != nil {
			b.portalDepartures = append(b.portalDepartures, *out.Departure)
			b.removeBall(ball)
		}
		for _, id := range g.Triggers() {
			b.gadgets[id].Activate()
		}
	}

	b.Events = append(b.Events, ev)
}

// moveBalls integrates every live ball over dt.
func (b *Board) moveBalls(dt float64) {
	if dt <= 0 {
		return
	}
	for _, ball := range b.live() {
		ball.Update(dt, b.gravity, b.physics.Friction1, b.physics.Friction2)
	}
}

// clearImmunity lifts portal immunity from balls that no longer touch any portal.
func (b *Board) clearImmunity() {
	for _, ball := range b.balls {
		if !ball.Immune {
			continue
		}
		touching := false
		for _, g := range b.gadgets {
			if p, ok := g.(*Portal); ok && p.overlaps(ball) {
				touching = true
				break
			}
		}
		ball.Immune = touching
	}
}

func (b *Board) checkRep() {
	for _, ball := range b.balls {
		p := ball.Position
		if p.X < -boundsTolerance || p.X > BoardWidth+boundsTolerance ||
			p.Y < -boundsTolerance || p.Y > BoardHeight+boundsTolerance {
			panic(&InvariantError{Board: b.Name, Reason: fmt.Sprintf("ball %s out of bounds at %v", ball.Name, p)})
		}
		if g, ok := b.solidAt(p); ok {
			panic(&InvariantError{Board: b.Name, Reason: fmt.Sprintf("ball %s inside %s at %v", ball.Name, g.Name(), p)})
		}
	}
}
