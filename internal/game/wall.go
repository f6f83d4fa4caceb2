package game

import (
	"math"

	"github.com/pingball/backend/internal/geometry"
	"github.com/pingball/backend/internal/protocol"
)

// Wall is one edge of the board. A solid wall reflects balls; a wall joined
// to a peer board lets them through.
type Wall struct {
	Side    protocol.WallSide
	segment geometry.Segment
	peer    string
}

func newWall(side protocol.WallSide) *Wall {
	w, h := float64(BoardWidth), float64(BoardHeight)
	var seg geometry.Segment
	switch side {
	case protocol.Top:
		seg = geometry.Segment{A: geometry.NewVec2(0, 0), B: geometry.NewVec2(w, 0)}
	case protocol.Bottom:
		seg = geometry.Segment{A: geometry.NewVec2(0, h), B: geometry.NewVec2(w, h)}
	case protocol.Left:
		seg = geometry.Segment{A: geometry.NewVec2(0, 0), B: geometry.NewVec2(0, h)}
	case protocol.Right:
		seg = geometry.Segment{A: geometry.NewVec2(w, 0), B: geometry.NewVec2(w, h)}
	}
	return &Wall{Side: side, segment: seg}
}

func (w *Wall) Segment() geometry.Segment { return w.segment }

// Peer is the linked board, or "" for a solid wall.
func (w *Wall) Peer() string { return w.peer }

func (w *Wall) Transparent() bool { return w.peer != "" }

func (w *Wall) Join(peer string) { w.peer = peer }

func (w *Wall) Unjoin() { w.peer = "" }

func (w *Wall) TimeToCollision(b *Ball, budget float64) float64 {
	return within(geometry.TimeUntilSegmentCollision(w.segment, b.Circle(), b.Velocity()), budget)
}

// entry places an arriving ball just inside this wall, keeping the other coordinate.
func (w *Wall) entry(x, y float64) geometry.Vec2 {
	x = math.Min(math.Max(x, BallRadius), BoardWidth-BallRadius)
	y = math.Min(math.Max(y, BallRadius), BoardHeight-BallRadius)
	switch w.Side {
	case protocol.Top:
		return geometry.NewVec2(x, WallArrivalInset)
	case protocol.Bottom:
		return geometry.NewVec2(x, BoardHeight-WallArrivalInset)
	case protocol.Left:
		return geometry.NewVec2(WallArrivalInset, y)
	default:
		return geometry.NewVec2(BoardWidth-WallArrivalInset, y)
	}
}
