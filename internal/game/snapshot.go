package game

import (
	"math"
	"strings"

	"github.com/pingball/backend/internal/geometry"
	"github.com/pingball/backend/internal/protocol"
)

// BallState is a read-only copy of a ball.
type BallState struct {
	Name     string        `json:"name"`
	Position geometry.Vec2 `json:"position"`
	Velocity geometry.Vec2 `json:"velocity"`
	Immune   bool          `json:"immune,omitempty"`
}

// GadgetState is a read-only copy of a gadget.
type GadgetState struct {
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	Footprint Footprint `json:"footprint"`
	Triggers  []string  `json:"triggers,omitempty"`
	Held      int       `json:"held,omitempty"`
	Flipped   bool      `json:"flipped,omitempty"`
	Connected bool      `json:"connected,omitempty"`
}

// Snapshot is a copy of board state safe to hand to other goroutines.
type Snapshot struct {
	Name    string                       `json:"name"`
	Physics Physics                      `json:"physics"`
	Balls   []BallState                  `json:"balls"`
	Gadgets []GadgetState                `json:"gadgets"`
	Walls   map[protocol.WallSide]string `json:"walls"`
	Drawing string                       `json:"drawing"`
}

func (b *Board) Snapshot() Snapshot {
	s := Snapshot{
		Name:    b.Name,
		Physics: b.physics,
		Walls:   make(map[protocol.WallSide]string, len(b.walls)),
		Drawing: b.String(),
	}
	for _, ball := range b.balls {
		s.Balls = append(s.Balls, BallState{
			Name: ball.Name, Position: ball.Position, Velocity: ball.Velocity(), Immune: ball.Immune,
		})
	}
	for _, g := range b.gadgets {
		gs := GadgetState{Name: g.Name(), Kind: g.Kind(), Footprint: g.Footprint()}
		for _, id := range g.Triggers() {
			gs.Triggers = append(gs.Triggers, b.gadgets[id].Name())
		}
		switch v := g.(type) {
		case *Absorber:
			gs.Held = len(v.queue)
		case *Flipper:
			gs.Flipped = v.Flipped()
		case *Portal:
			gs.Connected = v.Connected()
		}
		s.Gadgets = append(s.Gadgets, gs)
	}
	for _, w := range b.walls {
		s.Walls[w.Side] = w.Peer()
	}
	return s
}

// String draws the board as text: '.' walls carrying linked board names,
// '#' square, 'O' circle, '/' and '\' triangles, '=' absorber, '|' and '-'
// flippers, 'o' portals and '*' balls.
func (b *Board) String() string {
	var grid [BoardHeight][BoardWidth]byte
	for y := range grid {
		for x := range grid[y] {
			grid[y][x] = ' '
		}
	}
	put := func(x, y int, c byte) {
		if x >= 0 && x < BoardWidth && y >= 0 && y < BoardHeight {
			grid[y][x] = c
		}
	}

	for _, g := range b.gadgets {
		fp := g.Footprint()
		switch v := g.(type) {
		case *SquareBumper:
			put(fp.X, fp.Y, '#')
		case *CircleBumper:
			put(fp.X, fp.Y, 'O')
		case *TriangleBumper:
			if v.Orientation()%180 == 0 {
				put(fp.X, fp.Y, '/')
			} else {
				put(fp.X, fp.Y, '\\')
			}
		case *Absorber:
			for y := fp.Y; y < fp.Y+fp.H; y++ {
				for x := fp.X; x < fp.X+fp.W; x++ {
					put(x, y, '=')
				}
			}
		case *Flipper:
			arm := v.Arm()
			d := arm.B.Minus(arm.A)
			c := byte('|')
			if math.Abs(d.X) > math.Abs(d.Y) {
				c = '-'
			}
			for _, f := range []float64{0.25, 0.75} {
				p := arm.A.Plus(d.Times(f))
				x := clampCell(p.X, fp.X, fp.W)
				y := clampCell(p.Y, fp.Y, fp.H)
				put(x, y, c)
			}
		case *Portal:
			put(fp.X, fp.Y, 'o')
		}
	}
	for _, ball := range b.balls {
		put(int(ball.Position.X), int(ball.Position.Y), '*')
	}

	var sb strings.Builder
	sb.WriteString(b.wallLine(protocol.Top, BoardWidth+2))
	sb.WriteByte('\n')
	left := b.wallLine(protocol.Left, BoardHeight+2)
	right := b.wallLine(protocol.Right, BoardHeight+2)
	for y := 0; y < BoardHeight; y++ {
		sb.WriteByte(left[y+1])
		sb.Write(grid[y][:])
		sb.WriteByte(right[y+1])
		sb.WriteByte('\n')
	}
	sb.WriteString(b.wallLine(protocol.Bottom, BoardWidth+2))
	return sb.String()
}

// wallLine is a run of dots with the linked board name written over it.
func (b *Board) wallLine(side protocol.WallSide, n int) string {
	line := []byte(strings.Repeat(".", n))
	if w := b.Wall(side); w != nil && w.Transparent() {
		copy(line[1:n-1], w.Peer())
	}
	return string(line)
}

func clampCell(v float64, lo, size int) int {
	c := int(math.Floor(v))
	if c < lo {
		return lo
	}
	if c > lo+size-1 {
		return lo + size - 1
	}
	return c
}
