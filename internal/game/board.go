package game

import (
	"errors"
	"fmt"

	"github.com/solarlune/resolv"

	"github.com/pingball/backend/internal/geometry"
	"github.com/pingball/backend/internal/protocol"
)

var (
	ErrDuplicateName  = errors.New("duplicate name")
	ErrUnknownGadget  = errors.New("unknown gadget")
	ErrOutOfBounds    = errors.New("outside the board")
	ErrGadgetsOverlap = errors.New("gadget footprints overlap")
	ErrInsideGadget   = errors.New("ball inside a bumper")
)

// Physics holds the per-board gravity and friction constants.
type Physics struct {
	Gravity   float64 `json:"gravity"`
	Friction1 float64 `json:"friction1"`
	Friction2 float64 `json:"friction2"`
}

func DefaultPhysics() Physics {
	return Physics{Gravity: DefaultGravity, Friction1: DefaultFriction1, Friction2: DefaultFriction2}
}

// CollisionEvent records one collision applied during Update.
type CollisionEvent struct {
	Type   string  `json:"type"` // "corner", "wall", "ball", "gadget"
	Ball   string  `json:"ball"`
	Target string  `json:"target"`
	At     float64 `json:"at"`    // seconds into the update
	Speed  float64 `json:"speed"` // impact speed
}

// Board owns balls, gadgets and walls and advances them in fixed ticks.
// It is not safe for concurrent use; one goroutine drives Update.
type Board struct {
	Name    string
	physics Physics
	gravity geometry.Vec2

	balls   []*Ball
	gadgets []Gadget
	index   map[string]int
	walls   [4]*Wall
	corners [4]geometry.Circle

	wallDepartures   []protocol.GoodbyeWallBall
	portalDepartures []protocol.GoodbyePortalBall

	// Events holds the collisions applied by the most recent Update.
	Events []CollisionEvent

	space    *resolv.Space
	arrivals int
}

// footprintScale maps board cells to resolv cells so that shrunken objects
// never reach into a neighbouring cell.
const footprintScale = 2

func NewBoard(name string, p Physics) *Board {
	b := &Board{
		Name:    name,
		physics: p,
		gravity: geometry.NewVec2(0, p.Gravity),
		index:   make(map[string]int),
		space:   resolv.NewSpace(BoardWidth*footprintScale, BoardHeight*footprintScale, footprintScale, footprintScale),
	}
	for i, side := range protocol.Walls {
		b.walls[i] = newWall(side)
	}
	w, h := float64(BoardWidth), float64(BoardHeight)
	b.corners = [4]geometry.Circle{
		{Center: geometry.NewVec2(0, 0)},
		{Center: geometry.NewVec2(w, 0)},
		{Center: geometry.NewVec2(0, h)},
		{Center: geometry.NewVec2(w, h)},
	}
	return b
}

func (b *Board) Physics() Physics { return b.physics }

// AddBall places a ball on the board.
func (b *Board) AddBall(ball *Ball) error {
	p := ball.Position
	if p.X < 0 || p.X > BoardWidth || p.Y < 0 || p.Y > BoardHeight {
		return fmt.Errorf("ball %s at %v: %w", ball.Name, p, ErrOutOfBounds)
	}
	if g, ok := b.solidAt(p); ok {
		return fmt.Errorf("ball %s in %s: %w", ball.Name, g.Name(), ErrInsideGadget)
	}
	b.balls = append(b.balls, ball)
	return nil
}

// solidAt returns the bumper whose interior contains p.
func (b *Board) solidAt(p geometry.Vec2) (Gadget, bool) {
	for _, g := range b.gadgets {
		if s, ok := g.(solid); ok && s.encloses(p) {
			return g, true
		}
	}
	return nil, false
}

// AddGadget registers g. Its footprint must lie on the board and must not
// overlap any gadget already present.
func (b *Board) AddGadget(g Gadget) error {
	if _, ok := b.index[g.Name()]; ok {
		return fmt.Errorf("gadget %s: %w", g.Name(), ErrDuplicateName)
	}
	fp := g.Footprint()
	if fp.X < 0 || fp.Y < 0 || fp.X+fp.W > BoardWidth || fp.Y+fp.H > BoardHeight {
		return fmt.Errorf("gadget %s at %+v: %w", g.Name(), fp, ErrOutOfBounds)
	}
	if a, ok := g.(*Absorber); ok && fp.Y == 0 {
		return fmt.Errorf("absorber %s on the top row cannot eject: %w", a.Name(), ErrOutOfBounds)
	}
	if s, ok := g.(solid); ok {
		for _, ball := range b.balls {
			if s.encloses(ball.Position) {
				return fmt.Errorf("gadget %s covers ball %s: %w", g.Name(), ball.Name, ErrInsideGadget)
			}
		}
	}

	obj := resolv.NewObject(
		float64(fp.X*footprintScale)+0.5,
		float64(fp.Y*footprintScale)+0.5,
		float64(fp.W*footprintScale)-1,
		float64(fp.H*footprintScale)-1,
		"gadget",
	)
	b.space.Add(obj)
	if hit := obj.Check(0, 0, "gadget"); hit != nil {
		b.space.Remove(obj)
		return fmt.Errorf("gadget %s at %+v: %w", g.Name(), fp, ErrGadgetsOverlap)
	}

	b.index[g.Name()] = len(b.gadgets)
	b.gadgets = append(b.gadgets, g)
	return nil
}

// Connect adds a trigger edge: a collision with from activates to.
// Self edges and cycles are allowed.
func (b *Board) Connect(from, to string) error {
	src, ok := b.index[from]
	if !ok {
		return fmt.Errorf("trigger source %s: %w", from, ErrUnknownGadget)
	}
	dst, ok := b.index[to]
	if !ok {
		return fmt.Errorf("trigger target %s: %w", to, ErrUnknownGadget)
	}
	b.gadgets[src].addTrigger(dst)
	return nil
}

func (b *Board) Gadget(name string) (Gadget, bool) {
	i, ok := b.index[name]
	if !ok {
		return nil, false
	}
	return b.gadgets[i], true
}

func (b *Board) Gadgets() []Gadget {
	return append([]Gadget(nil), b.gadgets...)
}

func (b *Board) Balls() []*Ball {
	return append([]*Ball(nil), b.balls...)
}

func (b *Board) Wall(side protocol.WallSide) *Wall {
	for _, w := range b.walls {
		if w.Side == side {
			return w
		}
	}
	return nil
}

// Activate fires a gadget as if it had been triggered.
func (b *Board) Activate(name string) error {
	g, ok := b.Gadget(name)
	if !ok {
		return fmt.Errorf("activate %s: %w", name, ErrUnknownGadget)
	}
	g.Activate()
	return nil
}

// JoinWall makes side transparent towards peer.
func (b *Board) JoinWall(side protocol.WallSide, peer string) {
	if w := b.Wall(side); w != nil {
		w.Join(peer)
	}
}

// UnjoinWall makes side solid again if it is linked to peer.
// An empty peer unjoins unconditionally.
func (b *Board) UnjoinWall(side protocol.WallSide, peer string) {
	w := b.Wall(side)
	if w == nil {
		return
	}
	if peer == "" || w.Peer() == peer {
		w.Unjoin()
	}
}

// SetConnectedBoards connects exactly the portals whose destination board is
// in names.
func (b *Board) SetConnectedBoards(names []string) {
	online := make(map[string]bool, len(names))
	for _, n := range names {
		online[n] = true
	}
	for _, g := range b.gadgets {
		if p, ok := g.(*Portal); ok {
			p.SetConnected(online[p.DestinationBoard()])
		}
	}
}

// DisconnectBoard cuts every portal and wall link that leads to name.
func (b *Board) DisconnectBoard(name string) {
	for _, g := range b.gadgets {
		if p, ok := g.(*Portal); ok && p.DestinationBoard() == name {
			p.SetConnected(false)
		}
	}
	for _, w := range b.walls {
		if w.Peer() == name {
			w.Unjoin()
		}
	}
}

// ArriveAtWall adds a ball entering through side. A ball whose entry point
// lies inside a bumper is dropped and nil is returned.
func (b *Board) ArriveAtWall(m protocol.HelloWallBall) *Ball {
	w := b.Wall(m.Wall)
	if w == nil {
		return nil
	}
	p := w.entry(m.X, m.Y)
	if _, ok := b.solidAt(p); ok {
		return nil
	}
	ball := NewBall(b.nextArrivalName(), p, geometry.NewVec2(m.VX, m.VY))
	b.balls = append(b.balls, ball)
	return ball
}

// ArriveAtPortal adds a ball emerging from the named portal. The ball is
// immune to portals until it has rolled clear. Unknown portals drop the ball.
func (b *Board) ArriveAtPortal(m protocol.HelloPortalBall) *Ball {
	g, ok := b.Gadget(m.Portal)
	if !ok {
		return nil
	}
	p, ok := g.(*Portal)
	if !ok {
		return nil
	}
	ball := NewBall(b.nextArrivalName(), p.Center(), geometry.NewVec2(m.VX, m.VY))
	ball.Immune = true
	b.balls = append(b.balls, ball)
	return ball
}

func (b *Board) nextArrivalName() string {
	b.arrivals++
	return fmt.Sprintf("%s_in%d", b.Name, b.arrivals)
}

// DrainWallDepartures returns and clears the queued wall departures.
func (b *Board) DrainWallDepartures() []protocol.GoodbyeWallBall {
	out := b.wallDepartures
	b.wallDepartures = nil
	return out
}

// DrainPortalDepartures returns and clears the queued portal departures.
func (b *Board) DrainPortalDepartures() []protocol.GoodbyePortalBall {
	out := b.portalDepartures
	b.portalDepartures = nil
	return out
}

// removeBall drops ball from the live set and from any absorber holding it.
func (b *Board) removeBall(ball *Ball) {
	for i, other := range b.balls {
		if other == ball {
			b.balls = append(b.balls[:i], b.balls[i+1:]...)
			break
		}
	}
	for _, g := range b.gadgets {
		if a, ok := g.(*Absorber); ok {
			a.release(ball)
		}
	}
}
