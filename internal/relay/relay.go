// Package relay forwards ball handoffs and connectivity changes between
// board clients.
package relay

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pingball/backend/internal/models"
	"github.com/pingball/backend/internal/protocol"
	"github.com/pingball/backend/internal/transport"
)

var (
	ErrUnknownBoard = errors.New("board is not connected")
	ErrNoLink       = errors.New("wall is not linked")
)

const (
	sendBuffer     = 256
	outboundBuffer = 1024
	eventBuffer    = 1024
)

// EventSink receives relay events. Implementations must not block for long.
type EventSink interface {
	Publish(ctx context.Context, ev models.RelayEvent) error
}

type client struct {
	id          string
	kind        string
	conn        transport.Conn
	send        chan string
	done        chan struct{}
	closeOnce   sync.Once
	connectedAt time.Time

	// guarded by Relay.mu
	name string
}

func (c *client) enqueue(line string) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- line:
		return true
	default:
		log.Printf("[RELAY] Send buffer full for %s, dropping %q", c.id, line)
		return false
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

type delivery struct {
	to      string
	line    string
	handoff *models.Handoff
}

type rosterChange struct {
	name      string
	connected bool
}

// Relay tracks connected boards by name and routes messages between them.
type Relay struct {
	mu      sync.RWMutex
	clients map[string]*client
	boards  map[string]*client

	links    *Links
	outbound chan delivery
	roster   chan rosterChange
	events   chan models.RelayEvent
	sinks    []EventSink
}

func New(sinks ...EventSink) *Relay {
	return &Relay{
		clients:  make(map[string]*client),
		boards:   make(map[string]*client),
		links:    NewLinks(),
		outbound: make(chan delivery, outboundBuffer),
		roster:   make(chan rosterChange, outboundBuffer),
		events:   make(chan models.RelayEvent, eventBuffer),
		sinks:    sinks,
	}
}

// Run drives the sender, the roster broadcaster and event fan-out until ctx
// is cancelled, then closes every connection.
func (r *Relay) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); r.sendLoop(ctx) }()
	go func() { defer wg.Done(); r.broadcastLoop(ctx) }()
	go func() { defer wg.Done(); r.eventLoop(ctx) }()
	wg.Wait()

	r.mu.Lock()
	for _, c := range r.clients {
		c.close()
	}
	r.mu.Unlock()
}

// ListenAndServe accepts TCP board connections on addr.
func (r *Relay) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	log.Printf("[RELAY] Listening for boards on %s", l.Addr())
	return transport.Serve(ctx, l, func(conn transport.Conn) {
		r.Serve(conn, "tcp")
	})
}

// Serve runs one board connection until it closes.
func (r *Relay) Serve(conn transport.Conn, kind string) {
	c := &client{
		id:          uuid.NewString(),
		kind:        kind,
		conn:        conn,
		send:        make(chan string, sendBuffer),
		done:        make(chan struct{}),
		connectedAt: time.Now(),
	}
	r.mu.Lock()
	r.clients[c.id] = c
	r.mu.Unlock()
	log.Printf("[RELAY] Connection %s from %s (%s)", c.id, conn.RemoteAddr(), kind)

	go r.writePump(c)
	r.readPump(c)
	r.unregister(c)
}

func (r *Relay) readPump(c *client) {
	defer c.close()
	for {
		line, err := c.conn.ReadLine()
		if err != nil {
			select {
			case <-c.done:
			default:
				log.Printf("[RELAY] Connection %s closed: %v", c.id, err)
			}
			return
		}
		if line == "" {
			continue
		}
		r.handle(c, line)
	}
}

func (r *Relay) writePump(c *client) {
	for {
		select {
		case line := <-c.send:
			if err := c.conn.WriteLine(line); err != nil {
				log.Printf("[RELAY] Write to %s failed: %v", c.id, err)
				c.close()
				return
			}
		case <-c.done:
			return
		}
	}
}

func (r *Relay) handle(c *client, line string) {
	msg, err := protocol.Parse(line)
	if err != nil {
		log.Printf("[RELAY] %s: %v", c.id, err)
		return
	}

	switch m := msg.(type) {
	case protocol.SetBoardName:
		r.register(c, m.Name)
	case protocol.GoodbyeWallBall:
		h := newHandoff(models.HandoffWall, m.Board, m.Kinematics)
		h.Wall = sql.NullString{String: string(m.Wall), Valid: true}
		peer, ok := r.links.Lookup(m.Board, m.Wall)
		if !ok {
			r.emit(models.RelayEvent{Type: models.EventHandoff, Board: m.Board, Wall: m.Wall.Lower(), Handoff: h})
			return
		}
		h.ToBoard = peer.Board
		r.forward(delivery{
			to:      peer.Board,
			line:    protocol.HelloWallBall{Wall: peer.Wall, Kinematics: m.Kinematics}.String(),
			handoff: h,
		})
	case protocol.GoodbyePortalBall:
		h := newHandoff(models.HandoffPortal, r.nameOf(c), m.Kinematics)
		h.ToBoard = m.Board
		h.Portal = sql.NullString{String: m.Portal, Valid: true}
		r.forward(delivery{
			to:      m.Board,
			line:    protocol.HelloPortalBall{Portal: m.Portal, Kinematics: m.Kinematics}.String(),
			handoff: h,
		})
	case protocol.Restart:
		r.Restart(m.Name)
	default:
		log.Printf("[RELAY] %s sent unexpected message %q", c.id, line)
	}
}

func newHandoff(kind, from string, k protocol.Kinematics) *models.Handoff {
	return &models.Handoff{Kind: kind, FromBoard: from, X: k.X, Y: k.Y, VX: k.VX, VY: k.VY}
}

func (r *Relay) nameOf(c *client) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return c.name
}

func (r *Relay) register(c *client, name string) {
	r.mu.Lock()
	if c.name == name {
		r.mu.Unlock()
		return
	}
	var replaced *client
	if old, ok := r.boards[name]; ok {
		replaced = old
		old.name = ""
	}
	if c.name != "" && r.boards[c.name] == c {
		delete(r.boards, c.name)
		r.dropBoardLocked(c.name)
	}
	c.name = name
	r.boards[name] = c
	r.announce(rosterChange{name: name, connected: true})
	r.mu.Unlock()

	if replaced != nil {
		log.Printf("[RELAY] Board %s reconnected, closing %s", name, replaced.id)
		replaced.close()
	}
	log.Printf("[RELAY] Board %s registered on %s", name, c.id)
}

func (r *Relay) unregister(c *client) {
	r.mu.Lock()
	delete(r.clients, c.id)
	name := ""
	if c.name != "" && r.boards[c.name] == c {
		name = c.name
		delete(r.boards, c.name)
		r.dropBoardLocked(name)
	}
	r.mu.Unlock()

	if name != "" {
		log.Printf("[RELAY] Board %s disconnected", name)
	}
}

// dropBoardLocked breaks every link of a board that has just left the
// roster. r.mu must be held so no join can slip in between.
func (r *Relay) dropBoardLocked(name string) {
	r.notifyBroken(r.links.BreakAll(name))
	r.announce(rosterChange{name: name, connected: false})
}

func (r *Relay) announce(ch rosterChange) {
	select {
	case r.roster <- ch:
	default:
		log.Printf("[RELAY] Roster queue full, dropping change for %s", ch.name)
	}
}

func (r *Relay) forward(d delivery) {
	select {
	case r.outbound <- d:
	default:
		log.Printf("[RELAY] Outbound queue full, dropping %q for %s", d.line, d.to)
	}
}

func (r *Relay) emit(ev models.RelayEvent) {
	if len(r.sinks) == 0 {
		return
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	select {
	case r.events <- ev:
	default:
		log.Printf("[RELAY] Event queue full, dropping %s", ev.Type)
	}
}

func (r *Relay) sendLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case d := <-r.outbound:
			r.mu.RLock()
			c := r.boards[d.to]
			r.mu.RUnlock()

			delivered := c != nil && c.enqueue(d.line)
			if !delivered {
				log.Printf("[RELAY] No route to %s, dropping %q", d.to, d.line)
			}
			if d.handoff != nil {
				d.handoff.Delivered = delivered
				r.emit(models.RelayEvent{Type: models.EventHandoff, Board: d.handoff.FromBoard, Peer: d.to, Handoff: d.handoff})
			}
		}
	}
}

func (r *Relay) broadcastLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ch := <-r.roster:
			names := r.Names()
			line := protocol.Disconnected{Name: ch.name}.String()
			evType := models.EventBoardDisconnected
			if ch.connected {
				line = protocol.Connected{Names: names}.String()
				evType = models.EventBoardConnected
			}

			r.mu.RLock()
			for _, c := range r.boards {
				c.enqueue(line)
			}
			r.mu.RUnlock()
			r.emit(models.RelayEvent{Type: evType, Board: ch.name, Roster: names})
		}
	}
}

func (r *Relay) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-r.events:
			for _, s := range r.sinks {
				if err := s.Publish(ctx, ev); err != nil {
					log.Printf("[RELAY] Event sink failed for %s: %v", ev.Type, err)
				}
			}
		}
	}
}

// Names returns the registered board names, sorted.
func (r *Relay) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.boards))
	for n := range r.boards {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Boards describes every registered board.
func (r *Relay) Boards() []models.BoardInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.BoardInfo, 0, len(r.boards))
	for n, c := range r.boards {
		out = append(out, models.BoardInfo{
			Name:        n,
			Transport:   c.kind,
			RemoteAddr:  c.conn.RemoteAddr(),
			ConnectedAt: c.connectedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Links reports the current wall links.
func (r *Relay) Links() []models.Link {
	return r.links.All()
}

// JoinHorizontal links left's right wall to right's left wall.
func (r *Relay) JoinHorizontal(left, right string) error {
	return r.join(left, right, r.links.JoinHorizontal)
}

// JoinVertical links top's bottom wall to bottom's top wall.
func (r *Relay) JoinVertical(top, bottom string) error {
	return r.join(top, bottom, r.links.JoinVertical)
}

// join holds r.mu from the roster check until every notification is queued,
// so a board that disconnects concurrently either fails the check or has its
// new link broken after the JoinWalls lines.
func (r *Relay) join(first, second string, link func(string, string) (Pair, []Pair)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, n := range []string{first, second} {
		if _, ok := r.boards[n]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownBoard, n)
		}
	}
	p, broken := link(first, second)
	r.notifyBroken(broken)

	a, b := p.A, p.B
	r.forward(delivery{to: a.Board, line: protocol.JoinWalls{Wall: a.Wall, Peer: b.Board, Board: a.Board}.String()})
	r.forward(delivery{to: b.Board, line: protocol.JoinWalls{Wall: b.Wall, Peer: a.Board, Board: b.Board}.String()})
	r.emit(models.RelayEvent{Type: models.EventWallsJoined, Board: a.Board, Wall: a.Wall.Lower(), Peer: b.Board})
	log.Printf("[RELAY] Joined %s %s to %s %s", a.Board, a.Wall.Lower(), b.Board, b.Wall.Lower())
	return nil
}

// Break unlinks board's wall and tells both sides.
func (r *Relay) Break(board string, wall protocol.WallSide) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.links.Break(board, wall)
	if !ok {
		return fmt.Errorf("%w: %s %s", ErrNoLink, board, wall.Lower())
	}
	r.notifyBroken([]Pair{p})
	return nil
}

// Restart unlinks all four walls of board.
func (r *Relay) Restart(board string) {
	r.mu.Lock()
	broken := r.links.BreakAll(board)
	r.notifyBroken(broken)
	r.mu.Unlock()

	r.emit(models.RelayEvent{Type: models.EventRestart, Board: board})
	log.Printf("[RELAY] Restart %s, %d link(s) broken", board, len(broken))
}

func (r *Relay) notifyBroken(pairs []Pair) {
	for _, p := range pairs {
		r.forward(delivery{to: p.A.Board, line: protocol.DisconnectWalls{Wall: p.A.Wall, Peer: p.B.Board}.String()})
		r.forward(delivery{to: p.B.Board, line: protocol.DisconnectWalls{Wall: p.B.Wall, Peer: p.A.Board}.String()})
		r.emit(models.RelayEvent{Type: models.EventWallsDisconnected, Board: p.A.Board, Wall: p.A.Wall.Lower(), Peer: p.B.Board})
	}
}
