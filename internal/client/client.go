// Package client runs one board against a relay connection.
package client

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/pingball/backend/internal/game"
	"github.com/pingball/backend/internal/protocol"
	"github.com/pingball/backend/internal/transport"
)

const inboxSize = 256

// Options controls the tick loop.
type Options struct {
	Period   time.Duration
	SubSteps int
}

func DefaultOptions() Options {
	return Options{Period: 50 * time.Millisecond, SubSteps: 20}
}

// BoardFactory builds the board in its initial state. It is called once by
// New and again on every Restart.
type BoardFactory func() (*game.Board, error)

// Client owns a board and exchanges handoffs with the relay.
type Client struct {
	name     string
	newBoard BoardFactory
	board    *game.Board
	conn     transport.Conn
	opts     Options

	// roster is the last board list heard from the relay; a restarted board
	// starts from it so its portals stay connected.
	roster []string

	portalArrivals chan protocol.HelloPortalBall
	wallArrivals   chan protocol.HelloWallBall
	connectivity   chan protocol.Message

	// mu serializes ticks against snapshot readers.
	mu sync.RWMutex
}

func New(newBoard BoardFactory, conn transport.Conn, opts Options) (*Client, error) {
	board, err := newBoard()
	if err != nil {
		return nil, fmt.Errorf("build board: %w", err)
	}
	if opts.Period <= 0 {
		opts.Period = DefaultOptions().Period
	}
	if opts.SubSteps <= 0 {
		opts.SubSteps = 1
	}
	return &Client{
		name:           board.Name,
		newBoard:       newBoard,
		board:          board,
		conn:           conn,
		opts:           opts,
		portalArrivals: make(chan protocol.HelloPortalBall, inboxSize),
		wallArrivals:   make(chan protocol.HelloWallBall, inboxSize),
		connectivity:   make(chan protocol.Message, inboxSize),
	}, nil
}

// Run registers the board with the relay and ticks until ctx is cancelled or
// the connection drops.
func (c *Client) Run(ctx context.Context) error {
	if err := c.conn.WriteLine(protocol.SetBoardName{Name: c.name}.String()); err != nil {
		return fmt.Errorf("register board %s: %w", c.name, err)
	}
	log.Printf("[CLIENT] Board %s registered with relay at %s", c.name, c.conn.RemoteAddr())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- c.listen(ctx)
	}()

	ticker := time.NewTicker(c.opts.Period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.conn.Close()
			return nil
		case err := <-listenErr:
			return fmt.Errorf("relay connection lost: %w", err)
		case <-ticker.C:
			c.Step()
		}
	}
}

// listen classifies inbound lines until the connection fails.
func (c *Client) listen(ctx context.Context) error {
	for {
		line, err := c.conn.ReadLine()
		if err != nil {
			return err
		}
		if line == "" {
			continue
		}
		msg, err := protocol.Parse(line)
		if err != nil {
			log.Printf("[CLIENT] %v", err)
			continue
		}

		switch m := msg.(type) {
		case protocol.HelloPortalBall:
			select {
			case c.portalArrivals <- m:
			case <-ctx.Done():
				return ctx.Err()
			}
		case protocol.HelloWallBall:
			select {
			case c.wallArrivals <- m:
			case <-ctx.Done():
				return ctx.Err()
			}
		case protocol.JoinWalls, protocol.DisconnectWalls, protocol.Connected, protocol.Disconnected:
			select {
			case c.connectivity <- m:
			case <-ctx.Done():
				return ctx.Err()
			}
		default:
			log.Printf("[CLIENT] Ignoring %q", line)
		}
	}
}

// Step runs one tick: apply pending relay input, advance the board, then
// send departures.
func (c *Client) Step() {
	c.mu.Lock()
	c.applyConnectivity()
	c.applyArrivals()
	dt := c.opts.Period.Seconds() / float64(c.opts.SubSteps)
	for i := 0; i < c.opts.SubSteps; i++ {
		c.board.Update(dt)
	}
	walls := c.board.DrainWallDepartures()
	portals := c.board.DrainPortalDepartures()
	c.mu.Unlock()

	for _, m := range walls {
		c.send(m)
	}
	for _, m := range portals {
		c.send(m)
	}
}

func (c *Client) applyConnectivity() {
	for {
		select {
		case msg := <-c.connectivity:
			switch m := msg.(type) {
			case protocol.JoinWalls:
				if m.Board != c.name {
					log.Printf("[CLIENT] JoinWalls addressed to %s, applying to %s", m.Board, c.name)
				}
				c.board.JoinWall(m.Wall, m.Peer)
			case protocol.DisconnectWalls:
				c.board.UnjoinWall(m.Wall, m.Peer)
			case protocol.Connected:
				c.roster = append(c.roster[:0], m.Names...)
				c.board.SetConnectedBoards(m.Names)
			case protocol.Disconnected:
				c.roster = without(c.roster, m.Name)
				c.board.DisconnectBoard(m.Name)
			}
		default:
			return
		}
	}
}

func (c *Client) applyArrivals() {
	for {
		select {
		case m := <-c.wallArrivals:
			if c.board.ArriveAtWall(m) == nil {
				log.Printf("[CLIENT] Entry on %s %s is blocked, ball lost", c.name, m.Wall.Lower())
			}
		case m := <-c.portalArrivals:
			if c.board.ArriveAtPortal(m) == nil {
				log.Printf("[CLIENT] No portal %s on %s, ball lost", m.Portal, c.name)
			}
		default:
			return
		}
	}
}

// send is best-effort; a failed write loses the ball.
func (c *Client) send(m protocol.Message) {
	if err := c.conn.WriteLine(m.String()); err != nil {
		log.Printf("[CLIENT] Dropping %q: %v", m.String(), err)
	}
}

func without(names []string, name string) []string {
	out := names[:0]
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}

// Restart replaces the board with a freshly built one, every wall solid and
// every ball back at its starting point, then re-registers and asks the
// relay to unlink this board's walls.
func (c *Client) Restart() error {
	fresh, err := c.newBoard()
	if err != nil {
		return fmt.Errorf("rebuild board %s: %w", c.name, err)
	}
	if fresh.Name != c.name {
		return fmt.Errorf("rebuilt board is named %s, want %s", fresh.Name, c.name)
	}

	c.mu.Lock()
	fresh.SetConnectedBoards(c.roster)
	c.board = fresh
	c.mu.Unlock()
	log.Printf("[CLIENT] Board %s restarted", c.name)

	if err := c.conn.WriteLine(protocol.SetBoardName{Name: c.name}.String()); err != nil {
		return fmt.Errorf("register board %s: %w", c.name, err)
	}
	return c.conn.WriteLine(protocol.Restart{Name: c.name}.String())
}

// Snapshot returns a copy of the board safe to read from any goroutine.
func (c *Client) Snapshot() game.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.board.Snapshot()
}
