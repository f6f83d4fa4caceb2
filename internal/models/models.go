package models

import (
	"database/sql"
	"time"
)

// Relay event types published to subscribers.
const (
	EventBoardConnected    = "board_connected"
	EventBoardDisconnected = "board_disconnected"
	EventWallsJoined       = "walls_joined"
	EventWallsDisconnected = "walls_disconnected"
	EventHandoff           = "handoff"
	EventRestart           = "restart"
)

// Handoff kinds
const (
	HandoffWall   = "wall"
	HandoffPortal = "portal"
)

// RelayEvent is a state change inside the relay, fanned out to event sinks
type RelayEvent struct {
	Type      string    `json:"type"`
	Board     string    `json:"board,omitempty"`
	Peer      string    `json:"peer,omitempty"`
	Wall      string    `json:"wall,omitempty"`
	Handoff   *Handoff  `json:"handoff,omitempty"`
	Roster    []string  `json:"roster,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Handoff records a ball forwarded from one board to another
type Handoff struct {
	ID        int64          `db:"id" json:"id"`
	Kind      string         `db:"kind" json:"kind"`
	FromBoard string         `db:"from_board" json:"from_board"`
	ToBoard   string         `db:"to_board" json:"to_board"`
	Wall      sql.NullString `db:"wall" json:"wall,omitempty"`
	Portal    sql.NullString `db:"portal" json:"portal,omitempty"`
	X         float64        `db:"x" json:"x"`
	Y         float64        `db:"y" json:"y"`
	VX        float64        `db:"vx" json:"vx"`
	VY        float64        `db:"vy" json:"vy"`
	Delivered bool           `db:"delivered" json:"delivered"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

// Link is one joined wall pair as reported by the admin API
type Link struct {
	Orientation string `json:"orientation"`
	First       string `json:"first"`
	FirstWall   string `json:"first_wall"`
	Second      string `json:"second"`
	SecondWall  string `json:"second_wall"`
}

// BoardInfo describes a connected client board
type BoardInfo struct {
	Name        string    `json:"name"`
	Transport   string    `json:"transport"`
	RemoteAddr  string    `json:"remote_addr"`
	ConnectedAt time.Time `json:"connected_at"`
}

// EventRecord is a persisted relay event
type EventRecord struct {
	ID        int64     `db:"id" json:"id"`
	Type      string    `db:"type" json:"type"`
	Board     string    `db:"board" json:"board"`
	Peer      string    `db:"peer" json:"peer,omitempty"`
	Wall      string    `db:"wall" json:"wall,omitempty"`
	Roster    string    `db:"roster" json:"roster,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
