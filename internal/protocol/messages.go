// Package protocol defines the newline-delimited text messages exchanged
// between board clients and the relay.
package protocol

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// WallSide identifies one of the four boundary walls of a board.
type WallSide string

const (
	Top    WallSide = "TOP"
	Bottom WallSide = "BOTTOM"
	Left   WallSide = "LEFT"
	Right  WallSide = "RIGHT"
)

// Walls lists the sides in scan order.
var Walls = [4]WallSide{Top, Bottom, Left, Right}

// Opposite returns the wall a ball enters through after leaving by w.
func (w WallSide) Opposite() WallSide {
	switch w {
	case Top:
		return Bottom
	case Bottom:
		return Top
	case Left:
		return Right
	case Right:
		return Left
	}
	return w
}

// Lower is the spelling used by relay join instructions.
func (w WallSide) Lower() string {
	return strings.ToLower(string(w))
}

// ParseWallSide accepts either spelling of a wall name.
func ParseWallSide(s string) (WallSide, error) {
	w := WallSide(strings.ToUpper(s))
	switch w {
	case Top, Bottom, Left, Right:
		return w, nil
	}
	return "", fmt.Errorf("unknown wall %q", s)
}

var namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z_0-9]*$`)

// ValidName reports whether s is a legal board, portal or gadget name.
func ValidName(s string) bool {
	return namePattern.MatchString(s)
}

// ParseError is returned for any line that is not a well-formed message.
type ParseError struct {
	Line   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed message %q: %s", e.Line, e.Reason)
}

// Message is any line of the wire protocol.
type Message interface {
	String() string
}

// Kinematics is the exact state of a ball crossing between boards.
type Kinematics struct {
	X  float64
	Y  float64
	VX float64
	VY float64
}

func (k Kinematics) String() string {
	return strings.Join([]string{
		formatFloat(k.X), formatFloat(k.Y), formatFloat(k.VX), formatFloat(k.VY),
	}, " ")
}

// GoodbyeWallBall is sent by a board when a ball leaves through a transparent wall.
type GoodbyeWallBall struct {
	Board string
	Wall  WallSide
	Kinematics
}

func (m GoodbyeWallBall) String() string {
	return fmt.Sprintf("GoodbyeWallBall %s %s %s", m.Board, m.Wall, m.Kinematics)
}

// HelloWallBall is delivered to the board a ball enters; Wall is the entry side.
type HelloWallBall struct {
	Wall WallSide
	Kinematics
}

func (m HelloWallBall) String() string {
	return fmt.Sprintf("HelloWallBall %s %s", m.Wall, m.Kinematics)
}

// GoodbyePortalBall is sent by a board when a ball drops into a connected portal.
type GoodbyePortalBall struct {
	Board  string
	Portal string
	Kinematics
}

func (m GoodbyePortalBall) String() string {
	return fmt.Sprintf("GoodbyePortalBall %s %s %s", m.Board, m.Portal, m.Kinematics)
}

// HelloPortalBall is delivered to the board that owns the destination portal.
type HelloPortalBall struct {
	Portal string
	Kinematics
}

func (m HelloPortalBall) String() string {
	return fmt.Sprintf("HelloPortalBall %s %s", m.Portal, m.Kinematics)
}

// SetBoardName registers a connection under a board name.
type SetBoardName struct {
	Name string
}

func (m SetBoardName) String() string {
	return "Set boardname: " + m.Name
}

// JoinWalls tells Board that its Wall is now linked to Peer, the board on
// that side.
type JoinWalls struct {
	Wall  WallSide
	Peer  string
	Board string
}

func (m JoinWalls) String() string {
	return fmt.Sprintf("JoinWalls %s %s %s", m.Wall.Lower(), m.Peer, m.Board)
}

// DisconnectWalls tells a board that its Wall is no longer linked to Peer.
type DisconnectWalls struct {
	Wall WallSide
	Peer string
}

func (m DisconnectWalls) String() string {
	return fmt.Sprintf("disconnectwalls: %s %s", m.Wall.Lower(), m.Peer)
}

// Connected is the roster of every board currently registered with the relay.
type Connected struct {
	Names []string
}

func (m Connected) String() string {
	if len(m.Names) == 0 {
		return "Connected:"
	}
	return "Connected: " + strings.Join(m.Names, " ")
}

// Disconnected announces that a board left the relay.
type Disconnected struct {
	Name string
}

func (m Disconnected) String() string {
	return "Disconnected: " + m.Name
}

// Restart asks the relay to drop every wall link of a board.
type Restart struct {
	Name string
}

func (m Restart) String() string {
	return "restart " + m.Name
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
