package protocol

import (
	"math"
	"strconv"
	"strings"
)

// Parse decodes one protocol line.
func Parse(line string) (Message, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, &ParseError{Line: line, Reason: "empty line"}
	}

	p := parser{line: line, fields: fields}
	switch fields[0] {
	case "GoodbyeWallBall":
		p.arity(7)
		m := GoodbyeWallBall{Board: p.name(1), Wall: p.wall(2), Kinematics: p.kinematics(3)}
		return p.done(m)
	case "HelloWallBall":
		p.arity(6)
		m := HelloWallBall{Wall: p.wall(1), Kinematics: p.kinematics(2)}
		return p.done(m)
	case "GoodbyePortalBall":
		p.arity(7)
		m := GoodbyePortalBall{Board: p.name(1), Portal: p.name(2), Kinematics: p.kinematics(3)}
		return p.done(m)
	case "HelloPortalBall":
		p.arity(6)
		m := HelloPortalBall{Portal: p.name(1), Kinematics: p.kinematics(2)}
		return p.done(m)
	case "Set":
		p.arity(3)
		if p.err == nil && fields[1] != "boardname:" {
			p.fail("expected 'boardname:'")
		}
		return p.done(SetBoardName{Name: p.name(2)})
	case "JoinWalls":
		p.arity(4)
		m := JoinWalls{Wall: p.wall(1), Peer: p.name(2), Board: p.name(3)}
		return p.done(m)
	case "disconnectwalls:":
		p.arity(3)
		m := DisconnectWalls{Wall: p.wall(1), Peer: p.name(2)}
		return p.done(m)
	case "Connected:":
		names := make([]string, 0, len(fields)-1)
		for i := 1; i < len(fields); i++ {
			names = append(names, p.name(i))
		}
		return p.done(Connected{Names: names})
	case "Disconnected:":
		p.arity(2)
		return p.done(Disconnected{Name: p.name(1)})
	case "restart":
		p.arity(2)
		return p.done(Restart{Name: p.name(1)})
	}
	return nil, &ParseError{Line: line, Reason: "unknown message " + strconv.Quote(fields[0])}
}

// parser accumulates the first failure so each case reads as a straight
// sequence of field reads.
type parser struct {
	line   string
	fields []string
	err    *ParseError
}

func (p *parser) fail(reason string) {
	if p.err == nil {
		p.err = &ParseError{Line: p.line, Reason: reason}
	}
}

func (p *parser) arity(n int) {
	if len(p.fields) != n {
		p.fail("expected " + strconv.Itoa(n) + " fields, got " + strconv.Itoa(len(p.fields)))
	}
}

func (p *parser) field(i int) (string, bool) {
	if p.err != nil || i >= len(p.fields) {
		return "", false
	}
	return p.fields[i], true
}

func (p *parser) name(i int) string {
	s, ok := p.field(i)
	if !ok {
		return ""
	}
	if !ValidName(s) {
		p.fail("invalid name " + strconv.Quote(s))
	}
	return s
}

func (p *parser) wall(i int) WallSide {
	s, ok := p.field(i)
	if !ok {
		return ""
	}
	w, err := ParseWallSide(s)
	if err != nil {
		p.fail(err.Error())
	}
	return w
}

func (p *parser) float(i int) float64 {
	s, ok := p.field(i)
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		p.fail("invalid number " + strconv.Quote(s))
		return 0
	}
	return f
}

func (p *parser) kinematics(i int) Kinematics {
	return Kinematics{X: p.float(i), Y: p.float(i + 1), VX: p.float(i + 2), VY: p.float(i + 3)}
}

func (p *parser) done(m Message) (Message, error) {
	if p.err != nil {
		return nil, p.err
	}
	return m, nil
}
