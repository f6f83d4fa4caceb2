package protocol

import (
	"errors"
	"reflect"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	lines := []string{
		"GoodbyeWallBall boardA RIGHT 5 5 1 1",
		"GoodbyeWallBall board_2 TOP 19.75 0.25 -3.125 -40.0625",
		"HelloWallBall LEFT 0.25005 7.5 12 -0.5",
		"GoodbyePortalBall other alpha 5.5 8.5 -1.75 33",
		"HelloPortalBall alpha 5.5 8.5 -1.75 33",
		"HelloPortalBall _p0 0.1 0.2 0.30000000000000004 -199.99999",
		"Set boardname: Flippers",
		"JoinWalls right boardB boardA",
		"disconnectwalls: left boardA",
		"Connected: a b _c",
		"Disconnected: boardA",
		"restart boardA",
	}

	for _, line := range lines {
		m, err := Parse(line)
		if err != nil {
			t.Errorf("Parse(%q) failed: %v", line, err)
			continue
		}
		if got := m.String(); got != line {
			t.Errorf("round trip mismatch: want %q, got %q", line, got)
		}
	}
}

func TestSerializeThenParse(t *testing.T) {
	msgs := []Message{
		GoodbyeWallBall{Board: "b", Wall: Bottom, Kinematics: Kinematics{X: 1.0 / 3, Y: 19.75, VX: -0.1, VY: 2e-7}},
		HelloPortalBall{Portal: "p", Kinematics: Kinematics{X: -0, Y: 10, VX: 150.123456789, VY: -7}},
	}
	for _, m := range msgs {
		parsed, err := Parse(m.String())
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", m.String(), err)
		}
		if !reflect.DeepEqual(parsed, m) {
			t.Errorf("expected %#v, got %#v", m, parsed)
		}
		if parsed.String() != m.String() {
			t.Errorf("re-serialized %q differs from %q", parsed.String(), m.String())
		}
	}
}

func TestParseJoinWallsFields(t *testing.T) {
	m, err := Parse("JoinWalls right boardB boardA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	j, ok := m.(JoinWalls)
	if !ok {
		t.Fatalf("expected JoinWalls, got %T", m)
	}
	if j.Wall != Right || j.Peer != "boardB" || j.Board != "boardA" {
		t.Errorf("unexpected fields: %+v", j)
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	lines := []string{
		"",
		"GoodbyeWallBall boardA RIGHT 5 5 1",
		"GoodbyeWallBall boardA MIDDLE 5 5 1 1",
		"GoodbyeWallBall 9board RIGHT 5 5 1 1",
		"HelloWallBall LEFT five 5 1 1",
		"HelloWallBall LEFT NaN 5 1 1",
		"Set name: x",
		"Disconnected:",
		"Teleport a b",
	}
	for _, line := range lines {
		_, err := Parse(line)
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Errorf("Parse(%q) expected *ParseError, got %v", line, err)
		}
	}
}

func TestOpposite(t *testing.T) {
	pairs := map[WallSide]WallSide{Top: Bottom, Bottom: Top, Left: Right, Right: Left}
	for w, want := range pairs {
		if got := w.Opposite(); got != want {
			t.Errorf("%s.Opposite() = %s, want %s", w, got, want)
		}
	}
}
