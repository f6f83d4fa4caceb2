package relay

import (
	"testing"

	"github.com/pingball/backend/internal/protocol"
)

func TestLinksJoinAndLookup(t *testing.T) {
	l := NewLinks()
	p, broken := l.JoinHorizontal("A", "B")
	if len(broken) != 0 {
		t.Errorf("first join broke %v", broken)
	}
	if p.A != (Endpoint{"A", protocol.Right}) || p.B != (Endpoint{"B", protocol.Left}) {
		t.Errorf("JoinHorizontal pair = %+v", p)
	}

	e, ok := l.Lookup("A", protocol.Right)
	if !ok || e != (Endpoint{"B", protocol.Left}) {
		t.Errorf("Lookup(A, RIGHT) = %v, %v", e, ok)
	}
	e, ok = l.Lookup("B", protocol.Left)
	if !ok || e != (Endpoint{"A", protocol.Right}) {
		t.Errorf("Lookup(B, LEFT) = %v, %v", e, ok)
	}
	if _, ok := l.Lookup("A", protocol.Left); ok {
		t.Error("A LEFT should be unlinked")
	}
}

func TestLinksRejoinSamePair(t *testing.T) {
	l := NewLinks()
	l.JoinVertical("A", "B")
	_, broken := l.JoinVertical("A", "B")
	if len(broken) != 1 {
		t.Fatalf("rejoin broke %d links, want 1", len(broken))
	}
	if _, ok := l.Lookup("B", protocol.Top); !ok {
		t.Error("link missing after rejoin")
	}
}

func TestLinksSelfWrap(t *testing.T) {
	l := NewLinks()
	l.JoinHorizontal("A", "A")
	e, ok := l.Lookup("A", protocol.Right)
	if !ok || e != (Endpoint{"A", protocol.Left}) {
		t.Errorf("Lookup(A, RIGHT) = %v, %v", e, ok)
	}
	if got := len(l.BreakAll("A")); got != 1 {
		t.Errorf("BreakAll broke %d, want 1", got)
	}
}

func TestLinksAll(t *testing.T) {
	l := NewLinks()
	l.JoinHorizontal("B", "C")
	l.JoinVertical("A", "B")

	all := l.All()
	if len(all) != 2 {
		t.Fatalf("All() = %+v", all)
	}
	if all[0].First != "A" || all[0].Orientation != "v" || all[0].SecondWall != "top" {
		t.Errorf("All()[0] = %+v", all[0])
	}
	if all[1].First != "B" || all[1].Orientation != "h" || all[1].FirstWall != "right" {
		t.Errorf("All()[1] = %+v", all[1])
	}
}
