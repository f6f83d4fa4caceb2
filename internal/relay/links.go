package relay

import (
	"sort"
	"sync"

	"github.com/pingball/backend/internal/models"
	"github.com/pingball/backend/internal/protocol"
)

// Endpoint is one wall of one board.
type Endpoint struct {
	Board string
	Wall  protocol.WallSide
}

// Pair is two endpoints joined to each other.
type Pair struct {
	A Endpoint
	B Endpoint
}

// Links is the bidirectional wall routing table.
type Links struct {
	mu    sync.RWMutex
	peers map[Endpoint]Endpoint
}

func NewLinks() *Links {
	return &Links{peers: make(map[Endpoint]Endpoint)}
}

// JoinHorizontal places left to the left of right. It returns the new link
// and the links that had to be broken first.
func (l *Links) JoinHorizontal(left, right string) (Pair, []Pair) {
	return l.join(Endpoint{left, protocol.Right}, Endpoint{right, protocol.Left})
}

// JoinVertical places top above bottom.
func (l *Links) JoinVertical(top, bottom string) (Pair, []Pair) {
	return l.join(Endpoint{top, protocol.Bottom}, Endpoint{bottom, protocol.Top})
}

func (l *Links) join(a, b Endpoint) (Pair, []Pair) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var broken []Pair
	for _, e := range []Endpoint{a, b} {
		if p, ok := l.breakLocked(e); ok {
			broken = append(broken, p)
		}
	}
	l.peers[a] = b
	l.peers[b] = a
	return Pair{A: a, B: b}, broken
}

// Lookup returns the endpoint joined to board's wall.
func (l *Links) Lookup(board string, wall protocol.WallSide) (Endpoint, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.peers[Endpoint{board, wall}]
	return e, ok
}

// Break removes the link on board's wall, if any.
func (l *Links) Break(board string, wall protocol.WallSide) (Pair, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.breakLocked(Endpoint{board, wall})
}

func (l *Links) breakLocked(e Endpoint) (Pair, bool) {
	peer, ok := l.peers[e]
	if !ok {
		return Pair{}, false
	}
	delete(l.peers, e)
	delete(l.peers, peer)
	return Pair{A: e, B: peer}, true
}

// BreakAll removes every link touching board.
func (l *Links) BreakAll(board string) []Pair {
	l.mu.Lock()
	defer l.mu.Unlock()

	var broken []Pair
	for _, w := range protocol.Walls {
		if p, ok := l.breakLocked(Endpoint{board, w}); ok {
			broken = append(broken, p)
		}
	}
	return broken
}

// All reports each link once, sorted by first board.
func (l *Links) All() []models.Link {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.Link, 0, len(l.peers)/2)
	for a, b := range l.peers {
		switch a.Wall {
		case protocol.Right:
			out = append(out, models.Link{Orientation: "h", First: a.Board, FirstWall: a.Wall.Lower(), Second: b.Board, SecondWall: b.Wall.Lower()})
		case protocol.Bottom:
			out = append(out, models.Link{Orientation: "v", First: a.Board, FirstWall: a.Wall.Lower(), Second: b.Board, SecondWall: b.Wall.Lower()})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].First != out[j].First {
			return out[i].First < out[j].First
		}
		return out[i].Orientation < out[j].Orientation
	})
	return out
}
