package relay

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pingball/backend/internal/models"
	"github.com/pingball/backend/internal/protocol"
)

type fakeConn struct {
	name string
	in   chan string
	out  chan string
	once sync.Once
	done chan struct{}
}

func newFakeConn(name string) *fakeConn {
	return &fakeConn{
		name: name,
		in:   make(chan string, 16),
		out:  make(chan string, 64),
		done: make(chan struct{}),
	}
}

func (f *fakeConn) ReadLine() (string, error) {
	select {
	case line := <-f.in:
		return line, nil
	case <-f.done:
		return "", io.EOF
	}
}

func (f *fakeConn) WriteLine(line string) error {
	select {
	case <-f.done:
		return io.ErrClosedPipe
	case f.out <- line:
		return nil
	}
}

func (f *fakeConn) Close() error {
	f.once.Do(func() { close(f.done) })
	return nil
}

func (f *fakeConn) RemoteAddr() string { return f.name }

// expect waits for the next line written to f.
func expect(t *testing.T, f *fakeConn, want string) {
	t.Helper()
	select {
	case got := <-f.out:
		if got != want {
			t.Errorf("%s received %q, want %q", f.name, got, want)
		}
	case <-time.After(time.Second):
		t.Errorf("%s received nothing, want %q", f.name, want)
	}
}

// expectUnordered waits for len(want) lines in any order.
func expectUnordered(t *testing.T, f *fakeConn, want ...string) {
	t.Helper()
	pending := make(map[string]int)
	for _, w := range want {
		pending[w]++
	}
	for range want {
		select {
		case got := <-f.out:
			if pending[got] == 0 {
				t.Errorf("%s received unexpected %q", f.name, got)
				continue
			}
			pending[got]--
		case <-time.After(time.Second):
			t.Errorf("%s timed out waiting for %v", f.name, want)
			return
		}
	}
}

// quiet fails if f receives anything within a short window.
func quiet(t *testing.T, f *fakeConn) {
	t.Helper()
	select {
	case got := <-f.out:
		t.Errorf("%s unexpectedly received %q", f.name, got)
	case <-time.After(100 * time.Millisecond):
	}
}

// drain discards lines until f has been idle for a short window.
func drain(f *fakeConn) {
	for {
		select {
		case <-f.out:
		case <-time.After(50 * time.Millisecond):
			return
		}
	}
}

type recordingSink struct {
	mu     sync.Mutex
	events []models.RelayEvent
}

func (s *recordingSink) Publish(_ context.Context, ev models.RelayEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func (s *recordingSink) count(typ string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, ev := range s.events {
		if ev.Type == typ {
			n++
		}
	}
	return n
}

func startRelay(t *testing.T, sinks ...EventSink) *Relay {
	t.Helper()
	r := New(sinks...)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return r
}

func connect(t *testing.T, r *Relay, board string) *fakeConn {
	t.Helper()
	f := newFakeConn(board)
	go r.Serve(f, "test")
	f.in <- protocol.SetBoardName{Name: board}.String()
	waitFor(t, func() bool { return r.registered(board) })
	return f
}

func (r *Relay) registered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.boards[name]
	return ok
}

// collect returns every line f receives until it has been idle for a short window.
func collect(f *fakeConn) []string {
	var lines []string
	for {
		select {
		case line := <-f.out:
			lines = append(lines, line)
		case <-time.After(30 * time.Millisecond):
			return lines
		}
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not reached")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWallHandoffRouting(t *testing.T) {
	r := startRelay(t)
	a := connect(t, r, "boardA")
	b := connect(t, r, "boardB")
	c := connect(t, r, "boardC")
	for _, f := range []*fakeConn{a, b, c} {
		drain(f)
	}

	if err := r.JoinHorizontal("boardA", "boardB"); err != nil {
		t.Fatalf("JoinHorizontal: %v", err)
	}
	expect(t, a, "JoinWalls right boardB boardA")
	expect(t, b, "JoinWalls left boardA boardB")

	a.in <- "GoodbyeWallBall boardA RIGHT 5 5 1 1"
	expect(t, b, "HelloWallBall LEFT 5 5 1 1")
	quiet(t, b)
	quiet(t, a)
	quiet(t, c)

	if err := r.Break("boardA", protocol.Right); err != nil {
		t.Fatalf("Break: %v", err)
	}
	expect(t, a, "disconnectwalls: right boardB")
	expect(t, b, "disconnectwalls: left boardA")

	a.in <- "GoodbyeWallBall boardA RIGHT 5 5 1 1"
	quiet(t, a)
	quiet(t, b)
	quiet(t, c)
}

func TestPortalHandoffRouting(t *testing.T) {
	r := startRelay(t)
	a := connect(t, r, "alpha")
	b := connect(t, r, "beta")
	drain(a)
	drain(b)

	a.in <- "GoodbyePortalBall beta Gate 1.5 2.25 -3 0.5"
	expect(t, b, "HelloPortalBall Gate 1.5 2.25 -3 0.5")
	quiet(t, a)

	a.in <- "GoodbyePortalBall nowhere Gate 1 1 1 1"
	quiet(t, a)
	quiet(t, b)
}

func TestRejoinBreaksPriorLink(t *testing.T) {
	r := startRelay(t)
	a := connect(t, r, "A")
	b := connect(t, r, "B")
	c := connect(t, r, "C")
	for _, f := range []*fakeConn{a, b, c} {
		drain(f)
	}

	if err := r.JoinHorizontal("A", "B"); err != nil {
		t.Fatal(err)
	}
	drain(a)
	drain(b)

	if err := r.JoinHorizontal("A", "C"); err != nil {
		t.Fatal(err)
	}
	expect(t, a, "disconnectwalls: right B")
	expect(t, a, "JoinWalls right C A")
	expect(t, b, "disconnectwalls: left A")
	expect(t, c, "JoinWalls left A C")

	if _, ok := r.links.Lookup("B", protocol.Left); ok {
		t.Error("B LEFT still linked after rejoin")
	}
}

func TestJoinRequiresRegisteredBoards(t *testing.T) {
	r := startRelay(t)
	connect(t, r, "A")
	if err := r.JoinVertical("A", "ghost"); !errors.Is(err, ErrUnknownBoard) {
		t.Errorf("JoinVertical error = %v, want ErrUnknownBoard", err)
	}
	if err := r.Break("A", protocol.Top); !errors.Is(err, ErrNoLink) {
		t.Errorf("Break error = %v, want ErrNoLink", err)
	}
}

func TestRosterBroadcast(t *testing.T) {
	r := startRelay(t)
	a := connect(t, r, "A")
	expect(t, a, "Connected: A")

	b := connect(t, r, "B")
	expect(t, a, "Connected: A B")
	expect(t, b, "Connected: A B")

	b.Close()
	waitFor(t, func() bool { return !r.registered("B") })
	expect(t, a, "Disconnected: B")
}

func TestJoinRacingDisconnectLeavesNoLink(t *testing.T) {
	r := startRelay(t)
	b := connect(t, r, "B")

	for i := 0; i < 30; i++ {
		name := fmt.Sprintf("X%d", i)
		x := connect(t, r, name)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := r.JoinHorizontal(name, "B"); err != nil && !errors.Is(err, ErrUnknownBoard) {
				t.Errorf("JoinHorizontal(%s, B): %v", name, err)
			}
		}()
		go func() {
			defer wg.Done()
			x.Close()
		}()
		wg.Wait()
		waitFor(t, func() bool { return !r.registered(name) })

		if e, ok := r.links.Lookup("B", protocol.Left); ok && e.Board == name {
			t.Fatalf("B LEFT still linked to departed %s", name)
		}
		if _, ok := r.links.Lookup(name, protocol.Right); ok {
			t.Fatalf("departed %s still has a RIGHT link", name)
		}

		joined := false
		for _, line := range collect(b) {
			switch line {
			case protocol.JoinWalls{Wall: protocol.Left, Peer: name, Board: "B"}.String():
				joined = true
			case protocol.DisconnectWalls{Wall: protocol.Left, Peer: name}.String():
				joined = false
			}
		}
		if joined {
			t.Fatalf("B was left joined to departed %s", name)
		}
	}
}

func TestDisconnectBreaksLinks(t *testing.T) {
	r := startRelay(t)
	a := connect(t, r, "A")
	b := connect(t, r, "B")
	if err := r.JoinVertical("A", "B"); err != nil {
		t.Fatal(err)
	}
	drain(a)
	drain(b)

	b.Close()
	expectUnordered(t, a, "disconnectwalls: bottom B", "Disconnected: B")
	if len(r.Links()) != 0 {
		t.Errorf("links after disconnect = %v", r.Links())
	}
}

func TestRestartBreaksAllWalls(t *testing.T) {
	r := startRelay(t)
	a := connect(t, r, "A")
	b := connect(t, r, "B")
	if err := r.JoinHorizontal("A", "B"); err != nil {
		t.Fatal(err)
	}
	if err := r.JoinVertical("B", "A"); err != nil {
		t.Fatal(err)
	}
	drain(a)
	drain(b)

	a.in <- "restart A"
	waitFor(t, func() bool { return len(r.Links()) == 0 })
	drain(a)
	drain(b)
}

func TestNewestRegistrationWins(t *testing.T) {
	r := startRelay(t)
	first := connect(t, r, "A")
	second := newFakeConn("A2")
	go r.Serve(second, "test")
	second.in <- "Set boardname: A"

	select {
	case <-first.done:
	case <-time.After(time.Second):
		t.Fatal("first connection was not closed")
	}
	if got := r.Boards(); len(got) != 1 || got[0].RemoteAddr != "A2" {
		t.Errorf("Boards() = %+v", got)
	}
}

func TestMalformedLineKeepsConnection(t *testing.T) {
	r := startRelay(t)
	a := connect(t, r, "A")
	drain(a)

	a.in <- "GoodbyeWallBall A SIDEWAYS 1 1 1 1"
	a.in <- "restart A"
	time.Sleep(50 * time.Millisecond)
	if !r.registered("A") {
		t.Error("board dropped after malformed line")
	}
}

func TestEventsReachSinks(t *testing.T) {
	sink := &recordingSink{}
	r := startRelay(t, sink)
	a := connect(t, r, "A")
	connect(t, r, "B")
	if err := r.JoinHorizontal("A", "B"); err != nil {
		t.Fatal(err)
	}
	a.in <- "GoodbyeWallBall A RIGHT 19.9 3 4 0"

	waitFor(t, func() bool {
		return sink.count(models.EventHandoff) == 1 && sink.count(models.EventBoardConnected) == 2
	})
	if n := sink.count(models.EventWallsJoined); n != 1 {
		t.Errorf("walls_joined events = %d, want 1", n)
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line string
		want Command
		ok   bool
	}{
		{"h left right", Command{"h", "left", "right"}, true},
		{"  v top_1   bottom  ", Command{"v", "top_1", "bottom"}, true},
		{"x a b", Command{}, false},
		{"h a", Command{}, false},
		{"h a b c", Command{}, false},
		{"h 1a b", Command{}, false},
		{"", Command{}, false},
	}
	for _, tt := range tests {
		got, err := ParseCommand(tt.line)
		if (err == nil) != tt.ok {
			t.Errorf("ParseCommand(%q) error = %v, want ok=%v", tt.line, err, tt.ok)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseCommand(%q) = %+v, want %+v", tt.line, got, tt.want)
		}
	}
}

func TestRunConsole(t *testing.T) {
	r := startRelay(t)
	connect(t, r, "A")
	connect(t, r, "B")

	var out bytes.Buffer
	in := strings.NewReader("h A B\nbogus\nv A ghost\n")
	if err := r.RunConsole(context.Background(), in, &out); err != nil {
		t.Fatalf("RunConsole: %v", err)
	}

	if links := r.Links(); len(links) != 1 || links[0].First != "A" || links[0].Orientation != "h" {
		t.Errorf("Links() = %+v", links)
	}
	diag := out.String()
	if !strings.Contains(diag, "invalid command \"bogus\"") {
		t.Errorf("missing diagnostic for bad line: %q", diag)
	}
	if !strings.Contains(diag, "ghost") {
		t.Errorf("missing diagnostic for unknown board: %q", diag)
	}
}
