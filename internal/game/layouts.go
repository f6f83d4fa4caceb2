package game

import (
	"fmt"
	"sort"

	"github.com/pingball/backend/internal/geometry"
)

// layoutBuilder records the first setup error so layouts read as a plain list.
type layoutBuilder struct {
	board *Board
	err   error
}

func (lb *layoutBuilder) ball(name string, x, y, vx, vy float64) {
	if lb.err == nil {
		lb.err = lb.board.AddBall(NewBall(name, geometry.NewVec2(x, y), geometry.NewVec2(vx, vy)))
	}
}

func (lb *layoutBuilder) add(g Gadget, err error) {
	if lb.err == nil && err != nil {
		lb.err = err
	}
	if lb.err == nil {
		lb.err = lb.board.AddGadget(g)
	}
}

func (lb *layoutBuilder) square(name string, x, y int) { lb.add(NewSquareBumper(name, x, y), nil) }
func (lb *layoutBuilder) circle(name string, x, y int) { lb.add(NewCircleBumper(name, x, y), nil) }

func (lb *layoutBuilder) triangle(name string, x, y, orientation int) {
	g, err := NewTriangleBumper(name, x, y, orientation)
	lb.add(g, err)
}

func (lb *layoutBuilder) absorber(name string, x, y, w, h int) {
	g, err := NewAbsorber(name, x, y, w, h)
	lb.add(g, err)
}

func (lb *layoutBuilder) flipper(name string, x, y, orientation int, left bool) {
	g, err := NewFlipper(name, x, y, orientation, left)
	lb.add(g, err)
}

func (lb *layoutBuilder) portal(name string, x, y int, destPortal, destBoard string) {
	lb.add(NewPortal(name, x, y, destPortal, destBoard), nil)
}

func (lb *layoutBuilder) trigger(from, to string) {
	if lb.err == nil {
		lb.err = lb.board.Connect(from, to)
	}
}

var layouts = map[string]func(lb *layoutBuilder){
	"default": func(lb *layoutBuilder) {
		lb.ball("BallA", 1.25, 1.25, 0, 0)
		lb.triangle("Tri", 12, 15, 180)
		lb.square("SquareA", 0, 17)
		lb.square("SquareB", 1, 17)
		lb.square("SquareC", 2, 17)
		lb.circle("CircleA", 1, 10)
		lb.circle("CircleB", 7, 18)
		lb.circle("CircleC", 8, 18)
		lb.circle("CircleD", 9, 18)
	},
	"absorber": func(lb *layoutBuilder) {
		lb.ball("BallA", 10.25, 15.25, 0, 0)
		lb.ball("BallB", 19.25, 3.25, 0, 0)
		lb.ball("BallC", 1.25, 5.25, 0, 0)
		lb.absorber("Abs", 0, 18, 20, 2)
		lb.triangle("Tri", 19, 0, 90)
		for i, name := range []string{"CircleA", "CircleB", "CircleC", "CircleD", "CircleE"} {
			lb.circle(name, i+1, 10)
			lb.trigger(name, "Abs")
		}
	},
	"flippers": func(lb *layoutBuilder) {
		for i, x := range []float64{0.25, 5.25, 10.25, 15.25, 19.25} {
			lb.ball(fmt.Sprintf("Ball%c", 'A'+i), x, 3.25, 0, 0)
		}
		lb.flipper("FlipA", 0, 8, 90, true)
		lb.flipper("FlipB", 4, 10, 90, true)
		lb.flipper("FlipC", 9, 8, 90, true)
		lb.flipper("FlipD", 15, 8, 90, true)
		lb.circle("CircleA", 5, 18)
		lb.circle("CircleB", 7, 13)
		lb.circle("CircleC", 0, 5)
		lb.circle("CircleD", 5, 5)
		lb.circle("CircleE", 10, 5)
		lb.circle("CircleF", 15, 5)
		lb.trigger("CircleC", "FlipA")
		lb.trigger("CircleE", "FlipC")
		lb.trigger("CircleF", "FlipD")
		lb.triangle("TriA", 19, 0, 90)
		lb.triangle("TriB", 10, 18, 180)
		lb.flipper("FlipE", 2, 15, 0, false)
		lb.flipper("FlipF", 17, 15, 0, false)
		lb.absorber("Abs", 0, 19, 20, 1)
		lb.trigger("Abs", "FlipE")
		lb.trigger("Abs", "FlipF")
		lb.trigger("Abs", "Abs")
	},
	"portal": func(lb *layoutBuilder) {
		lb.ball("BallA", 5.25, 3.25, 0, 0)
		lb.portal("Alpha", 5, 8, "Alpha", "other")
		lb.portal("Beta", 14, 8, "Beta", "other")
	},
	"transparent": func(lb *layoutBuilder) {
		lb.ball("BallA", 5.25, 3.25, 10, 10)
		lb.ball("BallB", 3.25, 1.25, 10, 10)
	},
	"sideways": func(lb *layoutBuilder) {
		lb.ball("BallA", 4.25, 5.25, 5, 5)
	},
}

// LayoutNames lists the built-in boards.
func LayoutNames() []string {
	names := make([]string, 0, len(layouts))
	for name := range layouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewLayout builds one of the built-in boards under the given board name.
func NewLayout(layout, boardName string, p Physics) (*Board, error) {
	build, ok := layouts[layout]
	if !ok {
		return nil, fmt.Errorf("unknown layout %q (have %v)", layout, LayoutNames())
	}
	lb := &layoutBuilder{board: NewBoard(boardName, p)}
	build(lb)
	if lb.err != nil {
		return nil, fmt.Errorf("layout %s: %w", layout, lb.err)
	}
	return lb.board, nil
}
