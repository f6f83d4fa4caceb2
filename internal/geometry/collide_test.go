package geometry

import (
	"math"
	"testing"
)

const eps = 1e-9

func TestTimeUntilSegmentCollisionHead(t *testing.T) {
	seg := Segment{A: NewVec2(0, 10), B: NewVec2(10, 10)}
	ball := Circle{Center: NewVec2(5, 5), Radius: 0.25}

	got := TimeUntilSegmentCollision(seg, ball, NewVec2(0, 2))
	want := (5 - 0.25) / 2
	if math.Abs(got-want) > eps {
		t.Errorf("expected time %v, got %v", want, got)
	}
}

func TestTimeUntilSegmentCollisionMovingAway(t *testing.T) {
	seg := Segment{A: NewVec2(0, 10), B: NewVec2(10, 10)}
	ball := Circle{Center: NewVec2(5, 5), Radius: 0.25}

	if got := TimeUntilSegmentCollision(seg, ball, NewVec2(0, -2)); !math.IsInf(got, 1) {
		t.Errorf("receding ball should never collide, got %v", got)
	}
	if got := TimeUntilSegmentCollision(seg, ball, NewVec2(3, 0)); !math.IsInf(got, 1) {
		t.Errorf("parallel ball should never collide, got %v", got)
	}
}

func TestTimeUntilSegmentCollisionMissesEnd(t *testing.T) {
	seg := Segment{A: NewVec2(0, 10), B: NewVec2(2, 10)}
	ball := Circle{Center: NewVec2(5, 5), Radius: 0.25}

	if got := TimeUntilSegmentCollision(seg, ball, NewVec2(0, 2)); !math.IsInf(got, 1) {
		t.Errorf("ball passing beside the segment should never collide, got %v", got)
	}
}

func TestTimeUntilCircleCollision(t *testing.T) {
	fixed := Circle{Center: NewVec2(5, 10), Radius: 0.5}
	ball := Circle{Center: NewVec2(5, 5), Radius: 0.25}

	got := TimeUntilCircleCollision(fixed, ball, NewVec2(0, 1))
	want := 5 - 0.75
	if math.Abs(got-want) > eps {
		t.Errorf("expected time %v, got %v", want, got)
	}

	overlapping := Circle{Center: NewVec2(5, 9.5), Radius: 0.25}
	if got := TimeUntilCircleCollision(fixed, overlapping, NewVec2(0, 1)); got != 0 {
		t.Errorf("overlapping approaching ball should collide now, got %v", got)
	}
	if got := TimeUntilCircleCollision(fixed, overlapping, NewVec2(0, -1)); !math.IsInf(got, 1) {
		t.Errorf("overlapping receding ball should never collide, got %v", got)
	}
}

func TestTimeUntilBallBallCollision(t *testing.T) {
	b1 := Circle{Center: NewVec2(0, 0), Radius: 0.25}
	b2 := Circle{Center: NewVec2(2, 0), Radius: 0.25}

	got := TimeUntilBallBallCollision(b1, NewVec2(1, 0), b2, NewVec2(-1, 0))
	if math.Abs(got-0.75) > eps {
		t.Errorf("expected time 0.75, got %v", got)
	}
}

func TestReflectSegment(t *testing.T) {
	seg := Segment{A: NewVec2(0, 10), B: NewVec2(10, 10)}

	got := ReflectSegment(seg, NewVec2(3, 4), 1.0)
	if !got.IsNear(NewVec2(3, -4), eps) {
		t.Errorf("expected (3,-4), got %v", got)
	}

	damped := ReflectSegment(seg, NewVec2(3, 4), 0.5)
	if !damped.IsNear(NewVec2(3, -2), eps) {
		t.Errorf("expected (3,-2), got %v", damped)
	}
}

func TestReflectBallsSwapsHeadOn(t *testing.T) {
	v1, v2 := ReflectBalls(NewVec2(0, 0), NewVec2(2, 0), NewVec2(0.5, 0), NewVec2(-1, 0))
	if !v1.IsNear(NewVec2(-1, 0), eps) || !v2.IsNear(NewVec2(2, 0), eps) {
		t.Errorf("expected swapped velocities, got %v and %v", v1, v2)
	}
}

func TestReflectMovingSurfaceAddsSurfaceSpeed(t *testing.T) {
	n := NewVec2(0, -1)
	got := ReflectMovingSurface(n, NewVec2(0, -10), NewVec2(0, 0), 1.0)
	if !got.IsNear(NewVec2(0, -20), eps) {
		t.Errorf("expected (0,-20), got %v", got)
	}

	separating := ReflectMovingSurface(n, NewVec2(0, -10), NewVec2(0, -30), 1.0)
	if !separating.IsNear(NewVec2(0, -30), eps) {
		t.Errorf("separating ball should keep its velocity, got %v", separating)
	}
}

func TestRotateQuarterTurnsAreExact(t *testing.T) {
	v := NewVec2(0, 2)
	if got := v.Rotate(90); !got.IsEqualTo(NewVec2(-2, 0)) {
		t.Errorf("expected (-2,0), got %v", got)
	}
	if got := v.Rotate(-90); !got.IsEqualTo(NewVec2(2, 0)) {
		t.Errorf("expected (2,0), got %v", got)
	}
}

func TestClampKeepsHeading(t *testing.T) {
	got := Clamp(NewVec2(300, 400), 200)
	if math.Abs(got.Magnitude()-200) > 1e-9 {
		t.Errorf("expected magnitude 200, got %v", got.Magnitude())
	}
	if !got.Normalize().IsNear(NewVec2(0.6, 0.8), eps) {
		t.Errorf("heading changed: %v", got)
	}
	if small := Clamp(NewVec2(1, 1), 200); !small.IsEqualTo(NewVec2(1, 1)) {
		t.Errorf("slow vector should be unchanged, got %v", small)
	}
}
