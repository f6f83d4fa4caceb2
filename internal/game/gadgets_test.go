package game

import (
	"math"
	"testing"

	"github.com/pingball/backend/internal/geometry"
)

func TestAbsorberCaptureParksBall(t *testing.T) {
	a, err := NewAbsorber("Abs", 0, 18, 20, 2)
	if err != nil {
		t.Fatalf("NewAbsorber: %v", err)
	}
	b := NewBall("b", geometry.NewVec2(10, 17.75), geometry.NewVec2(0, 12))

	a.Collide(b)

	if !b.Position.IsNear(geometry.NewVec2(19.75, 19.65), 1e-12) {
		t.Errorf("expected park position (19.75,19.65), got %v", b.Position)
	}
	if !b.Velocity().IsZero() {
		t.Errorf("expected zero velocity, got %v", b.Velocity())
	}
	if !a.Footprint().Contains(b) {
		t.Errorf("parked ball should be enclosed by the absorber")
	}

	a.Collide(b)
	if n := len(a.Held()); n != 1 {
		t.Errorf("capturing the same ball twice should hold it once, got %d", n)
	}
}

func TestAbsorberActivateEmptyIsNoop(t *testing.T) {
	a, _ := NewAbsorber("Abs", 0, 18, 20, 2)
	a.Activate()
	if n := len(a.Held()); n != 0 {
		t.Errorf("expected empty absorber, got %d balls", n)
	}
}

func TestAbsorberActivateLaunchesOldest(t *testing.T) {
	a, _ := NewAbsorber("Abs", 0, 18, 20, 2)
	first := NewBall("first", geometry.NewVec2(3, 17.75), geometry.NewVec2(0, 5))
	second := NewBall("second", geometry.NewVec2(8, 17.75), geometry.NewVec2(0, 5))
	a.Collide(first)
	a.Collide(second)

	a.Activate()

	if !first.Position.IsEqualTo(a.EjectPosition()) {
		t.Errorf("expected oldest ball at eject point %v, got %v", a.EjectPosition(), first.Position)
	}
	if !first.Velocity().IsEqualTo(geometry.NewVec2(0, -AbsorberEjectSpeed)) {
		t.Errorf("expected launch velocity (0,-50), got %v", first.Velocity())
	}
	held := a.Held()
	if len(held) != 1 || held[0] != second {
		t.Errorf("expected only the second ball to remain, got %v", held)
	}
	if !second.Velocity().IsZero() {
		t.Errorf("held ball should stay at rest, got %v", second.Velocity())
	}
}

func TestFlipperActivateIgnoredMidSwing(t *testing.T) {
	f, err := NewFlipper("Flip", 0, 0, 0, true)
	if err != nil {
		t.Fatalf("NewFlipper: %v", err)
	}

	f.Activate()
	if !f.Flipped() || !f.Rotating() {
		t.Fatalf("expected flipper to start flipping")
	}

	f.Advance(0.01)
	f.Activate()
	if !f.Flipped() {
		t.Errorf("activate during a swing must not reverse the flipper")
	}

	f.Advance(FlipperRotationTime)
	if f.Rotating() {
		t.Errorf("expected swing to finish")
	}
	if !f.Flipped() {
		t.Errorf("expected exactly one toggle, flipper is unflipped")
	}

	f.Activate()
	f.Advance(FlipperRotationTime)
	if f.Flipped() {
		t.Errorf("second activate should toggle back")
	}
}

func TestFlipperRestGeometry(t *testing.T) {
	cases := []struct {
		name        string
		left        bool
		orientation int
		flipped     bool
		pivot, tip  geometry.Vec2
	}{
		{"left unflipped", true, 0, false, geometry.NewVec2(0, 0), geometry.NewVec2(0, 2)},
		{"left flipped", true, 0, true, geometry.NewVec2(0, 0), geometry.NewVec2(2, 0)},
		{"right unflipped", false, 0, false, geometry.NewVec2(2, 0), geometry.NewVec2(2, 2)},
		{"right flipped", false, 0, true, geometry.NewVec2(2, 0), geometry.NewVec2(0, 0)},
		{"left 90", true, 90, false, geometry.NewVec2(2, 0), geometry.NewVec2(0, 0)},
		{"left 180", true, 180, false, geometry.NewVec2(2, 2), geometry.NewVec2(2, 0)},
	}

	for _, tc := range cases {
		f, _ := NewFlipper("Flip", 0, 0, tc.orientation, tc.left)
		if tc.flipped {
			f.Activate()
			f.Advance(FlipperRotationTime)
		}
		arm := f.Arm()
		if !arm.A.IsNear(tc.pivot, 1e-12) || !arm.B.IsNear(tc.tip, 1e-12) {
			t.Errorf("%s: expected %v -> %v, got %v -> %v", tc.name, tc.pivot, tc.tip, arm.A, arm.B)
		}
	}
}

func TestFlipperMidSwingAngle(t *testing.T) {
	f, _ := NewFlipper("Flip", 0, 0, 0, true)
	f.Activate()
	f.Advance(FlipperRotationTime / 2)

	want := geometry.NewVec2(math.Sqrt2, math.Sqrt2)
	if tip := f.Arm().B; !tip.IsNear(want, 1e-9) {
		t.Errorf("expected tip at %v halfway through the swing, got %v", want, tip)
	}
}

func TestFlipperReflectsWithCoefficient(t *testing.T) {
	f, _ := NewFlipper("Flip", 5, 10, 90, true)
	b := NewBall("b", geometry.NewVec2(6, 9.75), geometry.NewVec2(0, 10))

	if got := f.TimeToCollision(b, 1); got != 0 {
		t.Fatalf("expected immediate contact, got %v", got)
	}
	f.Collide(b)
	if !b.Velocity().IsNear(geometry.NewVec2(0, -9.5), 1e-9) {
		t.Errorf("expected (0,-9.5), got %v", b.Velocity())
	}
}

func TestSwingingFlipperHitsRestingBall(t *testing.T) {
	// Left flipper hanging down from (0,0); flipping sweeps it towards +x.
	f, _ := NewFlipper("Flip", 0, 0, 0, true)
	f.Activate()
	b := NewBall("b", geometry.NewVec2(1.5, 1.0), geometry.Vec2{})

	f.Advance(FlipperRotationTime * 0.3)
	if got := f.TimeToCollision(b, 1); math.IsInf(got, 1) {
		t.Fatalf("a swinging arm should reach a resting ball")
	}
}

func TestPortalIgnoresBallsWhileDisconnected(t *testing.T) {
	p := NewPortal("P", 5, 10, "Q", "other")
	b := NewBall("b", geometry.NewVec2(5.5, 9), geometry.NewVec2(0, 5))

	if got := p.TimeToCollision(b, 10); !math.IsInf(got, 1) {
		t.Errorf("disconnected portal should never collide, got %v", got)
	}

	p.SetConnected(true)
	if got := p.TimeToCollision(b, 10); math.Abs(got-0.15) > 1e-9 {
		t.Errorf("expected contact at 0.15, got %v", got)
	}

	b.Immune = true
	if got := p.TimeToCollision(b, 10); !math.IsInf(got, 1) {
		t.Errorf("immune ball should never collide, got %v", got)
	}
}

func TestTriangleRejectsBadOrientation(t *testing.T) {
	if _, err := NewTriangleBumper("T", 0, 0, 45); err == nil {
		t.Errorf("expected error for orientation 45")
	}
}

func TestTriangleHypotenuseDeflects(t *testing.T) {
	// Orientation 0 has its hypotenuse from (x+1,y) to (x,y+1).
	tri, _ := NewTriangleBumper("T", 5, 5, 0)
	b := NewBall("b", geometry.NewVec2(7, 7), geometry.NewVec2(-1, -1))

	ttc := tri.TimeToCollision(b, 10)
	if math.IsInf(ttc, 1) {
		t.Fatalf("expected a collision with the hypotenuse")
	}
	b.Position = b.Position.Plus(b.Velocity().Times(ttc))
	tri.Collide(b)
	if !b.Velocity().IsNear(geometry.NewVec2(1, 1), 1e-9) {
		t.Errorf("expected (1,1), got %v", b.Velocity())
	}
}
