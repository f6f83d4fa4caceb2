package game

import "math"

// Board geometry and physics constants. Lengths are in grid cells (L),
// times in seconds. Coordinates grow right and down.
const (
	BoardWidth  = 20
	BoardHeight = 20
	BallRadius  = 0.25
	MaxSpeed    = 200.0

	DefaultGravity   = 25.0
	DefaultFriction1 = 0.025
	DefaultFriction2 = 0.025

	BumperReflection   = 1.0
	FlipperReflection  = 0.95
	AbsorberReflection = 0.0

	AbsorberEjectSpeed = 50.0
	absorberParkLift   = 0.1

	FlipperAngularSpeed = 18.85 // rad/s
	FlipperSize         = 2

	// WallArrivalInset keeps an arriving ball just clear of the wall it came through.
	WallArrivalInset = 0.25005

	MaxCollisionsPerUpdate = 1000

	boundsTolerance = 1e-6
)

// FlipperRotationTime is how long one 90 degree swing lasts.
var FlipperRotationTime = (math.Pi / 2) / FlipperAngularSpeed
