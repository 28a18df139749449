// Package lookat computes camera orientations that face a target point.
package lookat

import (
	"math"

	"github.com/Changa-Husky/VrChatDollyController/internal/orient"
	"github.com/golang/geo/r3"
)

const (
	epsilon      = 1e-6
	parallelDot  = 0.99
	verticalRoll = 90.0
)

var upCandidates = []r3.Vector{
	{Y: 1},
	{Z: 1},
	{X: 1},
}

// Angles is an orientation in degrees: X is pitch, Y is yaw, Z is roll.
type Angles struct {
	X, Y, Z float64
}

// Solve returns the orientation of a camera at cam looking at target.
// Coincident points yield the zero orientation. With vertical set, a 90
// degree roll is composed before extraction.
func Solve(cam, target r3.Vector, vertical bool) Angles {
	rot, ok := Rotation(cam, target)
	if !ok {
		return Angles{}
	}
	if vertical {
		rot = rot.Mul(orient.About(orient.AxisZ, verticalRoll).Matrix())
	}
	e := rot.Euler(orient.YXZ)
	return Angles{X: e[1], Y: e[0], Z: e[2]}
}

// Rotation returns the basis (right, up, forward) of a camera at cam facing
// target. ok is false when the points coincide.
func Rotation(cam, target r3.Vector) (m orient.Mat3, ok bool) {
	forward := target.Sub(cam)
	n := forward.Norm()
	if n < epsilon {
		return orient.Mat3{}, false
	}
	forward = forward.Mul(1 / n)

	up := upCandidates[0]
	for _, c := range upCandidates {
		up = c
		if math.Abs(forward.Dot(c)) <= parallelDot {
			break
		}
	}

	right := up.Cross(forward)
	rn := right.Norm()
	if rn < epsilon {
		rn = 1
	}
	right = right.Mul(1 / rn)
	corrected := forward.Cross(right)

	return orient.FromColumns(right, corrected, forward), true
}
