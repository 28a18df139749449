package orient

import (
	"math"

	"github.com/golang/geo/r3"
)

// Axis names a principal axis.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// Unit returns the unit vector along the axis.
func (a Axis) Unit() r3.Vector {
	switch a {
	case AxisX:
		return r3.Vector{X: 1}
	case AxisY:
		return r3.Vector{Y: 1}
	default:
		return r3.Vector{Z: 1}
	}
}

// String returns "X", "Y" or "Z".
func (a Axis) String() string {
	return [...]string{"X", "Y", "Z"}[a]
}

// Order is an intrinsic Euler axis sequence.
type Order int

const (
	// XYZ rotates about X, then the new Y, then the new Z.
	XYZ Order = iota
	// YXZ is the yaw-pitch-roll order used by the renderer.
	YXZ
)

func (o Order) axes() [3]Axis {
	if o == YXZ {
		return [3]Axis{AxisY, AxisX, AxisZ}
	}
	return [3]Axis{AxisX, AxisY, AxisZ}
}

// gimbalEps bounds |sin(middle angle)| beyond which the first and last
// axes are considered aligned.
const gimbalEps = 1e-9

// Mat3 is a row-major 3x3 rotation matrix.
type Mat3 [3][3]float64

// FromColumns builds a matrix whose columns are a, b and c.
func FromColumns(a, b, c r3.Vector) Mat3 {
	return Mat3{
		{a.X, b.X, c.X},
		{a.Y, b.Y, c.Y},
		{a.Z, b.Z, c.Z},
	}
}

// Mul returns m*o.
func (m Mat3) Mul(o Mat3) Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				r[i][j] += m[i][k] * o[k][j]
			}
		}
	}
	return r
}

// Euler extracts intrinsic Euler angles in degrees, listed in the order's
// axis sequence. At gimbal lock the last angle is reported as zero.
func (m Mat3) Euler(order Order) [3]float64 {
	var a, b, c float64
	switch order {
	case YXZ:
		// m = Ry(a) Rx(b) Rz(c)
		b = math.Asin(clampUnit(-m[1][2]))
		if math.Abs(m[1][2]) < 1-gimbalEps {
			a = math.Atan2(m[0][2], m[2][2])
			c = math.Atan2(m[1][0], m[1][1])
		} else {
			a = math.Atan2(-m[2][0], m[0][0])
		}
	default:
		// m = Rx(a) Ry(b) Rz(c)
		b = math.Asin(clampUnit(m[0][2]))
		if math.Abs(m[0][2]) < 1-gimbalEps {
			a = math.Atan2(-m[1][2], m[2][2])
			c = math.Atan2(-m[0][1], m[0][0])
		} else {
			a = math.Atan2(m[2][1], m[1][1])
		}
	}
	return [3]float64{Degrees(a), Degrees(b), Degrees(c)}
}

func clampUnit(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}
