// Package orient holds the rotation math shared by the look-at solver and the
// transform pipeline: unit quaternions for composition and rotation matrices
// for Euler extraction. Angles crossing the package boundary are in degrees.
package orient

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Quat is a rotation stored as a unit quaternion. The zero value is the
// identity.
type Quat struct {
	n quat.Number
}

func (q Quat) num() quat.Number {
	if q.n == (quat.Number{}) {
		return quat.Number{Real: 1}
	}
	return q.n
}

// Identity returns the zero rotation.
func Identity() Quat {
	return Quat{n: quat.Number{Real: 1}}
}

// AxisAngle returns a rotation of deg degrees about axis.
// A zero axis yields the identity.
func AxisAngle(axis r3.Vector, deg float64) Quat {
	if axis.Norm() == 0 {
		return Identity()
	}
	a := axis.Normalize()
	half := Radians(deg) / 2
	s := math.Sin(half)
	return Quat{n: quat.Number{Real: math.Cos(half), Imag: a.X * s, Jmag: a.Y * s, Kmag: a.Z * s}}
}

// About returns a rotation of deg degrees about a principal axis.
func About(axis Axis, deg float64) Quat {
	return AxisAngle(axis.Unit(), deg)
}

// Mul returns q*o: o is applied first, then q.
func (q Quat) Mul(o Quat) Quat {
	return Quat{n: quat.Mul(q.num(), o.num())}.normalized()
}

// Rotate applies the rotation to v.
func (q Quat) Rotate(v r3.Vector) r3.Vector {
	p := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	n := q.num()
	r := quat.Mul(quat.Mul(n, p), quat.Conj(n))
	return r3.Vector{X: r.Imag, Y: r.Jmag, Z: r.Kmag}
}

// IsIdentity reports whether q rotates by less than eps radians.
func (q Quat) IsIdentity(eps float64) bool {
	return 2*math.Acos(math.Min(1, math.Abs(q.num().Real))) < eps
}

// Matrix returns the equivalent rotation matrix.
func (q Quat) Matrix() Mat3 {
	n := q.num()
	w, x, y, z := n.Real, n.Imag, n.Jmag, n.Kmag
	return Mat3{
		{1 - 2*(y*y+z*z), 2 * (x*y - w*z), 2 * (x*z + w*y)},
		{2 * (x*y + w*z), 1 - 2*(x*x+z*z), 2 * (y*z - w*x)},
		{2 * (x*z - w*y), 2 * (y*z + w*x), 1 - 2*(x*x+y*y)},
	}
}

// Euler returns the intrinsic Euler angles of q in the given order, in degrees.
func (q Quat) Euler(order Order) [3]float64 {
	return q.Matrix().Euler(order)
}

// FromEuler builds a rotation from intrinsic Euler angles in degrees. The
// angles are listed in the order's axis sequence, so FromEuler(YXZ, yaw,
// pitch, roll) rotates about Y, then the new X, then the new Z.
func FromEuler(order Order, a1, a2, a3 float64) Quat {
	axes := order.axes()
	return About(axes[0], a1).Mul(About(axes[1], a2)).Mul(About(axes[2], a3))
}

func (q Quat) normalized() Quat {
	l := quat.Abs(q.n)
	if l == 0 {
		return Identity()
	}
	return Quat{n: quat.Scale(1/l, q.n)}
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 { return deg * math.Pi / 180 }

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 { return rad * 180 / math.Pi }
