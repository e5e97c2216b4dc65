package spatialmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/num/quat"
)

// QuatFromXYZW builds a quaternion from components stored in (x, y, z, w) order, the layout used by
// XYZQUAT configuration vectors.
func QuatFromXYZW(x, y, z, w float64) quat.Number {
	return quat.Number{Real: w, Imag: x, Jmag: y, Kmag: z}
}

// QuatToXYZW returns the components of `q` in (x, y, z, w) order.
func QuatToXYZW(q quat.Number) [4]float64 {
	return [4]float64{q.Imag, q.Jmag, q.Kmag, q.Real}
}

// NormalizeQuat returns the unit quaternion pointing the same way as `q`. A zero quaternion is
// returned as the identity.
func NormalizeQuat(q quat.Number) quat.Number {
	norm := quat.Abs(q)
	if norm == 0 || math.IsNaN(norm) {
		return quat.Number{Real: 1}
	}
	return quat.Scale(1/norm, q)
}

// Flip will multiply a quaternion by -1, returning a quaternion representing the same orientation but in the opposing octant.
func Flip(q quat.Number) quat.Number {
	return quat.Number{Real: -q.Real, Imag: -q.Imag, Jmag: -q.Jmag, Kmag: -q.Kmag}
}

// QuaternionAlmostEqual is an equality test for all the float components of a quaternion. Quaternions have double coverage, q == -q, and
// this function will *not* account for this. Use OrientationAlmostEqual unless you're certain this is what you want.
func QuaternionAlmostEqual(a, b quat.Number, tol float64) bool {
	return math.Abs(a.Real-b.Real) <= tol &&
		math.Abs(a.Imag-b.Imag) <= tol &&
		math.Abs(a.Jmag-b.Jmag) <= tol &&
		math.Abs(a.Kmag-b.Kmag) <= tol
}

// OrientationAlmostEqual returns whether two quaternions describe the same rotation, accounting for
// double coverage.
func OrientationAlmostEqual(a, b quat.Number, tol float64) bool {
	a, b = NormalizeQuat(a), NormalizeQuat(b)
	return QuaternionAlmostEqual(a, b, tol) || QuaternionAlmostEqual(a, Flip(b), tol)
}

// Slerp spherically interpolates `by` of the way from q1 to q2 along the shortest arc.
func Slerp(q1, q2 quat.Number, by float64) quat.Number {
	q1, q2 = NormalizeQuat(q1), NormalizeQuat(q2)
	if q1.Real*q2.Real+q1.Imag*q2.Imag+q1.Jmag*q2.Jmag+q1.Kmag*q2.Kmag < 0 {
		q2 = Flip(q2)
	}
	return fromMgl(mgl64.QuatSlerp(toMgl(q1), toMgl(q2), by))
}

func toMgl(q quat.Number) mgl64.Quat {
	return mgl64.Quat{W: q.Real, V: mgl64.Vec3{q.Imag, q.Jmag, q.Kmag}}
}

func fromMgl(q mgl64.Quat) quat.Number {
	return NormalizeQuat(quat.Number{Real: q.W, Imag: q.V[0], Jmag: q.V[1], Kmag: q.V[2]})
}
