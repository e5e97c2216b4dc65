// Package spatialmath defines spatial mathematical operations
package spatialmath

import (
	"fmt"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Pose represents a 6dof pose: a position and a unit quaternion orientation.
type Pose interface {
	Point() r3.Vector
	Orientation() quat.Number
	RotationMatrix() *RotationMatrix
}

type pose struct {
	point       r3.Vector
	orientation quat.Number
}

// NewPose returns a pose at the given point with the given orientation. The orientation is
// normalized; a zero quaternion is treated as no rotation.
func NewPose(point r3.Vector, orientation quat.Number) Pose {
	return &pose{point: point, orientation: NormalizeQuat(orientation)}
}

// NewPoseFromPoint returns a pose at the given point with no rotation.
func NewPoseFromPoint(point r3.Vector) Pose {
	return &pose{point: point, orientation: quat.Number{Real: 1}}
}

// NewZeroPose returns a pose at (0, 0, 0) with no rotation.
func NewZeroPose() Pose {
	return NewPoseFromPoint(r3.Vector{})
}

func (p *pose) Point() r3.Vector {
	return p.point
}

func (p *pose) Orientation() quat.Number {
	return p.orientation
}

func (p *pose) RotationMatrix() *RotationMatrix {
	return QuatToRotationMatrix(p.orientation)
}

func (p *pose) String() string {
	return fmt.Sprintf("{X:%.3f Y:%.3f Z:%.3f Q:%v}", p.point.X, p.point.Y, p.point.Z, p.orientation)
}

// Compose returns the pose `b` expressed in the parent frame of `a`, i.e. a * b.
func Compose(a, b Pose) Pose {
	return &pose{
		point:       TransformPoint(a, b.Point()),
		orientation: NormalizeQuat(quat.Mul(a.Orientation(), b.Orientation())),
	}
}

// TransformPoint maps a point from the frame described by `p` into its parent frame.
func TransformPoint(p Pose, pt r3.Vector) r3.Vector {
	return p.RotationMatrix().Mul(pt).Add(p.Point())
}

// Interpolate returns the pose `by` of the way from `p1` to `p2`. The position is interpolated
// linearly and the orientation spherically.
func Interpolate(p1, p2 Pose, by float64) Pose {
	return &pose{
		point:       p1.Point().Add(p2.Point().Sub(p1.Point()).Mul(by)),
		orientation: Slerp(p1.Orientation(), p2.Orientation(), by),
	}
}

// PoseAlmostEqual returns whether two poses are equal within the given tolerances.
func PoseAlmostEqual(a, b Pose, linearTol, quatTol float64) bool {
	return a.Point().Sub(b.Point()).Norm() <= linearTol &&
		QuaternionAlmostEqual(a.Orientation(), b.Orientation(), quatTol)
}
