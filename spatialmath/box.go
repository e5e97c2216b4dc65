package spatialmath

import (
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// Ordered list of box vertices, in units of half size.
var boxVertices = [8]r3.Vector{
	{X: 1, Y: 1, Z: 1},
	{X: 1, Y: 1, Z: -1},
	{X: 1, Y: -1, Z: 1},
	{X: 1, Y: -1, Z: -1},
	{X: -1, Y: 1, Z: 1},
	{X: -1, Y: 1, Z: -1},
	{X: -1, Y: -1, Z: 1},
	{X: -1, Y: -1, Z: -1},
}

// Ordered list of box face normals.
var boxNormals = [6]r3.Vector{
	{X: 1, Y: 0, Z: 0},
	{X: 0, Y: 1, Z: 0},
	{X: 0, Y: 0, Z: 1},
	{X: -1, Y: 0, Z: 0},
	{X: 0, Y: -1, Z: 0},
	{X: 0, Y: 0, Z: -1},
}

// Box is an oriented 3D rectangular prism, fully defined by the pose of its center and its half size.
type Box struct {
	center   Pose
	halfSize r3.Vector
}

// NewBox instantiates a new box centered at `center`. All half sizes must be positive.
func NewBox(center Pose, halfSize r3.Vector) (*Box, error) {
	if halfSize.X <= 0 || halfSize.Y <= 0 || halfSize.Z <= 0 {
		return nil, errors.Errorf("box half size must be positive, got %v", halfSize)
	}
	return &Box{center: center, halfSize: halfSize}, nil
}

// Pose returns the pose of the box center.
func (b *Box) Pose() Pose {
	return b.center
}

// HalfSize returns the half extents of the box along its local axes.
func (b *Box) HalfSize() r3.Vector {
	return b.halfSize
}

func (b *Box) String() string {
	return fmt.Sprintf("Type: Box | Position: %v | Half size: %v", b.center.Point(), b.halfSize)
}

// Transform returns the box expressed in the parent frame of `toPremultiply`.
func (b *Box) Transform(toPremultiply Pose) *Box {
	return &Box{center: Compose(toPremultiply, b.center), halfSize: b.halfSize}
}

// Vertices returns the eight corners of the box in its parent frame.
func (b *Box) Vertices() []r3.Vector {
	verts := make([]r3.Vector, 0, len(boxVertices))
	for _, v := range boxVertices {
		local := r3.Vector{X: v.X * b.halfSize.X, Y: v.Y * b.halfSize.Y, Z: v.Z * b.halfSize.Z}
		verts = append(verts, TransformPoint(b.center, local))
	}
	return verts
}

// ContainsPoint returns whether the point lies inside or on the surface of the box.
func (b *Box) ContainsPoint(pt r3.Vector) bool {
	for _, face := range b.faces() {
		if face.signedDistance(pt) > floatEpsilon {
			return false
		}
	}
	return true
}

// faces returns the six bounding half spaces of the box in its parent frame.
func (b *Box) faces() []halfSpace {
	rm := b.center.RotationMatrix()
	faces := make([]halfSpace, 0, len(boxNormals))
	for _, n := range boxNormals {
		extent := n.X*b.halfSize.X + n.Y*b.halfSize.Y + n.Z*b.halfSize.Z
		if extent < 0 {
			extent = -extent
		}
		normal := rm.Mul(n)
		faces = append(faces, halfSpace{
			point:  b.center.Point().Add(normal.Mul(extent)),
			normal: normal,
		})
	}
	return faces
}
