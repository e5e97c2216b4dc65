package spatialmath

import (
	"github.com/golang/geo/r3"
)

// Triangle is three points and the normal they define.
type Triangle struct {
	p0 r3.Vector
	p1 r3.Vector
	p2 r3.Vector

	normal r3.Vector
}

// NewTriangle creates a triangle; its normal follows the right hand rule over p0 -> p1 -> p2.
func NewTriangle(p0, p1, p2 r3.Vector) *Triangle {
	return &Triangle{
		p0:     p0,
		p1:     p1,
		p2:     p2,
		normal: PlaneNormal(p0, p1, p2),
	}
}

// FanTriangulate splits a convex polygon into triangles sharing its first vertex.
func FanTriangulate(polygon []r3.Vector) []*Triangle {
	if len(polygon) < 3 {
		return nil
	}
	tris := make([]*Triangle, 0, len(polygon)-2)
	for i := 1; i+1 < len(polygon); i++ {
		tris = append(tris, NewTriangle(polygon[0], polygon[i], polygon[i+1]))
	}
	return tris
}

// Points returns the three vertices.
func (t *Triangle) Points() []r3.Vector {
	return []r3.Vector{t.p0, t.p1, t.p2}
}

// Normal returns the unit normal.
func (t *Triangle) Normal() r3.Vector {
	return t.normal
}

// Area returns the area of the triangle in 3D. Degenerate triangles have zero area.
func (t *Triangle) Area() float64 {
	return 0.5 * t.p1.Sub(t.p0).Cross(t.p2.Sub(t.p0)).Norm()
}

// Centroid returns the centroid of the triangle.
func (t *Triangle) Centroid() r3.Vector {
	return t.p0.Add(t.p1).Add(t.p2).Mul(1. / 3.)
}

// Transform returns the triangle with every vertex mapped into the parent frame of `p`.
func (t *Triangle) Transform(p Pose) *Triangle {
	return NewTriangle(TransformPoint(p, t.p0), TransformPoint(p, t.p1), TransformPoint(p, t.p2))
}
