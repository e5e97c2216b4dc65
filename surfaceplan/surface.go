package surfaceplan

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"github.com/legplan/contactplan/spatialmath"
)

// RawSurface is an obstacle surface as reported by an affordance engine: a set of triangles.
type RawSurface []*spatialmath.Triangle

// Surface is a convex contact polygon and its outward normal.
type Surface struct {
	Points []r3.Vector `json:"points"`
	Normal r3.Vector   `json:"normal"`
}

// SurfaceGeometry reduces raw surfaces to their contact polygon and normal.
type SurfaceGeometry interface {
	ExtremumPoints(raw RawSurface) []r3.Vector
	Normal(raw RawSurface) r3.Vector
}

// degenerateArea is the area below which a triangle has no usable normal.
const degenerateArea = 1e-12

// HullGeometry is the default SurfaceGeometry: the normal of the first non-degenerate triangle and
// the convex hull of every triangle vertex around it.
type HullGeometry struct{}

// ExtremumPoints returns the convex hull of the surface's vertices.
func (HullGeometry) ExtremumPoints(raw RawSurface) []r3.Vector {
	var pts []r3.Vector
	for _, tri := range raw {
		pts = append(pts, tri.Points()...)
	}
	return spatialmath.ConvexHull(pts, HullGeometry{}.Normal(raw))
}

// Normal returns the normal of the first triangle with an area, or the zero vector when there is
// none.
func (HullGeometry) Normal(raw RawSurface) r3.Vector {
	for _, tri := range raw {
		if tri.Area() > degenerateArea {
			return tri.Normal()
		}
	}
	return r3.Vector{}
}

// SurfaceMatrix lays a polygon out as a 3xN matrix, one row per coordinate and one column per
// vertex. An empty polygon has no matrix and yields nil.
func SurfaceMatrix(points []r3.Vector) *mat.Dense {
	if len(points) == 0 {
		return nil
	}
	m := mat.NewDense(3, len(points), nil)
	for j, p := range points {
		m.Set(0, j, p.X)
		m.Set(1, j, p.Y)
		m.Set(2, j, p.Z)
	}
	return m
}

// PointsFromMatrix is the inverse of SurfaceMatrix.
func PointsFromMatrix(m mat.Matrix) []r3.Vector {
	_, c := m.Dims()
	pts := make([]r3.Vector, 0, c)
	for j := 0; j < c; j++ {
		pts = append(pts, r3.Vector{X: m.At(0, j), Y: m.At(1, j), Z: m.At(2, j)})
	}
	return pts
}
