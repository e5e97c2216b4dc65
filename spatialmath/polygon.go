package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
)

const floatEpsilon = 1e-9

// Area returns the area of the polygon's projection onto the XY plane, using the shoelace formula
// over consecutive vertex pairs with the polygon closed back to its first vertex. Polygons with
// fewer than 3 vertices have zero area.
func Area(points []r3.Vector) float64 {
	if len(points) < 3 {
		return 0
	}
	var sum float64
	for i, p := range points {
		next := points[(i+1)%len(points)]
		sum += p.X*next.Y - next.X*p.Y
	}
	return math.Abs(sum * 0.5)
}

// PlaneNormal returns the unit normal of the plane defined by three points. The normal follows the
// right hand rule over p0 -> p1 -> p2.
func PlaneNormal(p0, p1, p2 r3.Vector) r3.Vector {
	return p1.Sub(p0).Cross(p2.Sub(p0)).Normalize()
}

// PolygonNormal returns the unit normal of a planar polygon using Newell's method, which tolerates
// collinear leading vertices. A degenerate polygon has a zero normal.
func PolygonNormal(points []r3.Vector) r3.Vector {
	var n r3.Vector
	for i, p := range points {
		next := points[(i+1)%len(points)]
		n.X += (p.Y - next.Y) * (p.Z + next.Z)
		n.Y += (p.Z - next.Z) * (p.X + next.X)
		n.Z += (p.X - next.X) * (p.Y + next.Y)
	}
	if n.Norm() < floatEpsilon {
		return r3.Vector{}
	}
	return n.Normalize()
}

// Centroid returns the mean of the points.
func Centroid(points []r3.Vector) r3.Vector {
	var c r3.Vector
	if len(points) == 0 {
		return c
	}
	for _, p := range points {
		c = c.Add(p)
	}
	return c.Mul(1 / float64(len(points)))
}

// PointsEqual returns whether two point sequences hold exactly the same points in the same order.
func PointsEqual(a, b []r3.Vector) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ComparePolygons orders point sequences lexicographically by vertex (X, then Y, then Z), with a
// shorter sequence ordered first when it is a prefix of the other. It returns -1, 0 or 1.
func ComparePolygons(a, b []r3.Vector) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		for _, d := range [3][2]float64{{a[i].X, b[i].X}, {a[i].Y, b[i].Y}, {a[i].Z, b[i].Z}} {
			switch {
			case d[0] < d[1]:
				return -1
			case d[0] > d[1]:
				return 1
			}
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}
