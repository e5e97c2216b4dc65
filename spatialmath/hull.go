package spatialmath

import (
	"math"
	"sort"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

// planeBasis returns two unit vectors u, v spanning the plane orthogonal to n, such that u x v = n.
func planeBasis(n r3.Vector) (r3.Vector, r3.Vector) {
	n = n.Normalize()
	// Seed with the world axis least aligned with the normal.
	ax, ay, az := math.Abs(n.X), math.Abs(n.Y), math.Abs(n.Z)
	seed := r3.Vector{Z: 1}
	switch {
	case ax <= ay && ax <= az:
		seed = r3.Vector{X: 1}
	case ay <= az:
		seed = r3.Vector{Y: 1}
	}
	u := seed.Sub(n.Mul(seed.Dot(n))).Normalize()
	return u, n.Cross(u)
}

// ConvexHull returns the extremum points of a set of (roughly) coplanar points: the vertices of their
// convex hull in the plane orthogonal to `normal`, ordered counter-clockwise around it. Collinear and
// duplicate points are dropped. Fewer than three distinct points are returned unchanged in input
// order.
func ConvexHull(points []r3.Vector, normal r3.Vector) []r3.Vector {
	if normal.Norm() < floatEpsilon {
		normal = r3.Vector{Z: 1}
	}
	u, v := planeBasis(normal)

	type projected struct {
		r2.Point
		src r3.Vector
	}
	pts := make([]projected, 0, len(points))
	for _, p := range points {
		pts = append(pts, projected{r2.Point{X: p.Dot(u), Y: p.Dot(v)}, p})
	}
	sort.SliceStable(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})
	unique := pts[:0]
	for _, p := range pts {
		if len(unique) > 0 && unique[len(unique)-1].Sub(p.Point).Norm() < floatEpsilon {
			continue
		}
		unique = append(unique, p)
	}
	if len(unique) < 3 {
		return append([]r3.Vector(nil), points...)
	}

	// Andrew's monotone chain.
	cross := func(o, a, b r2.Point) float64 {
		return a.Sub(o).Cross(b.Sub(o))
	}
	hull := make([]projected, 0, 2*len(unique))
	for _, p := range unique {
		for len(hull) >= 2 && cross(hull[len(hull)-2].Point, hull[len(hull)-1].Point, p.Point) <= floatEpsilon {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(unique) - 2; i >= 0; i-- {
		p := unique[i]
		for len(hull) >= lower && cross(hull[len(hull)-2].Point, hull[len(hull)-1].Point, p.Point) <= floatEpsilon {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	hull = hull[:len(hull)-1]

	out := make([]r3.Vector, 0, len(hull))
	for _, p := range hull {
		out = append(out, p.src)
	}
	return out
}
