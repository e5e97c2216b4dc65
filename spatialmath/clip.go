package spatialmath

import (
	"github.com/golang/geo/r3"
)

// halfSpace is the set of points on the non-positive side of a plane through `point` with outward
// `normal`.
type halfSpace struct {
	point  r3.Vector
	normal r3.Vector
}

func (h halfSpace) signedDistance(pt r3.Vector) float64 {
	return pt.Sub(h.point).Dot(h.normal)
}

// clip keeps the part of a convex polygon inside the half space (Sutherland-Hodgman for one edge).
func (h halfSpace) clip(polygon []r3.Vector) []r3.Vector {
	if len(polygon) == 0 {
		return nil
	}
	output := make([]r3.Vector, 0, len(polygon)+1)
	for i, current := range polygon {
		next := polygon[(i+1)%len(polygon)]
		dCur, dNext := h.signedDistance(current), h.signedDistance(next)
		curInside, nextInside := dCur <= floatEpsilon, dNext <= floatEpsilon

		switch {
		case curInside && nextInside:
			output = append(output, next)
		case curInside && !nextInside:
			output = append(output, current.Add(next.Sub(current).Mul(dCur/(dCur-dNext))))
		case !curInside && nextInside:
			output = append(output, current.Add(next.Sub(current).Mul(dCur/(dCur-dNext))), next)
		}
	}
	return dedupeConsecutive(output)
}

// dedupeConsecutive removes vertices that coincide with their predecessor, wrapping around.
func dedupeConsecutive(polygon []r3.Vector) []r3.Vector {
	out := polygon[:0]
	for _, p := range polygon {
		if len(out) > 0 && out[len(out)-1].Sub(p).Norm() < floatEpsilon {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && out[0].Sub(out[len(out)-1]).Norm() < floatEpsilon {
		out = out[:len(out)-1]
	}
	return out
}

// ClipPolygon returns the part of a convex polygon that lies inside the box. Fewer than three
// remaining vertices mean the polygon does not meaningfully intersect the box, and nil is returned.
// A polygon entirely inside the box is returned unchanged.
func (b *Box) ClipPolygon(polygon []r3.Vector) []r3.Vector {
	if len(polygon) < 3 {
		return nil
	}
	output := append([]r3.Vector(nil), polygon...)
	inside := true
	for _, pt := range polygon {
		if !b.ContainsPoint(pt) {
			inside = false
			break
		}
	}
	if inside {
		return output
	}
	for _, face := range b.faces() {
		output = face.clip(output)
		if len(output) < 3 {
			return nil
		}
	}
	return output
}
