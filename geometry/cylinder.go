package geometry

import (
	"math"

	"whitted/ray"
	"whitted/vmath/vec3"
)

func cylinderIntersect(dst []float64, g Geometry, r ray.Ray) []float64 {
	o, d := r.Origin, r.Direction
	dd := vec3.IProd(d, d)

	// A ray parallel to the y axis can only hit the caps.
	a := d[0]*d[0] + d[2]*d[2]
	if a >= Epsilon*dd {
		b := 2 * (o[0]*d[0] + o[2]*d[2])
		c := o[0]*o[0] + o[2]*o[2] - 1

		if t0, t1, ok := solveQuadratic(a, b, c, dd); ok {
			dst = appendWithinBounds(dst, g, r, t0)
			dst = appendWithinBounds(dst, g, r, t1)
		}
	}

	return appendCaps(dst, g, r, 1, 1)
}

func cylinderNormal(g Geometry, p vec3.T) vec3.T {
	dist := p[0]*p[0] + p[2]*p[2]
	if g.Closed && dist < 1 && p[1] >= g.Max-Epsilon {
		return vec3.T{0, 1, 0}
	}
	if g.Closed && dist < 1 && p[1] <= g.Min+Epsilon {
		return vec3.T{0, -1, 0}
	}
	return vec3.T{p[0], 0, p[2]}
}

// appendWithinBounds keeps a body hit only if it falls strictly between the
// truncation planes.
func appendWithinBounds(dst []float64, g Geometry, r ray.Ray, t float64) []float64 {
	y := r.Origin[1] + t*r.Direction[1]
	if g.Min < y && y < g.Max {
		dst = append(dst, t)
	}
	return dst
}

// appendCaps intersects r with the end caps of a closed cylinder or cone.
// minRadius2 and maxRadius2 are the squared cap radii at y=Min and y=Max.
func appendCaps(dst []float64, g Geometry, r ray.Ray, minRadius2, maxRadius2 float64) []float64 {
	if !g.Closed || math.Abs(r.Direction[1]) < Epsilon*r.Direction.Norm() {
		return dst
	}

	if t := (g.Min - r.Origin[1]) / r.Direction[1]; !math.IsInf(g.Min, 0) && withinCap(r, t, minRadius2) {
		dst = append(dst, t)
	}
	if t := (g.Max - r.Origin[1]) / r.Direction[1]; !math.IsInf(g.Max, 0) && withinCap(r, t, maxRadius2) {
		dst = append(dst, t)
	}
	return dst
}

func withinCap(r ray.Ray, t, radius2 float64) bool {
	x := r.Origin[0] + t*r.Direction[0]
	z := r.Origin[2] + t*r.Direction[2]
	return x*x+z*z <= radius2+Epsilon
}
